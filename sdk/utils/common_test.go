// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package utils

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

var errAttempt = errors.New("attempt failed")

// GetAPIContext returns a context with the default API timeout
func GetAPIContext() (context.Context, context.CancelFunc) {
	return GetAPIContextFrom(context.Background())
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	result, err := Retry(
		context.Background(),
		func(context.Context) (string, error) {
			calls++
			if calls < 3 {
				return "", errAttempt
			}
			return "success", nil
		},
		10*time.Millisecond,
		5,
		"failure",
	)
	require.NoError(t, err)
	require.Equal(t, "success", result)
	require.Equal(t, 3, calls)
}

func TestRetryExhaustsAttempts(t *testing.T) {
	calls := 0
	_, err := Retry(
		context.Background(),
		func(context.Context) (int, error) {
			calls++
			return 0, errAttempt
		},
		time.Millisecond,
		3,
		"getting value",
	)
	require.ErrorIs(t, err, errAttempt)
	require.ErrorContains(t, err, "getting value: maximum retry attempts 3 reached")
	require.Equal(t, 3, calls)
}

func TestRetryStopsOnParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	_, err := Retry(
		ctx,
		func(context.Context) (int, error) {
			calls++
			cancel()
			return 0, errAttempt
		},
		time.Second,
		10,
		"cancelled",
	)
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, 1, calls)
}

func TestRetryWithContextGen(t *testing.T) {
	calls := 0
	result, err := RetryWithContextGen(
		GetAPIContext,
		func(ctx context.Context) (int, error) {
			calls++
			_, hasDeadline := ctx.Deadline()
			require.True(t, hasDeadline)
			if calls == 1 {
				return 0, errAttempt
			}
			return 42, nil
		},
		3,
		time.Millisecond,
	)
	require.NoError(t, err)
	require.Equal(t, 42, result)
	require.Equal(t, 2, calls)

	_, err = RetryWithContextGen(
		GetAPIContext,
		func(context.Context) (int, error) {
			return 0, errAttempt
		},
		2,
		time.Millisecond,
	)
	require.ErrorIs(t, err, errAttempt)
}
