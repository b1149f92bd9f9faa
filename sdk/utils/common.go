// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package utils

import (
	"context"
	"fmt"
	"time"
)

// RetryWithContextGen calls [fn] until it succeeds or [maxAttempts] is reached,
// generating a fresh context with [ctxGen] for each attempt and sleeping
// [sleepBetweenRepeats] between failed attempts
func RetryWithContextGen[T any](
	ctxGen func() (context.Context, context.CancelFunc),
	fn func(context.Context) (T, error),
	maxAttempts int,
	sleepBetweenRepeats time.Duration,
) (T, error) {
	var (
		result T
		err    error
	)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		ctx, cancel := ctxGen()
		result, err = fn(ctx)
		cancel()
		if err == nil {
			return result, nil
		}
		if attempt < maxAttempts-1 {
			time.Sleep(sleepBetweenRepeats)
		}
	}
	return result, err
}

// Retry calls [fn] until it succeeds, [maxAttempts] is reached, or [parent] is done.
// Each attempt gets a context derived from [parent] with [attemptTimeout]
func Retry[T any](
	parent context.Context,
	fn func(context.Context) (T, error),
	attemptTimeout time.Duration,
	maxAttempts int,
	errMsg string,
) (T, error) {
	const defaultAttemptTimeout = 2 * time.Second
	if attemptTimeout == 0 {
		attemptTimeout = defaultAttemptTimeout
	}
	var (
		result T
		err    error
	)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		start := time.Now()
		ctx, cancel := context.WithTimeout(parent, attemptTimeout)
		result, err = fn(ctx)
		cancel()
		if err == nil {
			return result, nil
		}
		if parent.Err() != nil {
			return result, fmt.Errorf("%s: %w", errMsg, parent.Err())
		}
		elapsed := time.Since(start)
		if elapsed < attemptTimeout && attempt < maxAttempts-1 {
			select {
			case <-time.After(attemptTimeout - elapsed):
			case <-parent.Done():
				return result, fmt.Errorf("%s: %w", errMsg, parent.Err())
			}
		}
	}
	return result, fmt.Errorf(
		"%s: maximum retry attempts %d reached: last err = %w",
		errMsg,
		maxAttempts,
		err,
	)
}
