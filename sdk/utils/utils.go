// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package utils

import (
	"context"

	"github.com/ava-labs/l1-orchestrator/sdk/constants"
)

// Unique returns a new slice containing only the unique elements from the input slice.
func Unique[T comparable](arr []T) []T {
	visited := map[T]bool{}
	unique := []T{}
	for _, e := range arr {
		if !visited[e] {
			unique = append(unique, e)
			visited[e] = true
		}
	}
	return unique
}

// Context for API requests derived from [parent], with the default API timeout
func GetAPIContextFrom(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, constants.APIRequestTimeout)
}

// Context for API requests derived from [parent], with the large API timeout
// used for txs that wait for acceptance
func GetAPILargeContextFrom(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, constants.APIRequestLargeTimeout)
}
