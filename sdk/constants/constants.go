// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package constants

import "time"

const (
	// http
	APIRequestTimeout      = 30 * time.Second
	APIRequestLargeTimeout = 2 * time.Minute

	// p-chain wallet
	WalletCreationTimeout = 1 * time.Minute

	// signature aggregation
	SignatureAggregatorTimeout = 2 * time.Minute

	// file system
	WriteReadUserOnlyPerms = 0o600
)
