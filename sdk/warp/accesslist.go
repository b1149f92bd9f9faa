// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package warp

import (
	"github.com/ava-labs/avalanchego/vms/evm/predicate"
	"github.com/ava-labs/libevm/core/types"
	subnetEvmWarp "github.com/ava-labs/subnet-evm/precompile/contracts/warp"
)

// PackWarpIntoAccessList builds the access list that makes [signedMessage] available
// to the warp precompile during tx execution: the message is terminated with the
// predicate delimiter, zero padded to a multiple of 32 bytes, and split into storage keys
func PackWarpIntoAccessList(signedMessage []byte) types.AccessList {
	return types.AccessList{
		types.AccessTuple{
			Address:     subnetEvmWarp.ContractAddress,
			StorageKeys: predicate.New(signedMessage),
		},
	}
}
