// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package warp

import (
	"testing"

	subnetEvmWarp "github.com/ava-labs/subnet-evm/precompile/contracts/warp"
	"github.com/stretchr/testify/require"
)

func TestPackWarpIntoAccessList(t *testing.T) {
	msg := make([]byte, 40)
	for i := range msg {
		msg[i] = byte(i + 1)
	}
	accessList := PackWarpIntoAccessList(msg)
	require.Len(t, accessList, 1)
	require.Equal(t, subnetEvmWarp.ContractAddress, accessList[0].Address)
	require.Len(t, accessList[0].StorageKeys, 2)

	packed := []byte{}
	for _, key := range accessList[0].StorageKeys {
		packed = append(packed, key.Bytes()...)
	}
	require.Equal(t, msg, packed[:40])
	require.Equal(t, byte(0xff), packed[40])
	for _, b := range packed[41:] {
		require.Zero(t, b)
	}
}

func TestPackWarpIntoAccessListExactMultiple(t *testing.T) {
	// 31 bytes plus delimiter fill a single key
	accessList := PackWarpIntoAccessList(make([]byte, 31))
	require.Len(t, accessList[0].StorageKeys, 1)
	require.Equal(t, byte(0xff), accessList[0].StorageKeys[0][31])

	// 32 bytes plus delimiter need a second key
	accessList = PackWarpIntoAccessList(make([]byte, 32))
	require.Len(t, accessList[0].StorageKeys, 2)
}
