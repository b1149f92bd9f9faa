// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package evm

import (
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/vms/platformvm/warp"
	"github.com/ava-labs/libevm/common"
	"github.com/ava-labs/libevm/core/types"
	subnetevmwarp "github.com/ava-labs/subnet-evm/precompile/contracts/warp"
	"github.com/stretchr/testify/require"
)

func newSendWarpMessageLog(t *testing.T, msg []byte) *types.Log {
	topics, data, err := subnetevmwarp.PackSendWarpMessageEvent(
		common.HexToAddress("0x0c0DEBA5E0000000000000000000000000000000"),
		common.Hash{},
		msg,
	)
	require.NoError(t, err)
	return &types.Log{
		Address: subnetevmwarp.ContractAddress,
		Topics:  topics,
		Data:    data,
	}
}

func TestGetWarpMessagesFromLogs(t *testing.T) {
	require.Empty(t, GetWarpMessagesFromLogs([]*types.Log{}))

	// garbage data at the precompile address
	invalidLog := &types.Log{
		Address: subnetevmwarp.ContractAddress,
		Topics:  []common.Hash{SendWarpMessageEventID()},
		Data:    []byte{1, 2, 3, 4, 5},
	}
	require.Empty(t, GetWarpMessagesFromLogs([]*types.Log{invalidLog}))

	unsignedWarpMessage, err := warp.NewUnsignedMessage(1, ids.GenerateTestID(), []byte{9, 9})
	require.NoError(t, err)
	validLog := newSendWarpMessageLog(t, unsignedWarpMessage.Bytes())

	// same data emitted by another contract is ignored
	foreignLog := *validLog
	foreignLog.Address = common.HexToAddress("0x1234")

	messages := GetWarpMessagesFromLogs([]*types.Log{invalidLog, &foreignLog, validLog})
	require.Len(t, messages, 1)
	require.Equal(t, unsignedWarpMessage.Bytes(), messages[0])
}

func TestGetWarpMessagesFromLogsKeepsUnparseableMessages(t *testing.T) {
	// raw bytes are returned even if they do not form a valid warp message
	validLog := newSendWarpMessageLog(t, []byte{0xde, 0xad})
	messages := GetWarpMessagesFromLogs([]*types.Log{validLog})
	require.Equal(t, [][]byte{{0xde, 0xad}}, messages)
}

func TestExtractWarpMessageFromReceipt(t *testing.T) {
	_, err := ExtractWarpMessageFromReceipt(nil)
	require.ErrorContains(t, err, "empty receipt")

	_, err = ExtractWarpMessageFromReceipt(&types.Receipt{})
	require.ErrorContains(t, err, "no warp message")

	first, err := warp.NewUnsignedMessage(1, ids.GenerateTestID(), []byte{1})
	require.NoError(t, err)
	second, err := warp.NewUnsignedMessage(1, ids.GenerateTestID(), []byte{2})
	require.NoError(t, err)
	receipt := &types.Receipt{
		Logs: []*types.Log{
			newSendWarpMessageLog(t, first.Bytes()),
			newSendWarpMessageLog(t, second.Bytes()),
		},
	}
	msg, err := ExtractWarpMessageFromReceipt(receipt)
	require.NoError(t, err)
	require.Equal(t, first.Bytes(), msg)
}
