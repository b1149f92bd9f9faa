// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package evm

import (
	"fmt"

	"github.com/ava-labs/libevm/common"
	"github.com/ava-labs/libevm/core/types"
	subnetEvmWarp "github.com/ava-labs/subnet-evm/precompile/contracts/warp"
)

const sendWarpMessageEventName = "SendWarpMessage"

// SendWarpMessageEventID returns the topic0 of the warp precompile SendWarpMessage event
func SendWarpMessageEventID() common.Hash {
	return subnetEvmWarp.WarpABI.Events[sendWarpMessageEventName].ID
}

// UnpackSendWarpMessageEventData returns the raw unsigned warp message bytes
// contained in the [data] of a SendWarpMessage log. No validation of the
// message bytes themselves is done
func UnpackSendWarpMessageEventData(data []byte) ([]byte, error) {
	values, err := subnetEvmWarp.WarpABI.Unpack(sendWarpMessageEventName, data)
	if err != nil {
		return nil, err
	}
	if len(values) != 1 {
		return nil, fmt.Errorf("expected 1 value in %s event data, got %d", sendWarpMessageEventName, len(values))
	}
	msg, ok := values[0].([]byte)
	if !ok {
		return nil, fmt.Errorf("expected bytes in %s event data, got %T", sendWarpMessageEventName, values[0])
	}
	return msg, nil
}

// get all unsigned warp messages emitted by the warp precompile in [logs]
func GetWarpMessagesFromLogs(
	logs []*types.Log,
) [][]byte {
	messages := [][]byte{}
	for _, txLog := range logs {
		if txLog.Address != subnetEvmWarp.ContractAddress {
			continue
		}
		if len(txLog.Topics) == 0 || txLog.Topics[0] != SendWarpMessageEventID() {
			continue
		}
		msg, err := UnpackSendWarpMessageEventData(txLog.Data)
		if err == nil {
			messages = append(messages, msg)
		}
	}
	return messages
}

// get first unsigned warp message contained in [logs]
func ExtractWarpMessageFromLogs(
	logs []*types.Log,
) ([]byte, error) {
	messages := GetWarpMessagesFromLogs(logs)
	if len(messages) == 0 {
		return nil, fmt.Errorf("no warp message is present in evm logs")
	}
	return messages[0], nil
}

// get first unsigned warp message contained in [receipt]
func ExtractWarpMessageFromReceipt(
	receipt *types.Receipt,
) ([]byte, error) {
	if receipt == nil {
		return nil, fmt.Errorf("empty receipt was given")
	}
	return ExtractWarpMessageFromLogs(receipt.Logs)
}
