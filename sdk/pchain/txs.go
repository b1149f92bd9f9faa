// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package pchain

import (
	"context"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/vms/platformvm"
	"github.com/ava-labs/avalanchego/vms/platformvm/status"
	"github.com/ava-labs/avalanchego/vms/platformvm/txs"
	avalancheWarp "github.com/ava-labs/avalanchego/vms/platformvm/warp"
	"github.com/ava-labs/l1-orchestrator/sdk/utils"
)

var ErrNoWarpMessage = errors.New("P-Chain tx carries no warp message")

// ParseTx decodes signed P-Chain tx [txBytes]
func ParseTx(txBytes []byte) (*txs.Tx, error) {
	tx, err := txs.Parse(txs.Codec, txBytes)
	if err != nil {
		return nil, fmt.Errorf("couldn't unmarshal P-Chain tx: %w", err)
	}
	return tx, nil
}

// ParseTxWarpMessage returns the unsigned warp message bytes carried by the
// RegisterL1ValidatorTx or SetL1ValidatorWeightTx encoded in [txBytes]
func ParseTxWarpMessage(txBytes []byte) ([]byte, error) {
	tx, err := ParseTx(txBytes)
	if err != nil {
		return nil, err
	}
	var signedMessage []byte
	switch unsignedTx := tx.Unsigned.(type) {
	case *txs.SetL1ValidatorWeightTx:
		signedMessage = unsignedTx.Message
	case *txs.RegisterL1ValidatorTx:
		signedMessage = unsignedTx.Message
	default:
		return nil, fmt.Errorf("%w: unexpected tx type %T", ErrNoWarpMessage, tx.Unsigned)
	}
	msg, err := avalancheWarp.ParseMessage(signedMessage)
	if err != nil {
		return nil, fmt.Errorf("invalid warp message in P-Chain tx %s: %w", tx.ID(), err)
	}
	return msg.UnsignedMessage.Bytes(), nil
}

// GetTxWarpMessage fetches P-Chain tx [txID] from [endpoint] and returns the
// unsigned warp message it carries
func GetTxWarpMessage(ctx context.Context, endpoint string, txID ids.ID) ([]byte, error) {
	ctx, cancel := utils.GetAPIContextFrom(ctx)
	defer cancel()
	pClient := platformvm.NewClient(endpoint)
	txBytes, err := pClient.GetTx(ctx, txID)
	if err != nil {
		return nil, fmt.Errorf("P-Chain tx %s query error: %w", txID, err)
	}
	return ParseTxWarpMessage(txBytes)
}

// TxCommitted reports whether P-Chain tx [txID] was committed, according to
// the node at [endpoint]
func TxCommitted(ctx context.Context, endpoint string, txID ids.ID) (bool, error) {
	ctx, cancel := utils.GetAPIContextFrom(ctx)
	defer cancel()
	pClient := platformvm.NewClient(endpoint)
	resp, err := pClient.GetTxStatus(ctx, txID)
	if err != nil {
		return false, fmt.Errorf("P-Chain tx %s status query error: %w", txID, err)
	}
	return resp.Status == status.Committed, nil
}
