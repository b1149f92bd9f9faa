// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package evm

import (
	"errors"
	"fmt"
	"math/big"
	"testing"

	"github.com/ava-labs/libevm/common"
	"github.com/ava-labs/libevm/core/types"
	"github.com/stretchr/testify/require"
)

const testPrivateKey = "56289e99c94b6912bfc12adc093c9b51124f0dc54ac7a766b2bc5ccf558d8027"

func TestGetEventFromLogs(t *testing.T) {
	logs := []*types.Log{
		{Data: []byte{1}},
		{Data: []byte{2}},
	}
	parser := func(log types.Log) (byte, error) {
		if log.Data[0] != 2 {
			return 0, fmt.Errorf("not two")
		}
		return log.Data[0], nil
	}
	event, err := GetEventFromLogs(logs, parser)
	require.NoError(t, err)
	require.Equal(t, byte(2), event)

	_, err = GetEventFromLogs(logs[:1], parser)
	require.ErrorContains(t, err, "log 0 -> not two")
}

func TestTransactionError(t *testing.T) {
	baseErr := errors.New("boom")
	err := TransactionError(nil, baseErr, "failure calling %s", "method")
	require.ErrorIs(t, err, baseErr)
	require.EqualError(t, err, "failure calling method: boom (tx failed to be submitted)")

	tx := types.NewTx(&types.DynamicFeeTx{ChainID: big.NewInt(1)})
	err = TransactionError(tx, baseErr, "failure")
	require.ErrorContains(t, err, tx.Hash().String())
}

func TestTxDump(t *testing.T) {
	to := common.HexToAddress("0x0c0DEBA5E0000000000000000000000000000000")
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID: big.NewInt(43113),
		To:      &to,
		Data:    []byte{0xab, 0xcd},
		AccessList: types.AccessList{
			{Address: to, StorageKeys: []common.Hash{{1}}},
		},
	})
	dump, err := TxDump("complete weight change", tx)
	require.NoError(t, err)
	require.Contains(t, dump, "Tx Dump For complete weight change:")
	require.Contains(t, dump, "Calldata Dump:\n0xabcd\n")
	require.Contains(t, dump, "Access List Dump:")
}

func TestParsePrivateKey(t *testing.T) {
	pk, err := ParsePrivateKey(testPrivateKey)
	require.NoError(t, err)
	prefixed, err := ParsePrivateKey(" 0x" + testPrivateKey + "\n")
	require.NoError(t, err)
	require.True(t, pk.Equal(prefixed))

	_, err = ParsePrivateKey("zz")
	require.ErrorContains(t, err, "invalid evm private key")
}
