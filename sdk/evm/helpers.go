// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package evm

import (
	"crypto/ecdsa"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/ava-labs/libevm/core/types"
	"github.com/ava-labs/libevm/crypto"
)

// Returns the first log in 'logs' that is successfully parsed by 'parser'
func GetEventFromLogs[T any](logs []*types.Log, parser func(log types.Log) (T, error)) (T, error) {
	cumErrMsg := ""
	for i, log := range logs {
		event, err := parser(*log)
		if err == nil {
			return event, nil
		}
		if cumErrMsg != "" {
			cumErrMsg += "; "
		}
		cumErrMsg += fmt.Sprintf("log %d -> %s", i, err.Error())
	}
	return *new(T), fmt.Errorf("failed to find %T event in receipt logs: [%s]", *new(T), cumErrMsg)
}

// transform a tx operation error into an error that contains:
// - the [err] itself
// - the [tx] hash (or information on the tx not being submitted)
// - another descriptive [msg], together with formated [args]
func TransactionError(tx *types.Transaction, err error, msg string, args ...interface{}) error {
	msgSuffix := ": %w"
	if tx != nil {
		msgSuffix += fmt.Sprintf(" (txHash=%s)", tx.Hash().String())
	} else {
		msgSuffix += " (tx failed to be submitted)"
	}
	args = append(args, err)
	return fmt.Errorf(msg+msgSuffix, args...)
}

// dumps a [tx] hexa description, for it to be separately issued using external tools
func TxDump(description string, tx *types.Transaction) (string, error) {
	bs, err := tx.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("failure marshalling raw evm tx: %w", err)
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "Tx Dump For %s:\n", description)
	fmt.Fprintf(&sb, "0x%s\n", hex.EncodeToString(bs))
	sb.WriteString("Calldata Dump:\n")
	fmt.Fprintf(&sb, "0x%s\n", hex.EncodeToString(tx.Data()))
	if len(tx.AccessList()) > 0 {
		sb.WriteString("Access List Dump:\n")
		for _, t := range tx.AccessList() {
			fmt.Fprintf(&sb, "  Address: %s\n", t.Address)
			for _, s := range t.StorageKeys {
				fmt.Fprintf(&sb, "  Storage: %s\n", s)
			}
		}
	}
	return sb.String(), nil
}

// ParsePrivateKey decodes an hex encoded ecdsa [privateKey], with or without 0x prefix
func ParsePrivateKey(privateKey string) (*ecdsa.PrivateKey, error) {
	pk, err := crypto.HexToECDSA(strings.TrimPrefix(strings.TrimSpace(privateKey), "0x"))
	if err != nil {
		return nil, fmt.Errorf("invalid evm private key: %w", err)
	}
	return pk, nil
}
