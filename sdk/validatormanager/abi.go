// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package validatormanager

import (
	"bytes"
	_ "embed"

	"github.com/ava-labs/libevm/accounts/abi"
)

//go:embed abi/ValidatorManager.json
var validatorManagerABIJSON []byte

//go:embed abi/Safe.json
var safeABIJSON []byte

var (
	// subset of the ACP-99 validator manager interface used to change validator sets
	ValidatorManagerABI = mustParseABI(validatorManagerABIJSON)
	// subset of the Safe multisig wallet interface used to find out its signers
	SafeABI = mustParseABI(safeABIJSON)
)

func mustParseABI(b []byte) abi.ABI {
	parsed, err := abi.JSON(bytes.NewReader(b))
	if err != nil {
		panic(err)
	}
	return parsed
}
