// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package evm

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/ava-labs/libevm/common"
	"github.com/ava-labs/libevm/crypto"
)

var ErrUnknownErrorSelector = errors.New("unknown error selector")

// rpc errors carrying revert data, as returned by ethclient on call and estimation failures
type dataError interface {
	ErrorData() interface{}
}

// returns evm function selector code for the given function signature
// evm maps function and error signatures into codes that are then used in revert data
func GetFunctionSelector(functionSignature string) []byte {
	return crypto.Keccak256([]byte(functionSignature))[:4]
}

// GetErrorFromRevertData maps the custom error encoded in [revertData] to a golang error
// by using [errorSignatureToError]
func GetErrorFromRevertData(revertData []byte, errorSignatureToError map[string]error) error {
	if len(revertData) < 4 {
		return fmt.Errorf("less than 4 bytes in revert data")
	}
	for errorSignature, err := range errorSignatureToError {
		if bytes.Equal(revertData[:4], GetFunctionSelector(errorSignature)) {
			return err
		}
	}
	return fmt.Errorf("%w: 0x%x", ErrUnknownErrorSelector, revertData[:4])
}

// ErrorFromCallError returns the contract error associated to the revert data in [err], if any.
// nil is returned when [err] carries no decodable revert data
func ErrorFromCallError(err error, errorSignatureToError map[string]error) error {
	if err == nil || len(errorSignatureToError) == 0 {
		return nil
	}
	var de dataError
	if !errors.As(err, &de) {
		return nil
	}
	hexData, ok := de.ErrorData().(string)
	if !ok || !strings.HasPrefix(hexData, "0x") {
		return nil
	}
	revertData := common.FromHex(hexData)
	if len(revertData) < 4 {
		return nil
	}
	contractErr := GetErrorFromRevertData(revertData, errorSignatureToError)
	if errors.Is(contractErr, ErrUnknownErrorSelector) {
		return nil
	}
	return fmt.Errorf("%w: %s", contractErr, err.Error())
}
