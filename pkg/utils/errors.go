// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package utils

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInsufficientFunds = errors.New("insufficient funds to pay for the transaction")
	ErrNonceTooLow       = errors.New("nonce too low, a transaction from the signer was already accepted")
	ErrRejectedByWallet  = errors.New("transaction rejected by the wallet")
)

// humanizedErrors maps error fragments as returned by the evm and P-Chain apis into
// friendlier errors
var humanizedErrors = []struct {
	fragment string
	err      error
}{
	{fragment: "insufficient funds", err: ErrInsufficientFunds},
	{fragment: "nonce too low", err: ErrNonceTooLow},
	{fragment: "user rejected", err: ErrRejectedByWallet},
	{fragment: "user denied", err: ErrRejectedByWallet},
}

// HumanizeError rephrases well known low level failures. The original error is kept
// in the chain so that errors.Is keeps working on it
func HumanizeError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	for _, h := range humanizedErrors {
		if errors.Is(err, h.err) {
			return err
		}
		if strings.Contains(msg, h.fragment) {
			return fmt.Errorf("%w: %w", h.err, err)
		}
	}
	return err
}
