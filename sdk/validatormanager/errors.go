// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package validatormanager

import (
	"errors"
	"fmt"
)

var (
	ErrValidatorNotRegistered = errors.New("validator is not registered at the validator manager")
	ErrUnauthorized           = errors.New("signer is not authorized to manage validators")
	ErrTxReverted             = errors.New("transaction reverted")

	errInvalidValidationID                 = fmt.Errorf("invalid validation id")
	errInvalidValidatorStatus              = fmt.Errorf("invalid validator status")
	errMaxChurnRateExceeded                = fmt.Errorf("max churn rate exceeded")
	errInvalidNonce                        = fmt.Errorf("invalid nonce")
	errInvalidTotalWeight                  = fmt.Errorf("invalid total weight")
	errInvalidValidatorManagerBlockchainID = fmt.Errorf("invalid validator manager blockchain ID")
	errInvalidValidatorManagerAddress      = fmt.Errorf("invalid validator manager address")
	errNodeAlreadyRegistered               = fmt.Errorf("node already registered")
	errInvalidRegistrationExpiry           = fmt.Errorf("invalid registration expiry")
	errInvalidBLSKeyLength                 = fmt.Errorf("invalid BLS key length")
	errInvalidNodeID                       = fmt.Errorf("invalid node id")
	errInvalidPChainOwnerThreshold         = fmt.Errorf("invalid P-Chain owner threshold")
	errInvalidPChainOwnerAddresses         = fmt.Errorf("invalid P-Chain owner addresses")
	errInvalidWarpMessage                  = fmt.Errorf("invalid warp message")
	errInvalidWarpSourceChainID            = fmt.Errorf("invalid warp source chain ID")
	errInvalidWarpOriginSenderAddress      = fmt.Errorf("invalid warp origin sender address")
	errUnexpectedRegistrationStatus        = fmt.Errorf("unexpected registration status")
	errOwnableUnauthorizedAccount          = fmt.Errorf("%w: caller is not the validator manager owner", ErrUnauthorized)

	// ErrorSignatureToError maps validator manager custom errors to golang errors
	ErrorSignatureToError = map[string]error{
		"InvalidValidationID(bytes32)":                 errInvalidValidationID,
		"InvalidValidatorStatus(uint8)":                errInvalidValidatorStatus,
		"MaxChurnRateExceeded(uint64)":                 errMaxChurnRateExceeded,
		"InvalidNonce(uint64)":                         errInvalidNonce,
		"InvalidTotalWeight(uint64)":                   errInvalidTotalWeight,
		"InvalidValidatorManagerBlockchainID(bytes32)": errInvalidValidatorManagerBlockchainID,
		"InvalidValidatorManagerAddress(address)":      errInvalidValidatorManagerAddress,
		"NodeAlreadyRegistered(bytes)":                 errNodeAlreadyRegistered,
		"InvalidRegistrationExpiry(uint64)":            errInvalidRegistrationExpiry,
		"InvalidBLSKeyLength(uint256)":                 errInvalidBLSKeyLength,
		"InvalidNodeID(bytes)":                         errInvalidNodeID,
		"InvalidPChainOwnerThreshold(uint256,uint256)": errInvalidPChainOwnerThreshold,
		"InvalidPChainOwnerAddresses()":                errInvalidPChainOwnerAddresses,
		"InvalidWarpMessage()":                         errInvalidWarpMessage,
		"InvalidWarpSourceChainID(bytes32)":            errInvalidWarpSourceChainID,
		"InvalidWarpOriginSenderAddress(address)":      errInvalidWarpOriginSenderAddress,
		"UnexpectedRegistrationStatus(bool)":           errUnexpectedRegistrationStatus,
		"OwnableUnauthorizedAccount(address)":          errOwnableUnauthorizedAccount,
	}
)
