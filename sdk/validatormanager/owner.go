// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package validatormanager

import (
	"context"
	"fmt"
	"math/big"
	"slices"

	ethereum "github.com/ava-labs/libevm"
	"github.com/ava-labs/libevm/common"
)

type OwnerKind string

const (
	// externally owned account
	OwnerEOA OwnerKind = "eoa"
	// multisig wallet contract, as a Safe
	OwnerMultisig OwnerKind = "multisig"
	// any other contract, assumed to be a staking manager
	OwnerStakingManager OwnerKind = "staking-manager"
)

// Owner describes who controls the validator manager. It is resolved once
// and then carried along the operations that need authorization
type Owner struct {
	Kind    OwnerKind        `json:"kind"`
	Address common.Address   `json:"address"`
	Signers []common.Address `json:"signers,omitempty"`
}

// ContractCaller is the subset of the evm client used for read only contract introspection
type ContractCaller interface {
	CodeAt(ctx context.Context, address common.Address, blockNumber *big.Int) ([]byte, error)
	CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

// GetOwnerAddress calls owner() on the validator manager at [managerAddress]
func GetOwnerAddress(ctx context.Context, caller ContractCaller, managerAddress common.Address) (common.Address, error) {
	data, err := ValidatorManagerABI.Pack("owner")
	if err != nil {
		return common.Address{}, err
	}
	out, err := caller.CallContract(ctx, ethereum.CallMsg{To: &managerAddress, Data: data}, nil)
	if err != nil {
		return common.Address{}, fmt.Errorf("failure calling owner() on validator manager %s: %w", managerAddress, err)
	}
	values, err := ValidatorManagerABI.Unpack("owner", out)
	if err != nil {
		return common.Address{}, fmt.Errorf("failure unpacking owner() output: %w", err)
	}
	owner, ok := values[0].(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("unexpected owner() output type %T", values[0])
	}
	return owner, nil
}

// getMultisigSigners returns the signers of [address] if it behaves as a Safe wallet
func getMultisigSigners(ctx context.Context, caller ContractCaller, address common.Address) ([]common.Address, bool) {
	data, err := SafeABI.Pack("getOwners")
	if err != nil {
		return nil, false
	}
	out, err := caller.CallContract(ctx, ethereum.CallMsg{To: &address, Data: data}, nil)
	if err != nil || len(out) == 0 {
		return nil, false
	}
	values, err := SafeABI.Unpack("getOwners", out)
	if err != nil || len(values) != 1 {
		return nil, false
	}
	signers, ok := values[0].([]common.Address)
	if !ok || len(signers) == 0 {
		return nil, false
	}
	return signers, true
}

// ResolveOwner obtains the owner of the validator manager at [managerAddress] and
// classifies it by introspecting its code
func ResolveOwner(ctx context.Context, caller ContractCaller, managerAddress common.Address) (Owner, error) {
	ownerAddress, err := GetOwnerAddress(ctx, caller, managerAddress)
	if err != nil {
		return Owner{}, err
	}
	code, err := caller.CodeAt(ctx, ownerAddress, nil)
	if err != nil {
		return Owner{}, err
	}
	if len(code) == 0 {
		return Owner{Kind: OwnerEOA, Address: ownerAddress}, nil
	}
	if signers, ok := getMultisigSigners(ctx, caller, ownerAddress); ok {
		return Owner{Kind: OwnerMultisig, Address: ownerAddress, Signers: signers}, nil
	}
	return Owner{Kind: OwnerStakingManager, Address: ownerAddress}, nil
}

// Authorize checks that [signer] can drive validator changes through the owner
func (o Owner) Authorize(signer common.Address) error {
	switch o.Kind {
	case OwnerEOA:
		if o.Address != signer {
			return fmt.Errorf("%w: %s is not the validator manager owner %s", ErrUnauthorized, signer, o.Address)
		}
		return nil
	case OwnerMultisig:
		if !slices.Contains(o.Signers, signer) {
			return fmt.Errorf("%w: %s is not a signer of multisig owner %s", ErrUnauthorized, signer, o.Address)
		}
		return nil
	case OwnerStakingManager:
		return fmt.Errorf("%w: validator manager is owned by staking manager %s, changes must go through it", ErrUnauthorized, o.Address)
	default:
		return fmt.Errorf("%w: unknown owner kind %q", ErrUnauthorized, o.Kind)
	}
}

// Equal indicates if both owners describe the same controlling party
func (o Owner) Equal(other Owner) bool {
	return o.Kind == other.Kind && o.Address == other.Address && slices.Equal(o.Signers, other.Signers)
}

func (o Owner) String() string {
	return fmt.Sprintf("%s(%s)", o.Kind, o.Address)
}
