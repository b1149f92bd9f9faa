// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package validatormanager

import (
	"context"
	"crypto/ecdsa"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/l1-orchestrator/sdk/evm"
	"github.com/ava-labs/l1-orchestrator/sdk/warp"
	ethereum "github.com/ava-labs/libevm"
	"github.com/ava-labs/libevm/common"
	"github.com/ava-labs/libevm/core/types"
	"github.com/ava-labs/libevm/crypto"
	"go.uber.org/zap"
)

// default validator manager address on L1s created with a genesis predeploy
var DefaultAddress = common.HexToAddress("0x0C0DEBA5E0000000000000000000000000000000")

// PChainOwner mirrors the PChainOwner solidity struct
type PChainOwner struct {
	Threshold uint32
	Addresses []common.Address
}

// RegistrationRequest holds the arguments of initiateValidatorRegistration
type RegistrationRequest struct {
	NodeID                ids.NodeID
	BLSPublicKey          []byte
	RemainingBalanceOwner PChainOwner
	DisableOwner          PChainOwner
	Weight                uint64
}

// Manager binds the validator manager contract at [address], sending txs
// through the lazily connected client of [handle]
type Manager struct {
	handle     *evm.ClientHandle
	address    common.Address
	privateKey *ecdsa.PrivateKey
	signer     common.Address
	logger     logging.Logger
}

// NewManager creates a binding. [privateKey] may be nil, in which case only
// read operations and raw tx generation for [signer] are available
func NewManager(
	handle *evm.ClientHandle,
	address common.Address,
	privateKey *ecdsa.PrivateKey,
	signer common.Address,
	logger logging.Logger,
) *Manager {
	if privateKey != nil {
		signer = crypto.PubkeyToAddress(privateKey.PublicKey)
	}
	if logger == nil {
		logger = logging.NoLog{}
	}
	return &Manager{
		handle:     handle,
		address:    address,
		privateKey: privateKey,
		signer:     signer,
		logger:     logger,
	}
}

func (m *Manager) Address() common.Address {
	return m.address
}

// Signer is the address that signs and pays for the manager txs
func (m *Manager) Signer() common.Address {
	return m.signer
}

func (m *Manager) Owner(ctx context.Context) (Owner, error) {
	client, err := m.handle.Get(ctx)
	if err != nil {
		return Owner{}, err
	}
	return ResolveOwner(ctx, client, m.address)
}

// GetValidationID returns the validation ID registered for [nodeID].
// A zero ID read from the contract means the node is not registered
func (m *Manager) GetValidationID(ctx context.Context, nodeID ids.NodeID) (ids.ID, error) {
	client, err := m.handle.Get(ctx)
	if err != nil {
		return ids.Empty, err
	}
	data, err := ValidatorManagerABI.Pack("registeredValidators", nodeID.Bytes())
	if err != nil {
		return ids.Empty, err
	}
	out, err := client.CallContract(ctx, ethereum.CallMsg{To: &m.address, Data: data}, nil)
	if err != nil {
		return ids.Empty, fmt.Errorf("failure calling registeredValidators on %s: %w", m.address, err)
	}
	values, err := ValidatorManagerABI.Unpack("registeredValidators", out)
	if err != nil {
		return ids.Empty, fmt.Errorf("failure unpacking registeredValidators output: %w", err)
	}
	validationID, ok := values[0].([32]byte)
	if !ok {
		return ids.Empty, fmt.Errorf("unexpected registeredValidators output type %T", values[0])
	}
	if validationID == ids.Empty {
		return ids.Empty, fmt.Errorf("%w: node %s", ErrValidatorNotRegistered, nodeID)
	}
	return validationID, nil
}

func (m *Manager) buildTx(
	ctx context.Context,
	description string,
	data []byte,
	accessList types.AccessList,
	generateRawTxOnly bool,
) (*types.Transaction, error) {
	client, err := m.handle.Get(ctx)
	if err != nil {
		return nil, err
	}
	tx, err := client.BuildTx(ctx, evm.TxParams{
		From:                  m.signer,
		PrivateKey:            m.privateKey,
		To:                    m.address,
		Data:                  data,
		AccessList:            accessList,
		GenerateRawTxOnly:     generateRawTxOnly,
		ErrorSignatureToError: ErrorSignatureToError,
	})
	if err != nil {
		return nil, fmt.Errorf("failure building %s tx: %w", description, err)
	}
	return tx, nil
}

func (m *Manager) send(ctx context.Context, description string, tx *types.Transaction) (common.Hash, error) {
	client, err := m.handle.Get(ctx)
	if err != nil {
		return common.Hash{}, err
	}
	if err := client.SendTransaction(ctx, tx); err != nil {
		return common.Hash{}, evm.TransactionError(tx, err, "failure sending %s tx", description)
	}
	m.logger.Info("Sent validator manager tx",
		zap.String("method", description),
		zap.Stringer("txHash", tx.Hash()),
	)
	return tx.Hash(), nil
}

// InitiateValidatorWeightUpdateTx builds the initiateValidatorWeightUpdate tx,
// unsigned if [generateRawTxOnly] is set so that a multisig owner can issue it
func (m *Manager) InitiateValidatorWeightUpdateTx(
	ctx context.Context,
	validationID ids.ID,
	weight uint64,
	generateRawTxOnly bool,
) (*types.Transaction, error) {
	data, err := ValidatorManagerABI.Pack("initiateValidatorWeightUpdate", [32]byte(validationID), weight)
	if err != nil {
		return nil, err
	}
	return m.buildTx(ctx, "initiateValidatorWeightUpdate", data, nil, generateRawTxOnly)
}

// InitiateValidatorWeightUpdate sends initiateValidatorWeightUpdate and returns
// its hash without waiting for the receipt
func (m *Manager) InitiateValidatorWeightUpdate(ctx context.Context, validationID ids.ID, weight uint64) (common.Hash, error) {
	tx, err := m.InitiateValidatorWeightUpdateTx(ctx, validationID, weight, false)
	if err != nil {
		return common.Hash{}, err
	}
	return m.send(ctx, "initiateValidatorWeightUpdate", tx)
}

func (m *Manager) InitiateValidatorRegistrationTx(
	ctx context.Context,
	req RegistrationRequest,
	generateRawTxOnly bool,
) (*types.Transaction, error) {
	data, err := ValidatorManagerABI.Pack(
		"initiateValidatorRegistration",
		req.NodeID.Bytes(),
		req.BLSPublicKey,
		req.RemainingBalanceOwner,
		req.DisableOwner,
		req.Weight,
	)
	if err != nil {
		return nil, err
	}
	return m.buildTx(ctx, "initiateValidatorRegistration", data, nil, generateRawTxOnly)
}

func (m *Manager) InitiateValidatorRegistration(ctx context.Context, req RegistrationRequest) (common.Hash, error) {
	tx, err := m.InitiateValidatorRegistrationTx(ctx, req, false)
	if err != nil {
		return common.Hash{}, err
	}
	return m.send(ctx, "initiateValidatorRegistration", tx)
}

// CompleteValidatorWeightUpdate sends completeValidatorWeightUpdate(0), with
// [signedMessage] given to the warp precompile through the tx access list
func (m *Manager) CompleteValidatorWeightUpdate(ctx context.Context, signedMessage []byte) (common.Hash, error) {
	return m.complete(ctx, "completeValidatorWeightUpdate", signedMessage)
}

// CompleteValidatorRegistration sends completeValidatorRegistration(0), with
// [signedMessage] given to the warp precompile through the tx access list
func (m *Manager) CompleteValidatorRegistration(ctx context.Context, signedMessage []byte) (common.Hash, error) {
	return m.complete(ctx, "completeValidatorRegistration", signedMessage)
}

func (m *Manager) complete(ctx context.Context, method string, signedMessage []byte) (common.Hash, error) {
	data, err := ValidatorManagerABI.Pack(method, uint32(0))
	if err != nil {
		return common.Hash{}, err
	}
	tx, err := m.buildTx(ctx, method, data, warp.PackWarpIntoAccessList(signedMessage), false)
	if err != nil {
		return common.Hash{}, err
	}
	return m.send(ctx, method, tx)
}

// WaitReceipt waits for the receipt of tx [hash]. A reverted tx is returned
// together with an [ErrTxReverted] error, joined with the contract error found
// in the tx trace when the rpc supports tracing
func (m *Manager) WaitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	client, err := m.handle.Get(ctx)
	if err != nil {
		return nil, err
	}
	receipt, err := client.WaitForReceipt(ctx, hash)
	if err != nil {
		return nil, err
	}
	if receipt.Status != types.ReceiptStatusSuccessful {
		return receipt, m.revertError(ctx, hash)
	}
	return receipt, nil
}

func (m *Manager) revertError(ctx context.Context, hash common.Hash) error {
	reverted := fmt.Errorf("%w: tx %s", ErrTxReverted, hash)
	trace, err := evm.GetTxTrace(ctx, m.handle.URL(), hash)
	if err != nil {
		m.logger.Debug("couldn't trace reverted tx", zap.Stringer("txHash", hash), zap.Error(err))
		return reverted
	}
	contractErr, err := evm.GetErrorFromTrace(trace, ErrorSignatureToError)
	if err != nil {
		m.logger.Debug("couldn't decode reverted tx trace", zap.Stringer("txHash", hash), zap.Error(err))
		return reverted
	}
	return fmt.Errorf("%w: %w", reverted, contractErr)
}
