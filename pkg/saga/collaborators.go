// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package saga

import (
	"context"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/crypto/bls"
	"github.com/ava-labs/avalanchego/vms/platformvm/txs"
	"github.com/ava-labs/l1-orchestrator/sdk/interchain"
	"github.com/ava-labs/l1-orchestrator/sdk/justification"
	"github.com/ava-labs/l1-orchestrator/sdk/pchain"
	"github.com/ava-labs/l1-orchestrator/sdk/validatormanager"
	"github.com/ava-labs/libevm/common"
	"github.com/ava-labs/libevm/core/types"
)

//go:generate go run go.uber.org/mock/mockgen -package=${GOPACKAGE}mock -destination=${GOPACKAGE}mock/collaborators.go -mock_names=ValidatorManager=ValidatorManager,SignatureAggregator=SignatureAggregator,PChain=PChain,Justifier=Justifier . ValidatorManager,SignatureAggregator,PChain,Justifier
//go:generate go run go.uber.org/mock/mockgen -package=${GOPACKAGE}mock -destination=${GOPACKAGE}mock/pchain_reader.go -mock_names=PChainReader=PChainReader github.com/ava-labs/l1-orchestrator/sdk/validator PChainReader

// ValidatorManager is the L1 side of the saga: the validator manager contract
type ValidatorManager interface {
	Signer() common.Address
	Owner(ctx context.Context) (validatormanager.Owner, error)
	GetValidationID(ctx context.Context, nodeID ids.NodeID) (ids.ID, error)
	InitiateValidatorWeightUpdate(ctx context.Context, validationID ids.ID, weight uint64) (common.Hash, error)
	InitiateValidatorRegistration(ctx context.Context, req validatormanager.RegistrationRequest) (common.Hash, error)
	CompleteValidatorWeightUpdate(ctx context.Context, signedMessage []byte) (common.Hash, error)
	CompleteValidatorRegistration(ctx context.Context, signedMessage []byte) (common.Hash, error)
	WaitReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error)
}

type SignatureAggregator interface {
	AggregateSignatures(ctx context.Context, req interchain.AggregateRequest) (interchain.AggregateResponse, error)
}

// PChain builds, issues and inspects L1 validator txs on the P-Chain. Txs are
// built and signed before being issued, so their ID can be recorded first
type PChain interface {
	BuildSetL1ValidatorWeightTx(ctx context.Context, message []byte) (*txs.Tx, error)
	BuildRegisterL1ValidatorTx(ctx context.Context, balance uint64, proofOfPossession [bls.SignatureLen]byte, message []byte) (*txs.Tx, error)
	IssueTx(ctx context.Context, tx *txs.Tx) error
	TxAccepted(ctx context.Context, txID ids.ID) (bool, error)
	GetTxWarpMessage(ctx context.Context, txID ids.ID) ([]byte, error)
}

type Justifier interface {
	GetRegistrationJustification(ctx context.Context, target justification.Target, subnetID ids.ID) ([]byte, error)
}

var (
	_ ValidatorManager    = (*validatormanager.Manager)(nil)
	_ SignatureAggregator = (*interchain.AggregatorClient)(nil)
	_ PChain              = (*pchain.Issuer)(nil)
	_ Justifier           = (*justification.Extractor)(nil)
)
