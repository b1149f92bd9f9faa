// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package saga

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/constants"
	"github.com/ava-labs/avalanchego/utils/crypto/bls"
	"github.com/ava-labs/avalanchego/utils/hashing"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/set"
	"github.com/ava-labs/avalanchego/vms/components/avax"
	"github.com/ava-labs/avalanchego/vms/platformvm/txs"
	avalancheWarp "github.com/ava-labs/avalanchego/vms/platformvm/warp"
	warpMessage "github.com/ava-labs/avalanchego/vms/platformvm/warp/message"
	"github.com/ava-labs/l1-orchestrator/pkg/checkpoint"
	"github.com/ava-labs/l1-orchestrator/pkg/saga/sagamock"
	"github.com/ava-labs/l1-orchestrator/sdk/evm"
	"github.com/ava-labs/l1-orchestrator/sdk/interchain"
	"github.com/ava-labs/l1-orchestrator/sdk/justification"
	"github.com/ava-labs/l1-orchestrator/sdk/pchain"
	"github.com/ava-labs/l1-orchestrator/sdk/validator"
	"github.com/ava-labs/l1-orchestrator/sdk/validatormanager"
	"github.com/ava-labs/l1-orchestrator/sdk/warp"
	"github.com/ava-labs/libevm/common"
	"github.com/ava-labs/libevm/core/types"
	subnetEvmWarp "github.com/ava-labs/subnet-evm/precompile/contracts/warp"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var (
	managerAddress = common.HexToAddress("0x0C0DEBA5E0000000000000000000000000000000")
	signerAddress  = common.HexToAddress("0x8db97C7cEcE249c2b98bDC0226Cc4C2A57BF52FC")
	l1ChainID      = ids.GenerateTestID()
	networkID      = constants.FujiID
)

type fixture struct {
	vm         *sagamock.ValidatorManager
	aggregator *sagamock.SignatureAggregator
	pChain     *sagamock.PChain
	justifier  *sagamock.Justifier
	validators *sagamock.PChainReader
	store      checkpoint.Store
	manager    *Manager

	subnetID      ids.ID
	nodeID        ids.NodeID
	registration  *warpMessage.RegisterL1Validator
	validationID  ids.ID
	justification []byte
}

func newFixture(t *testing.T) *fixture {
	ctrl := gomock.NewController(t)
	store, err := checkpoint.NewFileStore(afero.NewMemMapFs(), "/sagas")
	require.NoError(t, err)
	f := &fixture{
		vm:         sagamock.NewValidatorManager(ctrl),
		aggregator: sagamock.NewSignatureAggregator(ctrl),
		pChain:     sagamock.NewPChain(ctrl),
		justifier:  sagamock.NewJustifier(ctrl),
		validators: sagamock.NewPChainReader(ctrl),
		store:      store,
		subnetID:   ids.GenerateTestID(),
		nodeID:     ids.GenerateTestNodeID(),
	}
	f.registration, err = warpMessage.NewRegisterL1Validator(
		f.subnetID,
		f.nodeID,
		[bls.PublicKeyLen]byte{1, 2, 3},
		1_900_000_000,
		warpMessage.PChainOwner{},
		warpMessage.PChainOwner{},
		100,
	)
	require.NoError(t, err)
	f.validationID = ids.ID(hashing.ComputeHash256Array(f.registration.Bytes()))
	f.justification = warp.EncodeJustification(f.registration.Bytes())
	f.manager, err = NewManager(ManagerConfig{
		Dependencies: Dependencies{
			ValidatorManager: f.vm,
			Aggregator:       f.aggregator,
			PChain:           f.pChain,
			Justifier:        f.justifier,
		},
		Validators: f.validators,
		Store:      store,
		Logger:     logging.NoLog{},
	})
	require.NoError(t, err)
	return f
}

func (f *fixture) expectOwner() {
	f.vm.EXPECT().Owner(gomock.Any()).Return(validatormanager.Owner{
		Kind:    validatormanager.OwnerEOA,
		Address: signerAddress,
	}, nil).AnyTimes()
	f.vm.EXPECT().Signer().Return(signerAddress).AnyTimes()
}

// expectValidator sets the current weight of the validator at 100, out of a 10000 total
func (f *fixture) expectValidator() {
	f.validators.EXPECT().L1Validator(gomock.Any(), f.validationID).Return(validator.L1Validator{
		SubnetID: f.subnetID,
		NodeID:   f.nodeID,
		Weight:   100,
	}, nil).AnyTimes()
	f.validators.EXPECT().ValidatorWeights(gomock.Any(), f.subnetID).Return(map[ids.NodeID]uint64{
		f.nodeID:                 100,
		ids.GenerateTestNodeID(): 9900,
	}, nil).AnyTimes()
}

func warpLog(t *testing.T, payload []byte) (*types.Log, []byte) {
	unsignedMessage, err := warp.PackAddressedCallMessage(networkID, l1ChainID, managerAddress.Bytes(), payload)
	require.NoError(t, err)
	topics, data, err := subnetEvmWarp.PackSendWarpMessageEvent(managerAddress, common.Hash{}, unsignedMessage)
	require.NoError(t, err)
	return &types.Log{
		Address: subnetEvmWarp.ContractAddress,
		Topics:  topics,
		Data:    data,
	}, unsignedMessage
}

// weightUpdateReceipt builds the receipt of a successful weight update initiation
// and returns it along with the unsigned warp message it emits
func (f *fixture) weightUpdateReceipt(t *testing.T, nonce uint64, weight uint64) (*types.Receipt, []byte) {
	payload, err := warpMessage.NewL1ValidatorWeight(f.validationID, nonce, weight)
	require.NoError(t, err)
	event := validatormanager.ValidatorManagerABI.Events["InitiatedValidatorWeightUpdate"]
	data, err := event.Inputs.NonIndexed().Pack(nonce, [32]byte(ids.GenerateTestID()), weight)
	require.NoError(t, err)
	eventLog := &types.Log{
		Address: managerAddress,
		Topics:  []common.Hash{event.ID, common.Hash(f.validationID)},
		Data:    data,
	}
	msgLog, unsignedMessage := warpLog(t, payload.Bytes())
	return &types.Receipt{
		Status: types.ReceiptStatusSuccessful,
		Logs:   []*types.Log{eventLog, msgLog},
	}, unsignedMessage
}

func (f *fixture) registrationReceipt(t *testing.T) (*types.Receipt, []byte) {
	event := validatormanager.ValidatorManagerABI.Events["InitiatedValidatorRegistration"]
	data, err := event.Inputs.NonIndexed().Pack([32]byte(ids.GenerateTestID()), uint64(1_900_000_000), uint64(100))
	require.NoError(t, err)
	var nodeTopic common.Hash
	copy(nodeTopic[:], f.nodeID.Bytes())
	eventLog := &types.Log{
		Address: managerAddress,
		Topics:  []common.Hash{event.ID, common.Hash(f.validationID), nodeTopic},
		Data:    data,
	}
	msgLog, unsignedMessage := warpLog(t, f.registration.Bytes())
	return &types.Receipt{
		Status: types.ReceiptStatusSuccessful,
		Logs:   []*types.Log{eventLog, msgLog},
	}, unsignedMessage
}

// signWarp wraps [unsignedMessage] into a warp message with an empty signer set
func signWarp(t *testing.T, unsignedMessage []byte) []byte {
	unsigned, err := avalancheWarp.ParseUnsignedMessage(unsignedMessage)
	require.NoError(t, err)
	msg, err := avalancheWarp.NewMessage(unsigned, &avalancheWarp.BitSetSignature{
		Signers: set.NewBits(0).Bytes(),
	})
	require.NoError(t, err)
	return msg.Bytes()
}

func pChainTx(t *testing.T, unsignedTx txs.UnsignedTx) *txs.Tx {
	tx := &txs.Tx{Unsigned: unsignedTx}
	require.NoError(t, tx.Initialize(txs.Codec))
	return tx
}

func pChainBaseTx() txs.BaseTx {
	return txs.BaseTx{BaseTx: avax.BaseTx{
		NetworkID:    networkID,
		BlockchainID: constants.PlatformChainID,
	}}
}

func weightTx(t *testing.T, signedMessage []byte) *txs.Tx {
	return pChainTx(t, &txs.SetL1ValidatorWeightTx{
		BaseTx:  pChainBaseTx(),
		Message: signedMessage,
	})
}

func signedResponse(b []byte) interchain.AggregateResponse {
	return interchain.AggregateResponse{SignedMessage: hex.EncodeToString(b)}
}

func TestChangeWeightEndToEnd(t *testing.T) {
	f := newFixture(t)
	f.expectOwner()
	f.expectValidator()
	ctx := context.Background()

	initiateHash := common.HexToHash("0x01")
	completeHash := common.HexToHash("0x05")
	receipt, unsignedMessage := f.weightUpdateReceipt(t, 3, 150)
	signedMessage := signWarp(t, unsignedMessage)
	tx := weightTx(t, signedMessage)
	response, err := warp.PackL1ValidatorWeightMessage(
		warp.WeightPayload{ValidationID: f.validationID, Nonce: 3, Weight: 150},
		networkID,
		constants.PlatformChainID,
	)
	require.NoError(t, err)
	pChainSignature := append(append([]byte{}, response...), 0xCC)

	gomock.InOrder(
		f.vm.EXPECT().InitiateValidatorWeightUpdate(gomock.Any(), f.validationID, uint64(150)).Return(initiateHash, nil),
		f.vm.EXPECT().WaitReceipt(gomock.Any(), initiateHash).Return(receipt, nil),
		f.aggregator.EXPECT().AggregateSignatures(gomock.Any(), interchain.AggregateRequest{
			Message:          hex.EncodeToString(unsignedMessage),
			SigningSubnetID:  f.subnetID.String(),
			QuorumPercentage: interchain.DefaultQuorumPercentage,
		}).Return(signedResponse(signedMessage), nil),
		f.pChain.EXPECT().BuildSetL1ValidatorWeightTx(gomock.Any(), signedMessage).Return(tx, nil),
		f.pChain.EXPECT().IssueTx(gomock.Any(), tx).Return(nil),
		f.justifier.EXPECT().GetRegistrationJustification(gomock.Any(), justification.Target{
			ValidationID: f.validationID,
			NodeID:       f.nodeID,
		}, f.subnetID).Return(f.justification, nil),
		f.aggregator.EXPECT().AggregateSignatures(gomock.Any(), interchain.AggregateRequest{
			Message:          hex.EncodeToString(response),
			Justification:    hex.EncodeToString(f.justification),
			SigningSubnetID:  f.subnetID.String(),
			QuorumPercentage: interchain.DefaultQuorumPercentage,
		}).Return(signedResponse(pChainSignature), nil),
		f.vm.EXPECT().CompleteValidatorWeightUpdate(gomock.Any(), []byte(pChainSignature)).Return(completeHash, nil),
		f.vm.EXPECT().WaitReceipt(gomock.Any(), completeHash).Return(&types.Receipt{Status: types.ReceiptStatusSuccessful}, nil),
	)

	state, err := f.manager.StartChangeWeight(ctx, ChangeWeightRequest{
		SubnetID:     f.subnetID,
		NetworkID:    networkID,
		ValidationID: f.validationID,
		Weight:       150,
	})
	require.NoError(t, err)
	require.Equal(t, PhaseCompleted, state.Phase)
	for _, step := range state.Steps {
		require.Equal(t, StatusSuccess, step.Status, step.Key)
		require.Equal(t, 1, step.Attempts)
	}
	require.Equal(t, uint64(100), state.Request.CurrentWeight)
	require.Equal(t, uint64(10000), state.Request.TotalWeight)
	require.Equal(t, completeHash, state.Artifacts.CompleteTxHash)
	require.Equal(t, tx.ID(), state.Artifacts.PChainTxID)
	require.Equal(t, tx.Bytes(), []byte(state.Artifacts.PChainTx))
	require.Equal(t, uint64(3), state.Artifacts.EventData.Nonce)

	stored, err := f.manager.Load(ctx, state.ID)
	require.NoError(t, err)
	require.Equal(t, PhaseCompleted, stored.Phase)
	require.Equal(t, completeHash, stored.Artifacts.CompleteTxHash)

	_, err = f.manager.Resume(ctx, state.ID)
	require.ErrorIs(t, err, ErrSagaCompleted)
}

func TestChangeWeightHaltsAtFailingStep(t *testing.T) {
	f := newFixture(t)
	f.expectOwner()
	f.expectValidator()
	ctx := context.Background()

	initiateHash := common.HexToHash("0x01")
	receipt, _ := f.weightUpdateReceipt(t, 1, 150)
	f.vm.EXPECT().InitiateValidatorWeightUpdate(gomock.Any(), f.validationID, uint64(150)).Return(initiateHash, nil)
	f.vm.EXPECT().WaitReceipt(gomock.Any(), initiateHash).Return(receipt, nil)
	f.aggregator.EXPECT().AggregateSignatures(gomock.Any(), gomock.Any()).Return(
		interchain.AggregateResponse{},
		&interchain.AggregatorError{StatusCode: http.StatusBadRequest, Message: "failed to collect a threshold of signatures"},
	)

	var observed []StepState
	f.manager.cfg.Observer = func(_ *State, step StepState) {
		observed = append(observed, step)
	}
	state, err := f.manager.StartChangeWeight(ctx, ChangeWeightRequest{
		SubnetID:     f.subnetID,
		NetworkID:    networkID,
		ValidationID: f.validationID,
		Weight:       150,
	})
	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	require.Equal(t, StepSignMessage, stepErr.Step)
	require.Equal(t, KindAggregation, stepErr.Kind)
	require.False(t, stepErr.Retryable())
	require.EqualError(t, errors.Unwrap(err), "failed to collect a threshold of signatures")

	require.Equal(t, PhaseError, state.Phase)
	require.Equal(t, StatusSuccess, state.Steps[0].Status)
	require.Equal(t, StatusError, state.Steps[1].Status)
	require.Equal(t, KindAggregation, state.Steps[1].ErrorKind)
	require.Equal(t, "failed to collect a threshold of signatures", state.Steps[1].Error)
	for _, step := range state.Steps[2:] {
		require.Equal(t, StatusPending, step.Status)
		require.Zero(t, step.Attempts)
	}
	failed, ok := state.FailedStep()
	require.True(t, ok)
	require.Equal(t, StepSignMessage, failed.Key)
	require.Equal(t, StepSignMessage, state.NextStep())

	// loading and outcome of both executed steps
	require.Len(t, observed, 4)
	require.Equal(t, StatusError, observed[3].Status)

	stored, err := f.manager.Load(ctx, state.ID)
	require.NoError(t, err)
	require.Equal(t, state.Steps, stored.Steps)
	require.Equal(t, initiateHash, stored.Artifacts.InitiateTxHash)
}

// failedAtPChainSignature stores a change weight saga whose first three steps succeeded
func (f *fixture) failedAtPChainSignature(t *testing.T, unsignedMessage []byte) *State {
	state := NewState(KindChangeWeight, Request{
		SubnetID:        f.subnetID,
		SigningSubnetID: f.subnetID,
		NetworkID:       networkID,
		NodeID:          f.nodeID,
		ValidationID:    f.validationID,
		Weight:          150,
	}, validatormanager.Owner{Kind: validatormanager.OwnerEOA, Address: signerAddress}, signerAddress)
	for i := range state.Steps[:3] {
		state.Steps[i].Status = StatusSuccess
		state.Steps[i].Attempts = 1
	}
	state.Steps[3].Status = StatusError
	state.Steps[3].Error = "connection refused"
	state.Steps[3].ErrorKind = KindTransient
	state.Steps[3].Attempts = 1
	state.Phase = PhaseError
	state.Artifacts = Artifacts{
		InitiateTxHash:      common.HexToHash("0x01"),
		UnsignedWarpMessage: unsignedMessage,
		EventData: &validatormanager.EventData{
			ValidationID: f.validationID,
			Nonce:        3,
			Weight:       150,
		},
		SignedWarpMessage: []byte{0xAA},
		PChainTxID:        ids.GenerateTestID(),
	}
	data, err := state.Marshal()
	require.NoError(t, err)
	require.NoError(t, f.store.Put(context.Background(), state.ID, data))
	return state
}

func TestRetryReusesArtifacts(t *testing.T) {
	f := newFixture(t)
	f.expectOwner()
	ctx := context.Background()

	_, unsignedMessage := f.weightUpdateReceipt(t, 3, 150)
	state := f.failedAtPChainSignature(t, unsignedMessage)
	completeHash := common.HexToHash("0x05")
	pChainSignature := []byte{0xCC, 0xDD}

	// no initiate tx nor P-Chain tx is issued again
	f.pChain.EXPECT().GetTxWarpMessage(gomock.Any(), state.Artifacts.PChainTxID).Return(unsignedMessage, nil)
	f.justifier.EXPECT().GetRegistrationJustification(gomock.Any(), gomock.Any(), f.subnetID).Return(f.justification, nil)
	f.aggregator.EXPECT().AggregateSignatures(gomock.Any(), gomock.Any()).Return(signedResponse(pChainSignature), nil)
	f.vm.EXPECT().CompleteValidatorWeightUpdate(gomock.Any(), pChainSignature).Return(completeHash, nil)
	f.vm.EXPECT().WaitReceipt(gomock.Any(), completeHash).Return(&types.Receipt{Status: types.ReceiptStatusSuccessful}, nil)

	retried, err := f.manager.Retry(ctx, state.ID, "")
	require.NoError(t, err)
	require.Equal(t, PhaseCompleted, retried.Phase)
	require.Equal(t, 2, retried.Steps[3].Attempts)
	require.Empty(t, retried.Steps[3].Error)
	require.Equal(t, 1, retried.Steps[0].Attempts)
	require.Equal(t, state.Artifacts.InitiateTxHash, retried.Artifacts.InitiateTxHash)
	require.Equal(t, completeHash, retried.Artifacts.CompleteTxHash)
}

func TestRetryRejectsMismatchedPChainMessage(t *testing.T) {
	f := newFixture(t)
	f.expectOwner()

	_, unsignedMessage := f.weightUpdateReceipt(t, 3, 150)
	state := f.failedAtPChainSignature(t, unsignedMessage)
	_, otherNonceMessage := f.weightUpdateReceipt(t, 4, 150)
	f.pChain.EXPECT().GetTxWarpMessage(gomock.Any(), state.Artifacts.PChainTxID).Return(otherNonceMessage, nil)

	_, err := f.manager.Retry(context.Background(), state.ID, StepPChainSignature)
	require.ErrorIs(t, err, ErrArtifactMismatch)
	var stepErr *StepError
	require.True(t, errors.As(err, &stepErr))
	require.Equal(t, KindMalformed, stepErr.Kind)
}

func TestRetryMissingJustification(t *testing.T) {
	f := newFixture(t)
	f.expectOwner()

	_, unsignedMessage := f.weightUpdateReceipt(t, 3, 150)
	state := f.failedAtPChainSignature(t, unsignedMessage)
	f.pChain.EXPECT().GetTxWarpMessage(gomock.Any(), gomock.Any()).Return(unsignedMessage, nil)
	f.justifier.EXPECT().GetRegistrationJustification(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, nil)

	retried, err := f.manager.Retry(context.Background(), state.ID, "")
	require.ErrorIs(t, err, justification.ErrJustificationNotFound)
	require.Equal(t, KindNotFound, retried.Steps[3].ErrorKind)
	require.Equal(t, StatusPending, retried.Steps[4].Status)
}

func TestRetryStaleOwner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, unsignedMessage := f.weightUpdateReceipt(t, 3, 150)
	state := f.failedAtPChainSignature(t, unsignedMessage)

	f.vm.EXPECT().Owner(gomock.Any()).Return(validatormanager.Owner{
		Kind:    validatormanager.OwnerEOA,
		Address: common.HexToAddress("0x01"),
	}, nil)
	f.vm.EXPECT().Signer().Return(signerAddress)

	invalidated, err := f.manager.Retry(ctx, state.ID, "")
	require.ErrorIs(t, err, ErrStaleOwner)
	require.Equal(t, PhaseInvalidated, invalidated.Phase)

	stored, err := f.manager.Load(ctx, state.ID)
	require.NoError(t, err)
	require.Equal(t, PhaseInvalidated, stored.Phase)

	_, err = f.manager.Retry(ctx, state.ID, "")
	require.ErrorIs(t, err, ErrSagaInvalidated)
}

func TestRetryWithoutSigner(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, unsignedMessage := f.weightUpdateReceipt(t, 3, 150)
	state := f.failedAtPChainSignature(t, unsignedMessage)

	// no EVM key nor --signer
	f.vm.EXPECT().Owner(gomock.Any()).Return(validatormanager.Owner{
		Kind:    validatormanager.OwnerEOA,
		Address: signerAddress,
	}, nil)
	f.vm.EXPECT().Signer().Return(common.Address{})

	_, err := f.manager.Retry(ctx, state.ID, "")
	require.ErrorIs(t, err, ErrUnknownSigner)
	require.NotErrorIs(t, err, ErrStaleOwner)
	require.Equal(t, KindAuthorization, ClassifyError(err))

	stored, err := f.manager.Load(ctx, state.ID)
	require.NoError(t, err)
	require.Equal(t, PhaseError, stored.Phase)
	require.Equal(t, state.Steps, stored.Steps)
}

func TestRetryWhileRunning(t *testing.T) {
	f := newFixture(t)
	_, unsignedMessage := f.weightUpdateReceipt(t, 3, 150)
	state := f.failedAtPChainSignature(t, unsignedMessage)

	release, err := f.manager.acquire(context.Background(), state.ID)
	require.NoError(t, err)
	_, err = f.manager.Retry(context.Background(), state.ID, "")
	require.ErrorIs(t, err, ErrSagaRunning)
	require.ErrorIs(t, f.manager.Discard(context.Background(), state.ID), ErrSagaRunning)
	release()

	require.NoError(t, f.manager.Discard(context.Background(), state.ID))
	_, err = f.manager.Load(context.Background(), state.ID)
	require.ErrorIs(t, err, checkpoint.ErrNotFound)
}

func TestRetryRunningInOtherManager(t *testing.T) {
	dir := t.TempDir()
	newManager := func(f *fixture) *Manager {
		store, err := checkpoint.NewFileStore(afero.NewOsFs(), dir)
		require.NoError(t, err)
		t.Cleanup(func() { _ = store.Close() })
		manager, err := NewManager(ManagerConfig{
			Dependencies: Dependencies{
				ValidatorManager: f.vm,
				Aggregator:       f.aggregator,
				PChain:           f.pChain,
				Justifier:        f.justifier,
			},
			Validators: f.validators,
			Store:      store,
			Logger:     logging.NoLog{},
		})
		require.NoError(t, err)
		return manager
	}
	f := newFixture(t)
	f.manager = newManager(f)
	f.store = f.manager.cfg.Store
	other := newManager(f)

	_, unsignedMessage := f.weightUpdateReceipt(t, 3, 150)
	state := f.failedAtPChainSignature(t, unsignedMessage)

	// each manager owns its own store, as two processes would
	release, err := f.manager.acquire(context.Background(), state.ID)
	require.NoError(t, err)
	_, err = other.Retry(context.Background(), state.ID, "")
	require.ErrorIs(t, err, ErrSagaRunning)
	require.ErrorIs(t, other.Discard(context.Background(), state.ID), ErrSagaRunning)
	release()

	require.NoError(t, other.Discard(context.Background(), state.ID))
}

func TestRetryUnknownStep(t *testing.T) {
	f := newFixture(t)
	f.expectOwner()
	_, unsignedMessage := f.weightUpdateReceipt(t, 3, 150)
	state := f.failedAtPChainSignature(t, unsignedMessage)

	_, err := f.manager.Retry(context.Background(), state.ID, StepCompleteValidatorRegistration)
	require.ErrorIs(t, err, ErrUnknownStep)
}

func TestResumeRecordedTxStillPending(t *testing.T) {
	f := newFixture(t)
	f.expectOwner()
	ctx := context.Background()
	recordedHash := common.HexToHash("0x01")
	state := NewState(KindChangeWeight, Request{
		SubnetID:     f.subnetID,
		ValidationID: f.validationID,
		Weight:       150,
	}, validatormanager.Owner{Kind: validatormanager.OwnerEOA, Address: signerAddress}, signerAddress)
	state.Steps[0].Status = StatusLoading
	state.Steps[0].Attempts = 1
	state.Artifacts.InitiateTxHash = recordedHash
	data, err := state.Marshal()
	require.NoError(t, err)
	require.NoError(t, f.store.Put(ctx, state.ID, data))

	// known but not mined before the wait timed out: no new tx is sent
	f.vm.EXPECT().WaitReceipt(gomock.Any(), recordedHash).Return(nil, context.DeadlineExceeded)
	resumed, err := f.manager.Resume(ctx, state.ID)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, KindTransient, resumed.Steps[0].ErrorKind)
	require.Equal(t, recordedHash, resumed.Artifacts.InitiateTxHash)
}

func TestResumeReusesRecordedTx(t *testing.T) {
	tests := []struct {
		name        string
		recordedErr error
	}{
		{name: "recorded tx succeeded"},
		{name: "recorded tx reverted", recordedErr: validatormanager.ErrTxReverted},
		{name: "recorded tx dropped", recordedErr: fmt.Errorf("failure waiting for tx: %w", evm.ErrTxNotFound)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.expectOwner()
			ctx := context.Background()
			recordedHash := common.HexToHash("0x01")
			receipt, unsignedMessage := f.weightUpdateReceipt(t, 3, 150)

			state := NewState(KindChangeWeight, Request{
				SubnetID:        f.subnetID,
				SigningSubnetID: f.subnetID,
				NetworkID:       networkID,
				NodeID:          f.nodeID,
				ValidationID:    f.validationID,
				Weight:          150,
			}, validatormanager.Owner{Kind: validatormanager.OwnerEOA, Address: signerAddress}, signerAddress)
			// interrupted while waiting for the initiate tx
			state.Steps[0].Status = StatusLoading
			state.Steps[0].Attempts = 1
			state.Artifacts.InitiateTxHash = recordedHash
			data, err := state.Marshal()
			require.NoError(t, err)
			require.NoError(t, f.store.Put(ctx, state.ID, data))

			expectedHash := recordedHash
			if tt.recordedErr != nil {
				expectedHash = common.HexToHash("0x02")
				f.vm.EXPECT().WaitReceipt(gomock.Any(), recordedHash).Return(nil, tt.recordedErr)
				f.vm.EXPECT().InitiateValidatorWeightUpdate(gomock.Any(), f.validationID, uint64(150)).Return(expectedHash, nil)
			}
			f.vm.EXPECT().WaitReceipt(gomock.Any(), expectedHash).Return(receipt, nil)
			f.aggregator.EXPECT().AggregateSignatures(gomock.Any(), gomock.Any()).Return(
				interchain.AggregateResponse{},
				&interchain.AggregatorError{StatusCode: http.StatusServiceUnavailable, Message: "unavailable"},
			)

			resumed, err := f.manager.Resume(ctx, state.ID)
			var stepErr *StepError
			require.True(t, errors.As(err, &stepErr))
			require.True(t, stepErr.Retryable())
			require.Equal(t, StatusSuccess, resumed.Steps[0].Status)
			require.Equal(t, 2, resumed.Steps[0].Attempts)
			require.Equal(t, expectedHash, resumed.Artifacts.InitiateTxHash)
			require.Equal(t, unsignedMessage, []byte(resumed.Artifacts.UnsignedWarpMessage))
		})
	}
}

func TestInitiateEventForOtherValidator(t *testing.T) {
	f := newFixture(t)
	f.expectOwner()
	f.expectValidator()

	other := &fixture{subnetID: f.subnetID, validationID: ids.GenerateTestID()}
	receipt, _ := other.weightUpdateReceipt(t, 1, 150)
	f.vm.EXPECT().InitiateValidatorWeightUpdate(gomock.Any(), gomock.Any(), gomock.Any()).Return(common.HexToHash("0x01"), nil)
	f.vm.EXPECT().WaitReceipt(gomock.Any(), gomock.Any()).Return(receipt, nil)

	state, err := f.manager.StartChangeWeight(context.Background(), ChangeWeightRequest{
		SubnetID:     f.subnetID,
		ValidationID: f.validationID,
		Weight:       150,
	})
	require.ErrorIs(t, err, ErrArtifactMismatch)
	require.Equal(t, StatusError, state.Steps[0].Status)
	require.Nil(t, state.Artifacts.EventData)
}

func TestRegistrationEndToEnd(t *testing.T) {
	f := newFixture(t)
	f.expectOwner()
	ctx := context.Background()
	f.validators.EXPECT().ValidatorWeights(gomock.Any(), f.subnetID).Return(map[ids.NodeID]uint64{
		ids.GenerateTestNodeID(): 10000,
	}, nil).Times(2)

	blsPublicKey := make([]byte, bls.PublicKeyLen)
	proofOfPossession := make([]byte, bls.SignatureLen)
	proofOfPossession[0] = 0x07
	initiateHash := common.HexToHash("0x01")
	completeHash := common.HexToHash("0x05")
	receipt, unsignedMessage := f.registrationReceipt(t)
	signedMessage := signWarp(t, unsignedMessage)
	response, err := warp.PackL1ValidatorRegistrationMessage(f.validationID, true, networkID, constants.PlatformChainID)
	require.NoError(t, err)
	pChainSignature := []byte{0xCC}
	var pop [bls.SignatureLen]byte
	copy(pop[:], proofOfPossession)
	tx := pChainTx(t, &txs.RegisterL1ValidatorTx{
		BaseTx:            pChainBaseTx(),
		Balance:           1_000_000_000,
		ProofOfPossession: pop,
		Message:           signedMessage,
	})

	gomock.InOrder(
		f.vm.EXPECT().InitiateValidatorRegistration(gomock.Any(), validatormanager.RegistrationRequest{
			NodeID:       f.nodeID,
			BLSPublicKey: blsPublicKey,
			Weight:       100,
		}).Return(initiateHash, nil),
		f.vm.EXPECT().WaitReceipt(gomock.Any(), initiateHash).Return(receipt, nil),
		f.aggregator.EXPECT().AggregateSignatures(gomock.Any(), gomock.Any()).Return(signedResponse(signedMessage), nil),
		f.pChain.EXPECT().BuildRegisterL1ValidatorTx(gomock.Any(), uint64(1_000_000_000), pop, signedMessage).Return(tx, nil),
		f.pChain.EXPECT().IssueTx(gomock.Any(), tx).Return(nil),
		f.justifier.EXPECT().GetRegistrationJustification(gomock.Any(), justification.Target{
			ValidationID: f.validationID,
			NodeID:       f.nodeID,
		}, f.subnetID).Return(f.justification, nil),
		f.aggregator.EXPECT().AggregateSignatures(gomock.Any(), interchain.AggregateRequest{
			Message:          hex.EncodeToString(response),
			Justification:    hex.EncodeToString(f.justification),
			SigningSubnetID:  f.subnetID.String(),
			QuorumPercentage: interchain.DefaultQuorumPercentage,
		}).Return(signedResponse(pChainSignature), nil),
		f.vm.EXPECT().CompleteValidatorRegistration(gomock.Any(), pChainSignature).Return(completeHash, nil),
		f.vm.EXPECT().WaitReceipt(gomock.Any(), completeHash).Return(&types.Receipt{Status: types.ReceiptStatusSuccessful}, nil),
	)

	state, err := f.manager.StartRegistration(ctx, RegisterRequest{
		SubnetID:          f.subnetID,
		NetworkID:         networkID,
		NodeID:            f.nodeID,
		BLSPublicKey:      blsPublicKey,
		ProofOfPossession: proofOfPossession,
		Balance:           1_000_000_000,
		Weight:            100,
	})
	require.NoError(t, err)
	require.Equal(t, PhaseCompleted, state.Phase)
	require.Equal(t, KindCompleteRegistration, state.Kind)
	require.Equal(t, f.validationID, state.Request.ValidationID)
	require.Equal(t, tx.ID(), state.Artifacts.PChainTxID)
	require.Equal(t, completeHash, state.Artifacts.CompleteTxHash)
}

// failedAtPChainTx stores a change weight saga whose warp message is signed,
// and that was interrupted before its P-Chain tx was built
func (f *fixture) failedAtPChainTx(t *testing.T, unsignedMessage []byte, signedMessage []byte) *State {
	state := f.failedAtPChainSignature(t, unsignedMessage)
	state.Steps[2] = StepState{Key: StepSubmitPChainTx, Status: StatusError, ErrorKind: KindTransient, Attempts: 1}
	state.Steps[3] = StepState{Key: StepPChainSignature, Status: StatusPending}
	state.Artifacts.SignedWarpMessage = signedMessage
	state.Artifacts.PChainTxID = ids.Empty
	data, err := state.Marshal()
	require.NoError(t, err)
	require.NoError(t, f.store.Put(context.Background(), state.ID, data))
	return state
}

func TestRetryDoesNotRebuildIssuedPChainTx(t *testing.T) {
	tests := []struct {
		name   string
		expect func(f *fixture, tx *txs.Tx)
	}{
		{
			name: "tx committed after the issuance timed out",
			expect: func(f *fixture, tx *txs.Tx) {
				f.pChain.EXPECT().TxAccepted(gomock.Any(), tx.ID()).Return(true, nil)
			},
		},
		{
			name: "warp message already issued",
			expect: func(f *fixture, tx *txs.Tx) {
				gomock.InOrder(
					f.pChain.EXPECT().TxAccepted(gomock.Any(), tx.ID()).Return(false, nil),
					f.pChain.EXPECT().IssueTx(gomock.Any(), gomock.Any()).DoAndReturn(
						func(_ context.Context, reissued *txs.Tx) error {
							require.Equal(t, tx.ID(), reissued.ID())
							return fmt.Errorf("%w: tx %s", pchain.ErrWarpMessageAlreadyIssued, reissued.ID())
						},
					),
				)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.expectOwner()
			ctx := context.Background()

			_, unsignedMessage := f.weightUpdateReceipt(t, 3, 150)
			signedMessage := signWarp(t, unsignedMessage)
			state := f.failedAtPChainTx(t, unsignedMessage, signedMessage)
			tx := weightTx(t, signedMessage)

			// the P-Chain accepts the tx but the node answer is lost
			f.pChain.EXPECT().BuildSetL1ValidatorWeightTx(gomock.Any(), signedMessage).Return(tx, nil).Times(1)
			f.pChain.EXPECT().IssueTx(gomock.Any(), tx).Return(context.DeadlineExceeded)
			failed, err := f.manager.Retry(ctx, state.ID, "")
			require.ErrorIs(t, err, context.DeadlineExceeded)
			require.Equal(t, KindTransient, failed.Steps[2].ErrorKind)

			stored, err := f.manager.Load(ctx, state.ID)
			require.NoError(t, err)
			require.Equal(t, tx.ID(), stored.Artifacts.PChainTxID)
			require.Equal(t, tx.Bytes(), []byte(stored.Artifacts.PChainTx))

			tt.expect(f, tx)
			completeHash := common.HexToHash("0x05")
			f.justifier.EXPECT().GetRegistrationJustification(gomock.Any(), gomock.Any(), f.subnetID).Return(f.justification, nil)
			f.aggregator.EXPECT().AggregateSignatures(gomock.Any(), gomock.Any()).Return(signedResponse([]byte{0xCC}), nil)
			f.vm.EXPECT().CompleteValidatorWeightUpdate(gomock.Any(), []byte{0xCC}).Return(completeHash, nil)
			f.vm.EXPECT().WaitReceipt(gomock.Any(), completeHash).Return(&types.Receipt{Status: types.ReceiptStatusSuccessful}, nil)

			retried, err := f.manager.Retry(ctx, state.ID, "")
			require.NoError(t, err)
			require.Equal(t, PhaseCompleted, retried.Phase)
			require.Equal(t, tx.ID(), retried.Artifacts.PChainTxID)
			require.Equal(t, 3, retried.Steps[2].Attempts)
		})
	}
}
