// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package saga

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/crypto/bls"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/l1-orchestrator/pkg/checkpoint"
	"github.com/ava-labs/l1-orchestrator/sdk/interchain"
	"github.com/ava-labs/l1-orchestrator/sdk/validator"
	"github.com/ava-labs/l1-orchestrator/sdk/validatormanager"
	"github.com/ava-labs/libevm/common"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentLoads = 8

// Reporter receives the outcome of every saga run
type Reporter interface {
	SagaFinished(state *State, err error)
}

type ManagerConfig struct {
	Dependencies
	Validators validator.PChainReader
	Store      checkpoint.Store
	// defaults to validator.DefaultMaxWeightChangePercentage
	MaxWeightChangePercentage float64
	// defaults to the aggregator default
	QuorumPercentage uint64
	Logger           logging.Logger
	Observer         Observer
	Reporter         Reporter
}

// Manager creates, runs and resumes sagas. It runs the preflight checks before
// creating any state, and ensures through the store record locks that a saga is
// only driven by one caller at a time, across processes
type Manager struct {
	cfg    ManagerConfig
	logger logging.Logger
}

func NewManager(cfg ManagerConfig) (*Manager, error) {
	switch {
	case cfg.ValidatorManager == nil:
		return nil, errors.New("validator manager is required")
	case cfg.Aggregator == nil:
		return nil, errors.New("signature aggregator is required")
	case cfg.PChain == nil:
		return nil, errors.New("P-Chain client is required")
	case cfg.Justifier == nil:
		return nil, errors.New("justifier is required")
	case cfg.Validators == nil:
		return nil, errors.New("validators reader is required")
	case cfg.Store == nil:
		return nil, errors.New("checkpoint store is required")
	}
	if cfg.MaxWeightChangePercentage == 0 {
		cfg.MaxWeightChangePercentage = validator.DefaultMaxWeightChangePercentage
	}
	if cfg.MaxWeightChangePercentage < 0 || cfg.MaxWeightChangePercentage > 100 {
		return nil, fmt.Errorf("max weight change percentage must be between 0 and 100, got %f", cfg.MaxWeightChangePercentage)
	}
	quorumPercentage, err := interchain.CheckQuorumPercentage(cfg.QuorumPercentage)
	if err != nil {
		return nil, err
	}
	cfg.QuorumPercentage = quorumPercentage
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NoLog{}
	}
	return &Manager{
		cfg:    cfg,
		logger: logger,
	}, nil
}

// ChangeWeightRequest asks to set the weight of an active validator
type ChangeWeightRequest struct {
	SubnetID ids.ID
	// defaults to SubnetID
	SigningSubnetID ids.ID
	NetworkID       uint32
	// at least one of NodeID and ValidationID is required
	NodeID       ids.NodeID
	ValidationID ids.ID
	Weight       uint64
	// set when step 1 tx was issued externally, eg by a multisig
	InitiateTxHash common.Hash
}

// RegisterRequest asks to register a new validator and complete its registration
type RegisterRequest struct {
	SubnetID              ids.ID
	SigningSubnetID       ids.ID
	NetworkID             uint32
	NodeID                ids.NodeID
	BLSPublicKey          []byte
	ProofOfPossession     []byte
	Balance               uint64
	RemainingBalanceOwner validatormanager.PChainOwner
	DisableOwner          validatormanager.PChainOwner
	Weight                uint64
	InitiateTxHash        common.Hash
}

// authorize resolves the validator manager owner and checks the signer against it
func (m *Manager) authorize(ctx context.Context) (validatormanager.Owner, common.Address, error) {
	owner, err := m.cfg.ValidatorManager.Owner(ctx)
	if err != nil {
		return validatormanager.Owner{}, common.Address{}, err
	}
	signer := m.cfg.ValidatorManager.Signer()
	if err := owner.Authorize(signer); err != nil {
		return validatormanager.Owner{}, common.Address{}, err
	}
	return owner, signer, nil
}

// preflightError wraps failures found before a saga exists
func preflightError(err error) error {
	return &StepError{Step: "", Kind: ClassifyError(err), Err: err}
}

// PlanChangeWeight runs the preflight checks for [req] and returns the saga
// request that would be executed, without creating it
func (m *Manager) PlanChangeWeight(ctx context.Context, req ChangeWeightRequest) (Request, validatormanager.Owner, common.Address, error) {
	if req.Weight == 0 {
		return Request{}, validatormanager.Owner{}, common.Address{}, fmt.Errorf("%w: weight must be positive, use validator removal to set it to 0", ErrInvalidRequest)
	}
	if req.ValidationID == ids.Empty && req.NodeID == ids.EmptyNodeID {
		return Request{}, validatormanager.Owner{}, common.Address{}, fmt.Errorf("%w: node ID or validation ID is required", ErrInvalidRequest)
	}
	owner, signer, err := m.authorize(ctx)
	if err != nil {
		return Request{}, validatormanager.Owner{}, common.Address{}, err
	}
	validationID := req.ValidationID
	if validationID == ids.Empty {
		validationID, err = m.cfg.ValidatorManager.GetValidationID(ctx, req.NodeID)
		if err != nil {
			return Request{}, validatormanager.Owner{}, common.Address{}, err
		}
	}
	record, err := validator.GetRecord(ctx, m.cfg.Validators, req.SubnetID, validationID)
	if err != nil {
		return Request{}, validatormanager.Owner{}, common.Address{}, err
	}
	if req.NodeID != ids.EmptyNodeID && record.NodeID != req.NodeID {
		return Request{}, validatormanager.Owner{}, common.Address{}, fmt.Errorf("%w: validation %s belongs to node %s, not %s", ErrInvalidRequest, validationID, record.NodeID, req.NodeID)
	}
	if record.Weight == req.Weight {
		return Request{}, validatormanager.Owner{}, common.Address{}, fmt.Errorf("%w: validator weight is already %d", ErrInvalidRequest, req.Weight)
	}
	totalWeight, err := validator.GetTotalWeight(ctx, m.cfg.Validators, req.SubnetID)
	if err != nil {
		return Request{}, validatormanager.Owner{}, common.Address{}, err
	}
	delta, err := validator.CheckStakeDelta(totalWeight, req.Weight, record.Weight, m.cfg.MaxWeightChangePercentage)
	if err != nil {
		return Request{}, validatormanager.Owner{}, common.Address{}, err
	}
	m.logger.Info("Weight change passed preflight",
		zap.Stringer("validationID", validationID),
		zap.Uint64("currentWeight", record.Weight),
		zap.Uint64("weight", req.Weight),
		zap.Uint64("totalWeight", totalWeight),
		zap.Float64("percentageChange", delta.PercentageChange),
	)
	signingSubnetID := req.SigningSubnetID
	if signingSubnetID == ids.Empty {
		signingSubnetID = req.SubnetID
	}
	return Request{
		SubnetID:         req.SubnetID,
		SigningSubnetID:  signingSubnetID,
		NetworkID:        req.NetworkID,
		NodeID:           record.NodeID,
		ValidationID:     validationID,
		Weight:           req.Weight,
		QuorumPercentage: m.cfg.QuorumPercentage,
		CurrentWeight:    record.Weight,
		TotalWeight:      totalWeight,
	}, owner, signer, nil
}

// StartChangeWeight runs the preflight checks and, if they pass, creates and runs
// a change weight saga. The returned state is nil only if the preflight failed
func (m *Manager) StartChangeWeight(ctx context.Context, req ChangeWeightRequest) (*State, error) {
	sagaReq, owner, signer, err := m.PlanChangeWeight(ctx, req)
	if err != nil {
		return nil, preflightError(err)
	}
	state := NewState(KindChangeWeight, sagaReq, owner, signer)
	state.Artifacts.InitiateTxHash = req.InitiateTxHash
	return m.start(ctx, state)
}

// PlanRegistration runs the preflight checks for [req]
func (m *Manager) PlanRegistration(ctx context.Context, req RegisterRequest) (Request, validatormanager.Owner, common.Address, error) {
	switch {
	case req.Weight == 0:
		return Request{}, validatormanager.Owner{}, common.Address{}, fmt.Errorf("%w: weight must be positive", ErrInvalidRequest)
	case req.NodeID == ids.EmptyNodeID:
		return Request{}, validatormanager.Owner{}, common.Address{}, fmt.Errorf("%w: node ID is required", ErrInvalidRequest)
	case len(req.BLSPublicKey) != bls.PublicKeyLen:
		return Request{}, validatormanager.Owner{}, common.Address{}, fmt.Errorf("%w: BLS public key must be %d bytes", ErrInvalidRequest, bls.PublicKeyLen)
	case len(req.ProofOfPossession) != bls.SignatureLen:
		return Request{}, validatormanager.Owner{}, common.Address{}, fmt.Errorf("%w: BLS proof of possession must be %d bytes", ErrInvalidRequest, bls.SignatureLen)
	}
	owner, signer, err := m.authorize(ctx)
	if err != nil {
		return Request{}, validatormanager.Owner{}, common.Address{}, err
	}
	isValidator, err := validator.IsValidator(ctx, m.cfg.Validators, req.SubnetID, req.NodeID)
	if err != nil {
		return Request{}, validatormanager.Owner{}, common.Address{}, err
	}
	if isValidator {
		return Request{}, validatormanager.Owner{}, common.Address{}, fmt.Errorf("%w: node %s already validates subnet %s", ErrInvalidRequest, req.NodeID, req.SubnetID)
	}
	totalWeight, err := validator.GetTotalWeight(ctx, m.cfg.Validators, req.SubnetID)
	if err != nil {
		return Request{}, validatormanager.Owner{}, common.Address{}, err
	}
	if _, err := validator.CheckStakeDelta(totalWeight, req.Weight, 0, m.cfg.MaxWeightChangePercentage); err != nil {
		return Request{}, validatormanager.Owner{}, common.Address{}, err
	}
	signingSubnetID := req.SigningSubnetID
	if signingSubnetID == ids.Empty {
		signingSubnetID = req.SubnetID
	}
	return Request{
		SubnetID:              req.SubnetID,
		SigningSubnetID:       signingSubnetID,
		NetworkID:             req.NetworkID,
		NodeID:                req.NodeID,
		Weight:                req.Weight,
		QuorumPercentage:      m.cfg.QuorumPercentage,
		TotalWeight:           totalWeight,
		BLSPublicKey:          req.BLSPublicKey,
		ProofOfPossession:     req.ProofOfPossession,
		Balance:               req.Balance,
		RemainingBalanceOwner: req.RemainingBalanceOwner,
		DisableOwner:          req.DisableOwner,
	}, owner, signer, nil
}

// StartRegistration runs the preflight checks and, if they pass, creates and
// runs a registration saga
func (m *Manager) StartRegistration(ctx context.Context, req RegisterRequest) (*State, error) {
	sagaReq, owner, signer, err := m.PlanRegistration(ctx, req)
	if err != nil {
		return nil, preflightError(err)
	}
	state := NewState(KindCompleteRegistration, sagaReq, owner, signer)
	state.Artifacts.InitiateTxHash = req.InitiateTxHash
	return m.start(ctx, state)
}

func (m *Manager) start(ctx context.Context, state *State) (*State, error) {
	release, err := m.acquire(ctx, state.ID)
	if err != nil {
		return nil, err
	}
	defer release()
	s := newSaga(state, m.cfg.Dependencies, m.cfg.Store, m.logger, m.cfg.Observer)
	if err := s.checkpoint(ctx); err != nil {
		return nil, err
	}
	m.logger.Info("Starting saga", zap.String("saga", state.ID), zap.String("kind", string(state.Kind)))
	return m.run(ctx, s, "")
}

func (m *Manager) run(ctx context.Context, s *Saga, from StepKey) (*State, error) {
	err := s.Run(ctx, from)
	state := s.State()
	if m.cfg.Reporter != nil {
		m.cfg.Reporter.SagaFinished(state, err)
	}
	return state, err
}

// Retry re-runs saga [id] starting at step [from], or at its first non
// successful step if [from] is empty. Owner and signer are verified again, and
// the saga is invalidated if they changed
func (m *Manager) Retry(ctx context.Context, id string, from StepKey) (*State, error) {
	release, err := m.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()
	state, err := m.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	switch state.Phase {
	case PhaseInvalidated:
		return state, ErrSagaInvalidated
	case PhaseCompleted:
		return state, ErrSagaCompleted
	}
	s := newSaga(state, m.cfg.Dependencies, m.cfg.Store, m.logger, m.cfg.Observer)
	if err := m.verifyOwner(ctx, s); err != nil {
		return s.State(), err
	}
	if from == "" {
		from = state.NextStep()
	}
	if _, err := state.StepIndex(from); err != nil {
		return state, err
	}
	m.logger.Info("Retrying saga", zap.String("saga", id), zap.String("from", string(from)))
	return m.run(ctx, s, from)
}

// Resume continues saga [id] from its first non successful step
func (m *Manager) Resume(ctx context.Context, id string) (*State, error) {
	return m.Retry(ctx, id, "")
}

func (m *Manager) verifyOwner(ctx context.Context, s *Saga) error {
	owner, err := m.cfg.ValidatorManager.Owner(ctx)
	if err != nil {
		return err
	}
	signer := m.cfg.ValidatorManager.Signer()
	if signer == (common.Address{}) && s.state.Signer != (common.Address{}) {
		return fmt.Errorf("%w: saga %s was started by %s, set its key or --signer",
			ErrUnknownSigner, s.state.ID, s.state.Signer)
	}
	if owner.Equal(s.state.Owner) && signer == s.state.Signer && owner.Authorize(signer) == nil {
		return nil
	}
	m.logger.Warn("Invalidating saga",
		zap.String("saga", s.state.ID),
		zap.Stringer("owner", owner),
		zap.Stringer("expectedOwner", s.state.Owner),
		zap.Stringer("signer", signer),
		zap.Stringer("expectedSigner", s.state.Signer),
	)
	s.state.Phase = PhaseInvalidated
	if err := s.checkpoint(ctx); err != nil {
		return err
	}
	return fmt.Errorf("%w: owner %s signer %s, saga started with owner %s signer %s",
		ErrStaleOwner, owner, signer, s.state.Owner, s.state.Signer)
}

func (m *Manager) Load(ctx context.Context, id string) (*State, error) {
	data, err := m.cfg.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return UnmarshalState(data)
}

// List loads all stored sagas, most recently updated first
func (m *Manager) List(ctx context.Context) ([]*State, error) {
	sagaIDs, err := m.cfg.Store.List(ctx)
	if err != nil {
		return nil, err
	}
	states := make([]*State, len(sagaIDs))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(maxConcurrentLoads)
	for i, id := range sagaIDs {
		eg.Go(func() error {
			state, err := m.Load(egCtx, id)
			if err != nil {
				return fmt.Errorf("failure loading saga %s: %w", id, err)
			}
			states[i] = state
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	sort.SliceStable(states, func(i, j int) bool {
		return states[i].UpdatedAt.After(states[j].UpdatedAt)
	})
	return states, nil
}

// Discard removes the checkpoint of saga [id]. On-chain effects are not reverted
func (m *Manager) Discard(ctx context.Context, id string) error {
	release, err := m.acquire(ctx, id)
	if err != nil {
		return err
	}
	defer release()
	return m.cfg.Store.Delete(ctx, id)
}

func (m *Manager) acquire(ctx context.Context, id string) (func(), error) {
	release, err := m.cfg.Store.TryLock(ctx, id)
	if errors.Is(err, checkpoint.ErrLocked) {
		return nil, fmt.Errorf("%w: %s", ErrSagaRunning, id)
	}
	return release, err
}
