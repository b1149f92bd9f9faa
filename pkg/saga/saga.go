// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package saga

import (
	"context"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/l1-orchestrator/pkg/checkpoint"
	"go.uber.org/zap"
)

// Dependencies are the external systems a saga talks to
type Dependencies struct {
	ValidatorManager ValidatorManager
	Aggregator       SignatureAggregator
	PChain           PChain
	Justifier        Justifier
}

// Observer is notified after every step transition, with a copy of the state
type Observer func(state *State, step StepState)

type stepFunc func(ctx context.Context) error

// Saga drives the steps of a single validator change. It is not safe for
// concurrent use: the Manager ensures a saga id is run by one caller at a time
type Saga struct {
	state    *State
	deps     Dependencies
	store    checkpoint.Store
	logger   logging.Logger
	observer Observer
}

func newSaga(
	state *State,
	deps Dependencies,
	store checkpoint.Store,
	logger logging.Logger,
	observer Observer,
) *Saga {
	if logger == nil {
		logger = logging.NoLog{}
	}
	return &Saga{
		state:    state,
		deps:     deps,
		store:    store,
		logger:   logger,
		observer: observer,
	}
}

func (s *Saga) State() *State {
	return s.state.Clone()
}

func (s *Saga) stepFuncs() map[StepKey]stepFunc {
	return map[StepKey]stepFunc{
		StepInitiateChangeWeight:          s.initiateChangeWeight,
		StepInitiateValidatorRegistration: s.initiateValidatorRegistration,
		StepSignMessage:                   s.signMessage,
		StepSubmitPChainTx:                s.submitPChainTx,
		StepPChainSignature:               s.pChainSignature,
		StepCompleteChangeWeight:          s.completeChangeWeight,
		StepCompleteValidatorRegistration: s.completeValidatorRegistration,
	}
}

// Run executes the saga steps in order, starting at [from], or at the first
// step if [from] is empty. Steps before [from] are not executed, their
// artifacts are taken from the state. The run halts at the first failing step,
// returning a *StepError, and leaves the following steps pending
func (s *Saga) Run(ctx context.Context, from StepKey) error {
	switch s.state.Phase {
	case PhaseInvalidated:
		return ErrSagaInvalidated
	case PhaseCompleted:
		return ErrSagaCompleted
	}
	start := 0
	if from != "" {
		var err error
		start, err = s.state.StepIndex(from)
		if err != nil {
			return err
		}
	}
	funcs := s.stepFuncs()
	for i := start; i < len(s.state.Steps); i++ {
		s.state.Steps[i].Status = StatusPending
		s.state.Steps[i].Error = ""
		s.state.Steps[i].ErrorKind = ""
	}
	s.state.Phase = PhaseRunning
	for i := start; i < len(s.state.Steps); i++ {
		key := s.state.Steps[i].Key
		s.state.Steps[i].Attempts++
		if err := s.transition(ctx, i, StatusLoading, nil); err != nil {
			return err
		}
		s.logger.Info("Running saga step",
			zap.String("saga", s.state.ID),
			zap.String("step", string(key)),
			zap.Int("attempt", s.state.Steps[i].Attempts),
		)
		if err := funcs[key](ctx); err != nil {
			stepErr := newStepError(key, err)
			s.logger.Error("Saga step failed",
				zap.String("saga", s.state.ID),
				zap.String("step", string(key)),
				zap.String("kind", string(stepErr.Kind)),
				zap.Error(err),
			)
			s.state.Phase = PhaseError
			if cpErr := s.transition(ctx, i, StatusError, stepErr); cpErr != nil {
				return cpErr
			}
			return stepErr
		}
		if i == len(s.state.Steps)-1 {
			s.state.Phase = PhaseCompleted
		}
		if err := s.transition(ctx, i, StatusSuccess, nil); err != nil {
			return err
		}
	}
	return nil
}

func (s *Saga) transition(ctx context.Context, i int, status Status, stepErr *StepError) error {
	step := &s.state.Steps[i]
	step.Status = status
	step.UpdatedAt = time.Now().UTC()
	if stepErr != nil {
		step.Error = stepErr.Err.Error()
		step.ErrorKind = stepErr.Kind
	}
	if err := s.checkpoint(ctx); err != nil {
		return &StepError{Step: step.Key, Kind: KindInternal, Err: err}
	}
	if s.observer != nil {
		s.observer(s.state.Clone(), *step)
	}
	return nil
}

// checkpoint persists the state. It is not affected by [ctx] cancellation, as
// the state must reflect effects that were already committed
func (s *Saga) checkpoint(ctx context.Context) error {
	s.state.UpdatedAt = time.Now().UTC()
	data, err := s.state.Marshal()
	if err != nil {
		return fmt.Errorf("failure encoding saga state: %w", err)
	}
	if err := s.store.Put(context.WithoutCancel(ctx), s.state.ID, data); err != nil {
		return fmt.Errorf("failure checkpointing saga %s: %w", s.state.ID, err)
	}
	return nil
}
