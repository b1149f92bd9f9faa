// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package saga

import (
	"errors"
	"fmt"

	"github.com/ava-labs/l1-orchestrator/pkg/checkpoint"
	"github.com/ava-labs/l1-orchestrator/sdk/interchain"
	"github.com/ava-labs/l1-orchestrator/sdk/justification"
	"github.com/ava-labs/l1-orchestrator/sdk/pchain"
	"github.com/ava-labs/l1-orchestrator/sdk/validator"
	"github.com/ava-labs/l1-orchestrator/sdk/validatormanager"
	"github.com/ava-labs/l1-orchestrator/sdk/warp"
)

var (
	ErrSagaRunning      = errors.New("saga is already running")
	ErrStaleOwner       = errors.New("validator manager owner or signer changed since the saga started")
	ErrUnknownSigner    = errors.New("no signer is configured")
	ErrSagaInvalidated  = errors.New("saga was invalidated and can't be continued")
	ErrSagaCompleted    = errors.New("saga is already completed")
	ErrUnknownStep      = errors.New("unknown step")
	ErrMissingArtifact  = errors.New("missing artifact from a previous step")
	ErrInvalidRequest   = errors.New("invalid saga request")
	ErrArtifactMismatch = errors.New("artifact does not match the saga validator")
)

// ErrorKind classifies step failures so that callers know whether a retry may help
type ErrorKind string

const (
	KindMalformed     ErrorKind = "malformed"
	KindNotFound      ErrorKind = "not-found"
	KindTransient     ErrorKind = "transient"
	KindAuthorization ErrorKind = "authorization"
	KindInvariant     ErrorKind = "invariant"
	KindOnChain       ErrorKind = "on-chain"
	// aggregator answered but could not produce a signed message, eg quorum not reached
	KindAggregation ErrorKind = "aggregation"
	KindInternal    ErrorKind = "internal"
)

// StepError is returned by a saga run halted at [Step]
type StepError struct {
	Step StepKey
	Kind ErrorKind
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("step %s failed: %s", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// Retryable indicates if repeating the step as is may succeed
func (e *StepError) Retryable() bool {
	return e.Kind == KindTransient
}

// ClassifyError maps an error coming from a collaborator into its kind
func ClassifyError(err error) ErrorKind {
	var aggErr *interchain.AggregatorError
	switch {
	case errors.Is(err, warp.ErrMalformedMessage),
		errors.Is(err, warp.ErrUnexpectedTypeID),
		errors.Is(err, warp.ErrMalformedJustification),
		errors.Is(err, justification.ErrJustificationMismatch),
		errors.Is(err, ErrArtifactMismatch):
		return KindMalformed
	case errors.Is(err, justification.ErrJustificationNotFound),
		errors.Is(err, validatormanager.ErrValidatorNotRegistered),
		errors.Is(err, validator.ErrNotValidator),
		errors.Is(err, checkpoint.ErrNotFound):
		return KindNotFound
	case errors.Is(err, validatormanager.ErrUnauthorized),
		errors.Is(err, ErrStaleOwner),
		errors.Is(err, ErrUnknownSigner),
		errors.Is(err, pchain.ErrMissingKey):
		return KindAuthorization
	case errors.Is(err, validator.ErrStakeDeltaExceeded):
		return KindInvariant
	case errors.Is(err, validatormanager.ErrTxReverted):
		return KindOnChain
	case errors.Is(err, ErrMissingArtifact),
		errors.Is(err, ErrUnknownStep),
		errors.Is(err, ErrInvalidRequest):
		return KindInternal
	case errors.As(err, &aggErr):
		if aggErr.Transient() {
			return KindTransient
		}
		return KindAggregation
	default:
		return KindTransient
	}
}

func newStepError(step StepKey, err error) *StepError {
	return &StepError{
		Step: step,
		Kind: ClassifyError(err),
		Err:  err,
	}
}
