// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package saga

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/l1-orchestrator/sdk/validatormanager"
	"github.com/ava-labs/libevm/common"
	"github.com/ava-labs/libevm/common/hexutil"
	"github.com/google/uuid"
)

type Kind string

const (
	KindChangeWeight         Kind = "change-weight"
	KindCompleteRegistration Kind = "complete-registration"
)

type StepKey string

const (
	StepInitiateChangeWeight          StepKey = "initiateChangeWeight"
	StepInitiateValidatorRegistration StepKey = "initiateValidatorRegistration"
	StepSignMessage                   StepKey = "signMessage"
	StepSubmitPChainTx                StepKey = "submitPChainTx"
	StepPChainSignature               StepKey = "pChainSignature"
	StepCompleteChangeWeight          StepKey = "completeChangeWeight"
	StepCompleteValidatorRegistration StepKey = "completeValidatorRegistration"
)

// StepKeys returns the ordered steps of a saga of [kind]
func StepKeys(kind Kind) []StepKey {
	if kind == KindCompleteRegistration {
		return []StepKey{
			StepInitiateValidatorRegistration,
			StepSignMessage,
			StepSubmitPChainTx,
			StepPChainSignature,
			StepCompleteValidatorRegistration,
		}
	}
	return []StepKey{
		StepInitiateChangeWeight,
		StepSignMessage,
		StepSubmitPChainTx,
		StepPChainSignature,
		StepCompleteChangeWeight,
	}
}

type Status string

const (
	StatusPending Status = "pending"
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

type Phase string

const (
	PhaseRunning     Phase = "running"
	PhaseCompleted   Phase = "completed"
	PhaseError       Phase = "error"
	PhaseInvalidated Phase = "invalidated"
)

type StepState struct {
	Key       StepKey   `json:"key"`
	Status    Status    `json:"status"`
	Error     string    `json:"error,omitempty"`
	ErrorKind ErrorKind `json:"errorKind,omitempty"`
	Attempts  int       `json:"attempts"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Request holds the parameters of the validator change
type Request struct {
	SubnetID        ids.ID     `json:"subnetID"`
	SigningSubnetID ids.ID     `json:"signingSubnetID"`
	NetworkID       uint32     `json:"networkID"`
	NodeID          ids.NodeID `json:"nodeID"`
	// known upfront for weight changes, obtained from step 1 for registrations
	ValidationID     ids.ID `json:"validationID"`
	Weight           uint64 `json:"weight"`
	QuorumPercentage uint64 `json:"quorumPercentage,omitempty"`

	// preflight figures, for reference
	CurrentWeight uint64 `json:"currentWeight,omitempty"`
	TotalWeight   uint64 `json:"totalWeight,omitempty"`

	// registration only
	BLSPublicKey          hexutil.Bytes                `json:"blsPublicKey,omitempty"`
	ProofOfPossession     hexutil.Bytes                `json:"proofOfPossession,omitempty"`
	Balance               uint64                       `json:"balance,omitempty"`
	RemainingBalanceOwner validatormanager.PChainOwner `json:"remainingBalanceOwner"`
	DisableOwner          validatormanager.PChainOwner `json:"disableOwner"`
}

// Artifacts produced by the steps, reused when retrying later ones
type Artifacts struct {
	InitiateTxHash      common.Hash                 `json:"initiateTxHash"`
	UnsignedWarpMessage hexutil.Bytes               `json:"unsignedWarpMessage,omitempty"`
	EventData           *validatormanager.EventData `json:"eventData,omitempty"`
	SignedWarpMessage   hexutil.Bytes               `json:"signedWarpMessage,omitempty"`
	PChainTxID          ids.ID                      `json:"pChainTxID"`
	PChainTx            hexutil.Bytes               `json:"pChainTx,omitempty"`
	PChainSignature     hexutil.Bytes               `json:"pChainSignature,omitempty"`
	CompleteTxHash      common.Hash                 `json:"completeTxHash"`
}

// State is the serializable state of a saga. It is checkpointed after every
// step transition and is the only source of truth when resuming
type State struct {
	ID        string                 `json:"id"`
	Kind      Kind                   `json:"kind"`
	Request   Request                `json:"request"`
	Owner     validatormanager.Owner `json:"owner"`
	Signer    common.Address         `json:"signer"`
	Steps     []StepState            `json:"steps"`
	Artifacts Artifacts              `json:"artifacts"`
	Phase     Phase                  `json:"phase"`
	CreatedAt time.Time              `json:"createdAt"`
	UpdatedAt time.Time              `json:"updatedAt"`
}

func NewState(kind Kind, req Request, owner validatormanager.Owner, signer common.Address) *State {
	now := time.Now().UTC()
	keys := StepKeys(kind)
	steps := make([]StepState, 0, len(keys))
	for _, key := range keys {
		steps = append(steps, StepState{Key: key, Status: StatusPending, UpdatedAt: now})
	}
	return &State{
		ID:        fmt.Sprintf("%s-%s", kind, uuid.NewString()),
		Kind:      kind,
		Request:   req,
		Owner:     owner,
		Signer:    signer,
		Steps:     steps,
		Phase:     PhaseRunning,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *State) StepIndex(key StepKey) (int, error) {
	for i, step := range s.Steps {
		if step.Key == key {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w %q for %s saga", ErrUnknownStep, key, s.Kind)
}

func (s *State) Step(key StepKey) (StepState, error) {
	i, err := s.StepIndex(key)
	if err != nil {
		return StepState{}, err
	}
	return s.Steps[i], nil
}

// NextStep is the first step that did not succeed, or empty if all did
func (s *State) NextStep() StepKey {
	for _, step := range s.Steps {
		if step.Status != StatusSuccess {
			return step.Key
		}
	}
	return ""
}

// FailedStep returns the step that halted the saga, if any
func (s *State) FailedStep() (StepState, bool) {
	for _, step := range s.Steps {
		if step.Status == StatusError {
			return step, true
		}
	}
	return StepState{}, false
}

// Clone returns a deep copy of the state, so that it can be handed out
// while the saga keeps mutating its own
func (s *State) Clone() *State {
	clone := *s
	clone.Steps = append([]StepState(nil), s.Steps...)
	if s.Artifacts.EventData != nil {
		eventData := *s.Artifacts.EventData
		clone.Artifacts.EventData = &eventData
	}
	clone.Artifacts.UnsignedWarpMessage = cloneBytes(s.Artifacts.UnsignedWarpMessage)
	clone.Artifacts.SignedWarpMessage = cloneBytes(s.Artifacts.SignedWarpMessage)
	clone.Artifacts.PChainTx = cloneBytes(s.Artifacts.PChainTx)
	clone.Artifacts.PChainSignature = cloneBytes(s.Artifacts.PChainSignature)
	clone.Owner.Signers = append([]common.Address(nil), s.Owner.Signers...)
	return &clone
}

func cloneBytes(b hexutil.Bytes) hexutil.Bytes {
	if b == nil {
		return nil
	}
	return append(hexutil.Bytes(nil), b...)
}

func (s *State) Marshal() ([]byte, error) {
	return json.MarshalIndent(s, "", "  ")
}

func UnmarshalState(data []byte) (*State, error) {
	state := &State{}
	if err := json.Unmarshal(data, state); err != nil {
		return nil, fmt.Errorf("failure decoding saga state: %w", err)
	}
	if len(state.Steps) != len(StepKeys(state.Kind)) {
		return nil, fmt.Errorf("saga state %s has %d steps, expected %d", state.ID, len(state.Steps), len(StepKeys(state.Kind)))
	}
	return state, nil
}
