// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package justification

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/l1-orchestrator/sdk/evm"
	"github.com/ava-labs/l1-orchestrator/sdk/warp"
	ethereum "github.com/ava-labs/libevm"
	"github.com/ava-labs/libevm/common"
	"github.com/ava-labs/libevm/core/types"
	subnetEvmWarp "github.com/ava-labs/subnet-evm/precompile/contracts/warp"
	"go.uber.org/zap"
)

var (
	ErrJustificationNotFound = errors.New("no registration message found for validator")
	ErrJustificationMismatch = errors.New("justification belongs to a different validator")
	ErrInvalidTarget         = errors.New("invalid validator identifier")
)

// Target identifies the validator whose registration is looked for, either by
// validation ID or by node ID. Any of them matching is enough
type Target struct {
	ValidationID ids.ID
	NodeID       ids.NodeID
}

// ParseTarget accepts a NodeID-... string, a cb58 validation ID or an hex validation ID
func ParseTarget(s string) (Target, error) {
	s = strings.TrimSpace(s)
	switch {
	case s == "":
		return Target{}, fmt.Errorf("%w: empty", ErrInvalidTarget)
	case strings.HasPrefix(s, ids.NodeIDPrefix):
		nodeID, err := ids.NodeIDFromString(s)
		if err != nil {
			return Target{}, fmt.Errorf("%w: %w", ErrInvalidTarget, err)
		}
		return Target{NodeID: nodeID}, nil
	case strings.HasPrefix(s, "0x"):
		b, err := hex.DecodeString(s[2:])
		if err != nil {
			return Target{}, fmt.Errorf("%w: %w", ErrInvalidTarget, err)
		}
		validationID, err := ids.ToID(b)
		if err != nil {
			return Target{}, fmt.Errorf("%w: %w", ErrInvalidTarget, err)
		}
		return Target{ValidationID: validationID}, nil
	default:
		validationID, err := ids.FromString(s)
		if err != nil {
			return Target{}, fmt.Errorf("%w: %w", ErrInvalidTarget, err)
		}
		return Target{ValidationID: validationID}, nil
	}
}

func (t Target) String() string {
	switch {
	case t.ValidationID != ids.Empty && t.NodeID != ids.EmptyNodeID:
		return fmt.Sprintf("%s (%s)", t.NodeID, t.ValidationID)
	case t.ValidationID != ids.Empty:
		return t.ValidationID.String()
	default:
		return t.NodeID.String()
	}
}

// Matches indicates if [reg] registers the target validator
func (t Target) Matches(reg *warp.RegistrationPayload) bool {
	if t.ValidationID != ids.Empty && reg.ValidationID == t.ValidationID {
		return true
	}
	return t.NodeID != ids.EmptyNodeID && reg.NodeID == t.NodeID
}

// LogFilterer is the subset of the evm client used to query warp precompile logs
type LogFilterer interface {
	FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error)
}

type handleFilterer struct {
	handle *evm.ClientHandle
}

func (f handleFilterer) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	client, err := f.handle.Get(ctx)
	if err != nil {
		return nil, err
	}
	return client.FilterLogs(ctx, query)
}

// Extractor recovers registration justifications from the warp messages sent by an L1
type Extractor struct {
	filterer LogFilterer
	logger   logging.Logger
}

func NewExtractor(filterer LogFilterer, logger logging.Logger) *Extractor {
	if logger == nil {
		logger = logging.NoLog{}
	}
	return &Extractor{
		filterer: filterer,
		logger:   logger,
	}
}

// NewExtractorFromHandle creates an extractor querying the L1 through [handle]
func NewExtractorFromHandle(handle *evm.ClientHandle, logger logging.Logger) *Extractor {
	return NewExtractor(handleFilterer{handle: handle}, logger)
}

// GetRegistrationJustification scans all SendWarpMessage events of the L1 for the
// RegisterL1Validator message of [target], and returns it framed as a justification.
// If [subnetID] is not empty, messages for other subnets are ignored.
// (nil, nil) is returned if no message matches
func (e *Extractor) GetRegistrationJustification(
	ctx context.Context,
	target Target,
	subnetID ids.ID,
) ([]byte, error) {
	logs, err := e.filterer.FilterLogs(ctx, ethereum.FilterQuery{
		FromBlock: big.NewInt(0),
		Addresses: []common.Address{subnetEvmWarp.ContractAddress},
		Topics:    [][]common.Hash{{evm.SendWarpMessageEventID()}},
	})
	if err != nil {
		return nil, fmt.Errorf("failure querying warp messages: %w", err)
	}
	for _, txLog := range logs {
		reg, err := parseRegistrationLog(txLog)
		if err != nil {
			if !errors.Is(err, warp.ErrUnexpectedTypeID) {
				e.logger.Warn("Skipping malformed warp log",
					zap.Stringer("txHash", txLog.TxHash),
					zap.Uint("logIndex", txLog.Index),
					zap.Error(err),
				)
			}
			continue
		}
		if subnetID != ids.Empty && reg.SubnetID != subnetID {
			continue
		}
		if target.Matches(reg) {
			e.logger.Info("Found registration message",
				zap.Stringer("validationID", reg.ValidationID),
				zap.Stringer("nodeID", reg.NodeID),
				zap.Stringer("txHash", txLog.TxHash),
			)
			return warp.EncodeJustification(reg.Raw), nil
		}
	}
	return nil, nil
}

func parseRegistrationLog(txLog types.Log) (*warp.RegistrationPayload, error) {
	msg, err := evm.UnpackSendWarpMessageEventData(txLog.Data)
	if err != nil {
		return nil, err
	}
	addressedCall := warp.ExtractAddressedCall(msg)
	if addressedCall == nil {
		return nil, warp.ErrMalformedMessage
	}
	return warp.ParseRegistrationPayload(addressedCall)
}

// VerifyJustification decodes [justification] and checks that it registers [target]
func VerifyJustification(justification []byte, target Target) (*warp.RegistrationPayload, error) {
	payload, err := warp.DecodeJustification(justification)
	if err != nil {
		return nil, err
	}
	reg, err := warp.ParseRegisterL1ValidatorBytes(payload)
	if err != nil {
		return nil, err
	}
	if !target.Matches(reg) {
		return nil, fmt.Errorf("%w: expected %s, got %s (%s)", ErrJustificationMismatch, target, reg.NodeID, reg.ValidationID)
	}
	return reg, nil
}
