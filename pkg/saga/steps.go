// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package saga

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/constants"
	"github.com/ava-labs/avalanchego/utils/crypto/bls"
	"github.com/ava-labs/avalanchego/vms/platformvm/txs"
	"github.com/ava-labs/l1-orchestrator/sdk/evm"
	"github.com/ava-labs/l1-orchestrator/sdk/interchain"
	"github.com/ava-labs/l1-orchestrator/sdk/justification"
	"github.com/ava-labs/l1-orchestrator/sdk/pchain"
	"github.com/ava-labs/l1-orchestrator/sdk/validatormanager"
	"github.com/ava-labs/l1-orchestrator/sdk/warp"
	"github.com/ava-labs/libevm/common"
	"github.com/ava-labs/libevm/core/types"
	"go.uber.org/zap"
)

func missing(artifact string) error {
	return fmt.Errorf("%w: %s", ErrMissingArtifact, artifact)
}

// sendAndWait sends a tx through [send] unless [txHash] already records one, and
// waits for its receipt. A recorded tx that reverted, or that the rpc no longer
// knows, is replaced by a new one. The hash is checkpointed before waiting, so a
// restart never sends the tx twice
func (s *Saga) sendAndWait(
	ctx context.Context,
	txHash *common.Hash,
	send func(context.Context) (common.Hash, error),
) (*types.Receipt, error) {
	if *txHash != (common.Hash{}) {
		receipt, err := s.deps.ValidatorManager.WaitReceipt(ctx, *txHash)
		if err == nil {
			s.logger.Info("Reusing recorded tx", zap.Stringer("txHash", *txHash))
			return receipt, nil
		}
		switch {
		case errors.Is(err, validatormanager.ErrTxReverted):
			s.logger.Warn("Recorded tx reverted, sending a new one", zap.Stringer("txHash", *txHash), zap.Error(err))
		case errors.Is(err, evm.ErrTxNotFound):
			s.logger.Warn("Recorded tx is unknown to the rpc, sending a new one", zap.Stringer("txHash", *txHash))
		default:
			return nil, err
		}
	}
	hash, err := send(ctx)
	if err != nil {
		return nil, err
	}
	*txHash = hash
	if err := s.checkpoint(ctx); err != nil {
		return nil, err
	}
	return s.deps.ValidatorManager.WaitReceipt(ctx, hash)
}

func (s *Saga) initiateChangeWeight(ctx context.Context) error {
	req := s.state.Request
	art := &s.state.Artifacts
	receipt, err := s.sendAndWait(ctx, &art.InitiateTxHash, func(ctx context.Context) (common.Hash, error) {
		return s.deps.ValidatorManager.InitiateValidatorWeightUpdate(ctx, req.ValidationID, req.Weight)
	})
	if err != nil {
		return err
	}
	eventData, err := validatormanager.GetWeightUpdateEventData(receipt)
	if err != nil {
		return fmt.Errorf("%w: %w", warp.ErrMalformedMessage, err)
	}
	if eventData.ValidationID != req.ValidationID {
		return fmt.Errorf("%w: weight update event is for validation %s, expected %s", ErrArtifactMismatch, eventData.ValidationID, req.ValidationID)
	}
	return s.recordInitiation(receipt, eventData)
}

func (s *Saga) initiateValidatorRegistration(ctx context.Context) error {
	req := s.state.Request
	art := &s.state.Artifacts
	receipt, err := s.sendAndWait(ctx, &art.InitiateTxHash, func(ctx context.Context) (common.Hash, error) {
		return s.deps.ValidatorManager.InitiateValidatorRegistration(ctx, validatormanager.RegistrationRequest{
			NodeID:                req.NodeID,
			BLSPublicKey:          req.BLSPublicKey,
			RemainingBalanceOwner: req.RemainingBalanceOwner,
			DisableOwner:          req.DisableOwner,
			Weight:                req.Weight,
		})
	})
	if err != nil {
		return err
	}
	eventData, err := validatormanager.GetRegistrationEventData(receipt)
	if err != nil {
		return fmt.Errorf("%w: %w", warp.ErrMalformedMessage, err)
	}
	if err := s.recordInitiation(receipt, eventData); err != nil {
		return err
	}
	s.state.Request.ValidationID = eventData.ValidationID
	return nil
}

func (s *Saga) recordInitiation(receipt *types.Receipt, eventData validatormanager.EventData) error {
	unsignedMessage, err := evm.ExtractWarpMessageFromReceipt(receipt)
	if err != nil {
		return fmt.Errorf("%w: %w", warp.ErrMalformedMessage, err)
	}
	if _, err := warp.ParseUnsignedMessage(unsignedMessage); err != nil {
		return err
	}
	s.state.Artifacts.EventData = &eventData
	s.state.Artifacts.UnsignedWarpMessage = unsignedMessage
	s.logger.Info("Validator change initiated",
		zap.Stringer("validationID", eventData.ValidationID),
		zap.Uint64("nonce", eventData.Nonce),
		zap.Uint64("weight", eventData.Weight),
		zap.Stringer("messageID", eventData.MessageID),
	)
	return nil
}

func (s *Saga) aggregate(ctx context.Context, message []byte, justificationBytes []byte) ([]byte, error) {
	req := interchain.AggregateRequest{
		Message:          hex.EncodeToString(message),
		SigningSubnetID:  s.state.Request.SigningSubnetID.String(),
		QuorumPercentage: s.state.Request.QuorumPercentage,
	}
	if len(justificationBytes) > 0 {
		req.Justification = hex.EncodeToString(justificationBytes)
	}
	resp, err := s.deps.Aggregator.AggregateSignatures(ctx, req)
	if err != nil {
		return nil, err
	}
	signed, err := hex.DecodeString(resp.SignedMessage)
	if err != nil {
		return nil, fmt.Errorf("%w: signed message is not hex encoded: %w", warp.ErrMalformedMessage, err)
	}
	return signed, nil
}

func (s *Saga) signMessage(ctx context.Context) error {
	art := &s.state.Artifacts
	if len(art.UnsignedWarpMessage) == 0 {
		return missing("unsigned warp message")
	}
	signed, err := s.aggregate(ctx, art.UnsignedWarpMessage, nil)
	if err != nil {
		return err
	}
	art.SignedWarpMessage = signed
	return nil
}

// submitPChainTx builds and signs the P-Chain tx, checkpoints it, and only then
// issues it. A recorded tx is re-issued unless the P-Chain already committed it
func (s *Saga) submitPChainTx(ctx context.Context) error {
	art := &s.state.Artifacts
	if art.PChainTxID != ids.Empty {
		accepted, err := s.deps.PChain.TxAccepted(ctx, art.PChainTxID)
		if err != nil {
			return err
		}
		if accepted {
			s.logger.Info("Reusing recorded P-Chain tx", zap.Stringer("txID", art.PChainTxID))
			return nil
		}
		if len(art.PChainTx) == 0 {
			return missing("signed P-Chain tx")
		}
		tx, err := pchain.ParseTx(art.PChainTx)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrArtifactMismatch, err)
		}
		if tx.ID() != art.PChainTxID {
			return fmt.Errorf("%w: recorded P-Chain tx is %s, expected %s", ErrArtifactMismatch, tx.ID(), art.PChainTxID)
		}
		s.logger.Info("Re-issuing recorded P-Chain tx", zap.Stringer("txID", art.PChainTxID))
		return s.issuePChainTx(ctx, tx)
	}
	if len(art.SignedWarpMessage) == 0 {
		return missing("signed warp message")
	}
	var (
		tx  *txs.Tx
		err error
	)
	switch s.state.Kind {
	case KindCompleteRegistration:
		var pop [bls.SignatureLen]byte
		if len(s.state.Request.ProofOfPossession) != bls.SignatureLen {
			return fmt.Errorf("%w: proof of possession must be %d bytes", ErrInvalidRequest, bls.SignatureLen)
		}
		copy(pop[:], s.state.Request.ProofOfPossession)
		tx, err = s.deps.PChain.BuildRegisterL1ValidatorTx(ctx, s.state.Request.Balance, pop, art.SignedWarpMessage)
	default:
		tx, err = s.deps.PChain.BuildSetL1ValidatorWeightTx(ctx, art.SignedWarpMessage)
	}
	if err != nil {
		return err
	}
	art.PChainTxID = tx.ID()
	art.PChainTx = tx.Bytes()
	if err := s.checkpoint(ctx); err != nil {
		return err
	}
	return s.issuePChainTx(ctx, tx)
}

// issuePChainTx issues [tx]. A warp message already consumed on the P-Chain
// means the change is applied there, so it is not an error
func (s *Saga) issuePChainTx(ctx context.Context, tx *txs.Tx) error {
	err := s.deps.PChain.IssueTx(ctx, tx)
	if errors.Is(err, pchain.ErrWarpMessageAlreadyIssued) {
		s.logger.Info("Warp message already issued on the P-Chain, proceeding", zap.Stringer("txID", tx.ID()))
		return nil
	}
	return err
}

// pChainResponse builds the P-Chain message confirming the change carried by
// the P-Chain tx message [txMessage]
func (s *Saga) pChainResponse(txMessage []byte) ([]byte, error) {
	eventData := s.state.Artifacts.EventData
	networkID := s.state.Request.NetworkID
	switch s.state.Kind {
	case KindCompleteRegistration:
		reg, err := warp.ParseRegistrationMessage(txMessage)
		if err != nil {
			return nil, err
		}
		if reg.ValidationID != eventData.ValidationID {
			return nil, fmt.Errorf("%w: P-Chain tx registers %s, expected %s", ErrArtifactMismatch, reg.ValidationID, eventData.ValidationID)
		}
		return warp.PackL1ValidatorRegistrationMessage(reg.ValidationID, true, networkID, constants.PlatformChainID)
	default:
		weight, err := warp.ParseL1ValidatorWeightMessage(txMessage)
		if err != nil {
			return nil, err
		}
		if weight.ValidationID != eventData.ValidationID || weight.Nonce != eventData.Nonce {
			return nil, fmt.Errorf("%w: P-Chain tx sets weight of %s nonce %d, expected %s nonce %d",
				ErrArtifactMismatch, weight.ValidationID, weight.Nonce, eventData.ValidationID, eventData.Nonce)
		}
		return warp.PackL1ValidatorWeightMessage(*weight, networkID, constants.PlatformChainID)
	}
}

// pChainTxMessage is the unsigned warp message of the recorded P-Chain tx. It
// is read from the recorded tx bytes when present, as the P-Chain may have
// accepted another tx carrying the same message
func (s *Saga) pChainTxMessage(ctx context.Context) ([]byte, error) {
	art := &s.state.Artifacts
	if len(art.PChainTx) > 0 {
		return pchain.ParseTxWarpMessage(art.PChainTx)
	}
	return s.deps.PChain.GetTxWarpMessage(ctx, art.PChainTxID)
}

func (s *Saga) pChainSignature(ctx context.Context) error {
	art := &s.state.Artifacts
	if art.PChainTxID == ids.Empty {
		return missing("P-Chain tx ID")
	}
	if art.EventData == nil {
		return missing("event data")
	}
	txMessage, err := s.pChainTxMessage(ctx)
	if err != nil {
		return err
	}
	response, err := s.pChainResponse(txMessage)
	if err != nil {
		return err
	}
	target := justification.Target{
		ValidationID: art.EventData.ValidationID,
		NodeID:       s.state.Request.NodeID,
	}
	justificationBytes, err := s.deps.Justifier.GetRegistrationJustification(ctx, target, s.state.Request.SubnetID)
	if err != nil {
		return err
	}
	if justificationBytes == nil {
		return fmt.Errorf("%w %s, check the P-Chain tx ID %s", justification.ErrJustificationNotFound, target, art.PChainTxID)
	}
	if _, err := justification.VerifyJustification(justificationBytes, target); err != nil {
		return err
	}
	signed, err := s.aggregate(ctx, response, justificationBytes)
	if err != nil {
		return err
	}
	art.PChainSignature = signed
	return nil
}

func (s *Saga) complete(ctx context.Context, send func(context.Context, []byte) (common.Hash, error)) error {
	art := &s.state.Artifacts
	if len(art.PChainSignature) == 0 {
		return missing("P-Chain signature")
	}
	receipt, err := s.sendAndWait(ctx, &art.CompleteTxHash, func(ctx context.Context) (common.Hash, error) {
		return send(ctx, art.PChainSignature)
	})
	if err != nil {
		return err
	}
	s.logger.Info("Validator change completed",
		zap.Stringer("txHash", art.CompleteTxHash),
		zap.Uint64("status", receipt.Status),
	)
	return nil
}

func (s *Saga) completeChangeWeight(ctx context.Context) error {
	return s.complete(ctx, s.deps.ValidatorManager.CompleteValidatorWeightUpdate)
}

func (s *Saga) completeValidatorRegistration(ctx context.Context) error {
	return s.complete(ctx, s.deps.ValidatorManager.CompleteValidatorRegistration)
}
