// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package pchain

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/crypto/bls"
	"github.com/ava-labs/avalanchego/utils/crypto/secp256k1"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/vms/platformvm/txs"
	"github.com/ava-labs/avalanchego/vms/secp256k1fx"
	"github.com/ava-labs/avalanchego/wallet/subnet/primary/common"
	"github.com/ava-labs/l1-orchestrator/sdk/utils"
	"github.com/ava-labs/l1-orchestrator/sdk/wallet"
	"go.uber.org/zap"
)

const (
	issueRepeats             = 3
	sleepBetweenIssueRepeats = 2 * time.Second

	warpMessageAlreadyIssued = "warp message already issued for validationID"
)

var (
	ErrMissingKey = errors.New("a P-Chain private key is required to issue txs")
	// ErrWarpMessageAlreadyIssued means the P-Chain already accepted a tx
	// carrying the same warp message
	ErrWarpMessageAlreadyIssued = errors.New(warpMessageAlreadyIssued)
)

// Issuer builds, signs and issues L1 validator txs on the P-Chain. Its wallet
// is created on first use, as it requires fetching the key UTXOs
type Issuer struct {
	endpoint string
	keychain *secp256k1fx.Keychain
	logger   logging.Logger

	mu     sync.Mutex
	wallet *wallet.Wallet
}

// NewIssuer creates an issuer paying fees with [key]. A nil [key] only allows
// reading txs
func NewIssuer(endpoint string, key *secp256k1.PrivateKey, logger logging.Logger) *Issuer {
	if logger == nil {
		logger = logging.NoLog{}
	}
	issuer := &Issuer{
		endpoint: endpoint,
		logger:   logger,
	}
	if key != nil {
		issuer.keychain = secp256k1fx.NewKeychain(key)
	}
	return issuer
}

func (i *Issuer) Endpoint() string {
	return i.endpoint
}

func (i *Issuer) getWallet(ctx context.Context) (*wallet.Wallet, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if i.wallet != nil {
		return i.wallet, nil
	}
	if i.keychain == nil {
		return nil, ErrMissingKey
	}
	w, err := wallet.New(ctx, i.endpoint, i.keychain, wallet.Config{})
	if err != nil {
		return nil, err
	}
	i.wallet = w
	return w, nil
}

func (i *Issuer) sign(ctx context.Context, w *wallet.Wallet, unsignedTx txs.UnsignedTx) (*txs.Tx, error) {
	tx := txs.Tx{Unsigned: unsignedTx}
	if err := w.P().Signer().Sign(ctx, &tx); err != nil {
		return nil, fmt.Errorf("error signing tx: %w", err)
	}
	return &tx, nil
}

// BuildSetL1ValidatorWeightTx builds and signs a SetL1ValidatorWeightTx for the
// signed warp [message], without issuing it
func (i *Issuer) BuildSetL1ValidatorWeightTx(ctx context.Context, message []byte) (*txs.Tx, error) {
	w, err := i.getWallet(ctx)
	if err != nil {
		return nil, err
	}
	unsignedTx, err := w.P().Builder().NewSetL1ValidatorWeightTx(message, common.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("error building tx: %w", err)
	}
	return i.sign(ctx, w, unsignedTx)
}

// BuildRegisterL1ValidatorTx builds and signs a RegisterL1ValidatorTx for the
// signed warp [message], funding the validator with [balance]
func (i *Issuer) BuildRegisterL1ValidatorTx(
	ctx context.Context,
	balance uint64,
	proofOfPossession [bls.SignatureLen]byte,
	message []byte,
) (*txs.Tx, error) {
	w, err := i.getWallet(ctx)
	if err != nil {
		return nil, err
	}
	unsignedTx, err := w.P().Builder().NewRegisterL1ValidatorTx(balance, proofOfPossession, message, common.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("error building tx: %w", err)
	}
	return i.sign(ctx, w, unsignedTx)
}

// IssueTx issues [tx] and waits for its acceptance. A tx whose warp message
// was already consumed fails with ErrWarpMessageAlreadyIssued
func (i *Issuer) IssueTx(ctx context.Context, tx *txs.Tx) error {
	w, err := i.getWallet(ctx)
	if err != nil {
		return err
	}
	var issueTxErr error
	for attempt := 0; attempt < issueRepeats; attempt++ {
		issueTxErr = i.issueOnce(ctx, w, tx)
		if issueTxErr == nil || errors.Is(issueTxErr, ErrWarpMessageAlreadyIssued) || ctx.Err() != nil {
			break
		}
		time.Sleep(sleepBetweenIssueRepeats)
	}
	if issueTxErr != nil {
		i.logger.Error("P-Chain tx failed",
			zap.Stringer("txID", tx.ID()),
			zap.Error(issueTxErr),
		)
		return issueTxErr
	}
	i.logger.Info("P-Chain tx accepted", zap.Stringer("txID", tx.ID()))
	return nil
}

func (i *Issuer) issueOnce(ctx context.Context, w *wallet.Wallet, tx *txs.Tx) error {
	ctx, cancel := utils.GetAPILargeContextFrom(ctx)
	defer cancel()
	return issueError(ctx, tx.ID(), w.P().IssueTx(tx, common.WithContext(ctx)))
}

func issueError(ctx context.Context, txID ids.ID, err error) error {
	switch {
	case err == nil:
		return nil
	case strings.Contains(err.Error(), warpMessageAlreadyIssued):
		return fmt.Errorf("%w: tx %s", ErrWarpMessageAlreadyIssued, txID)
	case ctx.Err() != nil:
		return fmt.Errorf("timeout issuing/verifying tx with ID %s: %w", txID, err)
	default:
		return fmt.Errorf("error issuing tx with ID %s: %w", txID, err)
	}
}

// TxAccepted reports whether P-Chain tx [txID] is committed
func (i *Issuer) TxAccepted(ctx context.Context, txID ids.ID) (bool, error) {
	return TxCommitted(ctx, i.endpoint, txID)
}

// GetTxWarpMessage returns the unsigned warp message carried by P-Chain tx [txID]
func (i *Issuer) GetTxWarpMessage(ctx context.Context, txID ids.ID) ([]byte, error) {
	return GetTxWarpMessage(ctx, i.endpoint, txID)
}
