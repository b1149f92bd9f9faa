// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package evm

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/ava-labs/l1-orchestrator/sdk/utils"
	ethereum "github.com/ava-labs/libevm"
	"github.com/ava-labs/libevm/common"
	"github.com/ava-labs/libevm/core/types"
	"github.com/ava-labs/libevm/crypto"
	"github.com/ava-labs/subnet-evm/ethclient"
)

const (
	repeatsOnFailure     = 3
	baseFeeFactor        = 2
	maxPriorityFeePerGas = 2500000000 // 2.5 gwei
	defaultGasLimit      = uint64(2_000_000)
)

// vars so tests can shorten them
var (
	sleepBetweenRepeats = 1 * time.Second
	receiptPollInterval = 1 * time.Second
)

// ErrTxNotFound means the rpc knows neither a receipt nor a pending tx for a hash
var ErrTxNotFound = errors.New("transaction not found")

// used to mock the connection function
var ethclientDialContext = ethclient.DialContext

// wraps over ethclient for calls used by the orchestrator. features:
// - adds a scheme to the rpc url in case it is missing
// - repeats to try to recover from failures, deriving a per attempt context from the caller one
// - logs rpc url in case of failure
type Client struct {
	EthClient ethclient.Client
	URL       string
}

// TxParams describes a contract call tx to be built by [Client.BuildTx]
type TxParams struct {
	From       common.Address
	PrivateKey *ecdsa.PrivateKey
	To         common.Address
	Data       []byte
	Value      *big.Int
	AccessList types.AccessList
	// if set, the tx is returned unsigned so it can be issued by external tools
	GenerateRawTxOnly bool
	// contract errors used to decode a gas estimation revert
	ErrorSignatureToError map[string]error
}

// indicates if the given rpc url has schema or not
func HasScheme(rpcURL string) (bool, error) {
	parsedURL, err := url.Parse(rpcURL)
	if err != nil {
		if !strings.Contains(err.Error(), "first path segment in URL cannot contain colon") {
			return false, err
		}
		return false, nil
	}
	return strings.Contains(rpcURL, "://") && parsedURL.Scheme != "", nil
}

// NormalizeRPCURL adds a scheme to [rpcURL] if it has none: http for local
// endpoints, https otherwise
func NormalizeRPCURL(rpcURL string) (string, error) {
	hasScheme, err := HasScheme(rpcURL)
	if err != nil {
		return "", fmt.Errorf("failure determining the scheme of url %s: %w", rpcURL, err)
	}
	if hasScheme {
		return rpcURL, nil
	}
	if strings.HasPrefix(rpcURL, "localhost") || strings.HasPrefix(rpcURL, "127.0.0.1") {
		return "http://" + rpcURL, nil
	}
	return "https://" + rpcURL, nil
}

// connects an evm client to the given [rpcURL]
// supports [repeatsOnFailure] failures
func GetClient(ctx context.Context, rpcURL string) (Client, error) {
	client := Client{
		URL: rpcURL,
	}
	normalizedURL, err := NormalizeRPCURL(rpcURL)
	if err != nil {
		return client, err
	}
	client.EthClient, err = utils.Retry(
		ctx,
		func(ctx context.Context) (ethclient.Client, error) {
			return ethclientDialContext(ctx, normalizedURL)
		},
		sleepBetweenRepeats,
		repeatsOnFailure,
		fmt.Sprintf("failure connecting to %s", rpcURL),
	)
	return client, err
}

// closes underlying ethclient connection
func (client Client) Close() {
	if client.EthClient != nil {
		client.EthClient.Close()
	}
}

func retry[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	return utils.RetryWithContextGen(
		func() (context.Context, context.CancelFunc) {
			return utils.GetAPIContextFrom(ctx)
		},
		fn,
		repeatsOnFailure,
		sleepBetweenRepeats,
	)
}

// returns the contract bytecode at [address]
// supports [repeatsOnFailure] failures
func (client Client) CodeAt(ctx context.Context, address common.Address, blockNumber *big.Int) ([]byte, error) {
	code, err := retry(ctx, func(ctx context.Context) ([]byte, error) {
		return client.EthClient.CodeAt(ctx, address, blockNumber)
	})
	if err != nil {
		err = fmt.Errorf("failure obtaining code from %s at address %s: %w", client.URL, address.Hex(), err)
	}
	return code, err
}

// executes a read only contract call
// reverts are not retried, as they are deterministic
func (client Client) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	return client.EthClient.CallContract(ctx, msg, blockNumber)
}

// returns the nonce at [address]
// supports [repeatsOnFailure] failures
func (client Client) NonceAt(ctx context.Context, address common.Address) (uint64, error) {
	nonce, err := retry(ctx, func(ctx context.Context) (uint64, error) {
		return client.EthClient.NonceAt(ctx, address, nil)
	})
	if err != nil {
		err = fmt.Errorf("failure obtaining nonce for %s on %s: %w", address.Hex(), client.URL, err)
	}
	return nonce, err
}

// returns the suggested gas tip
// supports [repeatsOnFailure] failures
func (client Client) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	gasTipCap, err := retry(ctx, client.EthClient.SuggestGasTipCap)
	if err != nil {
		err = fmt.Errorf("failure obtaining gas tip cap on %s: %w", client.URL, err)
	}
	return gasTipCap, err
}

// returns the estimated base fee
// supports [repeatsOnFailure] failures
func (client Client) EstimateBaseFee(ctx context.Context) (*big.Int, error) {
	baseFee, err := retry(ctx, client.EthClient.EstimateBaseFee)
	if err != nil {
		err = fmt.Errorf("failure estimating base fee on %s: %w", client.URL, err)
	}
	return baseFee, err
}

// Returns gasFeeCap, gasTipCap, and nonce to be used when constructing a transaction
// supports [repeatsOnFailure] failures on each step
func (client Client) CalculateTxParams(
	ctx context.Context,
	address common.Address,
) (*big.Int, *big.Int, uint64, error) {
	baseFee, err := client.EstimateBaseFee(ctx)
	if err != nil {
		return nil, nil, 0, err
	}
	gasTipCap, err := client.SuggestGasTipCap(ctx)
	if err != nil {
		return nil, nil, 0, err
	}
	nonce, err := client.NonceAt(ctx, address)
	if err != nil {
		return nil, nil, 0, err
	}
	gasFeeCap := new(big.Int).Mul(baseFee, big.NewInt(baseFeeFactor))
	gasFeeCap.Add(gasFeeCap, big.NewInt(maxPriorityFeePerGas))
	return gasFeeCap, gasTipCap, nonce, nil
}

// returns the estimated gas limit
// reverts are not retried, as they are deterministic
func (client Client) EstimateGasLimit(ctx context.Context, msg ethereum.CallMsg) (uint64, error) {
	return client.EthClient.EstimateGas(ctx, msg)
}

// returns the chain ID
// supports [repeatsOnFailure] failures
func (client Client) GetChainID(ctx context.Context) (*big.Int, error) {
	chainID, err := retry(ctx, client.EthClient.ChainID)
	if err != nil {
		err = fmt.Errorf("failure getting chain id from %s: %w", client.URL, err)
	}
	return chainID, err
}

// sends [tx]
// it is not retried, as resubmission of a tx can not be told apart from
// a conflicting one at the rpc level
func (client Client) SendTransaction(ctx context.Context, tx *types.Transaction) error {
	if err := client.EthClient.SendTransaction(ctx, tx); err != nil {
		return fmt.Errorf("failure sending transaction %s to %s: %w", tx.Hash(), client.URL, err)
	}
	return nil
}

// returns the receipt for the tx with [hash]
// supports [repeatsOnFailure] failures
func (client Client) TransactionReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	receipt, err := retry(ctx, func(ctx context.Context) (*types.Receipt, error) {
		return client.EthClient.TransactionReceipt(ctx, hash)
	})
	if err != nil {
		err = fmt.Errorf("failure obtaining receipt for tx %s on %s: %w", hash, client.URL, err)
	}
	return receipt, err
}

// waits until the receipt for the tx with [hash] is available, polling the rpc.
// supports [repeatsOnFailure] failures, each attempt bounded by the large API timeout.
// fails with [ErrTxNotFound] if the rpc does not know the tx, eg because it was dropped
func (client Client) WaitForReceipt(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	receipt, err := utils.RetryWithContextGen(
		func() (context.Context, context.CancelFunc) {
			return utils.GetAPILargeContextFrom(ctx)
		},
		func(ctx context.Context) (*types.Receipt, error) {
			return client.waitMined(ctx, hash)
		},
		repeatsOnFailure,
		sleepBetweenRepeats,
	)
	if err != nil {
		err = fmt.Errorf("failure waiting for tx %s on %s: %w", hash, client.URL, err)
	}
	return receipt, err
}

func (client Client) waitMined(ctx context.Context, hash common.Hash) (*types.Receipt, error) {
	ticker := time.NewTicker(receiptPollInterval)
	defer ticker.Stop()
	for {
		receipt, err := client.EthClient.TransactionReceipt(ctx, hash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, err
		}
		if _, _, err := client.EthClient.TransactionByHash(ctx, hash); errors.Is(err, ethereum.NotFound) {
			return nil, fmt.Errorf("%w: %s", ErrTxNotFound, hash)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}
}

// returns the logs matching [query]
// supports [repeatsOnFailure] failures
func (client Client) FilterLogs(ctx context.Context, query ethereum.FilterQuery) ([]types.Log, error) {
	logs, err := retry(ctx, func(ctx context.Context) ([]types.Log, error) {
		return client.EthClient.FilterLogs(ctx, query)
	})
	if err != nil {
		err = fmt.Errorf("failure filtering logs on %s: %w", client.URL, err)
	}
	return logs, err
}

// BuildTx creates a dynamic fee tx for [params], signed unless [params.GenerateRawTxOnly] is set.
// If gas estimation reverts with a known contract error, that error is returned. On any
// other estimation failure a default gas limit is used, so that the user can debug the tx
func (client Client) BuildTx(ctx context.Context, params TxParams) (*types.Transaction, error) {
	from := params.From
	if params.PrivateKey == nil && from == (common.Address{}) {
		return nil, fmt.Errorf("from address and private key can't be both empty")
	}
	if !params.GenerateRawTxOnly && params.PrivateKey == nil {
		return nil, fmt.Errorf("a private key must be given to be able to sign the tx")
	}
	if params.PrivateKey != nil && from == (common.Address{}) {
		from = crypto.PubkeyToAddress(params.PrivateKey.PublicKey)
	}
	gasFeeCap, gasTipCap, nonce, err := client.CalculateTxParams(ctx, from)
	if err != nil {
		return nil, err
	}
	chainID, err := client.GetChainID(ctx)
	if err != nil {
		return nil, err
	}
	to := params.To
	msg := ethereum.CallMsg{
		From:       from,
		To:         &to,
		GasTipCap:  gasTipCap,
		GasFeeCap:  gasFeeCap,
		Value:      params.Value,
		Data:       params.Data,
		AccessList: params.AccessList,
	}
	gasLimit, err := client.EstimateGasLimit(ctx, msg)
	if err != nil {
		if contractErr := ErrorFromCallError(err, params.ErrorSignatureToError); contractErr != nil {
			return nil, contractErr
		}
		gasLimit = defaultGasLimit
	}
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:    chainID,
		Nonce:      nonce,
		To:         &to,
		Gas:        gasLimit,
		GasFeeCap:  gasFeeCap,
		GasTipCap:  gasTipCap,
		Value:      params.Value,
		Data:       params.Data,
		AccessList: params.AccessList,
	})
	if params.GenerateRawTxOnly {
		return tx, nil
	}
	return types.SignTx(tx, types.LatestSignerForChainID(chainID), params.PrivateKey)
}
