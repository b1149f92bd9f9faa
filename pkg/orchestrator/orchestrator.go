// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package orchestrator

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"os"

	avagoconstants "github.com/ava-labs/avalanchego/utils/constants"
	"github.com/ava-labs/avalanchego/utils/crypto/secp256k1"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/l1-orchestrator/pkg/checkpoint"
	"github.com/ava-labs/l1-orchestrator/pkg/config"
	"github.com/ava-labs/l1-orchestrator/pkg/constants"
	"github.com/ava-labs/l1-orchestrator/pkg/saga"
	"github.com/ava-labs/l1-orchestrator/sdk/evm"
	"github.com/ava-labs/l1-orchestrator/sdk/interchain"
	"github.com/ava-labs/l1-orchestrator/sdk/justification"
	"github.com/ava-labs/l1-orchestrator/sdk/pchain"
	"github.com/ava-labs/l1-orchestrator/sdk/validator"
	"github.com/ava-labs/l1-orchestrator/sdk/validatormanager"
	"github.com/ava-labs/libevm/common"
	"go.uber.org/zap"
)

var ErrMissingRPCEndpoint = errors.New("an L1 RPC endpoint is required, set it with `l1orch config set rpc-endpoint <url>`")

// Keys are the secrets used to sign txs. Both are optional: without an EVM key
// only raw txs for [Signer] can be generated, and without a P-Chain key no
// P-Chain tx can be issued
type Keys struct {
	EVMPrivateKey    string
	PChainPrivateKey string
	// address used to build unsigned txs when EVMPrivateKey is not set
	Signer common.Address
}

// KeysFromEnv reads the keys from the process environment, after .env loading
func KeysFromEnv() Keys {
	return Keys{
		EVMPrivateKey:    os.Getenv(constants.EVMPrivateKeyEnvVar),
		PChainPrivateKey: os.Getenv(constants.PChainPrivateKeyEnvVar),
	}
}

// Options are the non settings inputs of an Orchestrator
type Options struct {
	Keys     Keys
	Store    checkpoint.Store
	Logger   logging.Logger
	Observer saga.Observer
	Reporter saga.Reporter
}

// Orchestrator owns the clients built from the settings, and the saga manager
// driving them
type Orchestrator struct {
	Manager          *saga.Manager
	ValidatorManager *validatormanager.Manager
	NetworkID        uint32

	handle *evm.ClientHandle
	store  checkpoint.Store
}

// NetworkID maps a network name to its avalanche network id
func NetworkID(network string) (uint32, error) {
	switch network {
	case constants.Mainnet:
		return avagoconstants.MainnetID, nil
	case constants.Fuji:
		return avagoconstants.FujiID, nil
	case constants.Local:
		return avagoconstants.LocalID, nil
	default:
		return 0, fmt.Errorf("unsupported network %q", network)
	}
}

// ManagerAddress parses the configured validator manager address, defaulting
// to the genesis predeploy address
func ManagerAddress(address string) (common.Address, error) {
	if address == "" {
		return validatormanager.DefaultAddress, nil
	}
	if !common.IsHexAddress(address) {
		return common.Address{}, fmt.Errorf("invalid validator manager address %q", address)
	}
	return common.HexToAddress(address), nil
}

// New wires every collaborator of the saga manager from [settings]. No
// connection is made until a saga needs it
func New(settings config.Settings, opts Options) (*Orchestrator, error) {
	if settings.RPCEndpoint == "" {
		return nil, ErrMissingRPCEndpoint
	}
	if opts.Store == nil {
		return nil, errors.New("checkpoint store is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NoLog{}
	}
	networkID, err := NetworkID(settings.Network)
	if err != nil {
		return nil, err
	}
	managerAddress, err := ManagerAddress(settings.ValidatorManagerAddress)
	if err != nil {
		return nil, err
	}
	evmKey, err := parseEVMKey(opts.Keys.EVMPrivateKey)
	if err != nil {
		return nil, err
	}
	pChainKey, err := parsePChainKey(opts.Keys.PChainPrivateKey)
	if err != nil {
		return nil, err
	}
	aggregator, err := interchain.NewAggregatorClient(interchain.AggregatorConfig{
		BaseURL:          settings.AggregatorURL,
		Network:          settings.Network,
		Dialect:          settings.AggregatorDialect,
		QuorumPercentage: settings.QuorumPercentage,
	}, logger)
	if err != nil {
		return nil, err
	}

	handle := evm.NewClientHandle(settings.RPCEndpoint)
	vm := validatormanager.NewManager(handle, managerAddress, evmKey, opts.Keys.Signer, logger)
	manager, err := saga.NewManager(saga.ManagerConfig{
		Dependencies: saga.Dependencies{
			ValidatorManager: vm,
			Aggregator:       aggregator,
			PChain:           pchain.NewIssuer(settings.PChainEndpoint, pChainKey, logger),
			Justifier:        justification.NewExtractorFromHandle(handle, logger),
		},
		Validators:                validator.NewPChainReader(settings.PChainEndpoint),
		Store:                     opts.Store,
		MaxWeightChangePercentage: settings.MaxWeightChangePercentage,
		QuorumPercentage:          settings.QuorumPercentage,
		Logger:                    logger,
		Observer:                  opts.Observer,
		Reporter:                  opts.Reporter,
	})
	if err != nil {
		handle.Close()
		return nil, err
	}
	logger.Debug("Orchestrator ready",
		zap.String("network", settings.Network),
		zap.String("rpc", settings.RPCEndpoint),
		zap.String("pchain", settings.PChainEndpoint),
		zap.Stringer("validatorManager", managerAddress),
		zap.Stringer("signer", vm.Signer()),
	)
	return &Orchestrator{
		Manager:          manager,
		ValidatorManager: vm,
		NetworkID:        networkID,
		handle:           handle,
		store:            opts.Store,
	}, nil
}

func parseEVMKey(key string) (*ecdsa.PrivateKey, error) {
	if key == "" {
		return nil, nil
	}
	pk, err := evm.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", constants.EVMPrivateKeyEnvVar, err)
	}
	return pk, nil
}

func parsePChainKey(key string) (*secp256k1.PrivateKey, error) {
	if key == "" {
		return nil, nil
	}
	pk, err := pchain.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", constants.PChainPrivateKeyEnvVar, err)
	}
	return pk, nil
}

// Close releases the L1 client and the checkpoint store
func (o *Orchestrator) Close() error {
	o.handle.Close()
	return o.store.Close()
}
