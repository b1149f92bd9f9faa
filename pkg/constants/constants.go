// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package constants

import "time"

const (
	DefaultPerms755    = 0o755
	WriteReadReadPerms = 0o644

	BaseDirName    = ".l1-orchestrator"
	LogDir         = "logs"
	SagasDir       = "sagas"
	BoltDBFileName = "sagas.db"
	ConfigFileName = "config.json"
	EnvFileName    = ".env"
	EnvPrefix      = "L1ORCH"
	LogNameMain    = "l1orch"
	LastFileName   = ".last_actions.json"

	// log file rotation
	MaxLogFileSize   = 4
	MaxNumOfLogFiles = 5
	RetainOldFiles   = 0

	DefaultLogLevel = "ERROR"

	// config keys
	ConfigBaseDirKey                   = "base-dir"
	ConfigNetworkKey                   = "network"
	ConfigRPCEndpointKey               = "rpc-endpoint"
	ConfigPChainEndpointKey            = "pchain-endpoint"
	ConfigValidatorManagerAddressKey   = "validator-manager-address"
	ConfigQuorumPercentageKey          = "quorum-percentage"
	ConfigMaxWeightChangePercentageKey = "max-weight-change-percentage"
	ConfigAggregatorURLKey             = "aggregator-url"
	ConfigAggregatorDialectKey         = "aggregator-dialect"
	ConfigCheckpointBackendKey         = "checkpoint-backend"
	ConfigCheckpointDSNKey             = "checkpoint-dsn"
	ConfigMetricsEnabledKey            = "metrics-enabled"
	ConfigMetricsUserIDKey             = "metrics-user-id"

	// env only secrets, never written to the config file
	EVMPrivateKeyEnvVar    = "L1ORCH_EVM_PRIVATE_KEY"
	PChainPrivateKeyEnvVar = "L1ORCH_PCHAIN_PRIVATE_KEY"

	Enable  = "enable"
	Disable = "disable"

	// network names, as used by the hosted signature aggregator
	Mainnet = "mainnet"
	Fuji    = "fuji"
	Local   = "local"

	MainnetAPIEndpoint = "https://api.avax.network"
	FujiAPIEndpoint    = "https://api.avax-test.network"
	LocalAPIEndpoint   = "http://127.0.0.1:9650"

	// saga execution
	SagaStepTimeout    = 5 * time.Minute
	ReceiptWaitTimeout = 2 * time.Minute

	TimeParseLayout = "2006-01-02 15:04:05"
)
