// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/l1-orchestrator/pkg/checkpoint"
	"github.com/ava-labs/l1-orchestrator/pkg/constants"
	"github.com/ava-labs/l1-orchestrator/pkg/utils"
	"github.com/ava-labs/l1-orchestrator/sdk/interchain"
	"github.com/ava-labs/l1-orchestrator/sdk/validator"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Settings are the orchestrator parameters resolved from the config file,
// the environment and the defaults
type Settings struct {
	Network                   string
	RPCEndpoint               string
	PChainEndpoint            string
	ValidatorManagerAddress   string
	QuorumPercentage          uint64
	MaxWeightChangePercentage float64
	AggregatorURL             string
	AggregatorDialect         interchain.Dialect
	CheckpointBackend         checkpoint.Backend
	CheckpointDSN             string
	MetricsEnabled            bool
}

type Config struct{}

func New() *Config {
	return &Config{}
}

// SetDefaults registers the default value of every setting
func (*Config) SetDefaults() {
	viper.SetDefault(constants.ConfigNetworkKey, constants.Fuji)
	viper.SetDefault(constants.ConfigQuorumPercentageKey, interchain.DefaultQuorumPercentage)
	viper.SetDefault(constants.ConfigMaxWeightChangePercentageKey, validator.DefaultMaxWeightChangePercentage)
	viper.SetDefault(constants.ConfigAggregatorDialectKey, string(interchain.DialectGlacier))
	viper.SetDefault(constants.ConfigCheckpointBackendKey, string(checkpoint.BackendFile))
	viper.SetDefault(constants.ConfigMetricsEnabledKey, false)
}

// LoadDotEnv loads [path] into the process environment, if present. Variables
// already set in the environment take precedence
func (*Config) LoadDotEnv(log logging.Logger, path string) error {
	err := godotenv.Load(path)
	switch {
	case err == nil:
		log.Info("Loaded environment file", zap.String("env-file", path))
		return nil
	case errors.Is(err, fs.ErrNotExist):
		return nil
	default:
		return fmt.Errorf("failure loading environment file %s: %w", path, err)
	}
}

func (c *Config) SetConfig(log logging.Logger, s string) {
	c.SetDefaults()
	viper.SetConfigType("json")
	viper.AddConfigPath(filepath.Dir(s))
	viper.SetConfigFile(s)
	viper.SetEnvPrefix(constants.EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		log.Info("Using config file", zap.String("config-file", s))
	} else {
		log.Info("No config file found", zap.String("config-file", s))
	}
}

func (*Config) GetConfigPath() string {
	return viper.ConfigFileUsed()
}

func (c *Config) ConfigFileExists() bool {
	return utils.FileExists(c.GetConfigPath())
}

// SetConfigValue sets the value of a configuration key and persists it
func (c *Config) SetConfigValue(key string, value interface{}) error {
	viper.Set(key, value)
	if c.ConfigFileExists() {
		return viper.WriteConfig()
	}
	return viper.SafeWriteConfigAs(c.GetConfigPath())
}

func (*Config) ConfigValueIsSet(key string) bool {
	return viper.IsSet(key)
}

func (*Config) GetConfigBoolValue(key string) bool {
	return viper.GetBool(key)
}

func (*Config) GetConfigStringValue(key string) string {
	return viper.GetString(key)
}

// AllSettings returns every setting, for display
func (*Config) AllSettings() map[string]interface{} {
	return viper.AllSettings()
}

// Settings returns the resolved orchestrator settings, after validating them
func (*Config) Settings() (Settings, error) {
	settings := Settings{
		Network:                   viper.GetString(constants.ConfigNetworkKey),
		RPCEndpoint:               viper.GetString(constants.ConfigRPCEndpointKey),
		PChainEndpoint:            viper.GetString(constants.ConfigPChainEndpointKey),
		ValidatorManagerAddress:   viper.GetString(constants.ConfigValidatorManagerAddressKey),
		QuorumPercentage:          viper.GetUint64(constants.ConfigQuorumPercentageKey),
		MaxWeightChangePercentage: viper.GetFloat64(constants.ConfigMaxWeightChangePercentageKey),
		AggregatorURL:             viper.GetString(constants.ConfigAggregatorURLKey),
		AggregatorDialect:         interchain.Dialect(viper.GetString(constants.ConfigAggregatorDialectKey)),
		CheckpointBackend:         checkpoint.Backend(viper.GetString(constants.ConfigCheckpointBackendKey)),
		CheckpointDSN:             viper.GetString(constants.ConfigCheckpointDSNKey),
		MetricsEnabled:            viper.GetBool(constants.ConfigMetricsEnabledKey),
	}
	if _, err := interchain.CheckQuorumPercentage(settings.QuorumPercentage); err != nil {
		return Settings{}, err
	}
	if settings.MaxWeightChangePercentage <= 0 || settings.MaxWeightChangePercentage > 100 {
		return Settings{}, fmt.Errorf("%s must be in (0, 100], got %f", constants.ConfigMaxWeightChangePercentageKey, settings.MaxWeightChangePercentage)
	}
	if settings.PChainEndpoint == "" {
		settings.PChainEndpoint = DefaultAPIEndpoint(settings.Network)
	}
	return settings, nil
}

// DefaultAPIEndpoint returns the public api endpoint of [network]
func DefaultAPIEndpoint(network string) string {
	switch network {
	case constants.Mainnet:
		return constants.MainnetAPIEndpoint
	case constants.Local:
		return constants.LocalAPIEndpoint
	default:
		return constants.FujiAPIEndpoint
	}
}
