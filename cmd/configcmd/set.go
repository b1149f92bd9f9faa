// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package configcmd

import (
	"fmt"
	"strconv"

	"github.com/ava-labs/l1-orchestrator/pkg/checkpoint"
	"github.com/ava-labs/l1-orchestrator/pkg/cobrautils"
	"github.com/ava-labs/l1-orchestrator/pkg/constants"
	"github.com/ava-labs/l1-orchestrator/pkg/ux"
	"github.com/ava-labs/l1-orchestrator/sdk/interchain"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slices"
)

var checkpointBackends = []string{
	string(checkpoint.BackendFile),
	string(checkpoint.BackendBolt),
	string(checkpoint.BackendPostgres),
}

// settable keys and how their values are parsed
var settableKeys = map[string]func(string) (interface{}, error){
	constants.ConfigNetworkKey:                   oneOf(constants.Mainnet, constants.Fuji, constants.Local),
	constants.ConfigRPCEndpointKey:               asString,
	constants.ConfigPChainEndpointKey:            asString,
	constants.ConfigValidatorManagerAddressKey:   asString,
	constants.ConfigQuorumPercentageKey:          asQuorumPercentage,
	constants.ConfigMaxWeightChangePercentageKey: asPercentage,
	constants.ConfigAggregatorURLKey:             asString,
	constants.ConfigAggregatorDialectKey:         oneOf(string(interchain.DialectGlacier), string(interchain.DialectICM)),
	constants.ConfigCheckpointBackendKey:         oneOf(checkpointBackends...),
	constants.ConfigCheckpointDSNKey:             asString,
}

// l1orch config set
func newSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set key value",
		Short: "Set a configuration value",
		Long: fmt.Sprintf(`The config set command persists a configuration value.

Supported keys: %v`, sortedKeys()),
		RunE: setConfig,
		Args: cobrautils.ExactArgs(2),
	}
}

func sortedKeys() []string {
	keys := make([]string, 0, len(settableKeys))
	for key := range settableKeys {
		keys = append(keys, key)
	}
	slices.Sort(keys)
	return keys
}

func setConfig(_ *cobra.Command, args []string) error {
	key, raw := args[0], args[1]
	parse, ok := settableKeys[key]
	if !ok {
		return fmt.Errorf("unknown config key %q, expected one of %v", key, sortedKeys())
	}
	value, err := parse(raw)
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	if err := app.Conf.SetConfigValue(key, value); err != nil {
		return err
	}
	ux.Logger.GreenCheckmarkToUser("%s set to %v", key, value)
	return nil
}

func asString(s string) (interface{}, error) {
	return s, nil
}

func oneOf(options ...string) func(string) (interface{}, error) {
	return func(s string) (interface{}, error) {
		if !slices.Contains(options, s) {
			return nil, fmt.Errorf("expected one of %v", options)
		}
		return s, nil
	}
}

func asQuorumPercentage(s string) (interface{}, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return nil, err
	}
	return interchain.CheckQuorumPercentage(v)
}

func asPercentage(s string) (interface{}, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, err
	}
	if v <= 0 || v > 100 {
		return nil, fmt.Errorf("must be in (0, 100], got %s", s)
	}
	return v, nil
}
