// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package flags

import (
	"fmt"

	"github.com/ava-labs/l1-orchestrator/pkg/constants"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	NetworkFlag                 = "network"
	RPCFlag                     = "rpc"
	PChainEndpointFlag          = "pchain-endpoint"
	ValidatorManagerAddressFlag = "validator-manager-address"
	AggregatorURLFlag           = "aggregator-url"
	AggregatorDialectFlag       = "aggregator-dialect"
	QuorumPercentageFlag        = "quorum-percentage"
	YesFlag                     = "yes"
)

// settingsFlagKeys maps every settings flag to the config key it overrides
var settingsFlagKeys = map[string]string{
	NetworkFlag:                 constants.ConfigNetworkKey,
	RPCFlag:                     constants.ConfigRPCEndpointKey,
	PChainEndpointFlag:          constants.ConfigPChainEndpointKey,
	ValidatorManagerAddressFlag: constants.ConfigValidatorManagerAddressKey,
	AggregatorURLFlag:           constants.ConfigAggregatorURLKey,
	AggregatorDialectFlag:       constants.ConfigAggregatorDialectKey,
	QuorumPercentageFlag:        constants.ConfigQuorumPercentageKey,
}

// AddSettingsFlagsToCmd adds flags overriding the configured network settings
// for the execution of [cmd]
func AddSettingsFlagsToCmd(cmd *cobra.Command) {
	cmd.Flags().String(NetworkFlag, "", "network of the L1: mainnet, fuji or local")
	cmd.Flags().String(RPCFlag, "", "connect to the validator manager at the given rpc endpoint")
	cmd.Flags().String(PChainEndpointFlag, "", "use the given P-Chain api endpoint")
	cmd.Flags().String(ValidatorManagerAddressFlag, "", "validator manager contract address")
	cmd.Flags().String(AggregatorURLFlag, "", "signature aggregator base url")
	cmd.Flags().String(AggregatorDialectFlag, "", "signature aggregator api: glacier or icm")
	cmd.Flags().Uint64(QuorumPercentageFlag, 0, "percentage of the signing subnet weight required in signatures")

	existingPreRunE := cmd.PreRunE
	cmd.PreRunE = func(cmd *cobra.Command, args []string) error {
		if existingPreRunE != nil {
			if err := existingPreRunE(cmd, args); err != nil {
				return err
			}
		}
		return BindSettingsFlags(cmd.Flags())
	}
}

// BindSettingsFlags makes the settings flags of [flagSet] take precedence over
// the config file and the environment. It must be called for the executing
// command only, as viper keeps a single flag per key
func BindSettingsFlags(flagSet *pflag.FlagSet) error {
	for flagName, key := range settingsFlagKeys {
		flag := flagSet.Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := viper.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failure binding flag --%s: %w", flagName, err)
		}
	}
	return nil
}

func AddYesFlagToCmd(cmd *cobra.Command, yes *bool) {
	cmd.Flags().BoolVarP(yes, YesFlag, "y", false, "don't prompt for missing values or for confirmation before writing on chain")
}
