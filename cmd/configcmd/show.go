// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package configcmd

import (
	"fmt"

	"github.com/ava-labs/l1-orchestrator/pkg/cobrautils"
	"github.com/ava-labs/l1-orchestrator/pkg/ux"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

// l1orch config show
func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the resolved configuration",
		Long: `The config show command prints the configuration in use, after applying
the config file, the environment and the defaults.`,
		RunE: showConfig,
		Args: cobrautils.ExactArgs(0),
	}
}

func showConfig(_ *cobra.Command, _ []string) error {
	settings, err := app.Conf.Settings()
	if err != nil {
		return err
	}
	t := ux.DefaultTable(fmt.Sprintf("Config %s", app.Conf.GetConfigPath()), nil)
	t.AppendRows([]table.Row{
		{"Network", settings.Network},
		{"RPC Endpoint", orUnset(settings.RPCEndpoint)},
		{"P-Chain Endpoint", settings.PChainEndpoint},
		{"Validator Manager", orUnset(settings.ValidatorManagerAddress)},
		{"Quorum Percentage", settings.QuorumPercentage},
		{"Max Weight Change Percentage", settings.MaxWeightChangePercentage},
		{"Aggregator URL", orUnset(settings.AggregatorURL)},
		{"Aggregator Dialect", settings.AggregatorDialect},
		{"Checkpoint Backend", settings.CheckpointBackend},
		{"Metrics Enabled", settings.MetricsEnabled},
	})
	ux.Logger.PrintToUser("%s", t.Render())
	return nil
}

func orUnset(s string) string {
	if s == "" {
		return "(default)"
	}
	return s
}
