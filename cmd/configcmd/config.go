// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package configcmd

import (
	"github.com/ava-labs/l1-orchestrator/pkg/application"
	"github.com/ava-labs/l1-orchestrator/pkg/cobrautils"
	"github.com/spf13/cobra"
)

var app *application.App

func NewCmd(injectedApp *application.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Modify configuration for l1orch",
		Long:  `Customize the network, endpoints, limits and storage used by l1orch`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cobrautils.CommandSuiteUsage(cmd, args)
		},
	}
	app = injectedApp
	// set user metrics collection preferences cmd
	cmd.AddCommand(newMetricsCmd())
	cmd.AddCommand(newSetCmd())
	cmd.AddCommand(newShowCmd())
	return cmd
}
