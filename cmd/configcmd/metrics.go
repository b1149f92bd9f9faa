// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package configcmd

import (
	"errors"

	"github.com/ava-labs/l1-orchestrator/pkg/constants"
	"github.com/ava-labs/l1-orchestrator/pkg/ux"
	"github.com/spf13/cobra"
)

// l1orch config metrics
func newMetricsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "metrics [enable | disable]",
		Short:        "opt in or out of metrics collection",
		Long:         "set user metrics collection preferences",
		RunE:         handleMetricsSettings,
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
	}
	return cmd
}

func handleMetricsSettings(_ *cobra.Command, args []string) error {
	switch args[0] {
	case constants.Enable:
		ux.Logger.PrintToUser("Thank you for opting in l1orch usage metrics collection")
		return app.Conf.SetConfigValue(constants.ConfigMetricsEnabledKey, true)
	case constants.Disable:
		ux.Logger.PrintToUser("l1orch usage metrics will no longer be collected")
		return app.Conf.SetConfigValue(constants.ConfigMetricsEnabledKey, false)
	default:
		return errors.New("Invalid metrics argument '" + args[0] + "'")
	}
}
