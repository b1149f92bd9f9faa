// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package sagacmd

import (
	"context"
	"time"

	"github.com/ava-labs/l1-orchestrator/cmd/cmdutils"
	"github.com/ava-labs/l1-orchestrator/cmd/flags"
	"github.com/ava-labs/l1-orchestrator/pkg/cobrautils"
	"github.com/ava-labs/l1-orchestrator/pkg/ux"
	"github.com/ava-labs/libevm/common"
	"github.com/spf13/cobra"
)

// l1orch saga list
func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the checkpointed validator changes",
		Long:  `The saga list command lists every checkpointed validator change, most recently updated first.`,
		RunE:  list,
		Args:  cobrautils.ExactArgs(0),
	}
	flags.AddSettingsFlagsToCmd(cmd)
	return cmd
}

func list(_ *cobra.Command, _ []string) error {
	o, closeFn, err := cmdutils.NewOrchestrator(app, common.Address{})
	if err != nil {
		return err
	}
	defer closeFn()
	states, err := o.Manager.List(context.Background())
	if err != nil {
		return err
	}
	if len(states) == 0 {
		ux.Logger.PrintToUser("No validator changes found")
		return nil
	}
	ux.Logger.PrintToUser("%s", cmdutils.ListTable(states, time.Now()).Render())
	return nil
}
