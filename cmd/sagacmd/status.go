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

var output string

// l1orch saga status
func newStatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [sagaID]",
		Short: "Show the progress of a validator change",
		Long: `The saga status command shows every step of a validator change, its
artifacts and the error that halted it, if any. Without a saga ID, the last
change started from this machine is shown.`,
		RunE: status,
		Args: cobrautils.MaximumNArgs(1),
	}
	cmd.Flags().StringVarP(&output, "output", "o", cmdutils.OutputTable, "output format: table, json or yaml")
	flags.AddSettingsFlagsToCmd(cmd)
	return cmd
}

func status(_ *cobra.Command, args []string) error {
	id, err := sagaID(args)
	if err != nil {
		return err
	}
	o, closeFn, err := cmdutils.NewOrchestrator(app, common.Address{})
	if err != nil {
		return err
	}
	defer closeFn()
	state, err := o.Manager.Load(context.Background(), id)
	if err != nil {
		return err
	}
	return cmdutils.WriteState(ux.Logger.Writer, state, output, time.Now())
}
