// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package sagacmd

import (
	"context"
	"fmt"

	"github.com/ava-labs/l1-orchestrator/cmd/cmdutils"
	"github.com/ava-labs/l1-orchestrator/cmd/flags"
	"github.com/ava-labs/l1-orchestrator/pkg/cobrautils"
	"github.com/ava-labs/l1-orchestrator/pkg/saga"
	"github.com/ava-labs/l1-orchestrator/pkg/ux"
	"github.com/ava-labs/libevm/common"
	"github.com/spf13/cobra"
)

var force bool

// l1orch saga discard
func newDiscardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "discard sagaID",
		Short: "Delete the checkpoint of a validator change",
		Long: `The saga discard command deletes the checkpoint of a validator change.
Transactions already accepted on the L1 or on the P-Chain are not reverted.`,
		RunE: discard,
		Args: cobrautils.ExactArgs(1),
	}
	cmd.Flags().BoolVarP(&force, "force", "f", false, "don't ask for confirmation")
	flags.AddSettingsFlagsToCmd(cmd)
	return cmd
}

func discard(_ *cobra.Command, args []string) error {
	id := args[0]
	o, closeFn, err := cmdutils.NewOrchestrator(app, common.Address{})
	if err != nil {
		return err
	}
	defer closeFn()
	ctx := context.Background()
	state, err := o.Manager.Load(ctx, id)
	if err != nil {
		return err
	}
	if force && state.Phase != saga.PhaseCompleted {
		ux.Logger.YellowWarningToUser("Discarding saga %s while %s", id, state.Phase)
	}
	if !force && state.Phase != saga.PhaseCompleted {
		accept, err := app.Prompt.CaptureNoYes(fmt.Sprintf("Saga %s is %s, discarding it loses its progress. Discard anyway?", id, state.Phase))
		if err != nil {
			return err
		}
		if !accept {
			return nil
		}
	}
	if err := o.Manager.Discard(ctx, id); err != nil {
		return err
	}
	ux.Logger.GreenCheckmarkToUser("Saga %s discarded", id)
	return nil
}
