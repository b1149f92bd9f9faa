// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package sagacmd

import (
	"errors"
	"fmt"

	"github.com/ava-labs/l1-orchestrator/cmd/cmdutils"
	"github.com/ava-labs/l1-orchestrator/cmd/flags"
	"github.com/ava-labs/l1-orchestrator/pkg/cobrautils"
	"github.com/ava-labs/l1-orchestrator/pkg/prompts"
	"github.com/ava-labs/l1-orchestrator/pkg/saga"
	"github.com/ava-labs/l1-orchestrator/pkg/ux"
	"github.com/spf13/cobra"
)

var (
	fromStep string
	signer   string
	yes      bool
)

const signerUsage = "address that started the saga, when no EVM key is set"

// l1orch saga retry
func newRetryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retry [sagaID]",
		Short: "Re-run a validator change from a given step",
		Long: `The saga retry command re-runs a validator change starting at the step given
with --from, reusing the artifacts of the previous steps. Without --from, it
starts at the first step that did not succeed.

The validator manager owner and the signer are verified again: if any of them
changed since the saga started, the saga is invalidated. Without an EVM key,
--signer must give the address the saga was started for.`,
		RunE: retry,
		Args: cobrautils.MaximumNArgs(1),
	}
	cmd.Flags().StringVar(&fromStep, "from", "", "step to start from")
	flags.AddSignerFlagToCmd(cmd, &signer, signerUsage)
	flags.AddYesFlagToCmd(cmd, &yes)
	flags.AddSettingsFlagsToCmd(cmd)
	return cmd
}

func retry(_ *cobra.Command, args []string) error {
	return runSaga(args, saga.StepKey(fromStep))
}

// runSaga continues the saga given in [args] at step [from]
func runSaga(args []string, from saga.StepKey) error {
	id, err := sagaID(args)
	if err != nil {
		return err
	}
	signerAddress, err := flags.SignerAddress(signer)
	if err != nil {
		return err
	}
	o, closeFn, err := cmdutils.NewOrchestrator(app, signerAddress)
	if err != nil {
		return err
	}
	defer closeFn()
	ctx, cancel := interruptibleContext()
	defer cancel()

	state, err := o.Manager.Load(ctx, id)
	if err != nil {
		return err
	}
	if from == "" {
		from = state.NextStep()
	}
	if _, err := state.StepIndex(from); err != nil {
		return fmt.Errorf("%w, expected one of %v", err, saga.StepKeys(state.Kind))
	}
	if err := prompts.ConfirmOnChainWrite(app.Prompt, yes, fmt.Sprintf("Continue saga %s at step %s", id, from)); err != nil {
		if errors.Is(err, prompts.ErrCancelled) {
			ux.Logger.PrintToUser("Cancelled, nothing was sent")
			return nil
		}
		return err
	}
	state, err = o.Manager.Retry(ctx, id, from)
	cmdutils.PrintOutcome(state)
	return err
}
