// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package validatorcmd

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/l1-orchestrator/cmd/cmdutils"
	"github.com/ava-labs/l1-orchestrator/cmd/flags"
	"github.com/ava-labs/l1-orchestrator/pkg/cobrautils"
	"github.com/ava-labs/l1-orchestrator/pkg/prompts"
	"github.com/ava-labs/l1-orchestrator/pkg/saga"
	"github.com/ava-labs/l1-orchestrator/pkg/ux"
	"github.com/spf13/cobra"
)

const validationIDFlag = "validation-id"

type changeWeightFlags struct {
	commonFlags
	validationID string
}

var changeWeightFlagValues changeWeightFlags

// l1orch validator change-weight
func newChangeWeightCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "change-weight",
		Short: "Change the weight of an L1 validator",
		Long: `The validator change-weight command sets the weight of an active L1 validator.

It initiates the change on the validator manager, gets the L1 warp message signed,
submits it to the P-Chain, gets the P-Chain acknowledgement signed and completes
the change on the validator manager. The change is rejected upfront if it moves
more than the configured maximum share of the L1 total weight.`,
		RunE:    changeWeight,
		Args:    cobrautils.ExactArgs(0),
		PreRunE: checkRawTxFlags,
	}
	changeWeightFlagValues.addToCmd(cmd)
	cmd.Flags().StringVar(&changeWeightFlagValues.validationID, validationIDFlag, "", "validation ID of the validator (alternative to --node-id)")
	flags.AddYesFlagToCmd(cmd, &changeWeightFlagValues.yes)
	flags.AddSettingsFlagsToCmd(cmd)
	return cmd
}

func checkRawTxFlags(cmd *cobra.Command, _ []string) error {
	return flags.CheckMutuallyExclusive(cmd, generateRawTxFlag, initiateTxHashFlag)
}

func (f *changeWeightFlags) request() (saga.ChangeWeightRequest, error) {
	req := saga.ChangeWeightRequest{Weight: f.weight}
	var err error
	if f.subnetID == "" {
		return req, fmt.Errorf("--%s is required", subnetIDFlag)
	}
	if req.SubnetID, err = ids.FromString(f.subnetID); err != nil {
		return req, fmt.Errorf("invalid --%s: %w", subnetIDFlag, err)
	}
	if f.signingSubnetID != "" {
		if req.SigningSubnetID, err = ids.FromString(f.signingSubnetID); err != nil {
			return req, fmt.Errorf("invalid --%s: %w", signingSubnetIDFlag, err)
		}
	}
	if f.nodeID != "" {
		if req.NodeID, err = ids.NodeIDFromString(f.nodeID); err != nil {
			return req, fmt.Errorf("invalid --%s: %w", nodeIDFlag, err)
		}
	}
	if f.validationID != "" {
		if req.ValidationID, err = ids.FromString(f.validationID); err != nil {
			return req, fmt.Errorf("invalid --%s: %w", validationIDFlag, err)
		}
	}
	if req.NodeID == ids.EmptyNodeID && req.ValidationID == ids.Empty {
		return req, fmt.Errorf("one of --%s or --%s is required", nodeIDFlag, validationIDFlag)
	}
	if f.weight == 0 {
		return req, fmt.Errorf("--%s is required and must be positive", weightFlag)
	}
	req.InitiateTxHash, err = f.initiateHash()
	return req, err
}

func changeWeight(_ *cobra.Command, _ []string) error {
	f := &changeWeightFlagValues
	// --yes runs never block on input
	if !f.yes {
		if err := f.promptMissing(app.Prompt); err != nil {
			return cancelled(prompts.Interrupted(err))
		}
	}
	req, err := f.request()
	if err != nil {
		return err
	}
	signer, err := f.signerAddress()
	if err != nil {
		return err
	}
	o, closeFn, err := cmdutils.NewOrchestrator(app, signer)
	if err != nil {
		return err
	}
	defer closeFn()
	req.NetworkID = o.NetworkID

	ctx, cancel := interruptibleContext()
	defer cancel()

	plan, _, _, err := o.Manager.PlanChangeWeight(ctx, req)
	if err != nil {
		return &saga.StepError{Kind: saga.ClassifyError(err), Err: err}
	}
	ux.Logger.PrintToUser("Validator %s (validation %s)", plan.NodeID, plan.ValidationID)
	ux.Logger.PrintToUser("Weight %s -> %s, L1 total weight %s",
		ux.ConvertToStringWithThousandSeparator(plan.CurrentWeight),
		ux.ConvertToStringWithThousandSeparator(plan.Weight),
		ux.ConvertToStringWithThousandSeparator(plan.TotalWeight),
	)
	if f.generateRawTx {
		tx, err := o.ValidatorManager.InitiateValidatorWeightUpdateTx(ctx, plan.ValidationID, plan.Weight, true)
		if err != nil {
			return err
		}
		if err := printRawTx("validator weight update", tx); err != nil {
			return err
		}
		ux.Logger.PrintToUser("Once issued, continue with --%s <hash>", initiateTxHashFlag)
		return nil
	}
	if err := prompts.ConfirmOnChainWrite(app.Prompt, f.yes, fmt.Sprintf("Change the weight of %s to %d", plan.NodeID, plan.Weight)); err != nil {
		return cancelled(err)
	}
	// preflight already resolved it
	req.ValidationID = plan.ValidationID
	state, err := o.Manager.StartChangeWeight(ctx, req)
	if state != nil {
		app.RecordLastSaga(state.ID)
	}
	cmdutils.PrintOutcome(state)
	return err
}
