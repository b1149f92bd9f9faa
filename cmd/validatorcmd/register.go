// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package validatorcmd

import (
	"fmt"
	"math"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/formatting/address"
	"github.com/ava-labs/avalanchego/utils/units"
	"github.com/ava-labs/l1-orchestrator/cmd/cmdutils"
	"github.com/ava-labs/l1-orchestrator/cmd/flags"
	"github.com/ava-labs/l1-orchestrator/pkg/cobrautils"
	"github.com/ava-labs/l1-orchestrator/pkg/prompts"
	"github.com/ava-labs/l1-orchestrator/pkg/saga"
	"github.com/ava-labs/l1-orchestrator/pkg/ux"
	sdkutils "github.com/ava-labs/l1-orchestrator/sdk/utils"
	"github.com/ava-labs/l1-orchestrator/sdk/validatormanager"
	"github.com/ava-labs/libevm/common"
	"github.com/spf13/cobra"
)

const (
	blsPublicKeyFlag          = "bls-public-key"
	blsProofOfPossessionFlag  = "bls-proof-of-possession"
	balanceFlag               = "balance"
	remainingBalanceOwnerFlag = "remaining-balance-owner"
	disableOwnerFlag          = "disable-owner"
)

type registerFlags struct {
	commonFlags
	blsPublicKey           string
	blsProofOfPossession   string
	balanceAVAX            float64
	remainingBalanceOwners []string
	disableOwners          []string
}

var registerFlagValues registerFlags

// l1orch validator register
func newRegisterCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new L1 validator",
		Long: `The validator register command adds a node as a validator of the L1.

It initiates the registration on the validator manager, gets the L1 warp message
signed, registers the validator on the P-Chain funding it with the given balance,
gets the P-Chain acknowledgement signed and completes the registration on the
validator manager.`,
		RunE:    register,
		Args:    cobrautils.ExactArgs(0),
		PreRunE: checkRawTxFlags,
	}
	registerFlagValues.addToCmd(cmd)
	cmd.Flags().StringVar(&registerFlagValues.blsPublicKey, blsPublicKeyFlag, "", "BLS public key of the node, hex encoded")
	cmd.Flags().StringVar(&registerFlagValues.blsProofOfPossession, blsProofOfPossessionFlag, "", "BLS proof of possession of the node, hex encoded")
	cmd.Flags().Float64Var(&registerFlagValues.balanceAVAX, balanceFlag, 0.1, "P-Chain balance of the validator, in AVAX, paying its continuous fee")
	cmd.Flags().StringSliceVar(&registerFlagValues.remainingBalanceOwners, remainingBalanceOwnerFlag, nil, "P-Chain addresses receiving the leftover balance when the validator is removed")
	cmd.Flags().StringSliceVar(&registerFlagValues.disableOwners, disableOwnerFlag, nil, "P-Chain addresses able to disable the validator")
	flags.AddYesFlagToCmd(cmd, &registerFlagValues.yes)
	flags.AddSettingsFlagsToCmd(cmd)
	return cmd
}

// parsePChainOwner converts P-Chain addresses into the owner struct of the
// validator manager, with a threshold of 1
func parsePChainOwner(flagName string, addrs []string) (validatormanager.PChainOwner, error) {
	if len(addrs) == 0 {
		return validatormanager.PChainOwner{}, fmt.Errorf("--%s is required", flagName)
	}
	addrIDs, err := address.ParseToIDs(addrs)
	if err != nil {
		return validatormanager.PChainOwner{}, fmt.Errorf("failure parsing --%s: %w", flagName, err)
	}
	owner := validatormanager.PChainOwner{Threshold: 1}
	for _, addrID := range sdkutils.Unique(addrIDs) {
		owner.Addresses = append(owner.Addresses, common.Address(addrID))
	}
	return owner, nil
}

// avaxToNAVAX rounds to the closest nAVAX, as 0.3 AVAX is not exact in binary
func avaxToNAVAX(avax float64) uint64 {
	return uint64(math.Round(avax * float64(units.Avax)))
}

func (f *registerFlags) request() (saga.RegisterRequest, error) {
	req := saga.RegisterRequest{Weight: f.weight}
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
	if req.NodeID, err = ids.NodeIDFromString(f.nodeID); err != nil {
		return req, fmt.Errorf("invalid --%s: %w", nodeIDFlag, err)
	}
	if f.weight == 0 {
		return req, fmt.Errorf("--%s is required and must be positive", weightFlag)
	}
	if req.BLSPublicKey, err = decodeHex(f.blsPublicKey); err != nil {
		return req, fmt.Errorf("invalid --%s: %w", blsPublicKeyFlag, err)
	}
	if req.ProofOfPossession, err = decodeHex(f.blsProofOfPossession); err != nil {
		return req, fmt.Errorf("invalid --%s: %w", blsProofOfPossessionFlag, err)
	}
	if f.balanceAVAX <= 0 {
		return req, fmt.Errorf("--%s must be positive", balanceFlag)
	}
	req.Balance = avaxToNAVAX(f.balanceAVAX)
	if req.RemainingBalanceOwner, err = parsePChainOwner(remainingBalanceOwnerFlag, f.remainingBalanceOwners); err != nil {
		return req, err
	}
	if req.DisableOwner, err = parsePChainOwner(disableOwnerFlag, f.disableOwners); err != nil {
		return req, err
	}
	req.InitiateTxHash, err = f.initiateHash()
	return req, err
}

func register(_ *cobra.Command, _ []string) error {
	f := &registerFlagValues
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

	plan, _, _, err := o.Manager.PlanRegistration(ctx, req)
	if err != nil {
		return &saga.StepError{Kind: saga.ClassifyError(err), Err: err}
	}
	ux.Logger.PrintToUser("Registering %s with weight %s, L1 total weight %s",
		plan.NodeID,
		ux.ConvertToStringWithThousandSeparator(plan.Weight),
		ux.ConvertToStringWithThousandSeparator(plan.TotalWeight),
	)
	if f.generateRawTx {
		tx, err := o.ValidatorManager.InitiateValidatorRegistrationTx(ctx, validatormanager.RegistrationRequest{
			NodeID:                plan.NodeID,
			BLSPublicKey:          plan.BLSPublicKey,
			RemainingBalanceOwner: plan.RemainingBalanceOwner,
			DisableOwner:          plan.DisableOwner,
			Weight:                plan.Weight,
		}, true)
		if err != nil {
			return err
		}
		if err := printRawTx("validator registration", tx); err != nil {
			return err
		}
		ux.Logger.PrintToUser("Once issued, continue with --%s <hash>", initiateTxHashFlag)
		return nil
	}
	if err := prompts.ConfirmOnChainWrite(app.Prompt, f.yes, fmt.Sprintf(
		"Register %s with weight %d and a balance of %s nAVAX",
		plan.NodeID,
		plan.Weight,
		ux.ConvertToStringWithThousandSeparator(plan.Balance),
	)); err != nil {
		return cancelled(err)
	}
	state, err := o.Manager.StartRegistration(ctx, req)
	if state != nil {
		app.RecordLastSaga(state.ID)
	}
	cmdutils.PrintOutcome(state)
	return err
}
