// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package validatorcmd

import (
	"github.com/ava-labs/l1-orchestrator/pkg/prompts"
)

const (
	byNodeIDOption       = "Node ID"
	byValidationIDOption = "Validation ID"
)

// promptMissing asks for the values shared by every validator change that
// were not given as flags
func (f *commonFlags) promptMissing(prompter prompts.Prompter) error {
	if f.subnetID == "" {
		subnetID, err := prompter.CaptureID("What is the subnet ID of the L1?")
		if err != nil {
			return err
		}
		f.subnetID = subnetID.String()
	}
	if f.weight == 0 {
		weight, err := prompter.CaptureWeight("What is the new weight of the validator?")
		if err != nil {
			return err
		}
		f.weight = weight
	}
	return nil
}

func (f *changeWeightFlags) promptMissing(prompter prompts.Prompter) error {
	if err := f.commonFlags.promptMissing(prompter); err != nil {
		return err
	}
	if f.nodeID != "" || f.validationID != "" {
		return nil
	}
	option, err := prompter.CaptureList(
		"How do you want to identify the validator?",
		[]string{byNodeIDOption, byValidationIDOption},
	)
	if err != nil {
		return err
	}
	if option == byValidationIDOption {
		validationID, err := prompter.CaptureID("What is the validation ID of the validator?")
		if err != nil {
			return err
		}
		f.validationID = validationID.String()
		return nil
	}
	nodeID, err := prompter.CaptureNodeID("What is the node ID of the validator?")
	if err != nil {
		return err
	}
	f.nodeID = nodeID.String()
	return nil
}

func (f *registerFlags) promptMissing(prompter prompts.Prompter) error {
	if err := f.commonFlags.promptMissing(prompter); err != nil {
		return err
	}
	if f.nodeID == "" {
		nodeID, err := prompter.CaptureNodeID("What is the node ID of the new validator?")
		if err != nil {
			return err
		}
		f.nodeID = nodeID.String()
	}
	var err error
	if f.blsPublicKey == "" {
		if f.blsPublicKey, err = prompter.CaptureString("What is the BLS public key of the node?"); err != nil {
			return err
		}
	}
	if f.blsProofOfPossession == "" {
		if f.blsProofOfPossession, err = prompter.CaptureString("What is the BLS proof of possession of the node?"); err != nil {
			return err
		}
	}
	if len(f.remainingBalanceOwners) == 0 {
		owner, err := prompter.CaptureString("Which P-Chain address receives the leftover balance when the validator is removed?")
		if err != nil {
			return err
		}
		f.remainingBalanceOwners = []string{owner}
	}
	if len(f.disableOwners) == 0 {
		owner, err := prompter.CaptureString("Which P-Chain address can disable the validator?")
		if err != nil {
			return err
		}
		f.disableOwners = []string{owner}
	}
	return nil
}
