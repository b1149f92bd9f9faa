// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package prompts

import (
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
)

var ErrCancelled = errors.New("operation cancelled by the user")

// ConfirmOnChainWrite asks the user to accept [description] before any tx is
// issued. It is skipped when [skip] is set, as with --yes
func ConfirmOnChainWrite(prompter Prompter, skip bool, description string) error {
	if skip {
		return nil
	}
	accept, err := prompter.CaptureYesNo(fmt.Sprintf("%s. Proceed?", description))
	if err != nil {
		return Interrupted(err)
	}
	if !accept {
		return ErrCancelled
	}
	return nil
}

// Interrupted maps a prompt aborted by the user to ErrCancelled
func Interrupted(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrAbort) {
		return ErrCancelled
	}
	return err
}
