// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package cobrautils

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ava-labs/l1-orchestrator/pkg/saga"
	"github.com/ava-labs/l1-orchestrator/pkg/utils"
	"github.com/ava-labs/l1-orchestrator/pkg/ux"
	"github.com/spf13/cobra"
)

type UsageError struct {
	cmd *cobra.Command
	err error
}

func (e UsageError) Error() string {
	return fmt.Sprintf("Usage error: %s", e.err)
}

func NewUsageError(cmd *cobra.Command, err error) UsageError {
	return UsageError{
		cmd: cmd,
		err: err,
	}
}

func ExactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		err := cobra.ExactArgs(n)(cmd, args)
		if err != nil {
			_ = cmd.Help()
			err = NewUsageError(cmd, err)
		}
		return err
	}
}

func MaximumNArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		err := cobra.MaximumNArgs(n)(cmd, args)
		if err != nil {
			_ = cmd.Help()
			err = NewUsageError(cmd, err)
		}
		return err
	}
}

func MinimumNArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		err := cobra.MinimumNArgs(n)(cmd, args)
		if err != nil {
			_ = cmd.Help()
			err = NewUsageError(cmd, err)
		}
		return err
	}
}

func RangeArgs(min int, max int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		err := cobra.RangeArgs(min, max)(cmd, args)
		if err != nil {
			_ = cmd.Help()
			err = NewUsageError(cmd, err)
		}
		return err
	}
}

func HandleErrors(err error) {
	if err != nil {
		usageErr, ok := err.(UsageError)
		if ok {
			usageErr.cmd.Println(usageErr.cmd.UsageString())
			usageErr.cmd.Println()
			usageErr.cmd.Println(usageErr)
		} else {
			ux.Logger.PrintToUser("%s", ErrorMessage(err))
		}
		os.Exit(1)
	}
}

// ErrorMessage renders [err] for the user, naming the failed saga step and
// whether repeating it may help
func ErrorMessage(err error) string {
	var stepErr *saga.StepError
	if !errors.As(err, &stepErr) {
		return fmt.Sprintf("Error: %s", utils.HumanizeError(err))
	}
	cause := utils.HumanizeError(stepErr.Err)
	if stepErr.Step == "" {
		return fmt.Sprintf("Error (%s): %s", stepErr.Kind, cause)
	}
	msg := fmt.Sprintf("Error at step %s (%s): %s", stepErr.Step, stepErr.Kind, cause)
	if stepErr.Retryable() {
		msg += "\nThe failure may be transient, retry with `l1orch saga resume`"
	}
	return msg
}

func CommandSuiteUsage(cmd *cobra.Command, args []string) error {
	if len(args) != 0 {
		return NewUsageError(
			cmd,
			fmt.Errorf("invalid subcommand %q", strings.Join(args, " ")),
		)
	}
	err := cmd.Help()
	if err != nil {
		fmt.Println(err)
	}
	return nil
}

func ConfigureRootCmd(cmd *cobra.Command) {
	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return NewUsageError(cmd, err)
	})
}
