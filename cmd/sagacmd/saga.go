// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package sagacmd

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/ava-labs/l1-orchestrator/pkg/application"
	"github.com/ava-labs/l1-orchestrator/pkg/cobrautils"
	"github.com/spf13/cobra"
)

var (
	app *application.App

	errNoSagaID = errors.New("no saga ID given and no saga was started from this machine")
)

// l1orch saga
func NewCmd(injectedApp *application.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "saga",
		Short: "Inspect and continue validator changes",
		Long: `The saga command suite lists the checkpointed validator changes, shows
their progress and continues the ones that were halted by a failure.`,
		RunE: cobrautils.CommandSuiteUsage,
	}
	app = injectedApp
	// saga list
	cmd.AddCommand(newListCmd())
	// saga status
	cmd.AddCommand(newStatusCmd())
	// saga retry
	cmd.AddCommand(newRetryCmd())
	// saga resume
	cmd.AddCommand(newResumeCmd())
	// saga discard
	cmd.AddCommand(newDiscardCmd())
	return cmd
}

// sagaID returns the saga id argument, defaulting to the last started saga
func sagaID(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	if id := app.LastSagaID(); id != "" {
		return id, nil
	}
	return "", errNoSagaID
}

func interruptibleContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}
