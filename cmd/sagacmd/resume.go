// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package sagacmd

import (
	"github.com/ava-labs/l1-orchestrator/cmd/flags"
	"github.com/ava-labs/l1-orchestrator/pkg/cobrautils"
	"github.com/spf13/cobra"
)

// l1orch saga resume
func newResumeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resume [sagaID]",
		Short: "Continue a halted validator change",
		Long: `The saga resume command continues a validator change at its first step that
did not succeed. Without a saga ID, the last change started from this machine
is resumed.`,
		RunE: resume,
		Args: cobrautils.MaximumNArgs(1),
	}
	flags.AddSignerFlagToCmd(cmd, &signer, signerUsage)
	flags.AddYesFlagToCmd(cmd, &yes)
	flags.AddSettingsFlagsToCmd(cmd)
	return cmd
}

func resume(_ *cobra.Command, args []string) error {
	return runSaga(args, "")
}
