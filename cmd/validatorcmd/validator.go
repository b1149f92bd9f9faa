// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package validatorcmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ava-labs/l1-orchestrator/cmd/flags"
	"github.com/ava-labs/l1-orchestrator/pkg/application"
	"github.com/ava-labs/l1-orchestrator/pkg/cobrautils"
	"github.com/ava-labs/l1-orchestrator/pkg/prompts"
	"github.com/ava-labs/l1-orchestrator/pkg/ux"
	"github.com/ava-labs/l1-orchestrator/sdk/evm"
	"github.com/ava-labs/libevm/common"
	"github.com/ava-labs/libevm/common/hexutil"
	"github.com/ava-labs/libevm/core/types"
	"github.com/spf13/cobra"
)

var app *application.App

const (
	subnetIDFlag        = "subnet-id"
	signingSubnetIDFlag = "signing-subnet-id"
	nodeIDFlag          = "node-id"
	weightFlag          = "weight"
	initiateTxHashFlag  = "initiate-tx-hash"
	generateRawTxFlag   = "generate-raw-tx"
)

// l1orch validator
func NewCmd(injectedApp *application.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validator",
		Short: "Change the weight of L1 validators or register new ones",
		Long: `The validator command suite drives the L1 validator manager, the signature
aggregator and the P-Chain through every step of a validator change.

Each change runs as a saga whose progress is checkpointed after every step.
A failed change can be inspected and continued with the saga commands.`,
		RunE: cobrautils.CommandSuiteUsage,
	}
	app = injectedApp
	// validator change-weight
	cmd.AddCommand(newChangeWeightCmd())
	// validator register
	cmd.AddCommand(newRegisterCmd())
	return cmd
}

// commonFlags are shared by the change-weight and register commands
type commonFlags struct {
	subnetID        string
	signingSubnetID string
	nodeID          string
	weight          uint64
	initiateTxHash  string
	generateRawTx   bool
	signer          string
	yes             bool
}

func (f *commonFlags) addToCmd(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.subnetID, subnetIDFlag, "", "subnet ID of the L1")
	cmd.Flags().StringVar(&f.signingSubnetID, signingSubnetIDFlag, "", "subnet ID whose validators sign the L1 messages (defaults to --subnet-id)")
	cmd.Flags().StringVar(&f.nodeID, nodeIDFlag, "", "node ID of the validator")
	cmd.Flags().Uint64Var(&f.weight, weightFlag, 0, "new weight of the validator")
	cmd.Flags().StringVar(&f.initiateTxHash, initiateTxHashFlag, "", "hash of an initiate tx already issued, eg by a multisig owner")
	cmd.Flags().BoolVar(&f.generateRawTx, generateRawTxFlag, false, "print the unsigned initiate tx instead of sending it")
	flags.AddSignerFlagToCmd(cmd, &f.signer, "address the raw tx is generated for, when no EVM key is set")
}

func (f *commonFlags) initiateHash() (common.Hash, error) {
	if f.initiateTxHash == "" {
		return common.Hash{}, nil
	}
	bs, err := decodeHex(f.initiateTxHash)
	if err != nil || len(bs) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid --%s %q", initiateTxHashFlag, f.initiateTxHash)
	}
	return common.BytesToHash(bs), nil
}

func (f *commonFlags) signerAddress() (common.Address, error) {
	return flags.SignerAddress(f.signer)
}

// interruptibleContext is cancelled on SIGINT/SIGTERM. Checkpoints still get
// written, so the saga can be resumed afterwards
func interruptibleContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func printRawTx(description string, tx *types.Transaction) error {
	bs, err := json.MarshalIndent(tx, "", "  ")
	if err != nil {
		return err
	}
	dump, err := evm.TxDump(description, tx)
	if err != nil {
		return err
	}
	ux.Logger.PrintToUser("Unsigned initiate tx, to be issued by the validator manager owner:")
	ux.Logger.PrintToUser("%s", string(bs))
	ux.Logger.PrintToUser("%s", dump)
	return nil
}

// decodeHex accepts hex strings with or without the 0x prefix
func decodeHex(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		s = "0x" + s
	}
	return hexutil.Decode(s)
}

// cancelled turns a declined confirmation into a clean exit
func cancelled(err error) error {
	if errors.Is(err, prompts.ErrCancelled) {
		ux.Logger.PrintToUser("Cancelled, nothing was sent")
		return nil
	}
	return err
}
