// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package cmdutils

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/l1-orchestrator/pkg/saga"
	"github.com/ava-labs/l1-orchestrator/pkg/ux"
	"github.com/ava-labs/libevm/common"
	"github.com/jedib0t/go-pretty/v6/table"
	"gopkg.in/yaml.v3"
)

const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

var stepDescriptions = map[saga.StepKey]string{
	saga.StepInitiateChangeWeight:          "Initiate validator weight change on the L1",
	saga.StepInitiateValidatorRegistration: "Initiate validator registration on the L1",
	saga.StepSignMessage:                   "Aggregate signatures for the L1 warp message",
	saga.StepSubmitPChainTx:                "Submit the P-Chain transaction",
	saga.StepPChainSignature:               "Aggregate signatures for the P-Chain warp message",
	saga.StepCompleteChangeWeight:          "Complete validator weight change on the L1",
	saga.StepCompleteValidatorRegistration: "Complete validator registration on the L1",
}

func StepDescription(key saga.StepKey) string {
	if description, ok := stepDescriptions[key]; ok {
		return description
	}
	return string(key)
}

// WriteState renders [state] to [w] in the given [output] format
func WriteState(w io.Writer, state *saga.State, output string, now time.Time) error {
	switch output {
	case OutputJSON:
		bs, err := json.MarshalIndent(state, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(bs))
		return err
	case OutputYAML:
		return writeYAML(w, state)
	case OutputTable, "":
		_, err := fmt.Fprintln(w, StateTable(state, now).Render())
		return err
	default:
		return fmt.Errorf("unsupported output format %q, expected %s, %s or %s", output, OutputTable, OutputJSON, OutputYAML)
	}
}

// writeYAML goes through the json encoding so that hex bytes, ids and hashes
// keep their text form
func writeYAML(w io.Writer, state *saga.State) error {
	bs, err := json.Marshal(state)
	if err != nil {
		return err
	}
	var doc interface{}
	if err := yaml.Unmarshal(bs, &doc); err != nil {
		return err
	}
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return err
	}
	return encoder.Close()
}

func StateTable(state *saga.State, now time.Time) table.Writer {
	t := ux.DefaultTable(fmt.Sprintf("Saga %s", state.ID), nil)
	t.AppendRows([]table.Row{
		{"Kind", state.Kind},
		{"Phase", state.Phase},
		{"Subnet ID", state.Request.SubnetID},
		{"Node ID", state.Request.NodeID},
		{"Validation ID", orDash(state.Request.ValidationID != ids.Empty, state.Request.ValidationID.String())},
		{"Weight", ux.ConvertToStringWithThousandSeparator(state.Request.Weight)},
		{"Owner", state.Owner},
		{"Signer", state.Signer},
		{"Initiate Tx", orDash(state.Artifacts.InitiateTxHash != (common.Hash{}), state.Artifacts.InitiateTxHash.Hex())},
		{"P-Chain Tx", orDash(state.Artifacts.PChainTxID != ids.Empty, state.Artifacts.PChainTxID.String())},
		{"Complete Tx", orDash(state.Artifacts.CompleteTxHash != (common.Hash{}), state.Artifacts.CompleteTxHash.Hex())},
		{"Updated", ux.FormatAge(state.UpdatedAt, now)},
	})
	steps := make([]string, 0, len(state.Steps))
	for i, step := range state.Steps {
		line := fmt.Sprintf("%d. %s: %s", i+1, step.Key, step.Status)
		if step.Error != "" {
			line += fmt.Sprintf(" (%s) %s", step.ErrorKind, step.Error)
		}
		steps = append(steps, line)
	}
	t.AppendRow(table.Row{"Steps", strings.Join(steps, "\n")})
	return t
}

func ListTable(states []*saga.State, now time.Time) table.Writer {
	t := ux.DefaultTable("Sagas", table.Row{"ID", "Kind", "Node ID", "Weight", "Phase", "Next Step", "Updated"})
	for _, state := range states {
		next := "-"
		if state.Phase != saga.PhaseCompleted && state.Phase != saga.PhaseInvalidated {
			next = string(state.NextStep())
		}
		t.AppendRow(table.Row{
			state.ID,
			state.Kind,
			state.Request.NodeID,
			ux.ConvertToStringWithThousandSeparator(state.Request.Weight),
			state.Phase,
			next,
			ux.FormatAge(state.UpdatedAt, now),
		})
	}
	return t
}

func orDash(ok bool, s string) string {
	if !ok {
		return "-"
	}
	return s
}

// PrintOutcome prints the result of a saga run and how to continue it
func PrintOutcome(state *saga.State) {
	if state == nil {
		return
	}
	ux.Logger.PrintLineSeparator()
	switch state.Phase {
	case saga.PhaseCompleted:
		ux.Logger.GreenCheckmarkToUser("Saga %s completed, tx %s", state.ID, state.Artifacts.CompleteTxHash.Hex())
	case saga.PhaseInvalidated:
		ux.Logger.RedXToUser("Saga %s was invalidated, start a new one", state.ID)
	default:
		if failed, ok := state.FailedStep(); ok {
			ux.Logger.RedXToUser("Saga %s halted at step %s", state.ID, failed.Key)
		}
		ux.Logger.PrintToUser("Inspect it with `l1orch saga status %s` and continue it with `l1orch saga resume %s`", state.ID, state.ID)
	}
}
