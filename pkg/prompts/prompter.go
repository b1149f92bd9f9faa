// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package prompts

import (
	"strconv"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/manifoldco/promptui"
)

const (
	Yes = "Yes"
	No  = "No"
)

type Prompter interface {
	CaptureYesNo(promptStr string) (bool, error)
	CaptureNoYes(promptStr string) (bool, error)
	CaptureList(promptStr string, options []string) (string, error)
	CaptureID(promptStr string) (ids.ID, error)
	CaptureNodeID(promptStr string) (ids.NodeID, error)
	CaptureWeight(promptStr string) (uint64, error)
	CaptureString(promptStr string) (string, error)
}

type realPrompter struct{}

// overridable in tests
var promptUIRunner = func(prompt promptui.Prompt) (string, error) {
	return prompt.Run()
}

// overridable in tests
var promptUISelectRunner = func(prompt promptui.Select) (int, string, error) {
	return prompt.Run()
}

// NewPrompter returns a Prompter backed by promptui
func NewPrompter() Prompter {
	return &realPrompter{}
}

func yesNoBase(promptStr string, orderedOptions []string) (bool, error) {
	prompt := promptui.Select{
		Label: promptStr,
		Items: orderedOptions,
	}
	_, decision, err := promptUISelectRunner(prompt)
	if err != nil {
		return false, err
	}
	return decision == Yes, nil
}

func (*realPrompter) CaptureYesNo(promptStr string) (bool, error) {
	return yesNoBase(promptStr, []string{Yes, No})
}

func (*realPrompter) CaptureNoYes(promptStr string) (bool, error) {
	return yesNoBase(promptStr, []string{No, Yes})
}

func (*realPrompter) CaptureList(promptStr string, options []string) (string, error) {
	prompt := promptui.Select{
		Label: promptStr,
		Items: options,
	}
	_, listDecision, err := promptUISelectRunner(prompt)
	if err != nil {
		return "", err
	}
	return listDecision, nil
}

func (*realPrompter) CaptureID(promptStr string) (ids.ID, error) {
	prompt := promptui.Prompt{
		Label:    promptStr,
		Validate: validateID,
	}
	idStr, err := promptUIRunner(prompt)
	if err != nil {
		return ids.Empty, err
	}
	return ids.FromString(idStr)
}

func (*realPrompter) CaptureNodeID(promptStr string) (ids.NodeID, error) {
	prompt := promptui.Prompt{
		Label:    promptStr,
		Validate: validateNodeID,
	}
	nodeIDStr, err := promptUIRunner(prompt)
	if err != nil {
		return ids.EmptyNodeID, err
	}
	return ids.NodeIDFromString(nodeIDStr)
}

func (*realPrompter) CaptureWeight(promptStr string) (uint64, error) {
	prompt := promptui.Prompt{
		Label:    promptStr,
		Validate: validateWeight,
	}
	weightStr, err := promptUIRunner(prompt)
	if err != nil {
		return 0, err
	}
	return strconv.ParseUint(weightStr, 10, 64)
}

func (*realPrompter) CaptureString(promptStr string) (string, error) {
	prompt := promptui.Prompt{
		Label:    promptStr,
		Validate: validateNonEmpty,
	}
	return promptUIRunner(prompt)
}
