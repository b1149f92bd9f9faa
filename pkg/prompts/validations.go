// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package prompts

import (
	"errors"
	"strconv"
	"strings"

	"github.com/ava-labs/avalanchego/ids"
)

func validateID(input string) error {
	_, err := ids.FromString(input)
	return err
}

func validateNodeID(input string) error {
	_, err := ids.NodeIDFromString(input)
	return err
}

func validateWeight(input string) error {
	val, err := strconv.ParseUint(input, 10, 64)
	if err != nil {
		return err
	}
	if val == 0 {
		return errors.New("weight must be positive")
	}
	return nil
}

func validateNonEmpty(input string) error {
	if strings.TrimSpace(input) == "" {
		return errors.New("string cannot be empty")
	}
	return nil
}
