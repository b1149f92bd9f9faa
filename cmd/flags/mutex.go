// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package flags

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func EnsureMutuallyExclusive(flags []bool) bool {
	set := 0
	for _, f := range flags {
		if !f {
			continue
		}
		set++
		if set > 1 {
			return false
		}
	}
	return true
}

// CheckMutuallyExclusive fails if more than one of the [names] flags was set
func CheckMutuallyExclusive(cmd *cobra.Command, names ...string) error {
	changed := make([]bool, 0, len(names))
	for _, name := range names {
		changed = append(changed, cmd.Flags().Changed(name))
	}
	if !EnsureMutuallyExclusive(changed) {
		return fmt.Errorf("flags --%s are mutually exclusive", strings.Join(names, ", --"))
	}
	return nil
}
