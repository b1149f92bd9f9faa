// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package flags

import (
	"fmt"

	"github.com/ava-labs/libevm/common"
	"github.com/spf13/cobra"
)

const SignerFlag = "signer"

func AddSignerFlagToCmd(cmd *cobra.Command, signer *string, usage string) {
	cmd.Flags().StringVar(signer, SignerFlag, "", usage)
}

// SignerAddress parses the --signer value. An empty value is the zero address
func SignerAddress(signer string) (common.Address, error) {
	if signer == "" {
		return common.Address{}, nil
	}
	if !common.IsHexAddress(signer) {
		return common.Address{}, fmt.Errorf("invalid --%s %q", SignerFlag, signer)
	}
	return common.HexToAddress(signer), nil
}
