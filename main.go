// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package main

import "github.com/ava-labs/l1-orchestrator/cmd"

func main() {
	cmd.Execute()
}
