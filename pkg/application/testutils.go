// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package application

import (
	"testing"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/l1-orchestrator/pkg/config"
	"github.com/spf13/afero"
)

func NewTestApp(t *testing.T) *App {
	return &App{
		baseDir: t.TempDir(),
		Log:     logging.NoLog{},
		Conf:    config.New(),
		Fs:      afero.NewMemMapFs(),
	}
}
