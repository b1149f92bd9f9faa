// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package application

import (
	"path/filepath"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/l1-orchestrator/pkg/checkpoint"
	"github.com/ava-labs/l1-orchestrator/pkg/config"
	"github.com/ava-labs/l1-orchestrator/pkg/constants"
	"github.com/ava-labs/l1-orchestrator/pkg/prompts"
	"github.com/spf13/afero"
)

// App carries the process wide state shared by all commands
type App struct {
	Log     logging.Logger
	baseDir string
	Conf    *config.Config
	Prompt  prompts.Prompter
	Fs      afero.Fs
}

func New() *App {
	return &App{}
}

func (app *App) Setup(baseDir string, log logging.Logger, conf *config.Config, prompt prompts.Prompter, fs afero.Fs) {
	app.baseDir = baseDir
	app.Log = log
	app.Conf = conf
	app.Prompt = prompt
	app.Fs = fs
}

func (app *App) GetBaseDir() string {
	return app.baseDir
}

func (app *App) GetLogDir() string {
	return filepath.Join(app.baseDir, constants.LogDir)
}

func (app *App) GetSagasDir() string {
	return filepath.Join(app.baseDir, constants.SagasDir)
}

func (app *App) GetConfigPath() string {
	return filepath.Join(app.baseDir, constants.ConfigFileName)
}

func (app *App) GetEnvFilePath() string {
	return filepath.Join(app.baseDir, constants.EnvFileName)
}

// OpenCheckpointStore opens the saga store selected by [settings]. File and
// bolt stores live under the base dir
func (app *App) OpenCheckpointStore(settings config.Settings) (checkpoint.Store, error) {
	return checkpoint.Open(checkpoint.Config{
		Backend: settings.CheckpointBackend,
		BaseDir: app.baseDir,
		DSN:     settings.CheckpointDSN,
	}, app.Fs)
}
