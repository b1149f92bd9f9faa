// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package application

import (
	"encoding/json"
	"path/filepath"
	"time"

	"github.com/ava-labs/l1-orchestrator/pkg/constants"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

type LastActions struct {
	LastSagaID    string
	LastSagaStart time.Time
}

func (app *App) lastActionsPath() string {
	return filepath.Join(app.GetBaseDir(), constants.LastFileName)
}

// WriteLastActionsFile is best effort: failures are only logged
func (app *App) WriteLastActionsFile(acts *LastActions) {
	bLastActs, err := json.Marshal(&acts)
	if err != nil {
		app.Log.Warn("failed to marshal lastActions! This is non-critical but is logged", zap.Error(err))
		return
	}
	if err := app.Fs.MkdirAll(app.GetBaseDir(), constants.DefaultPerms755); err != nil {
		app.Log.Warn("failed to create the base dir! This is non-critical but is logged", zap.Error(err))
		return
	}
	if err := afero.WriteFile(app.Fs, app.lastActionsPath(), bLastActs, constants.WriteReadReadPerms); err != nil {
		app.Log.Warn("failed to create the last-actions file! This is non-critical but is logged", zap.Error(err))
	}
}

func (app *App) ReadLastActionsFile() (*LastActions, error) {
	var lastActs *LastActions
	fileBytes, err := afero.ReadFile(app.Fs, app.lastActionsPath())
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(fileBytes, &lastActs); err != nil {
		app.Log.Warn("failed to unmarshal lastActions! This is non-critical but is logged", zap.Error(err))
		return nil, nil
	}
	return lastActs, nil
}

// RecordLastSaga remembers [id] as the saga to resume by default
func (app *App) RecordLastSaga(id string) {
	app.WriteLastActionsFile(&LastActions{
		LastSagaID:    id,
		LastSagaStart: time.Now().UTC(),
	})
}

// LastSagaID returns the id of the last started saga, or "" if unknown
func (app *App) LastSagaID() string {
	acts, err := app.ReadLastActionsFile()
	if err != nil || acts == nil {
		return ""
	}
	return acts.LastSagaID
}
