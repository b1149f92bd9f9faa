// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package metrics

import (
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"os/user"
	"runtime"
	"strings"

	"github.com/ava-labs/l1-orchestrator/pkg/application"
	"github.com/ava-labs/l1-orchestrator/pkg/constants"
	"github.com/ava-labs/l1-orchestrator/pkg/saga"
	"github.com/posthog/posthog-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// telemetryToken value is set at build time using ldflags
var (
	telemetryToken    = ""
	telemetryInstance = "https://app.posthog.com"
	// overridable in tests
	newClient = func() (client, error) {
		return posthog.NewWithConfig(telemetryToken, posthog.Config{Endpoint: telemetryInstance})
	}
)

// Version is set at build time using ldflags
var Version = "dev"

const (
	commandEvent = "l1orch-command"
	sagaEvent    = "l1orch-saga"
)

type client interface {
	Enqueue(posthog.Message) error
	Close() error
}

// Tracker sends anonymous usage events. A nil or disabled Tracker is a no-op
type Tracker struct {
	app        *application.App
	client     client
	distinctID string
}

var _ saga.Reporter = (*Tracker)(nil)

func userIsOptedIn(app *application.App) bool {
	return app.Conf != nil && app.Conf.ConfigFileExists() && app.Conf.GetConfigBoolValue(constants.ConfigMetricsEnabledKey)
}

// NewTracker returns a Tracker if the user opted in and a telemetry token is set
func NewTracker(app *application.App) *Tracker {
	if !userIsOptedIn(app) || telemetryToken == "" {
		return nil
	}
	c, err := newClient()
	if err != nil {
		app.Log.Debug("failed to create telemetry client", zap.Error(err))
		return nil
	}
	return &Tracker{
		app:        app,
		client:     c,
		distinctID: distinctID(app),
	}
}

// distinctID is the configured metrics user id, or a hash of the local user
func distinctID(app *application.App) string {
	if app.Conf.ConfigValueIsSet(constants.ConfigMetricsUserIDKey) {
		if id := app.Conf.GetConfigStringValue(constants.ConfigMetricsUserIDKey); id != "" {
			return id
		}
	}
	usr, err := user.Current()
	if err != nil {
		return ""
	}
	hash := sha256.Sum256([]byte(fmt.Sprintf("%s%s", usr.Username, usr.Uid)))
	return base64.StdEncoding.EncodeToString(hash[:])
}

func (t *Tracker) enqueue(event string, properties map[string]interface{}) {
	if t == nil {
		return
	}
	properties["version"] = Version
	properties["os"] = runtime.GOOS
	if err := t.client.Enqueue(posthog.Capture{
		DistinctId: t.distinctID,
		Event:      event,
		Properties: properties,
	}); err != nil {
		t.app.Log.Debug("failed to enqueue telemetry event", zap.String("event", event), zap.Error(err))
	}
}

// TrackCommand records the execution of [commandPath] with the given flag values
func (t *Tracker) TrackCommand(commandPath string, flags map[string]string) {
	properties := map[string]interface{}{
		"command": commandPath,
	}
	for propertyKey, propertyValue := range flags {
		properties[propertyKey] = propertyValue
	}
	t.enqueue(commandEvent, properties)
}

// SagaFinished records the outcome of a saga run. Ids, addresses and amounts
// are never sent
func (t *Tracker) SagaFinished(state *saga.State, err error) {
	if t == nil || state == nil {
		return
	}
	properties := map[string]interface{}{
		"kind":  string(state.Kind),
		"phase": string(state.Phase),
	}
	attempts := 0
	for _, step := range state.Steps {
		attempts += step.Attempts
	}
	properties["attempts"] = attempts
	if failed, ok := state.FailedStep(); ok {
		properties["failedStep"] = string(failed.Key)
		properties["errorKind"] = string(failed.ErrorKind)
	}
	properties["success"] = err == nil
	t.enqueue(sagaEvent, properties)
}

// Close flushes pending events
func (t *Tracker) Close() {
	if t == nil {
		return
	}
	if err := t.client.Close(); err != nil {
		t.app.Log.Debug("failed to flush telemetry events", zap.Error(err))
	}
}

func CheckCommandIsNotCompletion(cmd *cobra.Command) bool {
	result := strings.Fields(cmd.CommandPath())
	if len(result) >= 2 && result[1] == "completion" {
		return false
	}
	return true
}

// HandleTracking records leaf command executions for opted in users
func HandleTracking(cmd *cobra.Command, tracker *Tracker, flags map[string]string) {
	if tracker == nil {
		return
	}
	if !cmd.HasSubCommands() && CheckCommandIsNotCompletion(cmd) {
		tracker.TrackCommand(cmd.CommandPath(), flags)
	}
}
