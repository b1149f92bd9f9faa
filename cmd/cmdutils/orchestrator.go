// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package cmdutils

import (
	"errors"

	"github.com/ava-labs/l1-orchestrator/pkg/application"
	"github.com/ava-labs/l1-orchestrator/pkg/orchestrator"
	"github.com/ava-labs/l1-orchestrator/pkg/saga"
	"github.com/ava-labs/l1-orchestrator/pkg/ux"
	"github.com/ava-labs/libevm/common"
	"github.com/chelnak/ysmrr"
)

// Reporter receives saga outcomes, set up by the root command
var Reporter saga.Reporter

// StepSpinner shows a spinner for every running saga step
type StepSpinner struct {
	spinner  *ux.UserSpinner
	spinners map[saga.StepKey]*ysmrr.Spinner
}

func NewStepSpinner() *StepSpinner {
	return &StepSpinner{
		spinner:  ux.NewUserSpinner(ux.Logger.Writer),
		spinners: map[saga.StepKey]*ysmrr.Spinner{},
	}
}

// Observe follows the saga step transitions
func (s *StepSpinner) Observe(_ *saga.State, step saga.StepState) {
	switch step.Status {
	case saga.StatusLoading:
		s.spinners[step.Key] = s.spinner.SpinToUser("%s", StepDescription(step.Key))
	case saga.StatusSuccess:
		if sp, ok := s.spinners[step.Key]; ok {
			ux.SpinComplete(sp)
		}
	case saga.StatusError:
		if sp, ok := s.spinners[step.Key]; ok {
			ux.SpinFailWithError(sp, "", errors.New(step.Error))
		}
	}
}

func (s *StepSpinner) Stop() {
	s.spinner.Stop()
}

// NewOrchestrator builds an orchestrator from the app settings and the keys
// found in the environment. [signer] is only used when there is no EVM key.
// The returned func stops the spinner and releases the orchestrator resources
func NewOrchestrator(app *application.App, signer common.Address) (*orchestrator.Orchestrator, func(), error) {
	settings, err := app.Conf.Settings()
	if err != nil {
		return nil, nil, err
	}
	store, err := app.OpenCheckpointStore(settings)
	if err != nil {
		return nil, nil, err
	}
	keys := orchestrator.KeysFromEnv()
	keys.Signer = signer
	spinner := NewStepSpinner()
	o, err := orchestrator.New(settings, orchestrator.Options{
		Keys:     keys,
		Store:    store,
		Logger:   app.Log,
		Observer: spinner.Observe,
		Reporter: Reporter,
	})
	if err != nil {
		_ = store.Close()
		return nil, nil, err
	}
	return o, func() {
		spinner.Stop()
		if err := o.Close(); err != nil {
			ux.Logger.Error("failure closing the saga store: %s", err)
		}
	}, nil
}
