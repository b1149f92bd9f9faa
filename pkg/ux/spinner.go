// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package ux

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/chelnak/ysmrr"
	"github.com/chelnak/ysmrr/pkg/animations"
	"github.com/chelnak/ysmrr/pkg/colors"
)

// UserSpinner shows one spinner line per blocking operation
type UserSpinner struct {
	spinner ysmrr.SpinnerManager
	started bool
	mutex   sync.Mutex
}

func newSpinner(writer io.Writer) ysmrr.SpinnerManager {
	if writer == nil {
		writer = os.Stdout
	}
	return ysmrr.NewSpinnerManager(
		ysmrr.WithAnimation(animations.Dots),
		ysmrr.WithSpinnerColor(colors.FgHiBlue),
		ysmrr.WithWriter(writer),
	)
}

func NewUserSpinner(writer io.Writer) *UserSpinner {
	return &UserSpinner{spinner: newSpinner(writer)}
}

func (us *UserSpinner) Stop() {
	us.mutex.Lock()
	defer us.mutex.Unlock()
	if us.started {
		us.spinner.Stop()
		us.started = false
	}
}

func (us *UserSpinner) SpinToUser(msg string, args ...interface{}) *ysmrr.Spinner {
	formattedMsg := fmt.Sprintf(msg, args...)
	Logger.Info(formattedMsg + " [Spinner Start]")
	sp := us.spinner.AddSpinner(formattedMsg)
	us.mutex.Lock()
	if !us.started {
		us.spinner.Start()
		us.started = true
	}
	us.mutex.Unlock()
	return sp
}

func SpinFailWithError(s *ysmrr.Spinner, txt string, err error) {
	if txt == "" {
		s.UpdateMessage(fmt.Sprintf("%s err: %v", s.GetMessage(), err))
	} else {
		s.UpdateMessage(fmt.Sprintf("%s %s err: %v", s.GetMessage(), txt, err))
	}
	s.Error()
	Logger.Info(s.GetMessage() + " [Spinner Err]")
}

func SpinComplete(s *ysmrr.Spinner) {
	if s.IsComplete() {
		return
	}
	s.Complete()
	Logger.Info(s.GetMessage() + " [Spinner Complete]")
}
