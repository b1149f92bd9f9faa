// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package utils

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/l1-orchestrator/pkg/constants"
)

// NewLogger creates a logger writing at [logLevel] into [logDir]. If [logToStdout]
// is set, entries are also displayed on stdout. The returned close function must be
// called on exit to flush the log files
func NewLogger(logName string, logLevel string, logDir string, logToStdout bool) (logging.Logger, func(), error) {
	level, err := logging.ToLevel(logLevel)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid log level configured: %s", logLevel)
	}
	if err := os.MkdirAll(logDir, constants.DefaultPerms755); err != nil {
		return nil, nil, fmt.Errorf("failed creating log directory: %w", err)
	}
	config := logging.Config{
		RotatingWriterConfig: logging.RotatingWriterConfig{
			Directory: logDir,
			MaxSize:   constants.MaxLogFileSize,
			MaxFiles:  constants.MaxNumOfLogFiles,
			MaxAge:    constants.RetainOldFiles,
		},
		LogLevel:     logging.Info,
		DisplayLevel: logging.Off,
		LogFormat:    logging.Colors,
	}
	if logToStdout {
		config.DisplayLevel = level
	}
	if level > logging.Info {
		config.LogLevel = level
	}
	factory := logging.NewFactory(config)
	log, err := factory.Make(logName)
	if err != nil {
		factory.Close()
		return nil, nil, fmt.Errorf("failed setting up logging, exiting: %w", err)
	}
	return log, factory.Close, nil
}

func LogFilePath(logDir string, logName string) string {
	return filepath.Join(logDir, logName+".log")
}
