// Copyright (C) 2025, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/l1-orchestrator/cmd/cmdutils"
	"github.com/ava-labs/l1-orchestrator/cmd/configcmd"
	"github.com/ava-labs/l1-orchestrator/cmd/sagacmd"
	"github.com/ava-labs/l1-orchestrator/cmd/validatorcmd"
	"github.com/ava-labs/l1-orchestrator/pkg/application"
	"github.com/ava-labs/l1-orchestrator/pkg/cobrautils"
	"github.com/ava-labs/l1-orchestrator/pkg/config"
	"github.com/ava-labs/l1-orchestrator/pkg/constants"
	"github.com/ava-labs/l1-orchestrator/pkg/metrics"
	"github.com/ava-labs/l1-orchestrator/pkg/prompts"
	"github.com/ava-labs/l1-orchestrator/pkg/utils"
	"github.com/ava-labs/l1-orchestrator/pkg/ux"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

var (
	app *application.App

	logLevel    string
	baseDir     string
	logToStdout bool

	tracker      *metrics.Tracker
	closeLogging func()
)

func NewRootCmd() *cobra.Command {
	// rootCmd represents the base command when called without any subcommands
	rootCmd := &cobra.Command{
		Use: "l1orch",
		Long: `l1orch changes the weight of Avalanche L1 validators and registers new ones.

Every change runs as a checkpointed saga across the L1 validator manager, the
signature aggregator and the P-Chain, so that a failed change can be inspected
and continued from the step that failed.

To get started, look at the documentation for the subcommands or jump right
in with l1orch validator change-weight.`,
		PersistentPreRunE: createApp,
		PersistentPostRun: handleTracking,
		Version:           metrics.Version,
		SilenceErrors:     true,
		SilenceUsage:      true,
	}
	cobrautils.ConfigureRootCmd(rootCmd)

	rootCmd.PersistentFlags().StringVar(&baseDir, constants.ConfigBaseDirKey, "", "directory holding config, logs and sagas (default $HOME/"+constants.BaseDirName+")")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", constants.DefaultLogLevel, "log level for the application")
	rootCmd.PersistentFlags().BoolVar(&logToStdout, "log-to-stdout", false, "also print logs to stdout")

	// Disable printing the completion command
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	// add sub commands
	rootCmd.AddCommand(validatorcmd.NewCmd(app))
	rootCmd.AddCommand(sagacmd.NewCmd(app))
	rootCmd.AddCommand(configcmd.NewCmd(app))
	return rootCmd
}

func createApp(cmd *cobra.Command, _ []string) error {
	dir, err := resolveBaseDir()
	if err != nil {
		return err
	}
	log, err := setupLogging(dir)
	if err != nil {
		return err
	}
	cf := config.New()
	app.Setup(dir, log, cf, prompts.NewPrompter(), afero.NewOsFs())
	if err := cf.LoadDotEnv(log, app.GetEnvFilePath()); err != nil {
		return err
	}
	cf.SetConfig(log, app.GetConfigPath())
	log.Debug("Running command", zap.String("command", cmd.CommandPath()))

	tracker = metrics.NewTracker(app)
	if tracker != nil {
		cmdutils.Reporter = tracker
	}
	return nil
}

func resolveBaseDir() (string, error) {
	dir := baseDir
	if dir == "" {
		dir = utils.UserHomePath(constants.BaseDirName)
	}
	dir = utils.ExpandHome(dir)
	if utils.DirectoryExists(dir) {
		return dir, nil
	}
	if err := os.MkdirAll(dir, constants.DefaultPerms755); err != nil {
		return "", fmt.Errorf("failed creating the basedir %s: %w", dir, err)
	}
	return dir, nil
}

func setupLogging(dir string) (logging.Logger, error) {
	log, closeFn, err := utils.NewLogger(constants.LogNameMain, logLevel, filepath.Join(dir, constants.LogDir), logToStdout)
	if err != nil {
		return nil, fmt.Errorf("failed setting up logging, exiting: %w", err)
	}
	closeLogging = closeFn
	// create the user facing logger as a global var
	ux.NewUserLog(log, os.Stdout)
	return log, nil
}

func handleTracking(cmd *cobra.Command, _ []string) {
	flags := map[string]string{}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		// only flag names, values may identify the user
		flags[f.Name] = "set"
	})
	metrics.HandleTracking(cmd, tracker, flags)
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	app = application.New()
	rootCmd := NewRootCmd()
	err := rootCmd.Execute()
	// flushes saga outcomes of failed runs too
	tracker.Close()
	if err != nil && app.GetBaseDir() != "" {
		ux.Logger.PrintToUser("Logs available at %s", utils.LogFilePath(app.GetLogDir(), constants.LogNameMain))
	}
	if closeLogging != nil {
		closeLogging()
	}
	cobrautils.HandleErrors(err)
}
