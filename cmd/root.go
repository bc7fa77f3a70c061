// Package cmd provides the root command and CLI setup for amalgam.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"amalgam.dev/pkg/amalgam/internal/adapter"
	"amalgam.dev/pkg/amalgam/internal/controller"
	"amalgam.dev/pkg/amalgam/internal/domain"
	m "amalgam.dev/pkg/amalgam/internal/model"
)

var fsAdapter adapter.SourceFSAdapter
var manifestStore adapter.ManifestStore
var amalgamator domain.Amalgamator
var workflow domain.Workflow
var ui controller.UI

// configFileFlag points at a config file other than ./amalgam.yaml.
var configFileFlag string

// verboseFlag forces debug logging.
var verboseFlag bool

var logFileFlag string

// parallelFlag limits how many passes run at once.
var parallelFlag int

func init() {
	// Initialize shared dependencies.
	ui = controller.NewUI(rootCmd, controller.IsTTY(os.Stdout))
	fsAdapter = adapter.NewLocalSourceFSAdapter()
	manifestStore = adapter.NewManifestStore(fsAdapter)
	amalgamator = domain.NewAmalgamator(fsAdapter)
	workflow = domain.NewWorkflow(
		fsAdapter,
		manifestStore,
		ui,
		amalgamator,
	)
}

const configHelp = `Inputs, outputs and markers are read from amalgam.yaml in the working
directory (or --config), from AMALGAM_* environment variables and from a .env
file. File lists are processed in the order given.`

const rootLongDescription = `Amalgam merges the headers and implementation files of a C/C++ library
into exactly two files: one interface header and one implementation file.

Every input's leading license banner is replaced by a single canonical banner,
repeated #pragma once guards are removed, local #include "..." directives are
dropped and the implementation file includes the generated header instead.

` + configHelp

const buildLongDescription = `Generate the interface and implementation artifacts.

Both artifacts are written to temporary files first and only replace the
existing ones once every input has been processed successfully.

` + configHelp

const checkLongDescription = `Render both artifacts in memory and compare them with the files on disk.

Exits with a non-zero status when an artifact is stale or missing, which makes
it suitable for CI.

` + configHelp

const listLongDescription = `Show per-file statistics (banner lines, dropped includes, guards) without
writing anything.

` + configHelp

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "amalgam",
		Short:        "C/C++ source amalgamation tool",
		Long:         rootLongDescription,
		SilenceUsage: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			if err := loadConfig(configFileFlag); err != nil {
				return err
			}

			configureLogger(viper.GetString(logFilenameKey), viper.GetBool(logVerboseKey))

			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	configureRootFlags(cmd)

	return cmd
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFileFlag, configFlagName, "c", "", "config file (default ./"+configFileName+")")

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", defaultLogVerbose, "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)

	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, defaultLogFilename, "log file path")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFileFlagName), logFilenameKey)

	cmd.PersistentFlags().IntVarP(&parallelFlag, parallelFlagName, "p", defaultBuildParallel, "number of passes run concurrently (1 runs them sequentially)")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(parallelFlagName), buildParallelKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func parsePaths(args []string) []m.Path {
	paths := make([]m.Path, 0, len(args))
	for _, arg := range args {
		paths = append(paths, m.Path(arg))
	}

	return paths
}
