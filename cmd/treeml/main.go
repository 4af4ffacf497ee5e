// Command treeml fits, cross-validates and demonstrates the tree, ensemble,
// neighbour and linear models of this module on CSV or NumPy data.
package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/YuminosukeSato/treeml/pkg/errors"
	"github.com/YuminosukeSato/treeml/pkg/log"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "treeml",
		Short:         "treeml: decision trees and tree ensembles in Go",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			return setupLogging(cmd, cfg)
		},
	}
	root.PersistentFlags().String("config", "", "Config file (yaml, toml or json).")
	root.PersistentFlags().String("log-level", "warn", "Log level: debug, info, warn or error.")
	root.PersistentFlags().String("log-format", "console", "Log format: json or console.")
	root.PersistentFlags().Int64("seed", 42, "Seed for every random source.")
	root.PersistentFlags().IntP("n-jobs", "j", 0, "Parallel workers; 0 uses one per CPU.")

	root.AddCommand(newFitCmd(), newCVCmd(), newDemoCmd())
	return root
}

func setupLogging(cmd *cobra.Command, cfg *Config) error {
	switch cfg.LogFormat {
	case "json":
		log.SetOutput(cmd.ErrOrStderr())
	case "console", "":
		log.UseConsoleWriter(cmd.ErrOrStderr())
	default:
		return errors.NewValidationError("log-format", "must be json or console", cfg.LogFormat)
	}
	return log.SetupLogger(cfg.LogLevel)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.GetLoggerWithName("treeml").Error("command failed", err)
		os.Exit(1)
	}
}
