// Package cli wires the ingestion pipelines to the command line and maps
// the error taxonomy onto process exit codes.
package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/wdm0006/ingot/pkg/config"
	ing "github.com/wdm0006/ingot/pkg/ingot"
	"github.com/wdm0006/ingot/pkg/pipeline"
)

var version = "0.1.0-dev"

// Execute runs the CLI and returns the process exit code: 0 on success,
// 3 for schema failures, 2 for not-found targets, 1 for anything else.
func Execute() int {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return exitCode(err)
	}
	return 0
}

func exitCode(err error) int {
	var schemaErr *ing.SchemaError
	if errors.As(err, &schemaErr) {
		return 3
	}
	var notFound *ing.NotFoundError
	if errors.As(err, &notFound) {
		return 2
	}
	return 1
}

func newRootCmd() *cobra.Command {
	var logLevel string

	rootCmd := &cobra.Command{
		Use:           "ingot",
		Short:         "Bronze-layer tabular ingestion",
		Long:          "Ingests tabular data from a REST API or a delimited file, validates it against a declared schema and writes date-partitioned files with sidecar manifests.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	newLogger := func() *slog.Logger {
		level := slog.LevelInfo
		switch logLevel {
		case "debug":
			level = slog.LevelDebug
		case "warn":
			level = slog.LevelWarn
		case "error":
			level = slog.LevelError
		}
		return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	}

	rootCmd.AddCommand(newAPICmd(newLogger))
	rootCmd.AddCommand(newCSVCmd(newLogger))
	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newAPICmd(newLogger func() *slog.Logger) *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "api",
		Short: "Ingest from the configured REST source",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadAPI(configPath)
			if err != nil {
				return err
			}
			p := &pipeline.API{Cfg: cfg, Logger: newLogger(), Out: cmd.OutOrStdout()}
			return p.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the run config (json, yaml or toml)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func newCSVCmd(newLogger func() *slog.Logger) *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "csv",
		Short: "Ingest from the configured delimited file",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadCSV(configPath)
			if err != nil {
				return err
			}
			p := &pipeline.CSV{Cfg: cfg, Logger: newLogger(), Out: cmd.OutOrStdout()}
			return p.Run(cmd.Context())
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to the run config (json, yaml or toml)")
	_ = cmd.MarkFlagRequired("config")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version and exit",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "ingot", version)
		},
	}
}
