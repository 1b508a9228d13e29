// Package cmd implements the CLI commands for labmigrate using Cobra.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

// Persistent flag variables.
var (
	flagConfig       string
	flagBaseURL      string
	flagOrganization string
	flagVerbose      bool
	flagDryRun       bool
)

var rootCmd = &cobra.Command{
	Use:   "labmigrate",
	Short: "Move a Benchling export into Labii",
	Long: `labmigrate migrates data exported from Benchling into Labii over the Labii API.

Entries are normalized into Labii's rich-text format with their attachments
uploaded; plain files become one entry each; plasmid sequence files are
attached to existing plasmid records.

Usage:
  labmigrate entries  --folder ./export [flags]
  labmigrate files    --folder ./files [flags]
  labmigrate plasmids --folder ./sequences [flags]

Connection settings come from --config, a .env file or LABII_* variables.`,
	SilenceUsage: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "YAML configuration file")
	pf.StringVar(&flagBaseURL, "base_url", "", "Labii base URL (default https://www.labii.dev)")
	pf.StringVar(&flagOrganization, "organization", "", "Labii organization SID")
	pf.BoolVar(&flagVerbose, "verbose", false, "Debug logging")
	pf.BoolVar(&flagDryRun, "dry_run", false, "Do everything except writing to Labii or moving files")
}

// Execute runs the root command. An interrupt cancels the running batch
// between two inputs.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// newLogger returns the batch logger; every record carries the run id.
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if flagVerbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler).With("run_id", uuid.NewString())
}
