package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gaurav-prasanna/labmigrate/core"
	"github.com/gaurav-prasanna/labmigrate/core/config"
	"github.com/gaurav-prasanna/labmigrate/core/labii"
	"github.com/gaurav-prasanna/labmigrate/core/migrate"
	"github.com/spf13/cobra"
)

// backend is what the entry and file commands write through: the Labii
// client, or migrate.DryRun.
type backend interface {
	core.Uploader
	core.RecordCreator
	core.SectionModifier
}

// loadConfig reads the configuration and overlays the connection flags the
// user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("base_url") {
		cfg.Labii.BaseURL = flagBaseURL
	}
	if flags.Changed("organization") {
		cfg.Labii.OrganizationSID = flagOrganization
	}
	return cfg, nil
}

// applyFlags runs the setter of every flag the user set. Flags left at their
// default never override the file or the environment.
func applyFlags(cmd *cobra.Command, setters map[string]func()) {
	for name, set := range setters {
		if cmd.Flags().Changed(name) {
			set()
		}
	}
}

// validate checks sections in order and returns the first failure, which
// lists every bad field of that section.
func validate(sections ...any) error {
	for _, s := range sections {
		if err := config.Validate(s); err != nil {
			return err
		}
	}
	return nil
}

// login returns a Labii client holding a session token.
func login(ctx context.Context, cfg config.Labii) (*labii.Client, error) {
	client := labii.New(cfg.BaseURL, cfg.OrganizationSID)
	if err := client.Login(ctx, cfg.APIKey, cfg.APISecret); err != nil {
		return nil, err
	}
	return client, nil
}

// connect logs in, or returns a DryRun backend when --dry_run is set.
func connect(ctx context.Context, cfg *config.Config, logger *slog.Logger) (backend, error) {
	if flagDryRun {
		logger.Info("dry run: nothing is written to Labii")
		return &migrate.DryRun{Logger: logger}, nil
	}
	client, err := login(ctx, cfg.Labii)
	if err != nil {
		return nil, fmt.Errorf("connecting to %s: %w", cfg.Labii.BaseURL, err)
	}
	logger.Debug("logged in", "base_url", cfg.Labii.BaseURL, "organization", cfg.Labii.OrganizationSID)
	return client, nil
}

func projects(cfg *config.Config) []core.ProjectRef {
	if cfg.Destination.ProjectSID == "" {
		return nil
	}
	return []core.ProjectRef{{SID: cfg.Destination.ProjectSID}}
}
