// Package cmd: entries command.
// Orchestrates the entry migration:
// discover → normalize (uploading attachments) → create → preview → archive.
package cmd

import (
	"fmt"

	"github.com/gaurav-prasanna/labmigrate/core"
	"github.com/gaurav-prasanna/labmigrate/core/config"
	"github.com/gaurav-prasanna/labmigrate/core/migrate"
	"github.com/gaurav-prasanna/labmigrate/core/normalize"
	"github.com/gaurav-prasanna/labmigrate/core/output"
	"github.com/gaurav-prasanna/labmigrate/core/render"
	"github.com/gaurav-prasanna/labmigrate/core/source"
	"github.com/spf13/cobra"
)

var entriesFlags struct {
	folder         string
	project        string
	table          string
	keepGoing      bool
	previewDir     string
	previewFormat  string
	skipArchive    bool
	largeTableRows int
}

var entriesCmd = &cobra.Command{
	Use:   "entries",
	Short: "Migrate exported Benchling entries (etr_*.html) into Labii",
	Long: `Entries reads every etr_*.html file at the top of --folder, rewrites it into
Labii's entry format, uploads its attachments and creates one Labii entry per file.
Migrated entries and their attachments are moved into <folder>/migrated, so a
rerun continues where the last one stopped.

Examples:
  labmigrate entries --folder ./export --project PRJ1 --table TBL1
  labmigrate entries --folder ./export --dry_run --preview_dir ./preview --preview_format pdf
  labmigrate entries --folder ./export --keep_going`,
	Args: cobra.NoArgs,
	RunE: runEntries,
}

func init() {
	rootCmd.AddCommand(entriesCmd)

	f := entriesCmd.Flags()
	f.StringVar(&entriesFlags.folder, "folder", "", "Folder holding the exported entries")
	f.StringVar(&entriesFlags.project, "project", "", "Destination project SID")
	f.StringVar(&entriesFlags.table, "table", "", "Destination entry table SID")
	f.BoolVar(&entriesFlags.keepGoing, "keep_going", false, "Continue with the next entry after a failure")
	f.StringVar(&entriesFlags.previewDir, "preview_dir", "", "Write a preview of every entry into this directory")
	f.StringVar(&entriesFlags.previewFormat, "preview_format", "markdown", "Preview format: html, markdown, json or pdf")
	f.BoolVar(&entriesFlags.skipArchive, "skip_archive", false, "Leave migrated files in place")
	f.IntVar(&entriesFlags.largeTableRows, "large_table_rows", normalize.LargeTableThreshold, "Drop blank rows from tables longer than this")
}

func runEntries(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := newLogger()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyFlags(cmd, map[string]func(){
		"folder":           func() { cfg.Entries.Folder = entriesFlags.folder },
		"project":          func() { cfg.Destination.ProjectSID = entriesFlags.project },
		"table":            func() { cfg.Destination.EntryTableSID = entriesFlags.table },
		"keep_going":       func() { cfg.Entries.KeepGoing = entriesFlags.keepGoing },
		"preview_dir":      func() { cfg.Entries.PreviewDir = entriesFlags.previewDir },
		"preview_format":   func() { cfg.Entries.PreviewFormat = entriesFlags.previewFormat },
		"skip_archive":     func() { cfg.Entries.SkipArchive = entriesFlags.skipArchive },
		"large_table_rows": func() { cfg.Entries.LargeTableRows = entriesFlags.largeTableRows },
	})
	if err := validateFor(cfg, cfg.Entries); err != nil {
		return err
	}

	files, err := source.DiscoverEntries(cfg.Entries.Folder)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(out, "No entries to migrate in %s\n", cfg.Entries.Folder)
		return nil
	}
	fmt.Fprintf(out, "Found %d entries to migrate\n", len(files))

	remote, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}

	runner := &migrate.EntryRunner{
		Normalizer: normalize.New(remote, projects(cfg),
			normalize.WithLogger(logger),
			normalize.WithLargeTableThreshold(cfg.Entries.LargeTableRows)),
		Creator:  remote,
		TableSID: cfg.Destination.EntryTableSID,
		Projects: projects(cfg),
		Policy:   migrate.PolicyFor(cfg.Entries.KeepGoing),
		Logger:   logger,
		Out:      out,
	}
	if !cfg.Entries.SkipArchive && !flagDryRun {
		if runner.Archive, err = output.NewArchive(cfg.Entries.Folder); err != nil {
			return err
		}
	}
	if cfg.Entries.PreviewDir != "" {
		if runner.Preview, err = newPreview(cfg.Entries.PreviewDir, cfg.Entries.PreviewFormat); err != nil {
			return err
		}
	}

	summary, err := runner.Run(ctx, files)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d/%d entries\n", summary.Migrated, summary.Total)
	return summary.Err()
}

// validateFor checks section plus the connection settings a real run needs.
// A dry run makes no remote call, so only section is required.
func validateFor(cfg *config.Config, section any) error {
	if flagDryRun {
		return validate(section)
	}
	return validate(cfg.Labii, cfg.Destination, section)
}

// newPreview selects the renderer for format and the writer for dir.
func newPreview(dir, format string) (*migrate.Preview, error) {
	var renderer core.Renderer
	switch format {
	case "html":
		renderer = render.NewHTMLRenderer()
	case "markdown":
		renderer = render.NewMarkdownRenderer()
	case "json":
		renderer = render.NewJSONRenderer()
	case "pdf":
		renderer = render.NewPDFRenderer()
	default:
		return nil, fmt.Errorf("unknown preview format %q", format)
	}

	writer, err := output.New(dir)
	if err != nil {
		return nil, fmt.Errorf("initializing preview writer: %w", err)
	}
	return &migrate.Preview{Renderer: renderer, Writer: writer}, nil
}
