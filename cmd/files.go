package cmd

import (
	"fmt"

	"github.com/gaurav-prasanna/labmigrate/core/migrate"
	"github.com/gaurav-prasanna/labmigrate/core/output"
	"github.com/gaurav-prasanna/labmigrate/core/source"
	"github.com/spf13/cobra"
)

var filesFlags struct {
	folder    string
	project   string
	table     string
	keepGoing bool
}

var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "Create one Labii entry per file of a folder",
	Long: `Files uploads every regular, non-hidden file at the top of --folder and creates
an entry for it, named after the file and dated with its modification time.
Migrated files are moved into <folder>/migrated.

Examples:
  labmigrate files --folder ./protocols --project PRJ1 --table TBL1`,
	Args: cobra.NoArgs,
	RunE: runFiles,
}

func init() {
	rootCmd.AddCommand(filesCmd)

	f := filesCmd.Flags()
	f.StringVar(&filesFlags.folder, "folder", "", "Folder holding the files")
	f.StringVar(&filesFlags.project, "project", "", "Destination project SID")
	f.StringVar(&filesFlags.table, "table", "", "Destination entry table SID")
	f.BoolVar(&filesFlags.keepGoing, "keep_going", false, "Continue with the next file after a failure")
}

func runFiles(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := newLogger()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyFlags(cmd, map[string]func(){
		"folder":     func() { cfg.Files.Folder = filesFlags.folder },
		"project":    func() { cfg.Destination.ProjectSID = filesFlags.project },
		"table":      func() { cfg.Destination.EntryTableSID = filesFlags.table },
		"keep_going": func() { cfg.Files.KeepGoing = filesFlags.keepGoing },
	})
	if err := validateFor(cfg, cfg.Files); err != nil {
		return err
	}

	files, err := source.DiscoverFiles(cfg.Files.Folder)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintf(out, "No files to migrate in %s\n", cfg.Files.Folder)
		return nil
	}
	fmt.Fprintf(out, "Found %d files to migrate\n", len(files))

	remote, err := connect(ctx, cfg, logger)
	if err != nil {
		return err
	}

	runner := &migrate.FileRunner{
		Uploader: remote,
		Creator:  remote,
		TableSID: cfg.Destination.EntryTableSID,
		Projects: projects(cfg),
		Policy:   migrate.PolicyFor(cfg.Files.KeepGoing),
		Logger:   logger,
		Out:      out,
	}
	if !flagDryRun {
		if runner.Archive, err = output.NewArchive(cfg.Files.Folder); err != nil {
			return err
		}
	}

	summary, err := runner.Run(ctx, files)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated %d/%d files\n", summary.Migrated, summary.Total)
	return summary.Err()
}
