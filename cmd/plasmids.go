package cmd

import (
	"fmt"

	"github.com/gaurav-prasanna/labmigrate/core/migrate"
	"github.com/gaurav-prasanna/labmigrate/core/source"
	"github.com/spf13/cobra"
)

var plasmidsFlags struct {
	folder      string
	collectFrom string
	table       string
	match       string
	column      string
	section     string
	skipUIDs    []string
	allPages    bool
	keepGoing   bool
}

var plasmidsCmd = &cobra.Command{
	Use:   "plasmids",
	Short: "Attach exported GenBank files to Labii plasmid records",
	Long: `Plasmids lists the records of the plasmid table, finds the .gb file of each one
in --folder and links the uploaded file from the record's files section.

A record matches a file whose name contains the record name (--match name), or
the Benchling sequence id found in one of its columns (--match benchling_link
--column COLUMN_SID). Records without a file are reported and skipped.

Examples:
  labmigrate plasmids --folder ./sequences --table PLS1
  labmigrate plasmids --folder ./sequences --collect_from ./export --table PLS1
  labmigrate plasmids --folder ./sequences --table PLS1 --match benchling_link --column COL1`,
	Args: cobra.NoArgs,
	RunE: runPlasmids,
}

func init() {
	rootCmd.AddCommand(plasmidsCmd)

	f := plasmidsCmd.Flags()
	f.StringVar(&plasmidsFlags.folder, "folder", "", "Folder holding the .gb files")
	f.StringVar(&plasmidsFlags.collectFrom, "collect_from", "", "Copy every .gb file under this tree into --folder first")
	f.StringVar(&plasmidsFlags.table, "table", "", "Plasmid table SID")
	f.StringVar(&plasmidsFlags.match, "match", migrate.MatchByName, "How records find their file: name or benchling_link")
	f.StringVar(&plasmidsFlags.column, "column", "", "Column SID holding the Benchling link (with --match benchling_link)")
	f.StringVar(&plasmidsFlags.section, "section", "Files", "Name of the record section the file is linked from")
	f.StringSliceVar(&plasmidsFlags.skipUIDs, "skip_uid", nil, "Record UID to leave alone (repeatable)")
	f.BoolVar(&plasmidsFlags.allPages, "all_pages", true, "Process every page of the table, not only the first")
	f.BoolVar(&plasmidsFlags.keepGoing, "keep_going", false, "Continue after an upload or API failure")
}

func runPlasmids(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := newLogger()
	out := cmd.OutOrStdout()

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	applyFlags(cmd, map[string]func(){
		"folder":       func() { cfg.Plasmids.Folder = plasmidsFlags.folder },
		"collect_from": func() { cfg.Plasmids.CollectFrom = plasmidsFlags.collectFrom },
		"table":        func() { cfg.Plasmids.TableSID = plasmidsFlags.table },
		"match":        func() { cfg.Plasmids.Match = plasmidsFlags.match },
		"column":       func() { cfg.Plasmids.BenchlingColumnSID = plasmidsFlags.column },
		"section":      func() { cfg.Plasmids.SectionName = plasmidsFlags.section },
		"skip_uid":     func() { cfg.Plasmids.SkipUIDs = plasmidsFlags.skipUIDs },
		"all_pages":    func() { cfg.Plasmids.AllPages = plasmidsFlags.allPages },
		"keep_going":   func() { cfg.Plasmids.KeepGoing = plasmidsFlags.keepGoing },
	})
	// Records are always listed from Labii, dry run or not.
	if err := validate(cfg.Labii, cfg.Plasmids); err != nil {
		return err
	}

	if cfg.Plasmids.CollectFrom != "" {
		copied, err := source.CollectSequenceFiles(cfg.Plasmids.CollectFrom, cfg.Plasmids.Folder)
		if err != nil {
			return fmt.Errorf("collecting sequence files: %w", err)
		}
		fmt.Fprintf(out, "Collected %d sequence files into %s\n", len(copied), cfg.Plasmids.Folder)
	}

	client, err := login(ctx, cfg.Labii)
	if err != nil {
		return fmt.Errorf("connecting to %s: %w", cfg.Labii.BaseURL, err)
	}
	runner := &migrate.PlasmidRunner{
		Lister:             client,
		Uploader:           client,
		Sections:           client,
		TableSID:           cfg.Plasmids.TableSID,
		Folder:             cfg.Plasmids.Folder,
		AllPages:           cfg.Plasmids.AllPages,
		SkipUIDs:           cfg.Plasmids.SkipUIDs,
		Match:              cfg.Plasmids.Match,
		BenchlingColumnSID: cfg.Plasmids.BenchlingColumnSID,
		SectionName:        cfg.Plasmids.SectionName,
		Policy:             migrate.PolicyFor(cfg.Plasmids.KeepGoing),
		Logger:             logger,
		Out:                out,
	}
	if flagDryRun {
		dry := &migrate.DryRun{Logger: logger}
		runner.Uploader, runner.Sections = dry, dry
	}

	summary, err := runner.Run(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Linked %d/%d plasmids\n", summary.Migrated, summary.Total)
	return summary.Err()
}
