package migrate

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/gaurav-prasanna/labmigrate/core"
	"github.com/gaurav-prasanna/labmigrate/core/source"
)

// Plasmid matching strategies.
const (
	MatchByName          = "name"
	MatchByBenchlingLink = "benchling_link"
)

// ErrNoMatch marks a plasmid record that could not be paired with a sequence
// file. It never stops a batch.
var ErrNoMatch = errors.New("no sequence file")

// PlasmidRunner attaches exported GenBank files to existing plasmid records.
type PlasmidRunner struct {
	Lister   core.RecordLister
	Uploader core.Uploader
	Sections core.SectionModifier

	TableSID string
	Folder   string // where the .gb files are
	AllPages bool
	SkipUIDs []string

	// Match is MatchByName (file name contains the record name) or
	// MatchByBenchlingLink (file name contains the seq_ id found in the
	// BenchlingColumnSID cell).
	Match              string
	BenchlingColumnSID string
	SectionName        string

	Policy Policy
	Logger *slog.Logger
	Out    io.Writer
}

// Run lists the plasmid table and processes each record. Unmatched records
// are logged as FAILED and reported in the Summary; remote errors follow
// r.Policy.
func (r *PlasmidRunner) Run(ctx context.Context) (Summary, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	out := r.Out
	if out == nil {
		out = io.Discard
	}

	records, err := r.Lister.ListRecords(ctx, r.TableSID, r.AllPages)
	if err != nil {
		return Summary{}, err
	}

	skip := make(map[string]bool, len(r.SkipUIDs))
	for _, uid := range r.SkipUIDs {
		skip[uid] = true
	}

	var summary Summary
	for _, rec := range records {
		if skip[rec.UID] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		summary.Total++
		label := rec.UID + ": " + rec.Name

		file, err := r.MigratePlasmid(ctx, rec)
		if err != nil {
			fmt.Fprintf(out, "%s FAILED: %v\n", label, err)
			logger.Warn("plasmid failed", "uid", rec.UID, "error", err)
			policy := r.Policy
			if errors.Is(err, ErrNoMatch) {
				policy = KeepGoing
			}
			if fe, stop := summary.fail(policy, rec.UID, err); stop {
				return summary, fe
			}
			continue
		}
		summary.Migrated++
		fmt.Fprintf(out, "%s SUCCESS: uploaded %s\n", label, file)
	}
	return summary, nil
}

// MigratePlasmid uploads the sequence file of rec and links it from the
// record's files section. It returns the uploaded path.
func (r *PlasmidRunner) MigratePlasmid(ctx context.Context, rec core.Record) (string, error) {
	needle, err := r.needle(rec)
	if err != nil {
		return "", err
	}

	files, err := source.FindSequenceFiles(r.Folder, needle)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", fmt.Errorf("%w: not found the *.gb file (%s)", ErrNoMatch, needle)
	}

	section, ok := findSection(rec, r.SectionName)
	if !ok {
		return "", fmt.Errorf("%w: record has no %q section", ErrNoMatch, r.SectionName)
	}

	uploaded, err := r.Uploader.Upload(ctx, files[0], rec.Projects)
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}

	err = r.Sections.ModifySection(ctx, section.SID, core.SectionData{
		Data: []core.FileLink{{
			File:                 core.FileLinkTarget{SID: uploaded.SID, Name: uploaded.DisplayName()},
			ShouldHidePreview:    false,
			ShouldHideColumnData: true,
		}},
	})
	if err != nil {
		return "", fmt.Errorf("modify section: %w", err)
	}
	return files[0], nil
}

// needle is the text a record's sequence file name must contain.
func (r *PlasmidRunner) needle(rec core.Record) (string, error) {
	if r.Match != MatchByBenchlingLink {
		return rec.Name, nil
	}

	for _, cell := range rec.Cells {
		if cell.Column.SID != r.BenchlingColumnSID {
			continue
		}
		id := source.BenchlingSequenceID(cell.Data)
		if id == "" {
			return "", fmt.Errorf("%w: not benchling link available", ErrNoMatch)
		}
		return id, nil
	}
	return "", fmt.Errorf("%w: not found benchling column (%s)", ErrNoMatch, r.BenchlingColumnSID)
}

func findSection(rec core.Record, name string) (core.Section, bool) {
	for _, s := range rec.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return core.Section{}, false
}
