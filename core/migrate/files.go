package migrate

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gaurav-prasanna/labmigrate/core"
	"github.com/gaurav-prasanna/labmigrate/core/normalize"
	"github.com/gaurav-prasanna/labmigrate/core/output"
	"golang.org/x/net/html"
)

// FileRunner turns each file of a folder into a Labii entry holding a day
// marker (the file's modification date) and the uploaded file.
type FileRunner struct {
	Uploader core.Uploader
	Creator  core.RecordCreator
	TableSID string
	Projects []core.ProjectRef
	Archive  *output.Archive

	Policy Policy
	Logger *slog.Logger
	Out    io.Writer
}

// Run migrates files in order, following r.Policy on failure.
func (r *FileRunner) Run(ctx context.Context, files []string) (Summary, error) {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}
	out := r.Out
	if out == nil {
		out = io.Discard
	}
	summary := Summary{Total: len(files)}

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		fmt.Fprintf(out, "[%d/%d] Processing %s\n", i+1, len(files), filepath.Base(path))

		ref, err := r.MigrateFile(ctx, path)
		if err != nil {
			fe, stop := summary.fail(r.Policy, path, err)
			logger.Error("file failed", "file", path, "error", err)
			fmt.Fprintf(out, "  ✗ Error: %v\n", err)
			if stop {
				return summary, fe
			}
			continue
		}
		summary.Migrated++
		logger.Info("entry created", "file", path, "uid", ref.UID)
		fmt.Fprintf(out, "  ✓ %s: %s\n", ref.UID, ref.Name)
	}
	return summary, nil
}

// MigrateFile uploads one file and creates its entry.
func (r *FileRunner) MigrateFile(ctx context.Context, path string) (core.RecordRef, error) {
	info, err := os.Stat(path)
	if err != nil {
		return core.RecordRef{}, fmt.Errorf("inspecting file: %w", err)
	}

	rec, err := r.Uploader.Upload(ctx, path, r.Projects)
	if err != nil {
		return core.RecordRef{}, fmt.Errorf("upload: %w", err)
	}

	body, err := FileEntryBody(normalize.FormatDay(info.ModTime()), rec)
	if err != nil {
		return core.RecordRef{}, err
	}

	ref, err := r.Creator.CreateRecord(ctx, r.TableSID, core.EntryRequest{
		Name:     FileEntryName(path),
		Projects: r.Projects,
		Data:     body,
	})
	if err != nil {
		return core.RecordRef{}, fmt.Errorf("create: %w", err)
	}

	if r.Archive != nil {
		if _, err := r.Archive.MoveFile(path); err != nil {
			return ref, fmt.Errorf("archive: %w", err)
		}
	}
	return ref, nil
}

// FileEntryBody renders a day marker, the file section labelled with the bare
// file name, and a trailing empty paragraph that keeps the entry editable
// below the file.
func FileEntryBody(day string, rec core.FileRecord) (string, error) {
	var buf bytes.Buffer
	for _, n := range []*html.Node{normalize.DayMarker(day), normalize.LabelledFileSection(rec, rec.Name)} {
		if err := html.Render(&buf, n); err != nil {
			return "", fmt.Errorf("rendering entry body: %w", err)
		}
	}
	buf.WriteString("<p>&nbsp;</p>")
	return buf.String(), nil
}

// FileEntryName is everything before the first dot of the file's base name,
// so "gel.2023.tif" becomes "gel".
func FileEntryName(path string) string {
	name, _, _ := strings.Cut(filepath.Base(path), ".")
	if name == "" {
		return filepath.Base(path)
	}
	return name
}
