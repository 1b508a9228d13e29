package migrate

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gaurav-prasanna/labmigrate/core"
	"github.com/gaurav-prasanna/labmigrate/core/output"
)

// Preview pairs a renderer with the writer its output goes to.
type Preview struct {
	Renderer core.Renderer
	Writer   *output.Writer
}

// EntryRunner migrates exported Benchling entries, one Labii entry per file.
type EntryRunner struct {
	Normalizer core.Normalizer
	Creator    core.RecordCreator
	TableSID   string
	Projects   []core.ProjectRef

	// Archive receives each migrated entry and its attachments; nil leaves them in place.
	Archive *output.Archive
	// Preview, when set, writes a rendering of every entry payload.
	Preview *Preview

	Policy Policy
	Logger *slog.Logger
	Out    io.Writer
}

// Run migrates files in order. Under FailFast the first error stops the
// batch and is returned; under KeepGoing failures are only collected in the
// Summary.
func (r *EntryRunner) Run(ctx context.Context, files []string) (Summary, error) {
	logger := r.logger()
	out := r.out()
	summary := Summary{Total: len(files)}

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		fmt.Fprintf(out, "[%d/%d] Processing %s\n", i+1, len(files), filepath.Base(path))

		ref, err := r.MigrateEntry(ctx, path)
		if err != nil {
			fe, stop := summary.fail(r.Policy, path, err)
			logger.Error("entry failed", "file", path, "error", err)
			fmt.Fprintf(out, "  ✗ Error: %v\n", err)
			if stop {
				return summary, fe
			}
			continue
		}
		summary.Migrated++
		fmt.Fprintf(out, "  ✓ %s: %s\n", ref.UID, ref.Name)
	}

	if len(summary.Failed) > 0 {
		fmt.Fprintf(out, "\n%d/%d entries failed\n", len(summary.Failed), summary.Total)
	}
	return summary, nil
}

// MigrateEntry reads and normalizes one entry, writes its preview, creates it
// and archives it with its attachments. Nothing is created when normalization
// or the preview fails.
func (r *EntryRunner) MigrateEntry(ctx context.Context, path string) (core.RecordRef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return core.RecordRef{}, fmt.Errorf("reading entry: %w", err)
	}

	entry, err := r.Normalizer.Normalize(ctx, core.Document{Path: path, HTML: string(data)})
	if err != nil {
		return core.RecordRef{}, fmt.Errorf("normalize: %w", err)
	}
	if rows := entry.DeletedRows(); rows > 0 {
		fmt.Fprintf(r.out(), "  Deleted rows %d\n", rows)
	}

	req := core.EntryRequest{
		Name:     EntryName(path),
		Projects: r.Projects,
		Data:     entry.Body,
	}

	// The preview goes first: once the record exists, only archiving may fail.
	if r.Preview != nil {
		if err := r.writePreview(req); err != nil {
			return core.RecordRef{}, err
		}
	}

	ref, err := r.Creator.CreateRecord(ctx, r.TableSID, req)
	if err != nil {
		return core.RecordRef{}, fmt.Errorf("create: %w", err)
	}
	r.logger().Info("entry created",
		"file", path, "uid", ref.UID, "attachments", len(entry.Attachments))

	if r.Archive != nil {
		attachments := make([]string, len(entry.Attachments))
		for i, a := range entry.Attachments {
			attachments[i] = a.LocalPath
		}
		if _, err := r.Archive.MoveEntry(path, attachments); err != nil {
			return ref, fmt.Errorf("archive: %w", err)
		}
	}
	return ref, nil
}

func (r *EntryRunner) writePreview(req core.EntryRequest) error {
	data, err := r.Preview.Renderer.Render(req)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}
	written, err := r.Preview.Writer.Write(req.Name, data, r.Preview.Renderer.Extension())
	if err != nil {
		return fmt.Errorf("preview: %w", err)
	}
	r.logger().Debug("preview written", "path", written)
	return nil
}

// EntryName is the Labii entry name for an exported entry file: its base
// name without the extension.
func EntryName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func (r *EntryRunner) logger() *slog.Logger {
	if r.Logger == nil {
		return slog.Default()
	}
	return r.Logger
}

func (r *EntryRunner) out() io.Writer {
	if r.Out == nil {
		return io.Discard
	}
	return r.Out
}
