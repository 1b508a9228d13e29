package migrate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gaurav-prasanna/labmigrate/core"
)

// DryRun stands in for the Labii client when nothing may be written remotely.
// Uploads only check the file exists; creations and section updates are
// logged and answered with placeholder identifiers.
type DryRun struct {
	Logger *slog.Logger

	uploads int
	records int
}

// Upload implements core.Uploader.
func (d *DryRun) Upload(_ context.Context, path string, _ []core.ProjectRef) (core.FileRecord, error) {
	if _, err := os.Stat(path); err != nil {
		return core.FileRecord{}, fmt.Errorf("dry run: %w", err)
	}
	d.uploads++
	d.logger().Info("dry run: would upload", "file", path)
	return core.FileRecord{
		SID:     fmt.Sprintf("dry-run-file-%d", d.uploads),
		UID:     fmt.Sprintf("DRY%d", d.uploads),
		Name:    filepath.Base(path),
		Version: core.FileVersion{SID: fmt.Sprintf("dry-run-version-%d", d.uploads)},
	}, nil
}

// CreateRecord implements core.RecordCreator.
func (d *DryRun) CreateRecord(_ context.Context, tableSID string, req core.EntryRequest) (core.RecordRef, error) {
	d.records++
	d.logger().Info("dry run: would create record", "table", tableSID, "name", req.Name, "bytes", len(req.Data))
	return core.RecordRef{
		SID:  fmt.Sprintf("dry-run-record-%d", d.records),
		UID:  "DRY-RUN",
		Name: req.Name,
	}, nil
}

// ModifySection implements core.SectionModifier.
func (d *DryRun) ModifySection(_ context.Context, sectionSID string, data core.SectionData) error {
	d.logger().Info("dry run: would modify section", "section", sectionSID, "items", len(data.Data))
	return nil
}

func (d *DryRun) logger() *slog.Logger {
	if d.Logger == nil {
		return slog.Default()
	}
	return d.Logger
}
