// Package output handles everything labmigrate writes to disk.
// Writer stores dry-run previews named after the entry (e.g. etr_123.md);
// Archive moves migrated entries and their attachments aside.
package output

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Writer writes rendered previews to disk.
type Writer struct {
	OutputDir string
}

// New creates a Writer targeting the given output directory.
// If outputDir is empty, it defaults to the current working directory.
func New(outputDir string) (*Writer, error) {
	if outputDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		outputDir = wd
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	return &Writer{OutputDir: outputDir}, nil
}

// Write stores data as <name><ext> and returns the written path.
func (w *Writer) Write(name string, data []byte, ext string) (string, error) {
	path := filepath.Join(w.OutputDir, sanitize(name)+ext)

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("writing file %s: %w", path, err)
	}
	return path, nil
}

// sanitize replaces path separators and control characters with underscores.
// Entry names keep their spaces and punctuation.
func sanitize(s string) string {
	var b strings.Builder
	for _, ch := range s {
		if ch == '/' || ch == '\\' || ch < 0x20 {
			b.WriteRune('_')
		} else {
			b.WriteRune(ch)
		}
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
