package output

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gaurav-prasanna/labmigrate/core/source"
)

// Archive moves processed inputs into <folder>/migrated so that a rerun only
// picks up what is left.
type Archive struct {
	Dir string
}

// NewArchive creates the migrated directory under folder.
func NewArchive(folder string) (*Archive, error) {
	dir := filepath.Join(folder, source.MigratedDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating archive directory: %w", err)
	}
	return &Archive{Dir: dir}, nil
}

// MoveEntry moves an entry file together with the attachment files it
// referenced ("etr_1 image.png", ...). Other files sharing the entry's name
// prefix, such as another entry "etr_1 copy.html", stay where they are.
// It returns the new paths.
func (a *Archive) MoveEntry(path string, attachments []string) ([]string, error) {
	files := append([]string{path}, attachments...)
	seen := make(map[string]bool, len(files))

	var moved []string
	for _, f := range files {
		if seen[f] {
			continue
		}
		seen[f] = true
		target, err := a.move(f)
		if err != nil {
			return moved, err
		}
		moved = append(moved, target)
	}
	return moved, nil
}

// MoveFile moves a single file into the archive.
func (a *Archive) MoveFile(path string) (string, error) {
	return a.move(path)
}

func (a *Archive) move(path string) (string, error) {
	target := filepath.Join(a.Dir, filepath.Base(path))
	if err := os.Rename(path, target); err != nil {
		return "", fmt.Errorf("moving %s to %s: %w", path, a.Dir, err)
	}
	return target, nil
}
