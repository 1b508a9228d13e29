// Package source finds the files a migration consumes.
// Entries and plain files are listed from the top level of the export folder
// only; plasmid sequences may be collected from a nested export tree first.
package source

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

// DiscoverEntries lists the exported entries directly inside folder, sorted by path.
func DiscoverEntries(folder string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(EscapeGlob(folder), "*.html"))
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", folder, err)
	}

	var entries []string
	for _, m := range matches {
		if IsEntryFile(m) {
			entries = append(entries, m)
		}
	}
	sort.Strings(entries)
	return entries, nil
}

// DiscoverFiles lists the regular, non-hidden files directly inside folder.
func DiscoverFiles(folder string) ([]string, error) {
	dirents, err := os.ReadDir(folder)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", folder, err)
	}

	var files []string
	for _, d := range dirents {
		if !d.Type().IsRegular() || IsHidden(d.Name()) {
			continue
		}
		files = append(files, filepath.Join(folder, d.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// FindSequenceFiles returns the .gb files in folder whose name contains needle.
func FindSequenceFiles(folder, needle string) ([]string, error) {
	pattern := filepath.Join(EscapeGlob(folder), "*"+EscapeGlob(needle)+"*"+SequenceExt)
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return nil, fmt.Errorf("searching %s for %q: %w", folder, needle, err)
	}
	sort.Strings(matches)
	return matches, nil
}

// CollectSequenceFiles copies every .gb file under src (recursively) into dst,
// flattening the tree. It returns the copied destination paths.
func CollectSequenceFiles(src, dst string) ([]string, error) {
	if err := os.MkdirAll(dst, 0755); err != nil {
		return nil, fmt.Errorf("creating %s: %w", dst, err)
	}

	var copied []string
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !IsSequenceFile(path) {
			return nil
		}
		target := filepath.Join(dst, d.Name())
		if target == path {
			return nil
		}
		if err := copyFile(path, target); err != nil {
			return err
		}
		copied = append(copied, target)
		return nil
	})
	if err != nil {
		return copied, fmt.Errorf("collecting sequences from %s: %w", src, err)
	}
	return copied, nil
}

// copyFile copies src to dst, keeping the modification time.
func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Chtimes(dst, info.ModTime(), info.ModTime())
}
