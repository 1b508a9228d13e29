// Package source: file filtering rules.
// Helpers deciding which exported files are migration inputs.
package source

import (
	"path/filepath"
	"strings"
)

const (
	// EntryPrefix marks exported notebook entries ("etr_<id>.html").
	EntryPrefix = "etr_"
	// MigratedDir is where processed files are moved to.
	MigratedDir = "migrated"
	// SequenceExt is the GenBank plasmid sequence extension.
	SequenceExt = ".gb"
)

// IsEntryFile reports whether path is an exported entry that still needs migrating.
func IsEntryFile(path string) bool {
	if isMigrated(path) {
		return false
	}
	name := filepath.Base(path)
	return strings.HasSuffix(name, ".html") && strings.Contains(name, EntryPrefix)
}

// IsHidden reports whether the base name of path starts with a dot.
func IsHidden(path string) bool {
	return strings.HasPrefix(filepath.Base(path), ".")
}

// IsSequenceFile reports whether path is a GenBank file.
func IsSequenceFile(path string) bool {
	return strings.HasSuffix(path, SequenceExt)
}

func isMigrated(path string) bool {
	return filepath.Base(filepath.Dir(path)) == MigratedDir
}

// BenchlingSequenceID extracts "seq_XXXX" from a Benchling sequence link such
// as https://benchling.com/s/seq_AbC123-pet28/edit. It returns "" when the
// link holds no sequence id.
func BenchlingSequenceID(link string) string {
	_, rest, ok := strings.Cut(link, "seq_")
	if !ok {
		return ""
	}
	id, _, _ := strings.Cut(rest, "-")
	if id == "" {
		return ""
	}
	return "seq_" + id
}

// EscapeGlob quotes the glob meta characters of s for filepath.Glob.
func EscapeGlob(s string) string {
	var b strings.Builder
	for _, ch := range s {
		switch ch {
		case '*', '?', '[', '\\':
			b.WriteRune('\\')
		}
		b.WriteRune(ch)
	}
	return b.String()
}
