package source

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("data"), 0644))
}

func TestDiscoverEntries(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "etr_b.html"))
	write(t, filepath.Join(dir, "etr_a.html"))
	write(t, filepath.Join(dir, "etr_a image.png"))
	write(t, filepath.Join(dir, "index.html"))
	write(t, filepath.Join(dir, MigratedDir, "etr_old.html"))

	entries, err := DiscoverEntries(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "etr_a.html"),
		filepath.Join(dir, "etr_b.html"),
	}, entries)
}

func TestDiscoverEntries_FolderWithGlobCharacters(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "lab [2023]")
	write(t, filepath.Join(dir, "etr_a.html"))

	entries, err := DiscoverEntries(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "etr_a.html")}, entries)
}

func TestDiscoverFiles(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "b.pdf"))
	write(t, filepath.Join(dir, "a.docx"))
	write(t, filepath.Join(dir, ".DS_Store"))
	write(t, filepath.Join(dir, "nested", "c.txt"))

	files, err := DiscoverFiles(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "a.docx"), filepath.Join(dir, "b.pdf")}, files)
}

func TestIsEntryFile(t *testing.T) {
	assert.True(t, IsEntryFile("/x/etr_123.html"))
	assert.False(t, IsEntryFile("/x/etr_123 attachment.png"))
	assert.False(t, IsEntryFile("/x/notes.html"))
	assert.False(t, IsEntryFile("/x/migrated/etr_123.html"))
}

func TestBenchlingSequenceID(t *testing.T) {
	assert.Equal(t, "seq_AbC123", BenchlingSequenceID("https://acme.benchling.com/s/seq_AbC123-pet28/edit"))
	assert.Equal(t, "seq_xyz", BenchlingSequenceID("seq_xyz"))
	assert.Equal(t, "", BenchlingSequenceID("https://acme.benchling.com/s/etr_1"))
	assert.Equal(t, "", BenchlingSequenceID("seq_-broken"))
}

func TestFindSequenceFiles(t *testing.T) {
	dir := t.TempDir()
	write(t, filepath.Join(dir, "pET28 seq_abc.gb"))
	write(t, filepath.Join(dir, "pUC19 seq_def.gb"))
	write(t, filepath.Join(dir, "pET28 seq_abc.fasta"))

	got, err := FindSequenceFiles(dir, "seq_abc")
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Join(dir, "pET28 seq_abc.gb")}, got)

	got, err = FindSequenceFiles(dir, "missing")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCollectSequenceFiles(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "gb")
	write(t, filepath.Join(src, "a", "one.gb"))
	write(t, filepath.Join(src, "a", "b", "two.gb"))
	write(t, filepath.Join(src, "a", "notes.txt"))

	copied, err := CollectSequenceFiles(src, dst)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{filepath.Join(dst, "one.gb"), filepath.Join(dst, "two.gb")}, copied)

	data, err := os.ReadFile(filepath.Join(dst, "two.gb"))
	require.NoError(t, err)
	assert.Equal(t, "data", string(data))
}
