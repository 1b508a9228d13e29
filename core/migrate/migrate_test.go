package migrate

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gaurav-prasanna/labmigrate/core"
	"github.com/gaurav-prasanna/labmigrate/core/normalize"
	"github.com/gaurav-prasanna/labmigrate/core/output"
	"github.com/gaurav-prasanna/labmigrate/core/render"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCreator struct {
	requests []core.EntryRequest
	err      error
}

func (f *fakeCreator) CreateRecord(_ context.Context, _ string, req core.EntryRequest) (core.RecordRef, error) {
	if f.err != nil {
		return core.RecordRef{}, f.err
	}
	f.requests = append(f.requests, req)
	return core.RecordRef{SID: "R", UID: fmt.Sprintf("EN%d", len(f.requests)), Name: req.Name}, nil
}

func writeFile(t *testing.T, path, data string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))
}

const goodEntry = `<html><body>` +
	`<div class="daySeparator"><span class="daySeparator-date">Monday, 05/01/2023</span></div>` +
	`<div class="mediocre-item is-file"><div class="note-itemName">gel.png</div></div>` +
	`</body></html>`

const brokenEntry = `<html><body>` +
	`<div class="mediocre-item is-file"><div class="note-itemName">missing.png</div></div>` +
	`</body></html>`

// exportFolder lays out etr_a (good, with attachment) and etr_b (missing attachment).
func exportFolder(t *testing.T) string {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "etr_a.html"), goodEntry)
	writeFile(t, filepath.Join(dir, "etr_a gel.png"), "png")
	writeFile(t, filepath.Join(dir, "etr_b.html"), brokenEntry)
	return dir
}

func entryRunner(t *testing.T, dir string, creator core.RecordCreator, policy Policy) *EntryRunner {
	archive, err := output.NewArchive(dir)
	require.NoError(t, err)
	projects := []core.ProjectRef{{SID: "P1"}}
	return &EntryRunner{
		Normalizer: normalize.New(&DryRun{}, projects),
		Creator:    creator,
		TableSID:   "T1",
		Projects:   projects,
		Archive:    archive,
		Policy:     policy,
	}
}

func TestEntryRunner_FailFastStopsAtFirstError(t *testing.T) {
	dir := exportFolder(t)
	creator := &fakeCreator{}
	r := entryRunner(t, dir, creator, FailFast)
	var out bytes.Buffer
	r.Out = &out

	files := []string{filepath.Join(dir, "etr_b.html"), filepath.Join(dir, "etr_a.html")}
	summary, err := r.Run(context.Background(), files)

	var fe *FileError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, files[0], fe.Path)
	var missing *normalize.MissingAttachmentError
	assert.ErrorAs(t, err, &missing)

	assert.Empty(t, creator.requests, "no entry may be created for a broken document")
	assert.Equal(t, 0, summary.Migrated)
	assert.FileExists(t, files[1], "later files are untouched")
	assert.Contains(t, out.String(), "[1/2] Processing etr_b.html")
	assert.NotContains(t, out.String(), "[2/2]")
}

func TestEntryRunner_KeepGoingCollectsFailures(t *testing.T) {
	dir := exportFolder(t)
	creator := &fakeCreator{}
	r := entryRunner(t, dir, creator, KeepGoing)

	files := []string{filepath.Join(dir, "etr_b.html"), filepath.Join(dir, "etr_a.html")}
	summary, err := r.Run(context.Background(), files)
	require.NoError(t, err)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Migrated)
	require.Len(t, summary.Failed, 1)

	batchErr := summary.Err()
	var missing *normalize.MissingAttachmentError
	require.ErrorAs(t, batchErr, &missing)
	assert.Contains(t, batchErr.Error(), "1/2 inputs failed")

	require.Len(t, creator.requests, 1)
	req := creator.requests[0]
	assert.Equal(t, "etr_a", req.Name)
	assert.Equal(t, []core.ProjectRef{{SID: "P1"}}, req.Projects)
	assert.Contains(t, req.Data, `<span class="labii-day-label">Monday, 2023-05-01</span>`)
	assert.Contains(t, req.Data, `name="DRY1: etr_a gel.png"`)

	assert.FileExists(t, filepath.Join(dir, "migrated", "etr_a.html"))
	assert.FileExists(t, filepath.Join(dir, "migrated", "etr_a gel.png"))
	assert.FileExists(t, filepath.Join(dir, "etr_b.html"), "failed entries stay for the next run")
}

func TestEntryRunner_CreateFailureKeepsFile(t *testing.T) {
	dir := exportFolder(t)
	boom := errors.New("labii down")
	r := entryRunner(t, dir, &fakeCreator{err: boom}, FailFast)

	_, err := r.Run(context.Background(), []string{filepath.Join(dir, "etr_a.html")})
	assert.ErrorIs(t, err, boom)
	assert.FileExists(t, filepath.Join(dir, "etr_a.html"))
}

func TestEntryRunner_WritesPreview(t *testing.T) {
	dir := exportFolder(t)
	previews := filepath.Join(t.TempDir(), "previews")
	w, err := output.New(previews)
	require.NoError(t, err)

	r := entryRunner(t, dir, &DryRun{}, FailFast)
	r.Archive = nil
	r.Preview = &Preview{Renderer: render.NewJSONRenderer(), Writer: w}

	_, err = r.MigrateEntry(context.Background(), filepath.Join(dir, "etr_a.html"))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(previews, "etr_a.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"Monday, 2023-05-01"`)
	assert.FileExists(t, filepath.Join(dir, "etr_a.html"), "no archive configured")
}

type failingRenderer struct{ err error }

func (r failingRenderer) Render(core.EntryRequest) ([]byte, error) { return nil, r.err }
func (r failingRenderer) Extension() string { return ".md" }

func TestEntryRunner_PreviewFailureCreatesNothing(t *testing.T) {
	dir := exportFolder(t)
	w, err := output.New(t.TempDir())
	require.NoError(t, err)
	creator := &fakeCreator{}
	r := entryRunner(t, dir, creator, FailFast)
	r.Preview = &Preview{Renderer: failingRenderer{err: os.ErrPermission}, Writer: w}

	entry := filepath.Join(dir, "etr_a.html")
	_, err = r.Run(context.Background(), []string{entry})
	assert.ErrorIs(t, err, os.ErrPermission)
	assert.Empty(t, creator.requests)
	assert.FileExists(t, entry)

	// A rerun with a working preview creates the entry exactly once.
	r.Preview.Renderer = render.NewMarkdownRenderer()
	summary, err := r.Run(context.Background(), []string{entry})
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Migrated)
	assert.Len(t, creator.requests, 1)
	assert.FileExists(t, filepath.Join(dir, "migrated", "etr_a.html"))
}

func TestEntryRunner_ArchiveLeavesPrefixedEntries(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "etr_Exp.html"), goodEntry)
	writeFile(t, filepath.Join(dir, "etr_Exp gel.png"), "png")
	writeFile(t, filepath.Join(dir, "etr_Exp 1.html"), `<html><body><p>second</p></body></html>`)
	creator := &fakeCreator{}
	r := entryRunner(t, dir, creator, FailFast)

	files := []string{filepath.Join(dir, "etr_Exp.html"), filepath.Join(dir, "etr_Exp 1.html")}
	summary, err := r.Run(context.Background(), files)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Migrated)

	require.Len(t, creator.requests, 2)
	assert.Equal(t, "etr_Exp 1", creator.requests[1].Name)
	for _, name := range []string{"etr_Exp.html", "etr_Exp gel.png", "etr_Exp 1.html"} {
		assert.FileExists(t, filepath.Join(dir, "migrated", name))
	}
}

func TestEntryName(t *testing.T) {
	assert.Equal(t, "etr_123", EntryName("/x/etr_123.html"))
	assert.Equal(t, "etr_v1.2", EntryName("/x/etr_v1.2.html"))
}

func TestFileEntryBody(t *testing.T) {
	body, err := FileEntryBody("Monday, 2023-05-01", core.FileRecord{
		SID: "F1", UID: "FI1", Name: "a.pdf", Version: core.FileVersion{SID: "V1"},
	})
	require.NoError(t, err)
	assert.Equal(t,
		`<div class="labii-day"><span class="labii-day-label">Monday, 2023-05-01</span></div>`+
			`<section class="labii-file" sid="F1" name="a.pdf" version="V1" should_hide_preview="false"></section>`+
			`<p>&nbsp;</p>`,
		body)
}

func TestFileEntryName(t *testing.T) {
	assert.Equal(t, "gel", FileEntryName("/x/gel.2023.tif"))
	assert.Equal(t, "report", FileEntryName("report"))
	assert.Equal(t, ".hidden", FileEntryName("/x/.hidden"))
}

func TestFileRunner(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "protocol.docx")
	writeFile(t, path, "doc")
	mtime := time.Date(2023, 5, 1, 12, 0, 0, 0, time.Local)
	require.NoError(t, os.Chtimes(path, mtime, mtime))

	archive, err := output.NewArchive(dir)
	require.NoError(t, err)
	creator := &fakeCreator{}
	r := &FileRunner{
		Uploader: &DryRun{},
		Creator:  creator,
		TableSID: "T1",
		Projects: []core.ProjectRef{{SID: "P1"}},
		Archive:  archive,
	}

	summary, err := r.Run(context.Background(), []string{path, filepath.Join(dir, "gone.txt")})
	require.Error(t, err)
	assert.Equal(t, 1, summary.Migrated)

	require.Len(t, creator.requests, 1)
	assert.Equal(t, "protocol", creator.requests[0].Name)
	assert.True(t, strings.HasPrefix(creator.requests[0].Data,
		`<div class="labii-day"><span class="labii-day-label">Monday, 2023-05-01</span></div>`))
	assert.FileExists(t, filepath.Join(dir, "migrated", "protocol.docx"))
}

type fakeLabii struct {
	records  []core.Record
	uploaded []string
	modified map[string]core.SectionData
}

func (f *fakeLabii) ListRecords(context.Context, string, bool) ([]core.Record, error) {
	return f.records, nil
}

func (f *fakeLabii) Upload(_ context.Context, path string, _ []core.ProjectRef) (core.FileRecord, error) {
	f.uploaded = append(f.uploaded, path)
	return core.FileRecord{SID: "F" + filepath.Base(path), UID: "FI", Name: filepath.Base(path), Version: core.FileVersion{SID: "V"}}, nil
}

func (f *fakeLabii) ModifySection(_ context.Context, sid string, data core.SectionData) error {
	if f.modified == nil {
		f.modified = make(map[string]core.SectionData)
	}
	f.modified[sid] = data
	return nil
}

func plasmid(uid, name, link string) core.Record {
	return core.Record{
		SID:      "S-" + uid,
		UID:      uid,
		Name:     name,
		Projects: []core.ProjectRef{{SID: "P1"}},
		Cells:    []core.Cell{{Column: core.Column{SID: "BL"}, Data: link}},
		Sections: []core.Section{{SID: "SEC-" + uid, Name: "Files"}},
	}
}

func TestPlasmidRunner_MatchByName(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pET28 export.gb"), "LOCUS")

	labii := &fakeLabii{records: []core.Record{
		plasmid("PM1", "pUC19", ""),
		plasmid("PM2", "pET28", ""),
		plasmid("PM3", "pGEX", ""),
	}}
	var out bytes.Buffer
	r := &PlasmidRunner{
		Lister: labii, Uploader: labii, Sections: labii,
		TableSID: "PT", Folder: dir, Match: MatchByName, SectionName: "Files",
		SkipUIDs: []string{"PM1"},
		Out:      &out,
	}

	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.Migrated)
	require.Len(t, summary.Failed, 1)
	assert.ErrorIs(t, summary.Failed[0], ErrNoMatch)

	assert.Equal(t, []string{filepath.Join(dir, "pET28 export.gb")}, labii.uploaded)
	data := labii.modified["SEC-PM2"]
	require.Len(t, data.Data, 1)
	assert.Equal(t, "FpET28 export.gb", data.Data[0].File.SID)
	assert.Equal(t, "FI: pET28 export.gb", data.Data[0].File.Name)
	assert.True(t, data.Data[0].ShouldHideColumnData)

	assert.Contains(t, out.String(), "PM2: pET28 SUCCESS")
	assert.Contains(t, out.String(), "PM3: pGEX FAILED")
	assert.NotContains(t, out.String(), "PM1")
}

func TestPlasmidRunner_MatchByBenchlingLink(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pET28 seq_Ab12.gb"), "LOCUS")

	labii := &fakeLabii{records: []core.Record{
		plasmid("PM2", "renamed", "https://acme.benchling.com/s/seq_Ab12-pet28/edit"),
		plasmid("PM3", "other", "not a link"),
	}}
	r := &PlasmidRunner{
		Lister: labii, Uploader: labii, Sections: labii,
		TableSID: "PT", Folder: dir, SectionName: "Files",
		Match: MatchByBenchlingLink, BenchlingColumnSID: "BL",
	}

	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Migrated)
	require.Len(t, summary.Failed, 1)
	assert.Contains(t, summary.Failed[0].Error(), "not benchling link available")
	assert.Contains(t, labii.modified, "SEC-PM2")
}

func TestPlasmidRunner_MissingSection(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "pET28.gb"), "LOCUS")

	rec := plasmid("PM2", "pET28", "")
	rec.Sections = nil
	labii := &fakeLabii{records: []core.Record{rec}}
	r := &PlasmidRunner{
		Lister: labii, Uploader: labii, Sections: labii,
		TableSID: "PT", Folder: dir, Match: MatchByName, SectionName: "Files",
	}

	summary, err := r.Run(context.Background())
	require.NoError(t, err)
	require.Len(t, summary.Failed, 1)
	assert.Empty(t, labii.uploaded, "nothing is uploaded for a record that cannot link it")
}

func TestDryRun(t *testing.T) {
	d := &DryRun{}
	_, err := d.Upload(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"), nil)
	assert.ErrorIs(t, err, os.ErrNotExist)

	ref, err := d.CreateRecord(context.Background(), "T1", core.EntryRequest{Name: "etr_1"})
	require.NoError(t, err)
	assert.Equal(t, "DRY-RUN", ref.UID)
	assert.Equal(t, "etr_1", ref.Name)
	assert.NoError(t, d.ModifySection(context.Background(), "SEC", core.SectionData{}))
}

func TestPolicyFor(t *testing.T) {
	assert.Equal(t, FailFast, PolicyFor(false))
	assert.Equal(t, KeepGoing, PolicyFor(true))
}
