// Package core defines the shared types and collaborator interfaces for labmigrate.
// Each stage of a migration (normalize, upload, create, render, archive) talks to
// the others only through the types in this package.
package core

import "context"

// Document is one exported Benchling entry read from disk.
type Document struct {
	Path string // on-disk path of the .html file
	HTML string
}

// ProjectRef points at a destination project.
type ProjectRef struct {
	SID string `json:"sid"`
}

// FileVersion identifies one stored revision of an uploaded file.
type FileVersion struct {
	SID string `json:"sid"`
}

// FileRecord is the remote descriptor returned after an upload.
type FileRecord struct {
	SID     string      `json:"sid"`
	UID     string      `json:"uid"`
	Name    string      `json:"name"`
	Version FileVersion `json:"version"`
}

// DisplayName is the label Labii shows for a file reference, e.g. "FI12: gel.png".
func (f FileRecord) DisplayName() string {
	return f.UID + ": " + f.Name
}

// Attachment links a file referenced by a document to its uploaded record.
type Attachment struct {
	LocalPath string
	Record    FileRecord
}

// PrunedTable reports the empty-row pruning applied to one large table.
type PrunedTable struct {
	Index   int // position of the table in document order
	Rows    int // rows before pruning
	Deleted int
}

// NormalizedEntry is the output of the HTML normalizer for one document.
type NormalizedEntry struct {
	Body         string // outer HTML of <body>
	Attachments  []Attachment
	PrunedTables []PrunedTable
}

// DeletedRows sums the rows removed across all pruned tables.
func (n NormalizedEntry) DeletedRows() int {
	total := 0
	for _, t := range n.PrunedTables {
		total += t.Deleted
	}
	return total
}

// EntryRequest is the payload of a record-creation call.
type EntryRequest struct {
	Name     string       `json:"name"`
	Projects []ProjectRef `json:"projects"`
	Data     string       `json:"data"`
}

// RecordRef is the minimal identity the destination returns for a record.
type RecordRef struct {
	SID  string `json:"sid"`
	UID  string `json:"uid"`
	Name string `json:"name"`
}

// Column identifies a table column.
type Column struct {
	SID  string `json:"sid"`
	Name string `json:"name,omitempty"`
}

// Cell is the value of one column on a record.
type Cell struct {
	Column Column `json:"column"`
	Data   string `json:"data"`
}

// Section is a named content block on a record.
type Section struct {
	SID  string `json:"sid"`
	Name string `json:"name"`
}

// Record is the detailed view of a destination record.
type Record struct {
	SID      string       `json:"sid"`
	UID      string       `json:"uid"`
	Name     string       `json:"name"`
	Projects []ProjectRef `json:"projects"`
	Cells    []Cell       `json:"column_set"`
	Sections []Section    `json:"section_set"`
}

// FileLink is one item of a files section.
type FileLink struct {
	File                 FileLinkTarget `json:"file"`
	ShouldHidePreview    bool           `json:"should_hide_preview"`
	ShouldHideColumnData bool           `json:"should_hide_column_data"`
}

// FileLinkTarget names the file a FileLink points at.
type FileLinkTarget struct {
	SID  string `json:"sid"`
	Name string `json:"name"`
}

// SectionData is the body of a section modification.
type SectionData struct {
	Data []FileLink `json:"data"`
}

// Normalizer turns an exported entry into importable HTML.
type Normalizer interface {
	Normalize(ctx context.Context, doc Document) (NormalizedEntry, error)
}

// Uploader stores a local file in the destination system.
type Uploader interface {
	Upload(ctx context.Context, path string, projects []ProjectRef) (FileRecord, error)
}

// RecordCreator creates a record in a destination table.
type RecordCreator interface {
	CreateRecord(ctx context.Context, tableSID string, req EntryRequest) (RecordRef, error)
}

// RecordLister lists the records of a destination table.
type RecordLister interface {
	ListRecords(ctx context.Context, tableSID string, allPages bool) ([]Record, error)
}

// SectionModifier replaces the content of a record section.
type SectionModifier interface {
	ModifySection(ctx context.Context, sectionSID string, data SectionData) error
}

// Renderer converts an entry payload into a preview format.
type Renderer interface {
	Render(entry EntryRequest) ([]byte, error)
	// Extension returns the file extension for this renderer (e.g. ".md", ".pdf").
	Extension() string
}
