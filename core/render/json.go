// Package render: JSON renderer.
// Emits the exact record-creation payload plus a structural summary of the
// normalized body (day markers, paragraphs, code blocks, files, tables), so an
// operator can review a dry run without opening every entry.
package render

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/labmigrate/core"
)

// EntryStructure counts the Labii building blocks of an entry body.
type EntryStructure struct {
	Days       []string `json:"days"`
	Paragraphs int      `json:"paragraphs"`
	CodeBlocks int      `json:"code_blocks"`
	Files      []string `json:"files"`
	Tables     int      `json:"tables"`
	Rows       int      `json:"rows"`
}

// EntryJSON is the complete JSON preview for one entry.
type EntryJSON struct {
	Request   core.EntryRequest `json:"request"`
	Structure EntryStructure    `json:"structure"`
}

// JSONRenderer produces the JSON preview.
type JSONRenderer struct{}

// NewJSONRenderer creates a JSONRenderer.
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Render marshals the payload and its structure summary.
func (r *JSONRenderer) Render(entry core.EntryRequest) ([]byte, error) {
	structure, err := Structure(entry.Data)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(EntryJSON{Request: entry, Structure: structure}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling JSON: %w", err)
	}
	return data, nil
}

// Extension returns the file extension for JSON output.
func (r *JSONRenderer) Extension() string {
	return ".json"
}

// Structure summarizes a normalized entry body.
func Structure(body string) (EntryStructure, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return EntryStructure{}, fmt.Errorf("parsing entry body: %w", err)
	}

	s := EntryStructure{
		Days:  []string{},
		Files: []string{},
	}
	doc.Find("div.labii-day span.labii-day-label").Each(func(_ int, sel *goquery.Selection) {
		s.Days = append(s.Days, sel.Text())
	})
	doc.Find("section.labii-file").Each(func(_ int, sel *goquery.Selection) {
		s.Files = append(s.Files, sel.AttrOr("name", ""))
	})
	s.Paragraphs = doc.Find("p").Length()
	s.CodeBlocks = doc.Find("pre").Length()
	s.Tables = doc.Find("table").Length()
	s.Rows = doc.Find("tr").Length()
	return s, nil
}
