package render

import (
	"github.com/gaurav-prasanna/labmigrate/core"
)

// HTMLRenderer writes the entry body as-is, wrapped in a minimal document.
type HTMLRenderer struct{}

// NewHTMLRenderer creates an HTMLRenderer.
func NewHTMLRenderer() *HTMLRenderer {
	return &HTMLRenderer{}
}

// Render returns a standalone HTML page holding the entry body.
func (r *HTMLRenderer) Render(entry core.EntryRequest) ([]byte, error) {
	page := "<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>" +
		escapeText(entry.Name) + "</title></head>" + entry.Data + "</html>\n"
	return []byte(page), nil
}

// Extension returns the file extension for HTML output. It differs from
// ".html" so a preview never looks like an export input.
func (r *HTMLRenderer) Extension() string {
	return ".preview.html"
}
