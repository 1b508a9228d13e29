// Package render provides dry-run preview renderers for labmigrate.
// This file implements the Markdown renderer, which converts the normalized
// entry body with html-to-markdown. Labii-specific nodes (day markers, file
// sections) are turned into plain HTML first so they survive conversion.
package render

import (
	"fmt"
	"strings"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/labmigrate/core"
)

// MarkdownRenderer converts entry HTML to Markdown.
type MarkdownRenderer struct{}

// NewMarkdownRenderer creates a MarkdownRenderer.
func NewMarkdownRenderer() *MarkdownRenderer {
	return &MarkdownRenderer{}
}

// Render returns the entry as a Markdown document titled with its name.
func (r *MarkdownRenderer) Render(entry core.EntryRequest) ([]byte, error) {
	md, err := ToMarkdown(entry.Data)
	if err != nil {
		return nil, err
	}
	return []byte("# " + entry.Name + "\n\n" + md + "\n"), nil
}

// Extension returns the file extension for Markdown output.
func (r *MarkdownRenderer) Extension() string {
	return ".md"
}

// ToMarkdown converts a normalized entry body into Markdown.
func ToMarkdown(body string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parsing entry body: %w", err)
	}

	doc.Find("div.labii-day").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml("<h2>" + escapeText(s.Text()) + "</h2>")
	})
	doc.Find("section.labii-file").Each(func(_ int, s *goquery.Selection) {
		s.ReplaceWithHtml("<p>[file] " + escapeText(s.AttrOr("name", "")) + "</p>")
	})

	html, err := doc.Find("body").First().Html()
	if err != nil {
		return "", fmt.Errorf("serializing entry body: %w", err)
	}

	markdown, err := htmltomarkdown.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("converting HTML to markdown: %w", err)
	}
	return strings.TrimSpace(markdown), nil
}

var textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")

func escapeText(s string) string {
	return textEscaper.Replace(s)
}
