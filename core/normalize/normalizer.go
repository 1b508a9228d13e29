// Package normalize implements the Normalizer interface.
// It rewrites the HTML of one exported Benchling entry into the markup Labii
// expects, running a fixed sequence of passes over a goquery document:
//
//  1. day separators → Labii day markers
//  2. text items → <p>
//  3. code items → <pre><code>
//  4. file items → uploaded Labii file sections
//  5. duplicated table axis labels → first label only
//  6. <style> removal
//  7. filler table wrapper removal
//  8. empty row pruning on large tables
//
// The order matters and must not change: attachment resolution depends on the
// structure left by passes 1 to 3, and the table passes run on final content.
package normalize

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/labmigrate/core"
)

// LargeTableThreshold is the row count above which empty rows are pruned.
const LargeTableThreshold = 500

// EntryNormalizer converts Benchling entry HTML into Labii entry HTML.
type EntryNormalizer struct {
	uploader  core.Uploader
	projects  []core.ProjectRef
	threshold int
	logger    *slog.Logger
}

// Option configures an EntryNormalizer.
type Option func(*EntryNormalizer)

// WithLogger sets the logger used for pass diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(n *EntryNormalizer) { n.logger = l }
}

// WithLargeTableThreshold overrides LargeTableThreshold.
func WithLargeTableThreshold(rows int) Option {
	return func(n *EntryNormalizer) { n.threshold = rows }
}

// New creates an EntryNormalizer. Attachments are uploaded through uploader
// and attached to projects.
func New(uploader core.Uploader, projects []core.ProjectRef, opts ...Option) *EntryNormalizer {
	n := &EntryNormalizer{
		uploader:  uploader,
		projects:  projects,
		threshold: LargeTableThreshold,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Normalize runs every pass over doc and returns the serialized <body>.
// Any error aborts the whole document; nothing partial is returned.
func (n *EntryNormalizer) Normalize(ctx context.Context, doc core.Document) (core.NormalizedEntry, error) {
	dom, err := goquery.NewDocumentFromReader(strings.NewReader(doc.HTML))
	if err != nil {
		return core.NormalizedEntry{}, fmt.Errorf("parsing HTML: %w", err)
	}

	if err := rewriteDayMarkers(dom); err != nil {
		return core.NormalizedEntry{}, err
	}
	rewriteTextItems(dom)
	rewriteCodeItems(dom)

	attachments, err := n.rewriteAttachments(ctx, dom, doc.Path)
	if err != nil {
		return core.NormalizedEntry{}, err
	}

	dedupeAxisLabels(dom)
	removeStyleTags(dom)
	removeTableWrappers(dom)
	pruned := pruneEmptyRows(dom, n.threshold)
	for _, t := range pruned {
		if t.Deleted > 0 {
			n.logger.Info("deleted empty rows", "file", doc.Path, "table", t.Index, "rows", t.Rows, "deleted", t.Deleted)
		}
	}

	body, err := goquery.OuterHtml(dom.Find("body").First())
	if err != nil {
		return core.NormalizedEntry{}, fmt.Errorf("serializing body: %w", err)
	}

	return core.NormalizedEntry{
		Body:         body,
		Attachments:  attachments,
		PrunedTables: pruned,
	}, nil
}
