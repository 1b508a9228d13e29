package normalize

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gaurav-prasanna/labmigrate/core"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// fileItem is a file node whose on-disk path has been resolved.
type fileItem struct {
	sel  *goquery.Selection
	name string
	path string
}

// AttachmentPath returns where the export placed the nth (1-based) file named
// name that belongs to the entry at docPath. Benchling writes "<entry> <name>"
// for the first occurrence and "<entry> <stem> <n><ext>" for repeats.
func AttachmentPath(docPath, name string, n int) string {
	base := strings.TrimSuffix(docPath, ".html")
	if n <= 1 {
		return base + " " + name
	}
	ext := filepath.Ext(name)
	return base + " " + strings.TrimSuffix(name, ext) + " " + strconv.Itoa(n) + ext
}

// FileSection builds the Labii file reference for an uploaded record, labelled
// with its display name ("UID: name").
func FileSection(rec core.FileRecord) *html.Node {
	return LabelledFileSection(rec, rec.DisplayName())
}

// LabelledFileSection builds the Labii file reference for rec under label.
func LabelledFileSection(rec core.FileRecord, label string) *html.Node {
	return element(atom.Section, attrs(
		"class", "labii-file",
		"sid", rec.SID,
		"name", label,
		"version", rec.Version.SID,
		"should_hide_preview", "false",
	))
}

// resolveFileItems finds every file item and checks its file exists. The
// occurrence counter lives only for this call.
func resolveFileItems(dom *goquery.Document, docPath string) ([]fileItem, error) {
	seen := make(map[string]int)
	var items []fileItem
	var err error

	dom.Find("div.mediocre-item").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		nameSel := s.Find("div.note-itemName").FilterFunction(func(_ int, n *goquery.Selection) bool {
			return n.Closest("div.mediocre-item").IsSelection(s)
		}).First()
		if nameSel.Length() == 0 {
			return true
		}
		name := strings.TrimSpace(nameSel.Text())
		seen[name]++
		path := AttachmentPath(docPath, name, seen[name])
		if _, statErr := os.Stat(path); statErr != nil {
			err = &MissingAttachmentError{Document: docPath, Name: name, Path: path, Err: statErr}
			return false
		}
		items = append(items, fileItem{sel: s, name: name, path: path})
		return true
	})
	if err != nil {
		return nil, err
	}
	return items, nil
}

// rewriteAttachments resolves all file items before uploading any of them, so a
// missing file never leaves orphaned uploads behind.
func (n *EntryNormalizer) rewriteAttachments(ctx context.Context, dom *goquery.Document, docPath string) ([]core.Attachment, error) {
	items, err := resolveFileItems(dom, docPath)
	if err != nil {
		return nil, err
	}
	if len(items) > 0 && n.uploader == nil {
		return nil, fmt.Errorf("%s references %d files but no uploader is configured", docPath, len(items))
	}

	attachments := make([]core.Attachment, 0, len(items))
	for _, item := range items {
		rec, err := n.uploader.Upload(ctx, item.path, n.projects)
		if err != nil {
			return nil, fmt.Errorf("uploading %s: %w", item.path, err)
		}
		if rec.SID == "" || rec.Version.SID == "" {
			return nil, fmt.Errorf("uploading %s: response carries no file or version sid", item.path)
		}
		n.logger.Debug("uploaded attachment", "file", item.path, "sid", rec.SID)
		item.sel.ReplaceWithNodes(FileSection(rec))
		attachments = append(attachments, core.Attachment{LocalPath: item.path, Record: rec})
	}
	return attachments, nil
}
