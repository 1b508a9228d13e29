package labii

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gaurav-prasanna/labmigrate/core"
)

// Upload stores the file at path and shares it with projects.
// The body is streamed so large attachments are never held in memory.
func (c *Client) Upload(ctx context.Context, path string, projects []core.ProjectRef) (core.FileRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return core.FileRecord{}, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	projectsJSON, err := json.Marshal(projects)
	if err != nil {
		return core.FileRecord{}, fmt.Errorf("marshaling projects: %w", err)
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		pw.CloseWithError(writeUploadForm(mw, f, filepath.Base(path), projectsJSON))
	}()

	req, err := c.newRequest(ctx, http.MethodPost, c.orgPath("files", "upload"), nil, pr)
	if err != nil {
		pr.Close()
		return core.FileRecord{}, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var rec core.FileRecord
	if err := c.do(req, &rec); err != nil {
		pr.Close()
		return core.FileRecord{}, fmt.Errorf("uploading %s: %w", path, err)
	}
	return rec, nil
}

func writeUploadForm(mw *multipart.Writer, r io.Reader, name string, projects []byte) error {
	if err := mw.WriteField("name", name); err != nil {
		return err
	}
	if err := mw.WriteField("projects", string(projects)); err != nil {
		return err
	}
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(part, r); err != nil {
		return err
	}
	return mw.Close()
}
