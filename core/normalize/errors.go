package normalize

import "fmt"

// DateError is returned when a day separator does not hold a "Weekday, MM/DD/YYYY" date.
type DateError struct {
	Text string
	Err  error
}

func (e *DateError) Error() string {
	return fmt.Sprintf("unexpected day separator date %q: %v", e.Text, e.Err)
}

func (e *DateError) Unwrap() error {
	return e.Err
}

// MissingAttachmentError is returned when a file item has no matching file on disk.
type MissingAttachmentError struct {
	Document string
	Name     string
	Path     string
	Err      error
}

func (e *MissingAttachmentError) Error() string {
	return fmt.Sprintf("file %q referenced by %s not found at %s", e.Name, e.Document, e.Path)
}

func (e *MissingAttachmentError) Unwrap() error {
	return e.Err
}
