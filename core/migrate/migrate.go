// Package migrate runs migrations over a batch of inputs.
// Every runner is sequential: one file (or record) is fully processed before
// the next one starts, and nothing is shared between files except the
// collaborators handed to the runner.
package migrate

import (
	"fmt"
	"strings"
)

// Policy decides what a batch does after one input fails.
type Policy int

const (
	// FailFast stops the batch at the first failing input. Inputs already
	// migrated have been archived, so a rerun resumes with what is left.
	FailFast Policy = iota
	// KeepGoing records the failure and continues with the next input.
	KeepGoing
)

// PolicyFor maps a keep-going flag to a Policy.
func PolicyFor(keepGoing bool) Policy {
	if keepGoing {
		return KeepGoing
	}
	return FailFast
}

// FileError ties a failure to the input that caused it.
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// Summary is the outcome of one batch.
type Summary struct {
	Total    int
	Migrated int
	Failed   []*FileError
}

// Err returns nil when every input migrated, otherwise a *BatchError.
func (s Summary) Err() error {
	if len(s.Failed) == 0 {
		return nil
	}
	return &BatchError{Total: s.Total, Failed: s.Failed}
}

// BatchError lists the inputs that failed in a KeepGoing batch.
type BatchError struct {
	Total  int
	Failed []*FileError
}

func (e *BatchError) Error() string {
	lines := make([]string, len(e.Failed))
	for i, f := range e.Failed {
		lines[i] = "  " + f.Error()
	}
	return fmt.Sprintf("%d/%d inputs failed:\n%s", len(e.Failed), e.Total, strings.Join(lines, "\n"))
}

func (e *BatchError) Unwrap() []error {
	errs := make([]error, len(e.Failed))
	for i, f := range e.Failed {
		errs[i] = f
	}
	return errs
}

// fail records err for path and reports whether the batch must stop.
func (s *Summary) fail(policy Policy, path string, err error) (*FileError, bool) {
	fe := &FileError{Path: path, Err: err}
	s.Failed = append(s.Failed, fe)
	return fe, policy == FailFast
}
