package labii

import "fmt"

// APIError is a non-2xx response from Labii.
type APIError struct {
	Method     string
	Path       string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("labii %s %s returned %d: %s", e.Method, e.Path, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("labii %s %s returned %d", e.Method, e.Path, e.StatusCode)
}
