package glofs

import "fmt"

// APIError reports a non-2xx response from a GLOFS endpoint. The status code
// and response body are preserved so callers can decide how to react; the
// client itself never retries.
type APIError struct {
	Endpoint   string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("glofs: %s failed: status %d: %s", e.Endpoint, e.StatusCode, e.Body)
}
