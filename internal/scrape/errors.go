package scrape

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidURL is returned for URLs that are not absolute http(s) URLs.
	ErrInvalidURL = errors.New("invalid URL")

	// ErrURLUnreachable is returned when the validation request fails.
	ErrURLUnreachable = errors.New("URL is unreachable")

	// ErrContentTooLarge is returned when a body exceeds the size limit.
	ErrContentTooLarge = errors.New("content too large")
)

// StatusError is returned when a server answers with an unexpected status.
type StatusError struct {
	StatusCode int
	Message    string
}

// Error implements error.
func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("unexpected status %d", e.StatusCode)
	}
	return fmt.Sprintf("unexpected status %d: %s", e.StatusCode, e.Message)
}

// HTTPStatusCode returns the status code. A 429 therefore classifies as a
// rate limit error.
func (e *StatusError) HTTPStatusCode() int {
	return e.StatusCode
}
