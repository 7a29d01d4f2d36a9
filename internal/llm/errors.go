package llm

import (
	"errors"
	"fmt"
)

// ErrEmptyCompletion is returned when the model returns no text.
var ErrEmptyCompletion = errors.New("empty completion")

// APIError is a non-success response from the model API.
type APIError struct {
	StatusCode int
	Code       string
	Type       string
	Message    string
}

// Error implements error.
func (e *APIError) Error() string {
	code := e.Code
	if code == "" {
		code = e.Type
	}
	if code == "" {
		return fmt.Sprintf("llm api error (status %d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("llm api error (status %d, %s): %s", e.StatusCode, code, e.Message)
}

// HTTPStatusCode returns the HTTP status of the response.
func (e *APIError) HTTPStatusCode() int {
	return e.StatusCode
}

// ErrorCode returns the machine-readable error code, falling back to the
// error type.
func (e *APIError) ErrorCode() string {
	if e.Code != "" {
		return e.Code
	}
	return e.Type
}

// Temporary reports whether the request may succeed when sent again
// unchanged by the client itself. Rate limits are excluded.
func (e *APIError) Temporary() bool {
	return e.StatusCode >= 500 || e.StatusCode == 408
}
