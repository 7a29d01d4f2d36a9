package ratelimit

import (
	"errors"
	"fmt"
	"strings"
)

// ErrRetriesExhausted matches every RetriesExhaustedError.
var ErrRetriesExhausted = errors.New("rate limit retries exhausted")

// ErrInvalidURL is returned by CheckDomain for URLs without a host.
var ErrInvalidURL = errors.New("invalid URL")

// RetriesExhaustedError is returned when an operation still fails with a
// rate limit error after the last permitted retry.
type RetriesExhaustedError struct {
	// Retries is the number of retries that were attempted.
	Retries int

	// Err is the last rate limit error.
	Err error
}

// Error implements error.
func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("rate limit exceeded after %d retries: %v", e.Retries, e.Err)
}

// Unwrap returns the last cause.
func (e *RetriesExhaustedError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrRetriesExhausted) report true.
func (e *RetriesExhaustedError) Is(target error) bool {
	return target == ErrRetriesExhausted
}

// StatusCoder is implemented by errors that carry an HTTP status code.
type StatusCoder interface {
	HTTPStatusCode() int
}

// ErrorCoder is implemented by errors that carry a machine-readable code,
// such as "rate_limit_exceeded".
type ErrorCoder interface {
	ErrorCode() string
}

// rateLimitCodes are error codes that identify a rate limit response.
var rateLimitCodes = map[string]bool{
	"rate_limit_exceeded": true,
	"rate_limited":        true,
	"too_many_requests":   true,
	"429":                 true,
}

// quotaCodes identify provider quota exhaustion, which is not retryable
// but is reported to clients like a rate limit.
var quotaCodes = map[string]bool{
	"insufficient_quota": true,
	"quota_exceeded":     true,
}

// IsRateLimitError reports whether err should be retried with backoff: an
// HTTP 429, a rate limit error code, or a message mentioning "rate limit".
// An exhausted retry error is never a rate limit error again, so nested
// retry wrappers do not multiply the attempts.
func IsRateLimitError(err error) bool {
	if err == nil || errors.Is(err, ErrRetriesExhausted) {
		return false
	}

	var sc StatusCoder
	if errors.As(err, &sc) && sc.HTTPStatusCode() == 429 {
		return true
	}

	var ec ErrorCoder
	if errors.As(err, &ec) && rateLimitCodes[strings.ToLower(ec.ErrorCode())] {
		return true
	}

	return strings.Contains(strings.ToLower(err.Error()), "rate limit")
}

// IsQuotaError reports whether err means the upstream refused service for
// capacity reasons: exhausted retries, a rate limit error or an exhausted
// provider quota. The HTTP API maps these to 503.
func IsQuotaError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRetriesExhausted) || IsRateLimitError(err) {
		return true
	}

	var ec ErrorCoder
	if errors.As(err, &ec) && quotaCodes[strings.ToLower(ec.ErrorCode())] {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "quota")
}
