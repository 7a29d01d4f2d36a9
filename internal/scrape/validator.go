package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/nao1215/prodscout/internal/config"
)

// ParseURL accepts absolute http and https URLs with a host.
func ParseURL(rawURL string) (*url.URL, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("%w: empty URL", ErrInvalidURL)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host in %q", ErrInvalidURL, rawURL)
	}
	return u, nil
}

// Validator checks that a product URL exists before it is scraped.
type Validator struct {
	client  *http.Client
	timeout time.Duration
}

// NewValidator creates a Validator with the given timeout. A non-positive
// timeout selects the 5 second default.
func NewValidator(timeout time.Duration) *Validator {
	if timeout <= 0 {
		timeout = config.DefaultFetchTimeout
	}
	return &Validator{
		client:  &http.Client{Timeout: timeout},
		timeout: timeout,
	}
}

// Validate parses rawURL and sends a HEAD request. Any status below 400
// counts as reachable.
func (v *Validator) Validate(ctx context.Context, rawURL string) error {
	if _, err := ParseURL(rawURL); err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrURLUnreachable, err)
	}
	resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%w: %w", ErrURLUnreachable, &StatusError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		})
	}
	return nil
}
