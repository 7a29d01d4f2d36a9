package scrape

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/html/charset"

	"github.com/nao1215/prodscout/internal/config"
	"github.com/nao1215/prodscout/internal/log"
	"github.com/nao1215/prodscout/internal/metrics"
)

// DomainThrottle admits outgoing requests per domain.
// *ratelimit.Manager satisfies it.
type DomainThrottle interface {
	CheckDomain(ctx context.Context, rawURL string) error
}

// Response is a successful fetch with the body decoded to UTF-8.
type Response struct {
	URL           string
	StatusCode    int
	ContentType   string
	MediaType     string
	Body          []byte
	ContentLength int64
	LastModified  string
}

// Fetcher downloads pages.
type Fetcher struct {
	client           *http.Client
	timeout          time.Duration
	maxContentLength int64
	userAgents       *rotator[string]
	proxies          *proxyRotator
	throttle         DomainThrottle
	logger           *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithFetchTimeout sets the per-request timeout.
func WithFetchTimeout(d time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if d > 0 {
			f.timeout = d
		}
	}
}

// WithMaxContentLength sets the body size limit in bytes.
func WithMaxContentLength(n int64) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.maxContentLength = n
		}
	}
}

// WithUserAgents replaces the user agent pool. An empty pool keeps the default.
func WithUserAgents(agents []string) FetcherOption {
	return func(f *Fetcher) {
		if len(agents) > 0 {
			f.userAgents = newRotator(agents)
		}
	}
}

// WithProxies sets the rotating proxy pool.
func WithProxies(proxies []*url.URL) FetcherOption {
	return func(f *Fetcher) {
		f.proxies = newRotator(proxies)
	}
}

// WithThrottle makes every fetch pass the domain throttle first.
func WithThrottle(t DomainThrottle) FetcherOption {
	return func(f *Fetcher) {
		f.throttle = t
	}
}

// WithFetcherLogger sets the logger.
func WithFetcherLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		if logger != nil {
			f.logger = logger
		}
	}
}

type proxyKey struct{}

// NewFetcher creates a Fetcher. Without options it uses a 5 second timeout,
// a 10,000,000 byte limit, the default user agents and no proxy.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		timeout:          config.DefaultFetchTimeout,
		maxContentLength: config.DefaultMaxContentLength,
		userAgents:       newRotator(DefaultUserAgents),
		proxies:          newRotator[*url.URL](nil),
		logger:           log.Discard(),
	}
	for _, opt := range opts {
		opt(f)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = proxyFromContext
	f.client = &http.Client{
		Transport: transport,
		Timeout:   f.timeout,
	}
	return f
}

// proxyFromContext returns the proxy chosen for the request by Fetch.
func proxyFromContext(req *http.Request) (*url.URL, error) {
	if proxy, ok := req.Context().Value(proxyKey{}).(*url.URL); ok {
		return proxy, nil
	}
	return nil, nil
}

// Fetch GETs rawURL. Only a 200 response is a success; other statuses are
// returned as *StatusError.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (*Response, error) {
	if _, err := ParseURL(rawURL); err != nil {
		return nil, err
	}

	if f.throttle != nil {
		if err := f.throttle.CheckDomain(ctx, rawURL); err != nil {
			return nil, fmt.Errorf("failed to scrape %s: %w", rawURL, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	attrs := []any{"url", rawURL}
	if proxy, ok := f.proxies.Next(); ok {
		ctx = context.WithValue(ctx, proxyKey{}, proxy)
		attrs = append(attrs, "proxy", proxy)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	ua, _ := f.userAgents.Next()
	req.Header.Set("User-Agent", ua)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("DNT", "1")

	f.logger.Debug("fetching page", attrs...)

	resp, err := f.client.Do(req)
	if err != nil {
		metrics.ObserveFetch(0)
		return nil, fmt.Errorf("failed to scrape %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	metrics.ObserveFetch(resp.StatusCode)
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Message:    http.StatusText(resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxContentLength+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rawURL, err)
	}
	if int64(len(body)) > f.maxContentLength {
		return nil, fmt.Errorf("%w: %s exceeds %d bytes", ErrContentTooLarge, rawURL, f.maxContentLength)
	}

	contentType := resp.Header.Get("Content-Type")
	mediaType := parseMediaType(contentType)

	contentLength := resp.ContentLength
	if contentLength < 0 {
		contentLength = int64(len(body))
	}

	return &Response{
		URL:           rawURL,
		StatusCode:    resp.StatusCode,
		ContentType:   contentType,
		MediaType:     mediaType,
		Body:          decodeBody(body, contentType, mediaType),
		ContentLength: contentLength,
		LastModified:  resp.Header.Get("Last-Modified"),
	}, nil
}

// parseMediaType returns the lower-case media type of a Content-Type header.
func parseMediaType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType, _, _ = strings.Cut(contentType, ";")
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

// decodeBody converts textual bodies to UTF-8 using the declared charset,
// falling back to sniffing for HTML. Undecodable bodies are returned as is.
func decodeBody(body []byte, contentType, mediaType string) []byte {
	if len(body) == 0 || !isTextual(mediaType) {
		return body
	}
	r, err := charset.NewReader(bytes.NewReader(body), contentType)
	if err != nil {
		return body
	}
	decoded, err := io.ReadAll(r)
	if err != nil {
		return body
	}
	return decoded
}

func isTextual(mediaType string) bool {
	switch {
	case mediaType == "":
		return true
	case strings.HasPrefix(mediaType, "text/"):
		return true
	case isJSON(mediaType), isMarkup(mediaType):
		return true
	case strings.HasSuffix(mediaType, "+xml"), mediaType == "application/xml":
		return true
	}
	return false
}
