package agent

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/nao1215/prodscout/internal/model"
	"github.com/nao1215/prodscout/internal/ratelimit"
	"github.com/nao1215/prodscout/internal/scrape"
)

const productPage = `<html><head><title>Widget Pro</title>
<meta name="description" content="A widget for professionals"></head>
<body><h1>Widget Pro</h1><p>Price: $19.99</p><script>track()</script></body></html>`

type validatorFunc func(ctx context.Context, rawURL string) error

func (f validatorFunc) Validate(ctx context.Context, rawURL string) error {
	return f(ctx, rawURL)
}

// fakeFetcher returns the queued results in order, repeating the last one.
type fakeFetcher struct {
	mu      sync.Mutex
	results []fetchResult
	calls   int
}

type fetchResult struct {
	resp *scrape.Response
	err  error
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (*scrape.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.results[min(f.calls, len(f.results)-1)]
	f.calls++
	if r.resp != nil {
		r.resp.URL = rawURL
	}
	return r.resp, r.err
}

func (f *fakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func page(mediaType, body string) *scrape.Response {
	return &scrape.Response{
		StatusCode:    200,
		ContentType:   mediaType,
		MediaType:     mediaType,
		Body:          []byte(body),
		ContentLength: int64(len(body)),
	}
}

func TestWebScrapingAgent(t *testing.T) {
	t.Parallel()

	t.Run("scrapes a product page", func(t *testing.T) {
		t.Parallel()

		fetcher := &fakeFetcher{results: []fetchResult{{resp: page("text/html", productPage)}}}
		a := NewWebScrapingAgent(nil, fetcher, nil, nil)

		out := a.Execute(context.Background(), WebScrapingInput{URL: "https://example.com/widget"})
		if !out.Success {
			t.Fatalf("expected success, got %q", out.Error)
		}
		if out.ContentType != model.ContentTypeMarkup {
			t.Errorf("expected markup, got %s", out.ContentType)
		}
		if !strings.Contains(out.Content, "Widget Pro") || !strings.Contains(out.Content, "$19.99") {
			t.Errorf("unexpected content %q", out.Content)
		}
		if strings.Contains(out.Content, "track") {
			t.Errorf("expected scripts to be removed, got %q", out.Content)
		}
		if out.Metadata.Title != "Widget Pro" {
			t.Errorf("expected title Widget Pro, got %q", out.Metadata.Title)
		}
		if out.ContentHash != model.HashContent(out.Content) {
			t.Errorf("expected hash of the content, got %q", out.ContentHash)
		}
	})

	t.Run("rejects invalid urls without fetching", func(t *testing.T) {
		t.Parallel()

		for _, u := range []string{"", "ftp://example.com", "not a url"} {
			fetcher := &fakeFetcher{results: []fetchResult{{resp: page("text/plain", "x")}}}
			out := NewWebScrapingAgent(nil, fetcher, nil, nil).Execute(context.Background(), WebScrapingInput{URL: u})
			if out.Success {
				t.Errorf("%q: expected failure", u)
			}
			if !errors.Is(out.Err, ErrInvalidInput) {
				t.Errorf("%q: expected ErrInvalidInput, got %v", u, out.Err)
			}
			if fetcher.Calls() != 0 {
				t.Errorf("%q: expected no fetch", u)
			}
		}
	})

	t.Run("stops on an unreachable url", func(t *testing.T) {
		t.Parallel()

		fetcher := &fakeFetcher{results: []fetchResult{{resp: page("text/plain", "x")}}}
		validator := validatorFunc(func(context.Context, string) error {
			return scrape.ErrURLUnreachable
		})
		out := NewWebScrapingAgent(validator, fetcher, nil, nil).Execute(context.Background(), WebScrapingInput{URL: "https://example.com"})
		if !errors.Is(out.Err, scrape.ErrURLUnreachable) {
			t.Errorf("expected ErrURLUnreachable, got %v", out.Err)
		}
		if fetcher.Calls() != 0 {
			t.Error("expected no fetch")
		}
	})

	t.Run("retries a rate limited fetch", func(t *testing.T) {
		t.Parallel()

		m, clock := newTestManager()
		fetcher := &fakeFetcher{results: []fetchResult{
			{err: &scrape.StatusError{StatusCode: 429, Message: "Too Many Requests"}},
			{resp: page("text/plain", "Widget Pro is great")},
		}}
		a := NewWebScrapingAgent(nil, fetcher, nil, nil, WithRateLimit(m, ratelimit.DefaultPolicy()))

		out := a.Execute(context.Background(), WebScrapingInput{URL: "https://example.com"})
		if !out.Success {
			t.Fatalf("expected success, got %q", out.Error)
		}
		if out.Content != "Widget Pro is great" {
			t.Errorf("unexpected content %q", out.Content)
		}
		if fetcher.Calls() != 2 {
			t.Errorf("expected 2 fetches, got %d", fetcher.Calls())
		}
		if n := len(clock.Sleeps()); n != 1 {
			t.Errorf("expected 1 backoff, got %d", n)
		}
	})

	t.Run("does not retry other statuses", func(t *testing.T) {
		t.Parallel()

		m, _ := newTestManager()
		fetcher := &fakeFetcher{results: []fetchResult{{err: &scrape.StatusError{StatusCode: 404, Message: "Not Found"}}}}
		a := NewWebScrapingAgent(nil, fetcher, nil, nil, WithRateLimit(m, ratelimit.DefaultPolicy()))

		out := a.Execute(context.Background(), WebScrapingInput{URL: "https://example.com"})
		var statusErr *scrape.StatusError
		if !errors.As(out.Err, &statusErr) || statusErr.StatusCode != 404 {
			t.Errorf("expected a 404 StatusError, got %v", out.Err)
		}
		if fetcher.Calls() != 1 {
			t.Errorf("expected 1 fetch, got %d", fetcher.Calls())
		}
	})

	t.Run("reports classification and sanitization failures", func(t *testing.T) {
		t.Parallel()

		tests := []struct {
			name string
			resp *scrape.Response
			want string
		}{
			{name: "empty body", resp: page("text/plain", ""), want: "empty response data"},
			{name: "nothing left after sanitizing", resp: page("text/plain", "@@@ ###"), want: scrape.ErrEmptyAfterSanitization},
		}
		for _, tt := range tests {
			fetcher := &fakeFetcher{results: []fetchResult{{resp: tt.resp}}}
			out := NewWebScrapingAgent(nil, fetcher, nil, nil).Execute(context.Background(), WebScrapingInput{URL: "https://example.com"})
			if out.Success {
				t.Errorf("%s: expected failure", tt.name)
				continue
			}
			if !strings.Contains(out.Error, tt.want) {
				t.Errorf("%s: expected error containing %q, got %q", tt.name, tt.want, out.Error)
			}
		}
	})
}
