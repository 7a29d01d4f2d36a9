package agent

import (
	"context"
	"errors"
	"fmt"

	"github.com/nao1215/prodscout/internal/model"
	"github.com/nao1215/prodscout/internal/scrape"
)

// URLValidator checks that a URL is reachable.
type URLValidator interface {
	Validate(ctx context.Context, rawURL string) error
}

// PageFetcher downloads a page.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*scrape.Response, error)
}

// WebScrapingInput is the input of WebScrapingAgent.
type WebScrapingInput struct {
	URL string `json:"url"`
}

// WebScrapingOutput is the sanitized page.
type WebScrapingOutput struct {
	Result
	Content     string            `json:"content"`
	ContentType model.ContentType `json:"contentType"`
	Metadata    model.Metadata    `json:"metadata"`
	ContentHash string            `json:"contentHash"`
}

// WebScrapingAgent validates, fetches, classifies and sanitizes a page.
type WebScrapingAgent struct {
	validator  URLValidator
	fetcher    PageFetcher
	classifier *scrape.Classifier
	sanitizer  *scrape.Sanitizer
	options
}

// NewWebScrapingAgent creates a WebScrapingAgent. A nil validator skips
// the reachability check.
func NewWebScrapingAgent(validator URLValidator, fetcher PageFetcher, classifier *scrape.Classifier, sanitizer *scrape.Sanitizer, opts ...Option) *WebScrapingAgent {
	if classifier == nil {
		classifier = scrape.NewClassifier(0)
	}
	if sanitizer == nil {
		sanitizer = scrape.NewSanitizer()
	}
	return &WebScrapingAgent{
		validator:  validator,
		fetcher:    fetcher,
		classifier: classifier,
		sanitizer:  sanitizer,
		options:    newOptions(opts),
	}
}

// Execute scrapes in.URL.
func (a *WebScrapingAgent) Execute(ctx context.Context, in WebScrapingInput) WebScrapingOutput {
	if in.URL == "" {
		return WebScrapingOutput{Result: invalidInput("url is required")}
	}
	if _, err := scrape.ParseURL(in.URL); err != nil {
		return WebScrapingOutput{Result: failed(fmt.Errorf("%w: %w", ErrInvalidInput, err))}
	}

	if a.validator != nil {
		if err := a.validator.Validate(ctx, in.URL); err != nil {
			a.logger.Warn("url validation failed", "url", in.URL, "error", err)
			return WebScrapingOutput{Result: failed(err)}
		}
	}

	var out WebScrapingOutput
	err := a.retry(ctx, func(ctx context.Context) error {
		resp, err := a.fetcher.Fetch(ctx, in.URL)
		if err != nil {
			return err
		}

		scraped := a.classifier.Classify(resp)
		if !scraped.Success {
			return fmt.Errorf("failed to classify %s: %w", in.URL, errors.New(scraped.Error))
		}

		clean := a.sanitizer.Sanitize(scraped.Content, scraped.ContentType)
		if !clean.Success {
			return fmt.Errorf("failed to sanitize %s: %w", in.URL, errors.New(clean.Error))
		}

		out = WebScrapingOutput{
			Result:      succeeded(),
			Content:     clean.Content,
			ContentType: scraped.ContentType,
			Metadata:    scraped.Metadata,
			ContentHash: model.HashContent(clean.Content),
		}
		return nil
	})
	if err != nil {
		a.logger.Error("web scraping failed", "url", in.URL, "error", err)
		return WebScrapingOutput{Result: failed(err)}
	}

	a.logger.Debug("page scraped", "url", in.URL, "content_type", out.ContentType, "bytes", len(out.Content))
	return out
}
