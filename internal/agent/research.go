package agent

import (
	"context"
	"strings"

	"github.com/nao1215/prodscout/internal/config"
	"github.com/nao1215/prodscout/internal/llm"
)

// CompetitiveResearchInput is the input of CompetitiveResearchAgent.
type CompetitiveResearchInput struct {
	URL         string `json:"url"`
	ProductInfo string `json:"productInfo"`
}

// CompetitiveResearchOutput holds the competitor descriptions.
type CompetitiveResearchOutput struct {
	Result
	CompetitorInfo string `json:"competitorInfo"`
}

// PageScraper re-scrapes a page for extra context.
type PageScraper interface {
	Execute(ctx context.Context, in WebScrapingInput) WebScrapingOutput
}

// CompetitiveResearchAgent describes the competitors of a product.
type CompetitiveResearchAgent struct {
	generator
	scraper      PageScraper
	contextLimit int
}

// ResearchOption configures a CompetitiveResearchAgent.
type ResearchOption func(*CompetitiveResearchAgent)

// WithContextScraper adds the product page, truncated to limit runes, to
// the research prompt. A non-positive limit selects the default.
func WithContextScraper(s PageScraper, limit int) ResearchOption {
	return func(a *CompetitiveResearchAgent) {
		a.scraper = s
		if limit > 0 {
			a.contextLimit = limit
		}
	}
}

// NewCompetitiveResearchAgent creates a CompetitiveResearchAgent.
func NewCompetitiveResearchAgent(gen llm.Generator, ropts []ResearchOption, opts ...Option) *CompetitiveResearchAgent {
	a := &CompetitiveResearchAgent{
		generator:    newGenerator(gen, ResearchTemperature, opts),
		contextLimit: config.DefaultResearchContextLimit,
	}
	for _, o := range ropts {
		o(a)
	}
	return a
}

type researchData struct {
	URL         string
	ProductInfo string
	Context     string
}

// Execute researches the competitors of the product described in
// in.ProductInfo.
func (a *CompetitiveResearchAgent) Execute(ctx context.Context, in CompetitiveResearchInput) CompetitiveResearchOutput {
	if strings.TrimSpace(in.ProductInfo) == "" {
		return CompetitiveResearchOutput{Result: invalidInput("product info is required")}
	}

	prompt, err := render(researchPrompt, researchData{
		URL:         in.URL,
		ProductInfo: in.ProductInfo,
		Context:     a.pageContext(ctx, in.URL),
	})
	if err != nil {
		return CompetitiveResearchOutput{Result: failed(err)}
	}

	info, err := a.generate(ctx, prompt)
	if err != nil {
		a.logger.Error("competitive research failed", "url", in.URL, "error", err)
		return CompetitiveResearchOutput{Result: failed(err)}
	}
	return CompetitiveResearchOutput{Result: succeeded(), CompetitorInfo: info}
}

// pageContext returns the start of the product page, or "" when it cannot
// be scraped.
func (a *CompetitiveResearchAgent) pageContext(ctx context.Context, url string) string {
	if a.scraper == nil || url == "" {
		return ""
	}
	out := a.scraper.Execute(ctx, WebScrapingInput{URL: url})
	if !out.Success {
		a.logger.Warn("ignoring failed context scrape", "url", url, "error", out.Error)
		return ""
	}
	return truncateRunes(out.Content, a.contextLimit)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
