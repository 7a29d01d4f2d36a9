package pipeline

import (
	"fmt"
	"log/slog"

	"github.com/nao1215/prodscout/internal/agent"
	"github.com/nao1215/prodscout/internal/config"
	"github.com/nao1215/prodscout/internal/llm"
	"github.com/nao1215/prodscout/internal/ratelimit"
	"github.com/nao1215/prodscout/internal/scrape"
)

// NewAgents wires the stage agents from cfg. A nil limiter is replaced by
// a manager built from cfg.RateLimit. Every network call of the
// agents goes through limiter: page fetches are throttled per domain and
// both fetches and model calls are retried on rate limit errors.
func NewAgents(cfg *config.Config, gen llm.Generator, limiter *ratelimit.Manager, logger *slog.Logger) (Agents, error) {
	if limiter == nil {
		limiter = ratelimit.NewManager(
			ratelimit.WithWindow(cfg.RateLimit.Window),
			ratelimit.WithBudget(cfg.RateLimit.Budget),
			ratelimit.WithLogger(logger),
		)
	}

	splitter, err := agent.NewTextSplitter(cfg.Splitter.ChunkSize, cfg.Splitter.ChunkOverlap)
	if err != nil {
		return Agents{}, fmt.Errorf("failed to create text splitter: %w", err)
	}

	fetcher := scrape.NewFetcher(
		scrape.WithFetchTimeout(cfg.Fetch.Timeout),
		scrape.WithMaxContentLength(cfg.Fetch.MaxContentLength),
		scrape.WithUserAgents(cfg.Fetch.UserAgents),
		scrape.WithProxies(cfg.ProxyURLs()),
		scrape.WithThrottle(limiter),
		scrape.WithFetcherLogger(logger),
	)

	opts := []agent.Option{
		agent.WithRateLimit(limiter, ratelimit.PolicyFromConfig(cfg.RateLimit)),
		agent.WithLogger(logger),
	}

	scraper := agent.NewWebScrapingAgent(
		scrape.NewValidator(cfg.Fetch.Timeout),
		fetcher,
		scrape.NewClassifier(int(cfg.Fetch.MaxContentLength)),
		scrape.NewSanitizer(),
		opts...,
	)

	return Agents{
		Scraper:   scraper,
		Ingester:  agent.NewDocumentIngestionAgent(splitter, opts...),
		Extractor: agent.NewInformationExtractionAgent(gen, opts...),
		Researcher: agent.NewCompetitiveResearchAgent(gen,
			[]agent.ResearchOption{agent.WithContextScraper(scraper, cfg.ResearchContextLimit)},
			opts...,
		),
		Comparer: agent.NewAnalysisComparisonAgent(gen, opts...),
		Reporter: agent.NewReportGenerationAgent(gen, opts...),
	}, nil
}
