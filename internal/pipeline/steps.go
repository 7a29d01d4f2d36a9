package pipeline

import (
	"context"

	"github.com/nao1215/prodscout/internal/agent"
	"github.com/nao1215/prodscout/internal/model"
)

// Scraper is the web scraping agent.
type Scraper interface {
	Execute(ctx context.Context, in agent.WebScrapingInput) agent.WebScrapingOutput
}

// Ingester is the document ingestion agent.
type Ingester interface {
	Execute(ctx context.Context, in agent.DocumentIngestionInput) agent.DocumentIngestionOutput
}

// Extractor is the information extraction agent.
type Extractor interface {
	Execute(ctx context.Context, in agent.InformationExtractionInput) agent.InformationExtractionOutput
}

// Researcher is the competitive research agent.
type Researcher interface {
	Execute(ctx context.Context, in agent.CompetitiveResearchInput) agent.CompetitiveResearchOutput
}

// Comparer is the analysis comparison agent.
type Comparer interface {
	Execute(ctx context.Context, in agent.AnalysisComparisonInput) agent.AnalysisComparisonOutput
}

// Reporter is the report generation agent.
type Reporter interface {
	Execute(ctx context.Context, in agent.ReportGenerationInput) agent.ReportGenerationOutput
}

// ScrapeStep fetches and sanitizes the product page.
type ScrapeStep struct {
	agent Scraper
}

// NewScrapeStep creates a ScrapeStep.
func NewScrapeStep(a Scraper) *ScrapeStep {
	return &ScrapeStep{agent: a}
}

// Name returns the stage name.
func (s *ScrapeStep) Name() string {
	return model.StageWebScraping
}

// Do scrapes analysis.URL.
func (s *ScrapeStep) Do(ctx context.Context, analysis *model.Analysis) error {
	out := s.agent.Execute(ctx, agent.WebScrapingInput{URL: analysis.URL})
	if err := out.Failure(); err != nil {
		return err
	}
	return analysis.SetScrapedContent(out.Content, out.ContentType, out.Metadata)
}

// IngestStep splits the scraped text into documents.
type IngestStep struct {
	agent Ingester
}

// NewIngestStep creates an IngestStep.
func NewIngestStep(a Ingester) *IngestStep {
	return &IngestStep{agent: a}
}

// Name returns the stage name.
func (s *IngestStep) Name() string {
	return model.StageDocumentIngestion
}

// Do splits analysis.ScrapedContent.
func (s *IngestStep) Do(ctx context.Context, analysis *model.Analysis) error {
	out := s.agent.Execute(ctx, agent.DocumentIngestionInput{
		URL:     analysis.URL,
		RawText: analysis.ScrapedContent,
	})
	if err := out.Failure(); err != nil {
		return err
	}
	return analysis.SetDocuments(out.Documents)
}

// ExtractStep extracts product facts from the documents.
type ExtractStep struct {
	agent Extractor
}

// NewExtractStep creates an ExtractStep.
func NewExtractStep(a Extractor) *ExtractStep {
	return &ExtractStep{agent: a}
}

// Name returns the stage name.
func (s *ExtractStep) Name() string {
	return model.StageInformationExtraction
}

// Do extracts analysis.ProductInfo.
func (s *ExtractStep) Do(ctx context.Context, analysis *model.Analysis) error {
	out := s.agent.Execute(ctx, agent.InformationExtractionInput{
		URL:       analysis.URL,
		Documents: analysis.Documents,
	})
	if err := out.Failure(); err != nil {
		return err
	}
	return analysis.SetProductInfo(out.ProductInfo)
}

// ResearchStep describes the competitors.
type ResearchStep struct {
	agent Researcher
}

// NewResearchStep creates a ResearchStep.
func NewResearchStep(a Researcher) *ResearchStep {
	return &ResearchStep{agent: a}
}

// Name returns the stage name.
func (s *ResearchStep) Name() string {
	return model.StageCompetitiveResearch
}

// Do researches analysis.CompetitorInfo.
func (s *ResearchStep) Do(ctx context.Context, analysis *model.Analysis) error {
	out := s.agent.Execute(ctx, agent.CompetitiveResearchInput{
		URL:         analysis.URL,
		ProductInfo: analysis.ProductInfo,
	})
	if err := out.Failure(); err != nil {
		return err
	}
	return analysis.SetCompetitorInfo(out.CompetitorInfo)
}

// CompareStep compares the product with its competitors.
type CompareStep struct {
	agent Comparer
}

// NewCompareStep creates a CompareStep.
func NewCompareStep(a Comparer) *CompareStep {
	return &CompareStep{agent: a}
}

// Name returns the stage name.
func (s *CompareStep) Name() string {
	return model.StageAnalysisComparison
}

// Do writes analysis.Comparison.
func (s *CompareStep) Do(ctx context.Context, analysis *model.Analysis) error {
	out := s.agent.Execute(ctx, agent.AnalysisComparisonInput{
		URL:            analysis.URL,
		ProductInfo:    analysis.ProductInfo,
		CompetitorInfo: analysis.CompetitorInfo,
	})
	if err := out.Failure(); err != nil {
		return err
	}
	return analysis.SetComparison(out.Comparison)
}

// ReportStep writes the fact-checked report.
type ReportStep struct {
	agent Reporter
}

// NewReportStep creates a ReportStep.
func NewReportStep(a Reporter) *ReportStep {
	return &ReportStep{agent: a}
}

// Name returns the stage name.
func (s *ReportStep) Name() string {
	return model.StageReportGeneration
}

// Do writes analysis.Report.
func (s *ReportStep) Do(ctx context.Context, analysis *model.Analysis) error {
	out := s.agent.Execute(ctx, agent.ReportGenerationInput{
		URL:        analysis.URL,
		Comparison: analysis.Comparison,
	})
	if err := out.Failure(); err != nil {
		return err
	}
	return analysis.SetReport(out.Report)
}

// Agents are the six stage agents of a product analysis.
type Agents struct {
	Scraper    Scraper
	Ingester   Ingester
	Extractor  Extractor
	Researcher Researcher
	Comparer   Comparer
	Reporter   Reporter
}

// NewProductAnalysis creates a pipeline running the six stages in order.
func NewProductAnalysis(agents Agents, opts ...Option) *Pipeline {
	p := New(opts...)
	p.AddSteps(
		NewScrapeStep(agents.Scraper),
		NewIngestStep(agents.Ingester),
		NewExtractStep(agents.Extractor),
		NewResearchStep(agents.Researcher),
		NewCompareStep(agents.Comparer),
		NewReportStep(agents.Reporter),
	)
	return p
}
