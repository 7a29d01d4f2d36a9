package agent

import (
	"context"
	"strings"

	"github.com/nao1215/prodscout/internal/llm"
)

// AnalysisComparisonInput is the input of AnalysisComparisonAgent.
type AnalysisComparisonInput struct {
	URL            string `json:"url"`
	ProductInfo    string `json:"productInfo"`
	CompetitorInfo string `json:"competitorInfo"`
}

// AnalysisComparisonOutput holds the comparative analysis.
type AnalysisComparisonOutput struct {
	Result
	Comparison string `json:"comparison"`
}

// AnalysisComparisonAgent compares a product with its competitors.
type AnalysisComparisonAgent struct {
	generator
}

// NewAnalysisComparisonAgent creates an AnalysisComparisonAgent.
func NewAnalysisComparisonAgent(gen llm.Generator, opts ...Option) *AnalysisComparisonAgent {
	return &AnalysisComparisonAgent{generator: newGenerator(gen, ComparisonTemperature, opts)}
}

// Execute writes the comparison.
func (a *AnalysisComparisonAgent) Execute(ctx context.Context, in AnalysisComparisonInput) AnalysisComparisonOutput {
	switch {
	case strings.TrimSpace(in.ProductInfo) == "":
		return AnalysisComparisonOutput{Result: invalidInput("product info is required")}
	case strings.TrimSpace(in.CompetitorInfo) == "":
		return AnalysisComparisonOutput{Result: invalidInput("competitor info is required")}
	}

	prompt, err := render(comparisonPrompt, in)
	if err != nil {
		return AnalysisComparisonOutput{Result: failed(err)}
	}

	comparison, err := a.generate(ctx, prompt)
	if err != nil {
		a.logger.Error("analysis comparison failed", "url", in.URL, "error", err)
		return AnalysisComparisonOutput{Result: failed(err)}
	}
	return AnalysisComparisonOutput{Result: succeeded(), Comparison: comparison}
}
