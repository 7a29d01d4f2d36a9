package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/nao1215/prodscout/internal/llm"
)

// ReportGenerationInput is the input of ReportGenerationAgent.
type ReportGenerationInput struct {
	URL        string `json:"url"`
	Comparison string `json:"comparison"`
}

// ReportGenerationOutput holds the fact-checked report.
type ReportGenerationOutput struct {
	Result
	Report string `json:"report"`
}

// ReportGenerationAgent writes a report and fact-checks it. The draft and
// the fact-check use separate temperatures.
type ReportGenerationAgent struct {
	generator
	factCheckTemperature float64
}

// NewReportGenerationAgent creates a ReportGenerationAgent. WithTemperature
// changes the draft temperature only.
func NewReportGenerationAgent(gen llm.Generator, opts ...Option) *ReportGenerationAgent {
	return &ReportGenerationAgent{
		generator:            newGenerator(gen, ReportTemperature, opts),
		factCheckTemperature: FactCheckTemperature,
	}
}

// Execute drafts the report from in.Comparison and appends the fact-check.
func (a *ReportGenerationAgent) Execute(ctx context.Context, in ReportGenerationInput) ReportGenerationOutput {
	if strings.TrimSpace(in.Comparison) == "" {
		return ReportGenerationOutput{Result: invalidInput("comparison is required")}
	}

	prompt, err := render(reportPrompt, in)
	if err != nil {
		return ReportGenerationOutput{Result: failed(err)}
	}
	draft, err := a.generate(ctx, prompt)
	if err != nil {
		a.logger.Error("report draft failed", "url", in.URL, "error", err)
		return ReportGenerationOutput{Result: failed(fmt.Errorf("failed to draft report: %w", err))}
	}

	prompt, err = render(factCheckPrompt, struct{ Report string }{Report: draft})
	if err != nil {
		return ReportGenerationOutput{Result: failed(err)}
	}
	annotations, err := a.generateAt(ctx, prompt, a.factCheckTemperature)
	if err != nil {
		a.logger.Error("fact-check failed", "url", in.URL, "error", err)
		return ReportGenerationOutput{Result: failed(fmt.Errorf("failed to fact-check report: %w", err))}
	}

	return ReportGenerationOutput{Result: succeeded(), Report: FactCheckedReport(draft, annotations)}
}
