package agent

import (
	"context"

	"github.com/nao1215/prodscout/internal/llm"
	"github.com/nao1215/prodscout/internal/model"
)

// InformationExtractionInput is the input of InformationExtractionAgent.
type InformationExtractionInput struct {
	URL       string           `json:"url"`
	Documents []model.Document `json:"documents"`
}

// InformationExtractionOutput holds the extracted product facts.
type InformationExtractionOutput struct {
	Result
	ProductInfo string `json:"productInfo"`
}

// InformationExtractionAgent extracts product facts from documents.
type InformationExtractionAgent struct {
	generator
}

// NewInformationExtractionAgent creates an InformationExtractionAgent.
func NewInformationExtractionAgent(gen llm.Generator, opts ...Option) *InformationExtractionAgent {
	return &InformationExtractionAgent{generator: newGenerator(gen, ExtractionTemperature, opts)}
}

// Execute runs the extraction prompt over in.Documents.
func (a *InformationExtractionAgent) Execute(ctx context.Context, in InformationExtractionInput) InformationExtractionOutput {
	if len(in.Documents) == 0 {
		return InformationExtractionOutput{Result: invalidInput("documents are required")}
	}

	prompt, err := render(extractionPrompt, in)
	if err != nil {
		return InformationExtractionOutput{Result: failed(err)}
	}

	info, err := a.generate(ctx, prompt)
	if err != nil {
		a.logger.Error("information extraction failed", "url", in.URL, "error", err)
		return InformationExtractionOutput{Result: failed(err)}
	}
	return InformationExtractionOutput{Result: succeeded(), ProductInfo: info}
}
