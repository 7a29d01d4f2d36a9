package agent

import (
	"context"
	"strings"

	"github.com/nao1215/prodscout/internal/config"
	"github.com/nao1215/prodscout/internal/model"
)

// DocumentIngestionInput is the input of DocumentIngestionAgent.
type DocumentIngestionInput struct {
	URL     string `json:"url"`
	RawText string `json:"rawText"`
}

// DocumentIngestionOutput holds the split documents.
type DocumentIngestionOutput struct {
	Result
	Documents []model.Document `json:"documents"`
}

// DocumentIngestionAgent splits page text into overlapping documents.
type DocumentIngestionAgent struct {
	splitter *TextSplitter
	options
}

// NewDocumentIngestionAgent creates a DocumentIngestionAgent. A nil
// splitter uses chunks of 8000 runes overlapping by 2000.
func NewDocumentIngestionAgent(splitter *TextSplitter, opts ...Option) *DocumentIngestionAgent {
	if splitter == nil {
		splitter, _ = NewTextSplitter(config.DefaultChunkSize, config.DefaultChunkOverlap)
	}
	return &DocumentIngestionAgent{splitter: splitter, options: newOptions(opts)}
}

// Execute splits in.RawText.
func (a *DocumentIngestionAgent) Execute(_ context.Context, in DocumentIngestionInput) DocumentIngestionOutput {
	if strings.TrimSpace(in.RawText) == "" {
		return DocumentIngestionOutput{Result: invalidInput("raw text is required")}
	}

	docs := a.splitter.Split(in.RawText)
	a.logger.Debug("documents ingested", "url", in.URL, "documents", len(docs))
	return DocumentIngestionOutput{Result: succeeded(), Documents: docs}
}
