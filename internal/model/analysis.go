package model

import (
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

// ErrFieldAlreadySet is returned when a stage tries to overwrite an output
// that an earlier stage already produced.
var ErrFieldAlreadySet = errors.New("field already set")

// Status is the lifecycle state of an analysis.
type Status string

const (
	// StatusPending means the analysis has not started yet.
	StatusPending Status = "pending"
	// StatusRunning means a stage is executing.
	StatusRunning Status = "running"
	// StatusComplete means all six stages succeeded.
	StatusComplete Status = "complete"
	// StatusFailed means a stage failed and the remaining stages were skipped.
	StatusFailed Status = "failed"
)

// Analysis accumulates the outputs of the six stages for one product URL.
//
// Each stage output is written once. The setters enforce that rule; the
// fields stay exported so the history store and the JSON API can read them.
type Analysis struct {
	// ID uniquely identifies the analysis.
	ID string `json:"id"`

	// URL is the product page being analyzed.
	URL string `json:"url"`

	// Status is the current lifecycle state.
	Status Status `json:"status"`

	// === Web Scraping ===

	ScrapedContent string      `json:"scrapedContent,omitempty"`
	ContentType    ContentType `json:"contentType,omitempty"`
	Metadata       Metadata    `json:"metadata"`

	// ContentHash is the BLAKE2b-256 digest of ScrapedContent, hex encoded.
	ContentHash string `json:"contentHash,omitempty"`

	// === Document Ingestion ===

	Documents []Document `json:"documents,omitempty"`

	// === LLM stages ===

	ProductInfo    string `json:"productInfo,omitempty"`
	CompetitorInfo string `json:"competitorInfo,omitempty"`
	Comparison     string `json:"comparison,omitempty"`
	Report         string `json:"report,omitempty"`

	// === Outcome ===

	// CompletedStages lists the stages that succeeded, in order.
	CompletedStages []string `json:"completedStages,omitempty"`

	// FailedStage names the stage that stopped the analysis.
	FailedStage string `json:"failedStage,omitempty"`

	// Error is the failure message of FailedStage.
	Error string `json:"error,omitempty"`

	StartedAt   time.Time `json:"startedAt"`
	CompletedAt time.Time `json:"completedAt"`
}

// NewAnalysis creates a pending analysis for the given URL.
func NewAnalysis(url string) *Analysis {
	return &Analysis{
		ID:     uuid.NewString(),
		URL:    url,
		Status: StatusPending,
	}
}

// SetScrapedContent records the output of the web scraping stage and
// computes its content hash.
func (a *Analysis) SetScrapedContent(content string, contentType ContentType, meta Metadata) error {
	if a.ScrapedContent != "" {
		return fmt.Errorf("scraped content: %w", ErrFieldAlreadySet)
	}
	a.ScrapedContent = content
	a.ContentType = contentType
	a.Metadata = meta
	a.ContentHash = HashContent(content)
	return nil
}

// SetDocuments records the output of the document ingestion stage.
func (a *Analysis) SetDocuments(docs []Document) error {
	if len(a.Documents) > 0 {
		return fmt.Errorf("documents: %w", ErrFieldAlreadySet)
	}
	a.Documents = docs
	return nil
}

// SetProductInfo records the output of the information extraction stage.
func (a *Analysis) SetProductInfo(info string) error {
	return setOnce(&a.ProductInfo, info, "product info")
}

// SetCompetitorInfo records the output of the competitive research stage.
func (a *Analysis) SetCompetitorInfo(info string) error {
	return setOnce(&a.CompetitorInfo, info, "competitor info")
}

// SetComparison records the output of the analysis comparison stage.
func (a *Analysis) SetComparison(comparison string) error {
	return setOnce(&a.Comparison, comparison, "comparison")
}

// SetReport records the output of the report generation stage.
func (a *Analysis) SetReport(report string) error {
	return setOnce(&a.Report, report, "report")
}

func setOnce(field *string, value, name string) error {
	if *field != "" {
		return fmt.Errorf("%s: %w", name, ErrFieldAlreadySet)
	}
	*field = value
	return nil
}

// MarkRunning moves the analysis into the running state.
func (a *Analysis) MarkRunning(now time.Time) {
	a.Status = StatusRunning
	a.StartedAt = now
}

// MarkStageCompleted appends a stage to the completed list.
func (a *Analysis) MarkStageCompleted(stage string) {
	a.CompletedStages = append(a.CompletedStages, stage)
}

// MarkFailed records the failing stage and its error.
func (a *Analysis) MarkFailed(stage string, err error, now time.Time) {
	a.Status = StatusFailed
	a.FailedStage = stage
	if err != nil {
		a.Error = err.Error()
	}
	a.CompletedAt = now
}

// MarkComplete moves the analysis into the complete state.
func (a *Analysis) MarkComplete(now time.Time) {
	a.Status = StatusComplete
	a.CompletedAt = now
}

// Duration returns how long the analysis ran. It is zero until the
// analysis finishes.
func (a *Analysis) Duration() time.Duration {
	if a.StartedAt.IsZero() || a.CompletedAt.IsZero() {
		return 0
	}
	return a.CompletedAt.Sub(a.StartedAt)
}

// IsFinished reports whether the analysis reached a terminal state.
func (a *Analysis) IsFinished() bool {
	return a.Status == StatusComplete || a.Status == StatusFailed
}

// HashContent returns the hex encoded BLAKE2b-256 digest of content.
// Empty content produces an empty hash.
func HashContent(content string) string {
	if content == "" {
		return ""
	}
	sum := blake2b.Sum256([]byte(content))
	return hex.EncodeToString(sum[:])
}
