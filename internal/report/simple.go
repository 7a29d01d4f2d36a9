package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/nao1215/prodscout/internal/model"
)

// SimpleWriter outputs human-readable text for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose adds the intermediate stage outputs.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose adds the product information, competitor information and
// comparison before the report.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the analysis in human-readable format.
func (w *SimpleWriter) Write(analysis *model.Analysis) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, analysis)
	w.writeStages(&sb, analysis)
	if w.verbose {
		writeSection(&sb, "PRODUCT INFORMATION", analysis.ProductInfo)
		writeSection(&sb, "COMPETITORS", analysis.CompetitorInfo)
		writeSection(&sb, "COMPARISON", analysis.Comparison)
	}
	writeSection(&sb, "REPORT", analysis.Report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, a *model.Analysis) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                     PRODUCT ANALYSIS REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Product URL:    %s\n", a.URL)
	fmt.Fprintf(sb, "Analysis ID:    %s\n", a.ID)
	if !a.StartedAt.IsZero() {
		fmt.Fprintf(sb, "Started:        %s\n", a.StartedAt.Format("2006-01-02 15:04:05 MST"))
	}
	if d := a.Duration(); d > 0 {
		fmt.Fprintf(sb, "Duration:       %s\n", d.Round(time.Millisecond))
	}
	if a.Metadata.Title != "" {
		fmt.Fprintf(sb, "Page Title:     %s\n", a.Metadata.Title)
	}
	fmt.Fprintf(sb, "Status:         %s\n", statusText(a))
	if a.Error != "" {
		fmt.Fprintf(sb, "Error:          %s\n", a.Error)
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeStages(sb *strings.Builder, a *model.Analysis) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("STAGES\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	states := stageStates(a)
	for i, stage := range model.Stages() {
		fmt.Fprintf(sb, "  [%s] %s\n", stageIndicator(states[i]), stage)
	}
	sb.WriteString("\n")
}

// stageIndicator returns a visual indicator for the stage outcome.
func stageIndicator(s stageState) string {
	switch s {
	case stageDone:
		return "+"
	case stageFailed:
		return "!"
	default:
		return " "
	}
}

func writeSection(sb *strings.Builder, title, body string) {
	if body == "" {
		return
	}
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
	sb.WriteString(strings.TrimRight(body, "\n"))
	sb.WriteString("\n\n")
}

func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by prodscout\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
