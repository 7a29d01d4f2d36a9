package report

import (
	"io"
	"strconv"
	"time"

	"github.com/nao1215/markdown"

	"github.com/nao1215/prodscout/internal/model"
)

// MarkdownWriter outputs the analysis as a Markdown document.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the analysis in Markdown format.
func (w *MarkdownWriter) Write(analysis *model.Analysis) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, analysis)
	w.writeAlert(md, analysis)
	w.writeStages(md, analysis)
	w.writeSection(md, "Product Information", analysis.ProductInfo)
	w.writeSection(md, "Competitors", analysis.CompetitorInfo)
	w.writeSection(md, "Comparison", analysis.Comparison)
	w.writeSection(md, "Report", analysis.Report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, a *model.Analysis) {
	md.H1("Product Analysis Report")
	md.PlainText("")

	rows := [][]string{
		{"Product URL", a.URL},
		{"Analysis ID", "`" + a.ID + "`"},
		{"Status", statusText(a)},
	}
	if !a.StartedAt.IsZero() {
		rows = append(rows, []string{"Started", a.StartedAt.Format("2006-01-02 15:04:05 MST")})
	}
	if d := a.Duration(); d > 0 {
		rows = append(rows, []string{"Duration", d.Round(time.Millisecond).String()})
	}
	if a.ContentHash != "" {
		rows = append(rows,
			[]string{"Page Title", orDash(a.Metadata.Title)},
			[]string{"Content Type", string(a.ContentType)},
			[]string{"Language", orDash(a.Metadata.Language)},
			[]string{"Documents", strconv.Itoa(len(a.Documents))},
			[]string{"Content Hash", "`" + truncateString(a.ContentHash, 16) + "`"},
		)
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, a *model.Analysis) {
	switch a.Status {
	case model.StatusComplete:
		md.Tip("All six stages completed.")
	case model.StatusFailed:
		md.Cautionf("The analysis stopped at %s: %s", orDash(a.FailedStage), orDash(a.Error))
	default:
		md.Note("The analysis has not finished.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeStages(md *markdown.Markdown, a *model.Analysis) {
	md.H2("Stages")
	md.PlainText("")

	states := stageStates(a)
	stages := model.Stages()
	rows := make([][]string, len(stages))
	for i, stage := range stages {
		rows[i] = []string{strconv.Itoa(i + 1), stage, stageLabel(states[i])}
	}
	md.Table(markdown.TableSet{
		Header: []string{"#", "Stage", "Result"},
		Rows:   rows,
	})
	md.PlainText("")
}

func stageLabel(s stageState) string {
	switch s {
	case stageDone:
		return "✅ Done"
	case stageFailed:
		return "❌ Failed"
	default:
		return "⏭️ Skipped"
	}
}

func (w *MarkdownWriter) writeSection(md *markdown.Markdown, title, body string) {
	if body == "" {
		return
	}
	md.H2(title)
	md.PlainText("")
	md.PlainText(body)
	md.PlainText("")
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainText("*Report generated by prodscout*")
}
