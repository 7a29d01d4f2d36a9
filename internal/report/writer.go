package report

import (
	"io"

	"github.com/nao1215/prodscout/internal/model"
)

// Writer writes an analysis to its destination.
type Writer interface {
	// Write outputs the analysis and returns the number of bytes written.
	Write(analysis *model.Analysis) (int, error)
}

// MultiWriter writes to multiple Writers.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the analysis to every Writer and returns the total bytes
// written. It stops on the first error.
func (m *MultiWriter) Write(analysis *model.Analysis) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(analysis)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// stageState is the outcome of one stage of an analysis.
type stageState int

const (
	stageSkipped stageState = iota
	stageDone
	stageFailed
)

// stageStates returns the outcome of every stage in order.
func stageStates(a *model.Analysis) []stageState {
	done := make(map[string]bool, len(a.CompletedStages))
	for _, s := range a.CompletedStages {
		done[s] = true
	}

	stages := model.Stages()
	states := make([]stageState, len(stages))
	for i, s := range stages {
		switch {
		case done[s]:
			states[i] = stageDone
		case s == a.FailedStage:
			states[i] = stageFailed
		}
	}
	return states
}

// statusText describes the outcome of the analysis in one line.
func statusText(a *model.Analysis) string {
	switch a.Status {
	case model.StatusComplete:
		return "Complete"
	case model.StatusFailed:
		if a.FailedStage != "" {
			return "Failed at " + a.FailedStage
		}
		return "Failed"
	case model.StatusRunning:
		return "Running"
	default:
		return "Pending"
	}
}

// orDash returns "-" for empty values.
func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
