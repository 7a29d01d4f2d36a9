package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/prodscout/internal/model"
)

// JSONWriter outputs the analysis as JSON.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	indentPrefix string
	indentString string

	// documents keeps the split documents, which repeat the page text.
	documents bool
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint is WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// WithDocuments includes the split documents in the output.
func WithDocuments(include bool) JSONWriterOption {
	return func(w *JSONWriter) {
		w.documents = include
	}
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
// Documents are omitted unless WithDocuments(true) is given.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the analysis in JSON format.
func (w *JSONWriter) Write(analysis *model.Analysis) (int, error) {
	return w.writeJSON(w.prepare(analysis))
}

// prepare returns the analysis to encode, without documents when they are
// excluded. The caller's analysis is never modified.
func (w *JSONWriter) prepare(analysis *model.Analysis) *model.Analysis {
	if w.documents || len(analysis.Documents) == 0 {
		return analysis
	}
	clone := *analysis
	clone.Documents = nil
	return &clone
}

func (w *JSONWriter) writeJSON(v any) (int, error) {
	var data []byte
	var err error

	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return 0, err
	}

	data = append(data, '\n')
	return w.output.Write(data)
}

// JSONReport wraps an analysis with the version of the tool that made it.
type JSONReport struct {
	Version  string          `json:"version"`
	Analysis *model.Analysis `json:"analysis"`
}

// FullJSONWriter outputs analyses wrapped in a JSONReport.
type FullJSONWriter struct {
	*JSONWriter

	version string
}

// NewFullJSONWriter creates a writer for wrapped analyses.
func NewFullJSONWriter(output io.Writer, version string, opts ...JSONWriterOption) *FullJSONWriter {
	return &FullJSONWriter{
		JSONWriter: NewJSONWriter(output, opts...),
		version:    version,
	}
}

// Write outputs the analysis wrapped with the version.
func (w *FullJSONWriter) Write(analysis *model.Analysis) (int, error) {
	return w.writeJSON(&JSONReport{
		Version:  w.version,
		Analysis: w.prepare(analysis),
	})
}
