package report

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/nao1215/pdscload/internal/model"
)

// JSONWriter outputs indexes and runs as JSON.
// Without options the output is compact, which is the form the viewer
// reads from index.json.
type JSONWriter struct {
	baseWriter

	// indent enables pretty-printed JSON output.
	indent bool

	// indentPrefix is the prefix for each line in indented output.
	indentPrefix string

	// indentString is the indentation string (typically "  " or "\t").
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables pretty-printed JSON output.
// The prefix is prepended to each line, and indent is used for each level.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables pretty-printed JSON with default indentation.
// This is a convenience wrapper for WithIndent("", "  ").
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the index as {"collections": [...], "items": [...]}.
func (w *JSONWriter) Write(idx *model.Index) (int, error) {
	return w.writeJSON(idx)
}

// WriteRun outputs a run record without its full index.
func (w *JSONWriter) WriteRun(run *model.LoadRun) (int, error) {
	return w.writeJSON(NewRunSummary(run))
}

// writeJSON encodes v followed by a newline. HTML characters are written
// as is, so "&" stays "&" in titles.
func (w *JSONWriter) writeJSON(v any) (int, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if w.indent {
		enc.SetIndent(w.indentPrefix, w.indentString)
	}
	if err := enc.Encode(v); err != nil {
		return 0, err
	}

	return w.output.Write(buf.Bytes())
}
