package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/pdscload/internal/model"
)

// SimpleWriter outputs plain text summaries for terminal display.
type SimpleWriter struct {
	baseWriter

	// verbose lists every message of a run instead of only the problems.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithVerbose enables verbose output with additional details.
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

// Write outputs one line per collection and item.
func (w *SimpleWriter) Write(idx *model.Index) (int, error) {
	var sb strings.Builder

	w.writeBanner(&sb, "CATALOGUE")
	sb.WriteString(fmt.Sprintf("Collections: %d\n", len(idx.Collections)))
	sb.WriteString(fmt.Sprintf("Items:       %d\n\n", len(idx.Items)))

	for _, c := range idx.Collections {
		sb.WriteString(fmt.Sprintf("%s  %s (%d items)\n", c.CollectionID, c.Title, len(c.Items)))
		for _, itemID := range c.Items {
			item := idx.Item(c.CollectionID, itemID)
			if item == nil {
				continue
			}
			sb.WriteString(fmt.Sprintf("  %-24s %3d elements  %s\n", item.Key(), item.Elements, item.Title))
		}
	}
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// WriteRun outputs the outcome of a load run.
func (w *SimpleWriter) WriteRun(run *model.LoadRun) (int, error) {
	s := NewRunSummary(run)
	var sb strings.Builder

	w.writeBanner(&sb, "LOAD REPORT")
	sb.WriteString(fmt.Sprintf("Run:         %s\n", s.ID))
	sb.WriteString(fmt.Sprintf("Data:        %s\n", s.DataPath))
	sb.WriteString(fmt.Sprintf("Target:      %s (%s)\n", s.TargetPath, s.TargetKind))
	sb.WriteString(fmt.Sprintf("Items:       %d in %d collections\n", s.Items, s.Collections))
	if s.TargetKind == string(model.TargetDevice) {
		sb.WriteString(fmt.Sprintf("Installed:   %d items, %d elements\n", s.Installed, s.Elements))
	}
	if d := s.Duration(); d > 0 {
		sb.WriteString(fmt.Sprintf("Duration:    %s\n", d))
	}

	switch model.RunStatus(s.Status) {
	case model.RunFailed:
		sb.WriteString(fmt.Sprintf("Status:      FAILED - %s\n", s.Error))
	case model.RunCancelled:
		sb.WriteString("Status:      CANCELLED (index.json not written)\n")
	default:
		sb.WriteString(fmt.Sprintf("Status:      %s\n", strings.ToUpper(s.Status)))
	}
	sb.WriteString("\n")

	if w.verbose {
		for _, m := range s.Messages {
			sb.WriteString(fmt.Sprintf("  [%-5s] %s\n", m.Level, m.Text))
		}
	} else if len(s.Errors) > 0 {
		sb.WriteString(fmt.Sprintf("Problems (%d):\n", len(s.Errors)))
		for _, e := range s.Errors {
			sb.WriteString("  - " + e + "\n")
		}
	}
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// writeBanner writes a section title between rules.
func (w *SimpleWriter) writeBanner(sb *strings.Builder, title string) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat(" ", (70-len(title))/2) + title + "\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")
}
