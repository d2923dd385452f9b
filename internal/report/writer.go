package report

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/pdscload/internal/model"
)

// Writer renders indexes and load runs.
type Writer interface {
	// Write renders an index and returns the number of bytes written.
	Write(idx *model.Index) (int, error)

	// WriteRun renders the outcome of a load run.
	WriteRun(run *model.LoadRun) (int, error)
}

// Format names an output format.
type Format string

const (
	// FormatJSON is the index.json form read by the viewer.
	FormatJSON Format = "json"
	// FormatMarkdown is a catalogue or run report in GitHub flavored Markdown.
	FormatMarkdown Format = "markdown"
	// FormatText is the plain text shown on terminals.
	FormatText Format = "text"
)

// ErrUnknownFormat is returned by ParseFormat for an unsupported name.
var ErrUnknownFormat = errors.New("unknown output format")

// Formats returns the accepted format names.
func Formats() []string {
	return []string{string(FormatJSON), string(FormatMarkdown), string(FormatText)}
}

// ParseFormat returns the Format named by s, ignoring case. "md" is accepted
// for markdown.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatJSON, FormatMarkdown, FormatText:
		return f, nil
	case "md":
		return FormatMarkdown, nil
	default:
		return "", fmt.Errorf("%w: %q (expected one of %s)", ErrUnknownFormat, s, strings.Join(Formats(), ", "))
	}
}

// Options are the settings New passes on to the writer it builds. Each
// writer ignores the settings it has no use for.
type Options struct {
	// Pretty indents JSON output.
	Pretty bool

	// Verbose lists every run message in text output.
	Verbose bool

	// SpeakerRoles limits the Markdown speaker view.
	SpeakerRoles []string
}

// New returns the writer for format, writing to output.
func New(format Format, output io.Writer, opts Options) (Writer, error) {
	switch format {
	case FormatJSON:
		if opts.Pretty {
			return NewJSONWriter(output, WithPrettyPrint()), nil
		}
		return NewJSONWriter(output), nil
	case FormatMarkdown:
		if len(opts.SpeakerRoles) > 0 {
			return NewMarkdownWriter(output, WithSpeakerRoles(opts.SpeakerRoles)), nil
		}
		return NewMarkdownWriter(output), nil
	case FormatText:
		return NewSimpleWriter(output, WithVerbose(opts.Verbose)), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// MultiWriter renders to several writers in turn and stops at the first
// failure.
type MultiWriter []Writer

// NewMultiWriter returns a MultiWriter over the non-nil writers.
func NewMultiWriter(writers ...Writer) MultiWriter {
	m := make(MultiWriter, 0, len(writers))
	for _, w := range writers {
		if w != nil {
			m = append(m, w)
		}
	}
	return m
}

// Write implements Writer. The byte count is the sum over every writer.
func (m MultiWriter) Write(idx *model.Index) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.Write(idx) })
}

// WriteRun implements Writer.
func (m MultiWriter) WriteRun(run *model.LoadRun) (int, error) {
	return m.each(func(w Writer) (int, error) { return w.WriteRun(run) })
}

func (m MultiWriter) each(write func(Writer) (int, error)) (int, error) {
	total := 0
	for _, w := range m {
		n, err := write(w)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter holds the destination shared by the writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

var (
	_ Writer = (*JSONWriter)(nil)
	_ Writer = (*MarkdownWriter)(nil)
	_ Writer = (*SimpleWriter)(nil)
	_ Writer = MultiWriter(nil)
)
