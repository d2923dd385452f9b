package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/nao1215/pdscload/internal/model"
)

// SlogObserver mirrors pipeline events to a logger. Info and Complete are
// logged at Info, errors at Warn and progress at Debug.
type SlogObserver struct {
	logger *slog.Logger
}

// NewSlogObserver creates an observer logging to logger, or to
// slog.Default() when logger is nil.
func NewSlogObserver(logger *slog.Logger) *SlogObserver {
	if logger == nil {
		logger = slog.Default()
	}
	return &SlogObserver{logger: logger}
}

// Info implements model.Observer.
func (o *SlogObserver) Info(msg string) {
	o.logger.Info(msg)
}

// Error implements model.Observer.
func (o *SlogObserver) Error(msg string) {
	o.logger.Warn(msg)
}

// Progress implements model.Observer.
func (o *SlogObserver) Progress(n, total int) {
	o.logger.Debug("progress", "done", n, "total", total)
}

// Complete implements model.Observer.
func (o *SlogObserver) Complete(msg string) {
	o.logger.Info(msg, "complete", true)
}

const (
	ansiReset = "\x1b[0m"
	ansiRed   = "\x1b[31m"
	ansiGreen = "\x1b[32m"
	ansiBlue  = "\x1b[34m"
	clearLine = "\r\x1b[K"
)

// ConsoleObserver prints pipeline events for a person watching the load.
// Errors and completed phases are always printed, info messages only when
// verbose. On a terminal, lines are colored and progress is redrawn in
// place; elsewhere progress is not printed.
type ConsoleObserver struct {
	w        io.Writer
	tty      bool
	verbose  bool
	progress bool
}

// ConsoleOption configures a ConsoleObserver.
type ConsoleOption func(*ConsoleObserver)

// WithVerbose prints info messages too.
func WithVerbose(verbose bool) ConsoleOption {
	return func(o *ConsoleObserver) {
		o.verbose = verbose
	}
}

// NewConsoleObserver creates an observer printing to w.
func NewConsoleObserver(w io.Writer, opts ...ConsoleOption) *ConsoleObserver {
	o := &ConsoleObserver{w: w, tty: IsTerminal(w)}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// Info implements model.Observer.
func (o *ConsoleObserver) Info(msg string) {
	if o.verbose {
		o.line("INFO", ansiBlue, msg)
	}
}

// Error implements model.Observer.
func (o *ConsoleObserver) Error(msg string) {
	o.line("ERROR", ansiRed, msg)
}

// Complete implements model.Observer.
func (o *ConsoleObserver) Complete(msg string) {
	o.line("OK", ansiGreen, msg)
}

// Progress implements model.Observer.
func (o *ConsoleObserver) Progress(n, total int) {
	if !o.tty || total <= 0 {
		return
	}
	fmt.Fprintf(o.w, "%s  %d/%d (%d%%)", clearLine, n, total, n*100/total)
	o.progress = n < total
	if !o.progress {
		fmt.Fprintln(o.w)
	}
}

func (o *ConsoleObserver) line(label, color, msg string) {
	text := fmt.Sprintf("[%s] %s", label, msg)
	if !o.tty {
		fmt.Fprintln(o.w, text)
		return
	}
	prefix := ""
	if o.progress {
		prefix = clearLine
	}
	fmt.Fprintln(o.w, prefix+color+text+ansiReset)
}

var (
	_ model.Observer = (*SlogObserver)(nil)
	_ model.Observer = (*ConsoleObserver)(nil)
)
