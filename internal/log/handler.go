package log

import (
	"cmp"
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
)

// Root names a directory whose paths are logged relative to it.
type Root struct {
	// Name replaces Path in log output, such as "$DATA".
	Name string

	// Path is the directory as given on the command line.
	Path string
}

// RootRelativeHandler wraps an slog.Handler and rewrites string attribute
// values under one of its roots to start with the root's name instead.
type RootRelativeHandler struct {
	handler slog.Handler
	roots   []Root
}

// NewRootRelativeHandler creates a handler wrapping handler. Roots with an
// empty path are ignored. If handler is nil, slog.Default().Handler() is used.
func NewRootRelativeHandler(handler slog.Handler, roots ...Root) *RootRelativeHandler {
	if handler == nil {
		handler = slog.Default().Handler()
	}

	cleaned := make([]Root, 0, len(roots))
	for _, r := range roots {
		if r.Path == "" {
			continue
		}
		if abs, err := filepath.Abs(r.Path); err == nil {
			r.Path = abs
		}
		cleaned = append(cleaned, Root{Name: r.Name, Path: filepath.Clean(r.Path)})
	}
	// Nested roots: the deepest one wins.
	slices.SortStableFunc(cleaned, func(a, b Root) int {
		return cmp.Compare(len(b.Path), len(a.Path))
	})

	return &RootRelativeHandler{handler: handler, roots: cleaned}
}

// Enabled reports whether the handler handles records at the given level.
func (h *RootRelativeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.handler.Enabled(ctx, level)
}

// Handle rewrites the record's attributes and passes it on.
func (h *RootRelativeHandler) Handle(ctx context.Context, r slog.Record) error {
	if len(h.roots) == 0 {
		return h.handler.Handle(ctx, r)
	}

	rewritten := slog.NewRecord(r.Time, r.Level, r.Message, r.PC)
	r.Attrs(func(a slog.Attr) bool {
		rewritten.AddAttrs(h.rewriteAttr(a))
		return true
	})
	return h.handler.Handle(ctx, rewritten)
}

// WithAttrs returns a new handler with the given attributes added.
func (h *RootRelativeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	rewritten := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		rewritten[i] = h.rewriteAttr(a)
	}
	return &RootRelativeHandler{handler: h.handler.WithAttrs(rewritten), roots: h.roots}
}

// WithGroup returns a new handler with the given group name.
func (h *RootRelativeHandler) WithGroup(name string) slog.Handler {
	return &RootRelativeHandler{handler: h.handler.WithGroup(name), roots: h.roots}
}

func (h *RootRelativeHandler) rewriteAttr(a slog.Attr) slog.Attr {
	switch a.Value.Kind() {
	case slog.KindGroup:
		attrs := a.Value.Group()
		rewritten := make([]slog.Attr, len(attrs))
		for i, ga := range attrs {
			rewritten[i] = h.rewriteAttr(ga)
		}
		return slog.Attr{Key: a.Key, Value: slog.GroupValue(rewritten...)}
	case slog.KindString:
		return slog.String(a.Key, h.Relativize(a.Value.String()))
	default:
		return a
	}
}

// Relativize returns s with a leading root path replaced by the root's name.
// Strings outside every root are returned unchanged.
func (h *RootRelativeHandler) Relativize(s string) string {
	for _, r := range h.roots {
		if s == r.Path {
			return r.Name
		}
		if rest, ok := strings.CutPrefix(s, r.Path+string(filepath.Separator)); ok {
			return r.Name + "/" + filepath.ToSlash(rest)
		}
	}
	return s
}

// Options configures NewLogger.
type Options struct {
	// Verbose sets the level to Debug; otherwise Warn.
	Verbose bool

	// JSON switches the output format from text to JSON.
	JSON bool

	// Roots are the directories logged by name.
	Roots []Root
}

// NewLogger creates a logger writing to w.
func NewLogger(w io.Writer, opts Options) *slog.Logger {
	level := slog.LevelWarn
	if opts.Verbose {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if opts.JSON {
		handler = slog.NewJSONHandler(w, handlerOpts)
	} else {
		handler = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(NewRootRelativeHandler(handler, opts.Roots...))
}
