package walker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/nao1215/pdscload/internal/model"
)

const (
	// CatalogSuffix identifies catalog files. The match is case-sensitive.
	CatalogSuffix = "CAT-PDSC_ADMIN.xml"

	// OCFLMarker is the declaration file at the root of an OCFL object.
	OCFLMarker = "0=ocfl_object_1.0"
)

// Result is the outcome of a walk.
type Result struct {
	// Entries are the item folders found, deduplicated by catalog file name.
	Entries []model.ScanEntry

	// OCFL lists folders that are OCFL objects. They are not descended into.
	OCFL []string

	// Errors holds per-directory problems: unreadable directories and
	// StructuralErrors.
	Errors []error
}

// Walker discovers catalog item folders.
type Walker struct {
	exclude []string
	logger  *slog.Logger
}

// Option configures a Walker.
type Option func(*Walker)

// WithExclude skips directories whose slash-separated path relative to the
// root matches any of the doublestar patterns.
func WithExclude(patterns ...string) Option {
	return func(w *Walker) {
		for _, p := range patterns {
			if p = strings.TrimSpace(p); p != "" {
				w.exclude = append(w.exclude, filepath.ToSlash(p))
			}
		}
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(w *Walker) {
		w.logger = logger
	}
}

// New creates a Walker.
func New(opts ...Option) *Walker {
	w := &Walker{logger: slog.Default()}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Walk visits every directory under root. Only an unusable root or a
// cancelled context is returned as an error; in the latter case the
// entries found so far are returned too.
func (w *Walker) Walk(ctx context.Context, root string) (*Result, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRoot, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrInvalidRoot, root)
	}

	result := &Result{}
	stack := []string{root}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			result.Entries = dedupe(result.Entries)
			return result, err
		}

		dir := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		children, err := w.visit(dir, root, result)
		if err != nil {
			w.logger.Debug("cannot read directory", "dir", dir, "error", err)
			result.Errors = append(result.Errors, fmt.Errorf("read %s: %w", dir, err))
			continue
		}

		// Push in reverse so the lexically first child is visited next.
		for i := len(children) - 1; i >= 0; i-- {
			stack = append(stack, children[i])
		}
	}

	result.Entries = dedupe(result.Entries)
	return result, nil
}

// visit classifies one directory and returns the subdirectories to descend into.
func (w *Walker) visit(dir, root string, result *Result) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var catalogs, children []string
	ocfl := false
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() {
			if !strings.HasPrefix(name, ".") && !w.excluded(root, filepath.Join(dir, name)) {
				children = append(children, filepath.Join(dir, name))
			}
			continue
		}
		switch {
		case name == OCFLMarker:
			ocfl = true
		case IsCatalogFile(name):
			catalogs = append(catalogs, name)
		}
	}

	if ocfl {
		w.logger.Debug("found OCFL object", "dir", dir)
		result.OCFL = append(result.OCFL, dir)
		return nil, nil
	}

	switch len(catalogs) {
	case 0:
	case 1:
		w.logger.Debug("found catalog item", "dir", dir, "file", catalogs[0])
		result.Entries = append(result.Entries, model.ScanEntry{Folder: dir, File: catalogs[0]})
	default:
		result.Errors = append(result.Errors, &StructuralError{Folder: dir, Files: catalogs})
	}

	return children, nil
}

func (w *Walker) excluded(root, dir string) bool {
	if len(w.exclude) == 0 {
		return false
	}
	rel, err := filepath.Rel(root, dir)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.exclude {
		if ok, err := doublestar.Match(pattern, rel); err == nil && ok {
			return true
		}
	}
	return false
}

// IsCatalogFile reports whether a file name is a catalog file. Dotfiles never are.
func IsCatalogFile(name string) bool {
	return !strings.HasPrefix(name, ".") && strings.HasSuffix(name, CatalogSuffix)
}

// dedupe keeps the first entry for every catalog file name.
func dedupe(entries []model.ScanEntry) []model.ScanEntry {
	seen := make(map[string]bool, len(entries))
	out := make([]model.ScanEntry, 0, len(entries))
	for _, e := range entries {
		if seen[e.File] {
			continue
		}
		seen[e.File] = true
		out = append(out, e)
	}
	return slices.Clip(out)
}
