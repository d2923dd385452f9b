package index

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"

	"github.com/nao1215/pdscload/internal/catalog"
	"github.com/nao1215/pdscload/internal/model"
	"github.com/nao1215/pdscload/internal/walker"
)

// ErrNoItems is returned when no catalog item could be indexed.
var ErrNoItems = errors.New("no catalog items found")

// Extractor turns one catalog file into an item and its collection fragment.
type Extractor interface {
	Extract(folder, file string) (*model.Item, *model.Collection, error)
}

// Walker finds catalog item folders under a root.
type Walker interface {
	Walk(ctx context.Context, root string) (*walker.Result, error)
}

// Builder builds an Index from catalog folders.
type Builder struct {
	extractor Extractor
	walker    Walker
	observer  model.Observer
	logger    *slog.Logger
	skip      map[string]bool
}

// Option configures a Builder.
type Option func(*Builder)

// WithExtractor replaces the default catalog extractor.
func WithExtractor(e Extractor) Option {
	return func(b *Builder) {
		b.extractor = e
	}
}

// WithWalker replaces the default tree walker.
func WithWalker(w Walker) Option {
	return func(b *Builder) {
		b.walker = w
	}
}

// WithObserver sets the observer receiving progress and error messages.
func WithObserver(o model.Observer) Option {
	return func(b *Builder) {
		b.observer = o
	}
}

// WithLogger sets the logger used for debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) {
		b.logger = logger
	}
}

// WithSkipCollections leaves the items of the given collections out of the index.
func WithSkipCollections(ids ...string) Option {
	return func(b *Builder) {
		for _, id := range ids {
			b.skip[id] = true
		}
	}
}

// NewBuilder creates a Builder.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		observer: model.NopObserver{},
		logger:   slog.Default(),
		skip:     make(map[string]bool),
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.extractor == nil {
		b.extractor = catalog.NewExtractor(catalog.WithLogger(b.logger))
	}
	if b.walker == nil {
		b.walker = walker.New(walker.WithLogger(b.logger))
	}
	return b
}

// BuildFromRoot walks root and builds the index of everything found.
// Walk problems are reported to the observer.
func (b *Builder) BuildFromRoot(ctx context.Context, root string) (*model.Index, *walker.Result, error) {
	result, err := b.walker.Walk(ctx, root)
	if err != nil {
		return nil, result, err
	}
	ReportWalk(b.observer, result)

	idx, err := b.Build(ctx, result.Entries)
	return idx, result, err
}

// ReportWalk sends the problems found by a walk to an observer.
func ReportWalk(o model.Observer, result *walker.Result) {
	for _, err := range result.Errors {
		o.Error(err.Error())
	}
	for _, dir := range result.OCFL {
		o.Error(fmt.Sprintf("Skipping %s: OCFL objects are not supported", dir))
	}
}

// Build extracts every entry and merges the results. Entries that fail are
// reported and skipped. ErrNoItems is returned when nothing was indexed.
func (b *Builder) Build(ctx context.Context, entries []model.ScanEntry) (*model.Index, error) {
	idx := model.NewIndex()
	byID := make(map[string]*model.Collection)

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		item, fragment, err := b.extractor.Extract(entry.Folder, entry.File)
		if err != nil {
			b.reportExtractError(entry, err)
			continue
		}

		if b.skip[fragment.CollectionID] {
			b.observer.Info(fmt.Sprintf("Skipping item %s/%s: collection %s is excluded",
				item.CollectionID, item.ItemID, fragment.CollectionID))
			continue
		}
		if _, dup := idx.Locations[item.Key()]; dup {
			b.observer.Error(fmt.Sprintf("Skipping %s: item %s/%s is already indexed",
				entry.Folder, item.CollectionID, item.ItemID))
			continue
		}

		b.observer.Info(fmt.Sprintf("Generated the index for item: %s/%s", item.CollectionID, item.ItemID))
		idx.Items = append(idx.Items, item)
		idx.Locations[item.Key()] = entry.Folder

		b.observer.Info(fmt.Sprintf("Generated the index for collection: %s", fragment.CollectionID))
		if existing, ok := byID[fragment.CollectionID]; ok {
			Merge(existing, fragment)
			continue
		}
		byID[fragment.CollectionID] = fragment
		idx.Collections = append(idx.Collections, fragment)
	}

	if len(idx.Items) == 0 {
		return nil, ErrNoItems
	}

	b.logger.Debug("index built",
		"items", len(idx.Items),
		"collections", len(idx.Collections),
	)
	return idx, nil
}

func (b *Builder) reportExtractError(entry model.ScanEntry, err error) {
	b.logger.Debug("catalog extraction failed", "folder", entry.Folder, "error", err)
	if errors.Is(err, catalog.ErrNoFiles) {
		b.observer.Error(fmt.Sprintf("No files listed in %s", filepath.Join(entry.Folder, entry.File)))
		return
	}
	b.observer.Error(fmt.Sprintf("Skipping %s: %v", entry.Folder, err))
}

// Merge folds fragment into base. Scalar fields of base are kept.
func Merge(base, fragment *model.Collection) {
	base.Items = append(base.Items, fragment.Items...)
	base.People = catalog.UniquePeople(append(base.People, fragment.People...))
	base.Classifications = catalog.UniqueClassifications(append(base.Classifications, fragment.Classifications...))
	base.Categories = unique(append(base.Categories, fragment.Categories...))
	base.Languages = catalog.SortedSet(append(base.Languages, fragment.Languages...))
}

// unique removes repeated values, keeping first occurrences in order.
func unique(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if !slices.Contains(out, v) {
			out = append(out, v)
		}
	}
	return out
}
