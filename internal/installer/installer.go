package installer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/nao1215/pdscload/internal/catalog"
	"github.com/nao1215/pdscload/internal/fileutil"
	"github.com/nao1215/pdscload/internal/model"
	"github.com/nao1215/pdscload/internal/report"
)

const (
	// IndexFile is the name of the index written at the repository root.
	IndexFile = "index.json"

	// URLPrefix is the root of rewritten file paths.
	URLPrefix = "/repository"

	// DefaultConcurrency is the number of files of one content group copied at once.
	DefaultConcurrency = 4

	// DefaultThumbnailSize is the bounding box of generated previews, in pixels.
	DefaultThumbnailSize = 300
)

// Result summarizes an installation.
type Result struct {
	// Items are the installed copies of the indexed items, paths rewritten.
	Items []*model.Item

	// Missing lists every listed file that was not found on disk.
	Missing []*MissingFileError

	// Files is the number of files copied, thumbnails included.
	Files int

	// Bytes is the number of bytes copied.
	Bytes int64

	// Generated is the number of thumbnails created from their images.
	Generated int
}

// Installer copies items into a repository directory.
type Installer struct {
	root          string
	concurrency   int
	thumbnails    bool
	thumbnailSize int
	observer      model.Observer
	logger        *slog.Logger
}

// Option configures an Installer.
type Option func(*Installer)

// WithConcurrency sets how many files of one content group are copied at once.
func WithConcurrency(n int) Option {
	return func(in *Installer) {
		if n > 0 {
			in.concurrency = n
		}
	}
}

// WithThumbnails enables generating missing image previews.
func WithThumbnails(enabled bool) Option {
	return func(in *Installer) {
		in.thumbnails = enabled
	}
}

// WithThumbnailSize sets the bounding box of generated previews.
func WithThumbnailSize(size int) Option {
	return func(in *Installer) {
		if size > 0 {
			in.thumbnailSize = size
		}
	}
}

// WithObserver sets the observer receiving progress events.
func WithObserver(o model.Observer) Option {
	return func(in *Installer) {
		in.observer = o
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(in *Installer) {
		in.logger = logger
	}
}

// New creates an Installer writing into root, usually {target}/html/repository.
func New(root string, opts ...Option) *Installer {
	in := &Installer{
		root:          root,
		concurrency:   DefaultConcurrency,
		thumbnailSize: DefaultThumbnailSize,
	}
	for _, opt := range opts {
		opt(in)
	}
	if in.observer == nil {
		in.observer = model.NopObserver{}
	}
	if in.logger == nil {
		in.logger = slog.Default()
	}
	return in
}

// Install copies every item of idx into the repository, one item at a time,
// then writes index.json listing the collections and the installed items.
//
// Cancellation is checked between items. A cancelled install keeps the files
// already copied, does not write index.json and returns the context error.
func (in *Installer) Install(ctx context.Context, idx *model.Index) (*Result, error) {
	result := &Result{Items: make([]*model.Item, 0, len(idx.Items))}
	total := len(idx.Items)

	// A stale index would make an interrupted load look complete.
	indexPath := filepath.Join(in.root, IndexFile)
	if err := os.Remove(indexPath); err != nil && !os.IsNotExist(err) {
		return result, fmt.Errorf("remove stale index: %w", err)
	}

	in.observer.Info("Loading the data (this can take some time).")
	in.observer.Progress(0, total)

	for n, item := range idx.Items {
		if err := ctx.Err(); err != nil {
			in.logger.Warn("install cancelled", "installed", len(result.Items), "total", total)
			return result, err
		}

		in.observer.Info(fmt.Sprintf("Loading item %s/%s", item.CollectionID, item.ItemID))
		in.observer.Progress(n, total)

		folder, ok := idx.Location(item)
		if !ok || !fileutil.Exists(folder) {
			in.observer.Error(fmt.Sprintf("Skipping %s/%s: %v: folder %s",
				item.CollectionID, item.ItemID, ErrMissingSource, folder))
			continue
		}

		installed, err := in.installItem(ctx, item, result)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			in.observer.Error(fmt.Sprintf("Skipping %s/%s: %v", item.CollectionID, item.ItemID, err))
			continue
		}
		result.Items = append(result.Items, installed)
	}

	in.observer.Complete("Data loaded")

	if err := in.writeIndex(indexPath, idx.Collections, result.Items); err != nil {
		return result, err
	}
	in.observer.Info("Index file written.")
	in.observer.Progress(total, total)

	in.logger.Info("install complete",
		"items", len(result.Items),
		"files", result.Files,
		"bytes", result.Bytes,
		"missing", len(result.Missing),
	)
	return result, nil
}

// installItem copies one item's content groups in install order and returns
// the installed copy.
func (in *Installer) installItem(ctx context.Context, item *model.Item, result *Result) (*model.Item, error) {
	installed := item.Clone()
	dest := filepath.Join(in.root, item.CollectionID, item.ItemID)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, err
	}

	for _, class := range model.InstallOrder {
		group := installed.Group(class)
		kept, err := in.copyGroup(ctx, installed, dest, *group, class == model.ClassImage)
		if err != nil {
			return nil, err
		}
		in.fold(kept, result)
		*group = files(kept)
	}
	installed.CountElements()
	return installed, nil
}

// copied is the outcome of copying one listed file.
type copied struct {
	file      model.MediaFile
	missing   []*MissingFileError
	err       error
	files     int
	bytes     int64
	generated bool
	dropped   bool
}

// copyGroup copies the files of one content group concurrently. Outcomes are
// returned in listing order.
func (in *Installer) copyGroup(ctx context.Context, item *model.Item, dest string, group []model.MediaFile, images bool) ([]copied, error) {
	outcomes := make([]copied, len(group))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(in.concurrency)

	for i, f := range group {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = in.copyOne(item, dest, f, images)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

// copyOne copies a file and, for images, its thumbnail.
func (in *Installer) copyOne(item *model.Item, dest string, f model.MediaFile, image bool) copied {
	key := item.CollectionID + "/" + item.ItemID
	out := copied{file: f}

	if !fileutil.Exists(f.Path) {
		out.dropped = true
		out.missing = append(out.missing, &MissingFileError{Item: key, Path: f.Path})
		return out
	}

	n, err := fileutil.CopyFile(f.Path, filepath.Join(dest, f.Name))
	if err != nil {
		out.dropped = true
		out.err = fmt.Errorf("%s: copy %s: %w", key, f.Name, err)
		return out
	}
	out.files++
	out.bytes += n
	out.file.Path = repositoryURL(item, f.Name)

	if !image {
		return out
	}

	thumbName := catalog.ThumbnailName(f.Name)
	thumbDest := filepath.Join(dest, thumbName)
	switch {
	case f.Thumbnail != "" && fileutil.Exists(f.Thumbnail):
		n, err := fileutil.CopyFile(f.Thumbnail, thumbDest)
		if err != nil {
			out.file.Thumbnail = ""
			out.err = fmt.Errorf("%s: copy %s: %w", key, thumbName, err)
			return out
		}
		out.files++
		out.bytes += n
		out.file.Thumbnail = repositoryURL(item, thumbName)
	case in.thumbnails:
		if err := generateThumbnail(f.Path, thumbDest, in.thumbnailSize); err != nil {
			out.file.Thumbnail = ""
			out.err = fmt.Errorf("%s: thumbnail for %s: %w", key, f.Name, err)
			return out
		}
		out.generated = true
		out.file.Thumbnail = repositoryURL(item, thumbName)
	default:
		out.missing = append(out.missing, &MissingFileError{Item: key, Path: thumbnailSource(f)})
		out.file.Thumbnail = ""
	}
	return out
}

// fold records outcomes on the result and reports problems to the observer.
// It runs on the calling goroutine so the observer is never used concurrently.
func (in *Installer) fold(outcomes []copied, result *Result) {
	for _, o := range outcomes {
		for _, m := range o.missing {
			result.Missing = append(result.Missing, m)
			in.observer.Error(m.Error())
			in.logger.Debug("missing file", "item", m.Item, "path", m.Path)
		}
		if o.err != nil {
			in.observer.Error(o.err.Error())
		}
		result.Files += o.files
		result.Bytes += o.bytes
		if o.generated {
			result.Generated++
		}
	}
}

func files(outcomes []copied) []model.MediaFile {
	kept := make([]model.MediaFile, 0, len(outcomes))
	for _, o := range outcomes {
		if !o.dropped {
			kept = append(kept, o.file)
		}
	}
	return kept
}

func (in *Installer) writeIndex(indexPath string, collections []*model.Collection, items []*model.Item) error {
	if err := os.MkdirAll(in.root, 0o755); err != nil {
		return err
	}

	tmp := indexPath + ".tmp"
	f, err := os.Create(tmp) //nolint:gosec // path is under the load target
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}

	idx := &model.Index{Collections: collections, Items: items}
	if _, err := report.NewJSONWriter(f).Write(idx); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("write index: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("write index: %w", err)
	}
	return os.Rename(tmp, indexPath)
}

// repositoryURL is the path the viewer uses for a file of item.
func repositoryURL(item *model.Item, name string) string {
	return path.Join(URLPrefix, item.CollectionID, item.ItemID, name)
}

func thumbnailSource(f model.MediaFile) string {
	if f.Thumbnail != "" {
		return f.Thumbnail
	}
	return catalog.ThumbnailPath(f.Path)
}
