package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nao1215/pdscload/internal/catalog"
	"github.com/nao1215/pdscload/internal/config"
	"github.com/nao1215/pdscload/internal/device"
	"github.com/nao1215/pdscload/internal/index"
	"github.com/nao1215/pdscload/internal/installer"
	"github.com/nao1215/pdscload/internal/model"
	"github.com/nao1215/pdscload/internal/report"
	"github.com/nao1215/pdscload/internal/site"
	"github.com/nao1215/pdscload/internal/walker"
)

// CatalogFile is the Markdown catalogue written next to a generated site.
const CatalogFile = "catalog.md"

// errNoIndex is returned by steps that need an index when none was built.
var errNoIndex = errors.New("no index on the run")

// PrepareTargetStep empties the target's html directory before a load.
type PrepareTargetStep struct {
	target     *device.Target
	siteLayout bool
	observer   model.Observer
}

// NewPrepareTargetStep creates the step. For site targets the repository
// directory is not kept, since a site has no data repository.
func NewPrepareTargetStep(target *device.Target, siteLayout bool, observer model.Observer) *PrepareTargetStep {
	return &PrepareTargetStep{target: target, siteLayout: siteLayout, observer: observer}
}

// Name returns the step name.
func (s *PrepareTargetStep) Name() string {
	return "prepare_target"
}

// Do executes the step. Any failure is fatal.
func (s *PrepareTargetStep) Do(_ context.Context, _ *model.LoadRun) error {
	s.observer.Info("Preparing the target device")

	err := s.target.Prepare()
	if err == nil && s.siteLayout {
		err = os.Remove(s.target.RepositoryPath())
	}
	if err != nil {
		s.observer.Info("There was a problem preparing the device for loading")
		return &FatalError{Step: s.Name(), Err: err}
	}

	s.observer.Complete("Device ready for loading")
	return nil
}

// WalkStep finds the item folders under the run's data path.
type WalkStep struct {
	walker   index.Walker
	observer model.Observer
}

// NewWalkStep creates the step.
func NewWalkStep(w index.Walker, observer model.Observer) *WalkStep {
	return &WalkStep{walker: w, observer: observer}
}

// Name returns the step name.
func (s *WalkStep) Name() string {
	return "walk"
}

// Do executes the step. An unusable data path is fatal; problems with single
// folders are reported and skipped.
func (s *WalkStep) Do(ctx context.Context, run *model.LoadRun) error {
	s.observer.Info("Processing the data to be loaded.")

	result, err := s.walker.Walk(ctx, run.DataPath)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return &FatalError{Step: s.Name(), Err: err}
	}

	run.Entries = result.Entries
	run.OCFL = result.OCFL
	index.ReportWalk(s.observer, result)

	s.observer.Complete("Data processed")
	return nil
}

// BuildIndexStep extracts and merges the catalog files found by the walk.
type BuildIndexStep struct {
	builder  *index.Builder
	observer model.Observer
}

// NewBuildIndexStep creates the step. The builder should report to the same
// observer.
func NewBuildIndexStep(builder *index.Builder, observer model.Observer) *BuildIndexStep {
	return &BuildIndexStep{builder: builder, observer: observer}
}

// Name returns the step name.
func (s *BuildIndexStep) Name() string {
	return "build_index"
}

// Do executes the step. An archive without items is fatal.
func (s *BuildIndexStep) Do(ctx context.Context, run *model.LoadRun) error {
	s.observer.Info("Building the index.")

	idx, err := s.builder.Build(ctx, run.Entries)
	if err != nil {
		if errors.Is(err, index.ErrNoItems) {
			return &FatalError{Step: s.Name(), Err: err}
		}
		return err
	}
	run.Index = idx

	s.observer.Complete("Index built")
	return nil
}

// InstallViewerStep copies the collection viewer onto a device target.
type InstallViewerStep struct {
	target      *device.Target
	contentBase string
	observer    model.Observer
	logger      *slog.Logger
}

// NewInstallViewerStep creates the step.
func NewInstallViewerStep(target *device.Target, contentBase string, observer model.Observer, logger *slog.Logger) *InstallViewerStep {
	return &InstallViewerStep{target: target, contentBase: contentBase, observer: observer, logger: logger}
}

// Name returns the step name.
func (s *InstallViewerStep) Name() string {
	return "install_viewer"
}

// Do executes the step.
func (s *InstallViewerStep) Do(_ context.Context, _ *model.LoadRun) error {
	s.observer.Info("Installing the collection viewer")

	n, err := s.target.InstallViewer(s.contentBase)
	if err != nil {
		return fmt.Errorf("install viewer: %w", err)
	}
	s.logger.Debug("viewer installed", "files", n)

	s.observer.Complete("Collection viewer has been installed")
	return nil
}

// InstallDataStep copies the indexed items into the device repository.
type InstallDataStep struct {
	installer *installer.Installer
}

// NewInstallDataStep creates the step.
func NewInstallDataStep(in *installer.Installer) *InstallDataStep {
	return &InstallDataStep{installer: in}
}

// Name returns the step name.
func (s *InstallDataStep) Name() string {
	return "install_data"
}

// Do executes the step. The items installed before a cancellation are kept
// on the run.
func (s *InstallDataStep) Do(ctx context.Context, run *model.LoadRun) error {
	if run.Index == nil {
		return errNoIndex
	}

	result, err := s.installer.Install(ctx, run.Index)
	if result != nil {
		run.Installed = result.Items
	}
	return err
}

// GenerateSiteStep writes the static website and its Markdown catalogue.
type GenerateSiteStep struct {
	generator *site.Generator
	roles     []string
	observer  model.Observer
}

// NewGenerateSiteStep creates the step.
func NewGenerateSiteStep(g *site.Generator, roles []string, observer model.Observer) *GenerateSiteStep {
	return &GenerateSiteStep{generator: g, roles: roles, observer: observer}
}

// Name returns the step name.
func (s *GenerateSiteStep) Name() string {
	return "generate_site"
}

// Do executes the step.
func (s *GenerateSiteStep) Do(ctx context.Context, run *model.LoadRun) error {
	if run.Index == nil {
		return errNoIndex
	}
	s.observer.Info("Generating the site.")

	result, err := s.generator.Generate(ctx, run.Index)
	if result != nil {
		run.Installed = result.Items
	}
	if err != nil {
		return err
	}

	written := &model.Index{Collections: run.Index.Collections, Items: result.Items}
	if err := s.writeCatalog(written); err != nil {
		return err
	}

	s.observer.Complete("Site generation complete")
	return nil
}

func (s *GenerateSiteStep) writeCatalog(idx *model.Index) error {
	path := filepath.Join(s.generator.Root(), CatalogFile)
	f, err := os.Create(path) //nolint:gosec // path is under the load target
	if err != nil {
		return fmt.Errorf("create catalogue: %w", err)
	}
	if _, err := report.NewMarkdownWriter(f, report.WithSpeakerRoles(s.roles)).Write(idx); err != nil {
		_ = f.Close()
		return fmt.Errorf("write catalogue: %w", err)
	}
	return f.Close()
}

// IndexPipeline creates a pipeline that only walks cfg.DataPath and builds
// the index, leaving it on the run.
func IndexPipeline(cfg *config.Config, observer model.Observer, logger *slog.Logger) *Pipeline {
	observer, logger = defaults(observer, logger)

	p := New(WithLogger(logger), WithObserver(observer))
	p.AddSteps(sourceSteps(cfg, observer, logger)...)
	return p
}

// DefaultPipeline creates the load pipeline for cfg.TargetKind.
//
// A device load prepares the target, indexes the archive, installs the
// viewer and copies the data. A site load prepares the target, indexes the
// archive and generates the website.
func DefaultPipeline(cfg *config.Config, observer model.Observer, logger *slog.Logger) *Pipeline {
	observer, logger = defaults(observer, logger)
	target := device.NewTarget(cfg.TargetPath)
	isSite := cfg.TargetKind == model.TargetSite

	p := New(WithLogger(logger), WithObserver(observer))
	p.AddStep(NewPrepareTargetStep(target, isSite, observer))
	p.AddSteps(sourceSteps(cfg, observer, logger)...)

	if isSite {
		gen := site.NewGenerator(target.HTMLPath(),
			site.WithRoles(cfg.SpeakerRoles),
			site.WithObserver(observer),
			site.WithLogger(logger),
		)
		p.AddStep(NewGenerateSiteStep(gen, cfg.SpeakerRoles, observer))
		return p
	}

	in := installer.New(target.RepositoryPath(),
		installer.WithConcurrency(cfg.CopyConcurrency),
		installer.WithThumbnails(cfg.GenerateThumbnails),
		installer.WithThumbnailSize(cfg.ThumbnailSize),
		installer.WithObserver(observer),
		installer.WithLogger(logger),
	)
	p.AddSteps(
		NewInstallViewerStep(target, cfg.ContentBasePath, observer, logger),
		NewInstallDataStep(in),
	)
	return p
}

// sourceSteps are the walk and build_index steps configured from cfg.
func sourceSteps(cfg *config.Config, observer model.Observer, logger *slog.Logger) []Step {
	w := walker.New(
		walker.WithExclude(cfg.ExcludePatterns...),
		walker.WithLogger(logger),
	)
	builder := index.NewBuilder(
		index.WithExtractor(catalog.NewExtractor(
			catalog.WithCatalogURL(cfg.CatalogURL),
			catalog.WithLogger(logger),
		)),
		index.WithWalker(w),
		index.WithObserver(observer),
		index.WithLogger(logger),
		index.WithSkipCollections(cfg.SkippedCollections()...),
	)
	return []Step{
		NewWalkStep(w, observer),
		NewBuildIndexStep(builder, observer),
	}
}

func defaults(observer model.Observer, logger *slog.Logger) (model.Observer, *slog.Logger) {
	if observer == nil {
		observer = model.NopObserver{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return observer, logger
}
