package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/nao1215/pdscload/internal/config"
	"github.com/nao1215/pdscload/internal/database"
	"github.com/nao1215/pdscload/internal/device"
	"github.com/nao1215/pdscload/internal/model"
	"github.com/nao1215/pdscload/internal/pipeline"
	"github.com/nao1215/pdscload/internal/report"
)

// NewLoadCmd creates the load command.
func NewLoadCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load",
		Short: "Index the archive and load it onto a target",
		Long: `Load indexes the archive and writes it onto a device or a disk.

A device load removes the previous load from {target}/html, installs the
collection viewer from the content base and copies every item into
{target}/html/repository together with index.json.

A site load writes a static website into {target}/html instead: a page per
item, an index page with genre and speaker views, and catalog.md.

Missing files and unreadable folders are reported and skipped. The run is
recorded in the history database unless --no-history is given.

Examples:
  # Load a player device
  pdscload load -d /srv/archive -t /media/player --content-base /usr/share/pdscload

  # Write a static site onto a USB disk
  pdscload load -d /srv/archive -t /media/usb --kind site

  # Leave working folders out and keep a Markdown report
  pdscload load -x "**/_*" --report load.md`,
		Args: cobra.NoArgs,
		RunE: runLoadCmd,
	}

	addSourceFlags(cmd)
	cmd.Flags().StringP("target", "t", "",
		"Mount point or directory to load (env "+envTargetPath+")")
	cmd.Flags().StringP("kind", "k", string(config.DefaultTargetKind),
		"Target layout: device or site")
	cmd.Flags().String("content-base", "",
		"Directory holding the viewer application (env "+envContentBase+")")
	cmd.Flags().Bool("thumbnails", true,
		"Create previews for images that have none")
	cmd.Flags().Int("copy-concurrency", config.DefaultCopyConcurrency,
		"Files of one item copied at once")
	cmd.Flags().Bool("no-history", false,
		"Do not record the run in the history database")
	cmd.Flags().String("db-dir", "",
		"History database directory (default: XDG data directory)")
	cmd.Flags().StringP("report", "r", "",
		"Also write a Markdown load report to this file")

	return cmd
}

// runLoadCmd executes the load command.
func runLoadCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	reportPath, err := cmd.Flags().GetString("report")
	if err != nil {
		return err
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	run, err := runLoad(cmd.Context(), cmd, cfg, logger)
	if run == nil {
		return err
	}

	if werr := writeRunReports(cmd.OutOrStdout(), reportPath, cfg, run); werr != nil {
		logger.Error("failed to write report", "path", reportPath, "error", werr)
	}
	return err
}

// runLoad executes the load pipeline while holding the target lock and
// records the run. The run is nil when the target could not be locked.
func runLoad(ctx context.Context, cmd *cobra.Command, cfg *config.Config, logger *slog.Logger) (*model.LoadRun, error) {
	target := device.NewTarget(cfg.TargetPath)
	if err := target.Lock(); err != nil {
		return nil, &pipeline.FatalError{Step: "lock_target", Err: err}
	}
	defer func() {
		if err := target.Unlock(); err != nil {
			logger.Warn("failed to release target lock", "error", err)
		}
	}()

	logger.Info("starting load",
		"data", cfg.DataPath,
		"target", cfg.TargetPath,
		"kind", cfg.TargetKind,
	)

	run := model.NewLoadRun(cfg.DataPath, cfg.TargetPath, cfg.TargetKind)
	observer := run.Observer(observerFor(cmd.ErrOrStderr(), cfg, logger))

	err := pipeline.DefaultPipeline(cfg, observer, logger).Execute(ctx, run)

	// The history is written even when the load was interrupted.
	if saveErr := saveRun(context.WithoutCancel(ctx), cfg, run, logger); saveErr != nil {
		logger.Error("failed to save run", "run", run.ID, "error", saveErr)
	}
	return run, err
}

// saveRun records run in the history database if enabled.
func saveRun(ctx context.Context, cfg *config.Config, run *model.LoadRun, logger *slog.Logger) error {
	if !cfg.SaveToDB {
		return nil
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := db.SaveRun(ctx, run); err != nil {
		return err
	}
	logger.Info("run saved to database", "run", run.ID, "path", db.Path())
	return nil
}

// writeRunReports prints the run summary to stdout and, when reportPath is
// set, writes a Markdown report there as well.
func writeRunReports(stdout io.Writer, reportPath string, cfg *config.Config, run *model.LoadRun) error {
	writers := []report.Writer{report.NewSimpleWriter(stdout, report.WithVerbose(cfg.Verbose))}

	if reportPath != "" {
		out, closeOut, err := openOutput(stdout, reportPath)
		if err != nil {
			return err
		}
		defer func() { _ = closeOut() }()
		writers = append(writers, report.NewMarkdownWriter(out, report.WithSpeakerRoles(cfg.SpeakerRoles)))
	}

	_, err := report.NewMultiWriter(writers...).WriteRun(run)
	return err
}
