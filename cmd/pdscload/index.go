package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/pdscload/internal/model"
	"github.com/nao1215/pdscload/internal/pipeline"
	"github.com/nao1215/pdscload/internal/report"
)

// NewIndexCmd creates the index command.
func NewIndexCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "index",
		Short: "Index the archive without loading a target",
		Long: `Index walks the archive, builds the index and writes it out.

The output is the index.json a device load would write, except that file
paths point into the archive. --format markdown writes a catalogue instead,
listing every collection with its items followed by the genre and speaker
views; --format text prints one line per item.

Examples:
  # Print the index
  pdscload index -d /srv/archive --pretty

  # Write a catalogue
  pdscload index -d /srv/archive -f markdown -o catalog.md`,
		Args: cobra.NoArgs,
		RunE: runIndexCmd,
	}

	addSourceFlags(cmd)
	cmd.Flags().StringP("output", "o", "",
		"Write the index to this file instead of stdout")
	cmd.Flags().BoolP("pretty", "p", false,
		"Indent the JSON output")
	cmd.Flags().StringP("format", "f", string(report.FormatJSON),
		"Output format: "+strings.Join(report.Formats(), ", "))

	return cmd
}

// runIndexCmd executes the index command.
func runIndexCmd(cmd *cobra.Command, _ []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateSource(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	output, err := cmd.Flags().GetString("output")
	if err != nil {
		return err
	}
	pretty, err := cmd.Flags().GetBool("pretty")
	if err != nil {
		return err
	}
	formatName, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(formatName)
	if err != nil {
		return err
	}

	logger := setupLogger(cmd.ErrOrStderr(), cfg)
	slog.SetDefault(logger)

	run := model.NewLoadRun(cfg.DataPath, "", "")
	observer := run.Observer(observerFor(cmd.ErrOrStderr(), cfg, logger))
	if err := pipeline.IndexPipeline(cfg, observer, logger).Execute(cmd.Context(), run); err != nil {
		return err
	}

	out, closeOut, err := openOutput(cmd.OutOrStdout(), output)
	if err != nil {
		return err
	}
	w, err := report.New(format, out, report.Options{Pretty: pretty, SpeakerRoles: cfg.SpeakerRoles})
	if err != nil {
		_ = closeOut()
		return err
	}

	if _, err := w.Write(run.Index); err != nil {
		_ = closeOut()
		return fmt.Errorf("failed to write index: %w", err)
	}
	return closeOut()
}

// openOutput returns the file at path, or stdout when path is empty.
func openOutput(stdout io.Writer, path string) (io.Writer, func() error, error) {
	if path == "" {
		return stdout, func() error { return nil }, nil
	}

	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600) //nolint:gosec // path given by the user
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, f.Close, nil
}
