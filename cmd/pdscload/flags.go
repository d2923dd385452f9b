package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/pdscload/internal/config"
	applog "github.com/nao1215/pdscload/internal/log"
	"github.com/nao1215/pdscload/internal/model"
)

// Environment variables supplying defaults for the path flags.
const (
	envDataPath    = "PDSCLOAD_DATA_PATH"
	envTargetPath  = "PDSCLOAD_TARGET_PATH"
	envContentBase = "PDSCLOAD_CONTENT_BASE"
)

// addSourceFlags registers the flags that select and index the archive.
func addSourceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("data", "d", "",
		"Root of the archive tree (env "+envDataPath+")")
	cmd.Flags().StringSliceP("exclude", "x", nil,
		"Doublestar pattern of folders to skip, relative to the data path (repeatable)")
	cmd.Flags().String("catalog-url", config.NewConfig().CatalogURL,
		"Base of collection links")
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .pdscload in current or home directory)")
}

// buildConfig creates a Config from defaults, the config file, the
// environment and the flags set on cmd, each overriding the one before.
func buildConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.NewConfig()

	var err error
	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// A missing file is only an error when it was asked for.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	if configPath != "" {
		cf, err := config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
		cfg.ApplyFile(cf)
	} else if cfg.ConfigFilePath != "" {
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	}

	applyEnv(cfg)

	if err := applyFlags(cmd, cfg); err != nil {
		return nil, err
	}

	cfg.Verbose = persistentBool(cmd, "verbose")
	cfg.JSONLog = persistentBool(cmd, "log-json")
	return cfg, nil
}

func applyEnv(cfg *config.Config) {
	if v, ok := os.LookupEnv(envDataPath); ok && v != "" {
		cfg.DataPath = v
	}
	if v, ok := os.LookupEnv(envTargetPath); ok && v != "" {
		cfg.TargetPath = v
	}
	if v, ok := os.LookupEnv(envContentBase); ok && v != "" {
		cfg.ContentBasePath = v
	}
}

// applyFlags copies the flags the user set onto cfg. Flags left at their
// default do not override the config file or the environment.
func applyFlags(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()

	stringFlags := map[string]*string{
		"data":         &cfg.DataPath,
		"target":       &cfg.TargetPath,
		"content-base": &cfg.ContentBasePath,
		"catalog-url":  &cfg.CatalogURL,
	}
	for name, dst := range stringFlags {
		if flags.Lookup(name) == nil || !flags.Changed(name) {
			continue
		}
		v, err := flags.GetString(name)
		if err != nil {
			return err
		}
		*dst = v
	}

	if flags.Lookup("kind") != nil && flags.Changed("kind") {
		kind, err := flags.GetString("kind")
		if err != nil {
			return err
		}
		cfg.TargetKind = model.TargetKind(kind)
	}

	if flags.Changed("exclude") {
		patterns, err := flags.GetStringSlice("exclude")
		if err != nil {
			return err
		}
		cfg.ExcludePatterns = patterns
	}

	if flags.Lookup("thumbnails") != nil && flags.Changed("thumbnails") {
		v, err := flags.GetBool("thumbnails")
		if err != nil {
			return err
		}
		cfg.GenerateThumbnails = v
	}

	if flags.Lookup("copy-concurrency") != nil && flags.Changed("copy-concurrency") {
		v, err := flags.GetInt("copy-concurrency")
		if err != nil {
			return err
		}
		cfg.CopyConcurrency = v
	}

	if flags.Lookup("db-dir") != nil && flags.Changed("db-dir") {
		v, err := flags.GetString("db-dir")
		if err != nil {
			return err
		}
		cfg.DBDir = v
	}

	if flags.Lookup("no-history") != nil {
		noHistory, err := flags.GetBool("no-history")
		if err != nil {
			return err
		}
		cfg.SaveToDB = !noHistory
	}

	return nil
}

// persistentBool retrieves a root flag from the command or its parents.
func persistentBool(cmd *cobra.Command, name string) bool {
	v, err := cmd.Flags().GetBool(name)
	if err != nil {
		v, err = cmd.Root().PersistentFlags().GetBool(name)
		if err != nil {
			return false
		}
	}
	return v
}

// setupLogger creates the logger for cfg, naming the data and target paths.
func setupLogger(w io.Writer, cfg *config.Config) *slog.Logger {
	return applog.NewLogger(w, applog.Options{
		Verbose: cfg.Verbose,
		JSON:    cfg.JSONLog,
		Roots: []applog.Root{
			{Name: "$DATA", Path: cfg.DataPath},
			{Name: "$TARGET", Path: cfg.TargetPath},
		},
	})
}

// observerFor returns the observer printing pipeline events to w, mirrored
// to the logger when verbose.
func observerFor(w io.Writer, cfg *config.Config, logger *slog.Logger) model.Observer {
	console := applog.NewConsoleObserver(w, applog.WithVerbose(cfg.Verbose))
	if !cfg.Verbose {
		return console
	}
	return model.MultiObserver{console, applog.NewSlogObserver(logger)}
}

// dbDirFlag returns the --db-dir flag, falling back to the XDG data directory.
func dbDirFlag(cmd *cobra.Command) (string, error) {
	dir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = config.XDGDataDir()
	}
	return dir, nil
}
