package main

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for pdscload.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdscload",
		Short: "Load PARADISEC collections onto devices and disks",
		Long: `pdscload indexes a PARADISEC archive tree and loads it onto a target.

It finds every item folder holding a catalog file, builds an index of the
items and their collections, and writes it either onto a player device
(viewer plus data repository) or onto a disk as a static website.

A .env file in the current directory is read before any command runs.`,
		Version:           getVersion(),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: loadDotEnv,
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	cmd.AddCommand(NewLoadCmd())
	cmd.AddCommand(NewIndexCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// loadDotEnv reads .env into the environment. Variables already set win.
func loadDotEnv(_ *cobra.Command, _ []string) error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to load .env: %w", err)
	}
	return nil
}
