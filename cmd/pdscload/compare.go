package main

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/nao1215/pdscload/internal/database"
)

// RunDiff lists the items that differ between two runs.
type RunDiff struct {
	Older   string
	Newer   string
	Added   []string
	Removed []string
	Kept    int
}

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [older-run newer-run]",
		Short: "Compare the items of two load runs",
		Long: `Compare shows which items were added and removed between two load runs.

Without arguments the two most recent completed runs are compared. Run IDs
are listed by 'pdscload history'.

Examples:
  # Compare the last two completed loads
  pdscload compare

  # Compare two specific runs
  pdscload compare 0b6f2c4e-... 7d1a9e30-...`,
		Args: func(_ *cobra.Command, args []string) error {
			if len(args) != 0 && len(args) != 2 {
				return errors.New("compare takes either no run IDs or two")
			}
			return nil
		},
		RunE: runCompareCmd,
	}

	cmd.Flags().String("db-dir", "", "History database directory (default: XDG data directory)")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	dbDir, err := dbDirFlag(cmd)
	if err != nil {
		return err
	}

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	older, newer, err := runPair(ctx, db, args)
	if err != nil {
		return err
	}

	diff, err := compareRuns(ctx, db, older, newer)
	if err != nil {
		return err
	}
	printDiff(cmd, diff)
	return nil
}

// runPair returns the IDs to compare, oldest first.
func runPair(ctx context.Context, db *database.HistoryDB, args []string) (string, string, error) {
	if len(args) == 2 {
		for _, id := range args {
			rec, err := db.GetRun(ctx, id)
			if err != nil {
				return "", "", err
			}
			if rec == nil {
				return "", "", fmt.Errorf("run not found: %s", id)
			}
		}
		return args[0], args[1], nil
	}

	latest, err := db.LatestRuns(ctx, 2)
	if err != nil {
		return "", "", err
	}
	if len(latest) < 2 {
		return "", "", errors.New("at least two completed runs are needed (see 'pdscload history')")
	}
	return latest[1].ID, latest[0].ID, nil
}

func compareRuns(ctx context.Context, db *database.HistoryDB, older, newer string) (*RunDiff, error) {
	before, err := db.RunItemKeys(ctx, older)
	if err != nil {
		return nil, err
	}
	after, err := db.RunItemKeys(ctx, newer)
	if err != nil {
		return nil, err
	}

	diff := &RunDiff{Older: older, Newer: newer}
	for _, key := range after {
		if _, found := slices.BinarySearch(before, key); !found {
			diff.Added = append(diff.Added, key)
		} else {
			diff.Kept++
		}
	}
	for _, key := range before {
		if _, found := slices.BinarySearch(after, key); !found {
			diff.Removed = append(diff.Removed, key)
		}
	}
	return diff, nil
}

func printDiff(cmd *cobra.Command, diff *RunDiff) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Comparing %s (older) with %s (newer)\n", diff.Older, diff.Newer)

	if len(diff.Added) == 0 && len(diff.Removed) == 0 {
		fmt.Fprintf(out, "No changes: %d items in both runs.\n", diff.Kept)
		return
	}

	rows := make([][]string, 0, len(diff.Added)+len(diff.Removed))
	for _, key := range diff.Added {
		rows = append(rows, []string{"added", key})
	}
	for _, key := range diff.Removed {
		rows = append(rows, []string{"removed", key})
	}
	fmt.Fprintln(out, renderTable([]string{"Change", "Item"}, rows))
	fmt.Fprintf(out, "%d added, %d removed, %d unchanged\n", len(diff.Added), len(diff.Removed), diff.Kept)
}
