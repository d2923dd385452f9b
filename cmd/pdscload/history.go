package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/pdscload/internal/database"
	"github.com/nao1215/pdscload/internal/report"
)

const historyTimeLayout = "2006-01-02 15:04"

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded load runs",
		Long: `History lists the load runs recorded in the history database, most
recent first.

Examples:
  # List the last 20 runs
  pdscload history

  # List every run
  pdscload history --limit 0

  # Show the report of one run
  pdscload history --show 0b6f2c4e-...`,
		Args: cobra.NoArgs,
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", 20, "Number of runs to list (0 for all)")
	cmd.Flags().String("show", "", "Print the report of the run with this ID")
	cmd.Flags().StringP("format", "f", string(report.FormatText),
		"Format of the --show report: "+strings.Join(report.Formats(), ", "))
	cmd.Flags().String("db-dir", "", "History database directory (default: XDG data directory)")

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	dbDir, err := dbDirFlag(cmd)
	if err != nil {
		return err
	}
	limit, err := cmd.Flags().GetInt("limit")
	if err != nil {
		return err
	}
	show, err := cmd.Flags().GetString("show")
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

	db, err := database.Open(dbDir, database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()
	if show != "" {
		return showRun(ctx, cmd, db, show, format)
	}
	return listRuns(ctx, cmd, db, limit)
}

func listRuns(ctx context.Context, cmd *cobra.Command, db *database.HistoryDB, limit int) error {
	runs, err := db.ListRuns(ctx, limit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID,
			r.StartedAt.Local().Format(historyTimeLayout),
			string(r.TargetKind),
			r.TargetPath,
			string(r.Status),
			strconv.Itoa(r.ItemCount),
			strconv.Itoa(r.ErrorCount),
		})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Run", "Started", "Kind", "Target", "Status", "Items", "Errors"},
		rows, 5, 6,
	))
	return nil
}

func showRun(ctx context.Context, cmd *cobra.Command, db *database.HistoryDB, id string, format report.Format) error {
	rec, err := db.GetRun(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("run not found: %s", id)
	}

	w, err := report.New(format, cmd.OutOrStdout(), report.Options{Verbose: true, Pretty: true})
	if err != nil {
		return err
	}
	_, err = w.WriteRun(rec.LoadRun())
	return err
}
