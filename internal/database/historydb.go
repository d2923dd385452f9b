package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/pdscload/internal/model"
)

// FileName is the database file created in the database directory.
const FileName = "pdscload.db"

// timeLayout sorts lexically in the same order as the times it encodes.
const timeLayout = "2006-01-02 15:04:05.000000"

// HistoryDB stores load runs in SQLite.
type HistoryDB struct {
	db *sql.DB

	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the history database in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, FileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// mode=rw refuses to create a missing file.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return hdb, nil
}

// Path returns the database file path.
func (h *HistoryDB) Path() string {
	return h.dbPath
}

// Close closes the database connection.
func (h *HistoryDB) Close() error {
	return h.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (h *HistoryDB) createTables() error {
	schema := `
	-- One row per load run
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at TEXT NOT NULL,
		finished_at TEXT,
		data_path TEXT NOT NULL,
		target_path TEXT NOT NULL,
		target_kind TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT,
		item_count INTEGER DEFAULT 0,
		collection_count INTEGER DEFAULT 0,
		error_count INTEGER DEFAULT 0,
		messages_json TEXT,
		index_json TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_target ON runs(target_path);

	-- Items written by a run
	CREATE TABLE IF NOT EXISTS run_items (
		run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		item_key TEXT NOT NULL,
		title TEXT,
		elements INTEGER DEFAULT 0,
		PRIMARY KEY (run_id, item_key)
	);
	`

	_, err := h.db.ExecContext(context.Background(), schema)
	return err
}

// RunRecord is a stored load run.
type RunRecord struct {
	ID              string
	StartedAt       time.Time
	FinishedAt      time.Time
	DataPath        string
	TargetPath      string
	TargetKind      model.TargetKind
	Status          model.RunStatus
	Error           string
	ItemCount       int
	CollectionCount int
	ErrorCount      int

	// Messages and Index are only loaded by GetRun.
	Messages []model.Message
	Index    *model.Index
}

// LoadRun rebuilds the run a record was saved from, for reporting. The
// stored items stand in for both the index and the installed items.
func (r *RunRecord) LoadRun() *model.LoadRun {
	run := &model.LoadRun{
		ID:           r.ID,
		StartedAt:    r.StartedAt,
		FinishedAt:   r.FinishedAt,
		DataPath:     r.DataPath,
		TargetPath:   r.TargetPath,
		TargetKind:   r.TargetKind,
		Index:        r.Index,
		Messages:     r.Messages,
		Status:       r.Status,
		ErrorMessage: r.Error,
	}
	if r.Error != "" {
		run.Error = errors.New(r.Error)
	}
	if r.Index != nil {
		run.Installed = r.Index.Items
	}
	return run
}

// SaveRun stores a run and the items it wrote. Saving a run twice replaces
// the earlier record.
func (h *HistoryDB) SaveRun(ctx context.Context, run *model.LoadRun) error {
	items := runItems(run)

	idx := &model.Index{Collections: []*model.Collection{}, Items: items}
	if run.Index != nil {
		idx.Collections = run.Index.Collections
	}
	indexJSON, err := json.Marshal(idx)
	if err != nil {
		return fmt.Errorf("failed to serialize index: %w", err)
	}
	messagesJSON, err := json.Marshal(run.Messages)
	if err != nil {
		return fmt.Errorf("failed to serialize messages: %w", err)
	}

	tx, err := h.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	query := `
	INSERT INTO runs (id, started_at, finished_at, data_path, target_path, target_kind,
		status, error, item_count, collection_count, error_count, messages_json, index_json)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(id) DO UPDATE SET
		finished_at = excluded.finished_at,
		status = excluded.status,
		error = excluded.error,
		item_count = excluded.item_count,
		collection_count = excluded.collection_count,
		error_count = excluded.error_count,
		messages_json = excluded.messages_json,
		index_json = excluded.index_json
	`
	_, err = tx.ExecContext(ctx, query,
		run.ID,
		formatTime(run.StartedAt),
		formatTime(run.FinishedAt),
		run.DataPath,
		run.TargetPath,
		string(run.TargetKind),
		string(run.Status),
		run.ErrorMessage,
		len(items),
		len(idx.Collections),
		run.ErrorCount(),
		string(messagesJSON),
		string(indexJSON),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM run_items WHERE run_id = ?", run.ID); err != nil {
		return fmt.Errorf("failed to clear run items: %w", err)
	}
	for _, item := range items {
		_, err := tx.ExecContext(ctx,
			"INSERT INTO run_items (run_id, item_key, title, elements) VALUES (?, ?, ?, ?)",
			run.ID, item.Key(), item.Title, item.Elements,
		)
		if err != nil {
			return fmt.Errorf("failed to save run item %s: %w", item.Key(), err)
		}
	}

	return tx.Commit()
}

// runItems returns the items a run wrote: the installed copies once an
// install step has run, even when it wrote none, the indexed items otherwise.
func runItems(run *model.LoadRun) []*model.Item {
	if run.Installed != nil {
		return run.Installed
	}
	if run.Index != nil {
		return run.Index.Items
	}
	return []*model.Item{}
}

const runColumns = `id, started_at, finished_at, data_path, target_path, target_kind,
	status, error, item_count, collection_count, error_count`

// ListRuns returns the most recent runs first. A limit of zero or less
// returns every run.
func (h *HistoryDB) ListRuns(ctx context.Context, limit int) ([]RunRecord, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, rowid DESC"
	args := make([]interface{}, 0)
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return h.queryRuns(ctx, query, args...)
}

// LatestRuns returns the n most recent completed runs, newest first.
func (h *HistoryDB) LatestRuns(ctx context.Context, n int) ([]RunRecord, error) {
	query := "SELECT " + runColumns + ` FROM runs
	WHERE status = ?
	ORDER BY started_at DESC, rowid DESC
	LIMIT ?`
	return h.queryRuns(ctx, query, string(model.RunCompleted), n)
}

func (h *HistoryDB) queryRuns(ctx context.Context, query string, args ...interface{}) ([]RunRecord, error) {
	rows, err := h.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunRecord, 0)
	for rows.Next() {
		rec, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *rec)
	}
	return runs, rows.Err()
}

// GetRun retrieves a run with its messages and index.
// It returns nil, nil when no run has the given id.
func (h *HistoryDB) GetRun(ctx context.Context, id string) (*RunRecord, error) {
	query := "SELECT " + runColumns + ", messages_json, index_json FROM runs WHERE id = ?"

	var messagesJSON, indexJSON sql.NullString
	rec, err := scanRun(h.db.QueryRowContext(ctx, query, id), &messagesJSON, &indexJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if messagesJSON.Valid && messagesJSON.String != "" {
		if err := json.Unmarshal([]byte(messagesJSON.String), &rec.Messages); err != nil {
			return nil, fmt.Errorf("failed to parse messages: %w", err)
		}
	}
	if indexJSON.Valid && indexJSON.String != "" {
		rec.Index = model.NewIndex()
		if err := json.Unmarshal([]byte(indexJSON.String), rec.Index); err != nil {
			return nil, fmt.Errorf("failed to parse index: %w", err)
		}
	}
	return rec, nil
}

// RunItemKeys returns the sorted keys of the items written by a run.
func (h *HistoryDB) RunItemKeys(ctx context.Context, id string) ([]string, error) {
	rows, err := h.db.QueryContext(ctx, "SELECT item_key FROM run_items WHERE run_id = ?", id)
	if err != nil {
		return nil, fmt.Errorf("failed to get run items: %w", err)
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan run item: %w", err)
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRun(row scanner, extra ...interface{}) (*RunRecord, error) {
	var rec RunRecord
	var startedAt string
	var finishedAt, errMsg sql.NullString
	var kind, status string

	dest := []interface{}{
		&rec.ID,
		&startedAt,
		&finishedAt,
		&rec.DataPath,
		&rec.TargetPath,
		&kind,
		&status,
		&errMsg,
		&rec.ItemCount,
		&rec.CollectionCount,
		&rec.ErrorCount,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan run: %w", err)
	}

	rec.StartedAt = parseTimestamp(startedAt)
	rec.FinishedAt = parseTimestamp(finishedAt.String)
	rec.TargetKind = model.TargetKind(kind)
	rec.Status = model.RunStatus(status)
	rec.Error = errMsg.String
	return &rec, nil
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(timeLayout)
}

// timestampFormats contains the timestamp formats that may be stored.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",  // stored layout; fractional seconds are accepted when parsing
	"2006-01-02T15:04:05Z", // ISO 8601 with Z suffix
	time.RFC3339Nano,
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
