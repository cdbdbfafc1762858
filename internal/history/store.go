package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"tccretro/internal/config"
)

// ErrNotFound is returned when a run id has no row.
var ErrNotFound = errors.New("run not found")

const dateLayout = "2006-01-02"

// Run summarizes one finalized report.
type Run struct {
	ID              string
	CreatedAt       time.Time
	RangeStart      time.Time
	RangeEnd        time.Time
	Source          string
	Records         int
	SampleRows      int
	Truncated       bool
	AnalyzersOK     int
	AnalyzersFailed int
	Warnings        int
	FeedbackStatus  string
	FeedbackReason  string
	Provider        string
	ReportPath      string
	Duration        time.Duration
}

// Store manages run history persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open connects to the history database configured in cfg.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	return OpenPath(ctx, cfg.HistoryPath())
}

// OpenPath initializes or connects to the database at path.
func OpenPath(ctx context.Context, path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string { return s.path }

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts run. The id must be unique.
func (s *Store) Record(ctx context.Context, run Run) error {
	if run.ID == "" {
		return errors.New("record run: id is required")
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (
            run_id, created_at, range_start, range_end, source, records, sample_rows,
            truncated, analyzers_ok, analyzers_failed, warnings, feedback_status,
            feedback_reason, provider, report_path, duration_ms
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID,
		run.CreatedAt.UTC().Format(time.RFC3339Nano),
		run.RangeStart.Format(dateLayout),
		run.RangeEnd.Format(dateLayout),
		nullableString(run.Source),
		run.Records,
		run.SampleRows,
		boolToInt(run.Truncated),
		run.AnalyzersOK,
		run.AnalyzersFailed,
		run.Warnings,
		run.FeedbackStatus,
		nullableString(run.FeedbackReason),
		nullableString(run.Provider),
		nullableString(run.ReportPath),
		run.Duration.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

const runColumns = "run_id, created_at, range_start, range_end, source, records, sample_rows, truncated, analyzers_ok, analyzers_failed, warnings, feedback_status, feedback_reason, provider, report_path, duration_ms"

// List returns the most recent runs, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	query := "SELECT " + runColumns + " FROM runs ORDER BY created_at DESC, run_id DESC"
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Get fetches a run by id.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+runColumns+" FROM runs WHERE run_id = ?", id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("get run: %w", err)
	}
	return run, nil
}

// Prune keeps the newest keep runs and deletes the rest.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 0 {
		keep = 0
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE run_id NOT IN (
            SELECT run_id FROM runs ORDER BY created_at DESC, run_id DESC LIMIT ?
        )`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	return res.RowsAffected()
}

func scanRun(scanner interface{ Scan(dest ...any) error }) (Run, error) {
	var (
		run            Run
		createdRaw     string
		startRaw       string
		endRaw         string
		source         sql.NullString
		truncated      int64
		feedbackReason sql.NullString
		provider       sql.NullString
		reportPath     sql.NullString
		durationMS     int64
	)
	if err := scanner.Scan(
		&run.ID,
		&createdRaw,
		&startRaw,
		&endRaw,
		&source,
		&run.Records,
		&run.SampleRows,
		&truncated,
		&run.AnalyzersOK,
		&run.AnalyzersFailed,
		&run.Warnings,
		&run.FeedbackStatus,
		&feedbackReason,
		&provider,
		&reportPath,
		&durationMS,
	); err != nil {
		return Run{}, err
	}
	run.Source = source.String
	run.Truncated = truncated != 0
	run.FeedbackReason = feedbackReason.String
	run.Provider = provider.String
	run.ReportPath = reportPath.String
	run.Duration = time.Duration(durationMS) * time.Millisecond
	if t, err := time.Parse(time.RFC3339Nano, createdRaw); err == nil {
		run.CreatedAt = t
	}
	if t, err := time.Parse(dateLayout, startRaw); err == nil {
		run.RangeStart = t
	}
	if t, err := time.Parse(dateLayout, endRaw); err == nil {
		run.RangeEnd = t
	}
	return run, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
