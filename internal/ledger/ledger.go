// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records batch conversion runs and per-target outcomes in a
// SQLite database so that repeated runs can skip unchanged sources and past
// runs can be reported.
package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/lutetab/pkg/types"
)

// DefaultFile is the ledger file name placed in the output directory.
const DefaultFile = ".lutetab.db"

// ErrUnknownRun is returned when a run id is not in the ledger.
var ErrUnknownRun = errors.New("unknown run")

// Store manages the ledger database.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the ledger at path, creating its directory and
// schema when missing.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating ledger directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	s := &Store{db: db, now: time.Now}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			finished_at TEXT,
			source_dir TEXT NOT NULL,
			output_dir TEXT NOT NULL,
			converted INTEGER NOT NULL DEFAULT 0,
			copied INTEGER NOT NULL DEFAULT 0,
			skipped INTEGER NOT NULL DEFAULT 0,
			unchanged INTEGER NOT NULL DEFAULT 0,
			failed INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS conversions (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(id),
			source_path TEXT NOT NULL,
			source_sha256 TEXT NOT NULL,
			target TEXT NOT NULL,
			output_path TEXT,
			status TEXT NOT NULL,
			error_class TEXT,
			error TEXT,
			converted_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_source ON conversions(source_path)`,
		`CREATE INDEX IF NOT EXISTS idx_conversions_run ON conversions(run_id)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun inserts a new run and returns its id.
func (s *Store) BeginRun(ctx context.Context, sourceDir, outputDir string) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, source_dir, output_dir) VALUES (?, ?, ?, ?)`,
		id, formatTime(s.now()), sourceDir, outputDir,
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// FinishRun stores the final counts of a run.
func (s *Store) FinishRun(ctx context.Context, runID string, counts types.RunCounts) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, converted = ?, copied = ?, skipped = ?, unchanged = ?, failed = ?
		 WHERE id = ?`,
		formatTime(s.now()), counts.Converted, counts.Copied, counts.Skipped, counts.Unchanged, counts.Failed, runID,
	)
	if err != nil {
		return fmt.Errorf("updating run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownRun, runID)
	}
	return nil
}

// Record appends one conversion outcome. A zero ConvertedAt is set to now.
func (s *Store) Record(ctx context.Context, rec types.ConversionRecord) error {
	if rec.ConvertedAt.IsZero() {
		rec.ConvertedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO conversions (run_id, source_path, source_sha256, target, output_path, status, error_class, error, converted_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.RunID, rec.SourcePath, rec.SourceSHA256, rec.Target, rec.OutputPath,
		string(rec.Status), string(rec.ErrorClass), rec.Error, formatTime(rec.ConvertedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting conversion for %s: %w", rec.SourcePath, err)
	}
	return nil
}

// LastSuccess reports whether the most recent record of every target for
// sourcePath is a successful conversion of content with the given digest.
func (s *Store) LastSuccess(ctx context.Context, sourcePath, sha string, targets []string) (bool, error) {
	if len(targets) == 0 {
		return false, nil
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT target, status, source_sha256 FROM conversions
		 WHERE source_path = ? ORDER BY id DESC`, sourcePath)
	if err != nil {
		return false, fmt.Errorf("querying conversions: %w", err)
	}
	defer rows.Close()

	latest := make(map[string]bool, len(targets))
	seen := make(map[string]bool, len(targets))
	for rows.Next() {
		var target, status, digest string
		if err := rows.Scan(&target, &status, &digest); err != nil {
			return false, fmt.Errorf("scanning conversion: %w", err)
		}
		if seen[target] {
			continue
		}
		seen[target] = true
		latest[target] = status == string(types.StatusConverted) && digest == sha
	}
	if err := rows.Err(); err != nil {
		return false, err
	}

	for _, t := range targets {
		if !latest[t] {
			return false, nil
		}
	}
	return true, nil
}

// Runs returns up to limit runs, newest first. limit <= 0 returns all.
func (s *Store) Runs(ctx context.Context, limit int) ([]types.Run, error) {
	query := `SELECT id, started_at, finished_at, source_dir, output_dir,
		converted, copied, skipped, unchanged, failed
		FROM runs ORDER BY started_at DESC, rowid DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []types.Run
	for rows.Next() {
		var (
			r        types.Run
			started  string
			finished sql.NullString
		)
		if err := rows.Scan(&r.ID, &started, &finished, &r.SourceDir, &r.OutputDir,
			&r.Converted, &r.Copied, &r.Skipped, &r.Unchanged, &r.Failed); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.StartedAt = parseTime(started)
		if finished.Valid {
			r.FinishedAt = parseTime(finished.String)
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Conversions returns the records of one run in insertion order.
func (s *Store) Conversions(ctx context.Context, runID string) ([]types.ConversionRecord, error) {
	var exists int
	if err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM runs WHERE id = ?`, runID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("checking run: %w", err)
	}
	if exists == 0 {
		return nil, fmt.Errorf("%w: %s", ErrUnknownRun, runID)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, source_path, source_sha256, target, output_path, status, error_class, error, converted_at
		 FROM conversions WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying conversions: %w", err)
	}
	defer rows.Close()

	var recs []types.ConversionRecord
	for rows.Next() {
		var (
			rec                           types.ConversionRecord
			output, status, class, errMsg sql.NullString
			at                            string
		)
		if err := rows.Scan(&rec.RunID, &rec.SourcePath, &rec.SourceSHA256, &rec.Target,
			&output, &status, &class, &errMsg, &at); err != nil {
			return nil, fmt.Errorf("scanning conversion: %w", err)
		}
		rec.OutputPath = output.String
		rec.Status = types.FileStatus(status.String)
		rec.ErrorClass = types.ErrorClass(class.String)
		rec.Error = errMsg.String
		rec.ConvertedAt = parseTime(at)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
