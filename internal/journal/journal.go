package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DefaultLimit bounds Recent when no limit is given.
const DefaultLimit = 20

// timeLayout is fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Entry is one recorded run.
type Entry struct {
	ID           int64         `json:"id" yaml:"id"`
	RunID        uuid.UUID     `json:"run_id" yaml:"run_id"`
	Input        string        `json:"input" yaml:"input"`
	Output       string        `json:"output,omitempty" yaml:"output,omitempty"`
	Kind         string        `json:"kind" yaml:"kind"`
	Factor       float64       `json:"factor" yaml:"factor"`
	Schema       string        `json:"schema,omitempty" yaml:"schema,omitempty"`
	Warnings     int           `json:"warnings" yaml:"warnings"`
	Replaced     int           `json:"replaced" yaml:"replaced"`
	Status       string        `json:"status" yaml:"status"`
	ErrorKind    string        `json:"error_kind,omitempty" yaml:"error_kind,omitempty"`
	ErrorMessage string        `json:"error,omitempty" yaml:"error,omitempty"`
	Duration     time.Duration `json:"duration" yaml:"duration"`
	CreatedAt    time.Time     `json:"created_at" yaml:"created_at"`
}

// Journal is a run history backed by SQLite. It is safe for concurrent use.
type Journal struct {
	db   *sql.DB
	path string
}

// Open creates or opens the journal at path and applies migrations.
func Open(ctx context.Context, path string) (*Journal, error) {
	if path == "" {
		return nil, errors.New("journal path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create journal dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	j := &Journal{db: db, path: path}
	if err := j.applyMigrations(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return j, nil
}

// Path returns the database file location.
func (j *Journal) Path() string { return j.path }

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record appends e and returns it with ID and CreatedAt filled in. A zero
// RunID is replaced with a fresh one.
func (j *Journal) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.RunID == uuid.Nil {
		e.RunID = uuid.New()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	e.CreatedAt = e.CreatedAt.UTC()

	res, err := j.db.ExecContext(
		ctx,
		`INSERT INTO runs (
            run_id, input_path, output_path, kind, factor, schema,
            warnings, replaced, status, error_kind, error_message,
            duration_ms, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.RunID.String(),
		e.Input,
		nullableString(e.Output),
		e.Kind,
		e.Factor,
		nullableString(e.Schema),
		e.Warnings,
		e.Replaced,
		e.Status,
		nullableString(e.ErrorKind),
		nullableString(e.ErrorMessage),
		e.Duration.Milliseconds(),
		e.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Entry{}, fmt.Errorf("last insert id: %w", err)
	}
	e.ID = id
	return e, nil
}

// Recent returns up to limit entries, newest first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}
	rows, err := j.db.QueryContext(
		ctx,
		`SELECT id, run_id, input_path, output_path, kind, factor, schema,
            warnings, replaced, status, error_kind, error_message,
            duration_ms, created_at
        FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return entries, nil
}

// ByRun returns every entry recorded under runID in insertion order.
func (j *Journal) ByRun(ctx context.Context, runID uuid.UUID) ([]Entry, error) {
	rows, err := j.db.QueryContext(
		ctx,
		`SELECT id, run_id, input_path, output_path, kind, factor, schema,
            warnings, replaced, status, error_kind, error_message,
            duration_ms, created_at
        FROM runs WHERE run_id = ? ORDER BY id`,
		runID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("query run %s: %w", runID, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return entries, nil
}

// Prune removes entries created before cutoff and reports how many went.
func (j *Journal) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := j.db.ExecContext(ctx, "DELETE FROM runs WHERE created_at < ?", cutoff.UTC().Format(timeLayout))
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

func scanEntry(scanner interface{ Scan(dest ...any) error }) (Entry, error) {
	var (
		e          Entry
		runID      string
		output     sql.NullString
		schema     sql.NullString
		errKind    sql.NullString
		errMessage sql.NullString
		durationMS int64
		createdRaw string
	)
	if err := scanner.Scan(
		&e.ID, &runID, &e.Input, &output, &e.Kind, &e.Factor, &schema,
		&e.Warnings, &e.Replaced, &e.Status, &errKind, &errMessage,
		&durationMS, &createdRaw,
	); err != nil {
		return Entry{}, fmt.Errorf("scan run: %w", err)
	}
	parsed, err := uuid.Parse(runID)
	if err != nil {
		return Entry{}, fmt.Errorf("parse run id %q: %w", runID, err)
	}
	e.RunID = parsed
	e.Output = output.String
	e.Schema = schema.String
	e.ErrorKind = errKind.String
	e.ErrorMessage = errMessage.String
	e.Duration = time.Duration(durationMS) * time.Millisecond
	if created, err := parseTimeString(createdRaw); err == nil {
		e.CreatedAt = created
	}
	return e, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
