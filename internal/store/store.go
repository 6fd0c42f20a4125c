// Package store persists runs and their records behind database/sql.
// The driver is picked from the DSN: postgres:// URLs go through pgx,
// everything else is treated as a SQLite path (":memory:" included).
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/kwheaton/canvass/internal/common"
	"github.com/kwheaton/canvass/internal/entity"
)

// timeLayout is the canonical encoding for timestamp columns. Both drivers
// store it as TEXT, which keeps the schema portable.
const timeLayout = time.RFC3339Nano

// migrations run in order inside Migrate. One statement per entry; pgx's
// extended protocol rejects multi-statement Exec calls.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS runs (
		id            TEXT PRIMARY KEY,
		source        TEXT NOT NULL,
		status        TEXT NOT NULL,
		pages         INTEGER NOT NULL DEFAULT 0,
		failed_pages  INTEGER NOT NULL DEFAULT 0,
		records       INTEGER NOT NULL DEFAULT 0,
		skipped_lines INTEGER NOT NULL DEFAULT 0,
		error_message TEXT NOT NULL DEFAULT '',
		started_at    TEXT NOT NULL,
		finished_at   TEXT
	)`,
	`CREATE TABLE IF NOT EXISTS records (
		id              TEXT PRIMARY KEY,
		run_id          TEXT NOT NULL REFERENCES runs (id),
		surname         TEXT NOT NULL,
		given_name      TEXT NOT NULL,
		occupation      TEXT NOT NULL,
		home_address    TEXT NOT NULL,
		residence_type  TEXT NOT NULL DEFAULT '',
		spouse_name     TEXT NOT NULL DEFAULT '',
		surname_carried INTEGER NOT NULL DEFAULT 0,
		year            TEXT NOT NULL DEFAULT '',
		source          TEXT NOT NULL DEFAULT '',
		page_no         INTEGER NOT NULL DEFAULT 0,
		line_no         INTEGER NOT NULL DEFAULT 0,
		raw             TEXT NOT NULL DEFAULT '',
		created_at      TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_records_run_id ON records (run_id)`,
}

// Store wraps a SQL database holding runs and records.
type Store struct {
	db     *sql.DB
	driver string
	logger *slog.Logger
}

// Open connects to the database named by dsn. Callers own the returned
// Store and must Close it.
func Open(dsn string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if dsn == "" {
		return nil, fmt.Errorf("open store: %w", common.ErrInvalidInput)
	}

	driver := driverForDSN(dsn)
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s database: %w", driver, err)
	}
	if driver == "sqlite" {
		// modernc's ":memory:" database lives per connection; a second
		// connection would see an empty schema.
		db.SetMaxOpenConns(1)
	}

	logger.Info("store.open", "driver", driver)
	return &Store{db: db, driver: driver, logger: logger}, nil
}

func driverForDSN(dsn string) string {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "pgx"
	}
	return "sqlite"
}

// rebind rewrites "?" placeholders to "$n" for the pgx driver. SQLite
// takes the query unchanged.
func (s *Store) rebind(query string) string {
	if s.driver != "pgx" {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Migrate creates the schema if it does not exist yet.
func (s *Store) Migrate(ctx context.Context) error {
	for _, stmt := range migrations {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			s.logger.Error("failed to run migration", "error", err)
			return fmt.Errorf("migrate: %w", err)
		}
	}
	s.logger.Debug("store.migrated", "statements", len(migrations))
	return nil
}

// CreateRun inserts a new run row.
func (s *Store) CreateRun(ctx context.Context, run *entity.Run) error {
	q := s.rebind(`INSERT INTO runs
		(id, source, status, pages, failed_pages, records, skipped_lines, error_message, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := s.db.ExecContext(ctx, q,
		run.ID.String(), run.Source, run.Status,
		run.Pages, run.FailedPages, run.Records, run.SkippedLines,
		run.ErrorMessage, run.StartedAt.UTC().Format(timeLayout), nullTime(run.FinishedAt))
	if err != nil {
		s.logger.Error("failed to create run", "run_id", run.ID, "error", err)
		return fmt.Errorf("create run: %w", err)
	}
	return nil
}

// FinishRun writes the final counters and status of a run.
func (s *Store) FinishRun(ctx context.Context, run *entity.Run) error {
	q := s.rebind(`UPDATE runs SET
		status = ?, pages = ?, failed_pages = ?, records = ?, skipped_lines = ?,
		error_message = ?, finished_at = ?
		WHERE id = ?`)
	res, err := s.db.ExecContext(ctx, q,
		run.Status, run.Pages, run.FailedPages, run.Records, run.SkippedLines,
		run.ErrorMessage, nullTime(run.FinishedAt), run.ID.String())
	if err != nil {
		s.logger.Error("failed to finish run", "run_id", run.ID, "error", err)
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", run.ID, common.ErrNotFound)
	}
	return nil
}

// InsertRecords writes a batch of records in a single transaction.
func (s *Store) InsertRecords(ctx context.Context, records []*entity.Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin insert: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	q := s.rebind(`INSERT INTO records
		(id, run_id, surname, given_name, occupation, home_address,
		 residence_type, spouse_name, surname_carried, year, source,
		 page_no, line_no, raw, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	for _, rec := range records {
		_, err := tx.ExecContext(ctx, q,
			rec.ID.String(), rec.RunID.String(),
			rec.Surname, rec.GivenName, rec.Occupation, rec.HomeAddress,
			rec.ResidenceType, rec.SpouseName, boolInt(rec.SurnameCarried),
			rec.Year, rec.Source, rec.PageNo, rec.LineNo, rec.Raw,
			rec.CreatedAt.UTC().Format(timeLayout))
		if err != nil {
			s.logger.Error("failed to insert record", "record_id", rec.ID, "error", err)
			return fmt.Errorf("insert record: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit insert: %w", err)
	}
	s.logger.Debug("store.records.inserted", "count", len(records))
	return nil
}

// ListRecords returns all records of a run in page and line order.
func (s *Store) ListRecords(ctx context.Context, runID uuid.UUID) ([]*entity.Record, error) {
	q := s.rebind(`SELECT id, run_id, surname, given_name, occupation, home_address,
		residence_type, spouse_name, surname_carried, year, source,
		page_no, line_no, raw, created_at
		FROM records WHERE run_id = ? ORDER BY page_no, line_no`)
	rows, err := s.db.QueryContext(ctx, q, runID.String())
	if err != nil {
		s.logger.Error("failed to list records", "run_id", runID, "error", err)
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []*entity.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return out, nil
}

// GetRun returns a single run by id.
func (s *Store) GetRun(ctx context.Context, id uuid.UUID) (*entity.Run, error) {
	q := s.rebind(`SELECT id, source, status, pages, failed_pages, records,
		skipped_lines, error_message, started_at, finished_at
		FROM runs WHERE id = ?`)
	return s.scanRun(s.db.QueryRowContext(ctx, q, id.String()))
}

// LatestRun returns the most recently started run.
func (s *Store) LatestRun(ctx context.Context) (*entity.Run, error) {
	q := `SELECT id, source, status, pages, failed_pages, records,
		skipped_lines, error_message, started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT 1`
	return s.scanRun(s.db.QueryRowContext(ctx, q))
}

// ListRuns returns all runs, most recent first.
func (s *Store) ListRuns(ctx context.Context) ([]*entity.Run, error) {
	q := `SELECT id, source, status, pages, failed_pages, records,
		skipped_lines, error_message, started_at, finished_at
		FROM runs ORDER BY started_at DESC`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		s.logger.Error("failed to list runs", "error", err)
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []*entity.Run
	for rows.Next() {
		run, err := s.scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return out, nil
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	return nil
}

// Close releases the underlying connections.
func (s *Store) Close() error {
	return s.db.Close()
}

// scanner covers *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func (s *Store) scanRun(row scanner) (*entity.Run, error) {
	var (
		run        entity.Run
		id         string
		startedAt  string
		finishedAt sql.NullString
	)
	err := row.Scan(&id, &run.Source, &run.Status,
		&run.Pages, &run.FailedPages, &run.Records, &run.SkippedLines,
		&run.ErrorMessage, &startedAt, &finishedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run: %w", common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scan run: %w", err)
	}
	if run.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("scan run id: %w", err)
	}
	if run.StartedAt, err = parseTime(startedAt); err != nil {
		return nil, fmt.Errorf("scan run started_at: %w", err)
	}
	if finishedAt.Valid {
		t, err := parseTime(finishedAt.String)
		if err != nil {
			return nil, fmt.Errorf("scan run finished_at: %w", err)
		}
		run.FinishedAt = &t
	}
	return &run, nil
}

func scanRecord(row scanner) (*entity.Record, error) {
	var (
		rec       entity.Record
		id, runID string
		carried   int
		createdAt string
	)
	err := row.Scan(&id, &runID, &rec.Surname, &rec.GivenName,
		&rec.Occupation, &rec.HomeAddress, &rec.ResidenceType, &rec.SpouseName,
		&carried, &rec.Year, &rec.Source, &rec.PageNo, &rec.LineNo, &rec.Raw,
		&createdAt)
	if err != nil {
		return nil, fmt.Errorf("scan record: %w", err)
	}
	if rec.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("scan record id: %w", err)
	}
	if rec.RunID, err = uuid.Parse(runID); err != nil {
		return nil, fmt.Errorf("scan record run_id: %w", err)
	}
	rec.SurnameCarried = carried != 0
	if rec.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, fmt.Errorf("scan record created_at: %w", err)
	}
	return &rec, nil
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeLayout)
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(timeLayout, s)
}
