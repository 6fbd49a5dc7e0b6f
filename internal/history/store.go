package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrRunNotFound is returned when no run matches the requested identifier.
var ErrRunNotFound = errors.New("run not found")

// ErrAmbiguousRun is returned when a run ID prefix matches more than one run.
var ErrAmbiguousRun = errors.New("run id prefix is ambiguous")

// Store manages the run ledger backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
	// Fixed-width so started_at sorts correctly as text.
	timeLayout = "2006-01-02T15:04:05.000000000Z07:00"
)

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

// Open initializes or connects to the ledger at path.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("history path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
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
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: path}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// BeginRun inserts a new run in the running state. A missing ID is generated
// and a zero StartedAt is set to now.
func (s *Store) BeginRun(ctx context.Context, run Run) (Run, error) {
	if strings.TrimSpace(run.ID) == "" {
		run.ID = uuid.NewString()
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now()
	}
	run.StartedAt = run.StartedAt.UTC()
	run.Outcome = OutcomeRunning
	run.FinishedAt = nil

	_, err := s.exec(ctx, `INSERT INTO runs (id, organization, network_id, interval_seconds, outcome, started_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, run.Organization, run.NetworkID, run.IntervalSeconds, string(run.Outcome), run.StartedAt.Format(timeLayout))
	if err != nil {
		return Run{}, fmt.Errorf("insert run: %w", err)
	}
	return run, nil
}

// SetTarget records what the run resolved before dispatching.
func (s *Store) SetTarget(ctx context.Context, runID, organizationID, shard string, deviceCount int, placeholder bool) error {
	_, err := s.exec(ctx, `UPDATE runs SET organization_id = ?, shard = ?, device_count = ?, placeholder = ? WHERE id = ?`,
		organizationID, shard, deviceCount, boolToInt(placeholder), runID)
	if err != nil {
		return fmt.Errorf("update run target: %w", err)
	}
	return nil
}

// RecordResult appends one dispatched reboot to a run.
func (s *Store) RecordResult(ctx context.Context, result Result) error {
	if result.RequestedAt.IsZero() {
		result.RequestedAt = time.Now()
	}
	_, err := s.exec(ctx, `INSERT INTO results (run_id, position, serial, model, status_code, error_message, requested_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		result.RunID, result.Position, result.Serial, result.Model, result.StatusCode, result.Error,
		result.RequestedAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

// FinishRun closes a run with its outcome and counters.
func (s *Store) FinishRun(ctx context.Context, runID string, outcome Outcome, succeeded, failed int, errMsg string, finished time.Time) error {
	if finished.IsZero() {
		finished = time.Now()
	}
	res, err := s.exec(ctx, `UPDATE runs SET outcome = ?, succeeded = ?, failed = ?, error_message = ?, finished_at = ? WHERE id = ?`,
		string(outcome), succeeded, failed, errMsg, finished.UTC().Format(timeLayout), runID)
	if err != nil {
		return fmt.Errorf("finish run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", runID, ErrRunNotFound)
	}
	return nil
}

const runColumns = `id, organization, organization_id, shard, network_id, interval_seconds, device_count,
	succeeded, failed, placeholder, outcome, error_message, started_at, finished_at`

// ListRuns returns the most recent runs, newest first. A non-positive limit
// returns every run.
func (s *Store) ListRuns(ctx context.Context, limit int) ([]Run, error) {
	ctx = ensureContext(ctx)
	query := "SELECT " + runColumns + " FROM runs ORDER BY started_at DESC, id"
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
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns the run whose ID equals id or, failing that, the single run
// whose ID starts with id.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	ctx = ensureContext(ctx)
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, ErrRunNotFound
	}
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+runColumns+" FROM runs WHERE id = ? OR substr(id, 1, length(?)) = ? ORDER BY id = ? DESC LIMIT 2",
		id, id, id, id)
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	switch {
	case len(matches) == 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case matches[0].ID == id || len(matches) == 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousRun, id)
	}
}

// ListResults returns the results of a run in dispatch order.
func (s *Store) ListResults(ctx context.Context, runID string) ([]Result, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx, `SELECT run_id, position, serial, model, status_code, error_message, requested_at
		FROM results WHERE run_id = ? ORDER BY position, id`, runID)
	if err != nil {
		return nil, fmt.Errorf("list results: %w", err)
	}
	defer rows.Close()

	var results []Result
	for rows.Next() {
		var (
			result    Result
			requested string
		)
		if err := rows.Scan(&result.RunID, &result.Position, &result.Serial, &result.Model,
			&result.StatusCode, &result.Error, &requested); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		if result.RequestedAt, err = parseTime(requested); err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate results: %w", err)
	}
	return results, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run         Run
		placeholder int
		outcome     string
		started     string
		finished    sql.NullString
	)
	if err := row.Scan(&run.ID, &run.Organization, &run.OrganizationID, &run.Shard, &run.NetworkID,
		&run.IntervalSeconds, &run.DeviceCount, &run.Succeeded, &run.Failed, &placeholder,
		&outcome, &run.Error, &started, &finished); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Placeholder = placeholder != 0
	run.Outcome = Outcome(outcome)
	var err error
	if run.StartedAt, err = parseTime(started); err != nil {
		return Run{}, err
	}
	if finished.Valid && finished.String != "" {
		ts, err := parseTime(finished.String)
		if err != nil {
			return Run{}, err
		}
		run.FinishedAt = &ts
	}
	return run, nil
}

func parseTime(value string) (time.Time, error) {
	ts, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse timestamp %q: %w", value, err)
	}
	return ts, nil
}

func boolToInt(v bool) int {
	if v {
		return 1
	}
	return 0
}
