package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"github.com/t77yq/cronbeat/internal/model"
)

// RunHistory defines the interface for execution history storage
type RunHistory interface {
	// Store persists one execution record
	Store(ctx context.Context, exec *model.Execution) error

	// List retrieves records for a job (or all jobs when job is empty),
	// newest first, with pagination
	List(ctx context.Context, job string, offset, limit int) ([]*model.Execution, error)

	// Count returns the number of stored records for a job (or all jobs
	// when job is empty)
	Count(ctx context.Context, job string) (int, error)

	// DeleteBefore deletes records older than the specified time and
	// returns how many were removed
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// SQLiteRunHistory implements RunHistory using SQLite
type SQLiteRunHistory struct {
	logger *zap.Logger
	db     *sql.DB
}

// NewSQLiteRunHistory opens (or creates) the history database at dbPath.
// Unlike job records, history survives process restarts.
func NewSQLiteRunHistory(logger *zap.Logger, dbPath string) (*SQLiteRunHistory, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteRunHistory{
		logger: logger.Named("run-history"),
		db:     db,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	return store, nil
}

func (s *SQLiteRunHistory) initialize() error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS run_history (
			id TEXT PRIMARY KEY,
			job TEXT NOT NULL,
			ts DATETIME NOT NULL,
			expression TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT,
			run_count INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_run_history_job ON run_history(job);
		CREATE INDEX IF NOT EXISTS idx_run_history_ts ON run_history(ts);
	`)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	return nil
}

// Store implements RunHistory.Store
func (s *SQLiteRunHistory) Store(ctx context.Context, exec *model.Execution) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO run_history (
			id, job, ts, expression, status, error, run_count
		) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		exec.ID,
		exec.Job,
		exec.Timestamp,
		exec.Expression,
		string(exec.Status),
		sql.NullString{String: exec.Error, Valid: exec.Error != ""},
		exec.RunCount,
	)
	if err != nil {
		return fmt.Errorf("failed to store execution record: %w", err)
	}
	return nil
}

// List implements RunHistory.List
func (s *SQLiteRunHistory) List(ctx context.Context, job string, offset, limit int) ([]*model.Execution, error) {
	query := "SELECT id, job, ts, expression, status, error, run_count FROM run_history"
	args := make([]interface{}, 0, 3)
	if job != "" {
		query += " WHERE job = ?"
		args = append(args, job)
	}
	query += " ORDER BY ts DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list execution records: %w", err)
	}
	defer rows.Close()

	var records []*model.Execution
	for rows.Next() {
		exec := &model.Execution{}
		var status string
		var errStr sql.NullString

		if err := rows.Scan(&exec.ID, &exec.Job, &exec.Timestamp, &exec.Expression, &status, &errStr, &exec.RunCount); err != nil {
			return nil, fmt.Errorf("failed to scan execution record: %w", err)
		}

		exec.Status = model.ExecutionStatus(status)
		if errStr.Valid {
			exec.Error = errStr.String
		}
		records = append(records, exec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during row iteration: %w", err)
	}

	return records, nil
}

// Count implements RunHistory.Count
func (s *SQLiteRunHistory) Count(ctx context.Context, job string) (int, error) {
	query := "SELECT COUNT(*) FROM run_history"
	args := make([]interface{}, 0, 1)
	if job != "" {
		query += " WHERE job = ?"
		args = append(args, job)
	}

	var count int
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count execution records: %w", err)
	}
	return count, nil
}

// DeleteBefore implements RunHistory.DeleteBefore
func (s *SQLiteRunHistory) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := s.db.ExecContext(ctx, "DELETE FROM run_history WHERE ts < ?", before)
	if err != nil {
		return 0, fmt.Errorf("failed to delete execution records: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}

	s.logger.Info("Deleted old execution records",
		zap.Time("before", before),
		zap.Int64("deleted", affected))

	return affected, nil
}

// Close closes the database connection
func (s *SQLiteRunHistory) Close() error {
	return s.db.Close()
}

// Recorder adapts a RunHistory to the scheduler's recorder contract.
// Store failures are demoted to warnings so a broken history database can
// never interrupt the tick loop.
type Recorder struct {
	logger *zap.Logger
	store  RunHistory
}

// NewRecorder wraps store as a non-failing recorder
func NewRecorder(store RunHistory, logger *zap.Logger) *Recorder {
	return &Recorder{
		logger: logger.Named("run-history"),
		store:  store,
	}
}

// Record persists the execution record, logging a warning on failure
func (r *Recorder) Record(ctx context.Context, exec *model.Execution) {
	if err := r.store.Store(ctx, exec); err != nil {
		r.logger.Warn("Failed to persist execution record",
			zap.String("job", exec.Job),
			zap.Error(err))
	}
}
