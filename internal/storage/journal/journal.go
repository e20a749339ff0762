// Package journal persists one row per bridge operation in journal.db.
package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// DefaultLimit caps Recent and ForRepository when limit is not positive.
const DefaultLimit = 50

// Entry is one recorded operation.
type Entry struct {
	ID           int64     `json:"id"`
	SessionID    string    `json:"sessionId,omitempty"`
	RepoPath     string    `json:"repoPath,omitempty"`
	Operation    string    `json:"operation"`
	OK           bool      `json:"ok"`
	ErrorCode    string    `json:"errorCode,omitempty"`
	ErrorMessage string    `json:"errorMessage,omitempty"`
	DurationMs   int64     `json:"durationMs"`
	CreatedAt    time.Time `json:"createdAt" ts_type:"string"`
}

// Repository reads and writes journal entries.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// Record inserts e and returns it with ID and CreatedAt filled.
func (r *Repository) Record(ctx context.Context, e Entry) (Entry, error) {
	if e.Operation == "" {
		return Entry{}, errors.New("journal entry needs an operation")
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.now().UTC()
	}
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO operations (session_id, repo_path, operation, ok, error_code, error_message, duration_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, nullIfEmpty(e.SessionID), nullIfEmpty(e.RepoPath), e.Operation, e.OK,
		nullIfEmpty(e.ErrorCode), nullIfEmpty(e.ErrorMessage), e.DurationMs, e.CreatedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("insert operation: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return Entry{}, fmt.Errorf("operation id: %w", err)
	}
	e.ID = id
	return e, nil
}

// Recent returns the newest entries across all repositories.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Entry, error) {
	return r.query(ctx, `
		SELECT id, session_id, repo_path, operation, ok, error_code, error_message, duration_ms, created_at
		FROM operations
		ORDER BY id DESC
		LIMIT ?
	`, clampLimit(limit))
}

// ForRepository returns the newest entries recorded against path.
func (r *Repository) ForRepository(ctx context.Context, path string, limit int) ([]Entry, error) {
	return r.query(ctx, `
		SELECT id, session_id, repo_path, operation, ok, error_code, error_message, duration_ms, created_at
		FROM operations
		WHERE repo_path = ?
		ORDER BY id DESC
		LIMIT ?
	`, path, clampLimit(limit))
}

// Prune deletes entries older than before and reports how many went.
func (r *Repository) Prune(ctx context.Context, before time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM operations WHERE created_at < ?`, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("prune operations: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("prune operations: %w", err)
	}
	return n, nil
}

func (r *Repository) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query operations: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e                           Entry
			session, repo, code, errMsg sql.NullString
		)
		if err := rows.Scan(&e.ID, &session, &repo, &e.Operation, &e.OK, &code, &errMsg, &e.DurationMs, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan operation: %w", err)
		}
		e.SessionID = session.String
		e.RepoPath = repo.String
		e.ErrorCode = code.String
		e.ErrorMessage = errMsg.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate operations: %w", err)
	}
	return entries, nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	return limit
}

func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}
	return s
}
