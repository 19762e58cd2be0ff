package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite" // driver: sqlite

	"trivia-quiz/internal/domain"
)

const defaultRecentLimit = 20

const schema = `
CREATE TABLE IF NOT EXISTS quiz_results (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  session_id TEXT NOT NULL,
  score INTEGER NOT NULL,
  total INTEGER NOT NULL,
  finished_at INTEGER NOT NULL
);
`

// ResultRecorder stores finished runs in a local SQLite file.
type ResultRecorder struct {
	db *sql.DB
}

// Open opens the database and ensures the schema exists.
func Open(ctx context.Context, path string) (*ResultRecorder, error) {
	dsn := path
	if dsn == "" {
		dsn = "file:trivia.db?cache=shared&mode=rwc&_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &ResultRecorder{db: db}, nil
}

func (r *ResultRecorder) Close() error {
	return r.db.Close()
}

func (r *ResultRecorder) Record(ctx context.Context, result domain.Result) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO quiz_results (session_id, score, total, finished_at) VALUES (?, ?, ?, ?)`,
		result.SessionID, result.Score, result.Total, result.FinishedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (r *ResultRecorder) Recent(ctx context.Context, limit int) ([]domain.Result, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	rows, err := r.db.QueryContext(ctx,
		`SELECT session_id, score, total, finished_at FROM quiz_results ORDER BY finished_at DESC, id DESC LIMIT ?`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []domain.Result
	for rows.Next() {
		var (
			result     domain.Result
			finishedAt int64
		)
		if err := rows.Scan(&result.SessionID, &result.Score, &result.Total, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		result.FinishedAt = time.UnixMilli(finishedAt).UTC()
		results = append(results, result)
	}
	return results, rows.Err()
}
