package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"

	"trivia-quiz/internal/domain"
)

const defaultRecentLimit = 20

// ResultRecorder stores finished runs in the quiz_results table.
type ResultRecorder struct {
	pool *pgxpool.Pool
}

func NewResultRecorder(pool *pgxpool.Pool) *ResultRecorder {
	return &ResultRecorder{pool: pool}
}

func (r *ResultRecorder) Record(ctx context.Context, result domain.Result) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO quiz_results (session_id, score, total, finished_at) VALUES ($1, $2, $3, $4)`,
		result.SessionID, result.Score, result.Total, result.FinishedAt)
	if err != nil {
		return fmt.Errorf("insert result: %w", err)
	}
	return nil
}

func (r *ResultRecorder) Recent(ctx context.Context, limit int) ([]domain.Result, error) {
	if limit <= 0 {
		limit = defaultRecentLimit
	}
	rows, err := r.pool.Query(ctx,
		`SELECT session_id, score, total, finished_at FROM quiz_results ORDER BY finished_at DESC, id DESC LIMIT $1`,
		limit)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	defer rows.Close()

	var results []domain.Result
	for rows.Next() {
		var result domain.Result
		if err := rows.Scan(&result.SessionID, &result.Score, &result.Total, &result.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan result: %w", err)
		}
		results = append(results, result)
	}
	return results, rows.Err()
}
