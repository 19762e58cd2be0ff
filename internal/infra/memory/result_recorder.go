package memory

import (
	"context"
	"sync"

	"trivia-quiz/internal/domain"
)

const maxResults = 100

// ResultRecorder keeps the most recent finished runs in memory.
type ResultRecorder struct {
	mu      sync.RWMutex
	results []domain.Result
}

func NewResultRecorder() *ResultRecorder {
	return &ResultRecorder{}
}

func (r *ResultRecorder) Record(_ context.Context, result domain.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
	if len(r.results) > maxResults {
		r.results = r.results[len(r.results)-maxResults:]
	}
	return nil
}

// Recent returns up to limit results, newest first. limit <= 0 returns all.
func (r *ResultRecorder) Recent(_ context.Context, limit int) ([]domain.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n := len(r.results)
	if limit > 0 && limit < n {
		n = limit
	}
	out := make([]domain.Result, 0, n)
	for i := len(r.results) - 1; i >= 0 && len(out) < n; i-- {
		out = append(out, r.results[i])
	}
	return out, nil
}
