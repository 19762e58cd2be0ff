package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"trivia-quiz/internal/domain"
)

// CategoryLoader fetches the category list from the trivia API.
type CategoryLoader interface {
	FetchCategories(ctx context.Context) ([]domain.Category, error)
}

// RetryAfter bounds how long a failed or empty category load is reused.
const RetryAfter = 30 * time.Second

// CategoryRepository caches categories with TTL to avoid a remote call per page render.
type CategoryRepository struct {
	loader CategoryLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu        sync.RWMutex
	loaded    bool
	cached    []domain.Category
	err       error
	expiresAt time.Time
}

func NewCategoryRepository(loader CategoryLoader, ttl time.Duration) *CategoryRepository {
	return &CategoryRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Categories returns the cached list. A failed or empty load is kept for
// RetryAfter so callers do not wait on a down API for every render.
func (r *CategoryRepository) Categories(ctx context.Context) ([]domain.Category, error) {
	if categories, ok, err := r.fresh(r.clock()); ok {
		return categories, err
	}

	result, err, _ := r.sf.Do("categories", func() (interface{}, error) {
		now := r.clock()
		if categories, ok, err := r.fresh(now); ok {
			return categories, err
		}

		categories, err := r.loader.FetchCategories(ctx)
		ttl := r.ttlWithJitter()
		if err != nil || len(categories) == 0 {
			ttl = min(ttl, RetryAfter)
		}

		r.mu.Lock()
		r.loaded = true
		r.cached = categories
		r.err = err
		r.expiresAt = now.Add(ttl)
		r.mu.Unlock()
		return categories, err
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Category), nil
}

func (r *CategoryRepository) fresh(now time.Time) ([]domain.Category, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.loaded && r.expiresAt.After(now) {
		return r.cached, true, r.err
	}
	return nil, false, nil
}

// StaticCategoryLoader is a simple loader backed by a fixed list (useful for tests/demos).
type StaticCategoryLoader struct {
	categories []domain.Category
}

func NewStaticCategoryLoader(categories []domain.Category) *StaticCategoryLoader {
	return &StaticCategoryLoader{categories: categories}
}

func (l *StaticCategoryLoader) FetchCategories(_ context.Context) ([]domain.Category, error) {
	return l.categories, nil
}

func (r *CategoryRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	// add up to 10% jitter to spread expirations
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
