package redis

import (
	"context"
	"encoding/json"
	"math/rand"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"trivia-quiz/internal/domain"
)

const (
	categoriesKey = "quiz:categories"
	// retryAfter bounds how long a failed or empty load is reused.
	retryAfter = 30 * time.Second
)

// CategoryLoader fetches the category list from the trivia API.
type CategoryLoader interface {
	FetchCategories(ctx context.Context) ([]domain.Category, error)
}

// CategoryRepository caches the category list in Redis and falls back to the loader on a miss.
type CategoryRepository struct {
	client *redis.Client
	loader CategoryLoader
	ttl    time.Duration
	sf     singleflight.Group
	rnd    *rand.Rand
	clock  func() time.Time

	mu      sync.Mutex
	lastErr error
	retryAt time.Time
}

func NewCategoryRepository(client *redis.Client, loader CategoryLoader, ttl time.Duration) *CategoryRepository {
	return &CategoryRepository{
		client: client,
		loader: loader,
		ttl:    ttl,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		clock:  time.Now,
	}
}

func (r *CategoryRepository) Categories(ctx context.Context) ([]domain.Category, error) {
	if categories, ok := r.cached(ctx); ok {
		return categories, nil
	}
	if err := r.recentFailure(); err != nil {
		return nil, err
	}

	result, err, _ := r.sf.Do(categoriesKey, func() (interface{}, error) {
		// Re-check cache in case another goroutine filled it.
		if categories, ok := r.cached(ctx); ok {
			return categories, nil
		}

		categories, err := r.loader.FetchCategories(ctx)
		if err != nil {
			r.mu.Lock()
			r.lastErr = err
			r.retryAt = r.clock().Add(retryAfter)
			r.mu.Unlock()
			return nil, err
		}

		ttl := r.ttlWithJitter()
		if len(categories) == 0 {
			ttl = min(ttl, retryAfter)
		}
		if data, err := json.Marshal(categories); err == nil {
			_ = r.client.Set(ctx, categoriesKey, data, ttl).Err()
		}
		return categories, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]domain.Category), nil
}

func (r *CategoryRepository) cached(ctx context.Context) ([]domain.Category, bool) {
	raw, err := r.client.Get(ctx, categoriesKey).Bytes()
	if err != nil {
		return nil, false
	}
	var categories []domain.Category
	if err := json.Unmarshal(raw, &categories); err != nil {
		return nil, false
	}
	return categories, true
}

func (r *CategoryRepository) recentFailure() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lastErr != nil && r.clock().Before(r.retryAt) {
		return r.lastErr
	}
	return nil
}

func (r *CategoryRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}
