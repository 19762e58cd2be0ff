package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"trivia-quiz/internal/domain"
	"trivia-quiz/internal/infra/memory"
)

func TestCategoryRepositoryCachesInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	loader := &countingLoader{
		CategoryLoader: memory.NewStaticCategoryLoader([]domain.Category{
			{ID: 9, Name: "General Knowledge"},
		}),
	}
	repo := NewCategoryRepository(newClient(mr), loader, time.Minute)

	if _, err := repo.Categories(context.Background()); err != nil {
		t.Fatalf("categories: %v", err)
	}
	if loader.calls != 1 {
		t.Fatalf("expected loader called once, got %d", loader.calls)
	}
	if !mr.Exists(categoriesKey) {
		t.Fatalf("expected categories cached in redis")
	}

	// Second call should hit cache, loader not incremented.
	categories, _ := repo.Categories(context.Background())
	if loader.calls != 1 {
		t.Fatalf("expected cache hit, loader calls=%d", loader.calls)
	}
	if len(categories) != 1 || categories[0].Name != "General Knowledge" {
		t.Fatalf("unexpected cached categories: %+v", categories)
	}
}

func TestCategoryRepositoryBacksOffAfterFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	loader := &failingLoader{err: errors.New("opentdb unreachable")}
	repo := NewCategoryRepository(newClient(mr), loader, time.Hour)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	repo.clock = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if _, err := repo.Categories(context.Background()); err == nil {
			t.Fatalf("expected load error on call %d", i+1)
		}
	}
	if loader.calls != 1 {
		t.Fatalf("expected one load while backing off, got %d", loader.calls)
	}
	if mr.Exists(categoriesKey) {
		t.Fatalf("failed load must not be written to redis")
	}

	now = now.Add(retryAfter + time.Second)
	loader.err = nil
	loader.categories = []domain.Category{{ID: 9, Name: "General Knowledge"}}
	if categories, err := repo.Categories(context.Background()); err != nil || len(categories) != 1 {
		t.Fatalf("expected recovery after retry window, got %+v err=%v", categories, err)
	}
}

func TestCategoryRepositoryCachesEmptyListBriefly(t *testing.T) {
	mr := miniredis.RunT(t)
	loader := &countingLoader{CategoryLoader: memory.NewStaticCategoryLoader(nil)}
	repo := NewCategoryRepository(newClient(mr), loader, time.Hour)

	_, _ = repo.Categories(context.Background())
	_, _ = repo.Categories(context.Background())
	if loader.calls != 1 {
		t.Fatalf("expected empty list cached, loader calls=%d", loader.calls)
	}
	if ttl := mr.TTL(categoriesKey); ttl != retryAfter {
		t.Fatalf("expected short ttl for empty list, got %v", ttl)
	}
}

type failingLoader struct {
	err        error
	categories []domain.Category
	calls      int
}

func (l *failingLoader) FetchCategories(context.Context) ([]domain.Category, error) {
	l.calls++
	return l.categories, l.err
}

type countingLoader struct {
	memory.CategoryLoader
	calls int
}

func (l *countingLoader) FetchCategories(ctx context.Context) ([]domain.Category, error) {
	l.calls++
	return l.CategoryLoader.FetchCategories(ctx)
}

func newClient(mr *miniredis.Miniredis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})
}
