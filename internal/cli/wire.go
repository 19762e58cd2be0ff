package cli

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/redis/go-redis/v9"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/config"
	"trivia-quiz/internal/infra/memory"
	"trivia-quiz/internal/infra/postgres"
	redisstore "trivia-quiz/internal/infra/redis"
	"trivia-quiz/internal/infra/sqlite"
	"trivia-quiz/internal/opentdb"
)

// buildService wires the quiz service from config. Redis replaces the
// in-memory session store and category cache when configured; results go to
// Postgres, then SQLite, then memory, whichever is configured first.
func buildService(ctx context.Context, cfg config.Config) (*app.QuizService, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	client := opentdb.NewClient(cfg.OpenTDB.BaseURL, &http.Client{
		Timeout: config.TTLDuration(cfg.OpenTDB.Timeout, 10*time.Second),
	})
	categoriesTTL := config.TTLDuration(cfg.Quiz.CategoriesTTL, time.Hour)

	var (
		sessions   app.SessionRepository
		categories app.CategoryRepository
	)
	if cfg.Redis.Addr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		closers = append(closers, func() { _ = redisClient.Close() })
		sessions = redisstore.NewSessionStore(redisClient, config.TTLDuration(cfg.Redis.TTL, 30*time.Minute))
		categories = redisstore.NewCategoryRepository(redisClient, client, categoriesTTL)
	} else {
		sessions = memory.NewSessionStore()
		categories = memory.NewCategoryRepository(client, categoriesTTL)
	}

	var results app.ResultRecorder
	switch {
	case cfg.Postgres.URL != "":
		if err := runMigrations(ctx, cfg.Postgres.URL); err != nil {
			cleanup()
			return nil, nil, err
		}
		pool, err := pgxpool.Connect(ctx, cfg.Postgres.URL)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, pool.Close)
		results = postgres.NewResultRecorder(pool)
	case cfg.SQLite.Path != "":
		recorder, err := sqlite.Open(ctx, cfg.SQLite.Path)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		closers = append(closers, func() { _ = recorder.Close() })
		results = recorder
	default:
		results = memory.NewResultRecorder()
	}

	service := app.NewQuizService(sessions, app.NewQuestionProvider(client), app.Options{
		Categories: categories,
		Tokens:     client,
		Results:    results,
		Defaults: app.StartOptions{
			Amount:     cfg.Quiz.Amount,
			Type:       cfg.Quiz.Type,
			Category:   cfg.Quiz.Category,
			Difficulty: cfg.Quiz.Difficulty,
		},
	})
	return service, cleanup, nil
}
