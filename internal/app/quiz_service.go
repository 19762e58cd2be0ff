package app

import (
	"context"
	"errors"
	"log"
	"strconv"
	"time"

	"trivia-quiz/internal/domain"
)

// SessionRepository abstracts how quiz sessions are stored (in-memory, Redis, etc).
type SessionRepository interface {
	GetOrCreate(ctx context.Context, sessionID string) (*Store, error)
	Get(ctx context.Context, sessionID string) (*Store, error)
	Save(ctx context.Context, store *Store) error
	Delete(ctx context.Context, sessionID string) error
}

// CategoryRepository serves the list of question categories (from cache/backing API).
type CategoryRepository interface {
	Categories(ctx context.Context) ([]domain.Category, error)
}

// TokenSource acquires and exposes the remote session token.
type TokenSource interface {
	FetchToken(ctx context.Context) (string, error)
	Token() string
}

// ResultRecorder keeps finished runs.
type ResultRecorder interface {
	Record(ctx context.Context, result domain.Result) error
	Recent(ctx context.Context, limit int) ([]domain.Result, error)
}

// StartOptions select the question batch for a new run.
type StartOptions struct {
	Amount     int
	Type       string
	Category   string
	Difficulty string
}

func (o StartOptions) query() map[string]string {
	return map[string]string{
		"type":       o.Type,
		"category":   o.Category,
		"difficulty": o.Difficulty,
	}
}

func (o StartOptions) withDefaults(defaults StartOptions) StartOptions {
	if o.Amount <= 0 {
		o.Amount = defaults.Amount
	}
	if o.Type == "" {
		o.Type = defaults.Type
	}
	if o.Category == "" {
		o.Category = defaults.Category
	}
	if o.Difficulty == "" {
		o.Difficulty = defaults.Difficulty
	}
	return o
}

// Intent is one user action addressed to a session.
type Intent struct {
	Action domain.Action
	Answer string
	Start  StartOptions
}

// Options carries the optional collaborators of a QuizService.
type Options struct {
	Categories CategoryRepository
	Tokens     TokenSource
	Results    ResultRecorder
	Defaults   StartOptions
	Now        func() time.Time
}

// QuizService contains the quiz use cases.
type QuizService struct {
	sessions   SessionRepository
	provider   *QuestionProvider
	categories CategoryRepository
	tokens     TokenSource
	results    ResultRecorder
	defaults   StartOptions
	now        func() time.Time
}

func NewQuizService(sessions SessionRepository, provider *QuestionProvider, opts Options) *QuizService {
	defaults := opts.Defaults
	if defaults.Amount <= 0 {
		defaults.Amount = 10
	}
	if defaults.Type == "" {
		defaults.Type = "multiple"
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &QuizService{
		sessions:   sessions,
		provider:   provider,
		categories: opts.Categories,
		tokens:     opts.Tokens,
		results:    opts.Results,
		defaults:   defaults,
		now:        now,
	}
}

// Defaults returns the start options used when a request leaves fields empty.
func (s *QuizService) Defaults() StartOptions {
	return s.defaults
}

// Open returns the session, creating a fresh one on the intro page if needed.
func (s *QuizService) Open(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	store, err := s.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return store.Snapshot(), nil
}

func (s *QuizService) Snapshot(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	store, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	return store.Snapshot(), nil
}

// Start fetches a new batch of questions and shows the first one. A failed
// fetch is logged and leaves the session where it was.
func (s *QuizService) Start(ctx context.Context, sessionID string, opts StartOptions) (domain.Snapshot, error) {
	store, err := s.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if !store.CanStart() {
		return store.Snapshot(), domain.ErrInvalidTransition
	}

	opts = opts.withDefaults(s.defaults)
	questions, err := s.provider.Fetch(ctx, opts.Amount, opts.query())
	if err != nil {
		log.Printf("fetch questions failed: %v", err)
		if s.tokens != nil && s.tokens.Token() == "" {
			// the client drops a token the API no longer accepts
			s.AcquireToken(ctx)
		}
		return store.Snapshot(), err
	}
	if err := store.Begin(questions); err != nil {
		if errors.Is(err, domain.ErrNoQuestions) {
			log.Printf("fetch questions returned an empty batch for session %s", sessionID)
		}
		return store.Snapshot(), err
	}
	return s.save(ctx, store)
}

// Submit records an answer for the current question.
func (s *QuizService) Submit(ctx context.Context, sessionID, answer string) (domain.Snapshot, error) {
	store, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if _, err := store.Submit(answer); err != nil {
		return store.Snapshot(), err
	}
	return s.save(ctx, store)
}

// Continue moves past the feedback screen; finishing the last question records the run.
func (s *QuizService) Continue(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	store, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	page, err := store.Continue()
	if err != nil {
		return store.Snapshot(), err
	}
	snap, err := s.save(ctx, store)
	if err != nil {
		return snap, err
	}
	if page == domain.PageOutro {
		s.record(ctx, snap)
	}
	return snap, nil
}

func (s *QuizService) Restart(ctx context.Context, sessionID string) (domain.Snapshot, error) {
	store, err := s.sessions.GetOrCreate(ctx, sessionID)
	if err != nil {
		return domain.Snapshot{}, err
	}
	if err := store.Restart(); err != nil {
		return store.Snapshot(), err
	}
	return s.save(ctx, store)
}

// Dispatch routes an intent to the matching use case.
func (s *QuizService) Dispatch(ctx context.Context, sessionID string, intent Intent) (domain.Snapshot, error) {
	switch intent.Action {
	case domain.ActionStart:
		return s.Start(ctx, sessionID, intent.Start)
	case domain.ActionSubmit:
		return s.Submit(ctx, sessionID, intent.Answer)
	case domain.ActionContinue:
		return s.Continue(ctx, sessionID)
	case domain.ActionRestart:
		return s.Restart(ctx, sessionID)
	default:
		return domain.Snapshot{}, domain.ErrInvalidTransition
	}
}

// Forget drops a session.
func (s *QuizService) Forget(ctx context.Context, sessionID string) error {
	return s.sessions.Delete(ctx, sessionID)
}

// AcquireToken fetches the remote session token. Failures are logged; the
// quiz keeps working anonymously.
func (s *QuizService) AcquireToken(ctx context.Context) bool {
	if s.tokens == nil {
		return false
	}
	token, err := s.tokens.FetchToken(ctx)
	if err != nil {
		log.Printf("fetch session token failed: %v", err)
		return false
	}
	return token != ""
}

// TokenReady reports whether a session token has been acquired.
func (s *QuizService) TokenReady() bool {
	return s.tokens != nil && s.tokens.Token() != ""
}

func (s *QuizService) Categories(ctx context.Context) ([]domain.Category, error) {
	if s.categories == nil {
		return nil, nil
	}
	return s.categories.Categories(ctx)
}

func (s *QuizService) RecentResults(ctx context.Context, limit int) ([]domain.Result, error) {
	if s.results == nil {
		return nil, nil
	}
	return s.results.Recent(ctx, limit)
}

func (s *QuizService) save(ctx context.Context, store *Store) (domain.Snapshot, error) {
	snap := store.Snapshot()
	if err := s.sessions.Save(ctx, store); err != nil {
		return snap, err
	}
	return snap, nil
}

func (s *QuizService) record(ctx context.Context, snap domain.Snapshot) {
	if s.results == nil {
		return
	}
	result := domain.Result{
		SessionID:  snap.SessionID,
		Score:      snap.Score,
		Total:      snap.Progress.Total,
		FinishedAt: s.now().UTC(),
	}
	if err := s.results.Record(ctx, result); err != nil {
		log.Printf("record result for session %s failed: %v", snap.SessionID, err)
	}
}

// ParseStartOptions reads start options from loosely typed form values.
func ParseStartOptions(amount, category, difficulty string) StartOptions {
	opts := StartOptions{Category: category, Difficulty: difficulty}
	if n, err := strconv.Atoi(amount); err == nil && n > 0 {
		opts.Amount = n
	}
	return opts
}
