package app

import (
	"sync"
	"time"

	"trivia-quiz/internal/domain"
)

// Store holds the navigational state of one quiz session together with the
// questions it was seeded with.
type Store struct {
	id        string
	now       func() time.Time
	mu        sync.RWMutex
	state     domain.State
	questions []domain.Question
	updatedAt time.Time
}

// NewStore is exported for infrastructure layers that create sessions.
func NewStore(id string) *Store {
	return NewStoreWithClock(id, time.Now)
}

// NewStoreWithClock is test-only for deterministic timestamps.
func NewStoreWithClock(id string, now func() time.Time) *Store {
	return &Store{
		id:        id,
		now:       now,
		state:     domain.InitialState(),
		updatedAt: now(),
	}
}

// RestoreStore rebuilds a store from a persisted record.
func RestoreStore(id string, state domain.State, questions []domain.Question, updatedAt time.Time) *Store {
	if state.Page == "" {
		state.Page = domain.PageIntro
	}
	if state.UserAnswers == nil {
		state.UserAnswers = []string{}
	}
	return &Store{
		id:        id,
		now:       time.Now,
		state:     state,
		questions: questions,
		updatedAt: updatedAt,
	}
}

func (s *Store) ID() string {
	return s.id
}

// Record returns copies of the state and questions for persistence.
func (s *Store) Record() (domain.State, []domain.Question, time.Time) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyState(s.state), append([]domain.Question(nil), s.questions...), s.updatedAt
}

func (s *Store) Page() domain.Page {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Page
}

// Score counts recorded answers matching the correct answer at the same index.
func (s *Store) Score() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.scoreLocked()
}

func (s *Store) Progress() domain.Progress {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.progressLocked()
}

func (s *Store) CurrentQuestion() (domain.Question, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	q := s.currentLocked()
	if q == nil {
		return domain.Question{}, false
	}
	return *q, true
}

func (s *Store) Question(index int) (domain.Question, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if index < 0 || index >= len(s.questions) {
		return domain.Question{}, false
	}
	return s.questions[index], true
}

// Snapshot captures everything a renderer needs in one consistent read.
func (s *Store) Snapshot() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := domain.Snapshot{
		SessionID: s.id,
		State:     copyState(s.state),
		Score:     s.scoreLocked(),
		Progress:  s.progressLocked(),
	}
	if q := s.currentLocked(); q != nil {
		current := *q
		snap.Question = &current
	}
	return snap
}

// CanStart reports whether a start action is allowed on the current page.
func (s *Store) CanStart() bool {
	page := s.Page()
	return page == domain.PageIntro || page == domain.PageOutro
}

// Begin resets the state wholesale, seeds the questions and shows the first one.
func (s *Store) Begin(questions []domain.Question) error {
	if len(questions) == 0 {
		return domain.ErrNoQuestions
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Page != domain.PageIntro && s.state.Page != domain.PageOutro {
		return domain.ErrInvalidTransition
	}

	first := 0
	s.state = domain.InitialState()
	s.state.Page = domain.PageQuestion
	s.state.CurrentQuestionIndex = &first
	s.questions = append([]domain.Question(nil), questions...)
	s.touchLocked()
	return nil
}

// Submit records the answer for the current question and moves to the answer page.
func (s *Store) Submit(answer string) (domain.Feedback, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Page != domain.PageQuestion {
		return domain.Feedback{}, domain.ErrInvalidTransition
	}
	question := s.currentLocked()
	if question == nil {
		return domain.Feedback{}, domain.ErrInvalidTransition
	}

	s.state.UserAnswers = append(s.state.UserAnswers, answer)
	feedback := domain.Feedback{
		Correct:       answer == question.CorrectAnswer,
		CorrectAnswer: question.CorrectAnswer,
	}
	s.state.Feedback = &feedback
	s.state.Page = domain.PageAnswer
	s.touchLocked()
	return feedback, nil
}

// Continue advances to the next question, or to the outro after the last one.
func (s *Store) Continue() (domain.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Page != domain.PageAnswer || s.state.CurrentQuestionIndex == nil {
		return s.state.Page, domain.ErrInvalidTransition
	}

	current := *s.state.CurrentQuestionIndex
	if current >= len(s.questions)-1 {
		s.state.Page = domain.PageOutro
	} else {
		next := current + 1
		s.state.CurrentQuestionIndex = &next
		s.state.Page = domain.PageQuestion
	}
	s.touchLocked()
	return s.state.Page, nil
}

// Restart returns to the intro page. Answers are kept until the next start.
func (s *Store) Restart() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Page != domain.PageIntro && s.state.Page != domain.PageOutro {
		return domain.ErrInvalidTransition
	}
	s.state.Page = domain.PageIntro
	s.touchLocked()
	return nil
}

func (s *Store) scoreLocked() int {
	score := 0
	for i, answer := range s.state.UserAnswers {
		if i >= len(s.questions) {
			break
		}
		if s.questions[i].CorrectAnswer == answer {
			score++
		}
	}
	return score
}

func (s *Store) progressLocked() domain.Progress {
	progress := domain.Progress{Total: len(s.questions)}
	if s.state.CurrentQuestionIndex != nil {
		progress.Current = *s.state.CurrentQuestionIndex + 1
	}
	return progress
}

func (s *Store) currentLocked() *domain.Question {
	idx := s.state.CurrentQuestionIndex
	if idx == nil || *idx < 0 || *idx >= len(s.questions) {
		return nil
	}
	return &s.questions[*idx]
}

func (s *Store) touchLocked() {
	s.updatedAt = s.now()
}

func copyState(state domain.State) domain.State {
	out := state
	out.UserAnswers = append([]string{}, state.UserAnswers...)
	if state.CurrentQuestionIndex != nil {
		idx := *state.CurrentQuestionIndex
		out.CurrentQuestionIndex = &idx
	}
	if state.Feedback != nil {
		fb := *state.Feedback
		out.Feedback = &fb
	}
	return out
}
