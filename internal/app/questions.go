package app

import (
	"context"
	"html"
	"math/rand"
	"sync"
	"time"

	"trivia-quiz/internal/domain"
	"trivia-quiz/internal/opentdb"
)

// QuestionFetcher is the remote source of raw questions.
type QuestionFetcher interface {
	FetchQuestions(ctx context.Context, amount int, query map[string]string) ([]opentdb.RawQuestion, error)
}

// QuestionProvider fetches raw questions and turns them into display-ready ones.
type QuestionProvider struct {
	fetcher QuestionFetcher

	mu  sync.Mutex
	rnd *rand.Rand
}

func NewQuestionProvider(fetcher QuestionFetcher) *QuestionProvider {
	return NewQuestionProviderWithRand(fetcher, rand.New(rand.NewSource(time.Now().UnixNano())))
}

// NewQuestionProviderWithRand is used by tests that need a deterministic shuffle.
func NewQuestionProviderWithRand(fetcher QuestionFetcher, rnd *rand.Rand) *QuestionProvider {
	return &QuestionProvider{fetcher: fetcher, rnd: rnd}
}

// Fetch loads a new batch. The returned slice replaces whatever list a session held.
func (p *QuestionProvider) Fetch(ctx context.Context, amount int, query map[string]string) ([]domain.Question, error) {
	raw, err := p.fetcher.FetchQuestions(ctx, amount, query)
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return BuildQuestions(raw, p.rnd), nil
}

func BuildQuestions(raw []opentdb.RawQuestion, rnd *rand.Rand) []domain.Question {
	questions := make([]domain.Question, 0, len(raw))
	for _, item := range raw {
		questions = append(questions, BuildQuestion(item, rnd))
	}
	return questions
}

// BuildQuestion inserts the correct answer at a uniformly random position
// among the incorrect ones.
func BuildQuestion(raw opentdb.RawQuestion, rnd *rand.Rand) domain.Question {
	correct := html.UnescapeString(raw.CorrectAnswer)

	answers := make([]string, 0, len(raw.IncorrectAnswers)+1)
	for _, incorrect := range raw.IncorrectAnswers {
		answers = append(answers, html.UnescapeString(incorrect))
	}

	pos := rnd.Intn(len(answers) + 1)
	answers = append(answers, "")
	copy(answers[pos+1:], answers[pos:])
	answers[pos] = correct

	return domain.Question{
		Text:          html.UnescapeString(raw.Question),
		CorrectAnswer: correct,
		Answers:       answers,
	}
}
