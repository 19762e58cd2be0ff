package app

import (
	"context"
	"math/rand"
	"testing"

	"trivia-quiz/internal/opentdb"
)

func TestBuildQuestionKeepsEveryAnswerOnce(t *testing.T) {
	rnd := rand.New(rand.NewSource(1))
	tests := []struct {
		name      string
		incorrect []string
	}{
		{name: "no incorrect answers", incorrect: nil},
		{name: "boolean", incorrect: []string{"False"}},
		{name: "multiple", incorrect: []string{"1", "2", "3"}},
		{name: "many", incorrect: []string{"a", "b", "c", "d", "e", "f"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			for i := 0; i < 50; i++ {
				q := BuildQuestion(opentdb.RawQuestion{
					Question:         "Q",
					CorrectAnswer:    "correct",
					IncorrectAnswers: tc.incorrect,
				}, rnd)

				if len(q.Answers) != len(tc.incorrect)+1 {
					t.Fatalf("expected %d answers, got %d", len(tc.incorrect)+1, len(q.Answers))
				}
				seen := 0
				for _, answer := range q.Answers {
					if answer == q.CorrectAnswer {
						seen++
					}
				}
				if seen != 1 {
					t.Fatalf("expected correct answer exactly once, got %d in %v", seen, q.Answers)
				}
			}
		})
	}
}

func TestBuildQuestionKeepsIncorrectOrder(t *testing.T) {
	q := BuildQuestion(opentdb.RawQuestion{
		Question:         "Q",
		CorrectAnswer:    "X",
		IncorrectAnswers: []string{"1", "2", "3"},
	}, rand.New(rand.NewSource(7)))

	rest := make([]string, 0, 3)
	for _, answer := range q.Answers {
		if answer != "X" {
			rest = append(rest, answer)
		}
	}
	if rest[0] != "1" || rest[1] != "2" || rest[2] != "3" {
		t.Fatalf("incorrect answers reordered: %v", q.Answers)
	}
}

func TestBuildQuestionPositionCoversEverySlot(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	counts := make([]int, 4)
	for i := 0; i < 400; i++ {
		q := BuildQuestion(opentdb.RawQuestion{
			CorrectAnswer:    "X",
			IncorrectAnswers: []string{"a", "b", "c"},
		}, rnd)
		for pos, answer := range q.Answers {
			if answer == "X" {
				counts[pos]++
			}
		}
	}
	for pos, n := range counts {
		if n == 0 {
			t.Fatalf("correct answer never placed at position %d: %v", pos, counts)
		}
	}
}

func TestBuildQuestionUnescapesEntities(t *testing.T) {
	q := BuildQuestion(opentdb.RawQuestion{
		Question:         "Who wrote &quot;Hamlet&quot;?",
		CorrectAnswer:    "Shakespeare &amp; co",
		IncorrectAnswers: []string{"Marlowe&#039;s ghost"},
	}, rand.New(rand.NewSource(3)))

	if q.Text != `Who wrote "Hamlet"?` {
		t.Fatalf("question not unescaped: %q", q.Text)
	}
	if q.CorrectAnswer != "Shakespeare & co" {
		t.Fatalf("answer not unescaped: %q", q.CorrectAnswer)
	}
	found := false
	for _, answer := range q.Answers {
		if answer == "Marlowe's ghost" {
			found = true
		}
	}
	if !found {
		t.Fatalf("incorrect answer not unescaped: %v", q.Answers)
	}
}

func TestQuestionProviderFetch(t *testing.T) {
	fetcher := &stubFetcher{raw: []opentdb.RawQuestion{
		{Question: "A?", CorrectAnswer: "yes", IncorrectAnswers: []string{"no"}},
		{Question: "B?", CorrectAnswer: "1", IncorrectAnswers: []string{"2", "3", "4"}},
	}}
	provider := NewQuestionProviderWithRand(fetcher, rand.New(rand.NewSource(5)))

	questions, err := provider.Fetch(context.Background(), 2, map[string]string{"type": "multiple"})
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(questions) != 2 || questions[1].Text != "B?" {
		t.Fatalf("unexpected questions: %+v", questions)
	}
	if fetcher.amount != 2 || fetcher.query["type"] != "multiple" {
		t.Fatalf("unexpected fetch arguments: %d %v", fetcher.amount, fetcher.query)
	}
}

type stubFetcher struct {
	raw    []opentdb.RawQuestion
	err    error
	amount int
	query  map[string]string
	calls  int
}

func (f *stubFetcher) FetchQuestions(_ context.Context, amount int, query map[string]string) ([]opentdb.RawQuestion, error) {
	f.calls++
	f.amount = amount
	f.query = query
	if f.err != nil {
		return nil, f.err
	}
	return f.raw, nil
}
