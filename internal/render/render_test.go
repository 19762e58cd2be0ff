package render

import (
	"bytes"
	"strings"
	"testing"

	"trivia-quiz/internal/domain"
)

func TestQuestionHTMLEscapesAndKeepsOrder(t *testing.T) {
	html := string(QuestionHTML(domain.Question{
		Text:          `Is <b>bold</b> "quoted"?`,
		CorrectAnswer: "yes",
		Answers:       []string{"no", "yes", "<script>"},
	}))

	if strings.Contains(html, "<b>bold</b>") || strings.Contains(html, "<script>") {
		t.Fatalf("expected text to be escaped, got %s", html)
	}
	if strings.Index(html, `value="no"`) > strings.Index(html, `value="yes"`) {
		t.Fatalf("answers rendered out of order: %s", html)
	}
	if strings.Count(html, `type="radio"`) != 3 {
		t.Fatalf("expected 3 radios, got %s", html)
	}
	if !strings.Contains(html, `action="/answer"`) || !strings.Contains(html, "Submit") {
		t.Fatalf("expected submit form, got %s", html)
	}
}

func TestFeedbackHTML(t *testing.T) {
	tests := []struct {
		name string
		fb   domain.Feedback
		want string
	}{
		{name: "correct", fb: domain.Feedback{Correct: true, CorrectAnswer: "4"}, want: "You got it!"},
		{name: "wrong", fb: domain.Feedback{Correct: false, CorrectAnswer: "Paris &amp; co"}, want: "Too bad! The correct answer was: Paris &amp;amp; co"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			html := string(FeedbackHTML(tc.fb))
			if !strings.Contains(html, tc.want) {
				t.Fatalf("expected %q in %s", tc.want, html)
			}
			if !strings.Contains(html, "js-continue") {
				t.Fatalf("expected continue button in %s", html)
			}
		})
	}
}

func TestStatusFragments(t *testing.T) {
	if got := string(ScoreHTML(3)); got != "<span>Score: 3</span>" {
		t.Fatalf("unexpected score html %q", got)
	}
	if got := string(ProgressHTML(domain.Progress{Current: 2, Total: 10})); got != "<span>Question 2 of 10</span>" {
		t.Fatalf("unexpected progress html %q", got)
	}
}

func TestBuildVisibilityPerPage(t *testing.T) {
	idx := 0
	question := &domain.Question{Text: "Q", CorrectAnswer: "a", Answers: []string{"a", "b"}}
	tests := []struct {
		page    domain.Page
		visible []Region
	}{
		{domain.PageIntro, []Region{RegionIntro}},
		{domain.PageQuestion, []Region{RegionQuestion, RegionStatus, RegionProgress, RegionScore}},
		{domain.PageAnswer, []Region{RegionFeedback, RegionStatus, RegionProgress, RegionScore}},
		{domain.PageOutro, []Region{RegionOutro, RegionStatus, RegionScore}},
	}

	for _, tc := range tests {
		t.Run(string(tc.page), func(t *testing.T) {
			snap := domain.Snapshot{
				State: domain.State{
					Page:                 tc.page,
					CurrentQuestionIndex: &idx,
					Feedback:             &domain.Feedback{Correct: true, CorrectAnswer: "a"},
				},
				Question: question,
				Score:    1,
				Progress: domain.Progress{Current: 1, Total: 1},
			}
			view := Build(snap, Env{TokenReady: true})

			want := make(map[Region]bool)
			for _, r := range tc.visible {
				want[r] = true
			}
			for _, region := range Regions {
				if view.Visible[region] != want[region] {
					t.Fatalf("region %s visible=%v, want %v", region, view.Visible[region], want[region])
				}
			}
		})
	}
}

func TestBuildDisablesStartWithoutToken(t *testing.T) {
	snap := domain.Snapshot{State: domain.InitialState()}
	if !Build(snap, Env{}).StartDisabled {
		t.Fatalf("expected start disabled without token")
	}
	if Build(snap, Env{TokenReady: true}).StartDisabled {
		t.Fatalf("expected start enabled with token")
	}
}

func TestUpdatesCoverEveryRegion(t *testing.T) {
	updates := Build(domain.Snapshot{State: domain.InitialState()}, Env{}).Updates()
	if len(updates) != len(Regions) {
		t.Fatalf("expected %d updates, got %d", len(Regions), len(updates))
	}
	if !updates[RegionIntro].Visible || updates[RegionQuestion].Visible {
		t.Fatalf("unexpected intro updates: %+v", updates)
	}
	if updates[RegionScore].HTML != "<span>Score: 0</span>" {
		t.Fatalf("expected score fragment, got %q", updates[RegionScore].HTML)
	}
}

func TestWritePage(t *testing.T) {
	idx := 0
	snap := domain.Snapshot{
		State:    domain.State{Page: domain.PageQuestion, CurrentQuestionIndex: &idx},
		Question: &domain.Question{Text: "Capital of France?", CorrectAnswer: "Paris", Answers: []string{"Paris", "Rome"}},
		Progress: domain.Progress{Current: 1, Total: 5},
	}
	env := Env{
		TokenReady:    true,
		Categories:    []domain.Category{{ID: 22, Name: "Geography"}},
		DefaultAmount: 10,
	}

	var buf bytes.Buffer
	if err := WritePage(&buf, Build(snap, env)); err != nil {
		t.Fatalf("write page: %v", err)
	}
	page := buf.String()

	for _, want := range []string{
		"Capital of France?",
		"Question 1 of 5",
		`<option value="22">Geography</option>`,
		`<option value="10" selected>10</option>`,
		`class="js-intro" data-region="intro" hidden`,
	} {
		if !strings.Contains(page, want) {
			t.Fatalf("expected %q in page", want)
		}
	}
	if strings.Contains(page, `class="js-question" data-region="question" hidden`) {
		t.Fatalf("question region should be visible")
	}
}
