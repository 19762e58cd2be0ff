package domain

import "time"

// Page names the screen a session is currently showing.
type Page string

const (
	PageIntro    Page = "intro"
	PageQuestion Page = "question"
	PageAnswer   Page = "answer"
	PageOutro    Page = "outro"
)

// Action is a user intent that moves a session between pages.
type Action string

const (
	ActionStart    Action = "start"
	ActionSubmit   Action = "submit"
	ActionContinue Action = "continue"
	ActionRestart  Action = "restart"
)

// Question is a display-ready multiple choice question. Answers already
// contains CorrectAnswer at a random position.
type Question struct {
	Text          string   `json:"text"`
	CorrectAnswer string   `json:"correctAnswer"`
	Answers       []string `json:"answers"`
}

// Feedback is the message shown after a question was answered.
type Feedback struct {
	Correct       bool   `json:"correct"`
	CorrectAnswer string `json:"correctAnswer"`
}

// State is the navigational state of one quiz session.
type State struct {
	Page                 Page      `json:"page"`
	CurrentQuestionIndex *int      `json:"currentQuestionIndex"`
	UserAnswers          []string  `json:"userAnswers"`
	Feedback             *Feedback `json:"feedback"`
}

// InitialState is the state of a fresh or restarted session.
func InitialState() State {
	return State{
		Page:        PageIntro,
		UserAnswers: []string{},
	}
}

// Progress is the 1-based position in the question list.
type Progress struct {
	Current int `json:"current"`
	Total   int `json:"total"`
}

// Snapshot is a read-only copy of a session used for rendering.
type Snapshot struct {
	SessionID string    `json:"sessionId"`
	State     State     `json:"state"`
	Question  *Question `json:"question,omitempty"`
	Score     int       `json:"score"`
	Progress  Progress  `json:"progress"`
}

// Category is an Open Trivia DB question category.
type Category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Result is a finished quiz run.
type Result struct {
	SessionID  string    `json:"sessionId"`
	Score      int       `json:"score"`
	Total      int       `json:"total"`
	FinishedAt time.Time `json:"finishedAt"`
}
