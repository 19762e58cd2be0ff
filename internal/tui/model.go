package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"
)

// Model plays one quiz session in the terminal using Bubble Tea.
type Model struct {
	ctx       context.Context
	service   *app.QuizService
	sessionID string
	start     app.StartOptions
	snap      domain.Snapshot
	cursor    int
	loading   bool
	spinner   spinner.Model
	err       error
	noColor   bool
}

// Options configures the terminal model.
type Options struct {
	SessionID string
	Start     app.StartOptions
	NoColor   bool
}

// NewModel constructs a terminal model bound to one session of the service.
func NewModel(ctx context.Context, service *app.QuizService, opts Options) Model {
	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = "terminal"
	}
	s := spinner.New(spinner.WithSpinner(spinner.Dot))
	if !opts.NoColor {
		s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	}
	return Model{
		ctx:       ctx,
		service:   service,
		sessionID: sessionID,
		start:     opts.Start,
		snap:      domain.Snapshot{State: domain.InitialState()},
		spinner:   s,
		noColor:   opts.NoColor,
	}
}

// snapshotMsg carries the outcome of a service call.
type snapshotMsg struct {
	snap domain.Snapshot
	err  error
}

func (m Model) Init() tea.Cmd {
	return m.open()
}

// Update handles key presses and service results.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(typed)
	case snapshotMsg:
		m.loading = false
		m.err = typed.err
		if typed.snap.State.Page == "" {
			return m, nil
		}
		if typed.snap.State.Page != m.snap.State.Page || typed.snap.Progress.Current != m.snap.Progress.Current {
			m.cursor = 0
		}
		m.snap = typed.snap
		return m, nil
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(typed)
		return m, cmd
	}
	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" || key == "q" {
		return m, tea.Quit
	}
	if m.loading {
		return m, nil
	}

	switch m.snap.State.Page {
	case domain.PageIntro:
		if key == "enter" || key == "s" {
			return m.begin()
		}
	case domain.PageQuestion:
		answers := m.answers()
		switch key {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(answers)-1 {
				m.cursor++
			}
		case "enter", " ":
			if len(answers) == 0 {
				return m, nil
			}
			return m, m.dispatch(app.Intent{Action: domain.ActionSubmit, Answer: answers[m.cursor]})
		default:
			if len(key) == 1 && key[0] >= '1' && int(key[0]-'1') < len(answers) {
				m.cursor = int(key[0] - '1')
			}
		}
	case domain.PageAnswer:
		if key == "enter" || key == "c" {
			return m, m.dispatch(app.Intent{Action: domain.ActionContinue})
		}
	case domain.PageOutro:
		switch key {
		case "enter", "s":
			return m.begin()
		case "r":
			return m, m.dispatch(app.Intent{Action: domain.ActionRestart})
		}
	}
	return m, nil
}

func (m Model) begin() (tea.Model, tea.Cmd) {
	m.loading = true
	m.err = nil
	return m, tea.Batch(m.spinner.Tick, m.dispatch(app.Intent{Action: domain.ActionStart, Start: m.start}))
}

func (m Model) open() tea.Cmd {
	ctx, service, id := m.ctx, m.service, m.sessionID
	return func() tea.Msg {
		snap, err := service.Open(ctx, id)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m Model) dispatch(intent app.Intent) tea.Cmd {
	ctx, service, id := m.ctx, m.service, m.sessionID
	return func() tea.Msg {
		snap, err := service.Dispatch(ctx, id, intent)
		return snapshotMsg{snap: snap, err: err}
	}
}

func (m Model) answers() []string {
	if m.snap.Question == nil {
		return nil
	}
	return m.snap.Question.Answers
}

// View renders the current page.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(stylize("Trivia Quiz", m.noColor, lipgloss.Color("63")))
	b.WriteString("\n")
	if status := m.statusLine(); status != "" {
		b.WriteString(stylize(status, m.noColor, lipgloss.Color("244")))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if m.loading {
		b.WriteString(m.spinner.View() + " Fetching questions...\n")
		return b.String()
	}

	switch m.snap.State.Page {
	case domain.PageIntro:
		b.WriteString("Press enter to start, q to quit.\n")
	case domain.PageQuestion:
		m.writeQuestion(&b)
	case domain.PageAnswer:
		m.writeFeedback(&b)
	case domain.PageOutro:
		fmt.Fprintf(&b, "You scored %d out of %d.\n\n", m.snap.Score, m.snap.Progress.Total)
		b.WriteString("enter: play again  r: back to start  q: quit\n")
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(stylize(errorText(m.err), m.noColor, lipgloss.Color("196")))
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) statusLine() string {
	switch m.snap.State.Page {
	case domain.PageQuestion, domain.PageAnswer:
		return fmt.Sprintf("Question %d of %d  Score: %d", m.snap.Progress.Current, m.snap.Progress.Total, m.snap.Score)
	case domain.PageOutro:
		return fmt.Sprintf("Score: %d", m.snap.Score)
	}
	return ""
}

func (m Model) writeQuestion(b *strings.Builder) {
	if m.snap.Question == nil {
		return
	}
	b.WriteString(m.snap.Question.Text)
	b.WriteString("\n\n")
	for i, answer := range m.snap.Question.Answers {
		line := fmt.Sprintf("  %d. %s", i+1, answer)
		if i == m.cursor {
			line = stylize(fmt.Sprintf("> %d. %s", i+1, answer), m.noColor, lipgloss.Color("212"))
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\nup/down: choose  enter: submit\n")
}

func (m Model) writeFeedback(b *strings.Builder) {
	fb := m.snap.State.Feedback
	if fb == nil {
		return
	}
	if fb.Correct {
		b.WriteString(stylize("You got it!", m.noColor, lipgloss.Color("42")))
	} else {
		b.WriteString(stylize("Too bad! The correct answer was: "+fb.CorrectAnswer, m.noColor, lipgloss.Color("196")))
	}
	b.WriteString("\n\nenter: continue\n")
}

func errorText(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrSessionNotFound):
		return "That action is not available here."
	case errors.Is(err, domain.ErrNoQuestions):
		return "No questions available for this selection."
	default:
		return "Could not load questions: " + err.Error()
	}
}

// stylize applies optional color styling.
func stylize(text string, noColor bool, color lipgloss.Color) string {
	if noColor {
		return text
	}
	return lipgloss.NewStyle().Foreground(color).Render(text)
}
