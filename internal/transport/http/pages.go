package http

import (
	"errors"
	"log"
	"net/http"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"
	"trivia-quiz/internal/render"
)

// ServePage renders the whole quiz document for the caller's session.
func (h *Handler) ServePage(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Open(r.Context(), h.session(w, r))
	if err != nil {
		log.Printf("open session failed: %v", err)
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	h.retryToken()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := render.WritePage(w, render.Build(snap, h.env(r.Context()))); err != nil {
		log.Printf("render page failed: %v", err)
	}
}

func (h *Handler) ServeStart(w http.ResponseWriter, r *http.Request) {
	opts := app.ParseStartOptions(r.FormValue("amount"), r.FormValue("category"), r.FormValue("difficulty"))
	h.act(w, r, app.Intent{Action: domain.ActionStart, Start: opts})
}

func (h *Handler) ServeAnswer(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, app.Intent{Action: domain.ActionSubmit, Answer: r.FormValue("answerChoice")})
}

func (h *Handler) ServeContinue(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, app.Intent{Action: domain.ActionContinue})
}

func (h *Handler) ServeRestart(w http.ResponseWriter, r *http.Request) {
	h.act(w, r, app.Intent{Action: domain.ActionRestart})
}

// act applies a form post and redirects back to the page. A rejected action
// leaves the session untouched, so the redirect shows the unchanged page.
func (h *Handler) act(w http.ResponseWriter, r *http.Request, intent app.Intent) {
	id := h.session(w, r)
	if _, err := h.service.Dispatch(r.Context(), id, intent); err != nil {
		logActionError(id, intent.Action, err)
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func logActionError(sessionID string, action domain.Action, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidTransition), errors.Is(err, domain.ErrSessionNotFound):
		log.Printf("session %s: %s ignored: %v", sessionID, action, err)
	default:
		log.Printf("session %s: %s failed: %v", sessionID, action, err)
	}
}
