package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"
	"trivia-quiz/internal/render"
)

type inboundMessage struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type startPayload struct {
	Amount     string `json:"amount"`
	Category   string `json:"category"`
	Difficulty string `json:"difficulty"`
}

type submitPayload struct {
	Answer string `json:"answer"`
}

type outboundMessage[T any] struct {
	Type    string `json:"type"`
	Payload T      `json:"payload"`
}

type renderPayload struct {
	Page    domain.Page                           `json:"page"`
	Regions map[render.Region]render.RegionUpdate `json:"regions"`
}

type tokenPayload struct {
	Ready bool `json:"ready"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// ServeWS upgrades to a websocket that carries the session's intents in and
// region updates out.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	var (
		sessionID string
		header    http.Header
	)
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		sessionID = c.Value
	} else {
		sessionID = uuid.NewString()
		header = http.Header{"Set-Cookie": []string{newSessionCookie(sessionID).String()}}
	}

	conn, err := h.upgrader.Upgrade(w, r, header)
	if err != nil {
		log.Printf("ws upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	snap, err := h.service.Open(ctx, sessionID)
	if err != nil {
		_ = conn.WriteJSON(outboundMessage[errorPayload]{Type: "error", Payload: errorPayload{Message: err.Error()}})
		return
	}

	send := make(chan outboundMessage[any], 16)
	writerDone := make(chan struct{})
	tokenDone := make(chan struct{})

	go func() {
		defer close(writerDone)
		for msg := range send {
			if err := conn.WriteJSON(msg); err != nil {
				log.Printf("ws write error: %v", err)
				// unblocks the read loop and any pending push
				cancel()
				conn.Close()
				return
			}
		}
	}()

	push(ctx, send, h.renderMessage(snap))
	ready := h.service.TokenReady()
	push(ctx, send, outboundMessage[any]{Type: "token", Payload: tokenPayload{Ready: ready}})

	go func() {
		defer close(tokenDone)
		if ready {
			return
		}
		h.watchToken(ctx, send)
	}()

	for ctx.Err() == nil {
		var inbound inboundMessage
		if err := conn.ReadJSON(&inbound); err != nil {
			break
		}
		intent, err := decodeIntent(inbound)
		if err != nil {
			push(ctx, send, errorMessage(err.Error()))
			continue
		}
		snap, err := h.service.Dispatch(ctx, sessionID, intent)
		if err != nil {
			logActionError(sessionID, intent.Action, err)
			push(ctx, send, errorMessage(actionErrorMessage(err)))
			if snap.State.Page == "" {
				continue
			}
		}
		push(ctx, send, h.renderMessage(snap))
	}

	cancel()
	<-tokenDone
	close(send)
	<-writerDone
}

// watchToken retries the remote session token on every tick and tells the
// page once it is there.
func (h *Handler) watchToken(ctx context.Context, send chan<- outboundMessage[any]) {
	ticker := time.NewTicker(h.tokenPoll)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !h.service.TokenReady() && !h.service.AcquireToken(ctx) {
				continue
			}
			push(ctx, send, outboundMessage[any]{Type: "token", Payload: tokenPayload{Ready: true}})
			return
		}
	}
}

// push queues a message for the writer unless the connection is going away.
func push(ctx context.Context, send chan<- outboundMessage[any], msg outboundMessage[any]) bool {
	select {
	case send <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}

// renderMessage builds the live region updates. The intro form is only part
// of the full page, so categories and results are not loaded here.
func (h *Handler) renderMessage(snap domain.Snapshot) outboundMessage[any] {
	view := render.Build(snap, render.Env{TokenReady: h.service.TokenReady()})
	return outboundMessage[any]{Type: "render", Payload: renderPayload{
		Page:    view.Page,
		Regions: view.Updates(),
	}}
}

func decodeIntent(msg inboundMessage) (app.Intent, error) {
	switch domain.Action(msg.Type) {
	case domain.ActionStart:
		var payload startPayload
		if err := unmarshalPayload(msg.Payload, &payload); err != nil {
			return app.Intent{}, errors.New("invalid start payload")
		}
		return app.Intent{
			Action: domain.ActionStart,
			Start:  app.ParseStartOptions(payload.Amount, payload.Category, payload.Difficulty),
		}, nil
	case domain.ActionSubmit:
		var payload submitPayload
		if err := unmarshalPayload(msg.Payload, &payload); err != nil {
			return app.Intent{}, errors.New("invalid submit payload")
		}
		return app.Intent{Action: domain.ActionSubmit, Answer: payload.Answer}, nil
	case domain.ActionContinue, domain.ActionRestart:
		return app.Intent{Action: domain.Action(msg.Type)}, nil
	default:
		return app.Intent{}, errors.New("unsupported message type")
	}
}

func unmarshalPayload(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, out)
}

func actionErrorMessage(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidTransition):
		return "action not allowed on this page"
	case errors.Is(err, domain.ErrSessionNotFound):
		return "session expired"
	case errors.Is(err, domain.ErrNoQuestions):
		return "no questions available for this selection"
	default:
		return "could not load questions, try again"
	}
}

func errorMessage(message string) outboundMessage[any] {
	return outboundMessage[any]{Type: "error", Payload: errorPayload{Message: message}}
}
