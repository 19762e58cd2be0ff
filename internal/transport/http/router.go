package http

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"trivia-quiz/internal/app"
	"trivia-quiz/internal/domain"
	"trivia-quiz/internal/render"
)

const (
	sessionCookie = "quiz_session"
	recentLimit   = 5
)

// Handler serves the quiz page, its form fallbacks, the live channel and the JSON API.
type Handler struct {
	service   *app.QuizService
	upgrader  websocket.Upgrader
	tokenPoll time.Duration
}

func NewHandler(service *app.QuizService) *Handler {
	return &Handler{
		service: service,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		tokenPoll: 2 * time.Second,
	}
}

// Routes builds the router. allowedOrigins applies to the /api group only.
func (h *Handler) Routes(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Logger, middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	// long-lived, kept out of the timeout group
	r.Get("/ws", h.ServeWS)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Timeout(30 * time.Second))
		r.Get("/", h.ServePage)
		r.Post("/start", h.ServeStart)
		r.Post("/answer", h.ServeAnswer)
		r.Post("/continue", h.ServeContinue)
		r.Post("/restart", h.ServeRestart)
	})

	r.Route("/api", func(r chi.Router) {
		if len(allowedOrigins) > 0 {
			r.Use(cors.Handler(cors.Options{
				AllowedOrigins:   allowedOrigins,
				AllowedMethods:   []string{"GET", "OPTIONS"},
				AllowedHeaders:   []string{"Content-Type"},
				ExposedHeaders:   []string{"Content-Length"},
				AllowCredentials: true,
				MaxAge:           300,
			}))
		}
		r.Use(middleware.Timeout(10 * time.Second))
		r.Get("/state", h.ServeState)
		r.Get("/results", h.ServeResults)
	})
	return r
}

// ServeState returns the caller's session snapshot as JSON.
func (h *Handler) ServeState(w http.ResponseWriter, r *http.Request) {
	snap, err := h.service.Open(r.Context(), h.session(w, r))
	if err != nil {
		log.Printf("open session failed: %v", err)
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// ServeResults lists recently finished runs, newest first.
func (h *Handler) ServeResults(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			http.Error(w, "invalid limit", http.StatusBadRequest)
			return
		}
		limit = n
	}
	results, err := h.service.RecentResults(r.Context(), limit)
	if err != nil {
		log.Printf("load results failed: %v", err)
		http.Error(w, "results unavailable", http.StatusInternalServerError)
		return
	}
	if results == nil {
		results = []domain.Result{}
	}
	writeJSON(w, http.StatusOK, results)
}

// session returns the caller's session id, issuing a cookie for new visitors.
func (h *Handler) session(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(sessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, newSessionCookie(id))
	return id
}

func newSessionCookie(id string) *http.Cookie {
	return &http.Cookie{
		Name:     sessionCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

// env gathers the page data that does not live in the session. Lookup
// failures degrade to an empty list.
func (h *Handler) env(ctx context.Context) render.Env {
	env := render.Env{
		TokenReady:    h.service.TokenReady(),
		DefaultAmount: h.service.Defaults().Amount,
	}
	categories, err := h.service.Categories(ctx)
	if err != nil {
		log.Printf("load categories failed: %v", err)
	}
	env.Categories = categories
	results, err := h.service.RecentResults(ctx, recentLimit)
	if err != nil {
		log.Printf("load results failed: %v", err)
	}
	env.Results = results
	return env
}

// retryToken asks for the remote session token in the background when the
// startup fetch did not get one. Concurrent fetches share one request.
func (h *Handler) retryToken() {
	if h.service.TokenReady() {
		return
	}
	go h.service.AcquireToken(context.Background())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode response failed: %v", err)
	}
}
