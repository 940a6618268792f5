// Package server exposes focuscoach over HTTP.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hashicorp/go-hclog"

	"github.com/blackwell-systems/focuscoach/internal/logging"
	"github.com/blackwell-systems/focuscoach/internal/prefs"
	"github.com/blackwell-systems/focuscoach/internal/service"
	"github.com/blackwell-systems/focuscoach/internal/store"
)

// Store is the persistence the HTTP handlers use directly.
type Store interface {
	prefs.Store
	InsertSession(ctx context.Context, s *store.FocusSession) error
	ListSessions(ctx context.Context, userID string, since time.Time, limit int) ([]store.FocusSession, error)
	InsertActivity(ctx context.Context, e *store.ActivityEntry) error
	ListActivity(ctx context.Context, userID string, limit, offset int) ([]store.ActivityEntry, error)
	CountActivity(ctx context.Context, userID string) (int, error)
	ListActiveNotes(ctx context.Context, userID string) ([]store.AgentNote, error)
	DismissNote(ctx context.Context, userID, id string, at time.Time) error
}

// Server holds the dependencies of every handler.
type Server struct {
	store   Store
	svc     *service.Service
	logger  hclog.Logger
	devUser string
	now     func() time.Time
}

// Option configures a Server.
type Option func(*Server)

// WithDevUser sets the identity assumed for requests without an auth
// header. Empty rejects them.
func WithDevUser(user string) Option {
	return func(s *Server) { s.devUser = user }
}

// WithLogger sets the logger.
func WithLogger(l hclog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Server) { s.now = now }
}

// New creates a Server.
func New(st Store, svc *service.Service, opts ...Option) *Server {
	s := &Server{
		store:  st,
		svc:    svc,
		logger: logging.Discard(),
		now:    time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logging.RequestLogger(s.logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.extractUser)

		r.Get("/agent/session-suggestions", s.getSuggestion)
		r.Get("/agent/activity-log", s.listActivity)
		r.Post("/agent/activity-log", s.logActivity)
		r.Get("/agent/notes", s.listNotes)
		r.Post("/agent/notes/refresh", s.refreshNotes)
		r.Post("/agent/notes/{id}/dismiss", s.dismissNote)

		r.Get("/user/preferences", s.getPreferences)
		r.Post("/user/preferences", s.savePreferences)
		r.Get("/user/status", s.getStatus)

		r.Get("/sessions", s.listSessions)
		r.Post("/sessions", s.recordSession)
		r.Post("/sessions/{id}/distractions", s.logDistraction)

		r.Get("/metrics", s.getMetrics)
		r.Get("/distractions", s.getDistractions)
	})

	return r
}

func (s *Server) internalError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Error("request failed",
		"path", r.URL.Path,
		"request_id", middleware.GetReqID(r.Context()),
		"error", err,
	)
	respondError(w, err.Error(), http.StatusInternalServerError)
}

func respondJSON(w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, map[string]string{"error": message}, status)
}
