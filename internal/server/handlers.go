package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/blackwell-systems/focuscoach/internal/prefs"
	"github.com/blackwell-systems/focuscoach/internal/store"
)

// Paging limits shared by list endpoints.
const (
	defaultPageLimit = 10
	maxPageLimit     = 50
	defaultDays      = 7
)

// queryInt parses key from the query string, falling back to def when the
// value is missing or not a number.
func queryInt(r *http.Request, key string, def int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func (s *Server) getSuggestion(w http.ResponseWriter, r *http.Request) {
	sg, err := s.svc.Suggest(r.Context(), UserID(r), r.URL.Query().Get("segment"))
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	respondJSON(w, sg.Result, http.StatusOK)
}

func (s *Server) getStatus(w http.ResponseWriter, r *http.Request) {
	isNew, err := s.svc.IsNewUser(r.Context(), UserID(r))
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	respondJSON(w, map[string]bool{"isNewUser": isNew}, http.StatusOK)
}

func (s *Server) getMetrics(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", defaultDays)
	if days < 1 || days > 366 {
		days = defaultDays
	}
	report, err := s.svc.Metrics(r.Context(), UserID(r), days)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	respondJSON(w, report, http.StatusOK)
}

func (s *Server) getPreferences(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.GetPreferences(r.Context(), UserID(r))
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	// A nil pointer encodes as null for users who have not onboarded.
	respondJSON(w, p, http.StatusOK)
}

func (s *Server) savePreferences(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	payload, err := prefs.Decode(body)
	if err != nil {
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	_, err = prefs.Save(r.Context(), s.store, UserID(r), payload, s.now())
	switch {
	case errors.Is(err, prefs.ErrInvalid), errors.Is(err, prefs.ErrNoExisting):
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	case err != nil:
		s.internalError(w, r, err)
		return
	}
	respondJSON(w, map[string]bool{"ok": true}, http.StatusOK)
}

type activityPage struct {
	Entries []store.ActivityEntry `json:"entries"`
	Total   int                   `json:"total"`
}

func (s *Server) listActivity(w http.ResponseWriter, r *http.Request) {
	page := max(1, queryInt(r, "page", 1))
	limit := queryInt(r, "limit", defaultPageLimit)
	if limit < 1 {
		limit = defaultPageLimit
	}
	limit = min(limit, maxPageLimit)

	userID := UserID(r)
	total, err := s.store.CountActivity(r.Context(), userID)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	entries, err := s.store.ListActivity(r.Context(), userID, limit, (page-1)*limit)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	respondJSON(w, activityPage{Entries: entries, Total: total}, http.StatusOK)
}

func (s *Server) logActivity(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ActionType  string          `json:"action_type"`
		Description string          `json:"description"`
		Payload     json.RawMessage `json:"payload"`
	}
	// A malformed body is treated as empty and rejected below.
	_ = json.NewDecoder(r.Body).Decode(&req)

	if req.ActionType == "" || req.Description == "" {
		respondError(w, "action_type and description required", http.StatusBadRequest)
		return
	}

	entry := &store.ActivityEntry{
		UserID:      UserID(r),
		ActionType:  req.ActionType,
		Description: req.Description,
		Payload:     req.Payload,
		CreatedAt:   s.now(),
	}
	if err := s.store.InsertActivity(r.Context(), entry); err != nil {
		s.internalError(w, r, err)
		return
	}
	respondJSON(w, map[string]bool{"ok": true}, http.StatusOK)
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	var since time.Time
	if days := queryInt(r, "days", 0); days > 0 {
		since = s.now().AddDate(0, 0, -days)
	}
	limit := queryInt(r, "limit", defaultPageLimit)
	if limit < 1 {
		limit = defaultPageLimit
	}
	limit = min(limit, maxPageLimit)

	sessions, err := s.store.ListSessions(r.Context(), UserID(r), since, limit)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []store.FocusSession{}
	}
	respondJSON(w, map[string]any{"sessions": sessions}, http.StatusOK)
}

func (s *Server) recordSession(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PlannedDurationSeconds int        `json:"planned_duration_seconds"`
		ActualDurationSeconds  int        `json:"actual_duration_seconds"`
		Status                 string     `json:"status"`
		StartedAt              *time.Time `json:"started_at"`
		EndedAt                *time.Time `json:"ended_at"`
		TotalDistractions      int        `json:"total_distractions"`
		TotalPauses            int        `json:"total_pauses"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	now := s.now()
	fs := &store.FocusSession{
		UserID:                 UserID(r),
		PlannedDurationSeconds: req.PlannedDurationSeconds,
		ActualDurationSeconds:  req.ActualDurationSeconds,
		Status:                 req.Status,
		TotalDistractions:      req.TotalDistractions,
		TotalPauses:            req.TotalPauses,
	}
	switch {
	case req.StartedAt != nil:
		fs.StartedAt = *req.StartedAt
	case req.ActualDurationSeconds >= 0:
		fs.StartedAt = now.Add(-time.Duration(req.ActualDurationSeconds) * time.Second)
	}
	if req.EndedAt != nil {
		fs.EndedAt = *req.EndedAt
	} else if fs.Finished() {
		fs.EndedAt = now
	}

	if err := s.store.InsertSession(r.Context(), fs); err != nil {
		if errors.Is(err, store.ErrInvalidSession) {
			respondError(w, err.Error(), http.StatusBadRequest)
			return
		}
		s.internalError(w, r, err)
		return
	}
	respondJSON(w, fs, http.StatusCreated)
}
