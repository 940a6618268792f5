package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/blackwell-systems/focuscoach/internal/service"
	"github.com/blackwell-systems/focuscoach/internal/store"
)

func (s *Server) logDistraction(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Type                   string `json:"distraction_type"`
		TimeIntoSessionSeconds int    `json:"time_into_session_seconds"`
		TimeRemainingSeconds   int    `json:"time_remaining_seconds"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	d := &store.Distraction{
		SessionID:              chi.URLParam(r, "id"),
		UserID:                 UserID(r),
		Type:                   req.Type,
		TimeIntoSessionSeconds: req.TimeIntoSessionSeconds,
		TimeRemainingSeconds:   req.TimeRemainingSeconds,
	}
	err := s.svc.LogDistraction(r.Context(), d)
	switch {
	case errors.Is(err, service.ErrInvalidDistraction):
		respondError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, store.ErrNotFound):
		respondError(w, "Session not found", http.StatusNotFound)
	case err != nil:
		s.internalError(w, r, err)
	default:
		respondJSON(w, d, http.StatusCreated)
	}
}

func (s *Server) getDistractions(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 0)
	shares, err := s.svc.Distractions(r.Context(), UserID(r), days)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	respondJSON(w, shares, http.StatusOK)
}

func (s *Server) listNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := s.store.ListActiveNotes(r.Context(), UserID(r))
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	respondJSON(w, notes, http.StatusOK)
}

func (s *Server) refreshNotes(w http.ResponseWriter, r *http.Request) {
	created, err := s.svc.RefreshNotes(r.Context(), UserID(r))
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	respondJSON(w, map[string]any{"ok": true, "created": created}, http.StatusOK)
}

func (s *Server) dismissNote(w http.ResponseWriter, r *http.Request) {
	err := s.store.DismissNote(r.Context(), UserID(r), chi.URLParam(r, "id"), s.now())
	if errors.Is(err, store.ErrNotFound) {
		respondError(w, "Note not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	respondJSON(w, map[string]bool{"ok": true}, http.StatusOK)
}
