package mcp

import (
	"context"
	"encoding/json"
	"math"
	"time"
)

// RecentSessionsResult holds a list of recent sessions.
type RecentSessionsResult struct {
	Sessions []RecentSession `json:"sessions"`
}

// RecentSession holds summary data for a single finished focus session.
type RecentSession struct {
	ID           string    `json:"id"`
	StartedAt    time.Time `json:"started_at"`
	Status       string    `json:"status"`
	PlannedMin   int       `json:"planned_minutes"`
	DurationMin  int       `json:"duration_minutes"`
	Distractions int       `json:"distractions"`
}

var (
	segmentSchema   = json.RawMessage(`{"type":"object","properties":{"segment":{"type":"string","description":"Optional context such as deep_work; accepted but not yet used for filtering"}},"additionalProperties":false}`)
	daysSchema      = json.RawMessage(`{"type":"object","properties":{"days":{"type":"integer","description":"Days of per-day stats to include (default 7)"}},"additionalProperties":false}`)
	breakdownSchema = json.RawMessage(`{"type":"object","properties":{"days":{"type":"integer","description":"Days of history to include (default 7, 0 for all)"}},"additionalProperties":false}`)
	recentNSchema   = json.RawMessage(`{"type":"object","properties":{"n":{"type":"integer","description":"Number of sessions to return (default 5)"}},"additionalProperties":false}`)
)

// addTools registers all MCP tool handlers on s.
func addTools(s *Server) {
	s.registerTool(toolDef{
		Name:        "get_session_suggestion",
		Description: "Recommended length for the next focus session, with the reason and the statistics behind it.",
		InputSchema: segmentSchema,
		Handler:     s.handleGetSessionSuggestion,
	})
	s.registerTool(toolDef{
		Name:        "get_focus_metrics",
		Description: "Completion rate, focus minutes, distractions, streaks, and per-day stats.",
		InputSchema: daysSchema,
		Handler:     s.handleGetFocusMetrics,
	})
	s.registerTool(toolDef{
		Name:        "get_recent_sessions",
		Description: "Last N finished focus sessions with duration, status, and distractions.",
		InputSchema: recentNSchema,
		Handler:     s.handleGetRecentSessions,
	})
	s.registerTool(toolDef{
		Name:        "get_distraction_patterns",
		Description: "Logged distractions grouped by type, with each type's share and how far into sessions it tends to strike.",
		InputSchema: breakdownSchema,
		Handler:     s.handleGetDistractionPatterns,
	})
}

// intArg reads an optional integer argument, returning def when it is
// absent or malformed.
func intArg(args json.RawMessage, key string, def int) int {
	if len(args) == 0 || string(args) == "null" {
		return def
	}
	var params map[string]json.RawMessage
	if err := json.Unmarshal(args, &params); err != nil {
		return def
	}
	raw, ok := params[key]
	if !ok {
		return def
	}
	var n int
	if err := json.Unmarshal(raw, &n); err != nil {
		return def
	}
	return n
}

// handleGetSessionSuggestion returns the duration recommendation.
func (s *Server) handleGetSessionSuggestion(ctx context.Context, args json.RawMessage) (any, error) {
	var params struct {
		Segment string `json:"segment"`
	}
	if len(args) > 0 && string(args) != "null" {
		_ = json.Unmarshal(args, &params)
	}
	return s.svc.Suggest(ctx, s.userID, params.Segment)
}

// handleGetFocusMetrics returns the focus report.
func (s *Server) handleGetFocusMetrics(ctx context.Context, args json.RawMessage) (any, error) {
	days := intArg(args, "days", 7)
	if days <= 0 || days > 366 {
		days = 7
	}
	return s.svc.Metrics(ctx, s.userID, days)
}

// handleGetRecentSessions returns the last N finished sessions.
func (s *Server) handleGetRecentSessions(ctx context.Context, args json.RawMessage) (any, error) {
	n := intArg(args, "n", 5)
	if n <= 0 {
		n = 5
	}
	if n > 50 {
		n = 50
	}

	sessions, err := s.sessions.RecentFinishedSessions(ctx, s.userID, n)
	if err != nil {
		return nil, err
	}

	result := make([]RecentSession, 0, len(sessions))
	for _, fs := range sessions {
		result = append(result, RecentSession{
			ID:           fs.ID,
			StartedAt:    fs.StartedAt,
			Status:       fs.Status,
			PlannedMin:   int(math.Round(float64(fs.PlannedDurationSeconds) / 60)),
			DurationMin:  int(math.Round(float64(fs.ActualDurationSeconds) / 60)),
			Distractions: fs.TotalDistractions,
		})
	}
	return RecentSessionsResult{Sessions: result}, nil
}

// handleGetDistractionPatterns returns the per-type distraction breakdown.
func (s *Server) handleGetDistractionPatterns(ctx context.Context, args json.RawMessage) (any, error) {
	days := intArg(args, "days", 7)
	if days < 0 {
		days = 7
	}
	return s.svc.Distractions(ctx, s.userID, days)
}
