// Package service ties storage, the suggestion engine, and the focus
// analyzer together for the HTTP, CLI, and MCP front ends.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
	"golang.org/x/sync/errgroup"

	"github.com/blackwell-systems/focuscoach/internal/analyzer"
	"github.com/blackwell-systems/focuscoach/internal/config"
	"github.com/blackwell-systems/focuscoach/internal/prefs"
	"github.com/blackwell-systems/focuscoach/internal/store"
	"github.com/blackwell-systems/focuscoach/internal/suggest"
)

// Store is the subset of storage the service reads from.
type Store interface {
	RecentFinishedSessions(ctx context.Context, userID string, limit int) ([]store.FocusSession, error)
	ListSessions(ctx context.Context, userID string, since time.Time, limit int) ([]store.FocusSession, error)
	EarliestSessionStart(ctx context.Context, userID string) (time.Time, bool, error)
	GetPreferences(ctx context.Context, userID string) (*store.Preferences, error)

	InsertDistraction(ctx context.Context, d *store.Distraction) error
	ListDistractions(ctx context.Context, userID string, since time.Time) ([]store.Distraction, error)
	HasActiveNote(ctx context.Context, userID, noteType string, since time.Time) (bool, error)
	InsertNote(ctx context.Context, n *store.AgentNote) error
	InsertActivity(ctx context.Context, e *store.ActivityEntry) error
}

// ErrInvalidDistraction is returned for a distraction with an unknown type
// or negative timings.
var ErrInvalidDistraction = errors.New("invalid distraction")

// Service answers suggestion, metrics, and status questions for a user.
type Service struct {
	store    Store
	engine   *suggest.Engine
	limit    int
	defaults config.Preferences
	logger   hclog.Logger
	now      func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. The default discards output.
func WithLogger(l hclog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// New builds a Service over st using the suggestion limit and fallback
// durations from cfg.
func New(st Store, cfg *config.Config, opts ...Option) *Service {
	s := &Service{
		store:    st,
		engine:   suggest.NewEngine(),
		limit:    cfg.Suggest.RecentLimit,
		defaults: cfg.Defaults,
		logger:   hclog.NewNullLogger(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Suggestion is a recommendation plus the statistics behind it. Stats is
// nil when there was too little history to analyze.
type Suggestion struct {
	suggest.Result
	Stats *suggest.Stats `json:"stats,omitempty"`
}

// Suggest recommends the next focus session length for userID. segment is
// accepted for forward compatibility and does not filter history yet.
func (s *Service) Suggest(ctx context.Context, userID, segment string) (*Suggestion, error) {
	if segment != "" {
		s.logger.Debug("segment filter not applied", "user", userID, "segment", segment)
	}

	var (
		sessions []store.FocusSession
		prefs    *store.Preferences
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sessions, err = s.store.RecentFinishedSessions(gctx, userID, s.limit)
		if err != nil {
			return fmt.Errorf("loading recent sessions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		prefs, err = s.store.GetPreferences(gctx, userID)
		if err != nil {
			return fmt.Errorf("loading preferences: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	focus, brk := s.defaults.FocusMinutes, s.defaults.BreakMinutes
	if prefs != nil {
		focus, brk = prefs.DefaultFocusMinutes, prefs.DefaultBreakMinutes
	}

	records := ToRecords(sessions)
	out := &Suggestion{Result: s.engine.Compute(records, focus, brk)}
	if len(records) >= suggest.MinSessions {
		stats := suggest.Analyze(records)
		out.Stats = &stats
	}

	s.logger.Debug("computed suggestion",
		"user", userID,
		"sessions", out.SessionCountUsed,
		"suggested", out.SuggestedDurationMinutes,
		"default", out.DefaultFocusMinutes,
		"has_reason", out.HasSuggestion(),
	)
	return out, nil
}

// ToRecords converts stored sessions into engine input, preserving order.
// Sessions with negative durations or a non-terminal status are skipped.
func ToRecords(sessions []store.FocusSession) []suggest.SessionRecord {
	records := make([]suggest.SessionRecord, 0, len(sessions))
	for _, fs := range sessions {
		if !fs.Finished() || fs.PlannedDurationSeconds < 0 || fs.ActualDurationSeconds < 0 {
			continue
		}
		records = append(records, suggest.SessionRecord{
			PlannedDurationSeconds: fs.PlannedDurationSeconds,
			ActualDurationSeconds:  fs.ActualDurationSeconds,
			Status:                 fs.Status,
		})
	}
	return records
}

// Metrics builds the focus report over all of userID's sessions and
// distractions, with per-day stats for the last days days.
func (s *Service) Metrics(ctx context.Context, userID string, days int) (analyzer.Report, error) {
	var (
		sessions     []store.FocusSession
		distractions []store.Distraction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		sessions, err = s.store.ListSessions(gctx, userID, time.Time{}, 0)
		if err != nil {
			return fmt.Errorf("loading sessions: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		distractions, err = s.store.ListDistractions(gctx, userID, time.Time{})
		if err != nil {
			return fmt.Errorf("loading distractions: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return analyzer.Report{}, err
	}

	report := analyzer.BuildReport(sessions, days, s.now())
	report.Distractions = analyzer.DistractionBreakdown(distractions)
	return report, nil
}

// LogDistraction validates and records a typed distraction. The type
// must be one of the known distraction trigger codes.
func (s *Service) LogDistraction(ctx context.Context, d *store.Distraction) error {
	if !slices.Contains(prefs.DistractionTriggers, d.Type) {
		return fmt.Errorf("%w: distraction_type must be one of: %s",
			ErrInvalidDistraction, strings.Join(prefs.DistractionTriggers, ", "))
	}
	if d.TimeIntoSessionSeconds < 0 || d.TimeRemainingSeconds < 0 {
		return fmt.Errorf("%w: times must not be negative", ErrInvalidDistraction)
	}
	if d.LoggedAt.IsZero() {
		d.LoggedAt = s.now()
	}
	return s.store.InsertDistraction(ctx, d)
}

// Distractions returns userID's distraction breakdown over the last days
// days; days <= 0 covers all history.
func (s *Service) Distractions(ctx context.Context, userID string, days int) ([]analyzer.DistractionShare, error) {
	var since time.Time
	if days > 0 {
		since = s.now().AddDate(0, 0, -days)
	}
	ds, err := s.store.ListDistractions(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("loading distractions: %w", err)
	}
	return analyzer.DistractionBreakdown(ds), nil
}

// RefreshNotes raises a distraction-pattern note from the past week's
// distractions unless an undismissed one from that week already exists.
// Each new note is also written to the activity log. It returns the
// number of notes created.
func (s *Service) RefreshNotes(ctx context.Context, userID string) (int, error) {
	since := s.now().AddDate(0, 0, -analyzer.PatternWindowDays)
	shares, err := s.Distractions(ctx, userID, analyzer.PatternWindowDays)
	if err != nil {
		return 0, err
	}
	note, ok := analyzer.DistractionPattern(shares)
	if !ok {
		return 0, nil
	}

	exists, err := s.store.HasActiveNote(ctx, userID, note.Type, since)
	if err != nil {
		return 0, fmt.Errorf("checking notes: %w", err)
	}
	if exists {
		return 0, nil
	}

	if err := s.store.InsertNote(ctx, &store.AgentNote{
		UserID:         userID,
		Type:           note.Type,
		Title:          note.Title,
		Body:           note.Body,
		SuggestionText: note.SuggestionText,
		CreatedAt:      s.now(),
	}); err != nil {
		return 0, fmt.Errorf("saving note: %w", err)
	}

	payload, err := json.Marshal(map[string]string{"why": note.Body, "suggestion_text": note.SuggestionText})
	if err != nil {
		return 0, err
	}
	if err := s.store.InsertActivity(ctx, &store.ActivityEntry{
		UserID:      userID,
		ActionType:  "distraction_suggestion",
		Description: "Focus Agent suggested a change based on your distractions",
		Payload:     payload,
		CreatedAt:   s.now(),
	}); err != nil {
		return 0, fmt.Errorf("logging note activity: %w", err)
	}

	s.logger.Debug("raised note", "user", userID, "type", note.Type)
	return 1, nil
}

// IsNewUser reports whether userID is still inside the new-user window.
func (s *Service) IsNewUser(ctx context.Context, userID string) (bool, error) {
	earliest, ok, err := s.store.EarliestSessionStart(ctx, userID)
	if err != nil {
		return false, fmt.Errorf("loading first session: %w", err)
	}
	return analyzer.IsNewUser(earliest, ok, s.now()), nil
}
