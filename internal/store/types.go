// Package store provides SQLite and Postgres access for focus sessions,
// user preferences, and the agent activity log.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Session statuses.
const (
	StatusActive    = "active"
	StatusPaused    = "paused"
	StatusCompleted = "completed"
	StatusAbandoned = "abandoned"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// ErrInvalidSession is returned when a session fails validation on write.
var ErrInvalidSession = errors.New("invalid session")

// timeLayout is fixed-width so stored timestamps sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// FocusSession is one timed focus interval.
type FocusSession struct {
	ID                     string    `json:"id"`
	UserID                 string    `json:"user_id"`
	PlannedDurationSeconds int       `json:"planned_duration_seconds"`
	ActualDurationSeconds  int       `json:"actual_duration_seconds"`
	Status                 string    `json:"status"`
	StartedAt              time.Time `json:"started_at"`
	EndedAt                time.Time `json:"ended_at,omitzero"`
	TotalDistractions      int       `json:"total_distractions"`
	TotalPauses            int       `json:"total_pauses"`
}

// Finished reports whether the session reached a terminal status.
func (s FocusSession) Finished() bool {
	return s.Status == StatusCompleted || s.Status == StatusAbandoned
}

// Validate checks the invariants every stored session must satisfy.
func (s FocusSession) Validate() error {
	if s.UserID == "" {
		return fmt.Errorf("%w: user_id is required", ErrInvalidSession)
	}
	if s.PlannedDurationSeconds < 0 || s.ActualDurationSeconds < 0 {
		return fmt.Errorf("%w: durations must not be negative", ErrInvalidSession)
	}
	if s.TotalDistractions < 0 || s.TotalPauses < 0 {
		return fmt.Errorf("%w: counters must not be negative", ErrInvalidSession)
	}
	switch s.Status {
	case StatusActive, StatusPaused, StatusCompleted, StatusAbandoned:
	default:
		return fmt.Errorf("%w: unknown status %q", ErrInvalidSession, s.Status)
	}
	if s.StartedAt.IsZero() {
		return fmt.Errorf("%w: started_at is required", ErrInvalidSession)
	}
	return nil
}

// Preferences is a user's saved onboarding and settings choices.
type Preferences struct {
	UserID              string    `json:"user_id"`
	CoachPersonality    string    `json:"coach_personality"`
	FocusDomains        []string  `json:"focus_domains"`
	DistractionTriggers []string  `json:"distraction_triggers"`
	DefaultFocusMinutes int       `json:"default_focus_minutes"`
	DefaultBreakMinutes int       `json:"default_break_minutes"`
	SessionRules        []string  `json:"session_rules"`
	MaxSessionsPerDay   *int      `json:"max_sessions_per_day"`
	PreferredFocusTime  string    `json:"preferred_focus_time"`
	SuccessGoals        []string  `json:"success_goals"`
	CustomFocusDomain   *string   `json:"custom_focus_domain"`
	CompletedAt         time.Time `json:"completed_at"`
}

// ActivityEntry is one row of the agent activity log.
type ActivityEntry struct {
	ID          string          `json:"id"`
	UserID      string          `json:"-"`
	ActionType  string          `json:"action_type"`
	Description string          `json:"description"`
	Payload     json.RawMessage `json:"payload"`
	CreatedAt   time.Time       `json:"created_at"`
}

// Distraction is one typed interruption logged during a session.
type Distraction struct {
	ID                     string    `json:"id"`
	SessionID              string    `json:"session_id"`
	UserID                 string    `json:"-"`
	Type                   string    `json:"distraction_type"`
	TimeIntoSessionSeconds int       `json:"time_into_session_seconds"`
	TimeRemainingSeconds   int       `json:"time_remaining_seconds"`
	LoggedAt               time.Time `json:"logged_at"`
}

// AgentNote is a coaching note shown until the user dismisses it.
type AgentNote struct {
	ID             string     `json:"id"`
	UserID         string     `json:"-"`
	Type           string     `json:"type"`
	Title          string     `json:"title"`
	Body           string     `json:"body"`
	SuggestionText string     `json:"suggestion_text"`
	CreatedAt      time.Time  `json:"created_at"`
	DismissedAt    *time.Time `json:"dismissed_at,omitempty"`
}
