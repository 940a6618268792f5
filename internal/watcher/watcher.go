// Package watcher polls a user's focus history and emits alerts when the
// coaching picture changes: a new length suggestion, a streak gained or
// lost, the daily session cap reached, or a run of abandoned sessions.
package watcher

import (
	"context"
	"fmt"
	"time"

	"github.com/blackwell-systems/focuscoach/internal/analyzer"
	"github.com/blackwell-systems/focuscoach/internal/service"
	"github.com/blackwell-systems/focuscoach/internal/store"
)

// Source supplies the computed views a snapshot is built from.
type Source interface {
	Suggest(ctx context.Context, userID, segment string) (*service.Suggestion, error)
	Metrics(ctx context.Context, userID string, days int) (analyzer.Report, error)
}

// PreferenceReader loads saved preferences; nil means none saved.
type PreferenceReader interface {
	GetPreferences(ctx context.Context, userID string) (*store.Preferences, error)
}

// WatchState captures a point-in-time view of one user's focus data.
type WatchState struct {
	Timestamp time.Time

	TotalSessions     int
	CompletedSessions int
	TodaySessions     int
	CurrentStreak     int

	// SuggestedMinutes is only meaningful when HasSuggestion is set.
	SuggestedMinutes int
	HasSuggestion    bool
	Reason           string

	// AbandonmentRate covers the last SessionCount sessions; -1 when
	// there is too little history to compute it.
	AbandonmentRate float64
	SessionCount    int

	// MaxSessionsPerDay is 0 when the user set no cap.
	MaxSessionsPerDay int
}

// Alert represents a notable event detected by the watcher.
type Alert struct {
	Level   string // "info", "warning", "critical"
	Title   string
	Message string
	Time    time.Time
}

// Watcher polls one user's focus data at a regular interval and emits
// alerts when notable changes are detected.
type Watcher struct {
	source        Source
	prefs         PreferenceReader
	userID        string
	interval      time.Duration
	previous      *WatchState
	alertFn       func(Alert)     // callback for emitting alerts
	lastAlertKeys map[string]bool // dedup: suppress repeated identical alerts
	now           func() time.Time
}

// New creates a Watcher for userID. prefs may be nil, in which case no
// daily cap is enforced.
func New(source Source, prefs PreferenceReader, userID string, interval time.Duration, alertFn func(Alert)) *Watcher {
	return &Watcher{
		source:        source,
		prefs:         prefs,
		userID:        userID,
		interval:      interval,
		alertFn:       alertFn,
		lastAlertKeys: make(map[string]bool),
		now:           time.Now,
	}
}

// Run starts the watch loop. It takes an initial snapshot, then checks at
// every interval. Blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	initial, err := w.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("initial snapshot: %w", err)
	}
	w.previous = initial

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, a := range w.Check(ctx) {
				if w.alertFn != nil {
					w.alertFn(a)
				}
			}
		}
	}
}

// Check performs a single check cycle: takes a new snapshot, compares against
// the previous state, updates the previous state, and returns any alerts.
// Identical alerts are suppressed until the underlying data changes.
func (w *Watcher) Check(ctx context.Context) []Alert {
	curr, err := w.Snapshot(ctx)
	if err != nil {
		return []Alert{{
			Level:   "warning",
			Title:   "Snapshot failed",
			Message: fmt.Sprintf("Could not read focus data: %v", err),
			Time:    w.now(),
		}}
	}

	var raw []Alert
	if w.previous != nil {
		raw = Compare(w.previous, curr)
	}

	currentKeys := make(map[string]bool, len(raw))
	var alerts []Alert
	for _, a := range raw {
		key := a.Level + ":" + a.Title + ":" + a.Message
		currentKeys[key] = true
		if !w.lastAlertKeys[key] {
			alerts = append(alerts, a)
		}
	}
	w.lastAlertKeys = currentKeys

	w.previous = curr
	return alerts
}

// Snapshot captures the current suggestion, today's metrics, and the
// saved daily cap.
func (w *Watcher) Snapshot(ctx context.Context) (*WatchState, error) {
	sg, err := w.source.Suggest(ctx, w.userID, "")
	if err != nil {
		return nil, fmt.Errorf("computing suggestion: %w", err)
	}
	report, err := w.source.Metrics(ctx, w.userID, 1)
	if err != nil {
		return nil, fmt.Errorf("computing metrics: %w", err)
	}

	state := &WatchState{
		Timestamp:         w.now(),
		TotalSessions:     report.Metrics.TotalSessions,
		CompletedSessions: report.Metrics.CompletedSessions,
		CurrentStreak:     report.Metrics.CurrentStreak,
		SuggestedMinutes:  sg.SuggestedDurationMinutes,
		HasSuggestion:     sg.HasSuggestion(),
		AbandonmentRate:   -1,
	}
	if sg.Reason != nil {
		state.Reason = *sg.Reason
	}
	if sg.Stats != nil {
		state.AbandonmentRate = sg.Stats.AbandonmentRate
		state.SessionCount = sg.Stats.SessionCount
	}
	if n := len(report.Daily); n > 0 {
		state.TodaySessions = report.Daily[n-1].Sessions
	}

	if w.prefs != nil {
		p, err := w.prefs.GetPreferences(ctx, w.userID)
		if err != nil {
			return nil, fmt.Errorf("loading preferences: %w", err)
		}
		if p != nil && p.MaxSessionsPerDay != nil {
			state.MaxSessionsPerDay = *p.MaxSessionsPerDay
		}
	}
	return state, nil
}
