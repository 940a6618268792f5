package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/focuscoach/internal/config"
	"github.com/blackwell-systems/focuscoach/internal/store"
	"github.com/blackwell-systems/focuscoach/internal/suggest"
)

var now = time.Date(2026, 6, 3, 12, 0, 0, 0, time.UTC)

func testConfig() *config.Config {
	return &config.Config{
		Suggest:  config.DefaultSuggest,
		Defaults: config.DefaultPreferences,
	}
}

func newTestService(t *testing.T) (*Service, *store.DB) {
	t.Helper()
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, testConfig(), WithClock(func() time.Time { return now })), db
}

func record(t *testing.T, db *store.DB, user string, hoursAgo int, plannedMin, actualMin int, status string) {
	t.Helper()
	require.NoError(t, db.InsertSession(context.Background(), &store.FocusSession{
		UserID:                 user,
		PlannedDurationSeconds: plannedMin * 60,
		ActualDurationSeconds:  actualMin * 60,
		Status:                 status,
		StartedAt:              now.Add(-time.Duration(hoursAgo) * time.Hour),
	}))
}

func TestSuggest_NoHistoryUsesConfiguredDefaults(t *testing.T) {
	svc, _ := newTestService(t)

	got, err := svc.Suggest(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.Equal(t, 25, got.SuggestedDurationMinutes)
	assert.Equal(t, 5, got.SuggestedBreakMinutes)
	assert.Nil(t, got.Reason)
	assert.Equal(t, 0, got.SessionCountUsed)
	assert.Nil(t, got.Stats)
}

func TestSuggest_ShorterFromHistory(t *testing.T) {
	svc, db := newTestService(t)
	for i := 0; i < 3; i++ {
		record(t, db, "u1", i+1, 25, 12, store.StatusCompleted)
	}
	// Other users and unfinished sessions do not count.
	record(t, db, "u2", 1, 25, 25, store.StatusCompleted)
	record(t, db, "u1", 0, 25, 1, store.StatusActive)

	got, err := svc.Suggest(context.Background(), "u1", "deep_work")
	require.NoError(t, err)
	assert.Equal(t, 10, got.SuggestedDurationMinutes)
	require.NotNil(t, got.Reason)
	assert.Equal(t, "Your last 3 sessions lost focus after ~12 minutes on average.", *got.Reason)
	require.NotNil(t, got.Stats)
	assert.Equal(t, 3, got.Stats.SessionCount)
}

func TestSuggest_UsesSavedPreferences(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	require.NoError(t, db.UpsertPreferences(ctx, &store.Preferences{
		UserID:              "u1",
		CoachPersonality:    "strict",
		DefaultFocusMinutes: 50,
		DefaultBreakMinutes: 10,
		PreferredFocusTime:  "night",
		CompletedAt:         now,
	}))
	for i := 0; i < 4; i++ {
		record(t, db, "u1", i+1, 50, 51, store.StatusCompleted)
	}

	got, err := svc.Suggest(ctx, "u1", "")
	require.NoError(t, err)
	assert.Equal(t, 55, got.SuggestedDurationMinutes)
	assert.Equal(t, 10, got.SuggestedBreakMinutes)
	assert.Equal(t, 50, got.DefaultFocusMinutes)
	require.NotNil(t, got.Reason)
	assert.Equal(t, "Your last 4 sessions completed strongly; try 55 minutes.", *got.Reason)
}

func TestSuggest_RespectsRecentLimit(t *testing.T) {
	svc, db := newTestService(t)
	for i := 0; i < 10; i++ {
		record(t, db, "u1", i+1, 25, 25, store.StatusCompleted)
	}
	got, err := svc.Suggest(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.Equal(t, suggest.RecentSessionsLimit, got.SessionCountUsed)
}

type failingStore struct{ Store }

func (failingStore) RecentFinishedSessions(context.Context, string, int) ([]store.FocusSession, error) {
	return nil, errors.New("disk on fire")
}

func (failingStore) GetPreferences(context.Context, string) (*store.Preferences, error) {
	return nil, nil
}

func TestSuggest_PropagatesStoreErrors(t *testing.T) {
	svc := New(failingStore{}, testConfig())
	_, err := svc.Suggest(context.Background(), "u1", "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "loading recent sessions")
}

func TestToRecords_SkipsInvalidRows(t *testing.T) {
	in := []store.FocusSession{
		{PlannedDurationSeconds: 60, ActualDurationSeconds: 30, Status: store.StatusAbandoned},
		{PlannedDurationSeconds: 60, ActualDurationSeconds: -1, Status: store.StatusCompleted},
		{PlannedDurationSeconds: 60, ActualDurationSeconds: 60, Status: store.StatusPaused},
		{PlannedDurationSeconds: 60, ActualDurationSeconds: 60, Status: store.StatusCompleted},
	}
	got := ToRecords(in)
	require.Len(t, got, 2)
	assert.True(t, got[0].Abandoned())
	assert.Equal(t, suggest.StatusCompleted, got[1].Status)
}

func TestMetricsAndStatus(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	isNew, err := svc.IsNewUser(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, isNew)

	record(t, db, "u1", 24*5, 25, 25, store.StatusCompleted)
	record(t, db, "u1", 2, 25, 20, store.StatusAbandoned)

	isNew, err = svc.IsNewUser(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, isNew)

	report, err := svc.Metrics(ctx, "u1", 7)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Metrics.TotalSessions)
	assert.Equal(t, 45, report.Metrics.TotalFocusMinutes)
	assert.Len(t, report.Daily, 7)
}

func sessionFor(t *testing.T, db *store.DB, user string) string {
	t.Helper()
	s := &store.FocusSession{
		UserID:                 user,
		PlannedDurationSeconds: 25 * 60,
		ActualDurationSeconds:  25 * 60,
		Status:                 store.StatusCompleted,
		StartedAt:              now.Add(-2 * time.Hour),
	}
	require.NoError(t, db.InsertSession(context.Background(), s))
	return s.ID
}

func TestLogDistraction_Validates(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	id := sessionFor(t, db, "u1")

	err := svc.LogDistraction(ctx, &store.Distraction{SessionID: id, UserID: "u1", Type: "Email/Slack"})
	require.ErrorIs(t, err, ErrInvalidDistraction)

	err = svc.LogDistraction(ctx, &store.Distraction{SessionID: id, UserID: "u1", Type: "stuck", TimeIntoSessionSeconds: -5})
	require.ErrorIs(t, err, ErrInvalidDistraction)

	err = svc.LogDistraction(ctx, &store.Distraction{SessionID: "missing", UserID: "u1", Type: "stuck"})
	require.ErrorIs(t, err, store.ErrNotFound)

	d := &store.Distraction{SessionID: id, UserID: "u1", Type: "stuck", TimeIntoSessionSeconds: 600}
	require.NoError(t, svc.LogDistraction(ctx, d))
	assert.Equal(t, now, d.LoggedAt)

	report, err := svc.Metrics(ctx, "u1", 7)
	require.NoError(t, err)
	require.Len(t, report.Distractions, 1)
	assert.Equal(t, "stuck", report.Distractions[0].Type)
	assert.Equal(t, 10.0, report.Distractions[0].AvgMinutesIn)
}

func TestRefreshNotes(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	id := sessionFor(t, db, "u1")

	log := func(typ string, daysAgo int) {
		require.NoError(t, svc.LogDistraction(ctx, &store.Distraction{
			SessionID: id, UserID: "u1", Type: typ, LoggedAt: now.AddDate(0, 0, -daysAgo),
		}))
	}

	// Old distractions fall outside the week.
	log("stuck", 10)
	log("stuck", 10)
	log("stuck", 10)
	created, err := svc.RefreshNotes(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	log("phone_social", 1)
	log("phone_social", 2)
	log("boredom", 2)
	created, err = svc.RefreshNotes(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	notes, err := db.ListActiveNotes(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "67% of your distractions this week were phone / social media-related.", notes[0].Body)
	assert.Equal(t, "Put your phone in another room for upcoming sessions.", notes[0].SuggestionText)

	entries, err := db.ListActivity(ctx, "u1", 10, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "distraction_suggestion", entries[0].ActionType)
	assert.JSONEq(t, `{"why":"67% of your distractions this week were phone / social media-related.","suggestion_text":"Put your phone in another room for upcoming sessions."}`, string(entries[0].Payload))

	// An open note from this week suppresses another.
	created, err = svc.RefreshNotes(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 0, created)

	// Dismissing it lets the pattern raise a fresh one.
	require.NoError(t, db.DismissNote(ctx, "u1", notes[0].ID, now))
	created, err = svc.RefreshNotes(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, created)
}
