package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/focuscoach/internal/config"
	"github.com/blackwell-systems/focuscoach/internal/service"
	"github.com/blackwell-systems/focuscoach/internal/store"
)

var now = time.Date(2026, 7, 20, 15, 0, 0, 0, time.UTC)

const onboarding = `{
	"coach_personality": "strict",
	"focus_domains": ["deep_work"],
	"distraction_triggers": ["notifications"],
	"default_focus_minutes": 40,
	"default_break_minutes": 8,
	"preferred_focus_time": "afternoon",
	"success_goals": ["more_done"]
}`

type harness struct {
	db      *store.DB
	handler http.Handler
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	db, err := store.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{Suggest: config.DefaultSuggest, Defaults: config.DefaultPreferences}
	clock := func() time.Time { return now }
	svc := service.New(db, cfg, service.WithClock(clock))
	srv := New(db, svc, append([]Option{WithClock(clock)}, opts...)...)
	return &harness{db: db, handler: srv.Handler()}
}

func (h *harness) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	req.Header.Set("X-Auth-User", "alice")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestAuth_RejectsAnonymous(t *testing.T) {
	h := newHarness(t)
	req := httptest.NewRequest(http.MethodGet, "/api/agent/session-suggestions", nil)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"Unauthorized"}`, rec.Body.String())
}

func TestAuth_HeaderFallbacksAndDevUser(t *testing.T) {
	h := newHarness(t, WithDevUser("dev"))

	req := httptest.NewRequest(http.MethodGet, "/api/user/status", nil)
	req.Header.Set("Remote-User", "bob")
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/user/status", nil)
	rec = httptest.NewRecorder()
	h.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHealthz_NoAuth(t *testing.T) {
	h := newHarness(t)
	rec := httptest.NewRecorder()
	h.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestSessionSuggestions_DefaultShape(t *testing.T) {
	h := newHarness(t)
	rec := h.do(t, http.MethodGet, "/api/agent/session-suggestions?segment=deep_work", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{
		"suggestedDurationMinutes": 25,
		"suggestedBreakMinutes": 5,
		"reason": null,
		"defaultFocusMinutes": 25,
		"sessionCountUsed": 0
	}`, rec.Body.String())
}

func TestSessionSuggestions_AfterRecordingSessions(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 3; i++ {
		rec := h.do(t, http.MethodPost, "/api/sessions",
			`{"planned_duration_seconds":1500,"actual_duration_seconds":900,"status":"abandoned"}`)
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	got := decode[map[string]any](t, h.do(t, http.MethodGet, "/api/agent/session-suggestions", ""))
	assert.EqualValues(t, 15, got["suggestedDurationMinutes"])
	assert.Equal(t, "Your last 3 sessions lost focus after ~15 minutes on average.", got["reason"])
	assert.EqualValues(t, 3, got["sessionCountUsed"])
}

func TestRecordSession_Validation(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/sessions", `{"planned_duration_seconds":60,"actual_duration_seconds":-5,"status":"completed"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/sessions", `{"planned_duration_seconds":60,"status":"sleeping"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/sessions", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListSessions(t *testing.T) {
	h := newHarness(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, h.db.InsertSession(context.Background(), &store.FocusSession{
			UserID:                 "alice",
			PlannedDurationSeconds: 1500,
			ActualDurationSeconds:  1500,
			Status:                 store.StatusCompleted,
			StartedAt:              now.AddDate(0, 0, -i*5),
		}))
	}

	got := decode[map[string][]store.FocusSession](t, h.do(t, http.MethodGet, "/api/sessions?days=7", ""))
	assert.Len(t, got["sessions"], 2)

	got = decode[map[string][]store.FocusSession](t, h.do(t, http.MethodGet, "/api/sessions?limit=1", ""))
	assert.Len(t, got["sessions"], 1)
}

func TestPreferences_Lifecycle(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodGet, "/api/user/preferences", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))

	rec = h.do(t, http.MethodPost, "/api/user/preferences", `{"default_focus_minutes": 30}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "no existing preferences")

	rec = h.do(t, http.MethodPost, "/api/user/preferences", onboarding)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.JSONEq(t, `{"ok":true}`, rec.Body.String())

	rec = h.do(t, http.MethodPost, "/api/user/preferences", `{"default_break_minutes": 12}`)
	require.Equal(t, http.StatusOK, rec.Code)

	saved := decode[store.Preferences](t, h.do(t, http.MethodGet, "/api/user/preferences", ""))
	assert.Equal(t, 40, saved.DefaultFocusMinutes)
	assert.Equal(t, 12, saved.DefaultBreakMinutes)
	assert.Equal(t, "strict", saved.CoachPersonality)

	// Suggestions pick up the saved defaults.
	sg := decode[map[string]any](t, h.do(t, http.MethodGet, "/api/agent/session-suggestions", ""))
	assert.EqualValues(t, 40, sg["suggestedDurationMinutes"])
	assert.EqualValues(t, 12, sg["suggestedBreakMinutes"])

	rec = h.do(t, http.MethodPost, "/api/user/preferences", `{"coach_personality": "mean"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "coach_personality")
}

func TestActivityLog(t *testing.T) {
	h := newHarness(t)

	rec := h.do(t, http.MethodPost, "/api/agent/activity-log", `{"action_type":"suggestion_accepted"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.JSONEq(t, `{"error":"action_type and description required"}`, rec.Body.String())

	for i := 0; i < 12; i++ {
		rec = h.do(t, http.MethodPost, "/api/agent/activity-log",
			`{"action_type":"suggestion_accepted","description":"took the shorter session","payload":{"minutes":20}}`)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	page := decode[activityPage](t, h.do(t, http.MethodGet, "/api/agent/activity-log", ""))
	assert.Equal(t, 12, page.Total)
	assert.Len(t, page.Entries, 10)
	assert.JSONEq(t, `{"minutes":20}`, string(page.Entries[0].Payload))

	page = decode[activityPage](t, h.do(t, http.MethodGet, "/api/agent/activity-log?page=2&limit=10", ""))
	assert.Len(t, page.Entries, 2)

	page = decode[activityPage](t, h.do(t, http.MethodGet, "/api/agent/activity-log?limit=500&page=-3", ""))
	assert.Len(t, page.Entries, 12)
}

func TestStatusAndMetrics(t *testing.T) {
	h := newHarness(t)

	status := decode[map[string]bool](t, h.do(t, http.MethodGet, "/api/user/status", ""))
	assert.True(t, status["isNewUser"])

	rec := h.do(t, http.MethodPost, "/api/sessions", `{"planned_duration_seconds":1500,"actual_duration_seconds":1500,"status":"completed"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	metrics := decode[map[string]json.RawMessage](t, h.do(t, http.MethodGet, "/api/metrics?days=3", ""))
	assert.Contains(t, string(metrics["metrics"]), `"total_sessions":1`)
	assert.Contains(t, string(metrics["metrics"]), `"current_streak":1`)

	var daily []map[string]any
	require.NoError(t, json.Unmarshal(metrics["daily"], &daily))
	assert.Len(t, daily, 3)
}
