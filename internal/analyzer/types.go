// Package analyzer computes focus metrics, streaks, and per-day statistics
// from recorded focus sessions.
package analyzer

// NewUserWindowDays is how long after their first session a user still
// counts as new.
const NewUserWindowDays = 3

// FocusMetrics summarizes a user's finished sessions.
type FocusMetrics struct {
	// TotalSessions counts completed and abandoned sessions.
	TotalSessions int `json:"total_sessions"`

	CompletedSessions int `json:"completed_sessions"`
	AbandonedSessions int `json:"abandoned_sessions"`

	// CompletionRate is the completed share as a percentage (0-100).
	CompletionRate float64 `json:"completion_rate"`

	// TotalFocusMinutes is the rounded sum of actual durations.
	TotalFocusMinutes int `json:"total_focus_minutes"`

	// AvgSessionMinutes is the rounded mean actual duration.
	AvgSessionMinutes int `json:"avg_session_minutes"`

	TotalDistractions int `json:"total_distractions"`

	// AvgDistractionsPerSession is rounded to one decimal place.
	AvgDistractionsPerSession float64 `json:"avg_distractions_per_session"`

	// CurrentStreak is the run of consecutive UTC days with a completed
	// session ending today or yesterday; zero otherwise.
	CurrentStreak int `json:"current_streak"`

	// LongestStreak is the longest such run ever recorded.
	LongestStreak int `json:"longest_streak"`
}

// DailyStats aggregates sessions started on one UTC day.
type DailyStats struct {
	Date              string `json:"date"`
	Sessions          int    `json:"sessions"`
	CompletedSessions int    `json:"completed_sessions"`
	FocusMinutes      int    `json:"focus_minutes"`
	Distractions      int    `json:"distractions"`
}

// HourlyPattern aggregates sessions by UTC start hour.
type HourlyPattern struct {
	Hour           int `json:"hour"`
	Sessions       int `json:"sessions"`
	CompletionRate int `json:"completion_rate"`
}

// DistractionShare is one distraction type's part of the total.
type DistractionShare struct {
	Type  string `json:"type"`
	Count int    `json:"count"`

	// Percentage is rounded to a whole number.
	Percentage int `json:"percentage"`

	// AvgMinutesIn is the mean time into the session, one decimal place.
	AvgMinutesIn float64 `json:"avg_minutes_into_session"`
}

// Note is a coaching note derived from the user's data.
type Note struct {
	Type           string
	Title          string
	Body           string
	SuggestionText string
}

// Report bundles everything the metrics views show.
type Report struct {
	Metrics      FocusMetrics       `json:"metrics"`
	Daily        []DailyStats       `json:"daily"`
	Hourly       []HourlyPattern    `json:"hourly"`
	Distractions []DistractionShare `json:"distractions"`
}
