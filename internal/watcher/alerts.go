package watcher

import "fmt"

// abandonmentSpikeRate is the recent abandonment share that raises a
// critical alert.
const abandonmentSpikeRate = 0.5

// Compare detects notable changes between two watch states and returns alerts.
// It checks for critical, warning, and info-level changes.
func Compare(prev, curr *WatchState) []Alert {
	var alerts []Alert

	alerts = append(alerts, compareCritical(prev, curr)...)
	alerts = append(alerts, compareWarning(prev, curr)...)
	alerts = append(alerts, compareInfo(prev, curr)...)

	return alerts
}

// compareCritical detects critical-level changes.
func compareCritical(prev, curr *WatchState) []Alert {
	var alerts []Alert

	// Recent abandonment crossed the spike threshold.
	if curr.AbandonmentRate >= abandonmentSpikeRate && prev.AbandonmentRate < abandonmentSpikeRate {
		alerts = append(alerts, Alert{
			Level:   "critical",
			Title:   "Abandonment spike",
			Message: fmt.Sprintf("%.0f%% of your last %d sessions ended early", curr.AbandonmentRate*100, curr.SessionCount),
			Time:    curr.Timestamp,
		})
	}

	return alerts
}

// compareWarning detects warning-level changes.
func compareWarning(prev, curr *WatchState) []Alert {
	var alerts []Alert

	// Daily cap reached. Only fires on the crossing, and resets with the
	// day's count.
	if curr.MaxSessionsPerDay > 0 &&
		curr.TodaySessions >= curr.MaxSessionsPerDay &&
		prev.TodaySessions < curr.MaxSessionsPerDay {
		alerts = append(alerts, Alert{
			Level:   "warning",
			Title:   "Daily session cap reached",
			Message: fmt.Sprintf("%d of %d sessions today; time for a longer break", curr.TodaySessions, curr.MaxSessionsPerDay),
			Time:    curr.Timestamp,
		})
	}

	// Streak lost.
	if prev.CurrentStreak > 0 && curr.CurrentStreak == 0 {
		alerts = append(alerts, Alert{
			Level:   "warning",
			Title:   "Streak ended",
			Message: fmt.Sprintf("Your %d-day streak ended; complete a session today to start a new one", prev.CurrentStreak),
			Time:    curr.Timestamp,
		})
	}

	return alerts
}

// compareInfo detects informational changes.
func compareInfo(prev, curr *WatchState) []Alert {
	var alerts []Alert

	// New sessions recorded.
	if n := curr.TotalSessions - prev.TotalSessions; n > 0 {
		completed := curr.CompletedSessions - prev.CompletedSessions
		alerts = append(alerts, Alert{
			Level:   "info",
			Title:   fmt.Sprintf("%d new session(s) recorded", n),
			Message: fmt.Sprintf("%d completed, %d abandoned", completed, n-completed),
			Time:    curr.Timestamp,
		})
	}

	// Suggestion appeared or moved.
	if curr.HasSuggestion &&
		(!prev.HasSuggestion || prev.SuggestedMinutes != curr.SuggestedMinutes) {
		alerts = append(alerts, Alert{
			Level:   "info",
			Title:   fmt.Sprintf("Try %d minute sessions", curr.SuggestedMinutes),
			Message: curr.Reason,
			Time:    curr.Timestamp,
		})
	}

	// Streak extended.
	if curr.CurrentStreak > prev.CurrentStreak && curr.CurrentStreak > 1 {
		alerts = append(alerts, Alert{
			Level:   "info",
			Title:   fmt.Sprintf("Streak: %d days", curr.CurrentStreak),
			Message: "Keep it going with a session tomorrow",
			Time:    curr.Timestamp,
		})
	}

	return alerts
}
