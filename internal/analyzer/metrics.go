package analyzer

import (
	"math"
	"slices"
	"time"

	"github.com/blackwell-systems/focuscoach/internal/store"
)

const dayLayout = "2006-01-02"

// finished keeps completed and abandoned sessions.
func finished(sessions []store.FocusSession) []store.FocusSession {
	var out []store.FocusSession
	for _, s := range sessions {
		if s.Finished() {
			out = append(out, s)
		}
	}
	return out
}

func roundedMinutes(seconds int) int {
	return int(math.Round(float64(seconds) / 60))
}

// AnalyzeFocus computes FocusMetrics from sessions. Unfinished sessions are
// ignored. now anchors the current streak.
func AnalyzeFocus(sessions []store.FocusSession, now time.Time) FocusMetrics {
	done := finished(sessions)

	var m FocusMetrics
	m.TotalSessions = len(done)
	if len(done) == 0 {
		return m
	}

	var totalSeconds int
	var completedDays []string
	for _, s := range done {
		totalSeconds += s.ActualDurationSeconds
		m.TotalDistractions += s.TotalDistractions
		switch s.Status {
		case store.StatusCompleted:
			m.CompletedSessions++
			completedDays = append(completedDays, s.StartedAt.UTC().Format(dayLayout))
		case store.StatusAbandoned:
			m.AbandonedSessions++
		}
	}

	n := float64(len(done))
	m.CompletionRate = float64(m.CompletedSessions) / n * 100
	m.TotalFocusMinutes = roundedMinutes(totalSeconds)
	m.AvgSessionMinutes = int(math.Round(float64(totalSeconds) / 60 / n))
	m.AvgDistractionsPerSession = math.Round(float64(m.TotalDistractions)/n*10) / 10
	m.CurrentStreak, m.LongestStreak = Streaks(completedDays, now)

	return m
}

// Streaks returns the current and longest runs of consecutive days in days
// (YYYY-MM-DD, any order, duplicates allowed). The current streak is the
// final run, counted only when it ends today or yesterday relative to now.
func Streaks(days []string, now time.Time) (current, longest int) {
	if len(days) == 0 {
		return 0, 0
	}

	unique := slices.Clone(days)
	slices.Sort(unique)
	unique = slices.Compact(unique)

	run := 1
	for i := 1; i < len(unique); i++ {
		prev, errPrev := time.Parse(dayLayout, unique[i-1])
		curr, errCurr := time.Parse(dayLayout, unique[i])
		if errPrev == nil && errCurr == nil && curr.Sub(prev) == 24*time.Hour {
			run++
			continue
		}
		longest = max(longest, run)
		run = 1
	}
	longest = max(longest, run)

	today := now.UTC().Format(dayLayout)
	yesterday := now.UTC().AddDate(0, 0, -1).Format(dayLayout)
	last := unique[len(unique)-1]
	if last == today || last == yesterday {
		current = run
	}
	return current, longest
}

// AnalyzeDaily returns one entry per UTC day for the last days days ending
// today, oldest first. Days without sessions are present with zero counts.
func AnalyzeDaily(sessions []store.FocusSession, days int, now time.Time) []DailyStats {
	if days <= 0 {
		return []DailyStats{}
	}

	out := make([]DailyStats, days)
	index := make(map[string]int, days)
	for i := 0; i < days; i++ {
		date := now.UTC().AddDate(0, 0, -(days - 1 - i)).Format(dayLayout)
		out[i] = DailyStats{Date: date}
		index[date] = i
	}

	for _, s := range finished(sessions) {
		i, ok := index[s.StartedAt.UTC().Format(dayLayout)]
		if !ok {
			continue
		}
		out[i].Sessions++
		if s.Status == store.StatusCompleted {
			out[i].CompletedSessions++
		}
		out[i].FocusMinutes += roundedMinutes(s.ActualDurationSeconds)
		out[i].Distractions += s.TotalDistractions
	}
	return out
}

// AnalyzeHourly buckets finished sessions by UTC start hour. All 24 hours
// are returned.
func AnalyzeHourly(sessions []store.FocusSession) []HourlyPattern {
	var total, completed [24]int
	for _, s := range finished(sessions) {
		h := s.StartedAt.UTC().Hour()
		total[h]++
		if s.Status == store.StatusCompleted {
			completed[h]++
		}
	}

	out := make([]HourlyPattern, 24)
	for h := range out {
		out[h] = HourlyPattern{Hour: h, Sessions: total[h]}
		if total[h] > 0 {
			out[h].CompletionRate = int(math.Round(float64(completed[h]) / float64(total[h]) * 100))
		}
	}
	return out
}

// BuildReport runs every analysis over sessions.
func BuildReport(sessions []store.FocusSession, days int, now time.Time) Report {
	return Report{
		Metrics: AnalyzeFocus(sessions, now),
		Daily:   AnalyzeDaily(sessions, days, now),
		Hourly:  AnalyzeHourly(sessions),
	}
}

// IsNewUser reports whether a user with the given earliest session start
// is still within the new-user window. hasSessions is false when the user
// has never started a session.
func IsNewUser(earliest time.Time, hasSessions bool, now time.Time) bool {
	if !hasSessions {
		return true
	}
	return earliest.After(now.AddDate(0, 0, -NewUserWindowDays))
}
