package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// GetPreferences returns the saved preferences for userID, or nil when the
// user has not completed onboarding.
func (db *DB) GetPreferences(ctx context.Context, userID string) (*Preferences, error) {
	var (
		p                                            Preferences
		domains, triggers, rules, goals, completedAt string
		maxPerDay                                    sql.NullInt64
		customDomain                                 sql.NullString
	)
	err := db.conn.QueryRowContext(ctx, db.rebind(
		`SELECT user_id, coach_personality, focus_domains, distraction_triggers,
		 default_focus_minutes, default_break_minutes, session_rules, max_sessions_per_day,
		 preferred_focus_time, success_goals, custom_focus_domain, completed_at
		 FROM user_preferences WHERE user_id = ?`),
		userID,
	).Scan(
		&p.UserID, &p.CoachPersonality, &domains, &triggers,
		&p.DefaultFocusMinutes, &p.DefaultBreakMinutes, &rules, &maxPerDay,
		&p.PreferredFocusTime, &goals, &customDomain, &completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	for _, f := range []struct {
		raw string
		dst *[]string
	}{
		{domains, &p.FocusDomains},
		{triggers, &p.DistractionTriggers},
		{rules, &p.SessionRules},
		{goals, &p.SuccessGoals},
	} {
		if err := decodeList(f.raw, f.dst); err != nil {
			return nil, fmt.Errorf("decoding preferences for %s: %w", userID, err)
		}
	}
	if maxPerDay.Valid {
		n := int(maxPerDay.Int64)
		p.MaxSessionsPerDay = &n
	}
	if customDomain.Valid {
		s := customDomain.String
		p.CustomFocusDomain = &s
	}
	p.CompletedAt = parseTime(completedAt)
	return &p, nil
}

// UpsertPreferences inserts or replaces the preferences row for p.UserID.
func (db *DB) UpsertPreferences(ctx context.Context, p *Preferences) error {
	lists := make([]string, 0, 4)
	for _, l := range [][]string{p.FocusDomains, p.DistractionTriggers, p.SessionRules, p.SuccessGoals} {
		enc, err := encodeList(l)
		if err != nil {
			return err
		}
		lists = append(lists, enc)
	}

	var maxPerDay sql.NullInt64
	if p.MaxSessionsPerDay != nil {
		maxPerDay = sql.NullInt64{Int64: int64(*p.MaxSessionsPerDay), Valid: true}
	}
	var customDomain sql.NullString
	if p.CustomFocusDomain != nil {
		customDomain = sql.NullString{String: *p.CustomFocusDomain, Valid: true}
	}

	_, err := db.conn.ExecContext(ctx, db.rebind(
		`INSERT INTO user_preferences
		(user_id, coach_personality, focus_domains, distraction_triggers,
		 default_focus_minutes, default_break_minutes, session_rules, max_sessions_per_day,
		 preferred_focus_time, success_goals, custom_focus_domain, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
		 coach_personality = excluded.coach_personality,
		 focus_domains = excluded.focus_domains,
		 distraction_triggers = excluded.distraction_triggers,
		 default_focus_minutes = excluded.default_focus_minutes,
		 default_break_minutes = excluded.default_break_minutes,
		 session_rules = excluded.session_rules,
		 max_sessions_per_day = excluded.max_sessions_per_day,
		 preferred_focus_time = excluded.preferred_focus_time,
		 success_goals = excluded.success_goals,
		 custom_focus_domain = excluded.custom_focus_domain,
		 completed_at = excluded.completed_at`),
		p.UserID, p.CoachPersonality, lists[0], lists[1],
		p.DefaultFocusMinutes, p.DefaultBreakMinutes, lists[2], maxPerDay,
		p.PreferredFocusTime, lists[3], customDomain, formatTime(p.CompletedAt),
	)
	return err
}

func encodeList(l []string) (string, error) {
	if l == nil {
		l = []string{}
	}
	b, err := json.Marshal(l)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeList(raw string, dst *[]string) error {
	if raw == "" {
		*dst = []string{}
		return nil
	}
	return json.Unmarshal([]byte(raw), dst)
}
