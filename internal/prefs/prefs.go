// Package prefs validates onboarding and settings payloads and merges them
// into stored preferences.
package prefs

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/blackwell-systems/focuscoach/internal/store"
)

// Allowed vocabularies.
var (
	CoachPersonalities  = []string{"strict", "data_focused", "encouraging"}
	FocusDomains        = []string{"deep_work", "studying", "creative", "job_search", "admin", "habit", "other"}
	DistractionTriggers = []string{"phone_social", "notifications", "overthinking", "boredom", "fatigue", "stuck", "external", "tab_switching"}
	SessionRules        = []string{"phone_out_of_reach", "single_task_only"}
	PreferredFocusTimes = []string{"early_morning", "late_morning", "afternoon", "night", "no_fixed"}
	SuccessGoals        = []string{"procrastinate_less", "finish_what_start", "less_guilty", "more_consistent", "more_done", "feel_calmer"}
)

// Numeric bounds.
const (
	FocusMinutesMin        = 5
	FocusMinutesMax        = 120
	BreakMinutesMin        = 1
	BreakMinutesMax        = 30
	DefaultBreakMinutes    = 5
	MaxDistractionTriggers = 3
	SessionsPerDayMin      = 1
	SessionsPerDayMax      = 20
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("invalid preferences")

// ErrNoExisting is returned when a partial update targets a user with no
// saved preferences.
var ErrNoExisting = errors.New("no existing preferences; send full onboarding payload first")

// Payload is a loosely filled request body. Nil fields were absent.
type Payload struct {
	CoachPersonality    *string   `json:"coach_personality,omitempty"`
	FocusDomains        *[]string `json:"focus_domains,omitempty"`
	DistractionTriggers *[]string `json:"distraction_triggers,omitempty"`
	DefaultFocusMinutes *int      `json:"default_focus_minutes,omitempty"`
	DefaultBreakMinutes *int      `json:"default_break_minutes,omitempty"`
	SessionRules        *[]string `json:"session_rules,omitempty"`
	MaxSessionsPerDay   *int      `json:"max_sessions_per_day,omitempty"`
	PreferredFocusTime  *string   `json:"preferred_focus_time,omitempty"`
	SuccessGoals        *[]string `json:"success_goals,omitempty"`

	// CustomFocusDomainSet distinguishes an explicit null from absence.
	CustomFocusDomain    *string `json:"custom_focus_domain,omitempty"`
	CustomFocusDomainSet bool    `json:"-"`
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

func allIn(values []string, allowed []string) bool {
	for _, v := range values {
		if !slices.Contains(allowed, v) {
			return false
		}
	}
	return true
}

func normalizeCustomDomain(p *Payload) *string {
	if p.CustomFocusDomain == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*p.CustomFocusDomain)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

// ValidateFull checks a complete onboarding payload and returns the row to
// store. The first failing field is reported.
func ValidateFull(userID string, p *Payload, now time.Time) (*store.Preferences, error) {
	if p == nil {
		return nil, invalid("body must be an object")
	}
	if p.CoachPersonality == nil || !slices.Contains(CoachPersonalities, *p.CoachPersonality) {
		return nil, invalid("coach_personality must be one of: %s", strings.Join(CoachPersonalities, ", "))
	}
	if p.FocusDomains == nil || !allIn(*p.FocusDomains, FocusDomains) {
		return nil, invalid("focus_domains must be an array of allowed focus domain codes")
	}
	if p.DistractionTriggers == nil || !allIn(*p.DistractionTriggers, DistractionTriggers) {
		return nil, invalid("distraction_triggers must be an array of allowed trigger codes")
	}
	if len(*p.DistractionTriggers) > MaxDistractionTriggers {
		return nil, invalid("distraction_triggers must have at most %d items", MaxDistractionTriggers)
	}
	if p.DefaultFocusMinutes == nil || *p.DefaultFocusMinutes < FocusMinutesMin || *p.DefaultFocusMinutes > FocusMinutesMax {
		return nil, invalid("default_focus_minutes must be between %d and %d", FocusMinutesMin, FocusMinutesMax)
	}
	breakMinutes := DefaultBreakMinutes
	if p.DefaultBreakMinutes != nil {
		breakMinutes = *p.DefaultBreakMinutes
	}
	if breakMinutes < BreakMinutesMin || breakMinutes > BreakMinutesMax {
		return nil, invalid("default_break_minutes must be between %d and %d", BreakMinutesMin, BreakMinutesMax)
	}
	if p.PreferredFocusTime == nil || !slices.Contains(PreferredFocusTimes, *p.PreferredFocusTime) {
		return nil, invalid("preferred_focus_time must be one of: %s", strings.Join(PreferredFocusTimes, ", "))
	}
	if p.SuccessGoals == nil || !allIn(*p.SuccessGoals, SuccessGoals) {
		return nil, invalid("success_goals must be an array of allowed goal codes")
	}

	// Unknown session rules are dropped rather than rejected.
	rules := []string{}
	if p.SessionRules != nil && allIn(*p.SessionRules, SessionRules) {
		rules = *p.SessionRules
	}

	var maxPerDay *int
	if p.MaxSessionsPerDay != nil && validSessionsPerDay(*p.MaxSessionsPerDay) {
		maxPerDay = p.MaxSessionsPerDay
	}

	return &store.Preferences{
		UserID:              userID,
		CoachPersonality:    *p.CoachPersonality,
		FocusDomains:        *p.FocusDomains,
		DistractionTriggers: *p.DistractionTriggers,
		DefaultFocusMinutes: *p.DefaultFocusMinutes,
		DefaultBreakMinutes: breakMinutes,
		SessionRules:        rules,
		MaxSessionsPerDay:   maxPerDay,
		PreferredFocusTime:  *p.PreferredFocusTime,
		SuccessGoals:        *p.SuccessGoals,
		CustomFocusDomain:   normalizeCustomDomain(p),
		CompletedAt:         now,
	}, nil
}

func validSessionsPerDay(n int) bool {
	return n >= SessionsPerDayMin && n <= SessionsPerDayMax
}

// ValidatePartial keeps only the fields of p that are individually valid.
// The returned payload may be empty.
func ValidatePartial(p *Payload) Payload {
	var out Payload
	if p == nil {
		return out
	}
	if p.CoachPersonality != nil && slices.Contains(CoachPersonalities, *p.CoachPersonality) {
		out.CoachPersonality = p.CoachPersonality
	}
	if p.FocusDomains != nil && allIn(*p.FocusDomains, FocusDomains) {
		out.FocusDomains = p.FocusDomains
	}
	if p.DistractionTriggers != nil && allIn(*p.DistractionTriggers, DistractionTriggers) &&
		len(*p.DistractionTriggers) <= MaxDistractionTriggers {
		out.DistractionTriggers = p.DistractionTriggers
	}
	if v := p.DefaultFocusMinutes; v != nil && *v >= FocusMinutesMin && *v <= FocusMinutesMax {
		out.DefaultFocusMinutes = v
	}
	if v := p.DefaultBreakMinutes; v != nil && *v >= BreakMinutesMin && *v <= BreakMinutesMax {
		out.DefaultBreakMinutes = v
	}
	if p.SessionRules != nil && allIn(*p.SessionRules, SessionRules) {
		out.SessionRules = p.SessionRules
	}
	if v := p.MaxSessionsPerDay; v != nil && validSessionsPerDay(*v) {
		out.MaxSessionsPerDay = v
	}
	if p.PreferredFocusTime != nil && slices.Contains(PreferredFocusTimes, *p.PreferredFocusTime) {
		out.PreferredFocusTime = p.PreferredFocusTime
	}
	if p.SuccessGoals != nil && allIn(*p.SuccessGoals, SuccessGoals) {
		out.SuccessGoals = p.SuccessGoals
	}
	if p.CustomFocusDomainSet {
		out.CustomFocusDomain = normalizeCustomDomain(p)
		out.CustomFocusDomainSet = true
	}
	return out
}

// Empty reports whether no field is set.
func (p Payload) Empty() bool {
	return p.CoachPersonality == nil && p.FocusDomains == nil && p.DistractionTriggers == nil &&
		p.DefaultFocusMinutes == nil && p.DefaultBreakMinutes == nil && p.SessionRules == nil &&
		p.MaxSessionsPerDay == nil && p.PreferredFocusTime == nil && p.SuccessGoals == nil &&
		!p.CustomFocusDomainSet
}

// Merge applies the set fields of partial onto a copy of existing. The
// completion timestamp is preserved.
func Merge(existing *store.Preferences, partial Payload) *store.Preferences {
	merged := *existing
	if partial.CoachPersonality != nil {
		merged.CoachPersonality = *partial.CoachPersonality
	}
	if partial.FocusDomains != nil {
		merged.FocusDomains = *partial.FocusDomains
	}
	if partial.DistractionTriggers != nil {
		merged.DistractionTriggers = *partial.DistractionTriggers
	}
	if partial.DefaultFocusMinutes != nil {
		merged.DefaultFocusMinutes = *partial.DefaultFocusMinutes
	}
	if partial.DefaultBreakMinutes != nil {
		merged.DefaultBreakMinutes = *partial.DefaultBreakMinutes
	}
	if partial.SessionRules != nil {
		merged.SessionRules = *partial.SessionRules
	}
	if partial.MaxSessionsPerDay != nil {
		merged.MaxSessionsPerDay = partial.MaxSessionsPerDay
	}
	if partial.PreferredFocusTime != nil {
		merged.PreferredFocusTime = *partial.PreferredFocusTime
	}
	if partial.SuccessGoals != nil {
		merged.SuccessGoals = *partial.SuccessGoals
	}
	if partial.CustomFocusDomainSet {
		merged.CustomFocusDomain = partial.CustomFocusDomain
	}
	return &merged
}
