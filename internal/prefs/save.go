package prefs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/blackwell-systems/focuscoach/internal/store"
)

// Store is the persistence the save flow needs.
type Store interface {
	GetPreferences(ctx context.Context, userID string) (*store.Preferences, error)
	UpsertPreferences(ctx context.Context, p *store.Preferences) error
}

// UnmarshalJSON decodes each known key on its own. A value of the wrong
// type, a null, or a non-integral number leaves that field unset without
// failing the others. A present custom_focus_domain that is not a string
// clears it.
func (p *Payload) UnmarshalJSON(data []byte) error {
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}

	out := Payload{
		CoachPersonality:    field[string](keys["coach_personality"]),
		FocusDomains:        field[[]string](keys["focus_domains"]),
		DistractionTriggers: field[[]string](keys["distraction_triggers"]),
		DefaultFocusMinutes: wholeNumber(keys["default_focus_minutes"]),
		DefaultBreakMinutes: wholeNumber(keys["default_break_minutes"]),
		SessionRules:        field[[]string](keys["session_rules"]),
		MaxSessionsPerDay:   wholeNumber(keys["max_sessions_per_day"]),
		PreferredFocusTime:  field[string](keys["preferred_focus_time"]),
		SuccessGoals:        field[[]string](keys["success_goals"]),
	}
	if raw, ok := keys["custom_focus_domain"]; ok {
		out.CustomFocusDomainSet = true
		out.CustomFocusDomain = field[string](raw)
	}
	*p = out
	return nil
}

// field decodes raw into a T, or returns nil when raw is missing, null, or
// of another type.
func field[T any](raw json.RawMessage) *T {
	if isNull(raw) {
		return nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return &v
}

// wholeNumber accepts any JSON number with no fractional part, so 30 and
// 30.0 both decode.
func wholeNumber(raw json.RawMessage) *int {
	f := field[float64](raw)
	if f == nil || *f != math.Trunc(*f) || math.Abs(*f) > math.MaxInt32 {
		return nil
	}
	n := int(*f)
	return &n
}

func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null"))
}

// Decode parses a request body into a Payload.
func Decode(body []byte) (*Payload, error) {
	if isNull(body) {
		return nil, invalid("body must be an object")
	}
	var p Payload
	if err := json.Unmarshal(body, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return &p, nil
}

// Save stores p for userID. A payload that passes full validation replaces
// the row, keeping a saved daily cap the payload does not set; otherwise its valid fields are merged into the existing row.
// It returns ErrInvalid when nothing usable was sent and ErrNoExisting when
// a partial update has nothing to merge into.
func Save(ctx context.Context, s Store, userID string, p *Payload, now time.Time) (*store.Preferences, error) {
	full, fullErr := ValidateFull(userID, p, now)
	if fullErr == nil {
		if full.MaxSessionsPerDay == nil {
			existing, err := s.GetPreferences(ctx, userID)
			if err != nil {
				return nil, fmt.Errorf("loading preferences: %w", err)
			}
			if existing != nil {
				full.MaxSessionsPerDay = existing.MaxSessionsPerDay
			}
		}
		if err := s.UpsertPreferences(ctx, full); err != nil {
			return nil, fmt.Errorf("saving preferences: %w", err)
		}
		return full, nil
	}

	partial := ValidatePartial(p)
	if partial.Empty() {
		return nil, fullErr
	}

	existing, err := s.GetPreferences(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("loading preferences: %w", err)
	}
	if existing == nil {
		return nil, ErrNoExisting
	}

	merged := Merge(existing, partial)
	if err := s.UpsertPreferences(ctx, merged); err != nil {
		return nil, fmt.Errorf("updating preferences: %w", err)
	}
	return merged, nil
}
