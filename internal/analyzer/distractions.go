package analyzer

import (
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/blackwell-systems/focuscoach/internal/store"
)

// Distraction pattern thresholds.
const (
	// PatternMinDistractions is the smallest sample a pattern note needs.
	PatternMinDistractions = 3

	// PatternMinPercent is the share the top type must reach.
	PatternMinPercent = 50

	// PatternWindowDays is how far back distractions count, and how long a
	// pattern note suppresses another one.
	PatternWindowDays = 7

	// NoteTypeDistractionPattern tags notes raised by DistractionPattern.
	NoteTypeDistractionPattern = "distraction_pattern"
)

var distractionLabels = map[string]string{
	"phone_social":  "phone / social media",
	"notifications": "notifications",
	"overthinking":  "overthinking",
	"boredom":       "boredom",
	"fatigue":       "fatigue",
	"stuck":         "feeling stuck",
	"external":      "external interruption",
	"tab_switching": "tab switching",
}

// DistractionLabel returns the display name for a distraction type code.
// Unknown codes are returned unchanged.
func DistractionLabel(code string) string {
	if l, ok := distractionLabels[code]; ok {
		return l
	}
	return code
}

// DistractionBreakdown counts distractions by type, most frequent first.
// Ties are ordered by type.
func DistractionBreakdown(ds []store.Distraction) []DistractionShare {
	counts := map[string]int{}
	secondsIn := map[string]int{}
	for _, d := range ds {
		counts[d.Type]++
		secondsIn[d.Type] += d.TimeIntoSessionSeconds
	}

	out := make([]DistractionShare, 0, len(counts))
	for typ, n := range counts {
		out = append(out, DistractionShare{
			Type:         typ,
			Count:        n,
			Percentage:   int(math.Round(float64(n) / float64(len(ds)) * 100)),
			AvgMinutesIn: math.Round(float64(secondsIn[typ])/float64(n)/60*10) / 10,
		})
	}
	slices.SortFunc(out, func(a, b DistractionShare) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return strings.Compare(a.Type, b.Type)
	})
	return out
}

// DistractionPattern returns a note when at least PatternMinDistractions
// were logged and the most frequent type makes up PatternMinPercent or
// more of them.
func DistractionPattern(shares []DistractionShare) (Note, bool) {
	total := 0
	for _, s := range shares {
		total += s.Count
	}
	if total < PatternMinDistractions || len(shares) == 0 {
		return Note{}, false
	}

	top := shares[0]
	pct := int(math.Round(float64(top.Count) / float64(total) * 100))
	if pct < PatternMinPercent {
		return Note{}, false
	}

	label := DistractionLabel(top.Type)
	suggestion := fmt.Sprintf("Try reducing %s triggers before your next session.", label)
	if top.Type == "phone_social" {
		suggestion = "Put your phone in another room for upcoming sessions."
	}
	return Note{
		Type:           NoteTypeDistractionPattern,
		Title:          "Distraction pattern detected",
		Body:           fmt.Sprintf("%d%% of your distractions this week were %s-related.", pct, label),
		SuggestionText: suggestion,
	}, true
}
