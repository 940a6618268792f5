// Package suggest provides the adaptive session-duration recommendation engine.
package suggest

// Session statuses the engine understands. Other statuses are filtered out
// before history reaches the engine.
const (
	StatusCompleted = "completed"
	StatusAbandoned = "abandoned"
)

// Tuning constants for the recommendation cascade.
const (
	// MinSessions is the smallest sample the engine will act on.
	MinSessions = 3

	// RecentSessionsLimit is how many recent sessions callers should supply.
	RecentSessionsLimit = 7

	// AbandonmentRateThreshold is the highest abandonment rate still
	// considered "low".
	AbandonmentRateThreshold = 0.25

	// UpwardCapPercent caps a single upward step relative to the default.
	UpwardCapPercent = 0.10

	// UpwardStepMinutes is the nominal upward step.
	UpwardStepMinutes = 5

	// ShortfallRatio is the fraction of planned time below which the
	// weighted actual duration triggers a downward suggestion.
	ShortfallRatio = 0.95

	// OverrunRatio bounds the "at or slightly over plan" band.
	OverrunRatio = 1.05

	// MinDurationMinutes and MaxDurationMinutes bound every computed suggestion.
	MinDurationMinutes = 5
	MaxDurationMinutes = 120
)

// SessionRecord is one finished focus session as seen by the engine.
type SessionRecord struct {
	PlannedDurationSeconds int    `json:"planned_duration_seconds"`
	ActualDurationSeconds  int    `json:"actual_duration_seconds"`
	Status                 string `json:"status"`
}

// Abandoned reports whether the session ended early.
func (s SessionRecord) Abandoned() bool {
	return s.Status == StatusAbandoned
}

// Result is the recommendation returned for a single request.
type Result struct {
	SuggestedDurationMinutes int `json:"suggestedDurationMinutes"`
	SuggestedBreakMinutes    int `json:"suggestedBreakMinutes"`

	// Reason is nil unless the engine recommends a change from the default.
	Reason *string `json:"reason"`

	DefaultFocusMinutes int `json:"defaultFocusMinutes"`
	SessionCountUsed    int `json:"sessionCountUsed"`
}

// HasSuggestion reports whether the result carries a recommendation the
// user should be offered.
func (r Result) HasSuggestion() bool {
	return r.Reason != nil
}

// Stats holds the summary statistics a decision is based on. All values
// are in minutes except AbandonmentRate.
type Stats struct {
	SessionCount      int     `json:"session_count"`
	MedianActual      float64 `json:"median_actual_minutes"`
	MedianPlanned     float64 `json:"median_planned_minutes"`
	WeightedActual    float64 `json:"weighted_actual_minutes"`
	TrimmedMeanActual float64 `json:"trimmed_mean_actual_minutes"`
	AbandonmentRate   float64 `json:"abandonment_rate"`
	LowAbandonment    bool    `json:"low_abandonment"`
}

// AnalysisContext is the input every rule sees.
type AnalysisContext struct {
	Stats               Stats
	DefaultFocusMinutes int
}

// Adjustment is a rule's verdict. An empty Reason means the duration is
// changed silently.
type Adjustment struct {
	Minutes int
	Reason  string
}

// Rule examines the analysis context. It returns ok=true when it claims the
// decision, which stops the cascade.
type Rule func(ctx *AnalysisContext) (adj Adjustment, ok bool)
