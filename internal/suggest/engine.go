package suggest

// Engine evaluates its rules in order against the session statistics. The
// first rule that claims the decision wins.
type Engine struct {
	rules []Rule
}

// NewEngine creates an engine with the built-in cascade: shorter first,
// then longer.
func NewEngine() *Engine {
	return &Engine{
		rules: []Rule{
			ShorterSession,
			LongerSession,
		},
	}
}

// Compute recommends the next session duration from sessions ordered most
// recent first. It never fails: every undecidable input yields the default
// with no reason. The break duration is passed through unchanged.
func (e *Engine) Compute(sessions []SessionRecord, defaultFocusMinutes, defaultBreakMinutes int) Result {
	result := Result{
		SuggestedDurationMinutes: defaultFocusMinutes,
		SuggestedBreakMinutes:    defaultBreakMinutes,
		DefaultFocusMinutes:      defaultFocusMinutes,
		SessionCountUsed:         len(sessions),
	}

	if len(sessions) < MinSessions {
		return result
	}

	ctx := &AnalysisContext{
		Stats:               Analyze(sessions),
		DefaultFocusMinutes: defaultFocusMinutes,
	}
	if ctx.Stats.MedianPlanned <= 0 {
		return result
	}

	for _, rule := range e.rules {
		adj, ok := rule(ctx)
		if !ok {
			continue
		}
		result.SuggestedDurationMinutes = adj.Minutes
		if adj.Reason != "" {
			reason := adj.Reason
			result.Reason = &reason
		}
		break
	}

	return result
}

var defaultEngine = NewEngine()

// Compute runs the built-in engine.
func Compute(sessions []SessionRecord, defaultFocusMinutes, defaultBreakMinutes int) Result {
	return defaultEngine.Compute(sessions, defaultFocusMinutes, defaultBreakMinutes)
}
