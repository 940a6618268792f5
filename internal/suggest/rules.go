package suggest

import "fmt"

// ShorterSession fires when the recency-weighted actual duration falls
// well short of the planned median. The duration always moves to the
// weighted actual, but a reason is only given when that is below the
// user's default.
func ShorterSession(ctx *AnalysisContext) (Adjustment, bool) {
	st := ctx.Stats
	if st.WeightedActual >= st.MedianPlanned*ShortfallRatio {
		return Adjustment{}, false
	}

	adj := Adjustment{Minutes: RoundTo5(st.WeightedActual)}
	if adj.Minutes < ctx.DefaultFocusMinutes {
		adj.Reason = fmt.Sprintf(
			"Your last %d sessions lost focus after ~%d minutes on average.",
			st.SessionCount, int(roundHalfUp(st.WeightedActual)),
		)
	}
	return adj, true
}

// LongerSession fires when sessions run at or slightly over plan with few
// abandonments. The step is capped at +5 minutes or +10%, whichever is
// smaller.
func LongerSession(ctx *AnalysisContext) (Adjustment, bool) {
	st := ctx.Stats
	if !st.LowAbandonment {
		return Adjustment{}, false
	}
	if st.MedianActual < st.MedianPlanned || st.MedianActual > st.MedianPlanned*OverrunRatio {
		return Adjustment{}, false
	}

	def := ctx.DefaultFocusMinutes
	capped := min(
		float64(def+UpwardStepMinutes),
		roundHalfUp(float64(def)*(1+UpwardCapPercent)),
	)
	minutes := RoundTo5(capped)
	if minutes <= def {
		return Adjustment{}, false
	}

	return Adjustment{
		Minutes: minutes,
		Reason: fmt.Sprintf(
			"Your last %d sessions completed strongly; try %d minutes.",
			st.SessionCount, minutes,
		),
	}, true
}
