package suggest

import (
	"math"
	"sort"
)

// Median returns the standard median of values, averaging the middle two
// for even-length input. It returns 0 for an empty slice and does not
// modify values.
func Median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := sortedCopy(values)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// TrimmedMean drops floor(len*ratio) values from each end of the sorted
// input and averages the rest. When trimming would leave nothing it falls
// back to the median.
func TrimmedMean(values []float64, ratio float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := sortedCopy(values)
	drop := int(math.Floor(float64(len(sorted)) * ratio))
	if drop < 0 {
		drop = 0
	}
	start, end := drop, len(sorted)-drop
	if start >= end {
		return Median(sorted)
	}
	var sum float64
	for _, v := range sorted[start:end] {
		sum += v
	}
	return sum / float64(end-start)
}

// RecencyWeight returns the weight for the value at position i, where 0 is
// the most recent: 3, 2, 1, then 1 for every older position.
func RecencyWeight(i int) float64 {
	if i < 3 {
		return float64(3 - i)
	}
	return 1
}

// WeightedAverage averages values (most recent first) using RecencyWeight.
func WeightedAverage(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sumW, sumV float64
	for i, v := range values {
		w := RecencyWeight(i)
		sumW += w
		sumV += v * w
	}
	return sumV / sumW
}

// RoundTo5 rounds minutes to the nearest multiple of 5 (halves round up)
// and clamps the result into [MinDurationMinutes, MaxDurationMinutes].
func RoundTo5(minutes float64) int {
	rounded := int(roundHalfUp(minutes/5)) * 5
	if rounded < MinDurationMinutes {
		return MinDurationMinutes
	}
	if rounded > MaxDurationMinutes {
		return MaxDurationMinutes
	}
	return rounded
}

// Analyze computes the decision statistics for sessions ordered newest
// first. It is safe to call with any number of sessions.
func Analyze(sessions []SessionRecord) Stats {
	stats := Stats{SessionCount: len(sessions)}
	if len(sessions) == 0 {
		return stats
	}

	actual := make([]float64, len(sessions))
	planned := make([]float64, len(sessions))
	abandoned := 0
	for i, s := range sessions {
		actual[i] = float64(s.ActualDurationSeconds) / 60
		planned[i] = float64(s.PlannedDurationSeconds) / 60
		if s.Abandoned() {
			abandoned++
		}
	}

	stats.MedianActual = Median(actual)
	stats.MedianPlanned = Median(planned)
	stats.WeightedActual = WeightedAverage(actual)
	stats.TrimmedMeanActual = TrimmedMean(actual, 0.2)
	stats.AbandonmentRate = float64(abandoned) / float64(len(sessions))
	stats.LowAbandonment = stats.AbandonmentRate <= AbandonmentRateThreshold
	return stats
}

func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}

// roundHalfUp rounds to the nearest integer with .5 going toward +Inf.
func roundHalfUp(x float64) float64 {
	return math.Floor(x + 0.5)
}
