// Package drift implements the drift scoring used for both rule-quality
// measurements and schema deltas. Both scorers are pure functions; they
// deliberately produce values on different, non-normalized scales.
package drift

import "math"

// Severity bucket names. A score of exactly zero belongs to no bucket:
// a zero-drift event is informational, not "low severity".
const (
	SeverityNone   = ""
	SeverityLow    = "low"    // (0, 2]
	SeverityMedium = "medium" // (2, 5]
	SeverityHigh   = "high"   // (5, ∞)
)

// Score computes the drift score for a rule from its quality signals.
// Higher false-positive rate and lower true-positive rate both raise
// drift linearly with weight 5; alert volume adds a dampened linear
// term. The result is rounded to 2 decimal places and has no upper
// bound; consumers bucket post hoc rather than clamp.
func Score(fpRate, tpRate float64, alertVolume int) float64 {
	return round2(fpRate*5 + (1-tpRate)*5 + float64(alertVolume)/100)
}

// SchemaScore computes the drift score for a schema delta: the count of
// fields that changed. It shares the DriftEvent shape with Score but
// not its scale.
func SchemaScore(added, removed []string) float64 {
	return float64(len(added) + len(removed))
}

// Severity buckets a drift score into low/medium/high ranges.
func Severity(score float64) string {
	switch {
	case score > 5:
		return SeverityHigh
	case score > 2:
		return SeverityMedium
	case score > 0:
		return SeverityLow
	default:
		return SeverityNone
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
