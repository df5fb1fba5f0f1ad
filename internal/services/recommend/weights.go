// Package recommend maintains per-user tag preferences and ranks routes
// against them.
package recommend

import "math"

// ReinforceWeight moves w a step toward 1. The increment shrinks as w
// approaches 1, so the result never exceeds 1. Rounded to 4 decimals.
func ReinforceWeight(w, step float64) float64 {
	return round4(math.Min(w+step*(1-w), 1))
}

// DecayWeight shrinks w by rate. There is no floor.
func DecayWeight(w, rate float64) float64 {
	return w * (1 - rate)
}

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
