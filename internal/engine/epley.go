package engine

import "math"

// Epley formula constants. The denominator 1.0278 - 0.0278*reps turns
// degenerate past ~36 reps, so reps are capped before applying it.
const (
	epleyBase   = 1.0278
	epleyPerRep = 0.0278
	epleyRepCap = 30
)

// EstimateOneRM estimates the maximum weight liftable for a single
// repetition from a multi-rep set, in the same unit as weight.
// A single-rep set is its own 1RM; zero weight or zero reps estimate
// to zero. The result is rounded to the nearest whole unit.
func EstimateOneRM(weight float64, reps int) float64 {
	if weight <= 0 || reps <= 0 {
		return 0
	}
	if reps == 1 {
		return weight
	}
	if reps > epleyRepCap {
		reps = epleyRepCap
	}
	return math.Round(weight / (epleyBase - epleyPerRep*float64(reps)))
}
