package engine

import (
	"trainlog/records-app/internal/domain"
)

// Exact avoirdupois pound.
const poundsToKilograms = 0.45359237

// NormalizeWeight converts a logged weight to kilograms. Unilateral
// sets count both limbs' work, so the weight is doubled. Non-mass
// units (distance, time) normalize to zero; a missing or zero weight
// is valid for pure bodyweight sets.
func NormalizeWeight(weight float64, unit domain.WeightUnit, unilateral bool) float64 {
	if weight <= 0 || !unit.IsMass() {
		return 0
	}
	w := weight
	if unit == domain.UnitPounds {
		w *= poundsToKilograms
	}
	if unilateral {
		w *= 2
	}
	return w
}

// TotalMovedWeight is the full mass moved by one set: the normalized
// external weight, plus the athlete's bodyweight for
// bodyweight-classified exercises.
func TotalMovedWeight(external float64, isBodyweight bool, bodyweightKg float64) float64 {
	if isBodyweight {
		return external + bodyweightKg
	}
	return external
}

// SetVolume is the work done by one set. Sets with zero reps are inert
// and contribute zero volume.
func SetVolume(totalMovedWeight float64, reps int) float64 {
	if reps <= 0 {
		return 0
	}
	return totalMovedWeight * float64(reps)
}
