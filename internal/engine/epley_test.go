package engine_test

import (
	"math"
	"testing"

	"trainlog/records-app/internal/engine"
)

func TestEstimateOneRM(t *testing.T) {
	tests := []struct {
		name   string
		weight float64
		reps   int
		want   float64
	}{
		{"100kg x 10", 100, 10, 133}, // 100 / (1.0278 - 0.278) ≈ 133.4
		{"100kg x 5", 100, 5, 113},   // 100 / 0.8888 ≈ 112.5
		{"80kg x 5", 80, 5, 90},      // 80 / 0.8888 ≈ 90.0
		{"60kg x 3", 60, 3, 64},      // 60 / 0.9444 ≈ 63.5
		{"1 rep is its own max", 100, 1, 100},
		{"zero weight", 0, 5, 0},
		{"zero reps", 100, 0, 0},
		{"negative weight", -20, 5, 0},
		{"negative reps", 100, -3, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := engine.EstimateOneRM(tt.weight, tt.reps)
			if math.Abs(got-tt.want) > 0.01 {
				t.Errorf("EstimateOneRM(%v, %v) = %v, want %v", tt.weight, tt.reps, got, tt.want)
			}
		})
	}
}

func TestEstimateOneRM_RepCap(t *testing.T) {
	capped := engine.EstimateOneRM(100, 30)
	if capped <= 0 {
		t.Fatalf("EstimateOneRM(100, 30) = %v, want positive", capped)
	}
	if got := engine.EstimateOneRM(100, 50); got != capped {
		t.Errorf("EstimateOneRM(100, 50) = %v, want the 30-rep estimate %v", got, capped)
	}
}

func TestEstimateOneRM_Monotonic(t *testing.T) {
	// More reps at the same weight never estimate a lower max.
	prev := 0.0
	for reps := 1; reps <= 30; reps++ {
		got := engine.EstimateOneRM(100, reps)
		if got < prev {
			t.Fatalf("EstimateOneRM(100, %d) = %v, below the %d-rep estimate %v", reps, got, reps-1, prev)
		}
		prev = got
	}
}
