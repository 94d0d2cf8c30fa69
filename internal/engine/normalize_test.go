package engine_test

import (
	"testing"

	"trainlog/records-app/internal/domain"
	"trainlog/records-app/internal/engine"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeWeight(t *testing.T) {
	assert.Equal(t, 80.0, engine.NormalizeWeight(80, domain.UnitKilograms, false))
	assert.InDelta(t, 45.359237, engine.NormalizeWeight(100, domain.UnitPounds, false), 1e-9)

	// Unilateral sets count both limbs.
	assert.Equal(t, 40.0, engine.NormalizeWeight(20, domain.UnitKilograms, true))
	assert.InDelta(t, 45.359237, engine.NormalizeWeight(50, domain.UnitPounds, true), 1e-9)

	// Distance and time units carry no liftable mass.
	assert.Zero(t, engine.NormalizeWeight(5, domain.UnitKilometers, false))
	assert.Zero(t, engine.NormalizeWeight(30, domain.UnitMinutes, false))

	assert.Zero(t, engine.NormalizeWeight(0, domain.UnitKilograms, true))
	assert.Zero(t, engine.NormalizeWeight(-10, domain.UnitKilograms, false))
}

func TestTotalMovedWeight(t *testing.T) {
	assert.Equal(t, 20.0, engine.TotalMovedWeight(20, false, 75))
	assert.Equal(t, 95.0, engine.TotalMovedWeight(20, true, 75))
	assert.Equal(t, 75.0, engine.TotalMovedWeight(0, true, 75))
	assert.Zero(t, engine.TotalMovedWeight(0, false, 75))
}

func TestSetVolume(t *testing.T) {
	assert.Equal(t, 400.0, engine.SetVolume(80, 5))
	assert.Equal(t, 320.0, engine.SetVolume(40, 8))
	assert.Zero(t, engine.SetVolume(80, 0))
	assert.Zero(t, engine.SetVolume(80, -1))
}
