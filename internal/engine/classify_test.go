package engine_test

import (
	"testing"

	"trainlog/records-app/internal/domain"
	"trainlog/records-app/internal/engine"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalID(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Bench Press", "bench-press"},
		{"  Incline DB Press  ", "incline-db-press"},
		{"Pull-Up", "pull-up"},
		{"90/90 Hip Switch", "90-90-hip-switch"},
		{"Žim (smith)", "im-smith"},
		{"", ""},
		{"---", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, engine.CanonicalID(tt.name), "CanonicalID(%q)", tt.name)
	}
}

func TestIsBodyweight(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"Pull Up", true},
		{"Weighted Pull-Up", true},
		{"pullups", true},
		{"Chin-up", true},
		{"Muscle Up", true},
		{"Ring Dip", true},
		{"Dips", true},
		{"Lat Pulldown", false},
		{"Cable Pull Up", false},
		{"Machine Dip", false},
		{"Face Pull", false},
		{"Barbell Row", false},
		{"Bench Press", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, engine.IsBodyweight(tt.name), "IsBodyweight(%q)", tt.name)
	}
}

func TestIsTracked(t *testing.T) {
	// A catalog miss defaults to a user-invented strength exercise.
	assert.True(t, engine.IsTracked(nil))

	assert.True(t, engine.IsTracked(&domain.CatalogEntry{Type: domain.TypeStrength}))
	assert.False(t, engine.IsTracked(&domain.CatalogEntry{Type: domain.TypeEndurance}))
	assert.False(t, engine.IsTracked(&domain.CatalogEntry{Type: domain.TypeMobility}))
}
