package engine

import (
	"strings"

	"trainlog/records-app/internal/domain"
)

// Bodyweight classification is a closed allow-list of movement
// patterns. Cable, machine, row and face variants superficially match
// the pull keywords but load differently, so they are excluded.
var (
	bodyweightPatterns = []string{
		"pull up", "pull-up", "pullup",
		"chin up", "chin-up", "chinup",
		"muscle up", "muscle-up", "muscleup",
		"dip",
	}
	bodyweightExclusions = []string{
		"cable", "machine", "row", "face",
	}
)

// CanonicalID derives the catalog lookup key from an exact logged
// name. It is a metadata key only, never the aggregate identity.
func CanonicalID(name string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash:
			b.WriteByte('-')
			lastDash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// IsTracked reports whether an exercise participates in record
// aggregation. Only strength exercises do; an exercise missing from
// the catalog is assumed to be a user-invented strength movement.
func IsTracked(entry *domain.CatalogEntry) bool {
	if entry == nil {
		return true
	}
	return entry.Type == domain.TypeStrength
}

// IsBodyweight reports whether the named exercise is calisthenic for
// normalization purposes: the athlete's bodyweight is part of the
// moved mass. Matching is on the exact logged name, case-insensitive.
func IsBodyweight(name string) bool {
	lower := strings.ToLower(name)
	for _, excl := range bodyweightExclusions {
		if strings.Contains(lower, excl) {
			return false
		}
	}
	for _, pattern := range bodyweightPatterns {
		if strings.Contains(lower, pattern) {
			return true
		}
	}
	return false
}
