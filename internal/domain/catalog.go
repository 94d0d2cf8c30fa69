package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ExerciseType is the catalog-level training modality of an exercise.
// Only strength exercises earn performance records.
type ExerciseType string

const (
	TypeStrength  ExerciseType = "strength"
	TypeEndurance ExerciseType = "endurance"
	TypeMobility  ExerciseType = "mobility"
)

// CatalogEntry is the metadata record for a canonical exercise id.
// The catalog never defines aggregate identity; it only supplies
// category and type for a resolved name.
type CatalogEntry struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	CatalogID string             `bson:"catalogId" json:"catalogId"`
	Name      string             `bson:"name" json:"name"`
	Category  string             `bson:"category,omitempty" json:"category,omitempty"`
	Type      ExerciseType       `bson:"type" json:"type"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
