package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DefaultBodyweightKg is used for athletes who have not set their
// bodyweight yet, so bodyweight exercise volume stays meaningful.
const DefaultBodyweightKg = 75.0

// User represents an athlete account.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Name         string             `bson:"name" json:"name"`
	Email        string             `bson:"email" json:"email"`    // Should be unique
	PasswordHash string             `bson:"passwordHash" json:"-"` // Never expose this via JSON
	BodyweightKg float64            `bson:"bodyweightKg" json:"bodyweightKg"`
	CreatedAt    time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// Bodyweight returns the athlete's bodyweight in kilograms, falling
// back to the default when none was set.
func (u *User) Bodyweight() float64 {
	if u.BodyweightKg > 0 {
		return u.BodyweightKg
	}
	return DefaultBodyweightKg
}
