package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// WeightUnit is the unit a logged set's weight was entered in.
// Mass units participate in record aggregation; distance/time units
// belong to endurance logging and are inert here.
type WeightUnit string

const (
	UnitKilograms  WeightUnit = "kg"
	UnitPounds     WeightUnit = "lb"
	UnitKilometers WeightUnit = "km"
	UnitMinutes    WeightUnit = "min"
)

// IsMass reports whether the unit denotes a liftable mass.
func (u WeightUnit) IsMass() bool {
	return u == UnitKilograms || u == UnitPounds
}

// WorkoutSource identifies the channel a workout was logged through.
type WorkoutSource string

const (
	SourceManual     WorkoutSource = "manual"
	SourceVoice      WorkoutSource = "voice"
	SourceStructured WorkoutSource = "structured"
)

// LoggedSet is one performed set. Immutable once logged.
// Weight may be zero for pure bodyweight sets; a set with zero reps is
// logged but contributes nothing to any aggregate.
type LoggedSet struct {
	Reps       int        `bson:"reps" json:"reps"`
	Weight     float64    `bson:"weight" json:"weight"`
	WeightUnit WeightUnit `bson:"weightUnit" json:"weightUnit"`
	Unilateral bool       `bson:"unilateral,omitempty" json:"unilateral,omitempty"`
}

// LoggedExercise is one exercise within a workout. The exact display
// name is the identity key for aggregation: two spellings of "the
// same" movement are distinct records on purpose. Catalog
// canonicalization is used for metadata only.
type LoggedExercise struct {
	Name       string      `bson:"name" json:"name"`
	Sets       []LoggedSet `bson:"sets" json:"sets"`
	Unilateral bool        `bson:"unilateral,omitempty" json:"unilateral,omitempty"`
}

// Workout is a single logged session and the unit of incremental merge.
type Workout struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Date      time.Time          `bson:"date" json:"date"`
	Exercises []LoggedExercise   `bson:"exercises" json:"exercises"`
	Source    WorkoutSource      `bson:"source,omitempty" json:"source,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}

// ExerciseNames returns the distinct exact exercise names in this
// workout, in first-appearance order.
func (w *Workout) ExerciseNames() []string {
	seen := make(map[string]bool, len(w.Exercises))
	var names []string
	for _, ex := range w.Exercises {
		if !seen[ex.Name] {
			seen[ex.Name] = true
			names = append(names, ex.Name)
		}
	}
	return names
}
