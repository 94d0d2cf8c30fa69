package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DailyMaxDateLayout is the key format of ExerciseRecord.DailyMax.
const DailyMaxDateLayout = "2006-01-02"

// BestSet is the single set with the highest volume ever merged into a
// record. Weight is the normalized total moved mass.
type BestSet struct {
	Weight    float64            `bson:"weight" json:"weight"`
	Reps      int                `bson:"reps" json:"reps"`
	Volume    float64            `bson:"volume" json:"volume"`
	Date      time.Time          `bson:"date" json:"date"`
	WorkoutID primitive.ObjectID `bson:"workoutId,omitempty" json:"workoutId,omitempty"`
}

// NearMaxSet is the set judged closest to maximal effort by a
// normalized score, independent of absolute volume. External is the
// normalized weight before any bodyweight addition; it distinguishes
// pure bodyweight sets when the scoring mode is chosen.
type NearMaxSet struct {
	Weight   float64   `bson:"weight" json:"weight"`
	External float64   `bson:"external" json:"external"`
	Reps     int       `bson:"reps" json:"reps"`
	Score    float64   `bson:"score" json:"score"`
	Date     time.Time `bson:"date" json:"date"`
}

// DailyMax is the best (weight, then reps) seen on one calendar day.
type DailyMax struct {
	MaxWeight float64 `bson:"maxWeight" json:"maxWeight"`
	MaxReps   int     `bson:"maxReps" json:"maxReps"`
}

// ExerciseRecord is the per-(user, exact exercise name) performance
// aggregate. It only ever grows through the merge reducer; lowering any
// field requires a full or scoped recalculation from history.
type ExerciseRecord struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID       primitive.ObjectID `bson:"userId" json:"userId"`
	ExerciseName string             `bson:"exerciseName" json:"exerciseName"`

	// Heaviest actually lifted weight, never an estimate. Once a true
	// single-rep max exists (MaxWeightReps == 1), only single-rep sets
	// may raise it.
	MaxWeight          float64            `bson:"maxWeight" json:"maxWeight"`
	MaxWeightReps      int                `bson:"maxWeightReps" json:"maxWeightReps"`
	MaxWeightDate      time.Time          `bson:"maxWeightDate,omitempty" json:"maxWeightDate,omitempty"`
	MaxWeightWorkoutID primitive.ObjectID `bson:"maxWeightWorkoutId,omitempty" json:"maxWeightWorkoutId,omitempty"`

	Max1RM          float64            `bson:"max1Rm" json:"max1Rm"`
	Max1RMDate      time.Time          `bson:"max1RmDate,omitempty" json:"max1RmDate,omitempty"`
	Max1RMWorkoutID primitive.ObjectID `bson:"max1RmWorkoutId,omitempty" json:"max1RmWorkoutId,omitempty"`

	TotalVolume   float64             `bson:"totalVolume" json:"totalVolume"`
	BestSingleSet BestSet             `bson:"bestSingleSet" json:"bestSingleSet"`
	BestNearMax   *NearMaxSet         `bson:"bestNearMax,omitempty" json:"bestNearMax,omitempty"`
	MaxReps       int                 `bson:"maxReps" json:"maxReps"`
	DailyMax      map[string]DailyMax `bson:"dailyMax" json:"dailyMax"`

	IsBodyweight bool       `bson:"isBodyweight" json:"isBodyweight"`
	Category     string     `bson:"category,omitempty" json:"category,omitempty"`
	ExerciseType string     `bson:"exerciseType" json:"exerciseType"`
	Unit         WeightUnit `bson:"unit" json:"unit"`

	// HasWeightedSets flags that at least one merged set carried
	// external weight; it selects the near-max scoring mode.
	HasWeightedSets bool `bson:"hasWeightedSets" json:"-"`

	// MergedWorkoutIDs lists every workout already folded into this
	// record; re-submitting one of them is a no-op.
	MergedWorkoutIDs []primitive.ObjectID `bson:"mergedWorkoutIds" json:"-"`

	// Version guards the read-merge-write cycle (conditional update).
	Version   int64     `bson:"version" json:"-"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// HasMergedWorkout reports whether the given workout was already folded
// into this record.
func (r *ExerciseRecord) HasMergedWorkout(workoutID primitive.ObjectID) bool {
	for _, id := range r.MergedWorkoutIDs {
		if id == workoutID {
			return true
		}
	}
	return false
}
