package domain_test

import (
	"testing"

	"trainlog/records-app/internal/domain"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestWeightUnit_IsMass(t *testing.T) {
	assert.True(t, domain.UnitKilograms.IsMass())
	assert.True(t, domain.UnitPounds.IsMass())
	assert.False(t, domain.UnitKilometers.IsMass())
	assert.False(t, domain.UnitMinutes.IsMass())
}

func TestWorkout_ExerciseNames(t *testing.T) {
	w := domain.Workout{
		Exercises: []domain.LoggedExercise{
			{Name: "Bench Press"},
			{Name: "Squat"},
			{Name: "Bench Press"}, // back-off sets logged separately
			{Name: "bench press"}, // different spelling, different identity
		},
	}
	assert.Equal(t, []string{"Bench Press", "Squat", "bench press"}, w.ExerciseNames())

	empty := domain.Workout{}
	assert.Empty(t, empty.ExerciseNames())
}

func TestExerciseRecord_HasMergedWorkout(t *testing.T) {
	a, b := primitive.NewObjectID(), primitive.NewObjectID()
	rec := domain.ExerciseRecord{MergedWorkoutIDs: []primitive.ObjectID{a}}

	assert.True(t, rec.HasMergedWorkout(a))
	assert.False(t, rec.HasMergedWorkout(b))
}

func TestUser_Bodyweight(t *testing.T) {
	assert.Equal(t, 82.5, (&domain.User{BodyweightKg: 82.5}).Bodyweight())
	assert.Equal(t, domain.DefaultBodyweightKg, (&domain.User{}).Bodyweight())
}
