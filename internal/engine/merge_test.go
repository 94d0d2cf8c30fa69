package engine_test

import (
	"testing"
	"time"

	"trainlog/records-app/internal/domain"
	"trainlog/records-app/internal/engine"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var baseDate = time.Date(2025, 4, 14, 9, 0, 0, 0, time.UTC)

func kgSet(reps int, weight float64) domain.LoggedSet {
	return domain.LoggedSet{Reps: reps, Weight: weight, WeightUnit: domain.UnitKilograms}
}

func weightedMeta() engine.RecordMeta {
	return engine.RecordMeta{Category: "chest", ExerciseType: domain.TypeStrength}
}

func bodyweightMeta() engine.RecordMeta {
	return engine.RecordMeta{IsBodyweight: true, Category: "back", ExerciseType: domain.TypeStrength}
}

func ctxOnDay(day int, bodyweightKg float64) engine.MergeContext {
	return engine.MergeContext{
		WorkoutID:    primitive.NewObjectID(),
		Date:         baseDate.AddDate(0, 0, day),
		BodyweightKg: bodyweightKg,
	}
}

func TestMerge_WeightedBench(t *testing.T) {
	userID := primitive.NewObjectID()
	rec := engine.NewRecord(userID, "Bench Press", weightedMeta())
	mc := ctxOnDay(0, 80)

	rec = engine.Merge(rec, []domain.LoggedSet{
		kgSet(5, 80), kgSet(5, 80), kgSet(5, 80),
	}, mc)

	assert.Equal(t, 1200.0, rec.TotalVolume)
	assert.Equal(t, 80.0, rec.MaxWeight)
	assert.Equal(t, 5, rec.MaxWeightReps)
	assert.Equal(t, mc.WorkoutID, rec.MaxWeightWorkoutID)
	assert.Equal(t, 90.0, rec.Max1RM)
	assert.Equal(t, 5, rec.MaxReps)
	assert.True(t, rec.HasWeightedSets)

	assert.Equal(t, domain.BestSet{
		Weight:    80,
		Reps:      5,
		Volume:    400,
		Date:      mc.Date,
		WorkoutID: mc.WorkoutID,
	}, rec.BestSingleSet)

	require.NotNil(t, rec.BestNearMax)
	assert.Equal(t, 80.0, rec.BestNearMax.Weight)
	assert.Equal(t, 5, rec.BestNearMax.Reps)
	assert.InDelta(t, 1.0, rec.BestNearMax.Score, 1e-9)

	assert.Equal(t, domain.DailyMax{MaxWeight: 80, MaxReps: 5}, rec.DailyMax["2025-04-14"])
	assert.True(t, rec.HasMergedWorkout(mc.WorkoutID))
}

func TestMerge_ZeroRepSetsAreInert(t *testing.T) {
	userID := primitive.NewObjectID()
	empty := engine.NewRecord(userID, "Bench Press", weightedMeta())
	mc := ctxOnDay(0, 80)

	rec := engine.Merge(empty, []domain.LoggedSet{kgSet(0, 100)}, mc)
	assert.Zero(t, rec.TotalVolume)
	assert.Zero(t, rec.MaxWeight)
	assert.Nil(t, rec.BestNearMax)
	assert.Empty(t, rec.MergedWorkoutIDs, "a merge with no valid set must leave no trace")

	// A zero-rep set next to real sets changes nothing either.
	mixed := engine.Merge(empty, []domain.LoggedSet{kgSet(0, 100), kgSet(5, 80)}, mc)
	clean := engine.Merge(empty, []domain.LoggedSet{kgSet(5, 80)}, mc)
	assert.Equal(t, clean, mixed)
}

func TestMerge_MaxWeightSingleRepPriority(t *testing.T) {
	userID := primitive.NewObjectID()
	rec := engine.NewRecord(userID, "Deadlift", weightedMeta())

	merge := func(day int, sets ...domain.LoggedSet) {
		rec = engine.Merge(rec, sets, ctxOnDay(day, 0))
	}

	merge(0, kgSet(5, 80))
	assert.Equal(t, 80.0, rec.MaxWeight)
	assert.Equal(t, 5, rec.MaxWeightReps)

	merge(1, kgSet(1, 100))
	assert.Equal(t, 100.0, rec.MaxWeight)
	assert.Equal(t, 1, rec.MaxWeightReps)

	// A heavier multi-rep set cannot displace a true single-rep max.
	merge(2, kgSet(5, 110))
	assert.Equal(t, 100.0, rec.MaxWeight)
	assert.Equal(t, 1, rec.MaxWeightReps)

	// Neither can a lighter single.
	merge(3, kgSet(1, 95))
	assert.Equal(t, 100.0, rec.MaxWeight)

	merge(4, kgSet(1, 105))
	assert.Equal(t, 105.0, rec.MaxWeight)
	assert.Equal(t, 1, rec.MaxWeightReps)
}

func TestMerge_SingleAtSameWeightUpgradesMax(t *testing.T) {
	userID := primitive.NewObjectID()
	rec := engine.NewRecord(userID, "Overhead Press", weightedMeta())

	rec = engine.Merge(rec, []domain.LoggedSet{kgSet(5, 60)}, ctxOnDay(0, 0))
	require.Equal(t, 5, rec.MaxWeightReps)

	rec = engine.Merge(rec, []domain.LoggedSet{kgSet(1, 60)}, ctxOnDay(1, 0))
	assert.Equal(t, 60.0, rec.MaxWeight)
	assert.Equal(t, 1, rec.MaxWeightReps, "an actual single at the known max becomes the true single-rep max")
}

func TestMerge_BodyweightPullUps(t *testing.T) {
	userID := primitive.NewObjectID()
	rec := engine.NewRecord(userID, "Pull Up", bodyweightMeta())
	mc := ctxOnDay(0, 75)

	rec = engine.Merge(rec, []domain.LoggedSet{
		kgSet(10, 0), kgSet(8, 0), kgSet(6, 0),
	}, mc)

	// 75*10 + 75*8 + 75*6
	assert.Equal(t, 1800.0, rec.TotalVolume)
	assert.Equal(t, 10, rec.MaxReps)
	assert.False(t, rec.HasWeightedSets)

	// No externally weighted set yet, so max_weight falls back to the
	// athlete's bodyweight rather than reading zero.
	assert.Equal(t, 75.0, rec.MaxWeight)
	assert.Zero(t, rec.MaxWeightReps)
	assert.Equal(t, mc.Date, rec.MaxWeightDate)

	assert.Equal(t, 100.0, rec.Max1RM)
	assert.Equal(t, 750.0, rec.BestSingleSet.Volume)

	require.NotNil(t, rec.BestNearMax)
	assert.Equal(t, 10, rec.BestNearMax.Reps)
	assert.InDelta(t, 1.0, rec.BestNearMax.Score, 1e-9)
	assert.Zero(t, rec.BestNearMax.External)
}

func TestMerge_BodyweightGainsExternalWeight(t *testing.T) {
	userID := primitive.NewObjectID()
	rec := engine.NewRecord(userID, "Pull Up", bodyweightMeta())

	rec = engine.Merge(rec, []domain.LoggedSet{kgSet(10, 0)}, ctxOnDay(0, 75))
	require.Equal(t, 75.0, rec.MaxWeight)
	require.Equal(t, 100.0, rec.Max1RM)

	rec = engine.Merge(rec, []domain.LoggedSet{kgSet(5, 20)}, ctxOnDay(7, 75))

	assert.True(t, rec.HasWeightedSets)
	assert.Equal(t, 95.0, rec.MaxWeight, "bodyweight plus the 20kg belt")
	assert.Equal(t, 5, rec.MaxWeightReps)
	assert.Equal(t, 107.0, rec.Max1RM)
	assert.Equal(t, 10, rec.MaxReps, "weighted sets never count toward bodyweight max_reps")
	assert.Equal(t, 1225.0, rec.TotalVolume)

	// The history has weighted sets now, so near-max scoring switches
	// to the 1RM-relative mode and the weighted set wins.
	require.NotNil(t, rec.BestNearMax)
	assert.Equal(t, 95.0, rec.BestNearMax.Weight)
	assert.Equal(t, 20.0, rec.BestNearMax.External)
	assert.Equal(t, 5, rec.BestNearMax.Reps)
	assert.InDelta(t, 1.0, rec.BestNearMax.Score, 1e-9)
}

func TestMerge_UnilateralDoublesWeight(t *testing.T) {
	userID := primitive.NewObjectID()
	empty := engine.NewRecord(userID, "DB Lunge", weightedMeta())
	mc := ctxOnDay(0, 0)

	perSet := engine.Merge(empty, []domain.LoggedSet{
		{Reps: 8, Weight: 20, WeightUnit: domain.UnitKilograms, Unilateral: true},
	}, mc)

	assert.Equal(t, 40.0, perSet.MaxWeight)
	assert.Equal(t, 320.0, perSet.TotalVolume)
	assert.Equal(t, 50.0, perSet.Max1RM)

	// Flagging the whole exercise unilateral is equivalent to flagging
	// each set.
	mcEx := mc
	mcEx.ExerciseUnilateral = true
	perExercise := engine.Merge(empty, []domain.LoggedSet{kgSet(8, 20)}, mcEx)
	assert.Equal(t, perSet, perExercise)
}

func TestMerge_PoundsNormalized(t *testing.T) {
	userID := primitive.NewObjectID()
	rec := engine.NewRecord(userID, "Bench Press", weightedMeta())

	rec = engine.Merge(rec, []domain.LoggedSet{
		{Reps: 5, Weight: 100, WeightUnit: domain.UnitPounds},
	}, ctxOnDay(0, 0))

	assert.InDelta(t, 45.359237, rec.MaxWeight, 1e-9)
	assert.InDelta(t, 226.796185, rec.TotalVolume, 1e-6)
	assert.Equal(t, domain.UnitKilograms, rec.Unit)
}

func TestMerge_DailyMax(t *testing.T) {
	userID := primitive.NewObjectID()
	rec := engine.NewRecord(userID, "Squat", weightedMeta())

	rec = engine.Merge(rec, []domain.LoggedSet{kgSet(5, 80)}, ctxOnDay(0, 0))
	rec = engine.Merge(rec, []domain.LoggedSet{kgSet(3, 85)}, ctxOnDay(0, 0))
	// Same weight, fewer reps: the day keeps its earlier entry.
	rec = engine.Merge(rec, []domain.LoggedSet{kgSet(2, 85)}, ctxOnDay(0, 0))
	rec = engine.Merge(rec, []domain.LoggedSet{kgSet(10, 60)}, ctxOnDay(1, 0))

	require.Len(t, rec.DailyMax, 2)
	assert.Equal(t, domain.DailyMax{MaxWeight: 85, MaxReps: 3}, rec.DailyMax["2025-04-14"])
	assert.Equal(t, domain.DailyMax{MaxWeight: 60, MaxReps: 10}, rec.DailyMax["2025-04-15"])
}

func TestMerge_NearMaxIgnoresSingles(t *testing.T) {
	userID := primitive.NewObjectID()
	rec := engine.NewRecord(userID, "Deadlift", weightedMeta())

	rec = engine.Merge(rec, []domain.LoggedSet{kgSet(1, 100)}, ctxOnDay(0, 0))
	assert.Nil(t, rec.BestNearMax, "a single is the max itself, not a near-max effort")

	rec = engine.Merge(rec, []domain.LoggedSet{kgSet(5, 90)}, ctxOnDay(1, 0))
	require.NotNil(t, rec.BestNearMax)
	assert.Equal(t, 5, rec.BestNearMax.Reps)
}

func TestMerge_NearMaxSurvivesRescoring(t *testing.T) {
	userID := primitive.NewObjectID()
	rec := engine.NewRecord(userID, "Deadlift", weightedMeta())

	rec = engine.Merge(rec, []domain.LoggedSet{kgSet(8, 90)}, ctxOnDay(0, 0))
	require.NotNil(t, rec.BestNearMax)
	require.InDelta(t, 1.0, rec.BestNearMax.Score, 1e-9)

	// A new all-time single raises max_1rm; the stored candidate is
	// re-scored against it but stays the best near-max set.
	rec = engine.Merge(rec, []domain.LoggedSet{kgSet(1, 120)}, ctxOnDay(7, 0))
	assert.Equal(t, 120.0, rec.Max1RM)
	require.NotNil(t, rec.BestNearMax)
	assert.Equal(t, 90.0, rec.BestNearMax.Weight)
	assert.Equal(t, 8, rec.BestNearMax.Reps)
	assert.InDelta(t, 112.0/120.0, rec.BestNearMax.Score, 1e-9)
}

func TestMerge_NearMaxTieGoesToHeavierSet(t *testing.T) {
	userID := primitive.NewObjectID()
	rec := engine.NewRecord(userID, "Squat", weightedMeta())

	// Both sets estimate the same 1RM of 113; the heavier double wins
	// the tie over the lighter set of five.
	rec = engine.Merge(rec, []domain.LoggedSet{
		kgSet(5, 100), kgSet(2, 109.86),
	}, ctxOnDay(0, 0))

	require.NotNil(t, rec.BestNearMax)
	assert.Equal(t, 2, rec.BestNearMax.Reps)
	assert.InDelta(t, 109.86, rec.BestNearMax.Weight, 1e-9)
}

func TestMerge_BestSingleSetDominatesAllVolumes(t *testing.T) {
	userID := primitive.NewObjectID()
	rec := engine.NewRecord(userID, "Row", weightedMeta())

	history := [][]domain.LoggedSet{
		{kgSet(5, 80), kgSet(12, 40), kgSet(0, 200)},
		{kgSet(8, 70), kgSet(1, 100)},
		{kgSet(10, 62.5), kgSet(3, 90)},
	}
	for day, sets := range history {
		rec = engine.Merge(rec, sets, ctxOnDay(day, 0))
	}

	for _, sets := range history {
		for _, s := range sets {
			volume := engine.SetVolume(s.Weight, s.Reps)
			assert.GreaterOrEqual(t, rec.BestSingleSet.Volume, volume)
		}
	}
	assert.Equal(t, 625.0, rec.BestSingleSet.Volume, "10 x 62.5")
}

func TestRebuild_MatchesIncrementalMerge(t *testing.T) {
	userID := primitive.NewObjectID()
	const name = "Bench Press"

	workouts := []domain.Workout{
		{
			ID:     primitive.NewObjectID(),
			UserID: userID,
			Date:   baseDate,
			Exercises: []domain.LoggedExercise{
				{Name: name, Sets: []domain.LoggedSet{kgSet(5, 80), kgSet(5, 80), kgSet(3, 85)}},
				{Name: "Squat", Sets: []domain.LoggedSet{kgSet(5, 100)}},
			},
		},
		{
			ID:     primitive.NewObjectID(),
			UserID: userID,
			Date:   baseDate.AddDate(0, 0, 2),
			Exercises: []domain.LoggedExercise{
				{Name: name, Sets: []domain.LoggedSet{kgSet(1, 100)}},
				{Name: name, Sets: []domain.LoggedSet{kgSet(0, 120)}},
			},
		},
		{
			ID:     primitive.NewObjectID(),
			UserID: userID,
			Date:   baseDate.AddDate(0, 0, 5),
			Exercises: []domain.LoggedExercise{
				{Name: name, Sets: []domain.LoggedSet{kgSet(8, 70)}, Unilateral: false},
				{Name: name, Sets: []domain.LoggedSet{kgSet(10, 60)}},
			},
		},
	}

	meta := weightedMeta()
	incremental := engine.NewRecord(userID, name, meta)
	for _, w := range workouts {
		for _, ex := range w.Exercises {
			if ex.Name != name {
				continue
			}
			incremental = engine.Merge(incremental, ex.Sets, engine.MergeContext{
				WorkoutID:          w.ID,
				Date:               w.Date,
				BodyweightKg:       80,
				ExerciseUnilateral: ex.Unilateral,
			})
		}
	}

	rebuilt := engine.Rebuild(userID, name, workouts, meta, 80)
	require.NotNil(t, rebuilt)
	assert.Equal(t, incremental, *rebuilt)
}

func TestRebuild_NoValidSetsReturnsNil(t *testing.T) {
	userID := primitive.NewObjectID()
	workouts := []domain.Workout{
		{
			ID:     primitive.NewObjectID(),
			UserID: userID,
			Date:   baseDate,
			Exercises: []domain.LoggedExercise{
				{Name: "Squat", Sets: []domain.LoggedSet{kgSet(5, 100)}},
				{Name: "Bench Press", Sets: []domain.LoggedSet{kgSet(0, 80)}},
			},
		},
	}

	assert.Nil(t, engine.Rebuild(userID, "Bench Press", workouts, weightedMeta(), 80))
	assert.Nil(t, engine.Rebuild(userID, "Deadlift", workouts, weightedMeta(), 80))
}

func TestMerge_DoesNotMutateInput(t *testing.T) {
	userID := primitive.NewObjectID()
	rec := engine.NewRecord(userID, "Squat", weightedMeta())
	rec = engine.Merge(rec, []domain.LoggedSet{kgSet(5, 80)}, ctxOnDay(0, 0))

	before := rec.TotalVolume
	beforeIDs := len(rec.MergedWorkoutIDs)
	dailyBefore := rec.DailyMax["2025-04-14"]

	_ = engine.Merge(rec, []domain.LoggedSet{kgSet(5, 200)}, ctxOnDay(0, 0))

	assert.Equal(t, before, rec.TotalVolume)
	assert.Len(t, rec.MergedWorkoutIDs, beforeIDs)
	assert.Equal(t, dailyBefore, rec.DailyMax["2025-04-14"])
}
