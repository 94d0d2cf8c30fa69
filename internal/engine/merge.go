package engine

import (
	"math"
	"time"

	"trainlog/records-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Near-max candidate rep windows and the weighted-mode score tolerance.
const (
	nearMaxMinReps         = 2
	nearMaxWeightedMaxReps = 10
	nearMaxScoreTolerance  = 1e-3
)

// RecordMeta is the classification metadata a new record is created
// with. It comes from the exercise classifier, not from the catalog id.
type RecordMeta struct {
	IsBodyweight bool
	Category     string
	ExerciseType domain.ExerciseType
}

// MergeContext carries the per-workout inputs the reducer needs.
type MergeContext struct {
	WorkoutID          primitive.ObjectID
	Date               time.Time
	BodyweightKg       float64
	ExerciseUnilateral bool
}

// NewRecord returns the empty aggregate the fold starts from.
func NewRecord(userID primitive.ObjectID, exerciseName string, meta RecordMeta) domain.ExerciseRecord {
	return domain.ExerciseRecord{
		UserID:       userID,
		ExerciseName: exerciseName,
		DailyMax:     make(map[string]domain.DailyMax),
		IsBodyweight: meta.IsBodyweight,
		Category:     meta.Category,
		ExerciseType: string(meta.ExerciseType),
		Unit:         domain.UnitKilograms,
	}
}

// ValidSets returns the sets that count: reps > 0. Zero-rep sets are
// logged but inert everywhere.
func ValidSets(sets []domain.LoggedSet) []domain.LoggedSet {
	var valid []domain.LoggedSet
	for _, s := range sets {
		if s.Reps > 0 {
			valid = append(valid, s)
		}
	}
	return valid
}

// setStat is one valid set with its derived metrics.
type setStat struct {
	external float64 // normalized external weight, kg
	total    float64 // external plus bodyweight where applicable
	volume   float64
	oneRM    float64
	reps     int
	date     time.Time
}

// Merge folds one workout's sets for one exercise into rec and returns
// the updated aggregate. It is pure: rec is copied, all I/O stays with
// the caller. Both the incremental path and the full/scoped rebuilds
// run through this one reducer so the two cannot drift.
//
// Every "best" comparison replaces only on strictly greater, so when
// sets are folded in (workout date asc, set order) the earliest
// qualifying set wins ties, and rebuild agrees with incremental
// merging field for field.
func Merge(rec domain.ExerciseRecord, sets []domain.LoggedSet, mc MergeContext) domain.ExerciseRecord {
	valid := ValidSets(sets)
	if len(valid) == 0 {
		return rec
	}

	rec = cloneRecord(rec)
	day := mc.Date.UTC().Format(domain.DailyMaxDateLayout)

	stats := make([]setStat, 0, len(valid))
	for _, s := range valid {
		external := NormalizeWeight(s.Weight, s.WeightUnit, s.Unilateral || mc.ExerciseUnilateral)
		total := TotalMovedWeight(external, rec.IsBodyweight, mc.BodyweightKg)
		st := setStat{
			external: external,
			total:    total,
			volume:   SetVolume(total, s.Reps),
			oneRM:    EstimateOneRM(total, s.Reps),
			reps:     s.Reps,
			date:     mc.Date,
		}
		stats = append(stats, st)

		rec.TotalVolume += st.volume
		if st.external > 0 {
			rec.HasWeightedSets = true
		}

		if st.volume > rec.BestSingleSet.Volume {
			rec.BestSingleSet = domain.BestSet{
				Weight:    st.total,
				Reps:      st.reps,
				Volume:    st.volume,
				Date:      mc.Date,
				WorkoutID: mc.WorkoutID,
			}
		}

		if st.oneRM > rec.Max1RM {
			rec.Max1RM = st.oneRM
			rec.Max1RMDate = mc.Date
			rec.Max1RMWorkoutID = mc.WorkoutID
		}

		updateMaxWeight(&rec, st, mc)
		updateMaxReps(&rec, st)
		updateDailyMax(&rec, day, st)
	}

	updateBestNearMax(&rec, stats)

	if rec.IsBodyweight && rec.MaxWeight == 0 {
		// Pure bodyweight history so far: downstream consumers must
		// never see a real record with max_weight = 0.
		rec.MaxWeight = mc.BodyweightKg
		rec.MaxWeightDate = mc.Date
	}

	if mc.WorkoutID != primitive.NilObjectID && !rec.HasMergedWorkout(mc.WorkoutID) {
		rec.MergedWorkoutIDs = append(rec.MergedWorkoutIDs, mc.WorkoutID)
	}

	return rec
}

// updateMaxWeight applies the priority rule: once a true single-rep
// max exists, only single-rep sets may raise max_weight. Bodyweight
// exercises take max_weight candidates only from externally weighted
// sets; pure bodyweight work is measured by max_reps instead.
func updateMaxWeight(rec *domain.ExerciseRecord, st setStat, mc MergeContext) {
	if st.total <= 0 {
		return
	}
	if rec.IsBodyweight && st.external <= 0 {
		return
	}
	hasTrueSingle := rec.MaxWeightReps == 1 && rec.MaxWeight > 0
	switch {
	case st.reps == 1:
		// A single at the same weight as a multi-rep max upgrades it
		// to a true single-rep max.
		if st.total > rec.MaxWeight || (st.total == rec.MaxWeight && !hasTrueSingle) {
			setMaxWeight(rec, st, mc)
		}
	default:
		if !hasTrueSingle && st.total > rec.MaxWeight {
			setMaxWeight(rec, st, mc)
		}
	}
}

func setMaxWeight(rec *domain.ExerciseRecord, st setStat, mc MergeContext) {
	rec.MaxWeight = st.total
	rec.MaxWeightReps = st.reps
	rec.MaxWeightDate = mc.Date
	rec.MaxWeightWorkoutID = mc.WorkoutID
}

// updateMaxReps: for bodyweight exercises only unweighted sets count
// (max_reps is the primary bodyweight metric); weighted exercises take
// the highest rep count of any valid set.
func updateMaxReps(rec *domain.ExerciseRecord, st setStat) {
	if rec.IsBodyweight && st.external > 0 {
		return
	}
	if st.reps > rec.MaxReps {
		rec.MaxReps = st.reps
	}
}

// updateDailyMax replaces the day's entry only if the set is strictly
// better by (weight, then reps).
func updateDailyMax(rec *domain.ExerciseRecord, day string, st setStat) {
	cur, ok := rec.DailyMax[day]
	if !ok || st.total > cur.MaxWeight || (st.total == cur.MaxWeight && st.reps > cur.MaxReps) {
		rec.DailyMax[day] = domain.DailyMax{MaxWeight: st.total, MaxReps: st.reps}
	}
}

// updateBestNearMax re-scores the stored candidate alongside the new
// sets, so a new workout can only replace it with something strictly
// better. Two modes:
//
//   - bodyweight-only (no externally weighted set in the whole
//     history): candidates need reps in [2, max_reps], score is
//     (reps/max_reps)^2, ties go to higher absolute reps;
//   - weighted: candidates need reps in [2, 10], score is the set's
//     estimated 1RM relative to max_1rm, ties within 1e-3 go to the
//     higher absolute total weight.
func updateBestNearMax(rec *domain.ExerciseRecord, stats []setStat) {
	candidates := make([]setStat, 0, len(stats)+1)
	if prev := rec.BestNearMax; prev != nil {
		candidates = append(candidates, setStat{
			external: prev.External,
			total:    prev.Weight,
			oneRM:    EstimateOneRM(prev.Weight, prev.Reps),
			reps:     prev.Reps,
			date:     prev.Date,
		})
	}
	candidates = append(candidates, stats...)

	bodyweightOnly := rec.IsBodyweight && !rec.HasWeightedSets

	var best *domain.NearMaxSet
	for _, c := range candidates {
		var score float64
		switch {
		case bodyweightOnly:
			if c.reps < nearMaxMinReps || c.reps > rec.MaxReps || rec.MaxReps == 0 {
				continue
			}
			ratio := float64(c.reps) / float64(rec.MaxReps)
			score = ratio * ratio
			if best != nil && score <= best.Score && !(score == best.Score && c.reps > best.Reps) {
				continue
			}
		default:
			if c.reps < nearMaxMinReps || c.reps > nearMaxWeightedMaxReps || rec.Max1RM <= 0 {
				continue
			}
			score = c.oneRM / rec.Max1RM
			if best != nil {
				diff := score - best.Score
				if diff <= nearMaxScoreTolerance && !(math.Abs(diff) <= nearMaxScoreTolerance && c.total > best.Weight) {
					continue
				}
			}
		}
		best = &domain.NearMaxSet{
			Weight:   c.total,
			External: c.external,
			Reps:     c.reps,
			Score:    score,
			Date:     c.date,
		}
	}

	if best != nil {
		rec.BestNearMax = best
	}
}

// Rebuild folds one exercise's complete history (workouts in ascending
// date order) from an empty record. It returns nil when no valid set
// remains so the caller deletes rather than persists an empty record.
func Rebuild(
	userID primitive.ObjectID,
	exerciseName string,
	workouts []domain.Workout,
	meta RecordMeta,
	bodyweightKg float64,
) *domain.ExerciseRecord {
	rec := NewRecord(userID, exerciseName, meta)
	merged := false
	for _, w := range workouts {
		for _, ex := range w.Exercises {
			if ex.Name != exerciseName {
				continue
			}
			if len(ValidSets(ex.Sets)) == 0 {
				continue
			}
			rec = Merge(rec, ex.Sets, MergeContext{
				WorkoutID:          w.ID,
				Date:               w.Date,
				BodyweightKg:       bodyweightKg,
				ExerciseUnilateral: ex.Unilateral,
			})
			merged = true
		}
	}
	if !merged {
		return nil
	}
	return &rec
}

func cloneRecord(rec domain.ExerciseRecord) domain.ExerciseRecord {
	daily := make(map[string]domain.DailyMax, len(rec.DailyMax))
	for k, v := range rec.DailyMax {
		daily[k] = v
	}
	rec.DailyMax = daily

	if rec.BestNearMax != nil {
		nm := *rec.BestNearMax
		rec.BestNearMax = &nm
	}

	if len(rec.MergedWorkoutIDs) > 0 {
		ids := make([]primitive.ObjectID, len(rec.MergedWorkoutIDs))
		copy(ids, rec.MergedWorkoutIDs)
		rec.MergedWorkoutIDs = ids
	}
	return rec
}
