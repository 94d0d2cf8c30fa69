package service

import (
	"context"
	"errors"
	"fmt"
	"trainlog/records-app/internal/domain"
	"trainlog/records-app/internal/repository"

	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/multierr"
)

// --- Error Definitions ---
var (
	ErrWorkoutNotFound = errors.New("workout not found")
	ErrNotWorkoutOwner = errors.New("workout does not belong to this user")
)

// WorkoutResult pairs the stored workout with whatever records could be
// updated. RecordsErr is non-nil when some aggregates could not be
// reconciled; the workout itself is durable regardless.
type WorkoutResult struct {
	Workout    *domain.Workout
	Records    []domain.ExerciseRecord
	RecordsErr error
}

// WorkoutService owns the workout log and keeps the record aggregates
// in step with it: new workouts go through the incremental merge,
// edits and deletions through the scoped recalculator, because the
// merge can only raise aggregates, never lower them.
type WorkoutService interface {
	Log(ctx context.Context, workout *domain.Workout) (*WorkoutResult, error)
	Update(ctx context.Context, workout *domain.Workout) (*WorkoutResult, error)
	Delete(ctx context.Context, userID, workoutID primitive.ObjectID) error
	GetByID(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error)
}

// workoutService implements the WorkoutService interface.
type workoutService struct {
	workoutRepo repository.WorkoutRepository
	records     RecordsService
}

// NewWorkoutService creates a new instance of workoutService.
func NewWorkoutService(workoutRepo repository.WorkoutRepository, records RecordsService) WorkoutService {
	return &workoutService{
		workoutRepo: workoutRepo,
		records:     records,
	}
}

// Log stores a new workout and merges it into the owner's records.
// The workout write is never rolled back because of a records failure;
// the two are separable in terms of durability, and a failed merge can
// be recovered with a recalculation.
func (s *workoutService) Log(ctx context.Context, workout *domain.Workout) (*WorkoutResult, error) {
	if workout == nil || workout.UserID == primitive.NilObjectID {
		return nil, errors.New("workout with owner is required")
	}

	workoutID, err := s.workoutRepo.Create(ctx, workout)
	if err != nil {
		return nil, err
	}
	workout.ID = workoutID

	records, recordsErr := s.records.MergeWorkout(ctx, workout)
	if recordsErr != nil {
		log.Errorf("workout %s stored but records update incomplete: %v", workoutID.Hex(), recordsErr)
	}
	return &WorkoutResult{Workout: workout, Records: records, RecordsErr: recordsErr}, nil
}

// Update replaces a workout and recalculates every exercise affected
// by the edit: the union of old and new exercise names, so renamed-away
// exercises lose their stale contribution too.
func (s *workoutService) Update(ctx context.Context, workout *domain.Workout) (*WorkoutResult, error) {
	if workout == nil || workout.ID == primitive.NilObjectID {
		return nil, errors.New("workout ID is required for update")
	}

	previous, err := s.ownedWorkout(ctx, workout.UserID, workout.ID)
	if err != nil {
		return nil, err
	}

	if err := s.workoutRepo.Update(ctx, workout); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}

	affected := unionNames(previous.ExerciseNames(), workout.ExerciseNames())
	records, recordsErr := s.recalculateNames(ctx, workout.UserID, affected)
	if recordsErr != nil {
		log.Errorf("workout %s updated but records update incomplete: %v", workout.ID.Hex(), recordsErr)
	}
	return &WorkoutResult{Workout: workout, Records: records, RecordsErr: recordsErr}, nil
}

// Delete removes a workout and recalculates every exercise it
// contained. Records whose last contributing workout this was are
// deleted by the scoped recalculator, not left zeroed.
func (s *workoutService) Delete(ctx context.Context, userID, workoutID primitive.ObjectID) error {
	previous, err := s.ownedWorkout(ctx, userID, workoutID)
	if err != nil {
		return err
	}

	if err := s.workoutRepo.Delete(ctx, workoutID, userID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrWorkoutNotFound
		}
		return err
	}

	if _, recordsErr := s.recalculateNames(ctx, userID, previous.ExerciseNames()); recordsErr != nil {
		log.Errorf("workout %s deleted but records update incomplete: %v", workoutID.Hex(), recordsErr)
	}
	return nil
}

func (s *workoutService) GetByID(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	return s.ownedWorkout(ctx, userID, workoutID)
}

func (s *workoutService) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	return s.workoutRepo.GetByUserID(ctx, userID)
}

// recalculateNames runs the scoped recalculator per affected exercise,
// isolating failures the same way the merge path does.
func (s *workoutService) recalculateNames(ctx context.Context, userID primitive.ObjectID, names []string) ([]domain.ExerciseRecord, error) {
	var (
		records []domain.ExerciseRecord
		errs    error
	)
	for _, name := range names {
		rec, err := s.records.RecalculateOne(ctx, userID, name)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("exercise %q: %w", name, err))
			continue
		}
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records, errs
}

func (s *workoutService) ownedWorkout(ctx context.Context, userID, workoutID primitive.ObjectID) (*domain.Workout, error) {
	workout, err := s.workoutRepo.GetByID(ctx, workoutID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrWorkoutNotFound
		}
		return nil, err
	}
	if workout.UserID != userID {
		return nil, ErrNotWorkoutOwner
	}
	return workout, nil
}

func unionNames(a, b []string) []string {
	seen := make(map[string]bool, len(a)+len(b))
	var union []string
	for _, name := range append(a, b...) {
		if !seen[name] {
			seen[name] = true
			union = append(union, name)
		}
	}
	return union
}
