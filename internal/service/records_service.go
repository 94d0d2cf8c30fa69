package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"
	"trainlog/records-app/internal/domain"
	"trainlog/records-app/internal/engine"
	"trainlog/records-app/internal/repository"
	"trainlog/records-app/internal/storage"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
)

// --- Error Definitions ---
var (
	ErrStoreTimeout       = errors.New("record store call timed out")
	ErrMergeContention    = errors.New("record merge lost the version race too many times")
	ErrHistoryUnavailable = errors.New("failed to load workout history")
)

// RecordsService is the engine's contract to the rest of the
// application. All three operations are idempotent with respect to the
// resulting aggregates and return either updated records or a typed
// failure.
type RecordsService interface {
	// MergeWorkout folds one workout into the owner's records, one
	// exercise at a time. An error on one exercise does not abort the
	// others; the combined error is returned alongside the records
	// that did update.
	MergeWorkout(ctx context.Context, workout *domain.Workout) ([]domain.ExerciseRecord, error)

	// RecalculateAll rebuilds every record of a user from the full
	// workout history. Existing records are snapshotted (best effort)
	// and deleted first.
	RecalculateAll(ctx context.Context, userID primitive.ObjectID) ([]domain.ExerciseRecord, error)

	// RecalculateOne rebuilds the record for one exact exercise name.
	// A nil record with nil error means the record was deleted because
	// no valid set remains.
	RecalculateOne(ctx context.Context, userID primitive.ObjectID, exerciseName string) (*domain.ExerciseRecord, error)

	// ListRecords returns every record of a user, sorted by exercise
	// name.
	ListRecords(ctx context.Context, userID primitive.ObjectID) ([]domain.ExerciseRecord, error)

	// GetRecord returns one record by its exact exercise name, or
	// repository.ErrNotFound.
	GetRecord(ctx context.Context, userID primitive.ObjectID, exerciseName string) (*domain.ExerciseRecord, error)

	// SnapshotDownloadURL presigns a download link for a snapshot
	// previously written by RecalculateAll.
	SnapshotDownloadURL(ctx context.Context, objectKey string) (string, error)
}

// RecordsOptions tunes the orchestration around the pure engine.
type RecordsOptions struct {
	StoreTimeout        time.Duration // per repository call
	MergeRetryLimit     int           // re-merge attempts after a version conflict
	RecalcConcurrency   int           // parallel exercise rebuilds
	DefaultBodyweightKg float64       // athletes with no profile weight
}

// recordsService implements the RecordsService interface.
type recordsService struct {
	recordRepo  repository.RecordRepository
	workoutRepo repository.WorkoutRepository
	catalogRepo repository.CatalogRepository
	userRepo    repository.UserRepository
	snapshots   storage.SnapshotStorage // may be nil, snapshots are optional
	opts        RecordsOptions
}

// NewRecordsService creates a new instance of recordsService.
func NewRecordsService(
	recordRepo repository.RecordRepository,
	workoutRepo repository.WorkoutRepository,
	catalogRepo repository.CatalogRepository,
	userRepo repository.UserRepository,
	snapshots storage.SnapshotStorage,
	opts RecordsOptions,
) RecordsService {
	if opts.StoreTimeout <= 0 {
		opts.StoreTimeout = 5 * time.Second
	}
	if opts.MergeRetryLimit <= 0 {
		opts.MergeRetryLimit = 3
	}
	if opts.RecalcConcurrency <= 0 {
		opts.RecalcConcurrency = 4
	}
	if opts.DefaultBodyweightKg <= 0 {
		opts.DefaultBodyweightKg = domain.DefaultBodyweightKg
	}
	return &recordsService{
		recordRepo:  recordRepo,
		workoutRepo: workoutRepo,
		catalogRepo: catalogRepo,
		userRepo:    userRepo,
		snapshots:   snapshots,
		opts:        opts,
	}
}

// === Incremental merge ===

func (s *recordsService) MergeWorkout(ctx context.Context, workout *domain.Workout) ([]domain.ExerciseRecord, error) {
	if workout == nil || workout.UserID == primitive.NilObjectID {
		return nil, errors.New("workout with owner is required")
	}

	bodyweight := s.athleteBodyweight(ctx, workout.UserID)

	var (
		updated []domain.ExerciseRecord
		errs    error
	)
	for _, group := range groupExercisesByName(workout.Exercises) {
		rec, err := s.mergeExercise(ctx, workout, group, bodyweight)
		if err != nil {
			// One failing exercise must not starve the rest of the
			// workout; collect and continue.
			log.Errorf("merge workout %s: exercise %q: %v", workout.ID.Hex(), group.name, err)
			errs = multierr.Append(errs, fmt.Errorf("exercise %q: %w", group.name, err))
			continue
		}
		if rec != nil {
			updated = append(updated, *rec)
		}
	}
	return updated, errs
}

// exerciseGroup is every occurrence of one exact exercise name within
// a single workout.
type exerciseGroup struct {
	name        string
	occurrences []domain.LoggedExercise
}

func groupExercisesByName(exercises []domain.LoggedExercise) []exerciseGroup {
	index := make(map[string]int, len(exercises))
	var groups []exerciseGroup
	for _, ex := range exercises {
		i, ok := index[ex.Name]
		if !ok {
			i = len(groups)
			index[ex.Name] = i
			groups = append(groups, exerciseGroup{name: ex.Name})
		}
		groups[i].occurrences = append(groups[i].occurrences, ex)
	}
	return groups
}

// mergeExercise runs one read-merge-write cycle for one exercise,
// retrying after optimistic-concurrency conflicts. Nothing is written
// unless the whole merge succeeds, so a timeout or cancellation leaves
// total_volume untouched.
func (s *recordsService) mergeExercise(
	ctx context.Context,
	workout *domain.Workout,
	group exerciseGroup,
	bodyweightKg float64,
) (*domain.ExerciseRecord, error) {
	entry, err := s.lookupCatalog(ctx, group.name)
	if err != nil {
		return nil, err
	}
	if !engine.IsTracked(entry) {
		log.Debugf("exercise %q is not strength-type, skipping records", group.name)
		return nil, nil
	}
	if !groupHasValidSets(group) {
		log.Debugf("exercise %q has no valid sets, skipping records", group.name)
		return nil, nil
	}
	meta := recordMetaFor(group.name, entry)

	for attempt := 0; attempt <= s.opts.MergeRetryLimit; attempt++ {
		existing, err := s.getRecord(ctx, workout.UserID, group.name)
		if err != nil {
			return nil, err
		}

		var base domain.ExerciseRecord
		if existing == nil {
			base = engine.NewRecord(workout.UserID, group.name, meta)
		} else {
			if existing.HasMergedWorkout(workout.ID) {
				// Already folded in; re-merging would double-count volume.
				log.Debugf("workout %s already merged into %q, skipping", workout.ID.Hex(), group.name)
				return existing, nil
			}
			base = *existing
		}

		for _, occ := range group.occurrences {
			base = engine.Merge(base, occ.Sets, engine.MergeContext{
				WorkoutID:          workout.ID,
				Date:               workout.Date,
				BodyweightKg:       bodyweightKg,
				ExerciseUnilateral: occ.Unilateral,
			})
		}

		err = s.upsertRecord(ctx, &base)
		if err == nil {
			return &base, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return nil, err
		}
		log.Warnf("merge conflict on %q (attempt %d), re-reading", group.name, attempt+1)
	}
	return nil, ErrMergeContention
}

// === Full rebuild ===

func (s *recordsService) RecalculateAll(ctx context.Context, userID primitive.ObjectID) ([]domain.ExerciseRecord, error) {
	bodyweight := s.athleteBodyweight(ctx, userID)

	workouts, err := s.listWorkouts(ctx, userID)
	if err != nil {
		return nil, err
	}

	s.snapshotRecords(ctx, userID)

	if _, err := s.deleteAllRecords(ctx, userID); err != nil {
		return nil, err
	}

	names := distinctExerciseNames(workouts)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.RecalcConcurrency)

	var mu sync.Mutex
	var rebuilt []domain.ExerciseRecord
	for _, name := range names {
		g.Go(func() error {
			entry, err := s.lookupCatalog(gctx, name)
			if err != nil {
				return fmt.Errorf("exercise %q: %w", name, err)
			}
			if !engine.IsTracked(entry) {
				return nil
			}
			rec := engine.Rebuild(userID, name, workouts, recordMetaFor(name, entry), bodyweight)
			if rec == nil {
				// No valid set in the whole history: stays deleted.
				return nil
			}
			if err := s.upsertRecord(gctx, rec); err != nil {
				return fmt.Errorf("exercise %q: %w", name, err)
			}
			mu.Lock()
			rebuilt = append(rebuilt, *rec)
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Slice(rebuilt, func(i, j int) bool {
		return rebuilt[i].ExerciseName < rebuilt[j].ExerciseName
	})
	return rebuilt, nil
}

// === Scoped rebuild ===

func (s *recordsService) RecalculateOne(ctx context.Context, userID primitive.ObjectID, exerciseName string) (*domain.ExerciseRecord, error) {
	entry, err := s.lookupCatalog(ctx, exerciseName)
	if err != nil {
		return nil, err
	}
	if !engine.IsTracked(entry) {
		// Non-strength exercises never create, update or delete records here.
		return nil, nil
	}

	workouts, err := s.listWorkouts(ctx, userID)
	if err != nil {
		return nil, err
	}

	rec := engine.Rebuild(userID, exerciseName, workouts, recordMetaFor(exerciseName, entry), s.athleteBodyweight(ctx, userID))
	if rec == nil {
		// Last qualifying workout is gone: delete, never keep a zeroed record.
		if err := s.deleteRecord(ctx, userID, exerciseName); err != nil && !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, nil
	}

	for attempt := 0; attempt <= s.opts.MergeRetryLimit; attempt++ {
		existing, err := s.getRecord(ctx, userID, exerciseName)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			rec.ID = existing.ID
			rec.CreatedAt = existing.CreatedAt
			rec.Version = existing.Version
		} else {
			rec.ID = primitive.NilObjectID
			rec.Version = 0
		}

		err = s.upsertRecord(ctx, rec)
		if err == nil {
			return rec, nil
		}
		if !errors.Is(err, repository.ErrConflict) {
			return nil, err
		}
		log.Warnf("recalculate conflict on %q (attempt %d), re-reading", exerciseName, attempt+1)
	}
	return nil, ErrMergeContention
}

// === Reads ===

func (s *recordsService) ListRecords(ctx context.Context, userID primitive.ObjectID) ([]domain.ExerciseRecord, error) {
	return s.listRecords(ctx, userID)
}

func (s *recordsService) GetRecord(ctx context.Context, userID primitive.ObjectID, exerciseName string) (*domain.ExerciseRecord, error) {
	callCtx, cancel := s.storeContext(ctx)
	defer cancel()
	rec, err := s.recordRepo.Get(callCtx, userID, exerciseName)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		return nil, s.wrapStoreErr(err)
	}
	return rec, nil
}

// === Snapshots ===

func (s *recordsService) snapshotRecords(ctx context.Context, userID primitive.ObjectID) {
	if s.snapshots == nil {
		return
	}
	records, err := s.listRecords(ctx, userID)
	if err != nil || len(records) == 0 {
		if err != nil {
			log.Warnf("pre-recalculation snapshot for %s skipped: %v", userID.Hex(), err)
		}
		return
	}
	data, err := json.Marshal(records)
	if err != nil {
		log.Warnf("pre-recalculation snapshot for %s skipped: %v", userID.Hex(), err)
		return
	}
	key := fmt.Sprintf("snapshots/%s/%s-%s.json",
		userID.Hex(),
		time.Now().UTC().Format("20060102T150405Z"),
		uuid.NewString(),
	)
	if err := s.snapshots.PutSnapshot(ctx, key, data); err != nil {
		// Best effort only: a missing snapshot never blocks the rebuild.
		log.Warnf("pre-recalculation snapshot for %s failed: %v", userID.Hex(), err)
		return
	}
	log.Infof("records snapshot for %s written to %s", userID.Hex(), key)
}

func (s *recordsService) SnapshotDownloadURL(ctx context.Context, objectKey string) (string, error) {
	if s.snapshots == nil {
		return "", errors.New("snapshot storage is not configured")
	}
	return s.snapshots.GeneratePresignedDownloadURL(ctx, objectKey, storage.DefaultPresignedURLExpiry)
}

// === Helpers ===

func recordMetaFor(name string, entry *domain.CatalogEntry) engine.RecordMeta {
	meta := engine.RecordMeta{
		IsBodyweight: engine.IsBodyweight(name),
		ExerciseType: domain.TypeStrength,
	}
	if entry != nil {
		meta.Category = entry.Category
		meta.ExerciseType = entry.Type
	}
	return meta
}

func groupHasValidSets(group exerciseGroup) bool {
	for _, occ := range group.occurrences {
		if len(engine.ValidSets(occ.Sets)) > 0 {
			return true
		}
	}
	return false
}

func distinctExerciseNames(workouts []domain.Workout) []string {
	seen := make(map[string]bool)
	var names []string
	for _, w := range workouts {
		for _, name := range w.ExerciseNames() {
			if !seen[name] {
				seen[name] = true
				names = append(names, name)
			}
		}
	}
	return names
}

// athleteBodyweight loads the user's bodyweight, degrading to the
// configured default so a profile hiccup never blocks record keeping.
func (s *recordsService) athleteBodyweight(ctx context.Context, userID primitive.ObjectID) float64 {
	callCtx, cancel := s.storeContext(ctx)
	defer cancel()
	user, err := s.userRepo.GetByID(callCtx, userID)
	if err != nil {
		log.Warnf("bodyweight lookup for %s failed (%v), using default %.1fkg", userID.Hex(), err, s.opts.DefaultBodyweightKg)
		return s.opts.DefaultBodyweightKg
	}
	if user.BodyweightKg <= 0 {
		return s.opts.DefaultBodyweightKg
	}
	return user.BodyweightKg
}

func (s *recordsService) lookupCatalog(ctx context.Context, name string) (*domain.CatalogEntry, error) {
	callCtx, cancel := s.storeContext(ctx)
	defer cancel()
	entry, err := s.catalogRepo.Lookup(callCtx, engine.CanonicalID(name))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// Unknown names default to user-invented strength exercises.
			return nil, nil
		}
		return nil, s.wrapStoreErr(err)
	}
	return entry, nil
}

func (s *recordsService) getRecord(ctx context.Context, userID primitive.ObjectID, name string) (*domain.ExerciseRecord, error) {
	callCtx, cancel := s.storeContext(ctx)
	defer cancel()
	rec, err := s.recordRepo.Get(callCtx, userID, name)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, nil
		}
		return nil, s.wrapStoreErr(err)
	}
	return rec, nil
}

func (s *recordsService) listRecords(ctx context.Context, userID primitive.ObjectID) ([]domain.ExerciseRecord, error) {
	callCtx, cancel := s.storeContext(ctx)
	defer cancel()
	records, err := s.recordRepo.ListByUser(callCtx, userID)
	if err != nil {
		return nil, s.wrapStoreErr(err)
	}
	return records, nil
}

func (s *recordsService) listWorkouts(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error) {
	callCtx, cancel := s.storeContext(ctx)
	defer cancel()
	workouts, err := s.workoutRepo.GetByUserID(callCtx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHistoryUnavailable, s.wrapStoreErr(err))
	}
	return workouts, nil
}

func (s *recordsService) upsertRecord(ctx context.Context, rec *domain.ExerciseRecord) error {
	callCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.recordRepo.Upsert(callCtx, rec); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return err
		}
		return s.wrapStoreErr(err)
	}
	return nil
}

func (s *recordsService) deleteRecord(ctx context.Context, userID primitive.ObjectID, name string) error {
	callCtx, cancel := s.storeContext(ctx)
	defer cancel()
	if err := s.recordRepo.Delete(callCtx, userID, name); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return err
		}
		return s.wrapStoreErr(err)
	}
	return nil
}

func (s *recordsService) deleteAllRecords(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	callCtx, cancel := s.storeContext(ctx)
	defer cancel()
	n, err := s.recordRepo.DeleteAllForUser(callCtx, userID)
	if err != nil {
		return 0, s.wrapStoreErr(err)
	}
	return n, nil
}

func (s *recordsService) storeContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.StoreTimeout)
}

// wrapStoreErr turns a stalled remote call into a typed failure the
// caller can retry on, instead of an opaque context error.
func (s *recordsService) wrapStoreErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrStoreTimeout, err)
	}
	return err
}
