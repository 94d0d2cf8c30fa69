package repository

import (
	"context"
	"trainlog/records-app/internal/domain"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Error constants for the repository layer.
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("version conflict")
	ErrUpdateFailed = RepositoryError("update failed")
	ErrDeleteFailed = RepositoryError("delete failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (primitive.ObjectID, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.User, error)
	UpdateBodyweight(ctx context.Context, id primitive.ObjectID, bodyweightKg float64) error
}

// WorkoutRepository defines the interface for interacting with the
// logged workout history.
type WorkoutRepository interface {
	Create(ctx context.Context, workout *domain.Workout) (primitive.ObjectID, error)
	GetByID(ctx context.Context, id primitive.ObjectID) (*domain.Workout, error)
	// GetByUserID returns the user's complete history ordered by date
	// ascending (storage order within one date), the order the
	// recalculators fold in.
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]domain.Workout, error)
	Update(ctx context.Context, workout *domain.Workout) error
	Delete(ctx context.Context, id primitive.ObjectID, userID primitive.ObjectID) error
}

// RecordRepository is the engine's record store. Keys are
// (userId, exact exercise name).
type RecordRepository interface {
	Get(ctx context.Context, userID primitive.ObjectID, exerciseName string) (*domain.ExerciseRecord, error)
	ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.ExerciseRecord, error)
	// Upsert inserts a new record (Version 0) or conditionally updates
	// an existing one. It returns ErrConflict when another writer won
	// the race, so the caller can re-read and re-merge.
	Upsert(ctx context.Context, record *domain.ExerciseRecord) error
	Delete(ctx context.Context, userID primitive.ObjectID, exerciseName string) error
	DeleteAllForUser(ctx context.Context, userID primitive.ObjectID) (int64, error)
}

// CatalogRepository resolves canonical catalog ids to exercise
// metadata. A lookup miss is a normal condition, not a failure.
type CatalogRepository interface {
	Lookup(ctx context.Context, catalogID string) (*domain.CatalogEntry, error)
}
