package mongo

import (
	"context"
	"errors"
	"time"
	"trainlog/records-app/internal/domain"
	"trainlog/records-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const recordCollectionName = "exercise_records"

// mongoRecordRepository implements repository.RecordRepository.
type mongoRecordRepository struct {
	collection *mongo.Collection
}

// NewMongoRecordRepository creates a new record repository backed by MongoDB.
func NewMongoRecordRepository(db *mongo.Database) repository.RecordRepository {
	return &mongoRecordRepository{
		collection: db.Collection(recordCollectionName),
	}
}

// Get retrieves the record for one (user, exact exercise name) key.
func (r *mongoRecordRepository) Get(ctx context.Context, userID primitive.ObjectID, exerciseName string) (*domain.ExerciseRecord, error) {
	var record domain.ExerciseRecord
	filter := bson.M{"userId": userID, "exerciseName": exerciseName}

	err := r.collection.FindOne(ctx, filter).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	// Stored state may predate newer fields; default rather than fail.
	if record.DailyMax == nil {
		record.DailyMax = make(map[string]domain.DailyMax)
	}
	return &record, nil
}

// ListByUser retrieves every record of one user, sorted by exercise name.
func (r *mongoRecordRepository) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]domain.ExerciseRecord, error) {
	filter := bson.M{"userId": userID}
	findOptions := options.Find().SetSort(bson.D{{Key: "exerciseName", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, findOptions)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var records []domain.ExerciseRecord
	if err = cursor.All(ctx, &records); err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].DailyMax == nil {
			records[i].DailyMax = make(map[string]domain.DailyMax)
		}
	}
	return records, nil
}

// Upsert writes a record. A record with Version 0 is inserted; an
// existing record is replaced only if the stored version still matches
// the one the caller read, which makes the read-merge-write cycle an
// optimistic-concurrency loop. Both paths bump Version by one.
func (r *mongoRecordRepository) Upsert(ctx context.Context, record *domain.ExerciseRecord) error {
	if record.UserID == primitive.NilObjectID || record.ExerciseName == "" {
		return errors.New("record user ID and exercise name are required")
	}

	now := time.Now().UTC()
	record.UpdatedAt = now

	if record.Version == 0 {
		record.ID = primitive.NewObjectID()
		record.CreatedAt = now
		record.Version = 1
		_, err := r.collection.InsertOne(ctx, record)
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				// Another writer created the record between our read
				// and this insert.
				return repository.ErrConflict
			}
			return err
		}
		return nil
	}

	readVersion := record.Version
	record.Version = readVersion + 1
	filter := bson.M{
		"userId":       record.UserID,
		"exerciseName": record.ExerciseName,
		"version":      readVersion,
	}

	result, err := r.collection.ReplaceOne(ctx, filter, record)
	if err != nil {
		record.Version = readVersion
		return err
	}
	if result.MatchedCount == 0 {
		record.Version = readVersion
		return repository.ErrConflict
	}
	return nil
}

// Delete removes one record entirely, e.g. after the last contributing
// workout was removed.
func (r *mongoRecordRepository) Delete(ctx context.Context, userID primitive.ObjectID, exerciseName string) error {
	filter := bson.M{"userId": userID, "exerciseName": exerciseName}

	result, err := r.collection.DeleteOne(ctx, filter)
	if err != nil {
		return err
	}
	if result.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteAllForUser clears a user's records ahead of a full rebuild.
func (r *mongoRecordRepository) DeleteAllForUser(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"userId": userID})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

// EnsureRecordIndexes creates necessary indexes for the records collection.
func EnsureRecordIndexes(ctx context.Context, collection *mongo.Collection) {
	indexes := []mongo.IndexModel{
		{
			// The aggregate identity key; also what the conditional
			// Upsert races on.
			Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "exerciseName", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	_, err := collection.Indexes().CreateMany(ctx, indexes)
	if err != nil {
		// log.Printf("WARN: Failed to create indexes for collection %s: %v", collection.Name(), err)
	}
}
