package storage

import (
	"context"
	"time"
)

// Default expiry duration for presigned URLs
const DefaultPresignedURLExpiry = 15 * time.Minute

// SnapshotStorage defines the interface for the record snapshot
// archive. RecalculateAll writes a JSON dump of the aggregates it is
// about to replace; operators fetch one through a presigned URL when
// a rebuild needs to be audited or rolled forward by hand.
type SnapshotStorage interface {
	// PutSnapshot stores one serialized snapshot under the given key.
	PutSnapshot(ctx context.Context, objectKey string, data []byte) error

	// GeneratePresignedDownloadURL creates a temporary URL that allows
	// GET requests for a snapshot object.
	GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error)
}
