package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"portfolio-analytics/internal/models"
	"portfolio-analytics/internal/repositories"
	"portfolio-analytics/pkg/database"
)

// MongoSnapshotRepository implements SnapshotRepository using MongoDB
type MongoSnapshotRepository struct {
	collection *mongo.Collection
}

// NewSnapshotRepository creates a new MongoDB snapshot repository
func NewSnapshotRepository(db *mongo.Database) repositories.SnapshotRepository {
	return &MongoSnapshotRepository{
		collection: db.Collection(database.SnapshotsCollection),
	}
}

// Create creates a new snapshot
func (r *MongoSnapshotRepository) Create(ctx context.Context, snapshot *models.Snapshot) error {
	if snapshot.CreatedAt.IsZero() {
		snapshot.CreatedAt = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, snapshot); err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	return nil
}

// ListRecent returns the newest snapshots, oldest first
func (r *MongoSnapshotRepository) ListRecent(ctx context.Context, portfolioID string, limit int) ([]models.Snapshot, error) {
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{"portfolio_id": portfolioID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshots: %w", err)
	}
	defer cursor.Close(ctx)

	var snapshots []models.Snapshot
	if err := cursor.All(ctx, &snapshots); err != nil {
		return nil, fmt.Errorf("failed to decode snapshots: %w", err)
	}

	reverseSnapshots(snapshots)
	return snapshots, nil
}

// DeleteOlderThan removes snapshots taken before cutoff
func (r *MongoSnapshotRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"timestamp": bson.M{"$lt": cutoff}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete old snapshots: %w", err)
	}
	return result.DeletedCount, nil
}

func reverseSnapshots(s []models.Snapshot) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
