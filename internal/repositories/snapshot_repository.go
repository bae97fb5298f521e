package repositories

import (
	"context"
	"time"

	"portfolio-analytics/internal/models"
)

// SnapshotRepository stores point-in-time portfolio valuations
type SnapshotRepository interface {
	// Create creates a new snapshot
	Create(ctx context.Context, snapshot *models.Snapshot) error

	// ListRecent returns up to limit of the newest snapshots of a portfolio,
	// ordered oldest first. A limit of zero returns the full history.
	ListRecent(ctx context.Context, portfolioID string, limit int) ([]models.Snapshot, error)

	// DeleteOlderThan removes snapshots taken before the cutoff
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
