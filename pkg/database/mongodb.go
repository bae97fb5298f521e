package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"portfolio-analytics/internal/config"
)

// Collection names
const (
	PortfoliosCollection = "portfolios"
	AssetsCollection     = "assets"
	SnapshotsCollection  = "portfolio_snapshots"
)

// MongoDB represents MongoDB database connection
type MongoDB struct {
	client   *mongo.Client
	database *mongo.Database
}

// NewMongoDB creates a new MongoDB connection. Decimals are stored through
// the registry returned by NewRegistry.
func NewMongoDB(cfg config.DatabaseConfig) (*MongoDB, error) {
	clientOpts := options.Client().
		ApplyURI(cfg.URI).
		SetRegistry(NewRegistry())

	// Set connection pool options
	if cfg.MaxPoolSize > 0 {
		clientOpts.SetMaxPoolSize(uint64(cfg.MaxPoolSize))
	}
	if cfg.MinPoolSize > 0 {
		clientOpts.SetMinPoolSize(uint64(cfg.MinPoolSize))
	}
	if cfg.MaxIdleTime > 0 {
		clientOpts.SetMaxConnIdleTime(time.Duration(cfg.MaxIdleTime) * time.Second)
	}

	// Set timeouts
	if cfg.ConnectTimeout > 0 {
		clientOpts.SetConnectTimeout(time.Duration(cfg.ConnectTimeout) * time.Second)
	}
	if cfg.SocketTimeout > 0 {
		clientOpts.SetSocketTimeout(time.Duration(cfg.SocketTimeout) * time.Second)
	}

	if cfg.ReplicaSet != "" {
		clientOpts.SetReplicaSet(cfg.ReplicaSet)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	database := client.Database(cfg.Database)

	if err := createIndexes(ctx, database); err != nil {
		return nil, fmt.Errorf("failed to create indexes: %w", err)
	}

	return &MongoDB{
		client:   client,
		database: database,
	}, nil
}

// GetDatabase returns the database instance
func (m *MongoDB) GetDatabase() *mongo.Database {
	return m.database
}

// Disconnect closes the database connection
func (m *MongoDB) Disconnect() error {
	if m.client == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	return m.client.Disconnect(ctx)
}

// Ping checks the database connection
func (m *MongoDB) Ping(ctx context.Context) error {
	return m.client.Ping(ctx, readpref.Primary())
}

// indexModels lists the indexes per collection
func indexModels() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		PortfoliosCollection: {
			{Keys: bson.D{{Key: "updated_at", Value: -1}}},
		},
		AssetsCollection: {
			{Keys: bson.D{{Key: "portfolio_id", Value: 1}, {Key: "_id", Value: 1}}},
			{Keys: bson.D{{Key: "portfolio_id", Value: 1}, {Key: "asset_type", Value: 1}}},
			{Keys: bson.D{{Key: "sector", Value: 1}}},
		},
		SnapshotsCollection: {
			{Keys: bson.D{{Key: "portfolio_id", Value: 1}, {Key: "timestamp", Value: -1}}},
			{Keys: bson.D{{Key: "portfolio_id", Value: 1}, {Key: "interval", Value: 1}, {Key: "timestamp", Value: -1}}},
		},
	}
}

func createIndexes(ctx context.Context, db *mongo.Database) error {
	for name, models := range indexModels() {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create %s indexes: %w", name, err)
		}
	}
	return nil
}
