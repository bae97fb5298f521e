package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"portfolio-analytics/internal/models"
	"portfolio-analytics/internal/repositories"
	"portfolio-analytics/pkg/database"
)

// MongoPortfolioRepository implements PortfolioRepository using MongoDB
type MongoPortfolioRepository struct {
	collection *mongo.Collection
}

// NewPortfolioRepository creates a new MongoDB portfolio repository
func NewPortfolioRepository(db *mongo.Database) repositories.PortfolioRepository {
	return &MongoPortfolioRepository{
		collection: db.Collection(database.PortfoliosCollection),
	}
}

// Create creates a new portfolio
func (r *MongoPortfolioRepository) Create(ctx context.Context, portfolio *models.Portfolio) error {
	now := time.Now().UTC()
	if portfolio.CreatedAt.IsZero() {
		portfolio.CreatedAt = now
	}
	portfolio.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, portfolio); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: portfolio %s already exists", models.ErrInvalidPortfolio, portfolio.ID)
		}
		return fmt.Errorf("failed to create portfolio: %w", err)
	}
	return nil
}

// GetByID retrieves a portfolio header by its ID
func (r *MongoPortfolioRepository) GetByID(ctx context.Context, id string) (*models.Portfolio, error) {
	var portfolio models.Portfolio
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&portfolio)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", models.ErrPortfolioNotFound, id)
		}
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}
	return &portfolio, nil
}

// Update persists the header and totals
func (r *MongoPortfolioRepository) Update(ctx context.Context, portfolio *models.Portfolio) error {
	portfolio.UpdatedAt = time.Now().UTC()

	update := bson.M{
		"$set": bson.M{
			"name":             portfolio.Name,
			"description":      portfolio.Description,
			"currency":         portfolio.Currency,
			"asset_count":      portfolio.AssetCount,
			"total_value":      portfolio.TotalValue,
			"total_invested":   portfolio.TotalInvested,
			"unrealized_value": portfolio.UnrealizedValue,
			"updated_at":       portfolio.UpdatedAt,
		},
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": portfolio.ID}, update)
	if err != nil {
		return fmt.Errorf("failed to update portfolio: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", models.ErrPortfolioNotFound, portfolio.ID)
	}
	return nil
}

// List retrieves portfolios with pagination
func (r *MongoPortfolioRepository) List(ctx context.Context, limit, offset int) ([]*models.Portfolio, error) {
	opts := options.Find().
		SetSkip(int64(offset)).
		SetSort(bson.D{{Key: "updated_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	defer cursor.Close(ctx)

	var portfolios []*models.Portfolio
	if err := cursor.All(ctx, &portfolios); err != nil {
		return nil, fmt.Errorf("failed to decode portfolios: %w", err)
	}
	return portfolios, nil
}

// ListIDs returns every portfolio id
func (r *MongoPortfolioRepository) ListIDs(ctx context.Context) ([]string, error) {
	opts := options.Find().SetProjection(bson.M{"_id": 1})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolio ids: %w", err)
	}
	defer cursor.Close(ctx)

	var ids []string
	for cursor.Next(ctx) {
		var doc struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode portfolio id: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("cursor error: %w", err)
	}
	return ids, nil
}
