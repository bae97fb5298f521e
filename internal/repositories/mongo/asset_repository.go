package mongo

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"portfolio-analytics/internal/models"
	"portfolio-analytics/internal/repositories"
	"portfolio-analytics/pkg/database"
)

// assetDocument is the stored form of an asset. The variant block is kept
// under a field named after its type; at most one is set.
type assetDocument struct {
	models.Asset   `bson:",inline"`
	Traditional    *models.TraditionalMetrics    `bson:"traditional,omitempty"`
	RealEstate     *models.RealEstateMetrics     `bson:"real_estate,omitempty"`
	Infrastructure *models.InfrastructureMetrics `bson:"infrastructure,omitempty"`
}

func toAssetDocument(a *models.Asset) assetDocument {
	doc := assetDocument{Asset: *a}
	switch m := a.Specific.(type) {
	case *models.TraditionalMetrics:
		doc.Traditional = m
	case *models.RealEstateMetrics:
		doc.RealEstate = m
	case *models.InfrastructureMetrics:
		doc.Infrastructure = m
	}
	return doc
}

func (d assetDocument) toAsset() models.Asset {
	a := d.Asset
	switch a.Type {
	case models.AssetTypeTraditional:
		if d.Traditional != nil {
			a.Specific = d.Traditional
		}
	case models.AssetTypeRealEstate:
		if d.RealEstate != nil {
			a.Specific = d.RealEstate
		}
	case models.AssetTypeInfrastructure:
		if d.Infrastructure != nil {
			a.Specific = d.Infrastructure
		}
	}
	return a
}

// MongoAssetRepository implements AssetRepository using MongoDB
type MongoAssetRepository struct {
	collection *mongo.Collection
}

// NewAssetRepository creates a new MongoDB asset repository
func NewAssetRepository(db *mongo.Database) repositories.AssetRepository {
	return &MongoAssetRepository{
		collection: db.Collection(database.AssetsCollection),
	}
}

// Create inserts an asset
func (r *MongoAssetRepository) Create(ctx context.Context, asset *models.Asset) error {
	if _, err := r.collection.InsertOne(ctx, toAssetDocument(asset)); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", models.ErrDuplicateAsset, asset.ID)
		}
		return fmt.Errorf("failed to create asset: %w", err)
	}
	return nil
}

// GetByID retrieves an asset by id
func (r *MongoAssetRepository) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	var doc assetDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", models.ErrAssetNotFound, id)
		}
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	asset := doc.toAsset()
	return &asset, nil
}

// ListByPortfolio returns the portfolio's assets ordered by id
func (r *MongoAssetRepository) ListByPortfolio(ctx context.Context, portfolioID string) ([]models.Asset, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"portfolio_id": portfolioID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list assets: %w", err)
	}
	defer cursor.Close(ctx)

	var docs []assetDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("failed to decode assets: %w", err)
	}

	assets := make([]models.Asset, len(docs))
	for i := range docs {
		assets[i] = docs[i].toAsset()
	}
	return assets, nil
}

// Update replaces an existing asset
func (r *MongoAssetRepository) Update(ctx context.Context, asset *models.Asset) error {
	result, err := r.collection.ReplaceOne(ctx, bson.M{"_id": asset.ID}, toAssetDocument(asset))
	if err != nil {
		return fmt.Errorf("failed to update asset: %w", err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("%w: %s", models.ErrAssetNotFound, asset.ID)
	}
	return nil
}

// Delete removes an asset by id
func (r *MongoAssetRepository) Delete(ctx context.Context, id string) error {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("%w: %s", models.ErrAssetNotFound, id)
	}
	return nil
}
