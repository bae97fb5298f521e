package repositories

import (
	"context"

	"portfolio-analytics/internal/models"
)

// PortfolioRepository stores portfolio headers. Assets live in their own
// collection and are loaded through AssetRepository.
type PortfolioRepository interface {
	// Create creates a new portfolio
	Create(ctx context.Context, portfolio *models.Portfolio) error

	// GetByID retrieves a portfolio by its ID without its assets.
	// Returns models.ErrPortfolioNotFound when it does not exist.
	GetByID(ctx context.Context, id string) (*models.Portfolio, error)

	// Update persists the portfolio header and derived totals
	Update(ctx context.Context, portfolio *models.Portfolio) error

	// List retrieves portfolios with pagination, newest update first
	List(ctx context.Context, limit, offset int) ([]*models.Portfolio, error)

	// ListIDs returns every portfolio id
	ListIDs(ctx context.Context) ([]string, error)
}

// AssetRepository stores assets keyed by id and grouped by portfolio
type AssetRepository interface {
	// Create inserts an asset. Returns models.ErrDuplicateAsset when the id exists.
	Create(ctx context.Context, asset *models.Asset) error

	// GetByID returns models.ErrAssetNotFound when the asset does not exist
	GetByID(ctx context.Context, id string) (*models.Asset, error)

	// ListByPortfolio returns a portfolio's assets ordered by id
	ListByPortfolio(ctx context.Context, portfolioID string) ([]models.Asset, error)

	// Update replaces an existing asset
	Update(ctx context.Context, asset *models.Asset) error

	// Delete removes an asset by id
	Delete(ctx context.Context, id string) error
}
