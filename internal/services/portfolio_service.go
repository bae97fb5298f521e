package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"portfolio-analytics/internal/analytics"
	"portfolio-analytics/internal/messaging"
	"portfolio-analytics/internal/models"
	"portfolio-analytics/internal/monitoring"
	"portfolio-analytics/internal/repositories"
)

// AnalyticsEngine computes portfolio analytics
type AnalyticsEngine interface {
	Analyze(ctx context.Context, in analytics.Input) (*models.PortfolioAnalytics, error)
}

// EventPublisher announces asset changes
type EventPublisher interface {
	PublishAssetEvent(ctx context.Context, event messaging.AssetEvent) error
}

// CreatePortfolioRequest is the body of a portfolio creation
type CreatePortfolioRequest struct {
	Name        string `json:"name" binding:"required,max=200"`
	Description string `json:"description" binding:"max=2000"`
	Currency    string `json:"currency" binding:"omitempty,len=3"`
}

// Config tunes the service
type Config struct {
	// CalculationTimeout bounds one analytics run. Zero means no bound.
	CalculationTimeout time.Duration
	// HistoryLimit is how many recent snapshots feed the engine
	HistoryLimit int
}

type PortfolioService struct {
	portfolioRepo repositories.PortfolioRepository
	assetRepo     repositories.AssetRepository
	snapshotRepo  repositories.SnapshotRepository
	engine        AnalyticsEngine
	cache         analytics.ResultCache
	publisher     EventPublisher
	metrics       monitoring.MetricsService
	logger        *logrus.Logger
	config        Config
	now           func() time.Time
	newID         func() string
}

func NewPortfolioService(
	portfolioRepo repositories.PortfolioRepository,
	assetRepo repositories.AssetRepository,
	snapshotRepo repositories.SnapshotRepository,
	engine AnalyticsEngine,
	cache analytics.ResultCache,
	publisher EventPublisher,
	metrics monitoring.MetricsService,
	logger *logrus.Logger,
	config Config,
) *PortfolioService {
	if metrics == nil {
		metrics = monitoring.NewNoopMetrics()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &PortfolioService{
		portfolioRepo: portfolioRepo,
		assetRepo:     assetRepo,
		snapshotRepo:  snapshotRepo,
		engine:        engine,
		cache:         cache,
		publisher:     publisher,
		metrics:       metrics,
		logger:        logger,
		config:        config,
		now:           func() time.Time { return time.Now().UTC() },
		newID:         uuid.NewString,
	}
}

// CreatePortfolio creates an empty portfolio
func (ps *PortfolioService) CreatePortfolio(ctx context.Context, req CreatePortfolioRequest) (*models.Portfolio, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", models.ErrInvalidPortfolio)
	}
	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "USD"
	}

	now := ps.now()
	portfolio := &models.Portfolio{
		ID:          ps.newID(),
		Name:        name,
		Description: req.Description,
		Currency:    currency,
		Assets:      []models.Asset{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	portfolio.Recalculate()

	if err := ps.portfolioRepo.Create(ctx, portfolio); err != nil {
		return nil, fmt.Errorf("failed to create portfolio: %w", err)
	}

	ps.logger.WithField("portfolio_id", portfolio.ID).Info("Portfolio created")
	return portfolio, nil
}

// GetPortfolio loads a portfolio with its assets and recomputed totals
func (ps *PortfolioService) GetPortfolio(ctx context.Context, id string) (*models.Portfolio, error) {
	portfolio, err := ps.portfolioRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get portfolio: %w", err)
	}

	assets, err := ps.assetRepo.ListByPortfolio(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load assets: %w", err)
	}
	if assets == nil {
		assets = []models.Asset{}
	}
	portfolio.Assets = assets
	portfolio.Recalculate()
	return portfolio, nil
}

// Page size bounds for ListPortfolios
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// ListPortfolios returns portfolio headers, most recently updated first
func (ps *PortfolioService) ListPortfolios(ctx context.Context, limit, offset int) ([]*models.Portfolio, error) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	portfolios, err := ps.portfolioRepo.List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list portfolios: %w", err)
	}
	if portfolios == nil {
		portfolios = []*models.Portfolio{}
	}
	return portfolios, nil
}

// ListAssets returns the assets of an existing portfolio
func (ps *PortfolioService) ListAssets(ctx context.Context, portfolioID string) ([]models.Asset, error) {
	portfolio, err := ps.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, err
	}
	return portfolio.Assets, nil
}

// GetAsset retrieves one asset
func (ps *PortfolioService) GetAsset(ctx context.Context, id string) (*models.Asset, error) {
	asset, err := ps.assetRepo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}
	return asset, nil
}

// CreateAsset validates and stores a new asset in an existing portfolio.
// The id is always assigned by the service.
func (ps *PortfolioService) CreateAsset(ctx context.Context, asset models.Asset) (*models.Asset, error) {
	if asset.PortfolioID == "" {
		ps.metrics.RecordAssetOperation("create", "invalid")
		return nil, fmt.Errorf("%w: portfolioId is required", models.ErrInvalidAsset)
	}
	portfolio, err := ps.GetPortfolio(ctx, asset.PortfolioID)
	if err != nil {
		ps.metrics.RecordAssetOperation("create", "error")
		return nil, err
	}

	asset.ID = ps.newID()
	asset.Normalize(ps.now())
	if err := asset.Validate(); err != nil {
		ps.metrics.RecordAssetOperation("create", "invalid")
		return nil, err
	}
	if err := portfolio.AddAsset(asset); err != nil {
		ps.metrics.RecordAssetOperation("create", "invalid")
		return nil, err
	}

	if err := ps.assetRepo.Create(ctx, &asset); err != nil {
		ps.metrics.RecordAssetOperation("create", "error")
		return nil, fmt.Errorf("failed to create asset: %w", err)
	}

	ps.afterAssetChange(ctx, portfolio, messaging.AssetCreated, asset.ID, &asset)
	ps.metrics.RecordAssetOperation("create", "success")
	return &asset, nil
}

// UpdateAsset merges a partial update into an asset
func (ps *PortfolioService) UpdateAsset(ctx context.Context, id string, update models.AssetUpdate) (*models.Asset, error) {
	if update.IsEmpty() {
		ps.metrics.RecordAssetOperation("update", "invalid")
		return nil, fmt.Errorf("%w: update has no fields", models.ErrInvalidAsset)
	}

	asset, err := ps.assetRepo.GetByID(ctx, id)
	if err != nil {
		ps.metrics.RecordAssetOperation("update", "error")
		return nil, fmt.Errorf("failed to get asset: %w", err)
	}

	if err := asset.Apply(update, ps.now()); err != nil {
		ps.metrics.RecordAssetOperation("update", "invalid")
		return nil, err
	}

	if err := ps.assetRepo.Update(ctx, asset); err != nil {
		ps.metrics.RecordAssetOperation("update", "error")
		return nil, fmt.Errorf("failed to update asset: %w", err)
	}

	portfolio, err := ps.GetPortfolio(ctx, asset.PortfolioID)
	if err != nil {
		// the asset is stored; only the denormalized totals are stale
		ps.logger.WithError(err).WithField("asset_id", id).Warn("Failed to reload portfolio after asset update")
		ps.invalidate(ctx, asset.PortfolioID)
	} else {
		ps.afterAssetChange(ctx, portfolio, messaging.AssetUpdated, asset.ID, asset)
	}

	ps.metrics.RecordAssetOperation("update", "success")
	return asset, nil
}

// DeleteAsset removes an asset from its portfolio
func (ps *PortfolioService) DeleteAsset(ctx context.Context, id string) error {
	asset, err := ps.assetRepo.GetByID(ctx, id)
	if err != nil {
		ps.metrics.RecordAssetOperation("delete", "error")
		return fmt.Errorf("failed to get asset: %w", err)
	}

	if err := ps.assetRepo.Delete(ctx, id); err != nil {
		ps.metrics.RecordAssetOperation("delete", "error")
		return fmt.Errorf("failed to delete asset: %w", err)
	}

	portfolio, err := ps.GetPortfolio(ctx, asset.PortfolioID)
	if err != nil {
		ps.logger.WithError(err).WithField("asset_id", id).Warn("Failed to reload portfolio after asset delete")
		ps.invalidate(ctx, asset.PortfolioID)
	} else {
		ps.afterAssetChange(ctx, portfolio, messaging.AssetDeleted, id, nil)
	}

	ps.metrics.RecordAssetOperation("delete", "success")
	return nil
}

// ApplyValuation applies a pushed revaluation through the partial update path
func (ps *PortfolioService) ApplyValuation(ctx context.Context, v messaging.ValuationUpdate) error {
	if v.AssetID == "" {
		return fmt.Errorf("%w: valuation without asset id", models.ErrInvalidAsset)
	}
	_, err := ps.UpdateAsset(ctx, v.AssetID, v.AssetUpdate())
	return err
}

// GetAnalytics runs the engine over the portfolio and its recent history
func (ps *PortfolioService) GetAnalytics(ctx context.Context, portfolioID string) (*models.PortfolioAnalytics, error) {
	if ps.config.CalculationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ps.config.CalculationTimeout)
		defer cancel()
	}

	portfolio, err := ps.GetPortfolio(ctx, portfolioID)
	if err != nil {
		return nil, err
	}

	snapshots, err := ps.snapshotRepo.ListRecent(ctx, portfolioID, ps.config.HistoryLimit)
	if err != nil {
		// analytics still work from the asset records alone
		ps.logger.WithError(err).WithField("portfolio_id", portfolioID).Warn("Failed to load snapshot history")
		snapshots = nil
	}

	result, err := ps.engine.Analyze(ctx, analytics.Input{Portfolio: portfolio, Snapshots: snapshots})
	if err != nil {
		return nil, fmt.Errorf("failed to analyze portfolio %s: %w", portfolioID, err)
	}
	return result, nil
}

// TakeSnapshot records the current valuation of a portfolio
func (ps *PortfolioService) TakeSnapshot(ctx context.Context, portfolioID, interval, note string) (*models.Snapshot, error) {
	if interval == "" {
		interval = models.SnapshotIntervalManual
	}

	portfolio, err := ps.GetPortfolio(ctx, portfolioID)
	if err != nil {
		ps.metrics.RecordSnapshot(interval, "error")
		return nil, err
	}

	snapshot := models.NewSnapshot(ps.newID(), portfolio, interval, ps.now())
	snapshot.Note = note

	if err := ps.snapshotRepo.Create(ctx, &snapshot); err != nil {
		ps.metrics.RecordSnapshot(interval, "error")
		return nil, fmt.Errorf("failed to save snapshot: %w", err)
	}

	ps.metrics.RecordSnapshot(interval, "success")
	ps.logger.WithFields(logrus.Fields{
		"portfolio_id": portfolioID,
		"interval":     interval,
		"total_value":  snapshot.TotalValue.String(),
	}).Info("Portfolio snapshot taken")
	return &snapshot, nil
}

// TakeAllSnapshots snapshots every portfolio. Failures are collected and
// do not stop the run.
func (ps *PortfolioService) TakeAllSnapshots(ctx context.Context, interval string) (int, error) {
	ids, err := ps.portfolioRepo.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list portfolios: %w", err)
	}

	taken := 0
	var errs []error
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if _, err := ps.TakeSnapshot(ctx, id, interval, ""); err != nil {
			errs = append(errs, fmt.Errorf("portfolio %s: %w", id, err))
			continue
		}
		taken++
	}
	return taken, errors.Join(errs...)
}

// PruneSnapshots deletes snapshots older than the retention window
func (ps *PortfolioService) PruneSnapshots(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}
	cutoff := ps.now().Add(-retention)
	deleted, err := ps.snapshotRepo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to prune snapshots: %w", err)
	}
	if deleted > 0 {
		ps.logger.WithFields(logrus.Fields{
			"deleted": deleted,
			"cutoff":  cutoff,
		}).Info("Pruned portfolio snapshots")
	}
	return deleted, nil
}

// afterAssetChange persists recomputed totals, drops the cached analytics
// and announces the change. None of these fail the write.
func (ps *PortfolioService) afterAssetChange(ctx context.Context, portfolio *models.Portfolio, eventType, assetID string, asset *models.Asset) {
	if err := ps.portfolioRepo.Update(ctx, portfolio); err != nil {
		ps.logger.WithError(err).WithField("portfolio_id", portfolio.ID).Warn("Failed to persist portfolio totals")
	}

	ps.invalidate(ctx, portfolio.ID)

	if ps.publisher == nil {
		return
	}
	event := messaging.AssetEvent{
		EventID:     ps.newID(),
		Type:        eventType,
		AssetID:     assetID,
		PortfolioID: portfolio.ID,
		Asset:       asset,
		OccurredAt:  ps.now(),
	}
	if err := ps.publisher.PublishAssetEvent(ctx, event); err != nil {
		ps.logger.WithError(err).WithFields(logrus.Fields{
			"event":    eventType,
			"asset_id": assetID,
		}).Error("Failed to publish asset event")
	}
}

func (ps *PortfolioService) invalidate(ctx context.Context, portfolioID string) {
	if ps.cache == nil {
		return
	}
	if err := ps.cache.Invalidate(ctx, portfolioID); err != nil {
		ps.logger.WithError(err).WithField("portfolio_id", portfolioID).Warn("Failed to invalidate analytics cache")
	}
}
