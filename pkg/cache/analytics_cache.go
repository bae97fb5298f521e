package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/karlseguin/ccache/v2"
	"github.com/sirupsen/logrus"

	"portfolio-analytics/internal/config"
	"portfolio-analytics/internal/models"
	"portfolio-analytics/internal/monitoring"
)

// DistributedStore is the shared second cache tier
type DistributedStore interface {
	GetEntry(ctx context.Context, portfolioID string) (*AnalyticsEntry, error)
	SetEntry(ctx context.Context, portfolioID string, entry *AnalyticsEntry, ttl time.Duration) error
	DeleteEntry(ctx context.Context, portfolioID string) error
}

// AnalyticsCache keeps one analytics entry per portfolio in a local ccache
// and, when configured, a distributed store. Lookups try the local tier
// first and back-fill it on a distributed hit.
type AnalyticsCache struct {
	local     *ccache.Cache
	remote    DistributedStore
	localTTL  time.Duration
	remoteTTL time.Duration
	metrics   monitoring.MetricsService
	logger    *logrus.Logger
}

// NewAnalyticsCache creates the analytics result cache. remote may be nil.
func NewAnalyticsCache(cfg config.CacheConfig, remote DistributedStore, metrics monitoring.MetricsService, logger *logrus.Logger) *AnalyticsCache {
	if metrics == nil {
		metrics = monitoring.NewNoopMetrics()
	}
	local := ccache.New(ccache.Configure().
		MaxSize(cfg.LocalMaxSize).
		ItemsToPrune(cfg.LocalItemsToPrune).
		DeleteBuffer(256).
		PromoteBuffer(256).
		GetsPerPromote(3))

	return &AnalyticsCache{
		local:     local,
		remote:    remote,
		localTTL:  cfg.LocalTTL,
		remoteTTL: cfg.AnalyticsTTL,
		metrics:   metrics,
		logger:    logger,
	}
}

// Get returns the cached result for the portfolio if it was stored under
// the same fingerprint
func (c *AnalyticsCache) Get(ctx context.Context, portfolioID, fingerprint string) (*models.PortfolioAnalytics, bool) {
	key := analyticsKey(portfolioID)

	if item := c.local.Get(key); item != nil && !item.Expired() {
		if entry, ok := item.Value().(*AnalyticsEntry); ok && entry.Fingerprint == fingerprint {
			c.metrics.RecordCacheLookup("local", true)
			return entry.Result.Clone(), true
		}
	}
	c.metrics.RecordCacheLookup("local", false)

	if c.remote == nil {
		return nil, false
	}

	select {
	case <-ctx.Done():
		return nil, false
	default:
	}

	entry, err := c.remote.GetEntry(ctx, portfolioID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			c.logger.WithError(err).WithField("portfolio_id", portfolioID).Warn("Distributed analytics cache lookup failed")
		}
		c.metrics.RecordCacheLookup("distributed", false)
		return nil, false
	}
	if entry.Fingerprint != fingerprint || entry.Result == nil {
		c.metrics.RecordCacheLookup("distributed", false)
		return nil, false
	}

	c.metrics.RecordCacheLookup("distributed", true)
	c.local.Set(key, entry, c.localTTL)
	return entry.Result.Clone(), true
}

// Set stores a result, replacing any entry for the same portfolio
func (c *AnalyticsCache) Set(ctx context.Context, portfolioID, fingerprint string, result *models.PortfolioAnalytics) error {
	if result == nil {
		return fmt.Errorf("cannot cache nil analytics for portfolio %s", portfolioID)
	}
	key := analyticsKey(portfolioID)
	entry := &AnalyticsEntry{
		Fingerprint: fingerprint,
		Result:      result.Clone(),
		StoredAt:    time.Now().UTC(),
	}

	c.local.Set(key, entry, c.localTTL)

	if c.remote != nil {
		if err := c.remote.SetEntry(ctx, portfolioID, entry, c.remoteTTL); err != nil {
			// the local tier still serves this process
			c.logger.WithError(err).WithField("portfolio_id", portfolioID).Error("Failed to set distributed analytics cache")
		}
	}

	c.logger.WithFields(logrus.Fields{
		"portfolio_id": portfolioID,
		"fingerprint":  fingerprint,
	}).Debug("Analytics cached")
	return nil
}

// Invalidate drops the portfolio's entry from both tiers
func (c *AnalyticsCache) Invalidate(ctx context.Context, portfolioID string) error {
	key := analyticsKey(portfolioID)
	c.local.Delete(key)

	if c.remote != nil {
		if err := c.remote.DeleteEntry(ctx, portfolioID); err != nil {
			return fmt.Errorf("failed to invalidate analytics for portfolio %s: %w", portfolioID, err)
		}
	}
	return nil
}

// Stop releases the local cache's background worker
func (c *AnalyticsCache) Stop() {
	c.local.Stop()
}
