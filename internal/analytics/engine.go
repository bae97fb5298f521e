package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"portfolio-analytics/internal/calculator"
	"portfolio-analytics/internal/models"
	"portfolio-analytics/internal/monitoring"
)

// ErrNilPortfolio is returned when Analyze is called without a portfolio
var ErrNilPortfolio = errors.New("portfolio is required")

// ResultCache memoizes analytics per portfolio. An entry is only valid for
// the fingerprint it was stored under; storing a new fingerprint for the
// same portfolio replaces the old entry.
type ResultCache interface {
	Get(ctx context.Context, portfolioID, fingerprint string) (*models.PortfolioAnalytics, bool)
	Set(ctx context.Context, portfolioID, fingerprint string, result *models.PortfolioAnalytics) error
	Invalidate(ctx context.Context, portfolioID string) error
}

// Input is everything one analytics run reads
type Input struct {
	Portfolio *models.Portfolio
	Snapshots []models.Snapshot
}

type EngineConfig struct {
	RiskFreeRate    float64
	VolatilityBands map[models.RiskRating]float64
	Benchmark       calculator.Benchmark
}

// Engine derives portfolio analytics from an asset list. The calculators are
// pure; the only state is the optional result cache.
type Engine struct {
	risk        *calculator.RiskCalculator
	attribution *calculator.AttributionCalculator
	cache       ResultCache
	metrics     monitoring.MetricsService
	logger      *logrus.Logger
	now         func() time.Time
}

func NewEngine(cfg EngineConfig, cache ResultCache, metrics monitoring.MetricsService, logger *logrus.Logger) *Engine {
	if metrics == nil {
		metrics = monitoring.NewNoopMetrics()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Engine{
		risk: calculator.NewRiskCalculator(calculator.RiskCalculatorConfig{
			RiskFreeRate:    cfg.RiskFreeRate,
			VolatilityBands: cfg.VolatilityBands,
		}),
		attribution: calculator.NewAttributionCalculator(cfg.Benchmark),
		cache:       cache,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

// Analyze returns the analytics of a portfolio, served from the cache when
// the inputs are unchanged since the last run
func (e *Engine) Analyze(ctx context.Context, in Input) (*models.PortfolioAnalytics, error) {
	if in.Portfolio == nil {
		return nil, ErrNilPortfolio
	}

	portfolioID := in.Portfolio.ID
	fingerprint := Fingerprint(in.Portfolio.Assets, in.Snapshots)

	if e.cache != nil {
		if cached, ok := e.cache.Get(ctx, portfolioID, fingerprint); ok {
			e.metrics.RecordCacheLookup("analytics", true)
			hit := cached.Clone()
			hit.FromCache = true
			return hit, nil
		}
		e.metrics.RecordCacheLookup("analytics", false)
	}

	start := e.now()
	result, err := e.Compute(ctx, in)
	elapsed := time.Since(start)
	if err != nil {
		e.metrics.RecordAnalyticsComputation("error", len(in.Portfolio.Assets), elapsed)
		return nil, err
	}
	e.metrics.RecordAnalyticsComputation("success", len(in.Portfolio.Assets), elapsed)
	result.Fingerprint = fingerprint

	if e.cache != nil {
		if err := e.cache.Set(ctx, portfolioID, fingerprint, result.Clone()); err != nil {
			e.logger.WithError(err).WithField("portfolio_id", portfolioID).Warn("Failed to cache analytics")
		}
	}

	e.logger.WithFields(logrus.Fields{
		"portfolio_id": portfolioID,
		"assets":       len(in.Portfolio.Assets),
		"duration_ms":  elapsed.Milliseconds(),
	}).Debug("Portfolio analytics computed")

	return result, nil
}

// Compute runs every calculator without consulting the cache. The context
// is checked between stages.
func (e *Engine) Compute(ctx context.Context, in Input) (*models.PortfolioAnalytics, error) {
	if in.Portfolio == nil {
		return nil, ErrNilPortfolio
	}
	assets := in.Portfolio.Assets

	totals := calculator.CalculateTotals(assets)
	weightedIRR := calculator.WeightedIRR(assets)
	alloc := calculator.CalculateAllocations(assets)
	esg := calculator.AggregateESG(assets)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analytics cancelled after aggregation: %w", err)
	}

	sectorAttr := e.attribution.Calculate(assets, models.DimensionSector)
	geoAttr := e.attribution.Calculate(assets, models.DimensionGeography)
	typeAttr := e.attribution.Calculate(assets, models.DimensionAssetType)

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analytics cancelled after attribution: %w", err)
	}

	history := calculator.BuildReturnHistory(in.Snapshots)
	correlation := calculator.CorrelationMatrix(assets, history)
	risk := e.risk.Assess(calculator.RiskInput{
		Assets:          assets,
		TotalValue:      totals.Value,
		WeightedIRR:     weightedIRR,
		BenchmarkReturn: typeAttr.BenchmarkReturn,
		Correlation:     correlation,
		History:         history,
	})

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("analytics cancelled after risk: %w", err)
	}

	active := weightedIRR.Sub(typeAttr.BenchmarkReturn)

	return &models.PortfolioAnalytics{
		PortfolioID: in.Portfolio.ID,
		Summary: models.AnalyticsSummary{
			TotalPortfolioValue:  totals.Value,
			TotalInvested:        totals.Invested,
			UnrealizedGains:      totals.Unrealized,
			WeightedIRR:          weightedIRR,
			WeightedMOIC:         calculator.WeightedMOIC(assets),
			WeightedTotalReturn:  calculator.WeightedTotalReturn(assets),
			AssetCount:           len(assets),
			AssetAllocation:      alloc.ByAssetType,
			SectorAllocation:     alloc.BySector,
			GeographicAllocation: alloc.ByCountry,
			RiskDistribution:     alloc.ByRisk,
			ESGScore:             esg,
			AllocationPercent: models.AllocationPercent{
				AssetType:  calculator.Percentages(alloc.ByAssetType, totals.Value),
				Sector:     calculator.Percentages(alloc.BySector, totals.Value),
				Geographic: calculator.Percentages(alloc.ByCountry, totals.Value),
				Risk:       calculator.Percentages(alloc.ByRisk, totals.Value),
			},
			BenchmarkComparison: models.BenchmarkComparison{
				PortfolioReturn: weightedIRR,
				BenchmarkReturn: typeAttr.BenchmarkReturn,
				ActiveReturn:    active,
				Outperforming:   active.IsPositive(),
			},
		},
		ProfessionalMetrics: models.ProfessionalMetrics{
			SharpeRatio:           risk.Sharpe,
			SortinoRatio:          risk.Sortino,
			Alpha:                 risk.Alpha,
			Beta:                  risk.Beta,
			Volatility:            risk.Volatility,
			VolatilitySource:      risk.VolatilitySource,
			DownsideSource:        risk.DownsideSource,
			ValueAtRisk95:         risk.VaR95,
			ValueAtRisk99:         risk.VaR99,
			ConditionalVaR95:      risk.CVaR95,
			ConditionalVaR99:      risk.CVaR99,
			MaxDrawdown:           risk.MaxDrawdown,
			ConcentrationRisk:     risk.Concentration,
			EffectiveAssets:       risk.EffectiveAssets,
			LiquidityScore:        risk.LiquidityScore,
			CorrelationMatrix:     correlation,
			SectorAttribution:     sectorAttr,
			GeographicAttribution: geoAttr,
			AssetTypeAttribution:  typeAttr,
		},
		CalculatedAt: e.now().UTC(),
	}, nil
}
