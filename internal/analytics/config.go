package analytics

import (
	"github.com/shopspring/decimal"

	"portfolio-analytics/internal/calculator"
	"portfolio-analytics/internal/config"
	"portfolio-analytics/internal/models"
)

// EngineConfigFrom builds the engine configuration from the service
// settings. Configured benchmark returns overlay the static defaults;
// configured weights replace the neutral benchmark for their dimension.
func EngineConfigFrom(cfg config.AnalyticsConfig) EngineConfig {
	benchmark := calculator.DefaultBenchmark()

	if cfg.BenchmarkFallbackReturn != 0 {
		fallback := decimal.NewFromFloat(cfg.BenchmarkFallbackReturn)
		benchmark.FallbackReturn = fallback
		for dim := range benchmark.DefaultReturns {
			benchmark.DefaultReturns[dim] = fallback
		}
	}

	for dim, groups := range cfg.BenchmarkReturns {
		if benchmark.Returns[dim] == nil {
			benchmark.Returns[dim] = make(map[string]decimal.Decimal, len(groups))
		}
		for group, r := range groups {
			benchmark.Returns[dim][group] = decimal.NewFromFloat(r)
		}
	}

	for dim, groups := range cfg.BenchmarkWeights {
		if len(groups) == 0 {
			continue
		}
		weights := make(map[string]decimal.Decimal, len(groups))
		for group, w := range groups {
			weights[group] = decimal.NewFromFloat(w)
		}
		benchmark.Weights[dim] = weights
	}

	var bands map[models.RiskRating]float64
	if len(cfg.VolatilityBands) > 0 {
		bands = make(map[models.RiskRating]float64, len(cfg.VolatilityBands))
		for rating, vol := range cfg.VolatilityBands {
			bands[models.RiskRating(rating)] = vol
		}
	}

	return EngineConfig{
		RiskFreeRate:    cfg.RiskFreeRate,
		VolatilityBands: bands,
		Benchmark:       benchmark,
	}
}
