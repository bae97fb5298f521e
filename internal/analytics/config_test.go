package analytics

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-analytics/internal/config"
	"portfolio-analytics/internal/models"
)

func TestEngineConfigFrom(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg := EngineConfigFrom(config.AnalyticsConfig{RiskFreeRate: 0.02})

		assert.Equal(t, 0.02, cfg.RiskFreeRate)
		assert.Nil(t, cfg.VolatilityBands)
		assert.True(t, cfg.Benchmark.FallbackReturn.Equal(decimal.RequireFromString("0.10")))
		assert.True(t, cfg.Benchmark.Returns[models.DimensionAssetType]["traditional"].Equal(decimal.RequireFromString("0.12")))
		assert.Empty(t, cfg.Benchmark.Weights)
	})

	t.Run("overrides", func(t *testing.T) {
		cfg := EngineConfigFrom(config.AnalyticsConfig{
			VolatilityBands:         map[string]float64{"low": 0.1, "high": 0.4},
			BenchmarkFallbackReturn: 0.08,
			BenchmarkReturns: map[string]map[string]float64{
				models.DimensionSector:    {"Energy": 0.07},
				models.DimensionAssetType: {"traditional": 0.15},
			},
			BenchmarkWeights: map[string]map[string]float64{
				models.DimensionSector:    {"Energy": 0.6, "Technology": 0.4},
				models.DimensionGeography: {},
			},
		})

		assert.Equal(t, 0.1, cfg.VolatilityBands[models.RiskLow])
		assert.Equal(t, 0.4, cfg.VolatilityBands[models.RiskHigh])

		b := cfg.Benchmark
		assert.True(t, b.FallbackReturn.Equal(decimal.RequireFromString("0.08")))
		assert.True(t, b.DefaultReturns[models.DimensionSector].Equal(decimal.RequireFromString("0.08")))
		assert.True(t, b.Returns[models.DimensionSector]["Energy"].Equal(decimal.RequireFromString("0.07")))
		assert.True(t, b.Returns[models.DimensionAssetType]["traditional"].Equal(decimal.RequireFromString("0.15")))
		assert.True(t, b.Returns[models.DimensionAssetType]["real_estate"].Equal(decimal.RequireFromString("0.10")))

		require.Contains(t, b.Weights, models.DimensionSector)
		assert.True(t, b.Weights[models.DimensionSector]["Technology"].Equal(decimal.RequireFromString("0.4")))
		assert.NotContains(t, b.Weights, models.DimensionGeography)
	})
}
