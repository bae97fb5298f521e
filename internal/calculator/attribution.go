package calculator

import (
	"sort"

	"github.com/shopspring/decimal"

	"portfolio-analytics/internal/models"
)

// Benchmark describes the reference portfolio for Brinson attribution.
// Weights and Returns are keyed by dimension, then group. A dimension with
// no weights uses the portfolio's own weights (a neutral benchmark). A group
// with no return uses the dimension default, then FallbackReturn.
type Benchmark struct {
	Weights        map[string]map[string]decimal.Decimal
	Returns        map[string]map[string]decimal.Decimal
	DefaultReturns map[string]decimal.Decimal
	FallbackReturn decimal.Decimal
}

// DefaultBenchmark is the static benchmark used when none is configured
func DefaultBenchmark() Benchmark {
	ten := decimal.RequireFromString("0.10")
	return Benchmark{
		Weights: map[string]map[string]decimal.Decimal{},
		Returns: map[string]map[string]decimal.Decimal{
			models.DimensionAssetType: {
				string(models.AssetTypeTraditional):    decimal.RequireFromString("0.12"),
				string(models.AssetTypeRealEstate):     ten,
				string(models.AssetTypeInfrastructure): ten,
			},
		},
		DefaultReturns: map[string]decimal.Decimal{
			models.DimensionSector:    ten,
			models.DimensionGeography: ten,
			models.DimensionAssetType: ten,
		},
		FallbackReturn: ten,
	}
}

func (b Benchmark) groupReturn(dimension, group string) decimal.Decimal {
	if r, ok := b.Returns[dimension][group]; ok {
		return r
	}
	if r, ok := b.DefaultReturns[dimension]; ok {
		return r
	}
	return b.FallbackReturn
}

type AttributionCalculator struct {
	benchmark Benchmark
}

func NewAttributionCalculator(benchmark Benchmark) *AttributionCalculator {
	return &AttributionCalculator{benchmark: benchmark}
}

type groupStats struct {
	value    decimal.Decimal
	weighted decimal.Decimal
}

// Calculate decomposes active return over one dimension into allocation,
// selection and interaction effects. Per group:
//
//	allocation  = (wp - wb) * rb
//	selection   = wb * (rp - rb)
//	interaction = (wp - wb) * (rp - rb)
//
// so the group totals add up to sum(wp*rp) - sum(wb*rb).
func (ac *AttributionCalculator) Calculate(assets []models.Asset, dimension string) models.AttributionResult {
	groups := make(map[string]*groupStats)
	included := decimal.Zero
	for i := range assets {
		a := &assets[i]
		key, ok := GroupKey(a, dimension)
		if !ok {
			continue
		}
		g, exists := groups[key]
		if !exists {
			g = &groupStats{value: decimal.Zero, weighted: decimal.Zero}
			groups[key] = g
		}
		g.value = g.value.Add(a.CurrentValue)
		g.weighted = g.weighted.Add(a.Performance.IRR.Mul(a.CurrentValue))
		included = included.Add(a.CurrentValue)
	}

	benchWeights, hasBenchWeights := ac.benchmark.Weights[dimension]
	hasBenchWeights = hasBenchWeights && len(benchWeights) > 0

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	if hasBenchWeights {
		for name := range benchWeights {
			if _, ok := groups[name]; !ok {
				names = append(names, name)
			}
		}
	}
	sort.Strings(names)

	result := models.AttributionResult{
		Dimension:        dimension,
		Groups:           make([]models.AttributionGroup, 0, len(names)),
		PortfolioReturn:  decimal.Zero,
		BenchmarkReturn:  decimal.Zero,
		TotalAllocation:  decimal.Zero,
		TotalSelection:   decimal.Zero,
		TotalInteraction: decimal.Zero,
	}

	for _, name := range names {
		wp, rp := decimal.Zero, decimal.Zero
		if g, ok := groups[name]; ok && included.IsPositive() {
			wp = g.value.Div(included)
			if g.value.IsPositive() {
				rp = g.weighted.Div(g.value)
			}
		}

		wb := wp
		if hasBenchWeights {
			wb = benchWeights[name]
		}
		rb := ac.benchmark.groupReturn(dimension, name)

		activeWeight := wp.Sub(wb)
		activeReturn := rp.Sub(rb)
		allocation := activeWeight.Mul(rb)
		selection := wb.Mul(activeReturn)
		interaction := activeWeight.Mul(activeReturn)

		result.Groups = append(result.Groups, models.AttributionGroup{
			Group:           name,
			PortfolioWeight: wp,
			BenchmarkWeight: wb,
			PortfolioReturn: rp,
			BenchmarkReturn: rb,
			Allocation:      allocation,
			Selection:       selection,
			Interaction:     interaction,
			Total:           allocation.Add(selection).Add(interaction),
		})

		result.PortfolioReturn = result.PortfolioReturn.Add(wp.Mul(rp))
		result.BenchmarkReturn = result.BenchmarkReturn.Add(wb.Mul(rb))
		result.TotalAllocation = result.TotalAllocation.Add(allocation)
		result.TotalSelection = result.TotalSelection.Add(selection)
		result.TotalInteraction = result.TotalInteraction.Add(interaction)
	}

	result.ActiveReturn = result.PortfolioReturn.Sub(result.BenchmarkReturn)
	return result
}
