package calculator

import (
	"github.com/shopspring/decimal"

	"portfolio-analytics/internal/models"
)

// Allocations holds the summed current value of a portfolio per grouping
type Allocations struct {
	ByAssetType map[string]decimal.Decimal `json:"by_asset_type"`
	BySector    map[string]decimal.Decimal `json:"by_sector"`
	ByCountry   map[string]decimal.Decimal `json:"by_country"`
	ByRisk      map[string]decimal.Decimal `json:"by_risk"`
}

// CalculateAllocations sums current value by asset type, sector, country
// and risk tier. Assets without a sector are left out of the sector map.
func CalculateAllocations(assets []models.Asset) Allocations {
	alloc := Allocations{
		ByAssetType: make(map[string]decimal.Decimal),
		BySector:    make(map[string]decimal.Decimal),
		ByCountry:   make(map[string]decimal.Decimal),
		ByRisk:      make(map[string]decimal.Decimal),
	}

	for i := range assets {
		a := &assets[i]
		addTo(alloc.ByAssetType, string(a.Type), a.CurrentValue)
		addTo(alloc.ByRisk, string(a.RiskRating), a.CurrentValue)
		if key, ok := GroupKey(a, models.DimensionSector); ok {
			addTo(alloc.BySector, key, a.CurrentValue)
		}
		if key, ok := GroupKey(a, models.DimensionGeography); ok {
			addTo(alloc.ByCountry, key, a.CurrentValue)
		}
	}

	return alloc
}

// Percentages converts an allocation map into percentages of total.
// A zero total yields an empty map.
func Percentages(values map[string]decimal.Decimal, total decimal.Decimal) map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(values))
	if !total.IsPositive() {
		return out
	}
	for k, v := range values {
		out[k] = v.Div(total).Mul(hundred)
	}
	return out
}

// GroupKey returns the group an asset falls into for a dimension. The
// second result is false when the asset has no value for it.
func GroupKey(a *models.Asset, dimension string) (string, bool) {
	switch dimension {
	case models.DimensionSector:
		return a.Sector, a.Sector != ""
	case models.DimensionGeography:
		return a.Location.Country, a.Location.Country != ""
	case models.DimensionAssetType:
		return string(a.Type), a.Type != ""
	}
	return "", false
}

func addTo(m map[string]decimal.Decimal, key string, v decimal.Decimal) {
	m[key] = m[key].Add(v)
}
