package calculator

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"portfolio-analytics/internal/models"
)

// Attribute similarity weights used when two assets share no return history.
// The result is a labeled stand-in for a measured correlation.
const (
	heuristicBase        = 0.2
	heuristicSameType    = 0.3
	heuristicSameSector  = 0.2
	heuristicSameCountry = 0.1
)

// CorrelationMatrix builds the pairwise correlation matrix of the assets in
// list order. Pairs with enough aligned history use the Pearson coefficient,
// the rest fall back to the attribute heuristic.
func CorrelationMatrix(assets []models.Asset, history ReturnHistory) models.CorrelationMatrix {
	n := len(assets)
	m := models.CorrelationMatrix{
		AssetIDs: make([]string, n),
		Values:   make([][]float64, n),
	}
	for i := range assets {
		m.AssetIDs[i] = assets[i].ID
		m.Values[i] = make([]float64, n)
		m.Values[i][i] = 1
	}

	measured, estimated := 0, 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			rho, ok := historicalCorrelation(assets[i].ID, assets[j].ID, history)
			if ok {
				measured++
			} else {
				rho = attributeCorrelation(&assets[i], &assets[j])
				estimated++
			}
			m.Values[i][j] = rho
			m.Values[j][i] = rho
		}
	}

	switch {
	case estimated == 0 && measured > 0:
		m.Source = models.SourceHistorical
	case measured > 0:
		m.Source = models.SourceMixed
	default:
		m.Source = models.SourceAttributeHeuristic
	}
	return m
}

func historicalCorrelation(a, b string, history ReturnHistory) (float64, bool) {
	if a == b {
		return 1, true
	}
	x, y := history.alignedPair(a, b)
	if len(x) < minReturnObservations {
		return 0, false
	}
	rho := stat.Correlation(x, y, nil)
	if math.IsNaN(rho) || math.IsInf(rho, 0) {
		return 0, false
	}
	return math.Max(-1, math.Min(1, rho)), true
}

func attributeCorrelation(a, b *models.Asset) float64 {
	rho := heuristicBase
	if a.Type == b.Type {
		rho += heuristicSameType
	}
	if a.HasSector() && a.Sector == b.Sector {
		rho += heuristicSameSector
	}
	if a.Location.Country != "" && a.Location.Country == b.Location.Country {
		rho += heuristicSameCountry
	}
	return rho
}
