package calculator

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"portfolio-analytics/internal/models"
)

const (
	// minReturnObservations is the shortest series a statistic is computed from
	minReturnObservations = 3
	defaultPeriodsPerYear = 252.0
	yearDuration          = 365.25 * 24 * time.Hour
)

// ReturnHistory is the periodic return series derived from value snapshots.
// Asset series are aligned on the portfolio periods and carry NaN where the
// asset was not valued at both ends of a period.
type ReturnHistory struct {
	Portfolio      []float64
	Assets         map[string][]float64
	Values         []decimal.Decimal
	PeriodsPerYear float64
}

// BuildReturnHistory turns snapshots into simple periodic returns. Snapshots
// are ordered by timestamp first; periods starting from a zero value are
// skipped.
func BuildReturnHistory(snapshots []models.Snapshot) ReturnHistory {
	h := ReturnHistory{Assets: make(map[string][]float64), PeriodsPerYear: defaultPeriodsPerYear}
	if len(snapshots) == 0 {
		return h
	}

	ordered := make([]models.Snapshot, len(snapshots))
	copy(ordered, snapshots)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Timestamp.Before(ordered[j].Timestamp)
	})

	h.Values = make([]decimal.Decimal, len(ordered))
	ids := make(map[string]struct{})
	for i, s := range ordered {
		h.Values[i] = s.TotalValue
		for id := range s.AssetValues {
			ids[id] = struct{}{}
		}
	}

	for i := 1; i < len(ordered); i++ {
		prev, cur := ordered[i-1], ordered[i]
		if !prev.TotalValue.IsPositive() {
			continue
		}
		h.Portfolio = append(h.Portfolio, periodReturn(prev.TotalValue, cur.TotalValue))
		for id := range ids {
			r := math.NaN()
			pv, okPrev := prev.AssetValues[id]
			cv, okCur := cur.AssetValues[id]
			if okPrev && okCur && pv.IsPositive() {
				r = periodReturn(pv, cv)
			}
			h.Assets[id] = append(h.Assets[id], r)
		}
	}

	if span := ordered[len(ordered)-1].Timestamp.Sub(ordered[0].Timestamp); span > 0 && len(ordered) > 1 {
		gap := span / time.Duration(len(ordered)-1)
		if gap > 0 {
			h.PeriodsPerYear = float64(yearDuration) / float64(gap)
		}
	}

	return h
}

// HasPortfolioSeries reports whether the portfolio series is long enough
func (h ReturnHistory) HasPortfolioSeries() bool {
	return len(h.Portfolio) >= minReturnObservations
}

// AssetSeries returns the observed returns of one asset, dropping gaps
func (h ReturnHistory) AssetSeries(id string) []float64 {
	series := h.Assets[id]
	out := make([]float64, 0, len(series))
	for _, r := range series {
		if !math.IsNaN(r) {
			out = append(out, r)
		}
	}
	return out
}

// alignedPair returns the periods observed for both assets
func (h ReturnHistory) alignedPair(a, b string) ([]float64, []float64) {
	x, y := h.Assets[a], h.Assets[b]
	n := len(x)
	if len(y) < n {
		n = len(y)
	}
	xs := make([]float64, 0, n)
	ys := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys
}

func periodReturn(prev, cur decimal.Decimal) float64 {
	r, _ := cur.Sub(prev).Div(prev).Float64()
	return r
}
