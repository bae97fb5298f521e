package calculator

import (
	"math"

	"github.com/shopspring/decimal"

	"portfolio-analytics/internal/models"
)

var hundred = decimal.NewFromInt(100)

// Totals are the value aggregates of an asset list
type Totals struct {
	Value      decimal.Decimal `json:"value"`
	Invested   decimal.Decimal `json:"invested"`
	Unrealized decimal.Decimal `json:"unrealized"`
}

// CalculateTotals sums current and acquisition value
func CalculateTotals(assets []models.Asset) Totals {
	t := Totals{Value: decimal.Zero, Invested: decimal.Zero}
	for i := range assets {
		t.Value = t.Value.Add(assets[i].CurrentValue)
		t.Invested = t.Invested.Add(assets[i].AcquisitionValue)
	}
	t.Unrealized = t.Value.Sub(t.Invested)
	return t
}

// MetricFunc extracts a per-asset figure to be value weighted
type MetricFunc func(a *models.Asset) decimal.Decimal

// WeightedAverage returns sum(metric * value) / sum(value), or zero when
// the list carries no value.
func WeightedAverage(assets []models.Asset, metric MetricFunc) decimal.Decimal {
	weighted := decimal.Zero
	total := decimal.Zero
	for i := range assets {
		a := &assets[i]
		weighted = weighted.Add(metric(a).Mul(a.CurrentValue))
		total = total.Add(a.CurrentValue)
	}
	if !total.IsPositive() {
		return decimal.Zero
	}
	return weighted.Div(total)
}

// WeightedIRR is the value weighted internal rate of return
func WeightedIRR(assets []models.Asset) decimal.Decimal {
	return WeightedAverage(assets, func(a *models.Asset) decimal.Decimal { return a.Performance.IRR })
}

// WeightedMOIC is the value weighted multiple on invested capital
func WeightedMOIC(assets []models.Asset) decimal.Decimal {
	return WeightedAverage(assets, func(a *models.Asset) decimal.Decimal { return a.Performance.MOIC })
}

// WeightedTotalReturn is the value weighted total return
func WeightedTotalReturn(assets []models.Asset) decimal.Decimal {
	return WeightedAverage(assets, func(a *models.Asset) decimal.Decimal { return a.Performance.TotalReturn })
}

// Weights returns each asset's share of total current value, in list order.
// All weights are zero when the total is zero.
func Weights(assets []models.Asset) []decimal.Decimal {
	total := CalculateTotals(assets).Value
	weights := make([]decimal.Decimal, len(assets))
	for i := range assets {
		if total.IsPositive() {
			weights[i] = assets[i].CurrentValue.Div(total)
		} else {
			weights[i] = decimal.Zero
		}
	}
	return weights
}

// toDecimal converts a float result, mapping NaN and infinities to zero
func toDecimal(f float64) decimal.Decimal {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(f)
}
