package calculator

import (
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"portfolio-analytics/internal/models"
)

// Annual volatility assumed per risk tier when an asset has no history
var defaultVolatilityBands = map[models.RiskRating]float64{
	models.RiskLow:      0.15,
	models.RiskMedium:   0.25,
	models.RiskHigh:     0.35,
	models.RiskCritical: 0.50,
}

// Market sensitivity assumed per risk tier
var defaultBetaBands = map[models.RiskRating]float64{
	models.RiskLow:      0.6,
	models.RiskMedium:   1.0,
	models.RiskHigh:     1.3,
	models.RiskCritical: 1.6,
}

// Liquidity on a 0-100 scale per asset type
var defaultLiquidityScores = map[models.AssetType]float64{
	models.AssetTypeTraditional:    80,
	models.AssetTypeRealEstate:     45,
	models.AssetTypeInfrastructure: 30,
}

type RiskCalculator struct {
	riskFreeRate    decimal.Decimal
	volatilityBands map[models.RiskRating]float64
	betaBands       map[models.RiskRating]float64
	liquidity       map[models.AssetType]float64
}

type RiskCalculatorConfig struct {
	RiskFreeRate    float64                       `json:"risk_free_rate"`
	VolatilityBands map[models.RiskRating]float64 `json:"volatility_bands"`
}

func NewRiskCalculator(config RiskCalculatorConfig) *RiskCalculator {
	bands := make(map[models.RiskRating]float64, len(defaultVolatilityBands))
	for k, v := range defaultVolatilityBands {
		bands[k] = v
	}
	for k, v := range config.VolatilityBands {
		if v > 0 {
			bands[k] = v
		}
	}
	return &RiskCalculator{
		riskFreeRate:    decimal.NewFromFloat(config.RiskFreeRate),
		volatilityBands: bands,
		betaBands:       defaultBetaBands,
		liquidity:       defaultLiquidityScores,
	}
}

// RiskFreeRate returns the configured annual risk free rate
func (rc *RiskCalculator) RiskFreeRate() decimal.Decimal {
	return rc.riskFreeRate
}

// RiskInput is what Assess needs besides the asset list
type RiskInput struct {
	Assets          []models.Asset
	TotalValue      decimal.Decimal
	WeightedIRR     decimal.Decimal
	BenchmarkReturn decimal.Decimal
	Correlation     models.CorrelationMatrix
	History         ReturnHistory
}

// RiskResult is the risk and diversification part of the professional metrics
type RiskResult struct {
	Volatility        decimal.Decimal
	VolatilitySource  string
	DownsideDeviation decimal.Decimal
	DownsideSource    string
	VaR95             decimal.Decimal
	VaR99             decimal.Decimal
	CVaR95            decimal.Decimal
	CVaR99            decimal.Decimal
	MaxDrawdown       decimal.Decimal
	Sharpe            decimal.Decimal
	Sortino           decimal.Decimal
	Beta              decimal.Decimal
	Alpha             decimal.Decimal
	Concentration     decimal.Decimal
	EffectiveAssets   decimal.Decimal
	LiquidityScore    decimal.Decimal
}

// Assess runs every risk measure over one portfolio
func (rc *RiskCalculator) Assess(in RiskInput) RiskResult {
	vol, volSource := rc.PortfolioVolatility(in.Assets, in.Correlation, in.History)
	downside, downSource := rc.DownsideDeviation(in.History, vol)
	hhi := ConcentrationIndex(in.Assets)
	beta := rc.Beta(in.Assets)

	return RiskResult{
		Volatility:        vol,
		VolatilitySource:  volSource,
		DownsideDeviation: downside,
		DownsideSource:    downSource,
		VaR95:             ValueAtRisk(in.TotalValue, vol, 0.95),
		VaR99:             ValueAtRisk(in.TotalValue, vol, 0.99),
		CVaR95:            ConditionalVaR(in.TotalValue, vol, 0.95),
		CVaR99:            ConditionalVaR(in.TotalValue, vol, 0.99),
		MaxDrawdown:       MaxDrawdown(in.History.Values),
		Sharpe:            rc.excessOver(in.WeightedIRR, vol),
		Sortino:           rc.excessOver(in.WeightedIRR, downside),
		Beta:              beta,
		Alpha:             rc.Alpha(in.WeightedIRR, beta, in.BenchmarkReturn),
		Concentration:     hhi,
		EffectiveAssets:   EffectiveAssets(hhi),
		LiquidityScore:    rc.LiquidityScore(in.Assets),
	}
}

// ConcentrationIndex is the Herfindahl-Hirschman index of value weights:
// 1 for a single holding, about 1/n for n equal holdings, 0 for no value.
func ConcentrationIndex(assets []models.Asset) decimal.Decimal {
	hhi := decimal.Zero
	for _, w := range Weights(assets) {
		hhi = hhi.Add(w.Mul(w))
	}
	return hhi
}

// EffectiveAssets is the number of equally weighted holdings with the same
// concentration
func EffectiveAssets(hhi decimal.Decimal) decimal.Decimal {
	if !hhi.IsPositive() {
		return decimal.Zero
	}
	return decimal.NewFromInt(1).Div(hhi)
}

// AssetVolatility returns the annualized volatility of one asset and where
// it came from
func (rc *RiskCalculator) AssetVolatility(a *models.Asset, history ReturnHistory) (float64, string) {
	series := history.AssetSeries(a.ID)
	if len(series) >= minReturnObservations {
		sd := stat.StdDev(series, nil)
		if !math.IsNaN(sd) {
			return sd * math.Sqrt(history.PeriodsPerYear), models.SourceHistorical
		}
	}
	return rc.volatilityBands[a.RiskRating], models.SourceRiskRatingBand
}

// PortfolioVolatility computes sqrt(x' R x) with x_i = w_i * sigma_i
func (rc *RiskCalculator) PortfolioVolatility(assets []models.Asset, corr models.CorrelationMatrix, history ReturnHistory) (decimal.Decimal, string) {
	n := len(assets)
	if n == 0 {
		return decimal.Zero, models.SourceRiskRatingBand
	}

	weights := Weights(assets)
	x := mat.NewVecDense(n, nil)
	measured := 0
	for i := range assets {
		sigma, source := rc.AssetVolatility(&assets[i], history)
		if source == models.SourceHistorical {
			measured++
		}
		w, _ := weights[i].Float64()
		x.SetVec(i, w*sigma)
	}

	rho := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		rho.SetSym(i, i, 1)
		for j := i + 1; j < n && len(corr.Values) == n; j++ {
			rho.SetSym(i, j, corr.Values[i][j])
		}
	}

	variance := mat.Inner(x, rho, x)
	if variance < 0 {
		variance = 0
	}

	source := models.SourceRiskRatingBand
	switch {
	case measured == n:
		source = models.SourceHistorical
	case measured > 0:
		source = models.SourceMixed
	}
	return toDecimal(math.Sqrt(variance)), source
}

// ValueAtRisk is the parametric loss not exceeded with the given confidence
// over one year: value * sigma * z(c)
func ValueAtRisk(value, sigma decimal.Decimal, confidence float64) decimal.Decimal {
	if confidence <= 0 || confidence >= 1 {
		return decimal.Zero
	}
	z := distuv.UnitNormal.Quantile(confidence)
	return value.Mul(sigma).Mul(toDecimal(z))
}

// ConditionalVaR is the expected loss beyond the VaR threshold under the
// same normal model: value * sigma * phi(z) / (1 - c)
func ConditionalVaR(value, sigma decimal.Decimal, confidence float64) decimal.Decimal {
	if confidence <= 0 || confidence >= 1 {
		return decimal.Zero
	}
	z := distuv.UnitNormal.Quantile(confidence)
	factor := distuv.UnitNormal.Prob(z) / (1 - confidence)
	return value.Mul(sigma).Mul(toDecimal(factor))
}

// MaxDrawdown is the largest peak to trough fall of a value series, as a
// fraction of the peak
func MaxDrawdown(values []decimal.Decimal) decimal.Decimal {
	if len(values) < 2 {
		return decimal.Zero
	}

	maxDrawdown := decimal.Zero
	peak := values[0]
	for _, v := range values {
		if v.GreaterThan(peak) {
			peak = v
		}
		if peak.IsPositive() {
			drawdown := peak.Sub(v).Div(peak)
			if drawdown.GreaterThan(maxDrawdown) {
				maxDrawdown = drawdown
			}
		}
	}
	return maxDrawdown
}

// DownsideDeviation annualizes the deviation of returns below the per-period
// risk free rate. Without a usable series it falls back to sigma/sqrt(2),
// the downside deviation of a symmetric distribution.
func (rc *RiskCalculator) DownsideDeviation(history ReturnHistory, sigma decimal.Decimal) (decimal.Decimal, string) {
	if history.HasPortfolioSeries() {
		rf, _ := rc.riskFreeRate.Float64()
		target := rf / history.PeriodsPerYear
		sum := 0.0
		for _, r := range history.Portfolio {
			if d := r - target; d < 0 {
				sum += d * d
			}
		}
		dd := math.Sqrt(sum/float64(len(history.Portfolio))) * math.Sqrt(history.PeriodsPerYear)
		return toDecimal(dd), models.SourceHistorical
	}
	s, _ := sigma.Float64()
	return toDecimal(s / math.Sqrt2), models.SourceRiskRatingBand
}

// Beta is the value weighted tier beta of the portfolio
func (rc *RiskCalculator) Beta(assets []models.Asset) decimal.Decimal {
	return WeightedAverage(assets, func(a *models.Asset) decimal.Decimal {
		return decimal.NewFromFloat(rc.betaBands[a.RiskRating])
	})
}

// Alpha is the return in excess of the CAPM expectation
func (rc *RiskCalculator) Alpha(portfolioReturn, beta, benchmarkReturn decimal.Decimal) decimal.Decimal {
	expected := rc.riskFreeRate.Add(beta.Mul(benchmarkReturn.Sub(rc.riskFreeRate)))
	return portfolioReturn.Sub(expected)
}

// LiquidityScore is the value weighted per-type liquidity on a 0-100 scale
func (rc *RiskCalculator) LiquidityScore(assets []models.Asset) decimal.Decimal {
	return WeightedAverage(assets, func(a *models.Asset) decimal.Decimal {
		return decimal.NewFromFloat(rc.liquidity[a.Type])
	})
}

// excessOver returns (r - rf) / denom, or zero for a non-positive denominator
func (rc *RiskCalculator) excessOver(r, denom decimal.Decimal) decimal.Decimal {
	if !denom.IsPositive() {
		return decimal.Zero
	}
	return r.Sub(rc.riskFreeRate).Div(denom)
}
