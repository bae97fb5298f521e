package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Attribution dimensions
const (
	DimensionSector    = "sector"
	DimensionGeography = "geography"
	DimensionAssetType = "asset_type"
)

// Labels for placeholder-backed figures
const (
	SourceHistorical         = "historical"
	SourceRiskRatingBand     = "risk_rating_band"
	SourceAttributeHeuristic = "attribute_heuristic"
	SourceMixed              = "mixed"
)

// PortfolioAnalytics is the full result of one engine run
type PortfolioAnalytics struct {
	PortfolioID         string              `json:"portfolioId"`
	Fingerprint         string              `json:"fingerprint"`
	Summary             AnalyticsSummary    `json:"summary"`
	ProfessionalMetrics ProfessionalMetrics `json:"professionalMetrics"`
	CalculatedAt        time.Time           `json:"calculatedAt"`
	FromCache           bool                `json:"fromCache"`
}

// AnalyticsSummary holds the headline portfolio figures
type AnalyticsSummary struct {
	TotalPortfolioValue  decimal.Decimal            `json:"totalPortfolioValue"`
	TotalInvested        decimal.Decimal            `json:"totalInvested"`
	UnrealizedGains      decimal.Decimal            `json:"unrealizedGains"`
	WeightedIRR          decimal.Decimal            `json:"weightedIRR"`
	WeightedMOIC         decimal.Decimal            `json:"weightedMOIC"`
	WeightedTotalReturn  decimal.Decimal            `json:"weightedTotalReturn"`
	AssetCount           int                        `json:"assetCount"`
	AssetAllocation      map[string]decimal.Decimal `json:"assetAllocation"`
	SectorAllocation     map[string]decimal.Decimal `json:"sectorAllocation"`
	GeographicAllocation map[string]decimal.Decimal `json:"geographicAllocation"`
	RiskDistribution     map[string]decimal.Decimal `json:"riskDistribution"`
	AllocationPercent    AllocationPercent          `json:"allocationPercent"`
	ESGScore             ESGSummary                 `json:"esgScore"`
	BenchmarkComparison  BenchmarkComparison        `json:"benchmarkComparison"`
}

// AllocationPercent expresses the allocation maps as percentages of the
// total portfolio value
type AllocationPercent struct {
	AssetType  map[string]decimal.Decimal `json:"assetType"`
	Sector     map[string]decimal.Decimal `json:"sector"`
	Geographic map[string]decimal.Decimal `json:"geographic"`
	Risk       map[string]decimal.Decimal `json:"risk"`
}

// ESGSummary aggregates ESG data over the assets that report it
type ESGSummary struct {
	AverageEnvironmental decimal.Decimal `json:"averageEnvironmental"`
	AverageSocial        decimal.Decimal `json:"averageSocial"`
	AverageGovernance    decimal.Decimal `json:"averageGovernance"`
	AverageOverall       decimal.Decimal `json:"averageOverall"`
	TotalCarbonFootprint decimal.Decimal `json:"totalCarbonFootprint"`
	TotalJobsCreated     int             `json:"totalJobsCreated"`
	AssetsWithESG        int             `json:"assetsWithESG"`
	Certifications       []string        `json:"certifications"`
}

// BenchmarkComparison compares the weighted IRR with the benchmark return
type BenchmarkComparison struct {
	PortfolioReturn decimal.Decimal `json:"portfolioReturn"`
	BenchmarkReturn decimal.Decimal `json:"benchmarkReturn"`
	ActiveReturn    decimal.Decimal `json:"activeReturn"`
	Outperforming   bool            `json:"outperforming"`
}

// ProfessionalMetrics holds the risk, diversification and attribution figures
type ProfessionalMetrics struct {
	SharpeRatio           decimal.Decimal   `json:"sharpeRatio"`
	SortinoRatio          decimal.Decimal   `json:"sortinoRatio"`
	Alpha                 decimal.Decimal   `json:"alpha"`
	Beta                  decimal.Decimal   `json:"beta"`
	Volatility            decimal.Decimal   `json:"volatility"`
	VolatilitySource      string            `json:"volatilitySource"`
	DownsideSource        string            `json:"downsideSource"`
	ValueAtRisk95         decimal.Decimal   `json:"valueAtRisk95"`
	ValueAtRisk99         decimal.Decimal   `json:"valueAtRisk99"`
	ConditionalVaR95      decimal.Decimal   `json:"conditionalVaR95"`
	ConditionalVaR99      decimal.Decimal   `json:"conditionalVaR99"`
	MaxDrawdown           decimal.Decimal   `json:"maxDrawdown"`
	ConcentrationRisk     decimal.Decimal   `json:"concentrationRisk"`
	EffectiveAssets       decimal.Decimal   `json:"effectiveAssets"`
	LiquidityScore        decimal.Decimal   `json:"liquidityScore"`
	CorrelationMatrix     CorrelationMatrix `json:"correlationMatrix"`
	SectorAttribution     AttributionResult `json:"sectorAttribution"`
	GeographicAttribution AttributionResult `json:"geographicAttribution"`
	AssetTypeAttribution  AttributionResult `json:"assetTypeAttribution"`
}

// CorrelationMatrix is a symmetric matrix indexed by AssetIDs with a unit
// diagonal. Source tells whether entries come from return history, the
// attribute heuristic, or both.
type CorrelationMatrix struct {
	AssetIDs []string    `json:"assetIds"`
	Values   [][]float64 `json:"values"`
	Source   string      `json:"source"`
}

// AttributionGroup is the Brinson decomposition of one group
type AttributionGroup struct {
	Group           string          `json:"group"`
	PortfolioWeight decimal.Decimal `json:"portfolioWeight"`
	BenchmarkWeight decimal.Decimal `json:"benchmarkWeight"`
	PortfolioReturn decimal.Decimal `json:"portfolioReturn"`
	BenchmarkReturn decimal.Decimal `json:"benchmarkReturn"`
	Allocation      decimal.Decimal `json:"allocation"`
	Selection       decimal.Decimal `json:"selection"`
	Interaction     decimal.Decimal `json:"interaction"`
	Total           decimal.Decimal `json:"total"`
}

// AttributionResult is the Brinson decomposition over one dimension
type AttributionResult struct {
	Dimension        string             `json:"dimension"`
	Groups           []AttributionGroup `json:"groups"`
	PortfolioReturn  decimal.Decimal    `json:"portfolioReturn"`
	BenchmarkReturn  decimal.Decimal    `json:"benchmarkReturn"`
	ActiveReturn     decimal.Decimal    `json:"activeReturn"`
	TotalAllocation  decimal.Decimal    `json:"totalAllocation"`
	TotalSelection   decimal.Decimal    `json:"totalSelection"`
	TotalInteraction decimal.Decimal    `json:"totalInteraction"`
}

// Clone returns a deep copy so cached results never share maps or slices
// with the values handed to callers
func (a *PortfolioAnalytics) Clone() *PortfolioAnalytics {
	if a == nil {
		return nil
	}
	out := *a

	s := &out.Summary
	s.AssetAllocation = cloneDecimalMap(s.AssetAllocation)
	s.SectorAllocation = cloneDecimalMap(s.SectorAllocation)
	s.GeographicAllocation = cloneDecimalMap(s.GeographicAllocation)
	s.RiskDistribution = cloneDecimalMap(s.RiskDistribution)
	s.AllocationPercent = AllocationPercent{
		AssetType:  cloneDecimalMap(s.AllocationPercent.AssetType),
		Sector:     cloneDecimalMap(s.AllocationPercent.Sector),
		Geographic: cloneDecimalMap(s.AllocationPercent.Geographic),
		Risk:       cloneDecimalMap(s.AllocationPercent.Risk),
	}
	if s.ESGScore.Certifications != nil {
		s.ESGScore.Certifications = append([]string{}, s.ESGScore.Certifications...)
	}

	m := &out.ProfessionalMetrics
	m.CorrelationMatrix = m.CorrelationMatrix.clone()
	m.SectorAttribution = m.SectorAttribution.clone()
	m.GeographicAttribution = m.GeographicAttribution.clone()
	m.AssetTypeAttribution = m.AssetTypeAttribution.clone()
	return &out
}

func (c CorrelationMatrix) clone() CorrelationMatrix {
	if c.AssetIDs != nil {
		c.AssetIDs = append([]string{}, c.AssetIDs...)
	}
	if c.Values != nil {
		rows := make([][]float64, len(c.Values))
		for i, row := range c.Values {
			if row != nil {
				rows[i] = append([]float64{}, row...)
			}
		}
		c.Values = rows
	}
	return c
}

func (r AttributionResult) clone() AttributionResult {
	if r.Groups != nil {
		r.Groups = append([]AttributionGroup{}, r.Groups...)
	}
	return r
}

func cloneDecimalMap(m map[string]decimal.Decimal) map[string]decimal.Decimal {
	if m == nil {
		return nil
	}
	out := make(map[string]decimal.Decimal, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
