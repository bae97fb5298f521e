package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// Money and ratios travel as plain JSON numbers.
	decimal.MarshalJSONWithoutQuotes = true
}

// AssetType discriminates the asset record variants
type AssetType string

const (
	AssetTypeTraditional    AssetType = "traditional"
	AssetTypeRealEstate     AssetType = "real_estate"
	AssetTypeInfrastructure AssetType = "infrastructure"
)

// Valid reports whether t is a known asset type
func (t AssetType) Valid() bool {
	switch t {
	case AssetTypeTraditional, AssetTypeRealEstate, AssetTypeInfrastructure:
		return true
	}
	return false
}

// AssetStatus represents where an asset is in its holding period
type AssetStatus string

const (
	AssetStatusActive      AssetStatus = "active"
	AssetStatusUnderReview AssetStatus = "under_review"
	AssetStatusExited      AssetStatus = "exited"
	AssetStatusDisposed    AssetStatus = "disposed"
)

// Valid reports whether s is a known status
func (s AssetStatus) Valid() bool {
	switch s {
	case AssetStatusActive, AssetStatusUnderReview, AssetStatusExited, AssetStatusDisposed:
		return true
	}
	return false
}

// RiskRating is the qualitative risk tier of an asset
type RiskRating string

const (
	RiskLow      RiskRating = "low"
	RiskMedium   RiskRating = "medium"
	RiskHigh     RiskRating = "high"
	RiskCritical RiskRating = "critical"
)

// Valid reports whether r is a known tier
func (r RiskRating) Valid() bool {
	switch r {
	case RiskLow, RiskMedium, RiskHigh, RiskCritical:
		return true
	}
	return false
}

// Coordinates is an optional geographic position
type Coordinates struct {
	Lat float64 `bson:"lat" json:"lat"`
	Lng float64 `bson:"lng" json:"lng"`
}

// Location describes where an asset is held
type Location struct {
	Country     string       `bson:"country" json:"country" binding:"required"`
	Region      string       `bson:"region" json:"region"`
	City        string       `bson:"city,omitempty" json:"city,omitempty"`
	Coordinates *Coordinates `bson:"coordinates,omitempty" json:"coordinates,omitempty"`
}

// PerformanceMetrics holds the reported return figures of an asset.
// IRR and total return are fractions (0.15 means 15%).
type PerformanceMetrics struct {
	IRR                 decimal.Decimal  `bson:"irr" json:"irr"`
	MOIC                decimal.Decimal  `bson:"moic" json:"moic" binding:"gte=0"`
	MOICDerived         bool             `bson:"moic_derived" json:"moicDerived"`
	TotalReturn         decimal.Decimal  `bson:"total_return" json:"totalReturn"`
	TVPI                *decimal.Decimal `bson:"tvpi,omitempty" json:"tvpi,omitempty"`
	DPI                 *decimal.Decimal `bson:"dpi,omitempty" json:"dpi,omitempty"`
	RVPI                *decimal.Decimal `bson:"rvpi,omitempty" json:"rvpi,omitempty"`
	BenchmarkComparison *decimal.Decimal `bson:"benchmark_comparison,omitempty" json:"benchmarkComparison,omitempty"`
}

// deriveMOIC fills MOIC from current / acquisition value unless it was
// reported explicitly. A derived MOIC follows every revaluation.
func (p *PerformanceMetrics) deriveMOIC(current, acquisition decimal.Decimal) {
	if !p.MOICDerived && !p.MOIC.IsZero() {
		return
	}
	if !acquisition.IsPositive() {
		if p.MOICDerived {
			p.MOIC = decimal.Zero
		}
		return
	}
	p.MOIC = current.Div(acquisition)
	p.MOICDerived = true
}

// ESGMetrics holds environmental, social and governance data.
// Scores live on a 0-10 scale.
type ESGMetrics struct {
	EnvironmentalScore decimal.Decimal  `bson:"environmental_score" json:"environmentalScore"`
	SocialScore        decimal.Decimal  `bson:"social_score" json:"socialScore"`
	GovernanceScore    decimal.Decimal  `bson:"governance_score" json:"governanceScore"`
	OverallScore       decimal.Decimal  `bson:"overall_score" json:"overallScore"`
	CarbonFootprint    *decimal.Decimal `bson:"carbon_footprint,omitempty" json:"carbonFootprint,omitempty"`
	JobsCreated        *int             `bson:"jobs_created,omitempty" json:"jobsCreated,omitempty"`
	Certifications     []string         `bson:"certifications,omitempty" json:"certifications,omitempty"`
}

var (
	esgScoreMin = decimal.Zero
	esgScoreMax = decimal.NewFromInt(10)
)

// Clamp forces every score into the [0, 10] range
func (e *ESGMetrics) Clamp() {
	e.EnvironmentalScore = clampScore(e.EnvironmentalScore)
	e.SocialScore = clampScore(e.SocialScore)
	e.GovernanceScore = clampScore(e.GovernanceScore)
	e.OverallScore = clampScore(e.OverallScore)
}

func clampScore(d decimal.Decimal) decimal.Decimal {
	if d.LessThan(esgScoreMin) {
		return esgScoreMin
	}
	if d.GreaterThan(esgScoreMax) {
		return esgScoreMax
	}
	return d
}

// Asset is a single holding of a portfolio. The variant specific
// block is carried by Specific and always matches Type.
type Asset struct {
	ID               string             `bson:"_id" json:"id"`
	PortfolioID      string             `bson:"portfolio_id" json:"portfolioId"`
	Type             AssetType          `bson:"asset_type" json:"assetType" binding:"required,asset_type"`
	Name             string             `bson:"name" json:"name" binding:"required"`
	Description      string             `bson:"description,omitempty" json:"description,omitempty"`
	AcquisitionDate  time.Time          `bson:"acquisition_date" json:"acquisitionDate"`
	AcquisitionValue decimal.Decimal    `bson:"acquisition_value" json:"acquisitionValue" binding:"gte=0"`
	CurrentValue     decimal.Decimal    `bson:"current_value" json:"currentValue" binding:"gte=0"`
	Location         Location           `bson:"location" json:"location"`
	Status           AssetStatus        `bson:"status" json:"status" binding:"omitempty,asset_status"`
	RiskRating       RiskRating         `bson:"risk_rating" json:"riskRating" binding:"required,risk_rating"`
	Sector           string             `bson:"sector,omitempty" json:"sector,omitempty"`
	Tags             []string           `bson:"tags,omitempty" json:"tags,omitempty"`
	Performance      PerformanceMetrics `bson:"performance" json:"performance"`
	ESG              *ESGMetrics        `bson:"esg_metrics,omitempty" json:"esgMetrics,omitempty"`
	Specific         SpecificMetrics    `bson:"-" json:"-" binding:"-"`
	LastUpdated      time.Time          `bson:"last_updated" json:"lastUpdated"`
}

// HasSector reports whether the asset carries a sector classification
func (a *Asset) HasSector() bool {
	return a.Sector != ""
}

// Normalize applies the derived defaults every stored asset must satisfy
func (a *Asset) Normalize(now time.Time) {
	if a.Status == "" {
		a.Status = AssetStatusActive
	}
	if a.ESG != nil {
		a.ESG.Clamp()
	}
	a.Performance.deriveMOIC(a.CurrentValue, a.AcquisitionValue)
	a.Tags = dedupeTags(a.Tags)
	a.LastUpdated = now
}

// Validate checks the invariants of an asset record
func (a *Asset) Validate() error {
	if a.Name == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidAsset)
	}
	if !a.Type.Valid() {
		return fmt.Errorf("%w: unknown asset type %q", ErrInvalidAsset, a.Type)
	}
	if !a.RiskRating.Valid() {
		return fmt.Errorf("%w: unknown risk rating %q", ErrInvalidAsset, a.RiskRating)
	}
	if a.Status != "" && !a.Status.Valid() {
		return fmt.Errorf("%w: unknown status %q", ErrInvalidAsset, a.Status)
	}
	if a.CurrentValue.IsNegative() {
		return fmt.Errorf("%w: current value must not be negative", ErrInvalidAsset)
	}
	if a.AcquisitionValue.IsNegative() {
		return fmt.Errorf("%w: acquisition value must not be negative", ErrInvalidAsset)
	}
	if a.Performance.MOIC.IsNegative() {
		return fmt.Errorf("%w: moic must not be negative", ErrInvalidAsset)
	}
	if a.Specific != nil {
		if a.Specific.AssetType() != a.Type {
			return fmt.Errorf("%w: %s metrics on a %s asset", ErrInvalidAsset, a.Specific.AssetType(), a.Type)
		}
		if err := a.Specific.validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidAsset, err)
		}
	}
	return nil
}

func dedupeTags(tags []string) []string {
	if len(tags) == 0 {
		return tags
	}
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
