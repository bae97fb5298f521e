package models

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PerformanceUpdate carries the performance fields of a partial update
type PerformanceUpdate struct {
	IRR                 *decimal.Decimal `json:"irr,omitempty"`
	MOIC                *decimal.Decimal `json:"moic,omitempty"`
	TotalReturn         *decimal.Decimal `json:"totalReturn,omitempty"`
	TVPI                *decimal.Decimal `json:"tvpi,omitempty"`
	DPI                 *decimal.Decimal `json:"dpi,omitempty"`
	RVPI                *decimal.Decimal `json:"rvpi,omitempty"`
	BenchmarkComparison *decimal.Decimal `json:"benchmarkComparison,omitempty"`
}

// AssetUpdate is a partial update. Nil fields are left untouched.
type AssetUpdate struct {
	Name             *string            `json:"name,omitempty"`
	Description      *string            `json:"description,omitempty"`
	AcquisitionDate  *time.Time         `json:"acquisitionDate,omitempty"`
	AcquisitionValue *decimal.Decimal   `json:"acquisitionValue,omitempty"`
	CurrentValue     *decimal.Decimal   `json:"currentValue,omitempty"`
	Location         *Location          `json:"location,omitempty"`
	Status           *AssetStatus       `json:"status,omitempty"`
	RiskRating       *RiskRating        `json:"riskRating,omitempty"`
	Sector           *string            `json:"sector,omitempty"`
	Tags             []string           `json:"tags,omitempty"`
	Performance      *PerformanceUpdate `json:"performance,omitempty"`
	ESG              *ESGMetrics        `json:"esgMetrics,omitempty"`
	SpecificMetrics  json.RawMessage    `json:"specificMetrics,omitempty"`
}

// IsEmpty reports whether the update changes nothing
func (u *AssetUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.AcquisitionDate == nil &&
		u.AcquisitionValue == nil && u.CurrentValue == nil && u.Location == nil &&
		u.Status == nil && u.RiskRating == nil && u.Sector == nil && u.Tags == nil &&
		u.Performance == nil && u.ESG == nil && len(u.SpecificMetrics) == 0
}

// Apply merges the update into the asset, re-normalizes it and
// validates the result. The asset is left untouched on error.
func (a *Asset) Apply(u AssetUpdate, now time.Time) error {
	next := *a
	if u.Name != nil {
		next.Name = *u.Name
	}
	if u.Description != nil {
		next.Description = *u.Description
	}
	if u.AcquisitionDate != nil {
		next.AcquisitionDate = *u.AcquisitionDate
	}
	if u.AcquisitionValue != nil {
		next.AcquisitionValue = *u.AcquisitionValue
	}
	if u.CurrentValue != nil {
		next.CurrentValue = *u.CurrentValue
	}
	if u.Location != nil {
		next.Location = *u.Location
	}
	if u.Status != nil {
		next.Status = *u.Status
	}
	if u.RiskRating != nil {
		next.RiskRating = *u.RiskRating
	}
	if u.Sector != nil {
		next.Sector = *u.Sector
	}
	if u.Tags != nil {
		next.Tags = append([]string(nil), u.Tags...)
	}
	if p := u.Performance; p != nil {
		if p.IRR != nil {
			next.Performance.IRR = *p.IRR
		}
		if p.MOIC != nil {
			next.Performance.MOIC = *p.MOIC
			next.Performance.MOICDerived = false
		}
		if p.TotalReturn != nil {
			next.Performance.TotalReturn = *p.TotalReturn
		}
		if p.TVPI != nil {
			next.Performance.TVPI = p.TVPI
		}
		if p.DPI != nil {
			next.Performance.DPI = p.DPI
		}
		if p.RVPI != nil {
			next.Performance.RVPI = p.RVPI
		}
		if p.BenchmarkComparison != nil {
			next.Performance.BenchmarkComparison = p.BenchmarkComparison
		}
	}
	if u.ESG != nil {
		esg := *u.ESG
		next.ESG = &esg
	} else if a.ESG != nil {
		esg := *a.ESG
		next.ESG = &esg
	}
	if len(u.SpecificMetrics) > 0 {
		specific, err := DecodeSpecificMetrics(next.Type, u.SpecificMetrics)
		if err != nil {
			return err
		}
		next.Specific = specific
	}

	next.Normalize(now)
	if err := next.Validate(); err != nil {
		return err
	}
	*a = next
	return nil
}
