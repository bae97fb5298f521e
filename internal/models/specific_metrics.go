package models

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// SpecificMetrics is the variant block of an asset record. Exactly one
// implementation exists per AssetType.
type SpecificMetrics interface {
	AssetType() AssetType
	validate() error
}

// CompanyStage is the funding stage of a privately held company
type CompanyStage string

const (
	StageSeed    CompanyStage = "seed"
	StageSeriesA CompanyStage = "series_a"
	StageSeriesB CompanyStage = "series_b"
	StageSeriesC CompanyStage = "series_c"
	StageGrowth  CompanyStage = "growth"
	StageMature  CompanyStage = "mature"
)

// TraditionalMetrics describes a private equity style holding
type TraditionalMetrics struct {
	CompanyStage        CompanyStage    `bson:"company_stage" json:"companyStage"`
	EmployeeCount       int             `bson:"employee_count" json:"employeeCount"`
	Revenue             decimal.Decimal `bson:"revenue" json:"revenue"`
	EBITDA              decimal.Decimal `bson:"ebitda" json:"ebitda"`
	OwnershipPercentage decimal.Decimal `bson:"ownership_percentage" json:"ownershipPercentage"`
	BoardSeats          int             `bson:"board_seats" json:"boardSeats"`
}

func (m *TraditionalMetrics) AssetType() AssetType { return AssetTypeTraditional }

func (m *TraditionalMetrics) validate() error {
	switch m.CompanyStage {
	case "", StageSeed, StageSeriesA, StageSeriesB, StageSeriesC, StageGrowth, StageMature:
	default:
		return fmt.Errorf("unknown company stage %q", m.CompanyStage)
	}
	if m.EmployeeCount < 0 || m.BoardSeats < 0 {
		return fmt.Errorf("employee count and board seats must not be negative")
	}
	if m.OwnershipPercentage.IsNegative() || m.OwnershipPercentage.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("ownership percentage must be within [0, 100]")
	}
	return nil
}

// RealEstateMetrics describes a property holding
type RealEstateMetrics struct {
	PropertyType       string          `bson:"property_type" json:"propertyType"`
	TotalSquareFootage decimal.Decimal `bson:"total_square_footage" json:"totalSquareFootage"`
	OccupancyRate      decimal.Decimal `bson:"occupancy_rate" json:"occupancyRate"`
	CapRate            decimal.Decimal `bson:"cap_rate" json:"capRate"`
	NOIYield           decimal.Decimal `bson:"noi_yield" json:"noiYield"`
}

func (m *RealEstateMetrics) AssetType() AssetType { return AssetTypeRealEstate }

func (m *RealEstateMetrics) validate() error {
	if m.TotalSquareFootage.IsNegative() {
		return fmt.Errorf("square footage must not be negative")
	}
	if m.OccupancyRate.IsNegative() {
		return fmt.Errorf("occupancy rate must not be negative")
	}
	return nil
}

// InfrastructureCategory classifies infrastructure holdings
type InfrastructureCategory string

const (
	CategoryEnergy    InfrastructureCategory = "energy"
	CategoryTransport InfrastructureCategory = "transport"
	CategoryWater     InfrastructureCategory = "water"
	CategoryTelecom   InfrastructureCategory = "telecom"
	CategorySocial    InfrastructureCategory = "social"
)

// InfrastructureMetrics describes an infrastructure holding
type InfrastructureMetrics struct {
	AssetCategory       InfrastructureCategory `bson:"asset_category" json:"assetCategory"`
	CapacityUtilization decimal.Decimal        `bson:"capacity_utilization" json:"capacityUtilization"`
	AvailabilityRate    decimal.Decimal        `bson:"availability_rate" json:"availabilityRate"`
	ContractedRevenue   decimal.Decimal        `bson:"contracted_revenue" json:"contractedRevenue"`
	MaintenanceScore    decimal.Decimal        `bson:"maintenance_score" json:"maintenanceScore"`
}

func (m *InfrastructureMetrics) AssetType() AssetType { return AssetTypeInfrastructure }

func (m *InfrastructureMetrics) validate() error {
	switch m.AssetCategory {
	case "", CategoryEnergy, CategoryTransport, CategoryWater, CategoryTelecom, CategorySocial:
	default:
		return fmt.Errorf("unknown infrastructure category %q", m.AssetCategory)
	}
	if m.ContractedRevenue.IsNegative() {
		return fmt.Errorf("contracted revenue must not be negative")
	}
	return nil
}

// DecodeSpecificMetrics decodes the variant block matching t
func DecodeSpecificMetrics(t AssetType, raw json.RawMessage) (SpecificMetrics, error) {
	var m SpecificMetrics
	switch t {
	case AssetTypeTraditional:
		m = &TraditionalMetrics{}
	case AssetTypeRealEstate:
		m = &RealEstateMetrics{}
	case AssetTypeInfrastructure:
		m = &InfrastructureMetrics{}
	default:
		return nil, fmt.Errorf("%w: unknown asset type %q", ErrInvalidAsset, t)
	}
	if len(raw) == 0 || string(raw) == "null" {
		return m, nil
	}
	if err := json.Unmarshal(raw, m); err != nil {
		return nil, fmt.Errorf("failed to decode %s metrics: %w", t, err)
	}
	return m, nil
}

type assetAlias Asset

type assetJSON struct {
	*assetAlias
	SpecificMetrics json.RawMessage `json:"specificMetrics,omitempty"`
}

// MarshalJSON emits the asset with its variant block under specificMetrics
func (a Asset) MarshalJSON() ([]byte, error) {
	out := assetJSON{assetAlias: (*assetAlias)(&a)}
	if a.Specific != nil {
		raw, err := json.Marshal(a.Specific)
		if err != nil {
			return nil, err
		}
		out.SpecificMetrics = raw
	}
	return json.Marshal(out)
}

// UnmarshalJSON dispatches specificMetrics on assetType
func (a *Asset) UnmarshalJSON(data []byte) error {
	in := assetJSON{assetAlias: (*assetAlias)(a)}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	if a.Type == "" {
		if len(in.SpecificMetrics) > 0 && string(in.SpecificMetrics) != "null" {
			return fmt.Errorf("%w: specificMetrics given without assetType", ErrInvalidAsset)
		}
		return nil
	}
	specific, err := DecodeSpecificMetrics(a.Type, in.SpecificMetrics)
	if err != nil {
		return err
	}
	a.Specific = specific
	return nil
}
