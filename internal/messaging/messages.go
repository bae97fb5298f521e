package messaging

import (
	"time"

	"github.com/shopspring/decimal"

	"portfolio-analytics/internal/models"
)

// Asset event types, also used as routing keys
const (
	AssetCreated = "asset.created"
	AssetUpdated = "asset.updated"
	AssetDeleted = "asset.deleted"
)

// AssetEvent announces a change to an asset record
type AssetEvent struct {
	EventID     string        `json:"event_id"` // UUID
	Type        string        `json:"type"`     // asset.created | asset.updated | asset.deleted
	AssetID     string        `json:"asset_id"`
	PortfolioID string        `json:"portfolio_id"`
	Asset       *models.Asset `json:"asset,omitempty"` // absent on delete
	OccurredAt  time.Time     `json:"occurred_at"`
}

// ValuationUpdate is a revaluation pushed by an upstream pricing source.
// Performance fields are optional.
type ValuationUpdate struct {
	AssetID      string           `json:"asset_id"`
	CurrentValue decimal.Decimal  `json:"current_value"`
	IRR          *decimal.Decimal `json:"irr,omitempty"`
	MOIC         *decimal.Decimal `json:"moic,omitempty"`
	TotalReturn  *decimal.Decimal `json:"total_return,omitempty"`
	Source       string           `json:"source,omitempty"`
	ValuedAt     time.Time        `json:"valued_at"`
}

// AssetUpdate converts the valuation into a partial asset update
func (v ValuationUpdate) AssetUpdate() models.AssetUpdate {
	value := v.CurrentValue
	u := models.AssetUpdate{CurrentValue: &value}
	if v.IRR != nil || v.MOIC != nil || v.TotalReturn != nil {
		u.Performance = &models.PerformanceUpdate{
			IRR:         v.IRR,
			MOIC:        v.MOIC,
			TotalReturn: v.TotalReturn,
		}
	}
	return u
}
