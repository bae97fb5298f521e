package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Snapshot intervals
const (
	SnapshotIntervalDaily  = "daily"
	SnapshotIntervalManual = "manual"
)

// Snapshot is a point-in-time valuation of a portfolio and its assets.
// Consecutive snapshots form the historical return series used by the
// risk calculations.
type Snapshot struct {
	ID            string                     `bson:"_id" json:"id"`
	PortfolioID   string                     `bson:"portfolio_id" json:"portfolioId"`
	Timestamp     time.Time                  `bson:"timestamp" json:"timestamp"`
	Interval      string                     `bson:"interval" json:"interval"`
	TotalValue    decimal.Decimal            `bson:"total_value" json:"totalValue"`
	TotalInvested decimal.Decimal            `bson:"total_invested" json:"totalInvested"`
	AssetValues   map[string]decimal.Decimal `bson:"asset_values" json:"assetValues"`
	Note          string                     `bson:"note,omitempty" json:"note,omitempty"`
	CreatedAt     time.Time                  `bson:"created_at" json:"createdAt"`
}

// NewSnapshot captures the current valuation of a portfolio
func NewSnapshot(id string, p *Portfolio, interval string, at time.Time) Snapshot {
	values := make(map[string]decimal.Decimal, len(p.Assets))
	for i := range p.Assets {
		values[p.Assets[i].ID] = p.Assets[i].CurrentValue
	}
	return Snapshot{
		ID:            id,
		PortfolioID:   p.ID,
		Timestamp:     at,
		Interval:      interval,
		TotalValue:    p.TotalValue,
		TotalInvested: p.TotalInvested,
		AssetValues:   values,
		CreatedAt:     at,
	}
}
