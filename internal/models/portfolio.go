package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Portfolio groups the assets held by one investment vehicle. Totals
// are derived from Assets by Recalculate and never edited directly.
type Portfolio struct {
	ID              string          `bson:"_id" json:"id"`
	Name            string          `bson:"name" json:"name" binding:"required"`
	Description     string          `bson:"description,omitempty" json:"description,omitempty"`
	Currency        string          `bson:"currency" json:"currency"`
	Assets          []Asset         `bson:"-" json:"assets"`
	AssetCount      int             `bson:"asset_count" json:"assetCount"`
	TotalValue      decimal.Decimal `bson:"total_value" json:"totalValue"`
	TotalInvested   decimal.Decimal `bson:"total_invested" json:"totalInvested"`
	UnrealizedValue decimal.Decimal `bson:"unrealized_value" json:"unrealizedValue"`
	CreatedAt       time.Time       `bson:"created_at" json:"createdAt"`
	UpdatedAt       time.Time       `bson:"updated_at" json:"updatedAt"`
}

// Recalculate refreshes the derived totals from the asset list
func (p *Portfolio) Recalculate() {
	total := decimal.Zero
	invested := decimal.Zero
	for i := range p.Assets {
		total = total.Add(p.Assets[i].CurrentValue)
		invested = invested.Add(p.Assets[i].AcquisitionValue)
	}
	p.TotalValue = total
	p.TotalInvested = invested
	p.UnrealizedValue = total.Sub(invested)
	p.AssetCount = len(p.Assets)
}

// FindAsset returns the asset with the given id and its index, or -1
func (p *Portfolio) FindAsset(id string) (*Asset, int) {
	for i := range p.Assets {
		if p.Assets[i].ID == id {
			return &p.Assets[i], i
		}
	}
	return nil, -1
}

// AddAsset attaches an asset to the portfolio
func (p *Portfolio) AddAsset(a Asset) error {
	if _, idx := p.FindAsset(a.ID); idx >= 0 {
		return fmt.Errorf("%w: %s", ErrDuplicateAsset, a.ID)
	}
	a.PortfolioID = p.ID
	p.Assets = append(p.Assets, a)
	p.Recalculate()
	return nil
}
