package mongo

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"portfolio-analytics/internal/models"
	"portfolio-analytics/pkg/database"
)

func TestAssetDocument_RoundTrip(t *testing.T) {
	reg := database.NewRegistry()
	occupancy := decimal.RequireFromString("0.93")

	asset := models.Asset{
		ID:               "a1",
		PortfolioID:      "p1",
		Type:             models.AssetTypeRealEstate,
		Name:             "Harbor Office",
		AcquisitionDate:  time.Date(2021, 3, 1, 0, 0, 0, 0, time.UTC),
		AcquisitionValue: decimal.NewFromInt(1000000),
		CurrentValue:     decimal.NewFromInt(1200000),
		Location:         models.Location{Country: "US"},
		Status:           models.AssetStatusActive,
		RiskRating:       models.RiskMedium,
		Sector:           "office",
		Performance: models.PerformanceMetrics{
			IRR:  decimal.RequireFromString("0.09"),
			MOIC: decimal.RequireFromString("1.2"),
		},
		Specific: &models.RealEstateMetrics{PropertyType: "office", OccupancyRate: occupancy},
	}

	data, err := bson.MarshalWithRegistry(reg, toAssetDocument(&asset))
	require.NoError(t, err)

	var raw bson.M
	require.NoError(t, bson.Unmarshal(data, &raw))
	assert.Equal(t, "a1", raw["_id"])
	assert.Equal(t, "p1", raw["portfolio_id"])
	assert.Contains(t, raw, "real_estate")
	assert.NotContains(t, raw, "traditional")

	var doc assetDocument
	require.NoError(t, bson.UnmarshalWithRegistry(reg, data, &doc))
	back := doc.toAsset()

	assert.Equal(t, asset.ID, back.ID)
	assert.True(t, back.CurrentValue.Equal(asset.CurrentValue))
	assert.True(t, back.Performance.IRR.Equal(asset.Performance.IRR))
	re, ok := back.Specific.(*models.RealEstateMetrics)
	require.True(t, ok)
	assert.True(t, re.OccupancyRate.Equal(occupancy))
}

func TestAssetDocument_MismatchedVariantIgnored(t *testing.T) {
	doc := assetDocument{
		Asset:       models.Asset{ID: "a1", Type: models.AssetTypeInfrastructure},
		Traditional: &models.TraditionalMetrics{EmployeeCount: 10},
	}
	assert.Nil(t, doc.toAsset().Specific)
}

func TestReverseSnapshots(t *testing.T) {
	s := []models.Snapshot{{ID: "3"}, {ID: "2"}, {ID: "1"}}
	reverseSnapshots(s)
	assert.Equal(t, []string{"1", "2", "3"}, []string{s[0].ID, s[1].ID, s[2].ID})
}
