package validator

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"portfolio-analytics/internal/models"
)

func newValidate() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	RegisterWith(v)
	return v
}

func validAsset() models.Asset {
	return models.Asset{
		Type:             models.AssetTypeInfrastructure,
		Name:             "Solar park",
		AcquisitionValue: decimal.NewFromInt(100),
		CurrentValue:     decimal.NewFromInt(120),
		Location:         models.Location{Country: "ES"},
		RiskRating:       models.RiskLow,
	}
}

func TestRegisterWith_AssetRules(t *testing.T) {
	v := newValidate()

	tests := []struct {
		name    string
		mutate  func(*models.Asset)
		wantErr bool
	}{
		{"valid", func(a *models.Asset) {}, false},
		{"unknown type", func(a *models.Asset) { a.Type = "crypto" }, true},
		{"unknown risk", func(a *models.Asset) { a.RiskRating = "extreme" }, true},
		{"empty status allowed", func(a *models.Asset) { a.Status = "" }, false},
		{"unknown status", func(a *models.Asset) { a.Status = "sold" }, true},
		{"negative current value", func(a *models.Asset) { a.CurrentValue = decimal.NewFromInt(-1) }, true},
		{"negative acquisition value", func(a *models.Asset) { a.AcquisitionValue = decimal.RequireFromString("-0.01") }, true},
		{"missing name", func(a *models.Asset) { a.Name = "" }, true},
		{"missing country", func(a *models.Asset) { a.Location.Country = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := validAsset()
			tt.mutate(&a)
			err := v.Struct(a)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
