// Package validator registers the custom binding rules used by request models.
package validator

import (
	"reflect"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"portfolio-analytics/internal/models"
)

// Register registers all custom validators with the Gin binding engine.
func Register() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		RegisterWith(v)
	}
}

// RegisterWith installs the rules on v. Decimal fields are exposed to the
// numeric tags (gte, lte) as float64.
func RegisterWith(v *validator.Validate) {
	v.RegisterCustomTypeFunc(decimalValue, decimal.Decimal{})
	_ = v.RegisterValidation("asset_type", validateAssetType)
	_ = v.RegisterValidation("asset_status", validateAssetStatus)
	_ = v.RegisterValidation("risk_rating", validateRiskRating)
}

func decimalValue(field reflect.Value) interface{} {
	if d, ok := field.Interface().(decimal.Decimal); ok {
		f, _ := d.Float64()
		return f
	}
	return nil
}

func validateAssetType(fl validator.FieldLevel) bool {
	return models.AssetType(fl.Field().String()).Valid()
}

func validateAssetStatus(fl validator.FieldLevel) bool {
	return models.AssetStatus(fl.Field().String()).Valid()
}

func validateRiskRating(fl validator.FieldLevel) bool {
	return models.RiskRating(fl.Field().String()).Valid()
}
