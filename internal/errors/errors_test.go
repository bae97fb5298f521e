package errors

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-analytics/internal/models"
)

func TestFromDomain(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
		wantMsg    string
	}{
		{"asset not found", fmt.Errorf("get asset a1: %w", models.ErrAssetNotFound), "ASSET_NOT_FOUND", http.StatusNotFound, "Asset not found"},
		{"portfolio not found", models.ErrPortfolioNotFound, "PORTFOLIO_NOT_FOUND", http.StatusNotFound, "Portfolio not found"},
		{"duplicate asset", models.ErrDuplicateAsset, "DUPLICATE_ASSET", http.StatusConflict, "Asset already exists"},
		{"invalid asset keeps message", fmt.Errorf("%w: currentValue must not be negative", models.ErrInvalidAsset), "INVALID_INPUT", http.StatusBadRequest, "invalid asset: currentValue must not be negative"},
		{"invalid portfolio", fmt.Errorf("%w: name is required", models.ErrInvalidPortfolio), "INVALID_INPUT", http.StatusBadRequest, "invalid portfolio: name is required"},
		{"deadline", fmt.Errorf("analyze: %w", context.DeadlineExceeded), "ANALYTICS_TIMEOUT", http.StatusGatewayTimeout, "Analytics calculation timed out"},
		{"unknown hides cause", errors.New("mongo: connection reset"), "INTERNAL_ERROR", http.StatusInternalServerError, "An internal error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromDomain(tt.err)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantStatus, got.StatusCode)
			assert.Equal(t, tt.wantMsg, got.Message)
			assert.ErrorIs(t, got, tt.err)
		})
	}

	t.Run("nil", func(t *testing.T) {
		assert.Nil(t, FromDomain(nil))
	})

	t.Run("app error passes through", func(t *testing.T) {
		in := WithMessage(ErrInvalidInput, "portfolio_id is required")
		got := FromDomain(fmt.Errorf("list: %w", in))
		assert.Same(t, in, got)
	})
}

func TestWrap_DoesNotMutateSentinel(t *testing.T) {
	cause := errors.New("boom")
	wrapped := Wrap(ErrInternalServer, cause)

	assert.Nil(t, ErrInternalServer.Internal)
	assert.Equal(t, cause, wrapped.Internal)
	assert.Equal(t, ErrInternalServer.Message, wrapped.Error())
}
