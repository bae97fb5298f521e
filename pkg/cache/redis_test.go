package cache

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portfolio-analytics/internal/models"
)

func TestEntryHashFields(t *testing.T) {
	storedAt := time.Date(2025, 3, 1, 8, 30, 0, 0, time.UTC)
	result := testResult("0.1234567890123")
	result.Summary.AssetAllocation = map[string]decimal.Decimal{"real_estate": decimal.RequireFromString("1250000.10")}

	fields, err := encodeEntry(&AnalyticsEntry{Fingerprint: "fp-9", Result: result, StoredAt: storedAt})
	require.NoError(t, err)
	assert.Equal(t, "fp-9", fields[fieldFingerprint])

	raw := make(map[string]string, len(fields))
	for k, v := range fields {
		raw[k] = v.(string)
	}
	entry, err := decodeEntry(raw)
	require.NoError(t, err)

	assert.Equal(t, "fp-9", entry.Fingerprint)
	assert.True(t, entry.StoredAt.Equal(storedAt))
	assert.True(t, entry.Result.Summary.WeightedIRR.Equal(decimal.RequireFromString("0.1234567890123")))
	assert.True(t, entry.Result.Summary.AssetAllocation["real_estate"].Equal(decimal.RequireFromString("1250000.1")))
}

func TestDecodeEntry(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		_, err := decodeEntry(map[string]string{})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("partial hash", func(t *testing.T) {
		_, err := decodeEntry(map[string]string{fieldFingerprint: "fp"})
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrNotFound)
	})

	t.Run("corrupt result", func(t *testing.T) {
		_, err := decodeEntry(map[string]string{fieldFingerprint: "fp", fieldResult: "{not json"})
		assert.Error(t, err)
	})
}

func TestEncodeEntry_RejectsEmpty(t *testing.T) {
	_, err := encodeEntry(nil)
	assert.Error(t, err)
	_, err = encodeEntry(&AnalyticsEntry{Fingerprint: "fp"})
	assert.Error(t, err)

	_, err = encodeEntry(&AnalyticsEntry{Fingerprint: "fp", Result: &models.PortfolioAnalytics{}})
	assert.NoError(t, err)
}
