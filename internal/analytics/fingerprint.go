package analytics

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"portfolio-analytics/internal/models"
)

// fingerprintAsset is the subset of an asset the calculators read. Any
// change to these fields must produce a new fingerprint.
type fingerprintAsset struct {
	ID               string                    `json:"id"`
	Type             models.AssetType          `json:"t"`
	CurrentValue     string                    `json:"cv"`
	AcquisitionValue string                    `json:"av"`
	Performance      models.PerformanceMetrics `json:"p"`
	ESG              *models.ESGMetrics        `json:"e,omitempty"`
	Sector           string                    `json:"s,omitempty"`
	Country          string                    `json:"c,omitempty"`
	Risk             models.RiskRating         `json:"r"`
	Status           models.AssetStatus        `json:"st"`
}

type fingerprintSnapshot struct {
	Timestamp time.Time         `json:"ts"`
	Total     string            `json:"v"`
	Assets    map[string]string `json:"a,omitempty"`
}

// Fingerprint returns a content hash of the analytics inputs. Assets are
// ordered by id so list order does not matter. Decimals encode through
// String, which drops trailing zeros, so 1.50 and 1.5 hash alike.
func Fingerprint(assets []models.Asset, snapshots []models.Snapshot) string {
	entries := make([]fingerprintAsset, len(assets))
	for i := range assets {
		a := &assets[i]
		entries[i] = fingerprintAsset{
			ID:               a.ID,
			Type:             a.Type,
			CurrentValue:     canonical(a.CurrentValue),
			AcquisitionValue: canonical(a.AcquisitionValue),
			Performance:      a.Performance,
			ESG:              a.ESG,
			Sector:           a.Sector,
			Country:          a.Location.Country,
			Risk:             a.RiskRating,
			Status:           a.Status,
		}
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })

	history := make([]fingerprintSnapshot, len(snapshots))
	for i, s := range snapshots {
		values := make(map[string]string, len(s.AssetValues))
		for id, v := range s.AssetValues {
			values[id] = canonical(v)
		}
		history[i] = fingerprintSnapshot{Timestamp: s.Timestamp.UTC(), Total: canonical(s.TotalValue), Assets: values}
	}
	sort.Slice(history, func(i, j int) bool { return history[i].Timestamp.Before(history[j].Timestamp) })

	// json.Marshal sorts map keys, so the encoding is stable
	payload, _ := json.Marshal(struct {
		Assets  []fingerprintAsset    `json:"assets"`
		History []fingerprintSnapshot `json:"history"`
	}{entries, history})

	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}

func canonical(d decimal.Decimal) string {
	return d.String()
}
