package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"portfolio-analytics/internal/config"
	"portfolio-analytics/internal/models"
)

// ErrNotFound is returned when a portfolio has no stored entry
var ErrNotFound = errors.New("analytics entry not found in cache")

const analyticsKeyPrefix = "analytics:"

// Hash fields of a stored analytics entry
const (
	fieldFingerprint = "fingerprint"
	fieldResult      = "result"
	fieldStoredAt    = "stored_at"
)

// AnalyticsEntry pairs a result with the fingerprint it was computed for
type AnalyticsEntry struct {
	Fingerprint string
	Result      *models.PortfolioAnalytics
	StoredAt    time.Time
}

// RedisStore keeps one analytics entry per portfolio as a Redis hash under
// analytics:<portfolioID>
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection
func NewRedisStore(cfg config.CacheConfig) (*RedisStore, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:            fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:        cfg.Password,
		DB:              cfg.DB,
		MaxRetries:      cfg.MaxRetries,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConnections,
		DialTimeout:     cfg.DialTimeout,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		PoolTimeout:     cfg.PoolTimeout,
		ConnMaxIdleTime: cfg.IdleTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisStore{client: rdb}, nil
}

// GetEntry loads the entry of a portfolio
func (r *RedisStore) GetEntry(ctx context.Context, portfolioID string) (*AnalyticsEntry, error) {
	fields, err := r.client.HGetAll(ctx, analyticsKey(portfolioID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read analytics for portfolio %s: %w", portfolioID, err)
	}
	return decodeEntry(fields)
}

// SetEntry replaces the entry of a portfolio and refreshes its TTL
func (r *RedisStore) SetEntry(ctx context.Context, portfolioID string, entry *AnalyticsEntry, ttl time.Duration) error {
	fields, err := encodeEntry(entry)
	if err != nil {
		return err
	}

	key := analyticsKey(portfolioID)
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, fields)
		if ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store analytics for portfolio %s: %w", portfolioID, err)
	}
	return nil
}

// DeleteEntry drops the entry of a portfolio
func (r *RedisStore) DeleteEntry(ctx context.Context, portfolioID string) error {
	return r.client.Del(ctx, analyticsKey(portfolioID)).Err()
}

// Close closes the Redis connection
func (r *RedisStore) Close() error {
	return r.client.Close()
}

// Ping checks the Redis connection
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func analyticsKey(portfolioID string) string {
	return analyticsKeyPrefix + portfolioID
}

func encodeEntry(entry *AnalyticsEntry) (map[string]interface{}, error) {
	if entry == nil || entry.Result == nil {
		return nil, fmt.Errorf("cannot store an empty analytics entry")
	}
	result, err := json.Marshal(entry.Result)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal analytics: %w", err)
	}
	return map[string]interface{}{
		fieldFingerprint: entry.Fingerprint,
		fieldResult:      string(result),
		fieldStoredAt:    entry.StoredAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

// decodeEntry rebuilds an entry from its hash fields. HGETALL on a missing
// key returns an empty map.
func decodeEntry(fields map[string]string) (*AnalyticsEntry, error) {
	if len(fields) == 0 {
		return nil, ErrNotFound
	}
	raw, ok := fields[fieldResult]
	if !ok || fields[fieldFingerprint] == "" {
		return nil, fmt.Errorf("analytics entry is missing fields")
	}

	var result models.PortfolioAnalytics
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analytics: %w", err)
	}

	entry := &AnalyticsEntry{Fingerprint: fields[fieldFingerprint], Result: &result}
	if ts, err := time.Parse(time.RFC3339Nano, fields[fieldStoredAt]); err == nil {
		entry.StoredAt = ts
	}
	return entry, nil
}
