package config

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// defaultJWTSecret is the placeholder secret used when JWT_SECRET is unset
const defaultJWTSecret = "default-secret-key"

// Benchmark dimensions as they appear in ANALYTICS_BENCHMARK_* variables
var benchmarkDimensions = []string{"sector", "geography", "asset_type"}

// Config represents the application configuration
type Config struct {
	Server    ServerConfig    `json:"server"`
	Database  DatabaseConfig  `json:"database"`
	Cache     CacheConfig     `json:"cache"`
	RabbitMQ  RabbitMQConfig  `json:"rabbitmq"`
	Auth      AuthConfig      `json:"auth"`
	Scheduler SchedulerConfig `json:"scheduler"`
	Logger    LoggerConfig    `json:"logger"`
	Analytics AnalyticsConfig `json:"analytics"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Port           int    `json:"port"`
	Host           string `json:"host"`
	Environment    string `json:"environment"`
	ReadTimeout    int    `json:"read_timeout"`
	WriteTimeout   int    `json:"write_timeout"`
	MaxHeaderBytes int    `json:"max_header_bytes"`
	EnableTLS      bool   `json:"enable_tls"`
	TLSCertFile    string `json:"tls_cert_file"`
	TLSKeyFile     string `json:"tls_key_file"`
}

// DatabaseConfig represents MongoDB configuration
type DatabaseConfig struct {
	URI            string `json:"uri"`
	Database       string `json:"database"`
	MaxPoolSize    int    `json:"max_pool_size"`
	MinPoolSize    int    `json:"min_pool_size"`
	MaxIdleTime    int    `json:"max_idle_time"`
	ConnectTimeout int    `json:"connect_timeout"`
	SocketTimeout  int    `json:"socket_timeout"`
	EnableSSL      bool   `json:"enable_ssl"`
	ReplicaSet     string `json:"replica_set"`
}

// CacheConfig represents the analytics cache tiers: an in-process ccache
// and an optional Redis
type CacheConfig struct {
	RedisEnabled       bool          `json:"redis_enabled"`
	Host               string        `json:"host"`
	Port               int           `json:"port"`
	Password           string        `json:"password"`
	DB                 int           `json:"db"`
	MaxRetries         int           `json:"max_retries"`
	PoolSize           int           `json:"pool_size"`
	MinIdleConnections int           `json:"min_idle_connections"`
	DialTimeout        time.Duration `json:"dial_timeout"`
	ReadTimeout        time.Duration `json:"read_timeout"`
	WriteTimeout       time.Duration `json:"write_timeout"`
	PoolTimeout        time.Duration `json:"pool_timeout"`
	IdleTimeout        time.Duration `json:"idle_timeout"`

	// Local tier
	LocalMaxSize      int64         `json:"local_max_size"`
	LocalItemsToPrune uint32        `json:"local_items_to_prune"`
	LocalTTL          time.Duration `json:"local_ttl"`

	// Distributed tier
	AnalyticsTTL time.Duration `json:"analytics_ttl"`
}

// RabbitMQConfig represents RabbitMQ configuration
type RabbitMQConfig struct {
	Enabled  bool   `json:"enabled"`
	URL      string `json:"url"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Username string `json:"username"`
	Password string `json:"password"`
	VHost    string `json:"vhost"`

	// Asset events
	AssetExchange string `json:"asset_exchange"`

	// Valuation feed
	ValuationExchange   string `json:"valuation_exchange"`
	ValuationQueue      string `json:"valuation_queue"`
	ValuationRoutingKey string `json:"valuation_routing_key"`

	// Consumer settings
	ConsumerTag   string `json:"consumer_tag"`
	PrefetchCount int    `json:"prefetch_count"`

	// Connection settings
	Heartbeat            time.Duration `json:"heartbeat"`
	MaxReconnectAttempts int           `json:"max_reconnect_attempts"`
	ReconnectDelay       time.Duration `json:"reconnect_delay"`
}

// AMQPURL returns the connection URL, building it from the parts when URL is unset
func (r RabbitMQConfig) AMQPURL() string {
	if r.URL != "" {
		return r.URL
	}
	vhost := strings.TrimPrefix(r.VHost, "/")
	return fmt.Sprintf("amqp://%s:%s@%s:%d/%s", r.Username, r.Password, r.Host, r.Port, vhost)
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	JWTSecret   string `json:"jwt_secret"`
	JWTIssuer   string `json:"jwt_issuer"`
	RequireAuth bool   `json:"require_auth"`
}

// SchedulerConfig represents background job scheduling configuration
type SchedulerConfig struct {
	Enabled           bool          `json:"enabled"`
	RunOnStart        bool          `json:"run_on_start"`
	SnapshotInterval  string        `json:"snapshot_interval"` // Cron expression
	CleanupInterval   string        `json:"cleanup_interval"`  // Cron expression, empty disables pruning
	SnapshotRetention time.Duration `json:"snapshot_retention"`
	TimeZone          string        `json:"timezone"`
	JobTimeout        time.Duration `json:"job_timeout"`
}

// LoggerConfig represents logging configuration
type LoggerConfig struct {
	Level      string `json:"level"`
	Format     string `json:"format"`
	Output     string `json:"output"`
	Filename   string `json:"filename"`
	MaxSize    int    `json:"max_size"`
	MaxAge     int    `json:"max_age"`
	MaxBackups int    `json:"max_backups"`
	Compress   bool   `json:"compress"`
}

// AnalyticsConfig holds the engine's financial assumptions
type AnalyticsConfig struct {
	RiskFreeRate       float64       `json:"risk_free_rate"`
	CalculationTimeout time.Duration `json:"calculation_timeout"`
	HistoryLimit       int           `json:"history_limit"`

	// Volatility per risk rating, overriding the built-in bands
	VolatilityBands map[string]float64 `json:"volatility_bands"`

	// Benchmark, keyed by dimension then group
	BenchmarkReturns        map[string]map[string]float64 `json:"benchmark_returns"`
	BenchmarkWeights        map[string]map[string]float64 `json:"benchmark_weights"`
	BenchmarkFallbackReturn float64                       `json:"benchmark_fallback_return"`
}

// Load loads configuration from environment variables
func Load() *Config {
	// Load .env file if exists
	godotenv.Load()

	config := &Config{
		Server: ServerConfig{
			Port:           getEnvInt("SERVER_PORT", 8083),
			Host:           getEnv("SERVER_HOST", "0.0.0.0"),
			Environment:    getEnv("ENVIRONMENT", "development"),
			ReadTimeout:    getEnvInt("SERVER_READ_TIMEOUT", 30),
			WriteTimeout:   getEnvInt("SERVER_WRITE_TIMEOUT", 30),
			MaxHeaderBytes: getEnvInt("SERVER_MAX_HEADER_BYTES", 1048576),
			EnableTLS:      getEnvBool("SERVER_ENABLE_TLS", false),
			TLSCertFile:    getEnv("SERVER_TLS_CERT_FILE", ""),
			TLSKeyFile:     getEnv("SERVER_TLS_KEY_FILE", ""),
		},

		Database: DatabaseConfig{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "portfolio_analytics"),
			MaxPoolSize:    getEnvInt("MONGODB_MAX_POOL_SIZE", 100),
			MinPoolSize:    getEnvInt("MONGODB_MIN_POOL_SIZE", 5),
			MaxIdleTime:    getEnvInt("MONGODB_MAX_IDLE_TIME", 300),
			ConnectTimeout: getEnvInt("MONGODB_CONNECT_TIMEOUT", 10),
			SocketTimeout:  getEnvInt("MONGODB_SOCKET_TIMEOUT", 30),
			EnableSSL:      getEnvBool("MONGODB_ENABLE_SSL", false),
			ReplicaSet:     getEnv("MONGODB_REPLICA_SET", ""),
		},

		Cache: CacheConfig{
			RedisEnabled:       getEnvBool("REDIS_ENABLED", true),
			Host:               getEnv("REDIS_HOST", "localhost"),
			Port:               getEnvInt("REDIS_PORT", 6379),
			Password:           getEnv("REDIS_PASSWORD", ""),
			DB:                 getEnvInt("REDIS_DB", 0),
			MaxRetries:         getEnvInt("REDIS_MAX_RETRIES", 3),
			PoolSize:           getEnvInt("REDIS_POOL_SIZE", 10),
			MinIdleConnections: getEnvInt("REDIS_MIN_IDLE_CONNECTIONS", 5),
			DialTimeout:        getEnvDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
			ReadTimeout:        getEnvDuration("REDIS_READ_TIMEOUT", 3*time.Second),
			WriteTimeout:       getEnvDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
			PoolTimeout:        getEnvDuration("REDIS_POOL_TIMEOUT", 4*time.Second),
			IdleTimeout:        getEnvDuration("REDIS_IDLE_TIMEOUT", 5*time.Minute),
			LocalMaxSize:       int64(getEnvInt("CACHE_LOCAL_MAX_SIZE", 1000)),
			LocalItemsToPrune:  uint32(getEnvInt("CACHE_LOCAL_ITEMS_TO_PRUNE", 100)),
			LocalTTL:           getEnvDuration("CACHE_LOCAL_TTL", 5*time.Minute),
			AnalyticsTTL:       getEnvDuration("CACHE_ANALYTICS_TTL", 30*time.Minute),
		},

		RabbitMQ: RabbitMQConfig{
			Enabled:              getEnvBool("RABBITMQ_ENABLED", true),
			URL:                  getEnv("RABBITMQ_URL", ""),
			Host:                 getEnv("RABBITMQ_HOST", "localhost"),
			Port:                 getEnvInt("RABBITMQ_PORT", 5672),
			Username:             getEnv("RABBITMQ_USERNAME", "guest"),
			Password:             getEnv("RABBITMQ_PASSWORD", "guest"),
			VHost:                getEnv("RABBITMQ_VHOST", "/"),
			AssetExchange:        getEnv("RABBITMQ_ASSET_EXCHANGE", "portfolio.assets"),
			ValuationExchange:    getEnv("RABBITMQ_VALUATION_EXCHANGE", "portfolio.valuations"),
			ValuationQueue:       getEnv("RABBITMQ_VALUATION_QUEUE", "portfolio.valuations.analytics"),
			ValuationRoutingKey:  getEnv("RABBITMQ_VALUATION_ROUTING_KEY", "valuation.#"),
			ConsumerTag:          getEnv("RABBITMQ_CONSUMER_TAG", "portfolio-analytics"),
			PrefetchCount:        getEnvInt("RABBITMQ_PREFETCH_COUNT", 10),
			Heartbeat:            getEnvDuration("RABBITMQ_HEARTBEAT", 30*time.Second),
			MaxReconnectAttempts: getEnvInt("RABBITMQ_MAX_RECONNECT_ATTEMPTS", 5),
			ReconnectDelay:       getEnvDuration("RABBITMQ_RECONNECT_DELAY", 5*time.Second),
		},

		Auth: AuthConfig{
			JWTSecret:   getEnv("JWT_SECRET", defaultJWTSecret),
			JWTIssuer:   getEnv("JWT_ISSUER", ""),
			RequireAuth: getEnvBool("REQUIRE_AUTH", false),
		},

		Scheduler: SchedulerConfig{
			Enabled:           getEnvBool("SCHEDULER_ENABLED", true),
			RunOnStart:        getEnvBool("SCHEDULER_RUN_ON_START", false),
			SnapshotInterval:  getEnv("SCHEDULER_SNAPSHOT_INTERVAL", "0 0 * * *"), // Daily at midnight
			CleanupInterval:   getEnv("SCHEDULER_CLEANUP_INTERVAL", "0 3 * * 0"),  // Weekly, Sunday 03:00
			SnapshotRetention: getEnvDuration("SCHEDULER_SNAPSHOT_RETENTION", 2*365*24*time.Hour),
			TimeZone:          getEnv("SCHEDULER_TIMEZONE", "UTC"),
			JobTimeout:        getEnvDuration("SCHEDULER_JOB_TIMEOUT", 30*time.Minute),
		},

		Logger: LoggerConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Format:     getEnv("LOG_FORMAT", "json"),
			Output:     getEnv("LOG_OUTPUT", "stdout"),
			Filename:   getEnv("LOG_FILENAME", ""),
			MaxSize:    getEnvInt("LOG_MAX_SIZE", 100),
			MaxAge:     getEnvInt("LOG_MAX_AGE", 28),
			MaxBackups: getEnvInt("LOG_MAX_BACKUPS", 3),
			Compress:   getEnvBool("LOG_COMPRESS", true),
		},

		Analytics: AnalyticsConfig{
			RiskFreeRate:            getEnvFloat("ANALYTICS_RISK_FREE_RATE", 0.02),
			CalculationTimeout:      getEnvDuration("ANALYTICS_CALCULATION_TIMEOUT", 10*time.Second),
			HistoryLimit:            getEnvInt("ANALYTICS_HISTORY_LIMIT", 365),
			VolatilityBands:         getEnvFloatMap("ANALYTICS_VOLATILITY_BANDS"),
			BenchmarkReturns:        getEnvDimensionMaps("ANALYTICS_BENCHMARK_RETURNS"),
			BenchmarkWeights:        getEnvDimensionMaps("ANALYTICS_BENCHMARK_WEIGHTS"),
			BenchmarkFallbackReturn: getEnvFloat("ANALYTICS_BENCHMARK_FALLBACK_RETURN", 0.10),
		},
	}

	return config
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvFloatMap parses "a=0.1,b=0.2". Malformed pairs are skipped.
func getEnvFloatMap(key string) map[string]float64 {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	return parseFloatMap(value)
}

func parseFloatMap(value string) map[string]float64 {
	out := make(map[string]float64)
	for _, pair := range strings.Split(value, ",") {
		k, v, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || strings.TrimSpace(k) == "" {
			continue
		}
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			continue
		}
		out[strings.TrimSpace(k)] = f
	}
	return out
}

// getEnvDimensionMaps reads <prefix>_SECTOR, <prefix>_GEOGRAPHY and
// <prefix>_ASSET_TYPE into a map keyed by dimension
func getEnvDimensionMaps(prefix string) map[string]map[string]float64 {
	out := make(map[string]map[string]float64)
	for _, dim := range benchmarkDimensions {
		if m := getEnvFloatMap(prefix + "_" + strings.ToUpper(dim)); len(m) > 0 {
			out[dim] = m
		}
	}
	return out
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.Database.URI == "" {
		return fmt.Errorf("database URI is required")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}

	if c.Cache.LocalMaxSize <= 0 {
		return fmt.Errorf("local cache max size must be positive")
	}

	if c.Analytics.CalculationTimeout <= 0 {
		return fmt.Errorf("analytics calculation timeout must be positive")
	}

	if c.Analytics.HistoryLimit < 0 {
		return fmt.Errorf("analytics history limit cannot be negative")
	}

	if c.Analytics.RiskFreeRate < -1 || c.Analytics.RiskFreeRate > 1 {
		return fmt.Errorf("risk free rate %.4f is outside [-1, 1]", c.Analytics.RiskFreeRate)
	}

	for rating, vol := range c.Analytics.VolatilityBands {
		if vol < 0 {
			return fmt.Errorf("volatility band %s cannot be negative", rating)
		}
	}

	// benchmark weights for a dimension must describe a whole portfolio
	for dim, weights := range c.Analytics.BenchmarkWeights {
		sum := 0.0
		for _, w := range weights {
			if w < 0 {
				return fmt.Errorf("benchmark weights for %s cannot be negative", dim)
			}
			sum += w
		}
		if math.Abs(sum-1) > 0.001 {
			return fmt.Errorf("benchmark weights for %s sum to %.4f, expected 1", dim, sum)
		}
	}

	if c.Auth.RequireAuth && (c.Auth.JWTSecret == "" || c.Auth.JWTSecret == defaultJWTSecret) {
		return fmt.Errorf("JWT_SECRET must be set to a non-default value when REQUIRE_AUTH is enabled")
	}

	return nil
}
