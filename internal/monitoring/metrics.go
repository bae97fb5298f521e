package monitoring

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type MetricsService interface {
	// HTTP metrics
	RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration)

	// Analytics metrics
	RecordAnalyticsComputation(status string, assetCount int, duration time.Duration)
	RecordCacheLookup(tier string, hit bool)

	// Asset lifecycle metrics
	RecordAssetOperation(operation, status string)
	RecordSnapshot(interval, status string)

	// Messaging metrics
	RecordMessage(queue, status string)
}

type prometheusMetrics struct {
	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	analyticsRunsTotal     *prometheus.CounterVec
	analyticsDuration      prometheus.Histogram
	analyticsPortfolioSize prometheus.Histogram
	cacheLookupsTotal      *prometheus.CounterVec

	assetOperationsTotal *prometheus.CounterVec
	snapshotsTotal       *prometheus.CounterVec
	messagesTotal        *prometheus.CounterVec
}

// NewPrometheusMetrics registers the service metrics with reg
func NewPrometheusMetrics(reg prometheus.Registerer) MetricsService {
	factory := promauto.With(reg)
	m := &prometheusMetrics{}

	m.httpRequestsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_analytics_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	m.httpRequestDuration = factory.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "portfolio_analytics_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	m.analyticsRunsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_analytics_computations_total",
			Help: "Total number of analytics computations",
		},
		[]string{"status"},
	)

	m.analyticsDuration = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "portfolio_analytics_computation_duration_seconds",
			Help:    "Analytics computation duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
		},
	)

	m.analyticsPortfolioSize = factory.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "portfolio_analytics_portfolio_assets",
			Help:    "Number of assets per analyzed portfolio",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250},
		},
	)

	m.cacheLookupsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_analytics_cache_lookups_total",
			Help: "Analytics cache lookups by tier and outcome",
		},
		[]string{"tier", "result"},
	)

	m.assetOperationsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_analytics_asset_operations_total",
			Help: "Asset create, update and delete operations",
		},
		[]string{"operation", "status"},
	)

	m.snapshotsTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_analytics_snapshots_total",
			Help: "Portfolio value snapshots taken",
		},
		[]string{"interval", "status"},
	)

	m.messagesTotal = factory.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_analytics_messages_total",
			Help: "Messages consumed from the broker",
		},
		[]string{"queue", "status"},
	)

	return m
}

func (m *prometheusMetrics) RecordHTTPRequest(method, endpoint string, statusCode int, duration time.Duration) {
	m.httpRequestsTotal.WithLabelValues(method, endpoint, strconv.Itoa(statusCode)).Inc()
	m.httpRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

func (m *prometheusMetrics) RecordAnalyticsComputation(status string, assetCount int, duration time.Duration) {
	m.analyticsRunsTotal.WithLabelValues(status).Inc()
	m.analyticsDuration.Observe(duration.Seconds())
	m.analyticsPortfolioSize.Observe(float64(assetCount))
}

func (m *prometheusMetrics) RecordCacheLookup(tier string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.cacheLookupsTotal.WithLabelValues(tier, result).Inc()
}

func (m *prometheusMetrics) RecordAssetOperation(operation, status string) {
	m.assetOperationsTotal.WithLabelValues(operation, status).Inc()
}

func (m *prometheusMetrics) RecordSnapshot(interval, status string) {
	m.snapshotsTotal.WithLabelValues(interval, status).Inc()
}

func (m *prometheusMetrics) RecordMessage(queue, status string) {
	m.messagesTotal.WithLabelValues(queue, status).Inc()
}

type noopMetrics struct{}

// NewNoopMetrics returns a MetricsService that records nothing
func NewNoopMetrics() MetricsService {
	return noopMetrics{}
}

func (noopMetrics) RecordHTTPRequest(string, string, int, time.Duration) {}
func (noopMetrics) RecordAnalyticsComputation(string, int, time.Duration) {}
func (noopMetrics) RecordCacheLookup(string, bool) {}
func (noopMetrics) RecordAssetOperation(string, string) {}
func (noopMetrics) RecordSnapshot(string, string) {}
func (noopMetrics) RecordMessage(string, string) {}
