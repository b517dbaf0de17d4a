// Package metrics provides Prometheus metrics for the watchrank service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the watchrank service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Core Business Metrics
	progressUpdates prometheus.Counter
	progressCreates prometheus.Counter
	rankingQueries  *prometheus.CounterVec
	rankingLatency  *prometheus.HistogramVec

	// Degrade-gracefully tracking: a lookup miss means a ranking row was
	// served without identity details.
	directoryLookupMisses *prometheus.CounterVec

	// Repository Metrics
	repositoryShardCount      prometheus.Gauge
	repositoryRecordsTotal    prometheus.Gauge
	repositoryRecordsPerShard *prometheus.GaugeVec
	repositoryUpdateLatency   prometheus.Histogram
	repositoryQueryLatency    prometheus.Histogram

	// HTTP Performance Metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error Metrics
	errorRateByComponent *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "watchrank",
		subsystem:        "progress",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

// GetRegistry returns the registry metrics are collected into, for exposition.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.progressUpdates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "updates_total",
		Help:      "Total number of progress upserts applied",
	})

	m.progressCreates = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "creates_total",
		Help:      "Total number of progress records created (first report per user/topic)",
	})

	m.rankingQueries = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "ranking_queries_total",
			Help:      "Total number of ranking computations by kind",
		},
		[]string{"kind"},
	)

	m.rankingLatency = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "ranking_query_latency_milliseconds",
			Help:      "Histogram of ranking computation latency in milliseconds by kind",
			Buckets:   m.histogramBuckets,
		},
		[]string{"kind"},
	)

	m.directoryLookupMisses = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "directory_lookup_misses_total",
			Help:      "Total number of directory lookups that degraded a ranking row",
		},
		[]string{"directory"},
	)

	m.repositoryShardCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_shard_count",
		Help:      "Number of shards in the in-memory progress store",
	})

	m.repositoryRecordsTotal = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_records_total",
		Help:      "Total number of progress records stored",
	})

	m.repositoryRecordsPerShard = auto.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "repository_records_per_shard",
			Help:      "Number of progress records per shard",
		},
		[]string{"shard_id"},
	)

	m.repositoryUpdateLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_update_latency_milliseconds",
		Help:      "Repository upsert latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.repositoryQueryLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "repository_query_latency_milliseconds",
		Help:      "Repository read latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component and type",
		},
		[]string{"component", "error_type"},
	)

	m.errorRateByEndpoint = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_endpoint_total",
			Help:      "Total number of errors by endpoint and method",
		},
		[]string{"endpoint", "method", "error_type"},
	)
}

// Package-level helpers operating on the global manager.

// RecordProgressUpdated increments the upsert counter.
func RecordProgressUpdated() {
	if globalManager != nil && globalManager.enabled {
		globalManager.progressUpdates.Inc()
	}
}

// RecordProgressCreated increments the record-creation counter.
func RecordProgressCreated() {
	if globalManager != nil && globalManager.enabled {
		globalManager.progressCreates.Inc()
	}
}

// RecordRankingQuery counts a ranking computation ("subject" or "global").
func RecordRankingQuery(kind string) {
	if globalManager != nil && globalManager.enabled {
		globalManager.rankingQueries.WithLabelValues(kind).Inc()
	}
}

// RecordRankingQueryLatency observes a ranking computation duration.
func RecordRankingQueryLatency(kind string, latencyMs float64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.rankingLatency.WithLabelValues(kind).Observe(latencyMs)
	}
}

// RecordDirectoryLookupMiss counts a degraded ranking row.
func RecordDirectoryLookupMiss(dir string) {
	if globalManager != nil && globalManager.enabled {
		globalManager.directoryLookupMisses.WithLabelValues(dir).Inc()
	}
}

// UpdateRepositoryShardCount sets the shard count gauge.
func UpdateRepositoryShardCount(count int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.repositoryShardCount.Set(float64(count))
	}
}

// UpdateRepositoryRecordsTotal sets the total records gauge.
func UpdateRepositoryRecordsTotal(count int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.repositoryRecordsTotal.Set(float64(count))
	}
}

// UpdateRepositoryRecordsPerShard sets the per-shard records gauge.
func UpdateRepositoryRecordsPerShard(shardID string, count int) {
	if globalManager != nil && globalManager.enabled {
		globalManager.repositoryRecordsPerShard.WithLabelValues(shardID).Set(float64(count))
	}
}

// RecordRepositoryUpdateLatency observes an upsert duration.
func RecordRepositoryUpdateLatency(latencyMs float64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.repositoryUpdateLatency.Observe(latencyMs)
	}
}

// RecordRepositoryQueryLatency observes a repository read duration.
func RecordRepositoryQueryLatency(latencyMs float64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.repositoryQueryLatency.Observe(latencyMs)
	}
}

// RecordHTTPRequest counts an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager != nil && globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration observes an HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	if globalManager != nil && globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
	}
}

// RecordErrorByComponent counts an error attributed to a component.
func RecordErrorByComponent(component, errorType string) {
	if globalManager != nil && globalManager.enabled {
		globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// RecordErrorByEndpoint counts an error attributed to an HTTP endpoint.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager != nil && globalManager.enabled {
		globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}
