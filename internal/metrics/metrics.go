// ReportKit - Report Definition State and Chart Series Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reportkit

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Report Definition Metrics
	ReportActions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_actions_total",
			Help: "Total number of reducer actions applied to report definitions",
		},
		[]string{"action"},
	)

	ReportSessions = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "report_sessions",
			Help: "Current number of open report sessions",
		},
	)

	ReportRefreshes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "report_refreshes_total",
			Help: "Total number of report refresh cycles by outcome",
		},
		[]string{"outcome"}, // "success", "empty", "error", "stale"
	)

	// Chart Pipeline Metrics
	ChartTransforms = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chart_transforms_total",
			Help: "Total number of series-to-chart-row transforms",
		},
		[]string{"chart_type"},
	)

	ChartTransformDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "chart_transform_duration_seconds",
			Help:    "Duration of the chart pipeline in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
	)

	// Query Engine Metrics
	QueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "query_duration_seconds",
			Help:    "Duration of report queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"family"}, // "series", "funnel", "conversion", "retention", "sankey"
	)

	QueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_errors_total",
			Help: "Total number of failed report queries",
		},
		[]string{"family"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache_type"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache_type"},
	)

	CacheBypasses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cache_bypasses_total",
			Help: "Total number of lookups that skipped the cache for live data",
		},
		[]string{"cache_type"},
	)

	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache_type"},
	)

	// Circuit Breaker Metrics
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker",
		},
		[]string{"name", "result"}, // "success", "failure", "rejected"
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// API Endpoint Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "API request duration in seconds",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "api_active_requests",
			Help: "Current number of active API requests",
		},
	)

	// Live Refresh Metrics
	LiveClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "live_clients",
			Help: "Current number of websocket clients subscribed to reports",
		},
	)

	LiveBroadcasts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "live_broadcasts_total",
			Help: "Total number of chart updates pushed to live clients",
		},
	)

	LiveDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "live_messages_dropped_total",
			Help: "Total number of live messages dropped for slow or throttled clients",
		},
	)
)

// RecordReportAction counts one applied reducer action.
func RecordReportAction(action string) {
	ReportActions.WithLabelValues(action).Inc()
}

// RecordRefresh counts a refresh cycle outcome.
func RecordRefresh(outcome string) {
	ReportRefreshes.WithLabelValues(outcome).Inc()
}

// RecordTransform records one run of the chart pipeline.
func RecordTransform(chartType string, duration time.Duration) {
	ChartTransforms.WithLabelValues(chartType).Inc()
	ChartTransformDuration.Observe(duration.Seconds())
}

// RecordQuery records a query's duration and, when err is non-nil, its failure.
func RecordQuery(family string, duration time.Duration, err error) {
	QueryDuration.WithLabelValues(family).Observe(duration.Seconds())
	if err != nil {
		QueryErrors.WithLabelValues(family).Inc()
	}
}

// RecordCacheHit records a cache hit for the given cache.
func RecordCacheHit(cacheType string) {
	CacheHits.WithLabelValues(cacheType).Inc()
}

// RecordCacheMiss records a cache miss for the given cache.
func RecordCacheMiss(cacheType string) {
	CacheMisses.WithLabelValues(cacheType).Inc()
}

// RecordCacheBypass records a lookup that went straight to the backend.
func RecordCacheBypass(cacheType string) {
	CacheBypasses.WithLabelValues(cacheType).Inc()
}

// SetCacheSize reports the current number of entries in a cache.
func SetCacheSize(cacheType string, n int) {
	CacheSize.WithLabelValues(cacheType).Set(float64(n))
}

// RecordBreakerRequest records a call through a circuit breaker.
func RecordBreakerRequest(name, result string) {
	CircuitBreakerRequests.WithLabelValues(name, result).Inc()
}

// RecordBreakerTransition records a state change. States are the breaker's
// own names ("closed", "half-open", "open").
func RecordBreakerTransition(name, from, to string) {
	CircuitBreakerTransitions.WithLabelValues(name, from, to).Inc()
	CircuitBreakerState.WithLabelValues(name).Set(breakerStateValue(to))
}

func breakerStateValue(state string) float64 {
	switch state {
	case "half-open":
		return 1
	case "open":
		return 2
	default:
		return 0
	}
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest adjusts the in-flight request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// TrackSession adjusts the open session gauge.
func TrackSession(inc bool) {
	if inc {
		ReportSessions.Inc()
	} else {
		ReportSessions.Dec()
	}
}

// TrackLiveClient adjusts the connected websocket client gauge.
func TrackLiveClient(inc bool) {
	if inc {
		LiveClients.Inc()
	} else {
		LiveClients.Dec()
	}
}

// RecordLiveBroadcast counts one message queued to a live client.
func RecordLiveBroadcast() {
	LiveBroadcasts.Inc()
}

// RecordLiveDropped counts one message dropped by a client throttle or full buffer.
func RecordLiveDropped() {
	LiveDropped.Inc()
}
