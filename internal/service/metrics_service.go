package service

import (
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Planning run outcomes used as metric labels.
const (
	PlanningOutcomeSuccess   = "success"
	PlanningOutcomeFetchFail = "fetch_failed"
)

// MetricsService encapsulates Prometheus instrumentation for the API and the planning runs.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheLatency    prometheus.Observer
	cacheWrite      prometheus.Observer
	cacheHitRatio   prometheus.Gauge
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter

	planningRuns        *prometheus.CounterVec
	planningDuration    prometheus.Observer
	skippedRecords      *prometheus.CounterVec
	suggestionsTotal    prometheus.Counter
	remindersSent       prometheus.Counter
	reminderFailures    prometheus.Counter
	enrichmentFallbacks prometheus.Counter

	cacheHitCount  uint64
	cacheMissCount uint64
}

// NewMetricsService registers the Prometheus collectors on a private registry.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	cacheLatency := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_latency_seconds",
		Help:    "Latency for cache lookups",
		Buckets: prometheus.DefBuckets,
	})

	cacheWrite := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "cache_write_seconds",
		Help:    "Latency for cache set operations",
		Buckets: prometheus.DefBuckets,
	})

	cacheHitRatio := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "cache_hit_ratio",
		Help: "Ratio of cache hits to total cache lookups",
	})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_hits_total",
		Help: "Total cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "cache_misses_total",
		Help: "Total cache misses",
	})

	planningRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planning_runs_total",
		Help: "Planning runs by outcome",
	}, []string{"outcome"})

	planningDuration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "planning_run_duration_seconds",
		Help:    "Wall time of a planning run",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60},
	})

	skippedRecords := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "planning_skipped_records_total",
		Help: "Records skipped during planning, by stage",
	}, []string{"stage"})

	suggestionsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "planning_suggested_times_total",
		Help: "Study start times suggested",
	})

	remindersSent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reminders_sent_total",
		Help: "Deadline reminders delivered",
	})

	reminderFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reminder_failures_total",
		Help: "Deadline reminders that failed to deliver",
	})

	enrichmentFallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "enrichment_fallbacks_total",
		Help: "Recommendation enrichments that fell back to the deterministic list",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheLatency, cacheWrite, cacheHitRatio, cacheHits, cacheMisses,
		planningRuns, planningDuration, skippedRecords, suggestionsTotal, remindersSent, reminderFailures, enrichmentFallbacks, goroutines)

	return &MetricsService{
		registry:            registry,
		handler:             promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:     requestDuration,
		requestTotal:        requestTotal,
		cacheLatency:        cacheLatency,
		cacheWrite:          cacheWrite,
		cacheHitRatio:       cacheHitRatio,
		cacheHits:           cacheHits,
		cacheMisses:         cacheMisses,
		planningRuns:        planningRuns,
		planningDuration:    planningDuration,
		skippedRecords:      skippedRecords,
		suggestionsTotal:    suggestionsTotal,
		remindersSent:       remindersSent,
		reminderFailures:    reminderFailures,
		enrichmentFallbacks: enrichmentFallbacks,
	}
}

// Registry exposes the underlying registry, mainly for tests.
func (m *MetricsService) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordCacheOperation records cache hit/miss metrics and updates hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheHits.Inc()
		atomic.AddUint64(&m.cacheHitCount, 1)
	} else {
		m.cacheMisses.Inc()
		atomic.AddUint64(&m.cacheMissCount, 1)
	}
	hits := atomic.LoadUint64(&m.cacheHitCount)
	total := hits + atomic.LoadUint64(&m.cacheMissCount)
	if total > 0 {
		m.cacheHitRatio.Set(float64(hits) / float64(total))
	}
}

// ObserveCacheWrite tracks the duration for cache write operations.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrite.Observe(duration.Seconds())
}

// ObservePlanningRun records one planning run.
func (m *MetricsService) ObservePlanningRun(outcome string, duration time.Duration, suggestedTimes int) {
	if m == nil {
		return
	}
	m.planningRuns.WithLabelValues(outcome).Inc()
	m.planningDuration.Observe(duration.Seconds())
	m.suggestionsTotal.Add(float64(suggestedTimes))
}

// RecordSkippedRecord counts a malformed or failing item skipped in a planning stage.
func (m *MetricsService) RecordSkippedRecord(stage string) {
	if m == nil {
		return
	}
	m.skippedRecords.WithLabelValues(stage).Inc()
}

// RecordReminder counts a delivered or failed reminder.
func (m *MetricsService) RecordReminder(delivered bool) {
	if m == nil {
		return
	}
	if delivered {
		m.remindersSent.Inc()
		return
	}
	m.reminderFailures.Inc()
}

// RecordEnrichmentFallback counts an enrichment that fell back to deterministic recommendations.
func (m *MetricsService) RecordEnrichmentFallback() {
	if m == nil {
		return
	}
	m.enrichmentFallbacks.Inc()
}
