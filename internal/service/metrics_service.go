package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the HTTP
// surface, the cache and the allocation engine.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	cacheHits       prometheus.Counter
	cacheMisses     prometheus.Counter
	generationRuns  prometheus.Counter
	meetingsPlaced  prometheus.Counter
	meetingsSkipped prometheus.Counter
	evictionsTotal  prometheus.Counter
	repairMoves     prometheus.Counter
}

// NewMetricsService registers the core collectors.
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

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "conflict_cache_hits_total",
		Help: "Total conflict-report cache hits",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "conflict_cache_misses_total",
		Help: "Total conflict-report cache misses",
	})

	generationRuns := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_generation_runs_total",
		Help: "Total schedule generation runs",
	})

	meetingsPlaced := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_meetings_placed_total",
		Help: "Total meetings placed by the allocation engine",
	})

	meetingsSkipped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_meetings_skipped_total",
		Help: "Total meetings the allocation engine gave up on",
	})

	evictionsTotal := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_evictions_total",
		Help: "Total successful backtracking evictions",
	})

	repairMoves := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "schedule_repair_moves_total",
		Help: "Total meetings shifted by the repair pass",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, cacheHits, cacheMisses,
		generationRuns, meetingsPlaced, meetingsSkipped, evictionsTotal, repairMoves, goroutines)

	return &MetricsService{
		registry:        registry,
		handler:         promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		cacheHits:       cacheHits,
		cacheMisses:     cacheMisses,
		generationRuns:  generationRuns,
		meetingsPlaced:  meetingsPlaced,
		meetingsSkipped: meetingsSkipped,
		evictionsTotal:  evictionsTotal,
		repairMoves:     repairMoves,
	}
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

// RecordCacheOperation counts a conflict-cache lookup.
func (m *MetricsService) RecordCacheOperation(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.cacheHits.Inc()
	} else {
		m.cacheMisses.Inc()
	}
}

// RecordGeneration records the outcome counters of one generation run.
func (m *MetricsService) RecordGeneration(placed, skipped, evictions int) {
	if m == nil {
		return
	}
	m.generationRuns.Inc()
	m.meetingsPlaced.Add(float64(placed))
	m.meetingsSkipped.Add(float64(skipped))
	m.evictionsTotal.Add(float64(evictions))
}

// RecordRepair records the number of meetings shifted by one repair pass.
func (m *MetricsService) RecordRepair(moves int) {
	if m == nil {
		return
	}
	m.repairMoves.Add(float64(moves))
}
