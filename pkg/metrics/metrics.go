// Package metrics provides Prometheus instrumentation for the shop API.
//
// Wire it up once during server bootstrap:
//
//	r.Use(metrics.Middleware())
//	r.Get("/metrics", "metrics", metrics.Handler())
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ─────────────────────────────────────────────
// HTTP metrics
// ─────────────────────────────────────────────

var (
	// RequestDuration tracks request latency by method, path, and status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "mebelshop",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts all HTTP requests.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mebelshop",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	// RequestInFlight tracks how many requests are currently being served.
	RequestInFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "mebelshop",
		Subsystem: "http",
		Name:      "requests_in_flight",
		Help:      "Number of HTTP requests currently being served.",
	})
)

// ─────────────────────────────────────────────
// Shop metrics
// ─────────────────────────────────────────────

var (
	// CartOperations counts cart mutations by kind.
	CartOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mebelshop",
			Subsystem: "cart",
			Name:      "operations_total",
			Help:      "Cart mutations by operation.",
		},
		[]string{"operation"}, // "add" | "update" | "remove" | "clear"
	)

	// QuantityClamped counts how often a requested quantity was pulled
	// back into the valid range by stock or the lower bound.
	QuantityClamped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mebelshop",
			Subsystem: "cart",
			Name:      "quantity_clamped_total",
			Help:      "Quantities clamped to the allowed range.",
		},
		[]string{"bound"}, // "stock" | "floor"
	)

	// OrdersPlaced counts checkouts by payment outcome.
	OrdersPlaced = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mebelshop",
			Subsystem: "orders",
			Name:      "placed_total",
			Help:      "Orders placed, labelled by final status.",
		},
		[]string{"status"}, // "pending" | "paid" | "cancelled" | "expired"
	)

	// SearchQueries counts catalog searches by match outcome.
	SearchQueries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mebelshop",
			Subsystem: "catalog",
			Name:      "search_queries_total",
			Help:      "Fuzzy search queries by result outcome.",
		},
		[]string{"outcome"}, // "hit" | "miss"
	)

	// QueueJobsProcessed counts background jobs by status.
	QueueJobsProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mebelshop",
			Subsystem: "queue",
			Name:      "jobs_processed_total",
			Help:      "Total queue jobs processed.",
		},
		[]string{"status"}, // "success" | "failed"
	)

	// CacheHits / CacheMisses track response cache effectiveness.
	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mebelshop",
			Subsystem: "cache",
			Name:      "hits_total",
			Help:      "Total response cache hits.",
		},
		[]string{"strategy"}, // "cache_first" | "network_first"
	)
	CacheMisses = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mebelshop",
			Subsystem: "cache",
			Name:      "misses_total",
			Help:      "Total response cache misses.",
		},
		[]string{"strategy"},
	)
)

// ─────────────────────────────────────────────
// Registry
// ─────────────────────────────────────────────

// DefaultRegistry holds every metric the shop exposes.
var DefaultRegistry = prometheus.NewRegistry()

func init() {
	DefaultRegistry.MustRegister(collectors.NewGoCollector())
	DefaultRegistry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	DefaultRegistry.MustRegister(
		RequestDuration,
		RequestTotal,
		RequestInFlight,
		CartOperations,
		QuantityClamped,
		OrdersPlaced,
		SearchQueries,
		QueueJobsProcessed,
		CacheHits,
		CacheMisses,
	)
}

// MustRegister adds custom collectors to the shop registry.
func MustRegister(c ...prometheus.Collector) {
	DefaultRegistry.MustRegister(c...)
}

// ─────────────────────────────────────────────
// HTTP middleware and /metrics handler
// ─────────────────────────────────────────────

// responseRecorder wraps http.ResponseWriter to capture the status code.
type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware records duration, total count, and in-flight gauge per request.
func Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			path := r.URL.Path

			RequestInFlight.Inc()
			defer RequestInFlight.Dec()

			rr := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rr, r)

			status := strconv.Itoa(rr.status)
			RequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
			RequestTotal.WithLabelValues(r.Method, path, status).Inc()
		})
	}
}

// Handler exposes the Prometheus metrics page. Mount on GET /metrics.
func Handler() http.HandlerFunc {
	h := promhttp.HandlerFor(DefaultRegistry, promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	})
	return h.ServeHTTP
}
