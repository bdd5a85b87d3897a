// Package metrics provides Prometheus instrumentation for the ledger service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// LedgerMutations counts applied ledger mutations by operation.
	LedgerMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "option_ledger_mutations_total",
		Help: "Ledger mutations applied in memory",
	}, []string{"operation"})

	// PersistFailures counts failed store writes by logical key.
	PersistFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "option_ledger_persist_failures_total",
		Help: "Failed writes to the key-value store",
	}, []string{"key"})

	// QuoteFetches counts premium lookups by source and outcome (ok, no_data, error).
	QuoteFetches = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "option_ledger_quote_fetches_total",
		Help: "Quote provider lookups",
	}, []string{"source", "outcome"})

	// Refreshes counts refresh runs by outcome (committed, superseded, failed).
	Refreshes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "option_ledger_refreshes_total",
		Help: "Quote refresh runs",
	}, []string{"outcome"})

	// OpenContracts tracks the number of contracts with non-zero net quantity.
	OpenContracts = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "option_ledger_open_contracts",
		Help: "Contracts with an open position",
	})

	// HTTPRequestsTotal counts HTTP requests by method, route, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "option_ledger_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and route.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "option_ledger_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5},
	}, []string{"method", "path"})
)

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware returns an HTTP middleware that records request metrics.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		path := routePattern(r)
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
}

// routePattern returns the matched chi route (e.g. /api/ledger/trades/{id})
// so ids do not end up as label values.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return "unmatched"
}

// statusWriter wraps http.ResponseWriter to capture the status code.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
