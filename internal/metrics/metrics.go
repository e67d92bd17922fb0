// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"wilhelm/internal/expansion"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wilhelm_http_requests_total",
			Help: "Total number of HTTP requests processed",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wilhelm_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"method", "path"},
	)

	// StoreRoundTrips counts graph store traversals per strategy and outcome.
	StoreRoundTrips = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wilhelm_store_round_trips_total",
			Help: "Total number of graph store traversals",
		},
		[]string{"strategy", "outcome"},
	)

	StoreRoundTripDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wilhelm_store_round_trip_duration_seconds",
			Help:    "Duration of a single graph store traversal",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"strategy"},
	)

	// StoreUp is 1 while the last connectivity probe succeeded.
	StoreUp = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "wilhelm_store_up",
			Help: "Whether the graph store answered the last connectivity probe",
		},
	)
)

// ExpansionObserver feeds engine round-trips into the store collectors.
type ExpansionObserver struct{}

func (ExpansionObserver) RoundTrip(strategy expansion.Strategy, d time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	StoreRoundTrips.WithLabelValues(string(strategy), outcome).Inc()
	StoreRoundTripDuration.WithLabelValues(string(strategy)).Observe(d.Seconds())
}

var _ expansion.Observer = ExpansionObserver{}

// SetStoreUp records the outcome of a connectivity probe.
func SetStoreUp(up bool) {
	if up {
		StoreUp.Set(1)
		return
	}
	StoreUp.Set(0)
}

// Middleware records request counts and latencies keyed by the chi route pattern,
// so path parameters do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		path := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				path = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// Handler serves the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
