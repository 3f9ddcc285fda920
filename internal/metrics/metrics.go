// Package metrics provides Prometheus instrumentation for the dealer engine.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// RecordsTotal counts records written, partitioned by record type.
	RecordsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dealer_records_total",
		Help: "Total number of records created",
	}, []string{"type"})

	// ReportLatency tracks profit/report computation latency by report kind.
	ReportLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dealer_report_latency_seconds",
		Help:    "Report computation latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"report"})

	// InventoryValue tracks the fleet book value from the latest valuation.
	InventoryValue = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dealer_inventory_value",
		Help: "Current total inventory book value",
	})

	// OwnedVehicles tracks the number of vehicles presently owned.
	OwnedVehicles = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dealer_owned_vehicles",
		Help: "Number of vehicles currently in inventory",
	})

	// WebSocketClients tracks connected WebSocket clients.
	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "dealer_websocket_clients",
		Help: "Number of connected WebSocket clients",
	})

	// ValidationRejections counts records rejected by input validation.
	ValidationRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dealer_validation_rejections_total",
		Help: "Records rejected by input validation",
	}, []string{"type"})

	// HTTPRequestsTotal counts HTTP requests by method, path, and status.
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dealer_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "path", "status"})

	// HTTPRequestDuration tracks request duration by method and path.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dealer_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0},
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
		wrapped := &statusWriter{ResponseWriter: w, status: 200}
		next.ServeHTTP(wrapped, r)
		duration := time.Since(start).Seconds()

		// Use the raw path for the label; route cardinality is small here.
		path := r.URL.Path
		HTTPRequestsTotal.WithLabelValues(r.Method, path, strconv.Itoa(wrapped.status)).Inc()
		HTTPRequestDuration.WithLabelValues(r.Method, path).Observe(duration)
	})
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
