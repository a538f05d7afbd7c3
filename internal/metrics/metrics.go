package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
	BookingOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_operations_total",
			Help: "Booking operations by operation and result kind",
		},
		[]string{"operation", "result"},
	)
	RateLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "exchange_rate_lookups_total",
			Help: "Exchange rate lookups by source (cache, remote) and result",
		},
		[]string{"source", "result"},
	)
	JobRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scheduled_job_runs_total",
			Help: "Scheduled job runs by job name and result",
		},
		[]string{"job", "result"},
	)
)

// NormalizePath keeps the first path segment after /api so ids do not
// explode label cardinality.
func NormalizePath(p string) string {
	p = strings.TrimPrefix(p, "/")
	p = strings.TrimPrefix(p, "api/")
	if idx := strings.Index(p, "/"); idx >= 0 {
		p = p[:idx]
	}
	if p == "" {
		return "root"
	}
	return p
}

// ObserveBooking records the outcome of a booking operation. result is the
// error kind, or "ok".
func ObserveBooking(operation, result string) {
	if result == "" {
		result = "error"
	}
	BookingOutcomes.WithLabelValues(operation, result).Inc()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/metrics" {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		path := NormalizePath(r.URL.Path)
		RequestTotal.WithLabelValues(r.Method, path, strconv.Itoa(rec.status)).Inc()
		RequestDuration.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}
