package metrics

import (
	"regexp"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RequestDuration tracks HTTP request duration in seconds by method, path, status.
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// RequestTotal counts HTTP requests by method, path, status.
	RequestTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	// AuthAttempts counts register/login outcomes: success, conflict, invalid, denied or error.
	AuthAttempts = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notes_auth_attempts_total",
			Help: "Register and login attempts by result",
		},
		[]string{"action", "result"},
	)

	// NoteMutations counts successful note writes by operation (create, update, delete).
	NoteMutations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notes_mutations_total",
			Help: "Successful note mutations by operation",
		},
		[]string{"op"},
	)

	// RateLimited counts requests rejected with 429.
	RateLimited = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notes_rate_limited_total",
			Help: "Requests rejected by the per-IP rate limiter",
		},
		[]string{"path"},
	)
)

var (
	numericPathSegment = regexp.MustCompile(`/[0-9]+(/|$)`)
	initOnce           sync.Once
)

func init() {
	initOnce.Do(func() {
		prometheus.MustRegister(RequestDuration, RequestTotal, AuthAttempts, NoteMutations, RateLimited)
	})
}

// NormalizePath reduces cardinality by replacing numeric path segments with {id}.
// E.g. /api/notes/123 -> /api/notes/{id}.
func NormalizePath(path string) string {
	return numericPathSegment.ReplaceAllString(path, "/{id}$1")
}

// RecordRequest records duration and count for an HTTP request. Call from middleware with method, path, statusCode, duration.
func RecordRequest(method, path string, statusCode int, durationSeconds float64) {
	path = NormalizePath(path)
	status := strconv.Itoa(statusCode)
	RequestDuration.WithLabelValues(method, path, status).Observe(durationSeconds)
	RequestTotal.WithLabelValues(method, path, status).Inc()
}

// IncAuthAttempt records one register or login outcome.
func IncAuthAttempt(action, result string) {
	AuthAttempts.WithLabelValues(action, result).Inc()
}

// IncNoteMutation records one successful create, update or delete.
func IncNoteMutation(op string) {
	NoteMutations.WithLabelValues(op).Inc()
}

// IncRateLimited records one 429 response.
func IncRateLimited(path string) {
	RateLimited.WithLabelValues(NormalizePath(path)).Inc()
}
