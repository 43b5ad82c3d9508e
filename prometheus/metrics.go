package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Counter metrics
var (
	// Login counters
	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "zeeder_login_total",
			Help: "Total number of login attempts",
		},
	)

	// Registration counters
	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "zeeder_register_total",
			Help: "Total number of user registrations",
		},
	)

	// HTTP request counter by endpoint and status
	HTTPRequestCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zeeder_http_requests_total",
			Help: "Total number of HTTP requests by endpoint and status",
		},
		[]string{"endpoint", "method", "status"},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zeeder_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // "missing_token", "invalid_token", "login_failure", ...
	)

	// Assignment operations (voice/user/agent to company)
	AssignmentCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zeeder_assignment_operations_total",
			Help: "Total number of tenant assignment operations",
		},
		[]string{"operation", "outcome"},
	)

	// Outbound calls to the conversational-AI API
	UpstreamCallCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "zeeder_upstream_calls_total",
			Help: "Total number of calls to the conversational-AI API",
		},
		[]string{"operation", "status"},
	)
)

// Histogram metrics
var (
	// Request duration
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zeeder_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "method", "status"},
	)

	// Upstream call duration
	UpstreamDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "zeeder_upstream_duration_seconds",
			Help:    "Duration of calls to the conversational-AI API in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)

// Gauge metrics
var (
	// Voices in the local catalog after the last sync
	VoiceCatalogGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "zeeder_voice_catalog_size",
			Help: "Number of voices in the local catalog after the last sync",
		},
	)

	// System info
	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "zeeder_info",
			Help: "Information about the dashboard service",
		},
		[]string{"version", "mode"},
	)
)

func init() {
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(RegisterCounter)
	prometheus.MustRegister(HTTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(AssignmentCounter)
	prometheus.MustRegister(UpstreamCallCounter)

	prometheus.MustRegister(RequestDuration)
	prometheus.MustRegister(UpstreamDuration)

	prometheus.MustRegister(VoiceCatalogGauge)
	prometheus.MustRegister(InfoGauge)
}

// SetInfo publishes the running version and mode
func SetInfo(version string, demoMode bool) {
	mode := "live"
	if demoMode {
		mode = "demo"
	}
	InfoGauge.With(prometheus.Labels{"version": version, "mode": mode}).Set(1)
}

// GetPrometheusHandler returns an HTTP handler for the Prometheus metrics
func GetPrometheusHandler() http.Handler {
	return promhttp.Handler()
}

// MetricsHandler exposes the registry on an echo route
func MetricsHandler(c echo.Context) error {
	GetPrometheusHandler().ServeHTTP(c.Response(), c.Request())
	return nil
}

// TrackUpstreamCall measures an outbound call; the returned func records the final status code
func TrackUpstreamCall(operation string) func(status int) {
	startTime := time.Now()
	return func(status int) {
		UpstreamDuration.With(prometheus.Labels{"operation": operation}).Observe(time.Since(startTime).Seconds())
		statusLabel := "error"
		if status > 0 {
			statusLabel = strconv.Itoa(status)
		}
		UpstreamCallCounter.With(prometheus.Labels{"operation": operation, "status": statusLabel}).Inc()
	}
}

// MetricsMiddleware creates a middleware function that captures metrics for each request
func MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			duration := time.Since(start).Seconds()
			status := strconv.Itoa(c.Response().Status)
			endpoint := c.Path()
			method := c.Request().Method

			RequestDuration.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Observe(duration)

			HTTPRequestCounter.With(prometheus.Labels{
				"endpoint": endpoint,
				"method":   method,
				"status":   status,
			}).Inc()

			return err
		}
	}
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordAssignment records an assignment operation and whether it succeeded
func RecordAssignment(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "rejected"
	}
	AssignmentCounter.With(prometheus.Labels{"operation": operation, "outcome": outcome}).Inc()
}

// UpdateVoiceCatalog sets the catalog size gauge
func UpdateVoiceCatalog(count int) {
	VoiceCatalogGauge.Set(float64(count))
}
