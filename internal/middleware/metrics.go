package middleware

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	httpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	httpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	// PaymentsVerified counts signature checks by outcome.
	PaymentsVerified = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_verified_total",
			Help: "Total number of payment verification attempts",
		},
		[]string{"status"},
	)

	// LiveSubscribers tracks open event-stream connections.
	LiveSubscribers = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "live_subscribers",
			Help: "Currently connected live event-stream subscribers",
		},
	)
)

func init() {
	prometheus.MustRegister(httpRequestsTotal)
	prometheus.MustRegister(httpRequestDuration)
	prometheus.MustRegister(PaymentsVerified)
	prometheus.MustRegister(LiveSubscribers)
}

// Metrics records a counter and latency histogram per route. The route
// pattern keeps label cardinality bounded regardless of path params.
func Metrics() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		endpoint := c.Route().Path
		httpRequestsTotal.WithLabelValues(
			c.Method(), endpoint, strconv.Itoa(c.Response().StatusCode()),
		).Inc()
		httpRequestDuration.WithLabelValues(c.Method(), endpoint).
			Observe(time.Since(start).Seconds())

		return err
	}
}

// MetricsHandler exposes the prometheus registry.
func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
