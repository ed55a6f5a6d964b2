package middleware

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	Requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "lotwatch_http_requests_total",
			Help: "Total HTTP requests by path and status",
		},
		[]string{"path", "status"},
	)
	Latency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "lotwatch_http_request_duration_seconds",
			Help:    "HTTP request latency by path",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)
)

// Metrics collects request counters and latency histograms.
func Metrics(requests *prometheus.CounterVec, latency *prometheus.HistogramVec) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)

			path := c.Path()
			requests.WithLabelValues(path, strconv.Itoa(c.Response().Status)).Inc()
			latency.WithLabelValues(path).Observe(time.Since(start).Seconds())

			return err
		}
	}
}
