package httpapi

import (
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	requestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "costapi_http_requests_total",
		Help: "Total HTTP requests handled, by path, method and status.",
	}, []string{"path", "method", "status"})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "costapi_http_request_duration_seconds",
		Help:    "HTTP request latency by path.",
		Buckets: prometheus.DefBuckets,
	}, []string{"path"})
)

// observeRequest records request counts and latency for every route.
func observeRequest(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		err := next(c)

		path := c.Path()
		requestsTotal.WithLabelValues(path, c.Request().Method, strconv.Itoa(c.Response().Status)).Inc()
		requestDuration.WithLabelValues(path).Observe(time.Since(start).Seconds())
		return err
	}
}
