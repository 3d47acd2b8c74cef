package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "demfetch",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "demfetch",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 10, 30},
	}, []string{"method", "path"})

	httpResponseSize = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "demfetch",
		Subsystem: "http",
		Name:      "response_size_bytes",
		Help:      "HTTP response size in bytes",
		Buckets:   prometheus.ExponentialBuckets(100, 10, 6),
	}, []string{"method", "path"})

	// Selection metrics
	SelectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "demfetch",
		Subsystem: "selection",
		Name:      "resolved_total",
		Help:      "Bounding box resolutions by input source and outcome",
	}, []string{"source", "outcome"})

	// Download metrics
	DownloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "demfetch",
		Subsystem: "dem",
		Name:      "downloads_total",
		Help:      "DEM download attempts by terminal outcome",
	}, []string{"outcome"})

	DownloadBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "demfetch",
		Subsystem: "dem",
		Name:      "download_size_bytes",
		Help:      "Size of downloaded rasters",
		Buckets:   prometheus.ExponentialBuckets(1024, 4, 10),
	})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "demfetch",
		Subsystem: "dem",
		Name:      "upstream_duration_seconds",
		Help:      "Latency of the elevation API request",
		Buckets:   []float64{0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
	}, []string{"status"})

	DownloadsInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "demfetch",
		Subsystem: "dem",
		Name:      "downloads_in_flight",
		Help:      "Download attempts currently in the requesting state",
	})

	CacheErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "demfetch",
		Subsystem: "session",
		Name:      "store_errors_total",
		Help:      "Session store failures",
	}, []string{"operation"})
)

// Outcome labels for DownloadsTotal.
const (
	OutcomeSucceeded     = "succeeded"
	OutcomeUpstreamError = "upstream_error"
	OutcomeTransport     = "transport_error"
	OutcomeConfigError   = "config_error"
	OutcomeInvalid       = "invalid"
	OutcomeWriteError    = "write_error"
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)
		httpResponseSize.WithLabelValues(method, path).Observe(float64(len(c.Response().Body())))

		return err
	}
}

// Handler returns a Fiber handler serving Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
