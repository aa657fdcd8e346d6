package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// HTTPMetricsMiddleware returns a Gin middleware that records request counts
// and durations with method, path, and status_code labels. Paths are reported
// as route patterns, and requests that match no route all share one label, so
// scanners probing the operational port cannot mint unbounded metric series.
func HTTPMetricsMiddleware(meterProvider metric.MeterProvider, namespace string) gin.HandlerFunc {
	meter := meterProvider.Meter(namespace)

	requestCounter, counterErr := meter.Int64Counter(
		fmt.Sprintf("%s_http_requests_total", namespace),
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	durationHisto, histoErr := meter.Float64Histogram(
		fmt.Sprintf("%s_http_request_duration_seconds", namespace),
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	)
	if counterErr != nil || histoErr != nil {
		// Degrade to a pass-through rather than refuse requests.
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		attrs := []attribute.KeyValue{
			attribute.String("method", c.Request.Method),
			attribute.String("path", sanitizePath(c.FullPath())),
			attribute.String("status_code", strconv.Itoa(c.Writer.Status())),
		}

		requestCounter.Add(c.Request.Context(), 1, metric.WithAttributes(attrs...))
		durationHisto.Record(c.Request.Context(), time.Since(start).Seconds(), metric.WithAttributes(attrs...))
	}
}

// sanitizePath returns the matched route pattern, or "unknown" for requests
// that matched no route.
func sanitizePath(fullPath string) string {
	if fullPath == "" {
		return "unknown"
	}
	return fullPath
}
