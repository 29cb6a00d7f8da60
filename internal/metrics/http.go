package metrics

import (
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// unmatchedEndpoint labels requests that hit no route, so arbitrary paths
// never become label values.
const unmatchedEndpoint = "unmatched"

type httpInstruments struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	active   metric.Int64UpDownCounter
}

func newHTTPInstruments(meter metric.Meter, namespace string) (*httpInstruments, error) {
	requests, err := meter.Int64Counter(
		instrumentName(namespace, "http_requests_total"),
		metric.WithDescription("HTTP requests by method, endpoint and status"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http request counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		instrumentName(namespace, "http_request_duration_seconds"),
		metric.WithDescription("HTTP request duration in seconds by method and endpoint"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http duration histogram: %w", err)
	}

	active, err := meter.Int64UpDownCounter(
		instrumentName(namespace, "http_active_requests"),
		metric.WithDescription("HTTP requests currently being served"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create active request counter: %w", err)
	}

	return &httpInstruments{requests: requests, duration: duration, active: active}, nil
}

// HTTPMetricsMiddleware records requests served by the relay. The endpoint
// label is the gin route pattern, so post ids never reach a label.
// If the instruments cannot be created the middleware only calls the next handler.
func HTTPMetricsMiddleware(meterProvider metric.MeterProvider, namespace string) gin.HandlerFunc {
	instruments, err := newHTTPInstruments(meterProvider.Meter(namespace), namespace)
	if err != nil {
		return func(c *gin.Context) {
			c.Next()
		}
	}

	return func(c *gin.Context) {
		ctx := c.Request.Context()
		start := time.Now()
		instruments.active.Add(ctx, 1)
		defer instruments.active.Add(ctx, -1)

		c.Next()

		method := attribute.String("method", c.Request.Method)
		endpoint := attribute.String("endpoint", endpointLabel(c.FullPath()))
		instruments.requests.Add(ctx, 1, metric.WithAttributes(
			method,
			endpoint,
			attribute.String("status", strconv.Itoa(c.Writer.Status())),
		))
		instruments.duration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(method, endpoint))
	}
}

func endpointLabel(routePattern string) string {
	if routePattern == "" {
		return unmatchedEndpoint
	}
	return routePattern
}
