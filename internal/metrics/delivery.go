package metrics

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Delivery destinations.
const (
	ServiceCXone  = "cxone"
	ServiceWeChat = "wechat"
)

// StatusRejected marks a message the sender refused before calling the platform.
const StatusRejected = "rejected"

// Circuit breaker states as exported by the circuit_breaker_state gauge.
const (
	BreakerClosed   int64 = 0
	BreakerOpen     int64 = 1
	BreakerHalfOpen int64 = 2
)

// DeliveryMetrics records calls to the external platforms, one per send.
// Unlike BusinessMetrics, absorbed delivery failures still count as errors here.
type DeliveryMetrics interface {
	RecordDelivery(ctx context.Context, service, status string, duration time.Duration)
	RecordBreakerState(ctx context.Context, service string, state int64)
}

type deliveryMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	breaker  metric.Int64Gauge
}

// NewDeliveryMetrics creates {namespace}_external_api_requests_total{service,status},
// {namespace}_external_api_duration_seconds{service} and
// {namespace}_circuit_breaker_state{service}.
func NewDeliveryMetrics(meterProvider metric.MeterProvider, namespace string) (DeliveryMetrics, error) {
	meter := meterProvider.Meter(namespace)

	requests, err := meter.Int64Counter(
		instrumentName(namespace, "external_api_requests_total"),
		metric.WithDescription("Deliveries to external platforms by service and status"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create external api counter: %w", err)
	}

	duration, err := meter.Float64Histogram(
		instrumentName(namespace, "external_api_duration_seconds"),
		metric.WithDescription("Delivery duration to external platforms in seconds, retries included"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create external api histogram: %w", err)
	}

	breaker, err := meter.Int64Gauge(
		instrumentName(namespace, "circuit_breaker_state"),
		metric.WithDescription("Circuit breaker state per service (0=closed, 1=open, 2=half-open)"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create circuit breaker gauge: %w", err)
	}

	return &deliveryMetrics{requests: requests, duration: duration, breaker: breaker}, nil
}

func (d *deliveryMetrics) RecordDelivery(ctx context.Context, service, status string, duration time.Duration) {
	d.requests.Add(ctx, 1, metric.WithAttributes(
		attribute.String("service", service),
		attribute.String("status", status),
	))
	d.duration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.String("service", service),
	))
}

func (d *deliveryMetrics) RecordBreakerState(ctx context.Context, service string, state int64) {
	d.breaker.Record(ctx, state, metric.WithAttributes(attribute.String("service", service)))
}

type noOpDeliveryMetrics struct{}

// NewNoOpDeliveryMetrics returns a DeliveryMetrics that discards everything.
func NewNoOpDeliveryMetrics() DeliveryMetrics {
	return noOpDeliveryMetrics{}
}

func (noOpDeliveryMetrics) RecordDelivery(ctx context.Context, service, status string, duration time.Duration) {
}

func (noOpDeliveryMetrics) RecordBreakerState(ctx context.Context, service string, state int64) {}
