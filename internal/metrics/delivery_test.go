package metrics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeliveryMetrics(t *testing.T) {
	provider, err := NewProvider("byoc_relay")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	dm, err := NewDeliveryMetrics(provider.MeterProvider(), provider.Namespace())
	require.NoError(t, err)

	ctx := context.Background()
	dm.RecordDelivery(ctx, ServiceCXone, StatusSuccess, 20*time.Millisecond)
	dm.RecordDelivery(ctx, ServiceCXone, StatusSuccess, 30*time.Millisecond)
	dm.RecordDelivery(ctx, ServiceCXone, StatusError, 2*time.Second)
	dm.RecordDelivery(ctx, ServiceWeChat, StatusRejected, time.Millisecond)

	output := scrape(t, provider)

	assertMetricLine(t, output, "byoc_relay_external_api_requests_total", `service="cxone".*status="success"`, "2")
	assertMetricLine(t, output, "byoc_relay_external_api_requests_total", `service="cxone".*status="error"`, "1")
	assertMetricLine(t, output, "byoc_relay_external_api_requests_total", `service="wechat".*status="rejected"`, "1")
	assertMetricLine(t, output, "byoc_relay_external_api_duration_seconds_count", `service="cxone"`, "3")
	assert.NotRegexp(t, `byoc_relay_external_api_duration_seconds_count\{[^}]*status=`, output)
}

func TestDeliveryMetrics_BreakerState(t *testing.T) {
	provider, err := NewProvider("byoc_relay")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	dm, err := NewDeliveryMetrics(provider.MeterProvider(), provider.Namespace())
	require.NoError(t, err)

	ctx := context.Background()
	dm.RecordBreakerState(ctx, ServiceCXone, BreakerOpen)
	dm.RecordBreakerState(ctx, ServiceCXone, BreakerHalfOpen)
	dm.RecordBreakerState(ctx, ServiceWeChat, BreakerClosed)

	output := scrape(t, provider)

	assertMetricLine(t, output, "byoc_relay_circuit_breaker_state", `service="cxone"`, "2")
	assertMetricLine(t, output, "byoc_relay_circuit_breaker_state", `service="wechat"`, "0")
}

func TestNoOpDeliveryMetrics(t *testing.T) {
	dm := NewNoOpDeliveryMetrics()

	assert.NotPanics(t, func() {
		dm.RecordDelivery(context.Background(), ServiceWeChat, StatusError, time.Second)
		dm.RecordBreakerState(context.Background(), ServiceWeChat, BreakerOpen)
	})
}
