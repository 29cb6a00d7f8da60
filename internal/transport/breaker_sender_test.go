package transport

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/allisson/byoc-relay/internal/errors"
	"github.com/allisson/byoc-relay/internal/metrics"
)

// flakySender fails with a transport error while down is set.
type flakySender struct {
	down  atomic.Bool
	calls atomic.Int32
}

func (f *flakySender) Send(ctx context.Context, destination, text string) (Outcome, error) {
	f.calls.Add(1)
	if f.down.Load() {
		return Outcome{}, apperrors.Wrap(apperrors.ErrTransport, "connection refused")
	}
	return Outcome{ProviderMessageID: "ok"}, nil
}

func newTestBreaker(next Sender, m metrics.DeliveryMetrics, timeout time.Duration) Sender {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewSenderWithBreaker(next, BreakerConfig{
		Service:          metrics.ServiceCXone,
		FailureThreshold: 3,
		OpenTimeout:      timeout,
	}, logger, m)
}

func TestSenderWithBreaker_OpenHalfOpenClosed(t *testing.T) {
	ctx := context.Background()
	next := &flakySender{}
	next.down.Store(true)
	recorded := &fakeDeliveryMetrics{}
	sender := newTestBreaker(next, recorded, 50*time.Millisecond)

	for i := 0; i < 3; i++ {
		_, err := sender.Send(ctx, "userA", "hi")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrTransport))
	}
	assert.Equal(t, int32(3), next.calls.Load())

	// Open: the platform is not called.
	_, err := sender.Send(ctx, "userA", "hi")
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.ErrTransport))
	assert.True(t, apperrors.Is(err, gobreaker.ErrOpenState))
	assert.Contains(t, err.Error(), "cxone send skipped")
	assert.Equal(t, int32(3), next.calls.Load())

	time.Sleep(80 * time.Millisecond)
	next.down.Store(false)

	// Half-open probe succeeds and closes the breaker.
	outcome, err := sender.Send(ctx, "userA", "hi")
	require.NoError(t, err)
	assert.Equal(t, "ok", outcome.ProviderMessageID)

	_, err = sender.Send(ctx, "userA", "hi")
	require.NoError(t, err)
	assert.Equal(t, int32(5), next.calls.Load())

	assert.Equal(t, []int64{
		metrics.BreakerClosed,
		metrics.BreakerOpen,
		metrics.BreakerHalfOpen,
		metrics.BreakerClosed,
	}, recorded.breakerStates())
}

func TestSenderWithBreaker_FailedProbeReopens(t *testing.T) {
	ctx := context.Background()
	next := &flakySender{}
	next.down.Store(true)
	recorded := &fakeDeliveryMetrics{}
	sender := newTestBreaker(next, recorded, 50*time.Millisecond)

	for i := 0; i < 3; i++ {
		_, _ = sender.Send(ctx, "userA", "hi")
	}
	time.Sleep(80 * time.Millisecond)

	_, err := sender.Send(ctx, "userA", "hi")
	require.Error(t, err)
	assert.False(t, apperrors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, int32(4), next.calls.Load())

	_, err = sender.Send(ctx, "userA", "hi")
	assert.True(t, apperrors.Is(err, gobreaker.ErrOpenState))
	assert.Equal(t, int32(4), next.calls.Load())

	assert.Equal(t, []int64{
		metrics.BreakerClosed,
		metrics.BreakerOpen,
		metrics.BreakerHalfOpen,
		metrics.BreakerOpen,
	}, recorded.breakerStates())
}

func TestSenderWithBreaker_RejectionsDoNotTrip(t *testing.T) {
	ctx := context.Background()
	var calls atomic.Int32
	next := SenderFunc(func(ctx context.Context, destination, text string) (Outcome, error) {
		calls.Add(1)
		return Outcome{}, apperrors.Wrap(apperrors.ErrInvalidInput, "text too long")
	})
	sender := newTestBreaker(next, metrics.NewNoOpDeliveryMetrics(), time.Minute)

	for i := 0; i < 10; i++ {
		_, err := sender.Send(ctx, "userA", "hi")
		require.Error(t, err)
		assert.True(t, apperrors.Is(err, apperrors.ErrInvalidInput))
	}
	assert.Equal(t, int32(10), calls.Load())
}

func TestSenderWithBreaker_Defaults(t *testing.T) {
	ctx := context.Background()
	next := &flakySender{}
	next.down.Store(true)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sender := NewSenderWithBreaker(next, BreakerConfig{Service: metrics.ServiceWeChat}, logger, metrics.NewNoOpDeliveryMetrics())

	for i := 0; i < DefaultBreakerFailureThreshold+2; i++ {
		_, _ = sender.Send(ctx, "userA", "hi")
	}
	assert.Equal(t, int32(DefaultBreakerFailureThreshold), next.calls.Load())
}
