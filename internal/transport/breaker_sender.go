package transport

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker/v2"

	apperrors "github.com/allisson/byoc-relay/internal/errors"
	"github.com/allisson/byoc-relay/internal/metrics"
)

// BreakerConfig controls the circuit breaker placed in front of one platform.
type BreakerConfig struct {
	// Service names the platform in logs and metrics (metrics.ServiceCXone, metrics.ServiceWeChat).
	Service string
	// FailureThreshold is the number of consecutive failed sends that opens the breaker.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before letting a probe through.
	OpenTimeout time.Duration
}

// Default breaker settings.
const (
	DefaultBreakerFailureThreshold = 5
	DefaultBreakerOpenTimeout      = 60 * time.Second
)

type senderWithBreaker struct {
	next    Sender
	service string
	breaker *gobreaker.CircuitBreaker[Outcome]
}

// NewSenderWithBreaker wraps next with a circuit breaker. While the breaker is
// open, Send fails immediately with an error wrapping errors.ErrTransport instead
// of spending the retry budget on a platform known to be down.
//
// Only transport failures count against the breaker. Messages the sender
// rejects (errors.ErrInvalidInput) say nothing about platform health.
func NewSenderWithBreaker(next Sender, cfg BreakerConfig, logger *slog.Logger, m metrics.DeliveryMetrics) Sender {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = DefaultBreakerFailureThreshold
	}
	timeout := cfg.OpenTimeout
	if timeout <= 0 {
		timeout = DefaultBreakerOpenTimeout
	}

	settings := gobreaker.Settings{
		Name:        cfg.Service,
		MaxRequests: 1,
		Timeout:     timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return err == nil || apperrors.Is(err, apperrors.ErrInvalidInput)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker state change",
				slog.String("service", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
			m.RecordBreakerState(context.Background(), name, breakerState(to))
		},
	}

	m.RecordBreakerState(context.Background(), cfg.Service, metrics.BreakerClosed)

	return &senderWithBreaker{
		next:    next,
		service: cfg.Service,
		breaker: gobreaker.NewCircuitBreaker[Outcome](settings),
	}
}

func (s *senderWithBreaker) Send(ctx context.Context, destination, text string) (Outcome, error) {
	outcome, err := s.breaker.Execute(func() (Outcome, error) {
		return s.next.Send(ctx, destination, text)
	})
	if apperrors.Is(err, gobreaker.ErrOpenState) || apperrors.Is(err, gobreaker.ErrTooManyRequests) {
		return Outcome{}, fmt.Errorf("%s send skipped: %w: %w", s.service, err, apperrors.ErrTransport)
	}
	return outcome, err
}

func breakerState(state gobreaker.State) int64 {
	switch state {
	case gobreaker.StateOpen:
		return metrics.BreakerOpen
	case gobreaker.StateHalfOpen:
		return metrics.BreakerHalfOpen
	default:
		return metrics.BreakerClosed
	}
}
