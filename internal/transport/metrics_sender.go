package transport

import (
	"context"
	"time"

	apperrors "github.com/allisson/byoc-relay/internal/errors"
	"github.com/allisson/byoc-relay/internal/metrics"
)

// senderWithMetrics records the outcome and duration of every send to service.
type senderWithMetrics struct {
	next    Sender
	service string
	metrics metrics.DeliveryMetrics
}

// NewSenderWithMetrics wraps next so each Send is recorded under service
// (metrics.ServiceCXone, metrics.ServiceWeChat).
func NewSenderWithMetrics(next Sender, service string, m metrics.DeliveryMetrics) Sender {
	return &senderWithMetrics{next: next, service: service, metrics: m}
}

func (s *senderWithMetrics) Send(ctx context.Context, destination, text string) (Outcome, error) {
	start := time.Now()
	outcome, err := s.next.Send(ctx, destination, text)
	s.metrics.RecordDelivery(ctx, s.service, deliveryStatus(err), time.Since(start))
	return outcome, err
}

func deliveryStatus(err error) string {
	switch {
	case err == nil:
		return metrics.StatusSuccess
	case apperrors.Is(err, apperrors.ErrInvalidInput):
		return metrics.StatusRejected
	default:
		return metrics.StatusError
	}
}
