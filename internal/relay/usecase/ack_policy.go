package usecase

import (
	"context"
	"log/slog"

	apperrors "github.com/allisson/byoc-relay/internal/errors"
	"github.com/allisson/byoc-relay/internal/metrics"
)

// AckPolicy decides which failures are reported to the calling platform and
// which are logged and acknowledged as success.
//
// With best effort enabled (the default) a failure is absorbed when it belongs
// to one of the classes the call site allows. Authentication failures are never
// absorbed. With best effort disabled every failure is returned.
type AckPolicy struct {
	bestEffort bool
	logger     *slog.Logger
	metrics    metrics.BusinessMetrics
}

// Settle returns nil when err is nil or absorbed, and err otherwise.
// absorbable lists the sentinel error classes this call site may absorb.
func (p *AckPolicy) Settle(ctx context.Context, operation string, err error, absorbable ...error) error {
	if err == nil {
		return nil
	}
	if !p.bestEffort || apperrors.Is(err, apperrors.ErrUnauthorized) {
		return err
	}

	for _, class := range absorbable {
		if apperrors.Is(err, class) {
			p.logger.Warn("delivery failure absorbed",
				slog.String("operation", operation),
				slog.Any("error", err),
			)
			p.metrics.RecordOperation(ctx, "relay", operation, metrics.StatusAbsorbed)
			return nil
		}
	}

	return err
}

// BestEffort reports whether the policy absorbs failures.
func (p *AckPolicy) BestEffort() bool {
	return p.bestEffort
}

// NewAckPolicy creates an AckPolicy. A nil metrics uses the no-op implementation.
func NewAckPolicy(bestEffort bool, logger *slog.Logger, m metrics.BusinessMetrics) *AckPolicy {
	if m == nil {
		m = metrics.NewNoOpBusinessMetrics()
	}
	return &AckPolicy{
		bestEffort: bestEffort,
		logger:     logger,
		metrics:    m,
	}
}
