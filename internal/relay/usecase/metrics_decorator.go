package usecase

import (
	"context"
	"time"

	"github.com/allisson/byoc-relay/internal/metrics"
	relayDomain "github.com/allisson/byoc-relay/internal/relay/domain"
	wechatDomain "github.com/allisson/byoc-relay/internal/wechat/domain"
)

// relayUseCaseWithMetrics decorates RelayUseCase with metrics instrumentation.
type relayUseCaseWithMetrics struct {
	next    RelayUseCase
	metrics metrics.BusinessMetrics
}

// NewRelayUseCaseWithMetrics wraps a RelayUseCase with metrics recording.
func NewRelayUseCaseWithMetrics(useCase RelayUseCase, m metrics.BusinessMetrics) RelayUseCase {
	return &relayUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// VerifyEndpoint records metrics for the verification handshake.
func (r *relayUseCaseWithMetrics) VerifyEndpoint(
	ctx context.Context,
	params wechatDomain.SignatureParams,
	echostr string,
) (string, error) {
	start := time.Now()
	echo, err := r.next.VerifyEndpoint(ctx, params, echostr)
	r.record(ctx, OperationWebhookVerify, start, err)
	return echo, err
}

// HandleInbound records metrics for webhook deliveries.
func (r *relayUseCaseWithMetrics) HandleInbound(
	ctx context.Context,
	params wechatDomain.SignatureParams,
	body []byte,
) error {
	start := time.Now()
	err := r.next.HandleInbound(ctx, params, body)
	r.record(ctx, OperationWebhookInbound, start, err)
	return err
}

// HandlePost records metrics for CXone post deliveries.
func (r *relayUseCaseWithMetrics) HandlePost(
	ctx context.Context,
	input *relayDomain.PostInput,
) (*relayDomain.PostOutput, error) {
	start := time.Now()
	output, err := r.next.HandlePost(ctx, input)
	r.record(ctx, OperationPostOutbound, start, err)
	return output, err
}

func (r *relayUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusError
	}

	r.metrics.RecordOperation(ctx, "relay", operation, status)
	r.metrics.RecordDuration(ctx, "relay", operation, time.Since(start), status)
}
