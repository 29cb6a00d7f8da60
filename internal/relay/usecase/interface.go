// Package usecase implements the Message Router: the two one-directional
// delivery paths between WeChat and CXone and the acknowledgement policy
// applied to their failures.
//
// Every request is processed to completion within its own call. The router
// keeps no state between calls, so no ordering is guaranteed between messages,
// including successive messages from one user. Deliveries are not deduplicated:
// a WeChat retry of a message whose first attempt was forwarded reaches CXone twice.
//
// The webhook is acknowledged only after the CXone send returns. WeChat retries
// deliveries not answered within about five seconds, so a slow CXone send (up to
// Config.DeliveryTimeout) also produces duplicates. The CXone circuit breaker
// bounds how long this lasts while CXone is down.
package usecase

import (
	"context"

	relayDomain "github.com/allisson/byoc-relay/internal/relay/domain"
	wechatDomain "github.com/allisson/byoc-relay/internal/wechat/domain"
)

// RelayUseCase is the Message Router.
type RelayUseCase interface {
	// VerifyEndpoint answers the WeChat endpoint-verification handshake.
	// Returns echostr unchanged when the signature is valid, ErrInvalidSignature otherwise.
	VerifyEndpoint(ctx context.Context, params wechatDomain.SignatureParams, echostr string) (string, error)

	// HandleInbound authenticates a webhook delivery and forwards its text
	// message to CXone. Authentication errors are always returned; other
	// failures go through the AckPolicy.
	HandleInbound(ctx context.Context, params wechatDomain.SignatureParams, body []byte) error

	// HandlePost resolves a CXone reply and delivers it to the WeChat user.
	// Resolution errors are always returned; delivery failures go through the AckPolicy.
	HandlePost(ctx context.Context, input *relayDomain.PostInput) (*relayDomain.PostOutput, error)
}
