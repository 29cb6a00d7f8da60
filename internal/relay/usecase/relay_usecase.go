package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	cxoneDomain "github.com/allisson/byoc-relay/internal/cxone/domain"
	apperrors "github.com/allisson/byoc-relay/internal/errors"
	relayDomain "github.com/allisson/byoc-relay/internal/relay/domain"
	relayService "github.com/allisson/byoc-relay/internal/relay/service"
	"github.com/allisson/byoc-relay/internal/transport"
	wechatDomain "github.com/allisson/byoc-relay/internal/wechat/domain"
	wechatService "github.com/allisson/byoc-relay/internal/wechat/service"
)

// Operation names used in logs, metrics and the AckPolicy.
const (
	OperationWebhookVerify  = "webhook_verify"
	OperationWebhookInbound = "webhook_inbound"
	OperationPostOutbound   = "post_outbound"
)

// MaxPostIDLength bounds the post id path parameter.
const MaxPostIDLength = 128

// Config holds the router settings taken from configuration.
type Config struct {
	// WebhookToken is the WeChat shared secret.
	WebhookToken string
	// MaxBodyBytes bounds webhook bodies.
	MaxBodyBytes int64
	// DeliveryTimeout bounds one CXone send including retries.
	DeliveryTimeout time.Duration
	// ReplyTimeout bounds one WeChat send, access token refreshes included.
	// Zero falls back to DeliveryTimeout.
	ReplyTimeout time.Duration
}

// Dependencies groups the collaborators of the router.
type Dependencies struct {
	SignatureValidator wechatService.SignatureValidator
	MessageCodec       wechatService.MessageCodec
	// MessageCrypter is nil when safe mode is not configured.
	MessageCrypter wechatService.MessageCrypter
	FieldResolver  relayService.FieldResolver
	CXoneSender    transport.Sender
	WeChatSender   transport.Sender
	AckPolicy      *AckPolicy
	Logger         *slog.Logger
}

type relayUseCase struct {
	config Config
	deps   Dependencies
}

// VerifyEndpoint echoes the challenge back after checking the signature.
func (r *relayUseCase) VerifyEndpoint(
	ctx context.Context,
	params wechatDomain.SignatureParams,
	echostr string,
) (string, error) {
	params.Token = r.config.WebhookToken
	if !r.deps.SignatureValidator.Verify(params) {
		return "", wechatDomain.ErrInvalidSignature
	}
	return echostr, nil
}

// HandleInbound checks the signature before anything in body is inspected,
// then decrypts (safe mode only), decodes and forwards to CXone.
func (r *relayUseCase) HandleInbound(ctx context.Context, params wechatDomain.SignatureParams, body []byte) error {
	params.Token = r.config.WebhookToken
	if !r.deps.SignatureValidator.Verify(params) {
		return wechatDomain.ErrInvalidSignature
	}

	err := r.forwardInbound(ctx, params, body)
	return r.deps.AckPolicy.Settle(ctx, OperationWebhookInbound, err, apperrors.ErrInvalidInput, apperrors.ErrTransport)
}

func (r *relayUseCase) forwardInbound(ctx context.Context, params wechatDomain.SignatureParams, body []byte) error {
	if int64(len(body)) > r.config.MaxBodyBytes {
		return apperrors.Wrap(wechatDomain.ErrPayloadTooLarge, fmt.Sprintf("%d bytes", len(body)))
	}

	plaintext := body
	if r.deps.MessageCrypter != nil {
		encrypted, err := r.deps.MessageCodec.DecodeEncryptedEnvelope(body)
		if err != nil {
			return err
		}
		if !r.deps.SignatureValidator.VerifyMessage(params, encrypted) {
			return wechatDomain.ErrInvalidMessageSignature
		}
		plaintext, err = r.deps.MessageCrypter.Decrypt(encrypted)
		if err != nil {
			return err
		}
	}

	msg, err := r.deps.MessageCodec.DecodeMessage(plaintext)
	if err != nil {
		return err
	}

	envelope := cxoneDomain.EnvelopeFromWeChat(msg)
	outcome, err := r.deliver(ctx, r.deps.CXoneSender, r.config.DeliveryTimeout, envelope.Thread.IDOnExternalPlatform, envelope.Message.Text)
	if err != nil {
		return err
	}

	r.deps.Logger.Info("wechat message forwarded to cxone",
		slog.String("openid", msg.SenderID),
		slog.String("msg_id", msg.MsgID),
		slog.String("provider_message_id", outcome.ProviderMessageID),
	)
	return nil
}

// HandlePost validates the post id, resolves the payload and sends to WeChat.
// The returned id is freshly generated whether or not the send succeeded.
func (r *relayUseCase) HandlePost(
	ctx context.Context,
	input *relayDomain.PostInput,
) (*relayDomain.PostOutput, error) {
	postID := strings.TrimSpace(input.PostID)
	if postID == "" || utf8.RuneCountInString(postID) > MaxPostIDLength {
		return nil, relayDomain.ErrInvalidPostID
	}

	resolved, err := r.deps.FieldResolver.Resolve(input.Payload)
	if err != nil {
		return nil, err
	}

	outcome, err := r.deliver(ctx, r.deps.WeChatSender, r.replyTimeout(), resolved.ExternalUserID, resolved.Text)
	if err == nil {
		r.deps.Logger.Info("cxone message delivered to wechat",
			slog.String("post_id", postID),
			slog.String("openid", resolved.ExternalUserID),
			slog.String("provider_message_id", outcome.ProviderMessageID),
		)
	}
	if err := r.deps.AckPolicy.Settle(ctx, OperationPostOutbound, err, apperrors.ErrTransport); err != nil {
		return nil, err
	}

	return &relayDomain.PostOutput{IDOnExternalPlatform: uuid.NewString()}, nil
}

func (r *relayUseCase) replyTimeout() time.Duration {
	if r.config.ReplyTimeout > 0 {
		return r.config.ReplyTimeout
	}
	return r.config.DeliveryTimeout
}

// deliver runs a send detached from the caller's cancellation, bounded by
// timeout, so a client disconnect does not cut a delivery short.
func (r *relayUseCase) deliver(
	ctx context.Context,
	sender transport.Sender,
	timeout time.Duration,
	destination, text string,
) (transport.Outcome, error) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	return sender.Send(ctx, destination, text)
}

// NewRelayUseCase creates a RelayUseCase.
func NewRelayUseCase(config Config, deps Dependencies) RelayUseCase {
	return &relayUseCase{
		config: config,
		deps:   deps,
	}
}
