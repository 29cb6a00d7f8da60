// Package http provides HTTP handlers for the two relay directions: the WeChat
// webhook and the CXone post-message endpoint.
package http

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/byoc-relay/internal/errors"
	"github.com/allisson/byoc-relay/internal/httputil"
	"github.com/allisson/byoc-relay/internal/relay/http/dto"
	relayUseCase "github.com/allisson/byoc-relay/internal/relay/usecase"
)

// invalidSignatureError is the error code returned for any webhook authentication failure.
const invalidSignatureError = "invalid_signature"

// WebhookHandler handles the WeChat webhook endpoint.
type WebhookHandler struct {
	relayUseCase relayUseCase.RelayUseCase
	maxBodyBytes int64
	logger       *slog.Logger
}

// NewWebhookHandler creates a new webhook handler with required dependencies.
func NewWebhookHandler(
	relayUseCase relayUseCase.RelayUseCase,
	maxBodyBytes int64,
	logger *slog.Logger,
) *WebhookHandler {
	return &WebhookHandler{
		relayUseCase: relayUseCase,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// VerifyHandler answers the endpoint-verification handshake.
// GET {webhook path}?signature&timestamp&nonce&echostr - Returns echostr as text/plain.
func (h *WebhookHandler) VerifyHandler(c *gin.Context) {
	var query dto.WebhookQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := query.ValidateVerify(); err != nil {
		httputil.HandleCodedErrorGin(c, http.StatusBadRequest, "invalid_request", err, h.logger)
		return
	}

	echo, err := h.relayUseCase.VerifyEndpoint(c.Request.Context(), query.ToSignatureParams(), query.Echostr)
	if err != nil {
		h.handleError(c, err, query)
		return
	}

	h.logger.Info("wechat webhook verified", slog.String("timestamp", query.Timestamp))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(echo))
}

// InboundHandler accepts a message delivery.
// POST {webhook path}?signature&timestamp&nonce[&msg_signature&encrypt_type]
// Returns 200 with an empty body once the signature is valid, whatever
// happens downstream (subject to the acknowledgement policy).
func (h *WebhookHandler) InboundHandler(c *gin.Context) {
	var query dto.WebhookQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}
	if err := query.ValidateInbound(); err != nil {
		httputil.HandleCodedErrorGin(c, http.StatusBadRequest, "invalid_request", err, h.logger)
		return
	}

	// One byte past the limit is enough for the use case to detect oversize bodies.
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, h.maxBodyBytes+1))
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	if err := h.relayUseCase.HandleInbound(c.Request.Context(), query.ToSignatureParams(), body); err != nil {
		h.handleError(c, err, query)
		return
	}

	c.Status(http.StatusOK)
}

func (h *WebhookHandler) handleError(c *gin.Context, err error, query dto.WebhookQuery) {
	if apperrors.Is(err, apperrors.ErrUnauthorized) {
		h.logger.Warn("invalid wechat signature",
			slog.String("signature", truncate(query.Signature)),
			slog.String("nonce", truncate(query.Nonce)),
			slog.String("timestamp", query.Timestamp),
		)
		httputil.HandleCodedErrorGin(c, http.StatusUnauthorized, invalidSignatureError, err, nil)
		return
	}
	httputil.HandleErrorGin(c, err, h.logger)
}

// truncate keeps log lines free of full signatures and nonces.
func truncate(value string) string {
	if len(value) <= 10 {
		return value
	}
	return value[:10] + "..."
}
