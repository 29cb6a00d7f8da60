// Package http provides HTTP handlers and middleware for BYOC authentication.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/byoc-relay/internal/auth/domain"
	"github.com/allisson/byoc-relay/internal/auth/http/dto"
	authUseCase "github.com/allisson/byoc-relay/internal/auth/usecase"
	apperrors "github.com/allisson/byoc-relay/internal/errors"
	"github.com/allisson/byoc-relay/internal/httputil"
)

// OAuth error codes returned by the token endpoint.
const (
	errorCodeInvalidRequest       = "invalid_request"
	errorCodeUnsupportedGrantType = "unsupported_grant_type"
	errorCodeInvalidClient        = "invalid_client"
)

// TokenHandler handles HTTP requests for token operations.
// It coordinates token issuance with the TokenUseCase.
type TokenHandler struct {
	tokenUseCase authUseCase.TokenUseCase
	logger       *slog.Logger
}

// NewTokenHandler creates a new token handler with required dependencies.
func NewTokenHandler(
	tokenUseCase authUseCase.TokenUseCase,
	logger *slog.Logger,
) *TokenHandler {
	return &TokenHandler{
		tokenUseCase: tokenUseCase,
		logger:       logger,
	}
}

// IssueTokenHandler issues a new access token for the BYOC client.
// POST {prefix}/token - No authentication required (this is the authentication endpoint).
// Returns 200 OK with access_token, token_type and expires_in.
func (h *TokenHandler) IssueTokenHandler(c *gin.Context) {
	var req dto.IssueTokenRequest

	// Binding follows Content-Type (JSON or form)
	if err := c.ShouldBind(&req); err != nil {
		httputil.HandleCodedErrorGin(c, http.StatusBadRequest, errorCodeInvalidRequest, err, h.logger)
		return
	}

	if err := req.Validate(); err != nil {
		httputil.HandleCodedErrorGin(c, http.StatusBadRequest, errorCodeInvalidRequest, err, h.logger)
		return
	}

	output, err := h.tokenUseCase.Issue(c.Request.Context(), req.ToInput())
	if err != nil {
		switch {
		case apperrors.Is(err, authDomain.ErrUnsupportedGrantType):
			httputil.HandleCodedErrorGin(c, http.StatusBadRequest, errorCodeUnsupportedGrantType, err, h.logger)
		case apperrors.Is(err, authDomain.ErrInvalidClient):
			httputil.HandleCodedErrorGin(c, http.StatusUnauthorized, errorCodeInvalidClient, err, h.logger)
		default:
			httputil.HandleErrorGin(c, err, h.logger)
		}
		return
	}

	h.logger.Info("token issued", slog.Int64("expires_in", output.ExpiresIn))

	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, dto.MapIssueTokenOutputToResponse(output))
}
