package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/allisson/byoc-relay/internal/errors"
	"github.com/allisson/byoc-relay/internal/httputil"
	relayDomain "github.com/allisson/byoc-relay/internal/relay/domain"
	"github.com/allisson/byoc-relay/internal/relay/http/dto"
	relayUseCase "github.com/allisson/byoc-relay/internal/relay/usecase"
)

// PostHandler handles CXone agent and bot replies.
type PostHandler struct {
	relayUseCase relayUseCase.RelayUseCase
	logger       *slog.Logger
}

// NewPostHandler creates a new post handler with required dependencies.
func NewPostHandler(relayUseCase relayUseCase.RelayUseCase, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		relayUseCase: relayUseCase,
		logger:       logger,
	}
}

// PostMessageHandler delivers a CXone reply to the WeChat user.
// POST {prefix}/posts/:id/messages - Requires a bearer token (see AuthenticationMiddleware).
// Returns 200 OK with {"idOnExternalPlatform": uuid}.
func (h *PostHandler) PostMessageHandler(c *gin.Context) {
	body, err := c.GetRawData()
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	req := dto.PostMessageRequest{PostID: c.Param("id"), Body: body}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	payload, err := relayDomain.ParsePayload(req.Body)
	if err != nil {
		httputil.HandleBadRequestGin(c, err, h.logger)
		return
	}

	output, err := h.relayUseCase.HandlePost(c.Request.Context(), &relayDomain.PostInput{
		PostID:  req.PostID,
		Payload: payload,
	})
	if err != nil {
		switch {
		case apperrors.Is(err, relayDomain.ErrUnresolvableIdentity):
			h.rejectUnresolvable(c, "unresolvable_identity", err)
		case apperrors.Is(err, relayDomain.ErrUnresolvableText):
			h.rejectUnresolvable(c, "unresolvable_text", err)
		default:
			httputil.HandleErrorGin(c, err, h.logger)
		}
		return
	}

	c.JSON(http.StatusOK, dto.MapPostOutputToResponse(output))
}

func (h *PostHandler) rejectUnresolvable(c *gin.Context, code string, err error) {
	h.logger.Warn("cxone payload rejected",
		slog.String("post_id", c.Param("id")),
		slog.String("error_code", code),
	)
	c.JSON(http.StatusUnprocessableEntity, httputil.ErrorResponse{
		Error:   code,
		Message: err.Error(),
	})
}
