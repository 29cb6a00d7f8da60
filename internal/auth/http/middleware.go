// Package http provides HTTP middleware and utilities for authentication.
package http

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/allisson/byoc-relay/internal/auth/domain"
	authUseCase "github.com/allisson/byoc-relay/internal/auth/usecase"
	"github.com/allisson/byoc-relay/internal/httputil"
)

// invalidTokenError is the exact error body CXone expects on a rejected bearer token.
const invalidTokenError = "Invalid token"

// AuthenticationMiddleware provides authentication via Bearer token in the Authorization header.
//
// The middleware:
// 1. Extracts the Bearer token from the Authorization header (case-insensitive)
// 2. Validates the token using tokenUseCase.Authenticate()
// 3. Stores the access token in the request context
//
// Every failure (missing header, wrong scheme, empty, expired, badly signed or
// foreign token) responds 401 {"error":"Invalid token"}.
func AuthenticationMiddleware(
	tokenUseCase authUseCase.TokenUseCase,
	logger *slog.Logger,
) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			logger.Debug("authentication failed: missing authorization header")
			rejectInvalidToken(c, logger)
			return
		}

		// Parse Bearer token (case-insensitive)
		const bearerPrefix = "bearer "
		if len(authHeader) < len(bearerPrefix) ||
			!strings.EqualFold(authHeader[:len(bearerPrefix)], bearerPrefix) {
			logger.Debug("authentication failed: malformed authorization header")
			rejectInvalidToken(c, logger)
			return
		}

		plainToken := strings.TrimSpace(authHeader[len(bearerPrefix):])
		if plainToken == "" {
			logger.Debug("authentication failed: empty bearer token")
			rejectInvalidToken(c, logger)
			return
		}

		token, err := tokenUseCase.Authenticate(c.Request.Context(), plainToken)
		if err != nil {
			logger.Debug("authentication failed", slog.String("error", err.Error()))
			rejectInvalidToken(c, logger)
			return
		}

		ctx := WithAccessToken(c.Request.Context(), token)
		c.Request = c.Request.WithContext(ctx)

		logger.Debug("authentication successful", slog.String("subject", token.Subject))

		c.Next()
	}
}

func rejectInvalidToken(c *gin.Context, logger *slog.Logger) {
	httputil.HandleCodedErrorGin(c, http.StatusUnauthorized, invalidTokenError, authDomain.ErrInvalidToken, logger)
	c.Abort()
}
