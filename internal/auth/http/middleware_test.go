package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	authDomain "github.com/allisson/byoc-relay/internal/auth/domain"
	httpMocks "github.com/allisson/byoc-relay/internal/auth/http/mocks"
)

// newProtectedRouter mounts the authentication middleware in front of a handler
// that echoes the authenticated subject.
func newProtectedRouter(useCase *httpMocks.MockTokenUseCase) *gin.Engine {
	gin.SetMode(gin.TestMode)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := gin.New()
	router.POST("/protected", AuthenticationMiddleware(useCase, logger), func(c *gin.Context) {
		token, ok := GetAccessToken(c.Request.Context())
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"subject": token.Subject})
	})
	return router
}

func TestAuthenticationMiddleware(t *testing.T) {
	t.Run("Success_ValidToken", func(t *testing.T) {
		useCase := &httpMocks.MockTokenUseCase{}
		useCase.On("Authenticate", mock.Anything, "good-token").
			Return(&authDomain.AccessToken{Subject: "cxone"}, nil).
			Once()

		router := newProtectedRouter(useCase)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/protected", nil)
		req.Header.Set("Authorization", "Bearer good-token")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"subject":"cxone"}`, w.Body.String())
		useCase.AssertExpectations(t)
	})

	t.Run("Success_CaseInsensitiveScheme", func(t *testing.T) {
		useCase := &httpMocks.MockTokenUseCase{}
		useCase.On("Authenticate", mock.Anything, "good-token").
			Return(&authDomain.AccessToken{Subject: "cxone"}, nil).
			Once()

		router := newProtectedRouter(useCase)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/protected", nil)
		req.Header.Set("Authorization", "bEaReR good-token")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	rejected := []struct {
		name   string
		header string
	}{
		{"Error_MissingHeader", ""},
		{"Error_WrongScheme", "Basic Y3hvbmU6c2VjcmV0"},
		{"Error_EmptyToken", "Bearer    "},
		{"Error_ShortHeader", "Bear"},
	}

	for _, tt := range rejected {
		t.Run(tt.name, func(t *testing.T) {
			useCase := &httpMocks.MockTokenUseCase{}
			router := newProtectedRouter(useCase)

			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/protected", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error":"Invalid token"}`, w.Body.String())
			useCase.AssertNotCalled(t, "Authenticate", mock.Anything, mock.Anything)
		})
	}

	t.Run("Error_ExpiredToken", func(t *testing.T) {
		useCase := &httpMocks.MockTokenUseCase{}
		useCase.On("Authenticate", mock.Anything, "expired").
			Return(nil, authDomain.ErrInvalidToken).
			Once()

		router := newProtectedRouter(useCase)
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/protected", nil)
		req.Header.Set("Authorization", "Bearer expired")
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"error":"Invalid token"}`, w.Body.String())
		useCase.AssertExpectations(t)
	})
}
