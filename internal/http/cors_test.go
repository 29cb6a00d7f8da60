package http

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var agentOrigins = []string{"https://agent.example.com", "https://console.example.com"}

func corsRouter(t *testing.T, enabled bool, origins []string) *gin.Engine {
	t.Helper()
	router := gin.New()
	if middleware := newCORSMiddleware(enabled, origins, slog.New(slog.NewTextHandler(io.Discard, nil))); middleware != nil {
		router.Use(middleware)
	}
	router.POST("/integration/box/1.0/token", func(c *gin.Context) {
		c.Header("Retry-After", "1")
		c.JSON(http.StatusOK, gin.H{"access_token": "t"})
	})
	return router
}

func TestNewCORSMiddleware(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("Disabled", func(t *testing.T) {
		assert.Nil(t, newCORSMiddleware(false, agentOrigins, logger))
	})

	t.Run("EnabledWithoutOrigins", func(t *testing.T) {
		assert.Nil(t, newCORSMiddleware(true, nil, logger))
	})

	t.Run("Enabled", func(t *testing.T) {
		assert.NotNil(t, newCORSMiddleware(true, agentOrigins, logger))
	})
}

func TestCORS_AllowedOrigin(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/integration/box/1.0/token", nil)
	req.Header.Set("Origin", "https://console.example.com")

	corsRouter(t, true, agentOrigins).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "https://console.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Credentials"))
	assert.Contains(t, w.Header().Get("Access-Control-Expose-Headers"), "Retry-After")
}

func TestCORS_UnknownOriginRejected(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/integration/box/1.0/token", nil)
	req.Header.Set("Origin", "https://evil.example.com")

	corsRouter(t, true, agentOrigins).ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_NoHeadersWhenDisabled(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/integration/box/1.0/token", nil)
	req.Header.Set("Origin", "https://agent.example.com")

	corsRouter(t, false, agentOrigins).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORS_Preflight(t *testing.T) {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodOptions, "/integration/box/1.0/token", nil)
	req.Header.Set("Origin", "https://agent.example.com")
	req.Header.Set("Access-Control-Request-Method", "POST")

	corsRouter(t, true, agentOrigins).ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://agent.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")
	assert.NotContains(t, w.Header().Get("Access-Control-Allow-Methods"), "DELETE")
}
