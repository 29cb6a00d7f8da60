package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	provider, err := NewProvider("byoc_relay")
	require.NoError(t, err)
	defer func() {
		assert.NoError(t, provider.Shutdown(context.Background()))
	}()

	router := gin.New()
	router.Use(HTTPMetricsMiddleware(provider.MeterProvider(), provider.Namespace()))
	router.POST("/integration/box/1.0/posts/:id/messages", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"idOnExternalPlatform": "x"})
	})
	router.POST("/wechat/webhook", func(c *gin.Context) {
		c.Status(http.StatusUnauthorized)
	})

	for _, id := range []string{"123", "456", "789"} {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/integration/box/1.0/posts/"+id+"/messages", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/wechat/webhook", nil))
	require.Equal(t, http.StatusUnauthorized, w.Code)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/wp-admin/login.php", nil))
	require.Equal(t, http.StatusNotFound, w.Code)

	output := scrape(t, provider)

	assertMetricLine(t, output, "byoc_relay_http_requests_total",
		`endpoint="/integration/box/1.0/posts/:id/messages".*method="POST".*status="200"`, "3")
	assertMetricLine(t, output, "byoc_relay_http_requests_total",
		`endpoint="/wechat/webhook".*method="POST".*status="401"`, "1")
	assertMetricLine(t, output, "byoc_relay_http_requests_total",
		`endpoint="unmatched".*method="GET".*status="404"`, "1")
	assertMetricLine(t, output, "byoc_relay_http_request_duration_seconds_count",
		`endpoint="/integration/box/1.0/posts/:id/messages".*method="POST"`, "3")
	assertMetricLine(t, output, "byoc_relay_http_active_requests", ``, "0")
	assert.NotContains(t, output, "posts/123")
	assert.NotContains(t, output, "wp-admin")
}

func TestEndpointLabel(t *testing.T) {
	assert.Equal(t, "/integration/box/1.0/posts/:id/messages", endpointLabel("/integration/box/1.0/posts/:id/messages"))
	assert.Equal(t, "unmatched", endpointLabel(""))
}
