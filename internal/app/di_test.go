package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/allisson/byoc-relay/internal/config"
	cxoneClient "github.com/allisson/byoc-relay/internal/cxone/client"
	"github.com/allisson/byoc-relay/internal/metrics"
	relayDomain "github.com/allisson/byoc-relay/internal/relay/domain"
	"github.com/allisson/byoc-relay/internal/transport"
	wechatClient "github.com/allisson/byoc-relay/internal/wechat/client"
)

// recordingConfig returns a minimal valid configuration using recording transports.
func recordingConfig() *config.Config {
	return &config.Config{
		ServerHost:          "localhost",
		ServerPort:          0,
		LogLevel:            "info",
		BYOCPathPrefix:      "/integration/box/1.0",
		ClientID:            "cxone",
		ClientSecret:        "secret",
		JWTSecret:           strings.Repeat("k", 32),
		AuthTokenExpiration: time.Hour,
		WeChatWebhookPath:   "/wechat/webhook",
		WeChatToken:         "token",
		WebhookMaxBodyBytes: 100000,
		TransportMode:       config.TransportModeRecording,
		HTTPTimeout:         10 * time.Second,
		HTTPMaxRetries:      3,
		RelayBestEffortAck:  true,
		MetricsNamespace:    "byoc_relay",
	}
}

func TestNewContainer(t *testing.T) {
	cfg := recordingConfig()

	container := NewContainer(cfg)

	require.NotNil(t, container)
	assert.Same(t, cfg, container.Config())
}

func TestContainerLogger(t *testing.T) {
	cfg := recordingConfig()
	cfg.LogLevel = "debug"

	container := NewContainer(cfg)
	logger := container.Logger()

	require.NotNil(t, logger)
	assert.Same(t, logger, container.Logger(), "expected same logger instance on multiple calls")
	assert.True(t, logger.Enabled(context.Background(), -4))
}

func TestContainerLoggerDefaultLevel(t *testing.T) {
	cfg := recordingConfig()
	cfg.LogLevel = "invalid"

	logger := NewContainer(cfg).Logger()

	require.NotNil(t, logger)
	assert.False(t, logger.Enabled(context.Background(), -4), "debug should be off at the default info level")
}

func TestContainerLazyInitialization(t *testing.T) {
	container := NewContainer(recordingConfig())

	assert.Nil(t, container.logger)
	assert.Nil(t, container.relayUseCase)

	container.Logger()
	assert.NotNil(t, container.logger)
	assert.Nil(t, container.relayUseCase)
}

func TestContainerSenders(t *testing.T) {
	t.Run("recording mode uses recorders", func(t *testing.T) {
		container := NewContainer(recordingConfig())

		_, cxoneIsRecorder := container.CXoneSender().(*transport.Recorder)
		_, wechatIsRecorder := container.WeChatSender().(*transport.Recorder)

		assert.True(t, cxoneIsRecorder)
		assert.True(t, wechatIsRecorder)
		assert.Same(t, container.CXoneSender(), container.CXoneSender())
	})

	t.Run("http mode uses platform clients", func(t *testing.T) {
		cfg := recordingConfig()
		cfg.TransportMode = config.TransportModeHTTP
		cfg.CXoneBaseURL = "https://cxone.example.com"
		cfg.WeChatAPIBaseURL = "https://api.weixin.qq.com"
		container := NewContainer(cfg)

		_, cxoneIsClient := container.CXoneSender().(*cxoneClient.Client)
		_, wechatIsClient := container.WeChatSender().(*wechatClient.Client)

		assert.True(t, cxoneIsClient)
		assert.True(t, wechatIsClient)
	})
}

func TestContainerMessageCrypter(t *testing.T) {
	t.Run("disabled without an EncodingAESKey", func(t *testing.T) {
		crypter, err := NewContainer(recordingConfig()).MessageCrypter()

		require.NoError(t, err)
		assert.Nil(t, crypter)
	})

	t.Run("enabled with a valid EncodingAESKey", func(t *testing.T) {
		cfg := recordingConfig()
		cfg.WeChatAppID = "wx1234567890"
		cfg.WeChatEncodingAESKey = "MDEyMzQ1Njc4OWFiY2RlZjAxMjM0NTY3ODlBQkNERUY"

		crypter, err := NewContainer(cfg).MessageCrypter()

		require.NoError(t, err)
		assert.NotNil(t, crypter)
	})
}

func TestContainerInitializationErrors(t *testing.T) {
	cfg := recordingConfig()
	cfg.WeChatAppID = "wx1234567890"
	cfg.WeChatEncodingAESKey = "not-a-valid-key"

	container := NewContainer(cfg)

	_, err := container.RelayUseCase()
	require.Error(t, err)

	// The stored error is returned on subsequent calls
	_, err2 := container.RelayUseCase()
	assert.Error(t, err2)

	_, err3 := container.HTTPServer()
	assert.Error(t, err3)
}

func TestContainerHTTPServer(t *testing.T) {
	container := NewContainer(recordingConfig())
	defer func() {
		assert.NoError(t, container.Shutdown(context.Background()))
	}()

	server, err := container.HTTPServer()
	require.NoError(t, err)

	w := httptest.NewRecorder()
	server.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ready","components":{"cxone":"mock_mode","wechat":"mock_mode"}}`, w.Body.String())

	metricsServer, err := container.MetricsServer()
	require.NoError(t, err)
	assert.Nil(t, metricsServer, "metrics are disabled")
}

func TestContainerMetricsEnabled(t *testing.T) {
	cfg := recordingConfig()
	cfg.MetricsEnabled = true
	cfg.MetricsPort = 0

	container := NewContainer(cfg)
	defer func() {
		assert.NoError(t, container.Shutdown(context.Background()))
	}()

	_, err := container.HTTPServer()
	require.NoError(t, err)

	relay, err := container.RelayUseCase()
	require.NoError(t, err)
	payload, err := relayDomain.ParsePayload([]byte(`{"thread":{"idOnExternalPlatform":"oUserA"},"message":{"text":"hi"}}`))
	require.NoError(t, err)
	_, err = relay.HandlePost(context.Background(), &relayDomain.PostInput{PostID: "1", Payload: payload})
	require.NoError(t, err)

	metricsServer, err := container.MetricsServer()
	require.NoError(t, err)
	require.NotNil(t, metricsServer)

	w := httptest.NewRecorder()
	metricsServer.GetHandler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Regexp(t,
		`byoc_relay_external_api_requests_total\{[^}]*service="wechat"[^}]*status="success"[^}]*\} 1`,
		w.Body.String(),
	)
	assert.Regexp(t,
		`byoc_relay_operations_total\{[^}]*operation="post_outbound"[^}]*status="success"[^}]*\} 1`,
		w.Body.String(),
	)
}

func TestContainerCircuitBreakerOpensInHTTPMode(t *testing.T) {
	var calls atomic.Int32
	wechat := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer wechat.Close()

	cfg := recordingConfig()
	cfg.TransportMode = config.TransportModeHTTP
	cfg.WeChatAppID = "wx123"
	cfg.WeChatAppSecret = "appsecret"
	cfg.WeChatAPIBaseURL = wechat.URL
	cfg.CXoneBaseURL = "http://127.0.0.1:1"
	cfg.CXoneBearerToken = "bearer"
	cfg.CXoneChannelID = "chat_1"
	cfg.HTTPTimeout = time.Second
	cfg.HTTPMaxRetries = 0
	cfg.CircuitBreakerFailureThreshold = 1
	cfg.CircuitBreakerTimeout = time.Minute
	cfg.MetricsEnabled = true
	cfg.MetricsPort = 0

	container := NewContainer(cfg)
	defer func() {
		assert.NoError(t, container.Shutdown(context.Background()))
	}()

	relay, err := container.RelayUseCase()
	require.NoError(t, err)
	payload, err := relayDomain.ParsePayload([]byte(`{"thread":{"idOnExternalPlatform":"oUserA"},"message":{"text":"hi"}}`))
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		out, err := relay.HandlePost(context.Background(), &relayDomain.PostInput{PostID: "1", Payload: payload})
		require.NoError(t, err)
		assert.NotEmpty(t, out.IDOnExternalPlatform)
	}
	assert.Equal(t, int32(1), calls.Load())

	provider, err := container.MetricsProvider()
	require.NoError(t, err)
	w := httptest.NewRecorder()
	provider.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Regexp(t, `byoc_relay_circuit_breaker_state\{[^}]*service="wechat"[^}]*\} 1`, w.Body.String())
	assert.Regexp(t, `byoc_relay_circuit_breaker_state\{[^}]*service="cxone"[^}]*\} 0`, w.Body.String())
}

func TestContainerDeliveryMetricsDisabled(t *testing.T) {
	container := NewContainer(recordingConfig())

	deliveryMetrics, err := container.DeliveryMetrics()

	require.NoError(t, err)
	assert.Equal(t, metrics.NewNoOpDeliveryMetrics(), deliveryMetrics)
}

func TestContainerShutdown(t *testing.T) {
	container := NewContainer(recordingConfig())

	assert.NoError(t, container.Shutdown(context.TODO()))
	assert.Error(t, container.backgroundCtx.Err())
}
