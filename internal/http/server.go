// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authHTTP "github.com/allisson/byoc-relay/internal/auth/http"
	authUseCase "github.com/allisson/byoc-relay/internal/auth/usecase"
	"github.com/allisson/byoc-relay/internal/config"
	"github.com/allisson/byoc-relay/internal/metrics"
	relayHTTP "github.com/allisson/byoc-relay/internal/relay/http"
)

// Readiness values reported per outbound platform.
const (
	componentOK       = "ok"
	componentMockMode = "mock_mode"
)

// Server represents the HTTP server
type Server struct {
	server       *http.Server
	router       *gin.Engine
	logger       *slog.Logger
	recording    bool
	shuttingDown atomic.Bool
}

// NewServer creates a new HTTP server. recording marks the outbound platforms as
// mock_mode on the readiness probe.
func NewServer(
	host string,
	port int,
	recording bool,
	logger *slog.Logger,
) *Server {
	return &Server{
		logger:    logger,
		recording: recording,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter registers every route on a new gin engine.
// The context bounds background goroutines owned by middleware (rate limiter cleanup).
func (s *Server) SetupRouter(
	ctx context.Context,
	cfg *config.Config,
	tokenHandler *authHTTP.TokenHandler,
	tokenUseCase authUseCase.TokenUseCase,
	webhookHandler *relayHTTP.WebhookHandler,
	postHandler *relayHTTP.PostHandler,
	metricsProvider *metrics.Provider,
) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := newCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), metricsProvider.Namespace()))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)
	router.GET("/live", s.livenessHandler)

	byoc := router.Group(cfg.BYOCPathPrefix)
	{
		tokenRoute := []gin.HandlerFunc{}
		if cfg.RateLimitTokenEnabled {
			tokenRoute = append(tokenRoute, authHTTP.TokenRateLimitMiddleware(
				ctx,
				cfg.RateLimitTokenRequestsPerSec,
				cfg.RateLimitTokenBurst,
				s.logger,
			))
		}
		tokenRoute = append(tokenRoute, tokenHandler.IssueTokenHandler)
		byoc.POST("/token", tokenRoute...)

		posts := byoc.Group("/posts")
		posts.Use(authHTTP.AuthenticationMiddleware(tokenUseCase, s.logger))
		{
			posts.POST("/:id/messages", postHandler.PostMessageHandler)
		}
	}

	router.GET(cfg.WeChatWebhookPath, webhookHandler.VerifyHandler)
	router.POST(cfg.WeChatWebhookPath, webhookHandler.InboundHandler)

	s.router = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.router
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.router

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	s.shuttingDown.Store(true)
	return s.server.Shutdown(ctx)
}

// healthHandler reports that the process is up.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// livenessHandler is the orchestrator liveness probe.
func (s *Server) livenessHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// readinessHandler reports how each outbound platform is reached.
// Readiness flips to not_ready once shutdown has begun.
func (s *Server) readinessHandler(c *gin.Context) {
	mode := componentOK
	if s.recording {
		mode = componentMockMode
	}
	components := gin.H{"cxone": mode, "wechat": mode}

	if s.shuttingDown.Load() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}
