// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/joho/godotenv"

	apperrors "github.com/allisson/byoc-relay/internal/errors"
	customValidation "github.com/allisson/byoc-relay/internal/validation"
)

// Transport modes selecting how outbound platform calls are performed.
const (
	// TransportModeHTTP delivers messages to the real WeChat and CXone APIs.
	TransportModeHTTP = "http"
	// TransportModeRecording records outbound messages in memory and always reports success.
	TransportModeRecording = "recording"
)

var (
	absolutePathRegex = regexp.MustCompile(`^/[A-Za-z0-9._~/-]*$`)
	httpURLRegex      = regexp.MustCompile(`^https?://[^\s/]+`)
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int
	// ShutdownTimeout bounds graceful shutdown of the HTTP servers.
	ShutdownTimeout time.Duration

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// BYOCPathPrefix is the route prefix for the CXone BYOC endpoints (token, posts).
	BYOCPathPrefix string
	// ClientID is the OAuth client id CXone presents on the token endpoint.
	ClientID string
	// ClientSecret is the OAuth client secret CXone presents on the token endpoint.
	ClientSecret string
	// JWTSecret is the HMAC key used to sign issued access tokens.
	JWTSecret string
	// AuthTokenExpiration is the lifetime of issued access tokens.
	AuthTokenExpiration time.Duration

	// WeChatWebhookPath is the route WeChat calls for verification and message delivery.
	WeChatWebhookPath string
	// WeChatAppID is the official account AppID.
	WeChatAppID string
	// WeChatAppSecret is the official account AppSecret used to obtain API access tokens.
	WeChatAppSecret string
	// WeChatToken is the shared token configured in the WeChat admin console for signatures.
	WeChatToken string
	// WeChatEncodingAESKey enables encrypted (safe mode) webhook payloads when set.
	WeChatEncodingAESKey string
	// WeChatAPIBaseURL is the base URL of the WeChat API.
	WeChatAPIBaseURL string
	// WebhookMaxBodyBytes caps the accepted webhook body size.
	WebhookMaxBodyBytes int64

	// CXoneBaseURL is the base URL of the CXone BYOC API.
	CXoneBaseURL string
	// CXoneBearerToken is the credential sent on inbound deliveries to CXone.
	CXoneBearerToken string
	// CXoneChannelID is the BYOC channel that receives inbound messages.
	CXoneChannelID string

	// TransportMode selects real HTTP delivery or in-memory recording.
	TransportMode string
	// HTTPTimeout is the per-attempt timeout for outbound platform calls.
	HTTPTimeout time.Duration
	// HTTPMaxRetries is the number of retries for network-class failures.
	HTTPMaxRetries int
	// CircuitBreakerFailureThreshold is the number of consecutive failed sends
	// to one platform that opens its circuit breaker.
	CircuitBreakerFailureThreshold int
	// CircuitBreakerTimeout is how long an open breaker fails fast before probing again.
	CircuitBreakerTimeout time.Duration

	// RelayBestEffortAck acknowledges platform callbacks even when delivery fails.
	RelayBestEffortAck bool
	// ResolverIdentityPaths overrides the candidate paths for the external user id.
	ResolverIdentityPaths []string
	// ResolverTextPaths overrides the candidate paths for the message text.
	ResolverTextPaths []string

	// RateLimitTokenEnabled indicates whether rate limiting for the token endpoint is enabled.
	RateLimitTokenEnabled bool
	// RateLimitTokenRequestsPerSec is the number of requests allowed per second for the token endpoint.
	RateLimitTokenRequestsPerSec float64
	// RateLimitTokenBurst is the burst size for the token endpoint rate limiting.
	RateLimitTokenBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins lists the browser origins allowed to call the BYOC
	// endpoints, from the comma-separated CORS_ALLOW_ORIGINS.
	CORSAllowOrigins []string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int

	// KMSKeyURI, when set, marks secret values as KMS-sealed ciphertext.
	KMSKeyURI string
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost:      env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort:      env.GetInt("SERVER_PORT", 3000),
		ShutdownTimeout: env.GetDuration("SHUTDOWN_TIMEOUT_SECONDS", 30, time.Second),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// BYOC auth
		BYOCPathPrefix:      env.GetString("BYOC_PATH_PREFIX", "/integration/box/1.0"),
		ClientID:            env.GetString("CLIENT_ID", ""),
		ClientSecret:        env.GetString("CLIENT_SECRET", ""),
		JWTSecret:           env.GetString("JWT_SECRET", ""),
		AuthTokenExpiration: env.GetDuration("AUTH_TOKEN_EXPIRATION_SECONDS", 86400, time.Second),

		// WeChat
		WeChatWebhookPath:    env.GetString("WECHAT_WEBHOOK_PATH", "/wechat/webhook"),
		WeChatAppID:          env.GetString("WECHAT_APPID", ""),
		WeChatAppSecret:      env.GetString("WECHAT_APPSECRET", ""),
		WeChatToken:          env.GetString("WECHAT_TOKEN", ""),
		WeChatEncodingAESKey: env.GetString("WECHAT_ENCODING_AES_KEY", ""),
		WeChatAPIBaseURL:     env.GetString("WECHAT_API_BASE_URL", "https://api.weixin.qq.com"),
		WebhookMaxBodyBytes:  int64(env.GetInt("WEBHOOK_MAX_BODY_BYTES", 100000)),

		// CXone
		CXoneBaseURL:     env.GetString("CXONE_BASE_URL", ""),
		CXoneBearerToken: env.GetString("CXONE_BEARER_TOKEN", ""),
		CXoneChannelID:   env.GetString("CXONE_CHANNEL_ID", ""),

		// Transport
		TransportMode:  strings.ToLower(env.GetString("TRANSPORT_MODE", TransportModeHTTP)),
		HTTPTimeout:    env.GetDuration("HTTP_TIMEOUT_SECONDS", 10, time.Second),
		HTTPMaxRetries: env.GetInt("HTTP_MAX_RETRIES", 3),

		CircuitBreakerFailureThreshold: env.GetInt("CIRCUIT_BREAKER_FAILURE_THRESHOLD", 5),
		CircuitBreakerTimeout:          env.GetDuration("CIRCUIT_BREAKER_TIMEOUT_SECONDS", 60, time.Second),

		// Relay
		RelayBestEffortAck:    env.GetBool("RELAY_BEST_EFFORT_ACK", true),
		ResolverIdentityPaths: parseList(env.GetString("RESOLVER_IDENTITY_PATHS", "")),
		ResolverTextPaths:     parseList(env.GetString("RESOLVER_TEXT_PATHS", "")),

		// Rate Limiting for Token Endpoint (IP-based, unauthenticated)
		RateLimitTokenEnabled:        env.GetBool("RATE_LIMIT_TOKEN_ENABLED", true),
		RateLimitTokenRequestsPerSec: env.GetFloat64("RATE_LIMIT_TOKEN_REQUESTS_PER_SEC", 5.0),
		RateLimitTokenBurst:          env.GetInt("RATE_LIMIT_TOKEN_BURST", 10),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: parseList(env.GetString("CORS_ALLOW_ORIGINS", "")),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "byoc_relay"),
		MetricsPort:      env.GetInt("METRICS_PORT", 3001),

		// KMS configuration
		KMSKeyURI: env.GetString("KMS_KEY_URI", ""),
	}
}

// Validate checks that the configuration is complete enough to serve traffic.
// Every failure wraps ErrConfiguration.
func (c *Config) Validate() error {
	httpMode := c.TransportMode == TransportModeHTTP
	encrypted := c.WeChatEncodingAESKey != ""

	err := validation.ValidateStruct(c,
		validation.Field(&c.ServerPort, validation.Required, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.BYOCPathPrefix, validation.Required, validation.Match(absolutePathRegex)),
		validation.Field(&c.ClientID, validation.Required, customValidation.NotBlank),
		validation.Field(&c.ClientSecret, validation.Required, customValidation.NotBlank),
		validation.Field(&c.JWTSecret, validation.Required, validation.Length(32, 0)),
		validation.Field(&c.AuthTokenExpiration, validation.Required, validation.Min(time.Second)),
		validation.Field(&c.WeChatWebhookPath, validation.Required, validation.Match(absolutePathRegex)),
		validation.Field(&c.WeChatToken, validation.Required, customValidation.NotBlank),
		validation.Field(&c.WeChatEncodingAESKey, customValidation.EncodingAESKey),
		validation.Field(&c.WeChatAppID, validation.When(httpMode || encrypted, validation.Required)),
		validation.Field(&c.WeChatAppSecret, validation.When(httpMode, validation.Required)),
		validation.Field(&c.WeChatAPIBaseURL, validation.When(httpMode, validation.Required, validation.Match(httpURLRegex))),
		validation.Field(&c.WebhookMaxBodyBytes, validation.Required, validation.Min(int64(1024))),
		validation.Field(&c.CXoneBaseURL, validation.When(httpMode, validation.Required, validation.Match(httpURLRegex))),
		validation.Field(&c.CXoneBearerToken, validation.When(httpMode, validation.Required)),
		validation.Field(&c.CXoneChannelID, validation.When(httpMode, validation.Required, customValidation.NotBlank)),
		validation.Field(&c.TransportMode, validation.Required, validation.In(TransportModeHTTP, TransportModeRecording)),
		validation.Field(&c.HTTPTimeout, validation.Required, validation.Min(100*time.Millisecond)),
		validation.Field(&c.HTTPMaxRetries, validation.Min(0), validation.Max(10)),
		validation.Field(&c.CircuitBreakerFailureThreshold, validation.Required, validation.Min(1)),
		validation.Field(&c.CircuitBreakerTimeout, validation.Required, validation.Min(time.Second)),
	)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrConfiguration, err.Error())
	}
	return nil
}

// SealedSecretNames lists the environment variables that hold KMS ciphertext
// when KMS_KEY_URI is configured.
var SealedSecretNames = []string{
	"CLIENT_SECRET",
	"JWT_SECRET",
	"WECHAT_APPSECRET",
	"WECHAT_ENCODING_AES_KEY",
	"CXONE_BEARER_TOKEN",
}

// MapSecrets returns a copy of the configuration with every sealed secret replaced
// by fn(name, value). Empty values are passed through untouched.
func (c *Config) MapSecrets(fn func(name, value string) (string, error)) (*Config, error) {
	out := *c

	fields := map[string]*string{
		"CLIENT_SECRET":           &out.ClientSecret,
		"JWT_SECRET":              &out.JWTSecret,
		"WECHAT_APPSECRET":        &out.WeChatAppSecret,
		"WECHAT_ENCODING_AES_KEY": &out.WeChatEncodingAESKey,
		"CXONE_BEARER_TOKEN":      &out.CXoneBearerToken,
	}

	for _, name := range SealedSecretNames {
		field := fields[name]
		if *field == "" {
			continue
		}
		value, err := fn(name, *field)
		if err != nil {
			return nil, err
		}
		*field = value
	}

	return &out, nil
}

// IsRecording reports whether outbound calls are recorded instead of sent.
func (c *Config) IsRecording() bool {
	return c.TransportMode == TransportModeRecording
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	default:
		return "release"
	}
}

// parseList splits a comma-separated list and drops empty entries.
func parseList(s string) []string {
	if s == "" {
		return nil
	}

	parts := strings.Split(s, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
