package transport

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/hashicorp/go-retryablehttp"
)

// HTTPClientConfig bounds outbound platform calls.
type HTTPClientConfig struct {
	// Timeout applies to each attempt.
	Timeout time.Duration
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// RetryWaitMin and RetryWaitMax bound the exponential backoff between attempts.
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// Default backoff bounds.
const (
	DefaultRetryWaitMin = 500 * time.Millisecond
	DefaultRetryWaitMax = 5 * time.Second
)

// DeliveryBudget is the longest a send made of the given number of sequential
// HTTP exchanges can take: every attempt of every exchange timing out plus the
// maximum backoff before each retry. Values below one count as one exchange.
func (c HTTPClientConfig) DeliveryBudget(exchanges int) time.Duration {
	if exchanges < 1 {
		exchanges = 1
	}
	waitMax := c.RetryWaitMax
	if waitMax <= 0 {
		waitMax = DefaultRetryWaitMax
	}
	attempts := time.Duration(c.MaxRetries + 1)
	perExchange := c.Timeout*attempts + waitMax*time.Duration(c.MaxRetries)
	return perExchange * time.Duration(exchanges)
}

// NewHTTPClient returns an *http.Client that retries network-class failures
// (connection refused, resets, timeouts) with exponential backoff.
//
// Responses are never retried, whatever their status: a 4xx means the request
// is wrong and a 5xx may already have been acted upon by the platform.
func NewHTTPClient(cfg HTTPClientConfig, logger *slog.Logger) *http.Client {
	client := retryablehttp.NewClient()
	client.HTTPClient.Timeout = cfg.Timeout
	client.RetryMax = cfg.MaxRetries
	client.RetryWaitMin = cfg.RetryWaitMin
	client.RetryWaitMax = cfg.RetryWaitMax
	if client.RetryWaitMin <= 0 {
		client.RetryWaitMin = DefaultRetryWaitMin
	}
	if client.RetryWaitMax <= 0 {
		client.RetryWaitMax = DefaultRetryWaitMax
	}
	client.CheckRetry = NetworkOnlyRetryPolicy
	client.ErrorHandler = retryablehttp.PassthroughErrorHandler
	client.Logger = nil
	if logger != nil {
		client.Logger = newRedactingLogger(logger)
	}

	return client.StandardClient()
}

// NetworkOnlyRetryPolicy retries when no response was received and the error
// is not permanent (bad scheme, TLS verification, too many redirects).
func NetworkOnlyRetryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err == nil {
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}
