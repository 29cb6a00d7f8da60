// Package client implements the CXone Digital message-creation API as a
// transport.Sender.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	cxoneDomain "github.com/allisson/byoc-relay/internal/cxone/domain"
	apperrors "github.com/allisson/byoc-relay/internal/errors"
	"github.com/allisson/byoc-relay/internal/transport"
)

// maxErrorBodyBytes bounds how much of an error response is kept for logs.
const maxErrorBodyBytes = 512

// Config holds the CXone connection settings.
type Config struct {
	BaseURL     string
	BearerToken string
	ChannelID   string
}

// Client posts inbound messages to a CXone channel.
type Client struct {
	httpClient *http.Client
	endpoint   string
	bearer     string
	logger     *slog.Logger
}

// Send posts {thread:{idOnExternalPlatform}, message:{text,type}, direction:"inbound"}.
// Any non-2xx status is a transport error. The returned provider id is the
// "id" field of the response when present.
func (c *Client) Send(ctx context.Context, destination, text string) (transport.Outcome, error) {
	body, err := json.Marshal(cxoneDomain.NewInboundEnvelope(destination, text))
	if err != nil {
		return transport.Outcome{}, apperrors.Wrap(apperrors.ErrTransport, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return transport.Outcome{}, apperrors.Wrap(apperrors.ErrTransport, err.Error())
	}
	req.Header.Set("Authorization", "Bearer "+c.bearer)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return transport.Outcome{}, apperrors.Wrap(apperrors.ErrTransport, fmt.Sprintf("cxone request failed: %v", err))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return transport.Outcome{}, apperrors.Wrap(apperrors.ErrTransport, fmt.Sprintf("cxone response read failed: %v", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return transport.Outcome{}, apperrors.Wrap(
			apperrors.ErrTransport,
			fmt.Sprintf("cxone returned status %d: %s", resp.StatusCode, truncate(respBody)),
		)
	}

	outcome := transport.Outcome{ProviderMessageID: gjson.GetBytes(respBody, "id").String()}

	c.logger.Debug("cxone message posted",
		slog.Int("status_code", resp.StatusCode),
		slog.String("provider_message_id", outcome.ProviderMessageID),
	)

	return outcome, nil
}

func truncate(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxErrorBodyBytes {
		return s[:maxErrorBodyBytes] + "..."
	}
	return s
}

// New creates a CXone client. httpClient is expected to carry the timeout and
// retry policy (see transport.NewHTTPClient).
func New(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	endpoint := strings.TrimRight(cfg.BaseURL, "/") + "/channels/" + url.PathEscape(cfg.ChannelID) + "/messages"

	return &Client{
		httpClient: httpClient,
		endpoint:   endpoint,
		bearer:     cfg.BearerToken,
		logger:     logger,
	}
}
