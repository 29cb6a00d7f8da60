// Package client implements the WeChat Official Account customer-service
// message API as a transport.Sender.
//
// The client owns the only shared mutable state of the relay outside tests:
// the cached API access token. Reads take a read lock; refreshes are collapsed
// with singleflight so a burst of sends after expiry causes a single token call.
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
	"sync"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/singleflight"

	apperrors "github.com/allisson/byoc-relay/internal/errors"
	"github.com/allisson/byoc-relay/internal/transport"
)

const (
	// MaxTextRunes is the longest text message the relay will attempt to send.
	MaxTextRunes = 10000

	// tokenRefreshMargin makes the cached token expire early so in-flight sends
	// do not race the server-side expiry.
	tokenRefreshMargin = 5 * time.Minute

	// ExchangesPerSend is the most HTTP exchanges one Send makes: token fetch,
	// send, token re-fetch after a rejected token, resend.
	ExchangesPerSend = 4

	tokenPath = "/cgi-bin/token"
	sendPath  = "/cgi-bin/message/custom/send"
)

// Error codes that mean the access token is no longer accepted.
const (
	errCodeInvalidCredential  = 40001
	errCodeInvalidAccessToken = 40014
	errCodeAccessTokenExpired = 42001
)

// Config holds the WeChat API settings.
type Config struct {
	BaseURL   string
	AppID     string
	AppSecret string
}

// apiResponse covers the fields common to WeChat API responses.
type apiResponse struct {
	ErrCode     int    `json:"errcode"`
	ErrMsg      string `json:"errmsg"`
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
	MsgID       int64  `json:"msgid"`
}

type textContent struct {
	Content string `json:"content"`
}

type customSendRequest struct {
	ToUser  string      `json:"touser"`
	MsgType string      `json:"msgtype"`
	Text    textContent `json:"text"`
}

// Client sends text messages to WeChat users by openid.
type Client struct {
	httpClient *http.Client
	baseURL    string
	appID      string
	appSecret  string
	logger     *slog.Logger
	now        func() time.Time

	mu        sync.RWMutex
	token     string
	expiresAt time.Time
	refresh   singleflight.Group
}

// Send delivers text to the user identified by openid destination.
//
// When WeChat rejects the cached access token the token is discarded and the
// send is retried once with a fresh one.
func (c *Client) Send(ctx context.Context, destination, text string) (transport.Outcome, error) {
	if destination == "" {
		return transport.Outcome{}, apperrors.Wrap(apperrors.ErrInvalidInput, "openid is required")
	}
	if text == "" {
		return transport.Outcome{}, apperrors.Wrap(apperrors.ErrInvalidInput, "message content is required")
	}
	if utf8.RuneCountInString(text) > MaxTextRunes {
		return transport.Outcome{}, apperrors.Wrap(
			apperrors.ErrInvalidInput,
			fmt.Sprintf("message content exceeds %d characters", MaxTextRunes),
		)
	}

	for attempt := 0; ; attempt++ {
		token, err := c.accessToken(ctx)
		if err != nil {
			return transport.Outcome{}, err
		}

		resp, err := c.customSend(ctx, token, destination, text)
		if err != nil {
			return transport.Outcome{}, err
		}

		if resp.ErrCode == 0 {
			outcome := transport.Outcome{}
			if resp.MsgID != 0 {
				outcome.ProviderMessageID = fmt.Sprintf("%d", resp.MsgID)
			}
			return outcome, nil
		}

		if isTokenError(resp.ErrCode) && attempt == 0 {
			c.logger.Warn("wechat access token rejected, refreshing",
				slog.Int("errcode", resp.ErrCode),
			)
			c.invalidate(token)
			continue
		}

		return transport.Outcome{}, apperrors.Wrap(
			apperrors.ErrTransport,
			fmt.Sprintf("wechat send failed: errcode=%d errmsg=%s", resp.ErrCode, resp.ErrMsg),
		)
	}
}

func (c *Client) customSend(ctx context.Context, token, openid, text string) (*apiResponse, error) {
	body, err := json.Marshal(customSendRequest{
		ToUser:  openid,
		MsgType: "text",
		Text:    textContent{Content: text},
	})
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTransport, err.Error())
	}

	endpoint := c.baseURL + sendPath + "?access_token=" + url.QueryEscape(token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTransport, "invalid wechat send request")
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req)
}

// accessToken returns the cached token or fetches a new one.
func (c *Client) accessToken(ctx context.Context) (string, error) {
	c.mu.RLock()
	token, expiresAt := c.token, c.expiresAt
	c.mu.RUnlock()

	if token != "" && c.now().Before(expiresAt) {
		return token, nil
	}

	// The shared fetch must not be cancelled by the first caller's context.
	result, err, _ := c.refresh.Do("access_token", func() (interface{}, error) {
		return c.fetchToken(context.WithoutCancel(ctx))
	})
	if err != nil {
		return "", err
	}
	return result.(string), nil
}

func (c *Client) fetchToken(ctx context.Context) (string, error) {
	c.mu.RLock()
	if c.token != "" && c.now().Before(c.expiresAt) {
		token := c.token
		c.mu.RUnlock()
		return token, nil
	}
	c.mu.RUnlock()

	query := url.Values{}
	query.Set("grant_type", "client_credential")
	query.Set("appid", c.appID)
	query.Set("secret", c.appSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+tokenPath+"?"+query.Encode(), nil)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrTransport, "invalid wechat token request")
	}

	resp, err := c.do(req)
	if err != nil {
		return "", err
	}
	if resp.ErrCode != 0 || resp.AccessToken == "" {
		return "", apperrors.Wrap(
			apperrors.ErrTransport,
			fmt.Sprintf("wechat token request failed: errcode=%d errmsg=%s", resp.ErrCode, resp.ErrMsg),
		)
	}

	lifetime := time.Duration(resp.ExpiresIn) * time.Second
	if lifetime > 2*tokenRefreshMargin {
		lifetime -= tokenRefreshMargin
	}

	c.mu.Lock()
	c.token = resp.AccessToken
	c.expiresAt = c.now().Add(lifetime)
	c.mu.Unlock()

	c.logger.Info("wechat access token refreshed", slog.Duration("lifetime", lifetime))

	return resp.AccessToken, nil
}

// invalidate drops the cached token if it is still the one that was rejected.
func (c *Client) invalidate(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token == token {
		c.token = ""
		c.expiresAt = time.Time{}
	}
}

// do executes req and decodes the JSON body. WeChat reports API errors with
// HTTP 200 and an errcode, so only transport failures and non-2xx statuses
// are returned as errors here.
func (c *Client) do(req *http.Request) (*apiResponse, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// err is dropped: url.Error echoes the query string, which carries credentials.
		return nil, apperrors.Wrap(apperrors.ErrTransport, fmt.Sprintf("wechat request to %s failed", req.URL.Path))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTransport, "wechat response read failed")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, apperrors.Wrap(
			apperrors.ErrTransport,
			fmt.Sprintf("wechat %s returned status %d", req.URL.Path, resp.StatusCode),
		)
	}

	var decoded apiResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, apperrors.Wrap(apperrors.ErrTransport, "wechat returned invalid json")
	}
	return &decoded, nil
}

func isTokenError(code int) bool {
	switch code {
	case errCodeInvalidCredential, errCodeInvalidAccessToken, errCodeAccessTokenExpired:
		return true
	default:
		return false
	}
}

// New creates a WeChat client. A nil now uses time.Now.
func New(cfg Config, httpClient *http.Client, logger *slog.Logger, now func() time.Time) *Client {
	if now == nil {
		now = time.Now
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		appID:      cfg.AppID,
		appSecret:  cfg.AppSecret,
		logger:     logger,
		now:        now,
	}
}
