package commands

import (
	"fmt"
	"io"
	"net/url"
	"strconv"
	"time"

	"github.com/google/uuid"

	wechatService "github.com/allisson/byoc-relay/internal/wechat/service"
)

// SignWebhookInput holds the values to sign. Empty Timestamp and Nonce are generated.
type SignWebhookInput struct {
	Token     string
	Timestamp string
	Nonce     string
	Echostr   string
	Now       func() time.Time
}

// RunSignWebhook prints the query string WeChat would send for the given values,
// ready to append to the webhook URL with curl.
func RunSignWebhook(w io.Writer, input SignWebhookInput) error {
	if input.Token == "" {
		return fmt.Errorf("--token must not be empty")
	}

	if input.Timestamp == "" {
		now := input.Now
		if now == nil {
			now = time.Now
		}
		input.Timestamp = strconv.FormatInt(now().Unix(), 10)
	}
	if input.Nonce == "" {
		input.Nonce = uuid.NewString()
	}

	query := url.Values{}
	query.Set("signature", wechatService.Sign(input.Token, input.Timestamp, input.Nonce))
	query.Set("timestamp", input.Timestamp)
	query.Set("nonce", input.Nonce)
	if input.Echostr != "" {
		query.Set("echostr", input.Echostr)
	}

	_, err := fmt.Fprintln(w, query.Encode())
	return err
}
