package commands

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authService "github.com/allisson/byoc-relay/internal/auth/service"
	cryptoService "github.com/allisson/byoc-relay/internal/crypto/service"
	wechatService "github.com/allisson/byoc-relay/internal/wechat/service"
)

func generateLocalSecretsURI(t *testing.T) string {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return "base64key://" + base64.URLEncoding.EncodeToString(key)
}

func TestRunSealSecret(t *testing.T) {
	ctx := context.Background()
	kmsService := cryptoService.NewKMSService()

	t.Run("success", func(t *testing.T) {
		keyURI := generateLocalSecretsURI(t)
		var out bytes.Buffer

		err := RunSealSecret(ctx, kmsService, &out, keyURI, "client-secret")
		require.NoError(t, err)

		sealed := strings.TrimSpace(out.String())
		keeper, err := kmsService.OpenKeeper(ctx, keyURI)
		require.NoError(t, err)
		defer func() {
			assert.NoError(t, keeper.Close())
		}()

		plaintext, err := kmsService.Unseal(ctx, keeper, sealed)
		require.NoError(t, err)
		assert.Equal(t, "client-secret", plaintext)
	})

	t.Run("empty value", func(t *testing.T) {
		err := RunSealSecret(ctx, kmsService, &bytes.Buffer{}, generateLocalSecretsURI(t), "")
		assert.Error(t, err)
	})

	t.Run("invalid key uri", func(t *testing.T) {
		err := RunSealSecret(ctx, kmsService, &bytes.Buffer{}, "invalid://uri", "value")
		assert.ErrorContains(t, err, "failed to open KMS keeper")
	})
}

// failingSecretService fails every generation.
type failingSecretService struct {
	authService.SecretService
}

func (failingSecretService) GenerateSecret(size int) (string, error) {
	return "", errors.New("entropy exhausted")
}

func TestRunGenerateCredentials(t *testing.T) {
	secretService := authService.NewSecretService()

	t.Run("text format", func(t *testing.T) {
		var out bytes.Buffer

		require.NoError(t, RunGenerateCredentials(secretService, &out, "cxone", "text"))

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		require.Len(t, lines, 3)
		assert.Equal(t, `CLIENT_ID="cxone"`, lines[0])
		assert.True(t, strings.HasPrefix(lines[1], `CLIENT_SECRET="`))
		assert.True(t, strings.HasPrefix(lines[2], `JWT_SECRET="`))
	})

	t.Run("json format", func(t *testing.T) {
		var out bytes.Buffer

		require.NoError(t, RunGenerateCredentials(secretService, &out, "cxone", "json"))

		var values map[string]string
		require.NoError(t, json.Unmarshal(out.Bytes(), &values))
		assert.Equal(t, "cxone", values["CLIENT_ID"])
		assert.NotEmpty(t, values["CLIENT_SECRET"])
		assert.GreaterOrEqual(t, len(values["JWT_SECRET"]), 32)
		assert.NotEqual(t, values["CLIENT_SECRET"], values["JWT_SECRET"])
	})

	t.Run("invalid format", func(t *testing.T) {
		err := RunGenerateCredentials(secretService, &bytes.Buffer{}, "cxone", "yaml")
		assert.ErrorContains(t, err, "invalid format")
	})

	t.Run("empty client id", func(t *testing.T) {
		assert.Error(t, RunGenerateCredentials(secretService, &bytes.Buffer{}, "", "text"))
	})

	t.Run("generation failure", func(t *testing.T) {
		err := RunGenerateCredentials(failingSecretService{}, &bytes.Buffer{}, "cxone", "text")
		assert.ErrorContains(t, err, "entropy exhausted")
	})
}

func TestRunSignWebhook(t *testing.T) {
	t.Run("explicit values", func(t *testing.T) {
		var out bytes.Buffer

		err := RunSignWebhook(&out, SignWebhookInput{
			Token:     "token",
			Timestamp: "1409304348",
			Nonce:     "nonce",
			Echostr:   "ping123",
		})
		require.NoError(t, err)

		query, err := url.ParseQuery(strings.TrimSpace(out.String()))
		require.NoError(t, err)
		assert.Equal(t, "c21d07973d69a8327f8346d879d072ef58bd3a9a", query.Get("signature"))
		assert.Equal(t, "ping123", query.Get("echostr"))
	})

	t.Run("generated timestamp and nonce", func(t *testing.T) {
		var out bytes.Buffer
		fixed := time.Unix(1700000000, 0)

		err := RunSignWebhook(&out, SignWebhookInput{
			Token: "token",
			Now:   func() time.Time { return fixed },
		})
		require.NoError(t, err)

		query, err := url.ParseQuery(strings.TrimSpace(out.String()))
		require.NoError(t, err)
		assert.Equal(t, "1700000000", query.Get("timestamp"))
		assert.NotEmpty(t, query.Get("nonce"))
		assert.False(t, query.Has("echostr"))
		assert.Equal(t, wechatService.Sign("token", "1700000000", query.Get("nonce")), query.Get("signature"))
	})

	t.Run("missing token", func(t *testing.T) {
		assert.Error(t, RunSignWebhook(&bytes.Buffer{}, SignWebhookInput{}))
	})
}
