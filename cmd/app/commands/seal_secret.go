package commands

import (
	"context"
	"fmt"
	"io"

	cryptoService "github.com/allisson/byoc-relay/internal/crypto/service"
)

// RunSealSecret encrypts value with the KMS key at kmsKeyURI and prints the
// base64 ciphertext. The output goes into any of the sealed variables
// (CLIENT_SECRET, JWT_SECRET, WECHAT_APPSECRET, WECHAT_ENCODING_AES_KEY,
// CXONE_BEARER_TOKEN) alongside KMS_KEY_URI.
//
// Security: Never use base64key:// keys in production. Use a cloud KMS provider.
func RunSealSecret(
	ctx context.Context,
	kmsService cryptoService.KMSService,
	w io.Writer,
	kmsKeyURI, value string,
) error {
	if value == "" {
		return fmt.Errorf("--value must not be empty")
	}

	keeper, err := kmsService.OpenKeeper(ctx, kmsKeyURI)
	if err != nil {
		return err
	}
	defer func() {
		_ = keeper.Close()
	}()

	sealed, err := kmsService.Seal(ctx, keeper, value)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, sealed)
	return err
}
