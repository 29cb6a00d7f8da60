// Package service seals and unseals configuration secrets with a KMS key.
//
// Sealed values are base64 (standard encoding) ciphertext produced by the
// keeper behind KMS_KEY_URI. The seal-secret command produces them and the
// server unseals them once at startup, before configuration is validated.
package service

import (
	"context"
	"encoding/base64"
	"fmt"

	"gocloud.dev/secrets"

	"github.com/allisson/byoc-relay/internal/config"
	apperrors "github.com/allisson/byoc-relay/internal/errors"

	// Register all KMS provider drivers
	_ "gocloud.dev/secrets/awskms"
	_ "gocloud.dev/secrets/azurekeyvault"
	_ "gocloud.dev/secrets/gcpkms"
	_ "gocloud.dev/secrets/hashivault"
	_ "gocloud.dev/secrets/localsecrets"
)

// KMSKeeper is the subset of *secrets.Keeper used to seal and unseal values.
type KMSKeeper interface {
	Encrypt(ctx context.Context, plaintext []byte) ([]byte, error)
	Decrypt(ctx context.Context, ciphertext []byte) ([]byte, error)
	Close() error
}

// KMSService opens keepers and applies them to configuration secrets.
type KMSService interface {
	// OpenKeeper opens a secrets.Keeper for the configured KMS provider.
	// Returns an error if the KMS provider URI is invalid or connection fails.
	OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error)

	// Seal encrypts plaintext and returns it base64 encoded.
	Seal(ctx context.Context, keeper KMSKeeper, plaintext string) (string, error)

	// Unseal reverses Seal.
	Unseal(ctx context.Context, keeper KMSKeeper, sealed string) (string, error)

	// UnsealConfig returns a copy of cfg with every secret field unsealed.
	// A config without KMSKeyURI is returned unchanged.
	UnsealConfig(ctx context.Context, cfg *config.Config) (*config.Config, error)
}

// kmsService implements KMSService using gocloud.dev/secrets.
type kmsService struct{}

// NewKMSService creates a new KMS service instance.
func NewKMSService() KMSService {
	return &kmsService{}
}

// OpenKeeper opens a secrets.Keeper for the configured KMS provider using the keyURI.
// Supports: gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://
func (k *kmsService) OpenKeeper(ctx context.Context, keyURI string) (KMSKeeper, error) {
	keeper, err := secrets.OpenKeeper(ctx, keyURI)
	if err != nil {
		return nil, fmt.Errorf("failed to open KMS keeper: %w", err)
	}
	return keeper, nil
}

// Seal encrypts plaintext with keeper.
func (k *kmsService) Seal(ctx context.Context, keeper KMSKeeper, plaintext string) (string, error) {
	ciphertext, err := keeper.Encrypt(ctx, []byte(plaintext))
	if err != nil {
		return "", fmt.Errorf("failed to seal secret: %w", err)
	}
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// Unseal decodes and decrypts a sealed value.
func (k *kmsService) Unseal(ctx context.Context, keeper KMSKeeper, sealed string) (string, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrConfiguration, "sealed secret is not valid base64")
	}

	plaintext, err := keeper.Decrypt(ctx, ciphertext)
	if err != nil {
		return "", apperrors.Wrap(apperrors.ErrConfiguration, fmt.Sprintf("failed to unseal secret: %v", err))
	}
	return string(plaintext), nil
}

// UnsealConfig opens the configured keeper and unseals each secret field.
func (k *kmsService) UnsealConfig(ctx context.Context, cfg *config.Config) (*config.Config, error) {
	if cfg.KMSKeyURI == "" {
		return cfg, nil
	}

	keeper, err := k.OpenKeeper(ctx, cfg.KMSKeyURI)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrConfiguration, err.Error())
	}
	defer func() {
		_ = keeper.Close()
	}()

	return cfg.MapSecrets(func(name, value string) (string, error) {
		plaintext, err := k.Unseal(ctx, keeper, value)
		if err != nil {
			return "", fmt.Errorf("%s: %w", name, err)
		}
		return plaintext, nil
	})
}
