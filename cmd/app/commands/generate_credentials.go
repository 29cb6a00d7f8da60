package commands

import (
	"fmt"
	"io"

	authService "github.com/allisson/byoc-relay/internal/auth/service"
)

// Sizes in bytes of generated secrets before encoding.
const (
	clientSecretSize = 32
	jwtSecretSize    = 48
)

// RunGenerateCredentials prints a fresh CLIENT_ID/CLIENT_SECRET pair for the
// CXone BYOC channel and a JWT_SECRET for signing access tokens.
func RunGenerateCredentials(
	secretService authService.SecretService,
	w io.Writer,
	clientID, format string,
) error {
	if clientID == "" {
		return fmt.Errorf("--client-id must not be empty")
	}

	clientSecret, err := secretService.GenerateSecret(clientSecretSize)
	if err != nil {
		return fmt.Errorf("failed to generate client secret: %w", err)
	}

	jwtSecret, err := secretService.GenerateSecret(jwtSecretSize)
	if err != nil {
		return fmt.Errorf("failed to generate jwt secret: %w", err)
	}

	return writeOutput(w, format,
		[]string{"CLIENT_ID", "CLIENT_SECRET", "JWT_SECRET"},
		map[string]string{
			"CLIENT_ID":     clientID,
			"CLIENT_SECRET": clientSecret,
			"JWT_SECRET":    jwtSecret,
		},
	)
}
