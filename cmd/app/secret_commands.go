package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/byoc-relay/cmd/app/commands"
	authService "github.com/allisson/byoc-relay/internal/auth/service"
	cryptoService "github.com/allisson/byoc-relay/internal/crypto/service"
)

func getSecretCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "seal-secret",
			Usage: "Encrypt a secret with a KMS key for use in sealed configuration",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "kms-key-uri",
					Aliases:  []string{"k"},
					Sources:  cli.EnvVars("KMS_KEY_URI"),
					Required: true,
					Usage:    "KMS key URI (gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://)",
				},
				&cli.StringFlag{
					Name:     "value",
					Aliases:  []string{"v"},
					Required: true,
					Usage:    "Plaintext secret to seal",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunSealSecret(
					ctx,
					cryptoService.NewKMSService(),
					commands.DefaultIO().Writer,
					cmd.String("kms-key-uri"),
					cmd.String("value"),
				)
			},
		},
		{
			Name:  "generate-credentials",
			Usage: "Generate a BYOC client secret and JWT signing key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:    "client-id",
					Aliases: []string{"c"},
					Value:   "cxone",
					Usage:   "Client id CXone will present on the token endpoint",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunGenerateCredentials(
					authService.NewSecretService(),
					commands.DefaultIO().Writer,
					cmd.String("client-id"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "sign-webhook",
			Usage: "Print a signed WeChat webhook query for manual endpoint testing",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "token",
					Aliases:  []string{"t"},
					Sources:  cli.EnvVars("WECHAT_TOKEN"),
					Required: true,
					Usage:    "WeChat shared token",
				},
				&cli.StringFlag{
					Name:  "timestamp",
					Usage: "Timestamp to sign (defaults to now)",
				},
				&cli.StringFlag{
					Name:  "nonce",
					Usage: "Nonce to sign (defaults to a random value)",
				},
				&cli.StringFlag{
					Name:  "echostr",
					Usage: "Echo string to include for a verification request",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunSignWebhook(
					commands.DefaultIO().Writer,
					commands.SignWebhookInput{
						Token:     cmd.String("token"),
						Timestamp: cmd.String("timestamp"),
						Nonce:     cmd.String("nonce"),
						Echostr:   cmd.String("echostr"),
					},
				)
			},
		},
	}
}
