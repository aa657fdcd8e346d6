package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/envelope/cmd/app/commands"
	"github.com/allisson/envelope/internal/app"
	"github.com/allisson/envelope/internal/config"
)

func getFileCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "encrypt-file",
			Usage: "Encrypt a file under a protected record's data encryption key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "source",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Path of the plaintext file to read",
				},
				&cli.StringFlag{
					Name:     "dest",
					Aliases:  []string{"d"},
					Required: true,
					Usage:    "Path the encrypted file will be written to",
				},
				&cli.StringFlag{
					Name:     "owner",
					Aliases:  []string{"o"},
					Required: true,
					Usage:    "Owner (tenant) the protected record belongs to",
				},
				&cli.StringFlag{
					Name:     "record",
					Aliases:  []string{"r"},
					Required: true,
					Usage:    "Protected record identifier",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				envelopeUseCase, err := container.EnvelopeUseCase()
				if err != nil {
					return err
				}

				return commands.RunEncryptFile(
					ctx,
					envelopeUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("source"),
					cmd.String("dest"),
					cmd.String("record"),
					cmd.String("owner"),
				)
			},
		},
		{
			Name:  "decrypt-file",
			Usage: "Decrypt a file encrypted under a protected record's data encryption key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "source",
					Aliases:  []string{"s"},
					Required: true,
					Usage:    "Path of the encrypted file to read",
				},
				&cli.StringFlag{
					Name:     "dest",
					Aliases:  []string{"d"},
					Required: true,
					Usage:    "Path the decrypted file will be written to",
				},
				&cli.StringFlag{
					Name:     "owner",
					Aliases:  []string{"o"},
					Required: true,
					Usage:    "Owner (tenant) the protected record belongs to",
				},
				&cli.StringFlag{
					Name:     "record",
					Aliases:  []string{"r"},
					Required: true,
					Usage:    "Protected record identifier",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				envelopeUseCase, err := container.EnvelopeUseCase()
				if err != nil {
					return err
				}

				return commands.RunDecryptFile(
					ctx,
					envelopeUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("source"),
					cmd.String("dest"),
					cmd.String("record"),
					cmd.String("owner"),
				)
			},
		},
	}
}
