package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/envelope/cmd/app/commands"
	"github.com/allisson/envelope/internal/app"
	"github.com/allisson/envelope/internal/config"
)

func getDekCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-dek",
			Usage: "Create the data encryption key for a protected record",
			Flags: []cli.Flag{
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

				return commands.RunCreateDek(
					ctx,
					envelopeUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("owner"),
					cmd.String("record"),
				)
			},
		},
		{
			Name:  "inspect-dek",
			Usage: "Show the metadata of a protected record's data encryption key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "record",
					Aliases:  []string{"r"},
					Required: true,
					Usage:    "Protected record identifier",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
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

				return commands.RunInspectDek(
					ctx,
					envelopeUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("record"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "destroy-dek",
			Usage: "Destroy the data encryption key of a protected record",
			Flags: []cli.Flag{
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
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
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

				return commands.RunDestroyDek(
					ctx,
					envelopeUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("owner"),
					cmd.String("record"),
					cmd.String("format"),
				)
			},
		},
		{
			Name:  "destroy-owner-deks",
			Usage: "Destroy every active data encryption key that belongs to an owner",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "owner",
					Aliases:  []string{"o"},
					Required: true,
					Usage:    "Owner (tenant) whose keys will be destroyed",
				},
				&cli.IntFlag{
					Name:    "batch-size",
					Aliases: []string{"b"},
					Value:   100,
					Usage:   "Number of records fetched per batch",
				},
				&cli.FloatFlag{
					Name:    "rps",
					Value:   0,
					Usage:   "Maximum destructions per second (0 disables the cap)",
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

				return commands.RunDestroyOwnerDeks(
					ctx,
					envelopeUseCase,
					container.Logger(),
					commands.DefaultIO().Writer,
					cmd.String("owner"),
					int(cmd.Int("batch-size")),
					cmd.Float("rps"),
				)
			},
		},
	}
}
