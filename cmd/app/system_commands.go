package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/allisson/envelope/cmd/app/commands"
	"github.com/allisson/envelope/internal/app"
	"github.com/allisson/envelope/internal/config"
)

func getSystemCommands(version string) []*cli.Command {
	return []*cli.Command{
		{
			Name:  "server",
			Usage: "Start the operational HTTP server",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunServer(ctx, version)
			},
		},
		{
			Name:  "migrate",
			Usage: "Run database migrations",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunMigrations(container.Logger(), cfg.DBDriver, cfg.DBConnectionString)
			},
		},
		{
			Name:  "generate-master-secret",
			Usage: "Generate a new master secret with its verification fingerprint",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				return commands.RunGenerateMasterSecret(
					container.Logger(),
					commands.DefaultIO().Writer,
				)
			},
		},
		{
			Name:  "fingerprint-master-secret",
			Usage: "Print the verification fingerprint for a master secret read from stdin",
			Action: func(ctx context.Context, cmd *cli.Command) error {
				cfg := config.Load()
				container := app.NewContainer(cfg)
				defer func() { _ = container.Shutdown(ctx) }()

				stdio := commands.DefaultIO()
				return commands.RunFingerprintMasterSecret(container.Logger(), stdio.Reader, stdio.Writer)
			},
		},
	}
}
