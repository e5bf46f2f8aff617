package main

import (
	"context"

	"github.com/urfave/cli/v3"

	"github.com/checktick/surveyvault/cmd/app/commands"
	"github.com/checktick/surveyvault/internal/app"
	"github.com/checktick/surveyvault/internal/config"
)

func getSurveyCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "create-organization",
			Usage: "Create an organization with a fresh escrow master key",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "name",
					Aliases:  []string{"n"},
					Required: true,
					Usage:    "Organization name",
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

				organizationUseCase, err := container.OrganizationUseCase()
				if err != nil {
					return err
				}

				return commands.RunCreateOrganization(
					ctx,
					organizationUseCase,
					container.Logger(),
					cmd.String("name"),
					cmd.String("format"),
					commands.DefaultIO(),
				)
			},
		},
		{
			Name:  "generate-recovery-phrase",
			Usage: "Generate a recovery phrase without touching any survey",
			Flags: []cli.Flag{
				&cli.IntFlag{
					Name:    "words",
					Aliases: []string{"w"},
					Value:   12,
					Usage:   "Word count: 12, 15, 18, 21 or 24",
				},
				&cli.StringFlag{
					Name:    "format",
					Aliases: []string{"f"},
					Value:   "text",
					Usage:   "Output format: 'text' or 'json'",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunGenerateRecoveryPhrase(
					commands.DefaultIO().Writer,
					int(cmd.Int("words")),
					cmd.String("format"),
				)
			},
		},
	}
}
