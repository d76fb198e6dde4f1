package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/meshcloud/meshstack-auth/internal/action"
	"github.com/meshcloud/meshstack-auth/internal/app"
	"github.com/meshcloud/meshstack-auth/internal/observability"
)

// Execute runs the root command against the GitHub Actions host.
func Execute(ctx context.Context, args []string) error {
	return newRootCommand(action.NewGitHub(), os.Environ).Run(ctx, args)
}

func newRootCommand(host action.Host, environFunc func() []string) *cli.Command {
	login := loginAction(host, environFunc)

	return &cli.Command{
		Name:  "meshstack-auth",
		Usage: "meshStack client-credentials login for CI pipelines",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to config file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log level (debug|info|warn|error)",
				Value: slog.LevelInfo.String(),
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "log format (auto|actions|text|json)",
				Value: string(app.DefaultConfigLogFormat),
			},
			&cli.StringFlag{
				Name:  "auth--client-id",
				Usage: "meshStack API key client id",
			},
			&cli.StringFlag{
				Name:  "auth--key-secret",
				Usage: "meshStack API key secret",
			},
			&cli.StringFlag{
				Name:  "auth--base-url",
				Usage: "meshStack base URL",
			},
			&cli.StringFlag{
				Name:  "token--dir",
				Usage: "directory for the token file (default: $RUNNER_TEMP or the OS temp dir)",
			},
			&cli.StringFlag{
				Name:  "telemetry--exporter",
				Usage: "OpenTelemetry log exporter (none|stdout|otlphttp|otlpgrpc)",
				Value: string(app.DefaultConfigTelemetryExporter),
			},
		},
		// Running without subcommand logs in, which is how the action invokes the binary
		Action: login,
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "obtain a token and write it to the token file",
				Action: login,
			},
		},
	}
}

// loginAction marks the host failed for any error, then returns it for the exit code.
func loginAction(host action.Host, environFunc func() []string) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) (err error) {
		defer func() {
			if err != nil {
				host.SetFailed(fmt.Sprintf("Action failed with error: %v", err))
			}
		}()

		cfg, err := loadConfig(cmd.String("config"), cmd, environFunc, host)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		// Set up observability before creating app
		shutdown, err := observability.Instrument(ctx, observability.Options{
			Level:    cfg.LogLevel,
			Format:   string(cfg.LogFormat),
			Exporter: string(cfg.Telemetry.Exporter),
			Host:     host,
		})
		if err != nil {
			return fmt.Errorf("failed to set up observability layer: %w", err)
		}
		defer func() {
			if serr := shutdown(context.WithoutCancel(ctx)); serr != nil {
				slog.WarnContext(ctx, "telemetry shutdown failed", "error", serr)
			}
		}()

		application, err := app.New(cfg, host)
		if err != nil {
			return fmt.Errorf("failed to create app: %w", err)
		}

		return application.Run(ctx)
	}
}
