package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/tagpack/pkg/cli/config"
	"github.com/m-mizutani/tagpack/pkg/domain/types"
	"github.com/urfave/cli/v3"
)

// Run runs the CLI application
func Run(ctx context.Context, args []string) error {
	var (
		loggerCfg  config.Logger
		sentryCfg  config.Sentry
		projectCfg config.Project
		logger     *slog.Logger
	)

	flags := append(loggerCfg.Flags(), sentryCfg.Flags()...)
	flags = append(flags, projectCfg.Flags()...)

	app := &cli.Command{
		Name:    types.ServiceName,
		Usage:   "Package version refs of a Drupal module and publish release history",
		Version: types.Version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}
			if err := sentryCfg.Configure(); err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			return loggerCfg.Close()
		},
		Commands: []*cli.Command{
			cmdPackage(&projectCfg),
			cmdList(),
			cmdVerify(),
			cmdServe(&projectCfg),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		logger.Error("CLI execution failed", slog.Any("error", err))
		sentryCfg.Capture(err)
		return err
	}

	return nil
}

// stdout returns the writer command output goes to
func stdout(c *cli.Command) io.Writer {
	if w := c.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}
