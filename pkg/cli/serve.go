package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/tagpack/pkg/cli/config"
	controller "github.com/m-mizutani/tagpack/pkg/controller/http"
	"github.com/m-mizutani/tagpack/pkg/usecase"
	"github.com/urfave/cli/v3"
)

func cmdServe(project *config.Project) *cli.Command {
	var (
		serverCfg config.Server
		githubCfg config.GitHub
	)
	pkgCfg := &packagerConfig{project: project}

	flags := append(serverCfg.Flags(), githubCfg.Flags()...)
	flags = append(flags, pkgCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Serve release history and archives, packaging on push hooks",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			packager, repo, stores, err := pkgCfg.build(ctx)
			if err != nil {
				return err
			}
			defer func() {
				if err := stores.Close(); err != nil {
					logger.Warn("Failed to close storage", "error", err)
				}
			}()

			logger.Info("Starting tagpack server",
				slog.String("addr", serverCfg.Addr),
				slog.String("repository", repo.Dir()),
				slog.Bool("push_hook", githubCfg.Enabled()),
			)

			history := usecase.NewHistory(stores.Archives, stores.Descriptors)
			opts := []controller.Option{
				controller.WithAddr(serverCfg.Addr),
				controller.WithRepository(repo.Dir()),
			}

			var hook *usecase.Hook
			if githubCfg.Enabled() {
				kind, err := pkgCfg.repo.Kind()
				if err != nil {
					return err
				}
				matcher, err := pkgCfg.repo.Matcher()
				if err != nil {
					return err
				}
				hook, err = usecase.NewHook(packager, matcher, kind)
				if err != nil {
					return err
				}
				opts = append(opts,
					controller.WithWebhookSecret(githubCfg.WebhookSecret),
					controller.WithHook(hook),
				)
			} else {
				logger.Warn("No webhook secret configured, POST /hooks/push is disabled")
			}

			server, err := controller.NewServer(ctx, packager, history, opts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "HTTP server failed", goerr.V("addr", serverCfg.Addr))
				}
			}()

			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
			defer signal.Stop(sigChan)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			case err := <-errCh:
				return err
			}

			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			if hook != nil {
				logger.Info("Waiting for packaging runs to finish")
				hook.Wait()
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
