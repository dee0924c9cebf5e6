package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/itam-hack/checkpoint/pkg/cli/config"
	controller "github.com/itam-hack/checkpoint/pkg/controller/http"
	"github.com/itam-hack/checkpoint/pkg/usecase"
)

func cmdServe() *cli.Command {
	var (
		serverCfg config.Server
		sentryCfg config.Sentry
		authCfg   config.Auth
		rtCfg     runtimeConfig
	)

	flags := serverCfg.Flags()
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, authCfg.Flags()...)
	flags = append(flags, rtCfg.github.Flags()...)
	flags = append(flags, rtCfg.registry.Flags()...)
	flags = append(flags, rtCfg.pipeline.Flags()...)
	flags = append(flags, rtCfg.google.Flags()...)
	flags = append(flags, rtCfg.firestore.Flags()...)
	flags = append(flags, rtCfg.storage.Flags()...)
	flags = append(flags, rtCfg.gemini.Flags()...)
	flags = append(flags, rtCfg.slack.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start the webhook server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := ctxlog.From(ctx)

			logger.Info("Starting checkpoint server",
				slog.String("addr", serverCfg.Addr),
				slog.String("publish_branch", rtCfg.pipeline.PublishBranch),
			)

			if err := sentryCfg.Configure(); err != nil {
				return err
			}
			defer sentry.Flush(2 * time.Second)

			rt, err := buildRuntime(ctx, &rtCfg)
			if err != nil {
				return err
			}
			defer rt.Close(ctx)

			webhookUC := usecase.NewWebhook(rt.gateUC, rt.publishUC, rtCfg.pipeline.PublishBranch)

			opts := []controller.Option{
				controller.WithAddr(serverCfg.Addr),
				controller.WithWebhookSecret(rtCfg.github.WebhookSecret),
				controller.WithRunRepository(rt.runRepo),
			}
			if authCfg.JWKSURL != "" {
				opts = append(opts, controller.WithAPIAuth(authCfg.JWKSURL, authCfg.Issuer))
			}

			server, err := controller.NewServer(ctx, webhookUC, opts...)
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			// Start server in goroutine
			go func() {
				logger.Info("HTTP server starting", slog.String("addr", serverCfg.Addr))
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Error("HTTP server error", slog.Any("error", err))
				}
			}()

			// Wait for interrupt signal
			sigChan := make(chan os.Signal, 1)
			signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

			select {
			case <-ctx.Done():
				logger.Info("Context cancelled, shutting down...")
			case sig := <-sigChan:
				logger.Info("Signal received, shutting down...", slog.Any("signal", sig))
			}

			// Graceful shutdown
			shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return goerr.Wrap(err, "failed to shutdown server gracefully")
			}

			logger.Info("Server shutdown complete")
			return nil
		},
	}
}
