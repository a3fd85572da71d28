package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tjfontaine/polyglot-translate/internal/frontdoor"
	"github.com/tjfontaine/polyglot-translate/internal/server"
	"github.com/tjfontaine/polyglot-translate/internal/telemetry"
	"github.com/tjfontaine/polyglot-translate/internal/tokens"
)

func newServeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the translation API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx)
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	if a.cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(a.cfg.Telemetry.ServiceName, os.Stdout, a.logger)
		if err != nil {
			return err
		}
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				a.logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
			}
		}()
	}

	srv := server.New(server.Options{
		Port:           a.cfg.Server.Port,
		RequestTimeout: a.cfg.Server.RequestTimeout,
		ServiceName:    a.cfg.Telemetry.ServiceName,
	}, a.logger)

	frontdoor.NewHandler(frontdoor.Options{
		Translator:      a.translator,
		Tokens:          tokens.Default(),
		DefaultProvider: a.cfg.Translate.DefaultProvider,
		Logger:          a.logger,
	}).Routes(srv.Router)

	a.logger.Info("translation service ready",
		slog.Int("providers", a.translator.Registry().Len()),
		slog.String("default_provider", a.cfg.Translate.DefaultProvider))

	return srv.Run(ctx, a.cfg.Server.ShutdownTimeout)
}
