package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/brizzai/resy-client/internal/app"
	"github.com/brizzai/resy-client/internal/logger"
	"github.com/brizzai/resy-client/internal/server"
	"github.com/spf13/cobra"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the reservation HTTP proxy",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, false)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var srv *server.Server
	a, err := app.New(app.Proxy(cfg), fx.WithLogger(logger.FxLogger), &srv)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}
	defer func() {
		if err := a.Stop(context.Background()); err != nil {
			logger.Error("failed to stop application", zap.Error(err))
		}
	}()

	return srv.Start(ctx)
}
