// Package server runs the reservation proxy over HTTP.
package server

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/brizzai/resy-client/internal/config"
	"github.com/brizzai/resy-client/internal/gateway"
	"github.com/brizzai/resy-client/internal/logger"
	"github.com/brizzai/resy-client/internal/reservations"
	"github.com/brizzai/resy-client/internal/server/handler"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	// defaultShutdownTimeout is used when server.shutdown_timeout is unset
	defaultShutdownTimeout = 5 * time.Second
	readHeaderTimeout      = 10 * time.Second
)

// Server serves the proxy handler on the configured address
type Server struct {
	config  *config.ServerConfig
	handler *handler.Handler
}

// NewServer creates a new Server for the given config and handler
func NewServer(cfg *config.ServerConfig, h *handler.Handler) *Server {
	return &Server{
		config:  cfg,
		handler: h,
	}
}

// Addr is the listen address built from the server config
func (s *Server) Addr() string {
	return net.JoinHostPort(s.config.Host, fmt.Sprint(s.config.Port))
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.Addr())
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.Addr(), err)
	}
	return s.Serve(ctx, listener)
}

// Serve is Start on an existing listener
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	server := &http.Server{
		Handler:           s.handler.CreateHTTPHandler(),
		ReadHeaderTimeout: readHeaderTimeout,
	}

	// Channel for server errors
	errChan := make(chan error, 1)

	go func() {
		logger.Info("Starting server", zap.String("address", listener.Addr().String()))

		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			errChan <- fmt.Errorf("server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		timeout := s.config.ShutdownTimeout
		if timeout <= 0 {
			timeout = defaultShutdownTimeout
		}
		logger.Info("Shutting down server", zap.Duration("timeout", timeout))

		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}
		return nil

	case err := <-errChan:
		return err
	}
}

// Module provides the proxy server and its handler
var Module = fx.Module("server",
	fx.Provide(
		func(c *config.Config) *config.ServerConfig { return &c.Server },
		fx.Annotate(
			func(a *reservations.Aggregator) *reservations.Aggregator { return a },
			fx.As(new(handler.ReservationFetcher)),
		),
		fx.Annotate(
			func(c *gateway.Client) *gateway.Client { return c },
			fx.As(new(handler.VenueGateway)),
		),
		handler.NewHandler,
		NewServer,
	),
)
