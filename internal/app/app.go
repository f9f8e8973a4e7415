// Package app composes the fx modules into the client and proxy graphs.
package app

import (
	"github.com/brizzai/resy-client/internal/apidoc"
	"github.com/brizzai/resy-client/internal/auth"
	"github.com/brizzai/resy-client/internal/config"
	"github.com/brizzai/resy-client/internal/gateway"
	"github.com/brizzai/resy-client/internal/requester"
	"github.com/brizzai/resy-client/internal/reservations"
	"github.com/brizzai/resy-client/internal/secrets"
	"github.com/brizzai/resy-client/internal/server"
	"github.com/brizzai/resy-client/internal/session"
	"github.com/brizzai/resy-client/internal/store"
	"go.uber.org/fx"
)

// Client wires the provider gateway, the session store, the login flow and the aggregator
func Client(cfg *config.Config) fx.Option {
	return fx.Options(
		config.Module(cfg),
		secrets.Module,
		requester.Module,
		gateway.Module,
		session.Module,
		auth.Module,
		reservations.Module,
	)
}

// Proxy adds the HTTP proxy, its OpenAPI document and the booking record store to Client
func Proxy(cfg *config.Config) fx.Option {
	return fx.Options(
		Client(cfg),
		apidoc.Module,
		store.Module,
		server.Module,
	)
}

// New builds an application from opts and fills targets with the resolved components
func New(opts fx.Option, logger fx.Option, targets ...interface{}) (*fx.App, error) {
	a := fx.New(opts, logger, fx.Populate(targets...))
	if err := a.Err(); err != nil {
		return nil, err
	}
	return a, nil
}
