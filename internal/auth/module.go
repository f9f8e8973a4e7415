package auth

import (
	"github.com/brizzai/resy-client/internal/gateway"
	"go.uber.org/fx"
)

// Module provides the login flow on top of the provider gateway
var Module = fx.Module("auth",
	fx.Provide(
		fx.Annotate(
			func(c *gateway.Client) *gateway.Client { return c },
			fx.As(new(Gateway)),
		),
		NewFlow,
	),
)
