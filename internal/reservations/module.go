package reservations

import (
	"github.com/brizzai/resy-client/internal/auth"
	"github.com/brizzai/resy-client/internal/gateway"
	"go.uber.org/fx"
)

// Module provides the aggregator backed by the auth flow and the provider gateway
var Module = fx.Module("reservations",
	fx.Provide(
		fx.Annotate(
			func(f *auth.Flow) *auth.Flow { return f },
			fx.As(new(TokenSource)),
		),
		fx.Annotate(
			func(c *gateway.Client) *gateway.Client { return c },
			fx.As(new(Fetcher)),
		),
		NewAggregator,
	),
)
