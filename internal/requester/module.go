package requester

import (
	"go.uber.org/fx"
)

// Module provides the requester module dependencies
var Module = fx.Module("requester",
	fx.Provide(
		fx.Annotate(
			NewHTTPRequester,
			fx.As(new(Requester)),
		),
		fx.Annotate(
			NewAPIKeyAuthManager,
			fx.As(new(AuthManager)),
		),
	),
)
