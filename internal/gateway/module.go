package gateway

import "go.uber.org/fx"

// Module provides the provider gateway
var Module = fx.Module("gateway",
	fx.Provide(NewClient),
)
