package secrets

import (
	"context"

	"github.com/brizzai/resy-client/internal/config"
	"go.uber.org/fx"
)

// Module provides the configured secret store
var Module = fx.Module("secrets",
	fx.Provide(func(cfg *config.SecretsConfig) (Store, error) {
		return NewStore(context.Background(), cfg)
	}),
)
