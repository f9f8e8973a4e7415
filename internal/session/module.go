package session

import (
	"github.com/brizzai/resy-client/internal/config"
	"go.uber.org/fx"
)

// Module provides the session store
var Module = fx.Module("session",
	fx.Provide(
		func(c *config.Config) *config.SessionConfig { return &c.Session },
		NewStore,
	),
)
