package config

import (
	"go.uber.org/fx"
)

// Module supplies a loaded configuration and its sections
func Module(cfg *Config) fx.Option {
	return fx.Module("config",
		fx.Supply(cfg),
		fx.Provide(
			func(c *Config) *LoggingConfig { return &c.Logging },
			func(c *Config) *ProviderConfig { return &c.Provider },
			func(c *Config) *SecretsConfig { return &c.Secrets },
			func(c *Config) *ReservationsConfig { return &c.Reservations },
		),
	)
}
