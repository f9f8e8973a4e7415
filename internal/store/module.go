package store

import (
	"context"

	"github.com/brizzai/resy-client/internal/config"
	"github.com/brizzai/resy-client/internal/logger"
	"go.uber.org/fx"
)

// NewStore opens Postgres when a DSN is configured and falls back to memory otherwise
func NewStore(ctx context.Context, cfg *config.DatabaseConfig) (ReservationStore, error) {
	if cfg.DSN == "" {
		logger.Warn("no database configured, booking records are kept in memory")
		return NewMemoryStore(), nil
	}
	return OpenPostgres(ctx, cfg.DSN)
}

// Module provides the reservation record store and closes it on shutdown
var Module = fx.Module("store",
	fx.Provide(
		func(c *config.Config) *config.DatabaseConfig { return &c.Database },
		func(lc fx.Lifecycle, cfg *config.DatabaseConfig) (ReservationStore, error) {
			s, err := NewStore(context.Background(), cfg)
			if err != nil {
				return nil, err
			}
			lc.Append(fx.StopHook(s.Close))
			return s, nil
		},
	),
)
