// internal/storage/trade/factory.go
package trade

import (
	"fmt"
	"time"

	"github.com/adiptan/trading-journal/internal/config"
	"github.com/adiptan/trading-journal/internal/core"
	"go.uber.org/zap"
)

// Open creates the store selected by cfg.Driver.
func Open(cfg config.StorageConfig, loc *time.Location, logger *zap.Logger) (Store, error) {
	switch cfg.Driver {
	case "memory":
		return NewMemoryStore(cfg.MaxTrades, loc), nil
	case "postgres":
		return NewPostgresStore(cfg.DSN, loc, logger)
	case "sqlite", "":
		return NewSQLiteStore(cfg.Path, loc, logger)
	default:
		return nil, core.WrapError(core.ErrConfigInvalid, fmt.Errorf("unknown storage driver: %s", cfg.Driver))
	}
}
