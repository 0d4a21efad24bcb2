package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/buyer-signals/internal/store"
)

// initStore builds the run store for the configured driver.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "", "fs":
		return store.NewFS(cfg.Store.OutDir), nil
	case "sqlite":
		if cfg.Store.DatabaseURL == "" {
			return nil, eris.New("store: sqlite driver requires store.database_url")
		}
		return store.NewSQLite(cfg.Store.DatabaseURL)
	case "postgres":
		if cfg.Store.DatabaseURL == "" {
			return nil, eris.New("store: postgres driver requires store.database_url")
		}
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL)
	default:
		return nil, eris.Errorf("store: unknown driver %q", cfg.Store.Driver)
	}
}
