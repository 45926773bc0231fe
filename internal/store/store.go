package store

import (
	"context"
	"fmt"

	"github.com/amishk599/vacancywatch/internal/config"
	"github.com/amishk599/vacancywatch/internal/model"
)

// Open returns the store selected by cfg.Type.
func Open(ctx context.Context, cfg config.StoreConfig) (model.KnownSetStore, error) {
	switch cfg.Type {
	case config.StoreFile, "":
		return NewFileStore(cfg.Path), nil
	case config.StoreSQLite:
		return NewSQLiteStore(cfg.Path)
	case config.StorePostgres:
		return NewPostgresStore(ctx, cfg.DSN)
	default:
		return nil, fmt.Errorf("unsupported store type %q", cfg.Type)
	}
}
