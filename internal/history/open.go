package history

import (
	"context"
	"fmt"

	"github.com/msto63/diktat/pkg/core/config"
)

// Open creates the configured substrate and wraps it in a Store
func Open(ctx context.Context, cfg config.HistoryConfig) (*Store, error) {
	var (
		sub Substrate
		err error
	)
	switch cfg.Backend {
	case "", "sqlite":
		sub, err = NewSQLite(cfg.Path)
	case "mongo":
		sub, err = NewMongo(ctx, MongoConfig{
			URI:        cfg.MongoURI,
			Database:   cfg.MongoDatabase,
			Collection: cfg.MongoCollection,
		})
	case "file":
		sub, err = NewFile(cfg.Path)
	case "memory":
		sub = NewMemory()
	default:
		return nil, fmt.Errorf("unknown history backend: %s", cfg.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s history: %w", cfg.Backend, err)
	}
	return NewStore(sub, cfg.Key), nil
}
