package server

import (
	"context"
	"fmt"

	"github.com/hongminglow/moneyhive-bank/internal/config"
	"github.com/hongminglow/moneyhive-bank/internal/storage"
	"github.com/hongminglow/moneyhive-bank/internal/storage/memory"
	"github.com/hongminglow/moneyhive-bank/internal/storage/mongodb"
	"github.com/hongminglow/moneyhive-bank/internal/storage/postgres"
)

// OpenStore connects the storage backend selected by cfg.Driver.
func OpenStore(ctx context.Context, cfg config.Config) (storage.Store, error) {
	switch cfg.Driver {
	case config.DriverMongo:
		store, err := mongodb.NewStore(ctx, cfg.MongoURI, cfg.MongoDB)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverPostgres:
		store, err := postgres.NewStore(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return store, nil
	case config.DriverMemory:
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Driver)
	}
}
