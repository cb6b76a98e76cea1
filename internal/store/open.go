package store

import (
	"context"
	"fmt"

	"github.com/Afhammirza1/sharingapp/internal/config"
)

// Open connects the backend selected by the configuration. It returns
// (nil, nil) when the store is explicitly disabled.
func Open(ctx context.Context, cfg *config.Config) (RoomStore, error) {
	switch cfg.StoreBackend {
	case config.BackendNone:
		return nil, nil
	case config.BackendFirestore:
		return NewFirestoreStore(ctx, cfg.FirestoreProjectID, cfg.FirebaseCredentialsFile)
	case config.BackendRedis:
		return NewRedisStore(ctx, cfg.RedisURL)
	case config.BackendPostgres:
		if err := RunMigrations(cfg.DatabaseURL); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		return NewPostgresStore(ctx, cfg.DatabaseURL)
	case config.BackendSQLite:
		return NewSQLiteStore(ctx, cfg.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
