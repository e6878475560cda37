// Package tokenstore persists the console's bearer token between runs, the
// way a browser dashboard keeps it in local storage.
package tokenstore

import (
	"context"
	"fmt"

	"github.com/SigNoz/ecommerce-console/internal/db"
	"github.com/SigNoz/ecommerce-console/internal/metrics"
	"github.com/SigNoz/ecommerce-console/pkg/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Store keeps a single access token. Get returns "" when none is stored.
type Store interface {
	Get(ctx context.Context) (string, error)
	Set(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Open builds the backend selected by cfg.TokenStore. The returned close
// function releases the backend's connections.
func Open(ctx context.Context, cfg *config.Config, m *metrics.AppMetrics, logger zerolog.Logger) (Store, func() error, error) {
	switch cfg.TokenStore {
	case config.TokenStoreFile, "":
		logger.Info().Str("path", cfg.TokenFile).Msg("using file token store")
		return NewFileStore(cfg.TokenFile), func() error { return nil }, nil

	case config.TokenStoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			rdb.Close()
			return nil, nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
		}
		logger.Info().Str("addr", cfg.RedisAddr).Str("key", cfg.RedisTokenKey).Msg("using redis token store")
		return NewRedisStore(rdb, cfg.RedisTokenKey), rdb.Close, nil

	case config.TokenStoreMySQL:
		database, err := db.NewDB(ctx, cfg.GetDSN(), cfg.OTELServiceName, logger)
		if err != nil {
			return nil, nil, err
		}
		store := NewMySQLStore(database, m)
		if err := store.Migrate(ctx); err != nil {
			database.Close()
			return nil, nil, err
		}
		logger.Info().Str("host", cfg.DBHost).Str("database", cfg.DBName).Msg("using mysql token store")
		return store, database.Close, nil
	}

	return nil, nil, fmt.Errorf("unknown token store %q", cfg.TokenStore)
}
