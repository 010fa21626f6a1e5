package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"

	"github.com/platinummonkey/authgate/pkg/observability"
	"github.com/platinummonkey/authgate/pkg/storage"
	"github.com/platinummonkey/authgate/pkg/storage/cache"
	"github.com/platinummonkey/authgate/pkg/storage/postgres"
	"github.com/platinummonkey/authgate/pkg/storage/sqlite"
)

// backend is the user store together with the connections it owns
type backend struct {
	store storage.UserStore
	db    *sql.DB       // nil for the memory store
	redis *redis.Client // nil unless an L2 cache is configured
}

func (b *backend) Close() error {
	var errs []error
	if b.redis != nil {
		if err := b.redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("redis: %w", err))
		}
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("database: %w", err))
		}
	}
	return errors.Join(errs...)
}

// openBackend builds the store stack: base store, metrics, then cache
func openBackend(ctx context.Context, cfg storage.Config, logger *observability.Logger, metrics *observability.Metrics) (*backend, error) {
	b := &backend{}

	var base storage.UserStore
	switch cfg.Type {
	case storage.TypeMemory:
		logger.Warn("Using in-memory user store; accounts are lost on restart")
		base = storage.NewMemoryStore()

	case storage.TypePostgres:
		db, err := postgres.Open(ctx, postgres.ConnectionConfigFrom(cfg))
		if err != nil {
			return nil, err
		}
		b.db = db
		if cfg.AutoMigrate {
			if err := postgres.EnsureSchema(ctx, db); err != nil {
				b.Close()
				return nil, err
			}
		}
		base = postgres.NewUserStore(db)

	case storage.TypeSQLite:
		db, err := sqlite.Open(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		b.db = db
		if cfg.AutoMigrate {
			if err := sqlite.EnsureSchema(ctx, db); err != nil {
				b.Close()
				return nil, err
			}
		}
		base = sqlite.NewUserStore(db)

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}

	logger.WithField("type", cfg.Type).Info("User store initialized")

	var store storage.UserStore = storage.NewInstrumentedStore(base, metrics)

	if !cfg.CacheEnabled {
		b.store = store
		return b, nil
	}

	opts := cache.Options{
		Size:    cfg.L1CacheSize,
		TTL:     cfg.CacheTTL,
		Metrics: metrics,
		Logger:  logger,
	}

	if cfg.RedisURL != "" {
		client, err := cache.NewRedisClient(ctx, cfg)
		if err != nil {
			b.Close()
			return nil, err
		}
		b.redis = client
		opts.Redis = cache.NewRedisUserCache(client, cfg.CacheTTL)
		logger.Info("Redis user cache enabled")
	}

	b.store = cache.NewCachedUserStore(store, opts)
	return b, nil
}
