package container

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/do"
	"github.com/serroba/url-shortener/internal/shortener"
	"github.com/serroba/url-shortener/internal/store"
	"go.uber.org/zap"
)

var errNoDatabaseURL = errors.New("postgres store requires --database-url")

// StorePackage provides the mapping repository selected by Options.StoreDriver,
// wrapped in the redis cache when redis is configured or in the local cache otherwise.
func StorePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (shortener.Repository, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		backend, err := OpenStore(context.Background(), opts)
		if err != nil {
			return nil, err
		}

		ttl := time.Duration(opts.CacheTTLSeconds) * time.Second

		switch {
		case redisEnabled(i):
			client := do.MustInvoke[*RedisClient](i)
			logger.Info("using redis cache", zap.String("addr", opts.RedisAddr), zap.Duration("ttl", ttl))

			return store.NewRedisCacheRepository(backend, client.Client, ttl, logger.Named("cache")), nil
		case ttl > 0:
			logger.Info("using local cache", zap.Duration("ttl", ttl))

			return store.NewLocalCacheRepository(backend, ttl), nil
		default:
			return backend, nil
		}
	})
}

// OpenStore opens the backing store and applies its schema.
func OpenStore(ctx context.Context, opts *Options) (shortener.Repository, error) {
	switch opts.StoreDriver {
	case StoreSQLite:
		return store.OpenSQLite(opts.SQLitePath)
	case StorePostgres:
		if opts.DatabaseURL == "" {
			return nil, errNoDatabaseURL
		}

		pool, err := pgxpool.New(ctx, opts.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		pg := store.NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			pool.Close()

			return nil, err
		}

		return pg, nil
	case StoreMemory:
		return store.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", opts.StoreDriver)
	}
}
