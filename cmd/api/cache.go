package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"github.com/pkordes/dayplanner/internal/config"
	"github.com/pkordes/dayplanner/internal/repo"
)

// openCache builds the response cache selected by cfg.Driver. SQL drivers
// have their schema migrated before the cache is returned. The returned
// close function releases the underlying connections.
func openCache(ctx context.Context, cfg config.CacheConfig, logger *slog.Logger) (repo.RecordCache, func() error, error) {
	opts := []repo.Option{repo.WithTTL(cfg.TTL)}
	noop := func() error { return nil }

	switch cfg.Driver {
	case config.CachePostgres:
		// pgxpool.New does not open connections immediately; the ping does.
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("ping: %w", err)
		}
		applied, err := repo.MigratePool(ctx, pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("migrations applied", "count", applied)
		return repo.NewPostgresRecordCache(pool, opts...), func() error { pool.Close(); return nil }, nil

	case config.CacheSQLite:
		db, err := repo.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		applied, err := repo.Migrate(ctx, db, goose.DialectSQLite3)
		if err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		logger.Info("migrations applied", "count", applied, "path", cfg.SQLitePath)
		return repo.NewSQLiteRecordCache(db, opts...), db.Close, nil

	case config.CacheRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("ping: %w", err)
		}
		return repo.NewRedisRecordCache(rdb, opts...), rdb.Close, nil

	default:
		return repo.NewNoopCache(), noop, nil
	}
}
