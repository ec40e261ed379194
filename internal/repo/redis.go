package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/pkordes/dayplanner/internal/domain"
)

const redisKeyPrefix = "dayplanner:records:"

// redisRecordCache is the Redis implementation of RecordCache.
// Expiry is delegated to Redis key TTLs.
type redisRecordCache struct {
	rdb  redis.Cmdable
	opts options
}

// NewRedisRecordCache constructs a RecordCache backed by rdb.
func NewRedisRecordCache(rdb redis.Cmdable, opts ...Option) RecordCache {
	return &redisRecordCache{rdb: rdb, opts: buildOptions(opts)}
}

// Get returns the entry for key.
func (r *redisRecordCache) Get(ctx context.Context, key string) ([]domain.Record, error) {
	raw, err := r.rdb.Get(ctx, redisKeyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("repo.RecordCache.Get: %w", domain.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("repo.RecordCache.Get: %w", err)
	}

	records, err := decodeRecords(raw)
	if err != nil {
		return nil, fmt.Errorf("repo.RecordCache.Get: %w", err)
	}
	return records, nil
}

// Put stores the entry for key with the configured TTL.
func (r *redisRecordCache) Put(ctx context.Context, key string, records []domain.Record) error {
	raw, err := encodeRecords(records)
	if err != nil {
		return fmt.Errorf("repo.RecordCache.Put: %w", err)
	}
	if err := r.rdb.Set(ctx, redisKeyPrefix+key, raw, r.opts.ttl).Err(); err != nil {
		return fmt.Errorf("repo.RecordCache.Put: %w", err)
	}
	return nil
}
