package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/pkordes/dayplanner/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Integration tests pass a transaction that is rolled back after each test.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// pgRecordCache is the Postgres implementation of RecordCache.
type pgRecordCache struct {
	db   db
	opts options
}

// NewPostgresRecordCache constructs a RecordCache backed by the provided db.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewPostgresRecordCache(db db, opts ...Option) RecordCache {
	return &pgRecordCache{db: db, opts: buildOptions(opts)}
}

// Get returns the live entry for key.
func (r *pgRecordCache) Get(ctx context.Context, key string) ([]domain.Record, error) {
	const q = `
		SELECT records
		FROM record_cache
		WHERE cache_key = @key
		  AND (expires_at = 0 OR expires_at > @now)`

	var raw string
	err := r.db.QueryRow(ctx, q, pgx.NamedArgs{
		"key": key,
		"now": r.opts.now().Unix(),
	}).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
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

// Put upserts the entry for key.
func (r *pgRecordCache) Put(ctx context.Context, key string, records []domain.Record) error {
	const q = `
		INSERT INTO record_cache (cache_key, records, created_at, expires_at)
		VALUES (@key, @records, @created_at, @expires_at)
		ON CONFLICT (cache_key) DO UPDATE
		SET records = EXCLUDED.records,
		    created_at = EXCLUDED.created_at,
		    expires_at = EXCLUDED.expires_at`

	raw, err := encodeRecords(records)
	if err != nil {
		return fmt.Errorf("repo.RecordCache.Put: %w", err)
	}
	_, err = r.db.Exec(ctx, q, pgx.NamedArgs{
		"key":        key,
		"records":    raw,
		"created_at": r.opts.now().Unix(),
		"expires_at": r.opts.expiresAt(),
	})
	if err != nil {
		return fmt.Errorf("repo.RecordCache.Put: %w", err)
	}
	return nil
}
