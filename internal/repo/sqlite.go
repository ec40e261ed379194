package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite" // registers "sqlite" driver for database/sql

	"github.com/pkordes/dayplanner/internal/domain"
)

// OpenSQLite opens the SQLite database at path with WAL journaling.
func OpenSQLite(ctx context.Context, path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("repo.OpenSQLite: %w", err)
	}
	// One writer at a time; SQLite serialises writes anyway.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("repo.OpenSQLite: %s: %w", pragma, err)
		}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("repo.OpenSQLite: ping: %w", err)
	}
	return db, nil
}

// sqliteRecordCache is the SQLite implementation of RecordCache.
type sqliteRecordCache struct {
	db   *sql.DB
	opts options
}

// NewSQLiteRecordCache constructs a RecordCache backed by db, which must
// already carry the record_cache table (see Migrate).
func NewSQLiteRecordCache(db *sql.DB, opts ...Option) RecordCache {
	return &sqliteRecordCache{db: db, opts: buildOptions(opts)}
}

// Get returns the live entry for key.
func (r *sqliteRecordCache) Get(ctx context.Context, key string) ([]domain.Record, error) {
	const q = `
		SELECT records
		FROM record_cache
		WHERE cache_key = ?
		  AND (expires_at = 0 OR expires_at > ?)`

	var raw string
	err := r.db.QueryRowContext(ctx, q, key, r.opts.now().Unix()).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
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
func (r *sqliteRecordCache) Put(ctx context.Context, key string, records []domain.Record) error {
	const q = `
		INSERT INTO record_cache (cache_key, records, created_at, expires_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (cache_key) DO UPDATE
		SET records = excluded.records,
		    created_at = excluded.created_at,
		    expires_at = excluded.expires_at`

	raw, err := encodeRecords(records)
	if err != nil {
		return fmt.Errorf("repo.RecordCache.Put: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, q, key, raw, r.opts.now().Unix(), r.opts.expiresAt()); err != nil {
		return fmt.Errorf("repo.RecordCache.Put: %w", err)
	}
	return nil
}
