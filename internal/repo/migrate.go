package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/pkordes/dayplanner/migrations"
)

// Migrate applies every pending migration in migrations.FS to db.
// Returns the number of migrations applied.
func Migrate(ctx context.Context, db *sql.DB, dialect goose.Dialect) (int, error) {
	provider, err := goose.NewProvider(dialect, db, migrations.FS)
	if err != nil {
		return 0, fmt.Errorf("repo.Migrate: create provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("repo.Migrate: up: %w", err)
	}
	return len(results), nil
}

// MigratePool applies pending Postgres migrations through pool. The
// database/sql handle goose needs is closed before returning; pool stays open.
func MigratePool(ctx context.Context, pool *pgxpool.Pool) (int, error) {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	return Migrate(ctx, db, goose.DialectPostgres)
}
