// Package migrations embeds the SQL migration files so the server and the
// tests can apply them with the goose provider API.
package migrations

import "embed"

// FS holds all *.sql migration files embedded at compile time.
// The SQL is portable between the Postgres and SQLite cache backends.
//
//go:embed *.sql
var FS embed.FS
