// Package migrations holds the bun schema migrations for the email template
// manager. Migrations are dialect-aware: PostgreSQL is the production target,
// SQLite serves tests and local development (and silently skips the
// PostgreSQL-only row-level-security migration).
package migrations

import "github.com/uptrace/bun/migrate"

// Migrations is the registry all migration files attach to via init().
var Migrations = migrate.NewMigrations()
