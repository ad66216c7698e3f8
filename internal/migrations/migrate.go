// Package migrations applies the embedded goose migrations.
package migrations

import (
	"database/sql"
	"embed"

	"github.com/cockroachdb/errors"
	"github.com/pressly/goose/v3"
)

const (
	sqliteDialect = "sqlite3"
	migrationsDir = "sql"
)

//go:embed sql/*.sql
var embedded embed.FS

// Up runs all pending migrations. A nil logger keeps goose's default output.
func Up(db *sql.DB, logger goose.Logger) error {
	goose.SetBaseFS(embedded)
	if logger != nil {
		goose.SetLogger(logger)
	}

	if err := goose.SetDialect(sqliteDialect); err != nil {
		return errors.Wrap(err, "set goose dialect")
	}

	if err := goose.Up(db, migrationsDir); err != nil {
		return errors.Wrap(err, "run goose up migrations")
	}

	return nil
}
