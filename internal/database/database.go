// Package database opens Hearth's single SQLite file and keeps its schema
// current. All family, record, invite, and session state lives in this one
// database; there is no external service to sync with.
package database

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrations embed.FS

// dsnParams tunes SQLite for a small multi-reader web app: WAL so dashboard
// reads don't block approval writes, a busy timeout instead of immediate
// SQLITE_BUSY, and foreign keys on so memberships and records cannot outlive
// their family.
const dsnParams = "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=on"

// Open opens the database at dbPath (":memory:" in tests) and migrates it to
// the latest schema.
func Open(dbPath string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dbPath+dsnParams)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := migrate(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return db, nil
}

func migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}
