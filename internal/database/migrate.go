package database

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/iliyamo/airline-reservation/internal/config"
)

//go:embed migrations/mysql/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

func migrationDir(driver string) (dir, dialect string, err error) {
	switch driver {
	case config.DriverMySQL, "":
		return "migrations/mysql", "mysql", nil
	case config.DriverSQLite:
		return "migrations/sqlite", "sqlite3", nil
	}
	return "", "", fmt.Errorf("unsupported driver %q", driver)
}

func withGoose(driver string, fn func(dir string) error) error {
	dir, dialect, err := migrationDir(driver)
	if err != nil {
		return err
	}
	gooseMu.Lock()
	defer func() {
		goose.SetBaseFS(nil)
		gooseMu.Unlock()
	}()
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return fn(dir)
}

// MigrateUp applies every pending migration for the driver.
func MigrateUp(ctx context.Context, db *sql.DB, driver string) error {
	return withGoose(driver, func(dir string) error {
		if err := goose.UpContext(ctx, db, dir); err != nil {
			return fmt.Errorf("apply migrations: %w", err)
		}
		return nil
	})
}

// MigrateDown rolls back the most recent migration.
func MigrateDown(ctx context.Context, db *sql.DB, driver string) error {
	return withGoose(driver, func(dir string) error {
		if err := goose.DownContext(ctx, db, dir); err != nil {
			return fmt.Errorf("rollback migration: %w", err)
		}
		return nil
	})
}

// MigrateStatus prints the applied/pending state of each migration to out.
func MigrateStatus(ctx context.Context, db *sql.DB, driver string, out io.Writer) error {
	return withGoose(driver, func(dir string) error {
		goose.SetLogger(log.New(out, "", 0))
		defer goose.SetLogger(goose.NopLogger())
		return goose.StatusContext(ctx, db, dir)
	})
}

// Silence goose's stdout chatter outside of MigrateStatus.
func init() {
	goose.SetLogger(goose.NopLogger())
}
