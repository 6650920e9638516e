package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/sethvargo/go-retry"
	_ "modernc.org/sqlite"

	"github.com/iliyamo/airline-reservation/internal/config"
	"github.com/iliyamo/airline-reservation/internal/logger"
)

// Options carries the connection settings Open needs. FromConfig builds it
// from the application Config.
type Options struct {
	Driver   string
	User     string
	Pass     string
	Host     string
	Port     string
	Name     string
	Path     string
	Attempts uint64 // connection attempts before giving up (0 = 1)
}

func FromConfig(cfg config.Config) Options {
	return Options{
		Driver:   cfg.DBDriver,
		User:     cfg.DBUser,
		Pass:     cfg.DBPass,
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		Name:     cfg.DBName,
		Path:     cfg.DBPath,
		Attempts: 5,
	}
}

// Open connects to MySQL or SQLite and verifies the connection, retrying the
// ping with exponential backoff while the database comes up.
func Open(ctx context.Context, opts Options, log logger.Logger) (*sql.DB, error) {
	driverName, dsn, err := dataSource(opts)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, err
	}

	if opts.Driver == config.DriverSQLite {
		// one writer at a time; concurrent transactions queue on the pool
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(25)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	attempts := opts.Attempts
	if attempts == 0 {
		attempts = 1
	}
	backoff := retry.WithMaxRetries(attempts-1, retry.NewExponential(500*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		if err := db.PingContext(pingCtx); err != nil {
			log.Warn("database not reachable yet", "driver", opts.Driver, "error", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect %s: %w", opts.Driver, err)
	}
	return db, nil
}

func dataSource(opts Options) (driverName, dsn string, err error) {
	switch opts.Driver {
	case config.DriverMySQL, "":
		auth := opts.User
		if opts.Pass != "" {
			auth = fmt.Sprintf("%s:%s", opts.User, opts.Pass)
		}
		// parseTime=true -> DATE/DATETIME -> time.Time | loc=UTC keeps times consistent
		// clientFoundRows=true -> RowsAffected counts matched rows, as SQLite does
		dsn = fmt.Sprintf("%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=true&loc=UTC&clientFoundRows=true",
			auth, opts.Host, opts.Port, opts.Name)
		return "mysql", dsn, nil
	case config.DriverSQLite:
		if opts.Path == "" {
			return "", "", fmt.Errorf("sqlite: empty database path")
		}
		q := url.Values{}
		q.Add("_pragma", "foreign_keys(1)")
		q.Add("_pragma", "busy_timeout(5000)")
		q.Add("_pragma", "journal_mode(WAL)")
		return "sqlite", "file:" + opts.Path + "?" + q.Encode(), nil
	}
	return "", "", fmt.Errorf("unsupported driver %q", opts.Driver)
}
