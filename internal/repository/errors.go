// Package repository holds the SQL data access for accounts, profiles,
// roles, the flight catalogue and reservations. Queries are written for the
// MySQL and SQLite schemas shipped with the database package, so only
// portable SQL and `?` placeholders are used.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iliyamo/airline-reservation/internal/database"
)

var (
	ErrUserNotFound        = errors.New("user not found")
	ErrClientNotFound      = errors.New("client not found")
	ErrEmployeeNotFound    = errors.New("employee not found")
	ErrRoleNotFound        = errors.New("role not found")
	ErrFlightNotFound      = errors.New("flight not found")
	ErrSeatNotFound        = errors.New("seat not found")
	ErrAirplaneNotFound    = errors.New("airplane not found")
	ErrDestinationNotFound = errors.New("destination not found")
	ErrReservationNotFound = errors.New("reservation not found")

	// ErrDuplicate wraps unique-constraint violations from either driver.
	ErrDuplicate = errors.New("duplicate key")
)

// Querier is satisfied by both *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// WithTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func WithTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

// classify converts driver errors into repository sentinels.
func classify(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sql.ErrNoRows):
		return notFound
	case database.IsDuplicateKey(err):
		return fmt.Errorf("%w: %w", ErrDuplicate, err)
	}
	return err
}

// DuplicateKey names the unique key behind an ErrDuplicate, or "".
func DuplicateKey(err error) string {
	return database.DuplicateKeyName(err)
}

func lastID(res sql.Result) (uint64, error) {
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// expectOne turns a zero-row update into notFound.
func expectOne(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
