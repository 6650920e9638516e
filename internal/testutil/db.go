// Package testutil provides an SQLite-backed database and catalogue fixtures
// for package tests.
package testutil

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/airline-reservation/internal/config"
	"github.com/iliyamo/airline-reservation/internal/database"
	"github.com/iliyamo/airline-reservation/internal/logger"
	"github.com/iliyamo/airline-reservation/internal/model"
)

// NewDB opens a fresh migrated SQLite database in a temporary directory.
func NewDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()
	db, err := database.Open(ctx, database.Options{
		Driver: config.DriverSQLite,
		Path:   filepath.Join(t.TempDir(), "airline.db"),
	}, logger.NewForTests())
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, database.MigrateUp(ctx, db, config.DriverSQLite))
	return db
}

// Catalog is a small schedule: one destination, one airplane with seats 1A,
// 1B and 2A, and one flight on 2025-03-10.
type Catalog struct {
	DestinationID uint64
	AirplaneID    uint64
	SeatIDs       []uint64
	FlightID      uint64
}

// SeedCatalog inserts the fixture schedule described by Catalog.
func SeedCatalog(t *testing.T, db *sql.DB) Catalog {
	t.Helper()
	var c Catalog
	c.DestinationID = InsertDestination(t, db, "Ciudad de Panama")
	c.AirplaneID = InsertAirplane(t, db, "TG-ABC", 3)
	for _, pos := range []struct {
		row int
		col string
	}{{1, "A"}, {1, "B"}, {2, "A"}} {
		c.SeatIDs = append(c.SeatIDs, InsertSeat(t, db, c.AirplaneID, pos.row, pos.col))
	}
	c.FlightID = InsertFlight(t, db, model.Flight{
		Date:          model.NewDate(2025, 3, 10),
		DepartureTime: model.ClockTime{Hour: 8},
		ArrivalTime:   model.ClockTime{Hour: 10, Minute: 30},
		DestinationID: c.DestinationID,
		AirplaneID:    c.AirplaneID,
	})
	return c
}

func InsertDestination(t *testing.T, db *sql.DB, name string) uint64 {
	t.Helper()
	return insert(t, db, "INSERT INTO destinations (name, status) VALUES (?, 'active')", name)
}

func InsertAirplane(t *testing.T, db *sql.DB, registration string, capacity int) uint64 {
	t.Helper()
	return insert(t, db,
		"INSERT INTO airplanes (registration, model, capacity, status) VALUES (?, 'A320', ?, 'active')",
		registration, capacity)
}

func InsertSeat(t *testing.T, db *sql.DB, airplaneID uint64, row int, col string) uint64 {
	t.Helper()
	return insert(t, db,
		"INSERT INTO seats (seat_row, seat_column, airplane_id, status) VALUES (?, ?, ?, 'active')",
		row, col, airplaneID)
}

func InsertFlight(t *testing.T, db *sql.DB, f model.Flight) uint64 {
	t.Helper()
	return insert(t, db,
		`INSERT INTO flights (flight_date, departure_time, arrival_time, destination_id, airplane_id, status)
		 VALUES (?, ?, ?, ?, ?, 'active')`,
		f.Date, f.DepartureTime, f.ArrivalTime, f.DestinationID, f.AirplaneID)
}

// SetStatus flips the status column of one row.
func SetStatus(t *testing.T, db *sql.DB, table string, id uint64, status model.Status) {
	t.Helper()
	_, err := db.Exec("UPDATE "+table+" SET status = ? WHERE id = ?", string(status), id)
	require.NoError(t, err)
}

// Count returns the number of rows in table.
func Count(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM "+table).Scan(&n))
	return n
}

func insert(t *testing.T, db *sql.DB, query string, args ...any) uint64 {
	t.Helper()
	res, err := db.Exec(query, args...)
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	return uint64(id)
}
