package database_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/airline-reservation/internal/config"
	"github.com/iliyamo/airline-reservation/internal/database"
	"github.com/iliyamo/airline-reservation/internal/testutil"
)

func TestMigrateUp(t *testing.T) {
	t.Run("Should seed the three built-in roles", func(t *testing.T) {
		db := testutil.NewDB(t)
		rows, err := db.Query("SELECT id, name FROM roles ORDER BY id")
		require.NoError(t, err)
		defer rows.Close()
		got := map[uint64]string{}
		for rows.Next() {
			var id uint64
			var name string
			require.NoError(t, rows.Scan(&id, &name))
			got[id] = name
		}
		require.NoError(t, rows.Err())
		assert.Equal(t, map[uint64]string{1: "Administrador", 2: "Cliente", 3: "Agente"}, got)
	})
	t.Run("Should roll back and re-apply cleanly", func(t *testing.T) {
		db := testutil.NewDB(t)
		ctx := context.Background()
		require.NoError(t, database.MigrateDown(ctx, db, config.DriverSQLite))
		_, err := db.Exec("SELECT 1 FROM reservations")
		require.Error(t, err)
		require.NoError(t, database.MigrateUp(ctx, db, config.DriverSQLite))
		assert.Equal(t, 3, testutil.Count(t, db, "roles"))
	})
}

func TestActiveReservationIndex(t *testing.T) {
	db := testutil.NewDB(t)
	cat := testutil.SeedCatalog(t, db)
	_, err := db.Exec(`INSERT INTO users (email, password_hash, role_id) VALUES ('a@b.gt', 'x', 2)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO clients (dpi, first_name, last_name, phone, address, birth_date, nationality, age, emergency_phone, user_id)
		VALUES ('1234567890123', 'Ana', 'Lopez', '55551234', 'Zona 1, Guatemala', '2000-01-01', 'Guatemalteca', 25, '55554321', 1)`)
	require.NoError(t, err)

	insert := func() error {
		_, err := db.Exec("INSERT INTO reservations (seat_id, flight_id, client_id, status) VALUES (?, ?, 1, 'active')",
			cat.SeatIDs[0], cat.FlightID)
		return err
	}

	t.Run("Should reject a second active reservation for the same seat and flight", func(t *testing.T) {
		require.NoError(t, insert())
		err := insert()
		require.Error(t, err)
		assert.True(t, database.IsDuplicateKey(err))
	})
	t.Run("Should allow rebooking once the previous reservation is inactive", func(t *testing.T) {
		_, err := db.Exec("UPDATE reservations SET status = 'inactive'")
		require.NoError(t, err)
		assert.NoError(t, insert())
	})
}

func TestIsDuplicateKey(t *testing.T) {
	t.Run("Should recognise MySQL duplicate entry errors", func(t *testing.T) {
		err := fmt.Errorf("insert: %w", &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"})
		assert.True(t, database.IsDuplicateKey(err))
	})
	t.Run("Should ignore other errors", func(t *testing.T) {
		assert.False(t, database.IsDuplicateKey(nil))
		assert.False(t, database.IsDuplicateKey(errors.New("boom")))
		assert.False(t, database.IsDuplicateKey(&mysql.MySQLError{Number: 1452}))
	})
}

func TestDuplicateKeyName(t *testing.T) {
	t.Run("Should read the key from a MySQL message", func(t *testing.T) {
		err := fmt.Errorf("insert: %w", &mysql.MySQLError{
			Number:  1062,
			Message: "Duplicate entry 'anita@example.com' for key 'users.uq_users_email'",
		})
		assert.Equal(t, "users.uq_users_email", database.DuplicateKeyName(err))
	})
	t.Run("Should read the column from a SQLite message", func(t *testing.T) {
		db := testutil.NewDB(t)
		_, err := db.Exec("INSERT INTO national_ids (dpi) VALUES ('1234567890123')")
		require.NoError(t, err)
		_, err = db.Exec("INSERT INTO national_ids (dpi) VALUES ('1234567890123')")
		require.Error(t, err)
		assert.Equal(t, "national_ids.dpi", database.DuplicateKeyName(err))
	})
	t.Run("Should return nothing for other errors", func(t *testing.T) {
		assert.Empty(t, database.DuplicateKeyName(errors.New("boom")))
		assert.Empty(t, database.DuplicateKeyName(&mysql.MySQLError{Number: 1452}))
	})
}
