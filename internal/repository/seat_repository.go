package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/airline-reservation/internal/model"
)

type SeatRepo struct{ db *sql.DB }

func NewSeatRepo(db *sql.DB) *SeatRepo { return &SeatRepo{db: db} }

// ActiveByID retrieves an active seat by its id.
func (r *SeatRepo) ActiveByID(ctx context.Context, q Querier, id uint64) (*model.Seat, error) {
	var s model.Seat
	err := q.QueryRowContext(ctx,
		"SELECT id, seat_row, seat_column, airplane_id, status FROM seats WHERE id = ? AND status = ?",
		id, model.StatusActive).
		Scan(&s.ID, &s.Row, &s.Column, &s.AirplaneID, &s.Status)
	if err != nil {
		return nil, classify(err, ErrSeatNotFound)
	}
	return &s, nil
}

// ForFlight lists the active seats of the flight's airplane, marking those
// held by an active reservation on that flight as unavailable.
func (r *SeatRepo) ForFlight(ctx context.Context, flightID uint64) ([]model.FlightSeat, error) {
	const q = `SELECT s.id, s.seat_row, s.seat_column, s.airplane_id, s.status,
	                  CASE WHEN rv.id IS NULL THEN 1 ELSE 0 END AS available
	           FROM flights f
	           JOIN seats s ON s.airplane_id = f.airplane_id AND s.status = 'active'
	           LEFT JOIN reservations rv ON rv.seat_id = s.id AND rv.flight_id = f.id AND rv.status = 'active'
	           WHERE f.id = ?
	           ORDER BY s.seat_row, s.seat_column`
	rows, err := r.db.QueryContext(ctx, q, flightID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.FlightSeat
	for rows.Next() {
		var fs model.FlightSeat
		var available int
		if err := rows.Scan(&fs.ID, &fs.Row, &fs.Column, &fs.AirplaneID, &fs.Status, &available); err != nil {
			return nil, err
		}
		fs.Available = available == 1
		out = append(out, fs)
	}
	return out, rows.Err()
}
