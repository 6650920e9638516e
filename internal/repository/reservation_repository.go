package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/airline-reservation/internal/model"
)

// ReservationRepo persists seat reservations. The storage layer guarantees
// at most one active row per (seat_id, flight_id); CreateTx surfaces a
// violation of that guarantee as ErrDuplicate.
type ReservationRepo struct {
	db *sql.DB
}

func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the handle so the service can open the booking transaction.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

// SeatTakenTx reports whether an active reservation already holds the seat
// on the flight.
func (r *ReservationRepo) SeatTakenTx(ctx context.Context, tx *sql.Tx, seatID, flightID uint64) (bool, error) {
	return exists(ctx, tx,
		"SELECT COUNT(*) FROM reservations WHERE seat_id = ? AND flight_id = ? AND status = ?",
		seatID, flightID, model.StatusActive)
}

// CreateTx inserts an active reservation within the caller's transaction
// and populates the generated id.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, res *model.Reservation) error {
	const q = `INSERT INTO reservations (seat_id, flight_id, client_id, status) VALUES (?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, q, res.SeatID, res.FlightID, res.ClientID, model.StatusActive)
	if err != nil {
		return classify(err, ErrReservationNotFound)
	}
	res.Status = model.StatusActive
	res.ID, err = lastID(result)
	return err
}

func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	var res model.Reservation
	err := r.db.QueryRowContext(ctx,
		"SELECT id, seat_id, flight_id, client_id, status FROM reservations WHERE id = ?", id).
		Scan(&res.ID, &res.SeatID, &res.FlightID, &res.ClientID, &res.Status)
	if err != nil {
		return nil, classify(err, ErrReservationNotFound)
	}
	return &res, nil
}

// ListByClient returns the client's active reservations with flight and seat
// details, newest first.
func (r *ReservationRepo) ListByClient(ctx context.Context, clientID uint64) ([]model.ReservationDetail, error) {
	const q = `SELECT rv.id, rv.seat_id, rv.flight_id, rv.client_id, rv.status,
	                  f.flight_date, f.departure_time, f.arrival_time, d.name,
	                  s.seat_row, s.seat_column
	           FROM reservations rv
	           JOIN flights f ON f.id = rv.flight_id
	           JOIN destinations d ON d.id = f.destination_id
	           JOIN seats s ON s.id = rv.seat_id
	           WHERE rv.client_id = ? AND rv.status = ?
	           ORDER BY rv.id DESC`
	rows, err := r.db.QueryContext(ctx, q, clientID, model.StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.ReservationDetail
	for rows.Next() {
		var d model.ReservationDetail
		if err := rows.Scan(&d.ID, &d.SeatID, &d.FlightID, &d.ClientID, &d.Status,
			&d.FlightDate, &d.DepartureTime, &d.ArrivalTime, &d.Destination,
			&d.SeatRow, &d.SeatColumn); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// Cancel marks the reservation inactive, releasing the seat.
func (r *ReservationRepo) Cancel(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "UPDATE reservations SET status = ? WHERE id = ?", model.StatusInactive, id)
	if err != nil {
		return err
	}
	return expectOne(res, ErrReservationNotFound)
}
