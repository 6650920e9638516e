package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"github.com/iliyamo/airline-reservation/internal/model"
)

type FlightRepo struct{ db *sql.DB }

func NewFlightRepo(db *sql.DB) *FlightRepo { return &FlightRepo{db: db} }

func (r *FlightRepo) DB() *sql.DB { return r.db }

const flightColumns = "id, flight_date, departure_time, arrival_time, destination_id, airplane_id, status"

func scanFlight(row interface{ Scan(...any) error }) (*model.Flight, error) {
	var f model.Flight
	err := row.Scan(&f.ID, &f.Date, &f.DepartureTime, &f.ArrivalTime, &f.DestinationID, &f.AirplaneID, &f.Status)
	if err != nil {
		return nil, classify(err, ErrFlightNotFound)
	}
	return &f, nil
}

// Create inserts an active flight and sets its id. A clash with another
// active flight on the same (date, destination, airplane) is ErrDuplicate.
func (r *FlightRepo) Create(ctx context.Context, f *model.Flight) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO flights (flight_date, departure_time, arrival_time, destination_id, airplane_id, status)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		f.Date, f.DepartureTime, f.ArrivalTime, f.DestinationID, f.AirplaneID, model.StatusActive)
	if err != nil {
		return classify(err, ErrFlightNotFound)
	}
	f.Status = model.StatusActive
	f.ID, err = lastID(res)
	return err
}

// GetByID returns the flight in any status.
func (r *FlightRepo) GetByID(ctx context.Context, id uint64) (*model.Flight, error) {
	return scanFlight(r.db.QueryRowContext(ctx, "SELECT "+flightColumns+" FROM flights WHERE id = ?", id))
}

// ActiveByID returns the flight only while it is active.
func (r *FlightRepo) ActiveByID(ctx context.Context, q Querier, id uint64) (*model.Flight, error) {
	return scanFlight(q.QueryRowContext(ctx,
		"SELECT "+flightColumns+" FROM flights WHERE id = ? AND status = ?", id, model.StatusActive))
}

// ScheduleTaken reports whether another active flight already uses the
// (date, destination, airplane) triple.
func (r *FlightRepo) ScheduleTaken(ctx context.Context, date model.Date, destinationID, airplaneID, exceptID uint64) (bool, error) {
	return exists(ctx, r.db,
		`SELECT COUNT(*) FROM flights
		 WHERE flight_date = ? AND destination_id = ? AND airplane_id = ? AND status = ? AND id <> ?`,
		date, destinationID, airplaneID, model.StatusActive, exceptID)
}

// FlightFilter narrows ListActive. Zero values match everything.
type FlightFilter struct {
	DestinationID uint64
	Date          model.Date
}

// ListActive returns active flights ordered by date and departure.
func (r *FlightRepo) ListActive(ctx context.Context, f FlightFilter) ([]model.Flight, error) {
	b := sq.Select(flightColumns).From("flights").
		Where(sq.Eq{"status": model.StatusActive}).
		OrderBy("flight_date", "departure_time", "id")
	if f.DestinationID != 0 {
		b = b.Where(sq.Eq{"destination_id": f.DestinationID})
	}
	if !f.Date.IsZero() {
		b = b.Where(sq.Eq{"flight_date": f.Date})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return nil, err
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Flight
	for rows.Next() {
		fl, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *fl)
	}
	return out, rows.Err()
}

// Update writes only the columns present in set.
func (r *FlightRepo) Update(ctx context.Context, id uint64, set map[string]any) error {
	if len(set) == 0 {
		return nil
	}
	query, args, err := sq.Update("flights").SetMap(set).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return classify(err, ErrFlightNotFound)
	}
	return expectOne(res, ErrFlightNotFound)
}

func (r *FlightRepo) SetStatus(ctx context.Context, id uint64, status model.Status) error {
	res, err := r.db.ExecContext(ctx, "UPDATE flights SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return classify(err, ErrFlightNotFound)
	}
	return expectOne(res, ErrFlightNotFound)
}
