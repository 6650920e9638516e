package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/airline-reservation/internal/model"
)

// AirplaneRepo reads the fleet and destination catalogue that flights
// reference. Both tables are maintained outside the API.
type AirplaneRepo struct{ db *sql.DB }

func NewAirplaneRepo(db *sql.DB) *AirplaneRepo { return &AirplaneRepo{db: db} }

func (r *AirplaneRepo) GetByID(ctx context.Context, id uint64) (*model.Airplane, error) {
	var a model.Airplane
	err := r.db.QueryRowContext(ctx,
		"SELECT id, registration, model, capacity, status FROM airplanes WHERE id = ?", id).
		Scan(&a.ID, &a.Registration, &a.Model, &a.Capacity, &a.Status)
	if err != nil {
		return nil, classify(err, ErrAirplaneNotFound)
	}
	return &a, nil
}

func (r *AirplaneRepo) DestinationByID(ctx context.Context, id uint64) (*model.Destination, error) {
	var d model.Destination
	err := r.db.QueryRowContext(ctx, "SELECT id, name, status FROM destinations WHERE id = ?", id).
		Scan(&d.ID, &d.Name, &d.Status)
	if err != nil {
		return nil, classify(err, ErrDestinationNotFound)
	}
	return &d, nil
}
