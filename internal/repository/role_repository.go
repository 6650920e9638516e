package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/airline-reservation/internal/model"
)

type RoleRepo struct{ db *sql.DB }

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{db: db} }

// Create inserts an active role.
func (r *RoleRepo) Create(ctx context.Context, name string) (*model.Role, error) {
	res, err := r.db.ExecContext(ctx, "INSERT INTO roles (name, status) VALUES (?, ?)", name, model.StatusActive)
	if err != nil {
		return nil, classify(err, ErrRoleNotFound)
	}
	id, err := lastID(res)
	if err != nil {
		return nil, err
	}
	return &model.Role{ID: id, Name: name, Status: model.StatusActive}, nil
}

func (r *RoleRepo) GetByID(ctx context.Context, id uint64) (*model.Role, error) {
	var ro model.Role
	err := r.db.QueryRowContext(ctx, "SELECT id, name, status FROM roles WHERE id = ?", id).
		Scan(&ro.ID, &ro.Name, &ro.Status)
	if err != nil {
		return nil, classify(err, ErrRoleNotFound)
	}
	return &ro, nil
}

// ActiveNameTaken reports whether an active role other than exceptID is
// called name.
func (r *RoleRepo) ActiveNameTaken(ctx context.Context, name string, exceptID uint64) (bool, error) {
	return exists(ctx, r.db,
		"SELECT COUNT(*) FROM roles WHERE name = ? AND status = ? AND id <> ?",
		name, model.StatusActive, exceptID)
}

// ListActive returns active roles ordered by id.
func (r *RoleRepo) ListActive(ctx context.Context) ([]model.Role, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT id, name, status FROM roles WHERE status = ? ORDER BY id", model.StatusActive)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []model.Role
	for rows.Next() {
		var ro model.Role
		if err := rows.Scan(&ro.ID, &ro.Name, &ro.Status); err != nil {
			return nil, err
		}
		out = append(out, ro)
	}
	return out, rows.Err()
}

func (r *RoleRepo) Rename(ctx context.Context, id uint64, name string) error {
	res, err := r.db.ExecContext(ctx, "UPDATE roles SET name = ? WHERE id = ?", name, id)
	if err != nil {
		return classify(err, ErrRoleNotFound)
	}
	return expectOne(res, ErrRoleNotFound)
}

func (r *RoleRepo) SetStatus(ctx context.Context, id uint64, status model.Status) error {
	res, err := r.db.ExecContext(ctx, "UPDATE roles SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return classify(err, ErrRoleNotFound)
	}
	return expectOne(res, ErrRoleNotFound)
}
