package repository

import (
	"context"
	"database/sql"
	"strings"

	sq "github.com/Masterminds/squirrel"

	"github.com/iliyamo/airline-reservation/internal/model"
)

type UserRepo struct{ db *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{db: db} }

// DB exposes the handle so services can open transactions spanning repos.
func (r *UserRepo) DB() *sql.DB { return r.db }

// NormalizeEmail lower-cases and trims an address before storage or lookup.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// CreateTx inserts an active account and returns its id.
func (r *UserRepo) CreateTx(ctx context.Context, tx *sql.Tx, email, passwordHash string, roleID uint64) (uint64, error) {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (email, password_hash, role_id, status) VALUES (?, ?, ?, ?)",
		NormalizeEmail(email), passwordHash, roleID, model.StatusActive)
	if err != nil {
		return 0, classify(err, ErrUserNotFound)
	}
	return lastID(res)
}

const userColumns = "id, email, password_hash, role_id, status"

func scanUser(row *sql.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordHash, &u.RoleID, &u.Status); err != nil {
		return nil, classify(err, ErrUserNotFound)
	}
	return &u, nil
}

// GetByEmail fetches a user by normalized email regardless of status.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email = ? LIMIT 1", NormalizeEmail(email)))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (*model.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id = ? LIMIT 1", id))
}

// EmailTaken reports whether another account already uses email.
func (r *UserRepo) EmailTaken(ctx context.Context, q Querier, email string, exceptID uint64) (bool, error) {
	var n int
	err := q.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM users WHERE email = ? AND id <> ?", NormalizeEmail(email), exceptID).Scan(&n)
	return n > 0, err
}

// SetStatus flips the account status.
func (r *UserRepo) SetStatus(ctx context.Context, id uint64, status model.Status) error {
	res, err := r.db.ExecContext(ctx, "UPDATE users SET status = ? WHERE id = ?", status, id)
	if err != nil {
		return err
	}
	return expectOne(res, ErrUserNotFound)
}

// UpdateEmailTx changes the login email of an account.
func (r *UserRepo) UpdateEmailTx(ctx context.Context, tx *sql.Tx, id uint64, email string) error {
	res, err := tx.ExecContext(ctx, "UPDATE users SET email = ? WHERE id = ?", NormalizeEmail(email), id)
	if err != nil {
		return classify(err, ErrUserNotFound)
	}
	return expectOne(res, ErrUserNotFound)
}

// UserFilter narrows List. Zero values match everything.
type UserFilter struct {
	Status model.Status
	Role   string
}

// List returns every account joined with its role and profile names.
func (r *UserRepo) List(ctx context.Context, f UserFilter) ([]model.UserSummary, error) {
	b := sq.Select(
		"u.id", "u.email", "ro.name", "u.status",
		"COALESCE(c.first_name, e.first_name, '')",
		"COALESCE(c.last_name, e.last_name, '')",
		"COALESCE(c.dpi, e.dpi, '')",
	).
		From("users u").
		Join("roles ro ON ro.id = u.role_id").
		LeftJoin("clients c ON c.user_id = u.id").
		LeftJoin("employees e ON e.user_id = u.id").
		OrderBy("u.id")
	if f.Status != "" {
		b = b.Where(sq.Eq{"u.status": f.Status})
	}
	if f.Role != "" {
		b = b.Where(sq.Eq{"ro.name": f.Role})
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

	var out []model.UserSummary
	for rows.Next() {
		var s model.UserSummary
		if err := rows.Scan(&s.ID, &s.Email, &s.Role, &s.Status, &s.FirstName, &s.LastName, &s.DPI); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
