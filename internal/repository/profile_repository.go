package repository

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"

	"github.com/iliyamo/airline-reservation/internal/model"
)

// ProfileRepo stores the Client and Employee profiles attached to accounts.
type ProfileRepo struct{ db *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{db: db} }

// claimDPI reserves dpi across both profile tables. A second claim of the
// same DPI fails with ErrDuplicate even when the first transaction has not
// committed yet.
func claimDPI(ctx context.Context, tx *sql.Tx, dpi string) error {
	_, err := tx.ExecContext(ctx, "INSERT INTO national_ids (dpi) VALUES (?)", dpi)
	return classify(err, nil)
}

// CreateClientTx claims the DPI, inserts c and sets its generated id.
func (r *ProfileRepo) CreateClientTx(ctx context.Context, tx *sql.Tx, c *model.Client) error {
	if err := claimDPI(ctx, tx, c.DPI); err != nil {
		return err
	}
	const q = `INSERT INTO clients
		(dpi, first_name, last_name, phone, address, birth_date, nationality, age, emergency_phone, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, c.DPI, c.FirstName, c.LastName, c.Phone, c.Address,
		c.BirthDate, c.Nationality, c.Age, c.EmergencyPhone, c.UserID)
	if err != nil {
		return classify(err, ErrClientNotFound)
	}
	c.ID, err = lastID(res)
	return err
}

// CreateEmployeeTx claims the DPI, inserts e and sets its generated id.
func (r *ProfileRepo) CreateEmployeeTx(ctx context.Context, tx *sql.Tx, e *model.Employee) error {
	if err := claimDPI(ctx, tx, e.DPI); err != nil {
		return err
	}
	const q = `INSERT INTO employees (first_name, last_name, dpi, nit, phone, age, user_id)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, q, e.FirstName, e.LastName, e.DPI, e.NIT, e.Phone, e.Age, e.UserID)
	if err != nil {
		return classify(err, ErrEmployeeNotFound)
	}
	e.ID, err = lastID(res)
	return err
}

func exists(ctx context.Context, q Querier, query string, args ...any) (bool, error) {
	var n int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// DPITaken reports whether any client or employee already holds dpi.
func (r *ProfileRepo) DPITaken(ctx context.Context, q Querier, dpi string) (bool, error) {
	return exists(ctx, q,
		"SELECT (SELECT COUNT(*) FROM clients WHERE dpi = ?) + (SELECT COUNT(*) FROM employees WHERE dpi = ?)",
		dpi, dpi)
}

// NITTaken reports whether an employee already holds nit.
func (r *ProfileRepo) NITTaken(ctx context.Context, q Querier, nit string) (bool, error) {
	return exists(ctx, q, "SELECT COUNT(*) FROM employees WHERE nit = ?", nit)
}

const (
	clientColumns   = "id, dpi, first_name, last_name, phone, address, birth_date, nationality, age, emergency_phone, user_id"
	employeeColumns = "id, first_name, last_name, dpi, nit, phone, age, user_id"
)

func scanClient(row *sql.Row) (*model.Client, error) {
	var c model.Client
	err := row.Scan(&c.ID, &c.DPI, &c.FirstName, &c.LastName, &c.Phone, &c.Address,
		&c.BirthDate, &c.Nationality, &c.Age, &c.EmergencyPhone, &c.UserID)
	if err != nil {
		return nil, classify(err, ErrClientNotFound)
	}
	return &c, nil
}

func scanEmployee(row *sql.Row) (*model.Employee, error) {
	var e model.Employee
	err := row.Scan(&e.ID, &e.FirstName, &e.LastName, &e.DPI, &e.NIT, &e.Phone, &e.Age, &e.UserID)
	if err != nil {
		return nil, classify(err, ErrEmployeeNotFound)
	}
	return &e, nil
}

func (r *ProfileRepo) ClientByUserID(ctx context.Context, q Querier, userID uint64) (*model.Client, error) {
	return scanClient(q.QueryRowContext(ctx, "SELECT "+clientColumns+" FROM clients WHERE user_id = ?", userID))
}

func (r *ProfileRepo) ClientByDPI(ctx context.Context, dpi string) (*model.Client, error) {
	return scanClient(r.db.QueryRowContext(ctx, "SELECT "+clientColumns+" FROM clients WHERE dpi = ?", dpi))
}

func (r *ProfileRepo) EmployeeByUserID(ctx context.Context, userID uint64) (*model.Employee, error) {
	return scanEmployee(r.db.QueryRowContext(ctx, "SELECT "+employeeColumns+" FROM employees WHERE user_id = ?", userID))
}

func (r *ProfileRepo) EmployeeByDPI(ctx context.Context, dpi string) (*model.Employee, error) {
	return scanEmployee(r.db.QueryRowContext(ctx, "SELECT "+employeeColumns+" FROM employees WHERE dpi = ?", dpi))
}

// UpdateTx writes only the columns present in set to the profile table
// ("clients" or "employees") row with the given id.
func (r *ProfileRepo) UpdateTx(ctx context.Context, tx *sql.Tx, table string, id uint64, set map[string]any) error {
	notFound := ErrClientNotFound
	if table == "employees" {
		notFound = ErrEmployeeNotFound
	}
	if len(set) == 0 {
		return nil
	}
	query, args, err := sq.Update(table).SetMap(set).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, query, args...)
	if err != nil {
		return classify(err, notFound)
	}
	return expectOne(res, notFound)
}
