package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/umardevX/ems-console/internal/employee"
	"github.com/umardevX/ems-console/internal/server/auth"
)

// uniqueViolation is the Postgres error code for a unique constraint failure
const uniqueViolation = "23505"

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id            UUID PRIMARY KEY,
	username      TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	last_login_at TIMESTAMPTZ,
	created_at    TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS employees (
	employee_id   BIGSERIAL PRIMARY KEY,
	first_name    TEXT NOT NULL,
	last_name     TEXT NOT NULL,
	email         TEXT NOT NULL DEFAULT '',
	phone_number  TEXT NOT NULL DEFAULT '',
	date_of_birth DATE NOT NULL,
	hire_date     DATE NOT NULL,
	position      TEXT NOT NULL DEFAULT '',
	department    TEXT NOT NULL DEFAULT '',
	is_active     BOOLEAN NOT NULL DEFAULT TRUE
);`

const employeeColumns = `employee_id, first_name, last_name, email, phone_number,
	to_char(date_of_birth, 'YYYY-MM-DD'), to_char(hire_date, 'YYYY-MM-DD'),
	position, department, is_active`

var _ Store = (*PostgresStore)(nil)

// PostgresStore persists users and employees through lib/pq
type PostgresStore struct {
	db *sql.DB
}

// OpenPostgres connects to dbURL, verifies the connection and creates the
// schema if it is missing
func OpenPostgres(ctx context.Context, dbURL string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(10 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// isUniqueViolation reports whether err is a Postgres unique constraint failure
func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

// CreateUser inserts u, rejecting a second account for the same address
func (s *PostgresStore) CreateUser(ctx context.Context, u *auth.User) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO users (id, username, email, password_hash, created_at) VALUES ($1, $2, $3, $4, $5)`,
		u.ID, u.Username, auth.NormalizeEmail(u.Email), u.PasswordHash, u.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	return err
}

func (s *PostgresStore) scanUser(row *sql.Row) (*auth.User, error) {
	var (
		u         auth.User
		lastLogin sql.NullTime
	)
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &lastLogin, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	if lastLogin.Valid {
		u.LastLoginAt = &lastLogin.Time
	}
	return &u, nil
}

// UserByEmail looks a user up by address
func (s *PostgresStore) UserByEmail(ctx context.Context, email string) (*auth.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, last_login_at, created_at FROM users WHERE email = $1`,
		auth.NormalizeEmail(email)))
}

// UserByID looks a user up by identity
func (s *PostgresStore) UserByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	return s.scanUser(s.db.QueryRowContext(ctx,
		`SELECT id, username, email, password_hash, last_login_at, created_at FROM users WHERE id = $1`,
		id))
}

// RecordLogin stamps the user's last sign-in time
func (s *PostgresStore) RecordLogin(ctx context.Context, id uuid.UUID) error {
	return expectOne(s.db.ExecContext(ctx, `UPDATE users SET last_login_at = now() WHERE id = $1`, id))
}

// ListEmployees returns every employee ordered by identity
func (s *PostgresStore) ListEmployees(ctx context.Context) ([]employee.Employee, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+employeeColumns+` FROM employees ORDER BY employee_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []employee.Employee{}
	for rows.Next() {
		var e employee.Employee
		if err := rows.Scan(employeeFields(&e)...); err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

// CreateEmployee inserts e and returns it with its assigned identity
func (s *PostgresStore) CreateEmployee(ctx context.Context, e employee.Employee) (employee.Employee, error) {
	var out employee.Employee
	err := s.db.QueryRowContext(ctx,
		`INSERT INTO employees (first_name, last_name, email, phone_number, date_of_birth, hire_date, position, department, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+employeeColumns,
		e.FirstName, e.LastName, e.Email, e.PhoneNumber, e.DateOfBirth, e.HireDate, e.Position, e.Department, e.IsActive,
	).Scan(employeeFields(&out)...)
	return out, err
}

// UpdateEmployee replaces the record stored under id
func (s *PostgresStore) UpdateEmployee(ctx context.Context, id int64, e employee.Employee) (employee.Employee, error) {
	var out employee.Employee
	err := s.db.QueryRowContext(ctx,
		`UPDATE employees SET first_name = $2, last_name = $3, email = $4, phone_number = $5,
		 date_of_birth = $6, hire_date = $7, position = $8, department = $9, is_active = $10
		 WHERE employee_id = $1
		 RETURNING `+employeeColumns,
		id, e.FirstName, e.LastName, e.Email, e.PhoneNumber, e.DateOfBirth, e.HireDate, e.Position, e.Department, e.IsActive,
	).Scan(employeeFields(&out)...)
	if errors.Is(err, sql.ErrNoRows) {
		return employee.Employee{}, ErrNotFound
	}
	return out, err
}

// DeleteEmployee removes the record stored under id
func (s *PostgresStore) DeleteEmployee(ctx context.Context, id int64) error {
	return expectOne(s.db.ExecContext(ctx, `DELETE FROM employees WHERE employee_id = $1`, id))
}

// Close releases the connection pool
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func employeeFields(e *employee.Employee) []interface{} {
	return []interface{}{
		&e.EmployeeID, &e.FirstName, &e.LastName, &e.Email, &e.PhoneNumber,
		&e.DateOfBirth, &e.HireDate, &e.Position, &e.Department, &e.IsActive,
	}
}

// expectOne maps a statement that touched no rows to ErrNotFound
func expectOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
