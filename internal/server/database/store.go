// Package database stores accounts and employee records for the reference
// server, in memory or in Postgres.
package database

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/umardevX/ems-console/internal/employee"
	"github.com/umardevX/ems-console/internal/server/auth"
)

var (
	// ErrNotFound is returned when a record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when an account already uses the address
	ErrDuplicateEmail = errors.New("email already registered")
)

// Store is the persistence surface the HTTP handlers need
type Store interface {
	CreateUser(ctx context.Context, u *auth.User) error
	UserByEmail(ctx context.Context, email string) (*auth.User, error)
	UserByID(ctx context.Context, id uuid.UUID) (*auth.User, error)
	RecordLogin(ctx context.Context, id uuid.UUID) error

	ListEmployees(ctx context.Context) ([]employee.Employee, error)
	CreateEmployee(ctx context.Context, e employee.Employee) (employee.Employee, error)
	UpdateEmployee(ctx context.Context, id int64, e employee.Employee) (employee.Employee, error)
	DeleteEmployee(ctx context.Context, id int64) error

	Close() error
}
