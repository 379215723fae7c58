package employee

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// ErrResync marks a write that succeeded but whose follow-up fetch failed
var ErrResync = errors.New("saved, but the list could not be refreshed")

// Backend is the remote collection the repository mirrors
type Backend interface {
	ListEmployees(ctx context.Context) ([]Employee, error)
	CreateEmployee(ctx context.Context, e Employee) error
	UpdateEmployee(ctx context.Context, id int64, e Employee) error
	DeleteEmployee(ctx context.Context, id int64) error
}

// Repository keeps the last successfully fetched employee list. Every
// successful write is followed by a full re-fetch; nothing is merged
// locally.
type Repository struct {
	backend Backend
	log     zerolog.Logger

	mu        sync.RWMutex
	items     []Employee
	issued    uint64
	applied   uint64
	listeners []func(n int)
}

// NewRepository creates an empty repository over backend
func NewRepository(backend Backend, log zerolog.Logger) *Repository {
	return &Repository{
		backend: backend,
		log:     log.With().Str("component", "employees").Logger(),
	}
}

// OnChange registers fn to run with the new length after every list
// replacement
func (r *Repository) OnChange(fn func(n int)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Items returns a copy of the current list
func (r *Repository) Items() []Employee {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Employee, len(r.items))
	copy(out, r.items)
	return out
}

// Len returns the number of cached employees
func (r *Repository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}

// Find returns the cached employee with id
func (r *Repository) Find(id int64) (Employee, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.items {
		if e.EmployeeID == id {
			return e, true
		}
	}
	return Employee{}, false
}

// List fetches the whole collection and replaces the cache. On failure the
// previous list stays in place.
func (r *Repository) List(ctx context.Context) error {
	r.mu.Lock()
	r.issued++
	seq := r.issued
	r.mu.Unlock()

	items, err := r.backend.ListEmployees(ctx)
	if err != nil {
		r.log.Error().Err(err).Msg("error fetching employees")
		return fmt.Errorf("failed to fetch employees: %w", err)
	}

	r.mu.Lock()
	if seq < r.applied {
		// A later fetch already landed
		r.mu.Unlock()
		r.log.Debug().Uint64("seq", seq).Uint64("applied", r.applied).Msg("discarding stale employee list")
		return nil
	}
	r.applied = seq
	r.items = items
	if r.items == nil {
		r.items = []Employee{}
	}
	n := len(r.items)
	listeners := append([]func(int){}, r.listeners...)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(n)
	}
	return nil
}

// Create stores a new employee. The draft's identity is ignored; the
// backend assigns one.
func (r *Repository) Create(ctx context.Context, draft Employee) error {
	draft.EmployeeID = 0
	if err := r.backend.CreateEmployee(ctx, draft); err != nil {
		r.log.Error().Err(err).Msg("error saving employee")
		return fmt.Errorf("failed to create employee: %w", err)
	}
	return r.resync(ctx)
}

// Update replaces the full record identified by id
func (r *Repository) Update(ctx context.Context, id int64, draft Employee) error {
	draft.EmployeeID = id
	if err := r.backend.UpdateEmployee(ctx, id, draft); err != nil {
		r.log.Error().Err(err).Int64("employee_id", id).Msg("error saving employee")
		return fmt.Errorf("failed to update employee %d: %w", id, err)
	}
	return r.resync(ctx)
}

// Delete removes the employee identified by id
func (r *Repository) Delete(ctx context.Context, id int64) error {
	if err := r.backend.DeleteEmployee(ctx, id); err != nil {
		r.log.Error().Err(err).Int64("employee_id", id).Msg("error deleting employee")
		return fmt.Errorf("failed to delete employee %d: %w", id, err)
	}
	return r.resync(ctx)
}

// resync re-fetches after a write. The write itself succeeded, so a failed
// re-fetch is reported but leaves the (now stale) list in place.
func (r *Repository) resync(ctx context.Context) error {
	if err := r.List(ctx); err != nil {
		return fmt.Errorf("%w: %w", ErrResync, err)
	}
	return nil
}
