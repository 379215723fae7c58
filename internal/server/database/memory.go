package database

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/umardevX/ems-console/internal/employee"
	"github.com/umardevX/ems-console/internal/server/auth"
)

var _ Store = (*MemoryStore)(nil)

// MemoryStore keeps everything in process memory. Identities start at 1.
type MemoryStore struct {
	mu        sync.RWMutex
	users     map[uuid.UUID]auth.User
	byEmail   map[string]uuid.UUID
	employees map[int64]employee.Employee
	nextID    int64
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:     make(map[uuid.UUID]auth.User),
		byEmail:   make(map[string]uuid.UUID),
		employees: make(map[int64]employee.Employee),
		nextID:    1,
	}
}

// CreateUser inserts u, rejecting a second account for the same address
func (s *MemoryStore) CreateUser(_ context.Context, u *auth.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	email := auth.NormalizeEmail(u.Email)
	if _, taken := s.byEmail[email]; taken {
		return ErrDuplicateEmail
	}
	s.users[u.ID] = *u
	s.byEmail[email] = u.ID
	return nil
}

// UserByEmail looks a user up by address
func (s *MemoryStore) UserByEmail(_ context.Context, email string) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[auth.NormalizeEmail(email)]
	if !ok {
		return nil, ErrNotFound
	}
	u := s.users[id]
	return &u, nil
}

// UserByID looks a user up by identity
func (s *MemoryStore) UserByID(_ context.Context, id uuid.UUID) (*auth.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

// RecordLogin stamps the user's last sign-in time
func (s *MemoryStore) RecordLogin(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}
	now := time.Now().UTC()
	u.LastLoginAt = &now
	s.users[id] = u
	return nil
}

// ListEmployees returns every employee ordered by identity
func (s *MemoryStore) ListEmployees(_ context.Context) ([]employee.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]employee.Employee, 0, len(s.employees))
	for _, e := range s.employees {
		list = append(list, e)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].EmployeeID < list[j].EmployeeID })
	return list, nil
}

// CreateEmployee assigns the next identity and stores e
func (s *MemoryStore) CreateEmployee(_ context.Context, e employee.Employee) (employee.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.EmployeeID = s.nextID
	s.nextID++
	s.employees[e.EmployeeID] = e
	return e, nil
}

// UpdateEmployee replaces the record stored under id
func (s *MemoryStore) UpdateEmployee(_ context.Context, id int64, e employee.Employee) (employee.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[id]; !ok {
		return employee.Employee{}, ErrNotFound
	}
	e.EmployeeID = id
	s.employees[id] = e
	return e, nil
}

// DeleteEmployee removes the record stored under id
func (s *MemoryStore) DeleteEmployee(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.employees[id]; !ok {
		return ErrNotFound
	}
	delete(s.employees, id)
	return nil
}

// Close is a no-op
func (s *MemoryStore) Close() error { return nil }
