package employee

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend is an in-memory collection with failure injection
type fakeBackend struct {
	mu       sync.Mutex
	nextID   int64
	records  []Employee
	failList error
	failNext error
	calls    []string
	// listHook runs inside ListEmployees before the snapshot is taken
	listHook func()
}

func (f *fakeBackend) ListEmployees(ctx context.Context) ([]Employee, error) {
	if f.listHook != nil {
		f.listHook()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "list")
	if f.failList != nil {
		return nil, f.failList
	}
	out := make([]Employee, len(f.records))
	copy(out, f.records)
	return out, nil
}

func (f *fakeBackend) takeFailure() error {
	err := f.failNext
	f.failNext = nil
	return err
}

func (f *fakeBackend) CreateEmployee(ctx context.Context, e Employee) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "create")
	if err := f.takeFailure(); err != nil {
		return err
	}
	if e.EmployeeID != 0 {
		return errors.New("identity must not be sent on create")
	}
	f.nextID++
	e.EmployeeID = f.nextID
	f.records = append(f.records, e)
	return nil
}

func (f *fakeBackend) UpdateEmployee(ctx context.Context, id int64, e Employee) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "update")
	if err := f.takeFailure(); err != nil {
		return err
	}
	for i := range f.records {
		if f.records[i].EmployeeID == id {
			e.EmployeeID = id
			f.records[i] = e
			return nil
		}
	}
	return errors.New("not found")
}

func (f *fakeBackend) DeleteEmployee(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, "delete")
	if err := f.takeFailure(); err != nil {
		return err
	}
	for i := range f.records {
		if f.records[i].EmployeeID == id {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func seeded(n int) *fakeBackend {
	f := &fakeBackend{}
	for i := 0; i < n; i++ {
		f.nextID++
		f.records = append(f.records, Employee{
			EmployeeID:  f.nextID,
			FirstName:   "Emp",
			LastName:    string(rune('A' + i)),
			DateOfBirth: "1990-01-01",
			HireDate:    "2020-01-01",
			IsActive:    true,
		})
	}
	return f
}

func countNamed(items []Employee, first string) int {
	n := 0
	for _, e := range items {
		if e.FirstName == first {
			n++
		}
	}
	return n
}

func TestRepository_List(t *testing.T) {
	backend := seeded(3)
	repo := NewRepository(backend, zerolog.Nop())

	assert.Equal(t, 0, repo.Len())
	require.NoError(t, repo.List(context.Background()))
	assert.Equal(t, 3, repo.Len())

	e, ok := repo.Find(2)
	require.True(t, ok)
	assert.Equal(t, "B", e.LastName)
}

func TestRepository_ListFailureKeepsStaleList(t *testing.T) {
	backend := seeded(2)
	repo := NewRepository(backend, zerolog.Nop())
	require.NoError(t, repo.List(context.Background()))

	backend.failList = errors.New("connection refused")
	err := repo.List(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 2, repo.Len())
}

func TestRepository_CreateResyncs(t *testing.T) {
	backend := seeded(2)
	repo := NewRepository(backend, zerolog.Nop())
	require.NoError(t, repo.List(context.Background()))
	before := repo.Items()

	err := repo.Create(context.Background(), Employee{
		EmployeeID:  99, // ignored
		FirstName:   "Ana",
		LastName:    "Lopez",
		DateOfBirth: "1991-05-05",
		HireDate:    "2024-02-01",
		IsActive:    true,
	})
	require.NoError(t, err)

	after := repo.Items()
	assert.Len(t, after, len(before)+1)
	assert.Equal(t, countNamed(before, "Ana")+1, countNamed(after, "Ana"))
	assert.Equal(t, []string{"list", "create", "list"}, backend.calls)
}

func TestRepository_CreateFailureAppliesNothing(t *testing.T) {
	backend := seeded(1)
	repo := NewRepository(backend, zerolog.Nop())
	require.NoError(t, repo.List(context.Background()))

	backend.failNext = errors.New("400 validation failed")
	err := repo.Create(context.Background(), Employee{FirstName: "Ana"})
	require.Error(t, err)

	assert.Equal(t, 1, repo.Len())
	assert.Equal(t, 0, countNamed(repo.Items(), "Ana"))
	// No resync after a failed write
	assert.Equal(t, []string{"list", "create"}, backend.calls)
}

func TestRepository_Update(t *testing.T) {
	backend := seeded(3)
	repo := NewRepository(backend, zerolog.Nop())
	require.NoError(t, repo.List(context.Background()))

	src, _ := repo.Find(3)
	src.Position = "Engineer"
	require.NoError(t, repo.Update(context.Background(), 3, src))

	got, ok := repo.Find(3)
	require.True(t, ok)
	assert.Equal(t, "Engineer", got.Position)
	assert.Equal(t, 3, repo.Len())
}

func TestRepository_DeleteRemovesExactlyOne(t *testing.T) {
	backend := seeded(4)
	repo := NewRepository(backend, zerolog.Nop())
	require.NoError(t, repo.List(context.Background()))

	require.NoError(t, repo.Delete(context.Background(), 2))

	items := repo.Items()
	require.Len(t, items, 3)
	ids := []int64{}
	for _, e := range items {
		ids = append(ids, e.EmployeeID)
	}
	assert.Equal(t, []int64{1, 3, 4}, ids)
}

func TestRepository_DeleteFailure(t *testing.T) {
	backend := seeded(2)
	repo := NewRepository(backend, zerolog.Nop())
	require.NoError(t, repo.List(context.Background()))

	err := repo.Delete(context.Background(), 77)
	require.Error(t, err)
	assert.Equal(t, 2, repo.Len())
}

func TestRepository_ResyncFailureAfterWrite(t *testing.T) {
	backend := seeded(1)
	repo := NewRepository(backend, zerolog.Nop())
	require.NoError(t, repo.List(context.Background()))

	backend.listHook = func() { backend.failList = errors.New("timeout") }
	err := repo.Create(context.Background(), Employee{FirstName: "Ana"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrResync)
	assert.Contains(t, err.Error(), "timeout")
	assert.Equal(t, 1, repo.Len(), "stale list is kept")
}

func TestRepository_OnChange(t *testing.T) {
	backend := seeded(5)
	repo := NewRepository(backend, zerolog.Nop())

	var seen []int
	repo.OnChange(func(n int) { seen = append(seen, n) })

	require.NoError(t, repo.List(context.Background()))
	require.NoError(t, repo.Delete(context.Background(), 1))

	assert.Equal(t, []int{5, 4}, seen)
}

func TestRepository_StaleResponseDiscarded(t *testing.T) {
	backend := seeded(1)
	repo := NewRepository(backend, zerolog.Nop())

	// The first fetch is held back until a second fetch has completed,
	// then returns an older snapshot.
	old := []Employee{{EmployeeID: 1, FirstName: "Old"}}
	slow := &slowBackend{fakeBackend: backend, first: old, started: make(chan struct{}), release: make(chan struct{})}
	repo.backend = slow

	done := make(chan error)
	go func() { done <- repo.List(context.Background()) }()
	<-slow.started

	require.NoError(t, repo.List(context.Background()))
	close(slow.release)
	require.NoError(t, <-done)

	items := repo.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "Emp", items[0].FirstName)
}

type slowBackend struct {
	*fakeBackend
	once    sync.Once
	first   []Employee
	started chan struct{}
	release chan struct{}
}

func (s *slowBackend) ListEmployees(ctx context.Context) ([]Employee, error) {
	isFirst := false
	s.once.Do(func() { isFirst = true })
	if isFirst {
		close(s.started)
		<-s.release
		return s.first, nil
	}
	return s.fakeBackend.ListEmployees(ctx)
}

func TestEmployee_FullName(t *testing.T) {
	assert.Equal(t, "Ana Lopez", Employee{FirstName: "Ana", LastName: "Lopez"}.FullName())
	assert.Equal(t, "Ana", Employee{FirstName: "Ana"}.FullName())
	assert.Equal(t, "Lopez", Employee{LastName: "Lopez"}.FullName())
}

func TestValidDate(t *testing.T) {
	assert.True(t, ValidDate("2024-02-29"))
	assert.False(t, ValidDate("2023-02-29"))
	assert.False(t, ValidDate("01/02/2024"))
	assert.False(t, ValidDate(""))
}
