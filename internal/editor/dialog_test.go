package editor

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/umardevX/ems-console/internal/employee"
)

type recordingSaver struct {
	created []employee.Employee
	updated map[int64]employee.Employee
	err     error
}

func (r *recordingSaver) Create(ctx context.Context, draft employee.Employee) error {
	if r.err != nil {
		return r.err
	}
	r.created = append(r.created, draft)
	return nil
}

func (r *recordingSaver) Update(ctx context.Context, id int64, draft employee.Employee) error {
	if r.err != nil {
		return r.err
	}
	if r.updated == nil {
		r.updated = make(map[int64]employee.Employee)
	}
	r.updated[id] = draft
	return nil
}

var source = employee.Employee{
	EmployeeID:  7,
	FirstName:   "Grace",
	LastName:    "Hopper",
	Email:       "grace@example.com",
	PhoneNumber: "555-0100",
	DateOfBirth: "1906-12-09",
	HireDate:    "1943-07-01",
	Position:    "Rear Admiral",
	Department:  "Navy",
	IsActive:    false,
}

func TestOpenForEdit_CopiesEveryField(t *testing.T) {
	d := New()
	d.OpenForEdit(source)

	assert.Equal(t, OpenForEdit, d.Mode())
	assert.Equal(t, source, d.Draft())
	assert.Equal(t, "Edit Employee", d.Title())
	assert.Empty(t, d.Changed())
}

func TestOpenForCreate_Defaults(t *testing.T) {
	d := New()
	d.OpenForEdit(source)
	d.Cancel()
	d.OpenForCreate()

	assert.Equal(t, OpenForCreate, d.Mode())
	assert.Equal(t, employee.Employee{IsActive: true}, d.Draft())
	assert.Equal(t, "Add Employee", d.Title())
}

func TestSet_OnlyTouchesOneField(t *testing.T) {
	d := New()
	d.OpenForEdit(source)

	require.NoError(t, d.Set("department", "Research"))

	want := source
	want.Department = "Research"
	assert.Equal(t, want, d.Draft())
	assert.Equal(t, []string{"department"}, d.Changed())
	// The source is untouched
	assert.Equal(t, "Navy", d.Source().Department)
}

func TestSet_AllFields(t *testing.T) {
	d := New()
	d.OpenForCreate()

	values := map[string]string{
		"firstName":   "Ana",
		"lastName":    "Lopez",
		"email":       "ana@example.com",
		"phoneNumber": "555-0199",
		"dateOfBirth": "1991-05-05",
		"hireDate":    "2024-02-01",
		"position":    "Engineer",
		"department":  "R&D",
		"isActive":    "no",
	}
	for _, f := range Fields {
		require.NoError(t, d.Set(f, values[f]), f)
	}

	assert.Equal(t, employee.Employee{
		FirstName:   "Ana",
		LastName:    "Lopez",
		Email:       "ana@example.com",
		PhoneNumber: "555-0199",
		DateOfBirth: "1991-05-05",
		HireDate:    "2024-02-01",
		Position:    "Engineer",
		Department:  "R&D",
		IsActive:    false,
	}, d.Draft())
	assert.Len(t, d.Changed(), len(Fields))
}

func TestSet_Rejections(t *testing.T) {
	d := New()
	assert.ErrorIs(t, d.Set("firstName", "x"), ErrClosed)

	d.OpenForCreate()
	assert.ErrorIs(t, d.Set("salary", "1"), ErrUnknownField)
	assert.Error(t, d.Set("hireDate", "31/12/2024"))
	assert.Error(t, d.Set("isActive", "maybe"))
	assert.Empty(t, d.Changed(), "rejected values are not recorded")

	// Clearing a date is allowed
	assert.NoError(t, d.Set("dateOfBirth", ""))
}

func TestConfirm_CreateClosesDialog(t *testing.T) {
	saver := &recordingSaver{}
	d := New()
	d.OpenForCreate()
	require.NoError(t, d.Set("firstName", "Ana"))

	require.NoError(t, d.Confirm(context.Background(), saver))

	require.Len(t, saver.created, 1)
	assert.Equal(t, "Ana", saver.created[0].FirstName)
	assert.Equal(t, Closed, d.Mode())
	assert.Equal(t, employee.Employee{}, d.Draft())
}

func TestConfirm_EditUsesSourceIdentity(t *testing.T) {
	saver := &recordingSaver{}
	d := New()
	d.OpenForEdit(source)
	require.NoError(t, d.Set("lastName", "Murray Hopper"))

	require.NoError(t, d.Confirm(context.Background(), saver))

	got, ok := saver.updated[7]
	require.True(t, ok)
	assert.Equal(t, "Murray Hopper", got.LastName)
	assert.Equal(t, Closed, d.Mode())
}

func TestConfirm_FailureKeepsDraft(t *testing.T) {
	saver := &recordingSaver{err: errors.New("409 conflict")}
	d := New()
	d.OpenForEdit(source)
	require.NoError(t, d.Set("position", "Commodore"))

	err := d.Confirm(context.Background(), saver)
	require.Error(t, err)

	assert.Equal(t, OpenForEdit, d.Mode())
	assert.Equal(t, "Commodore", d.Draft().Position)
	assert.Equal(t, []string{"position"}, d.Changed())
}

func TestConfirm_Closed(t *testing.T) {
	assert.ErrorIs(t, New().Confirm(context.Background(), &recordingSaver{}), ErrClosed)
}

func TestCancel_DiscardsDraft(t *testing.T) {
	saver := &recordingSaver{}
	d := New()
	d.OpenForEdit(source)
	require.NoError(t, d.Set("firstName", "Changed"))

	d.Cancel()

	assert.Equal(t, Closed, d.Mode())
	assert.Empty(t, d.Changed())
	assert.Empty(t, saver.created)
	assert.Empty(t, saver.updated)
}

func TestModeString(t *testing.T) {
	assert.Equal(t, "closed", Closed.String())
	assert.Equal(t, "create", OpenForCreate.String())
	assert.Equal(t, "edit", OpenForEdit.String())
}

func TestConfirm_ClosesWhenOnlyRefreshFailed(t *testing.T) {
	saver := &recordingSaver{err: fmt.Errorf("%w: timeout", employee.ErrResync)}
	d := New()
	d.OpenForCreate()

	err := d.Confirm(context.Background(), saver)
	assert.ErrorIs(t, err, employee.ErrResync)
	assert.Equal(t, Closed, d.Mode())
}
