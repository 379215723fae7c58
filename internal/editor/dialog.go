// Package editor implements the add/edit employee dialog: a draft record
// with per-field change tracking that is handed to the repository on
// confirm.
package editor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/umardevX/ems-console/internal/employee"
)

var (
	// ErrClosed is returned when the dialog is used while closed
	ErrClosed = errors.New("editor dialog is not open")
	// ErrUnknownField is returned for a field name the draft does not have
	ErrUnknownField = errors.New("unknown employee field")
)

// Mode is the dialog state
type Mode int

const (
	Closed Mode = iota
	OpenForCreate
	OpenForEdit
)

func (m Mode) String() string {
	switch m {
	case Closed:
		return "closed"
	case OpenForCreate:
		return "create"
	case OpenForEdit:
		return "edit"
	default:
		return "unknown"
	}
}

// Saver receives the draft on confirm
type Saver interface {
	Create(ctx context.Context, draft employee.Employee) error
	Update(ctx context.Context, id int64, draft employee.Employee) error
}

// Fields lists the editable field names, in form order
var Fields = []string{
	"firstName",
	"lastName",
	"email",
	"phoneNumber",
	"dateOfBirth",
	"hireDate",
	"position",
	"department",
	"isActive",
}

// Dialog holds one draft for the lifetime of an open dialog
type Dialog struct {
	mode    Mode
	source  employee.Employee
	draft   employee.Employee
	changed map[string]bool
}

// New returns a closed dialog
func New() *Dialog {
	return &Dialog{}
}

// Mode reports the current state
func (d *Dialog) Mode() Mode {
	return d.mode
}

// Title is the heading shown for the current mode
func (d *Dialog) Title() string {
	if d.mode == OpenForEdit {
		return "Edit Employee"
	}
	return "Add Employee"
}

// OpenForCreate opens the dialog with an empty draft
func (d *Dialog) OpenForCreate() {
	d.mode = OpenForCreate
	d.source = employee.Employee{}
	d.draft = employee.Employee{IsActive: true}
	d.changed = make(map[string]bool)
}

// OpenForEdit opens the dialog with every field copied from src
func (d *Dialog) OpenForEdit(src employee.Employee) {
	d.mode = OpenForEdit
	d.source = src
	d.draft = src
	d.changed = make(map[string]bool)
}

// Draft returns a copy of the working record
func (d *Dialog) Draft() employee.Employee {
	return d.draft
}

// Source returns the record the dialog was opened for
func (d *Dialog) Source() employee.Employee {
	return d.source
}

// Changed returns the names of fields set since opening, sorted
func (d *Dialog) Changed() []string {
	out := make([]string, 0, len(d.changed))
	for f := range d.changed {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

// Set updates a single draft field. Dates must be YYYY-MM-DD and isActive
// must be a boolean; everything else is taken as typed.
func (d *Dialog) Set(field, value string) error {
	if d.mode == Closed {
		return ErrClosed
	}

	switch field {
	case "firstName":
		d.draft.FirstName = value
	case "lastName":
		d.draft.LastName = value
	case "email":
		d.draft.Email = value
	case "phoneNumber":
		d.draft.PhoneNumber = value
	case "dateOfBirth", "hireDate":
		if value != "" && !employee.ValidDate(value) {
			return fmt.Errorf("%s must be a date in YYYY-MM-DD format, got %q", field, value)
		}
		if field == "dateOfBirth" {
			d.draft.DateOfBirth = value
		} else {
			d.draft.HireDate = value
		}
	case "position":
		d.draft.Position = value
	case "department":
		d.draft.Department = value
	case "isActive":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("isActive: %w", err)
		}
		d.draft.IsActive = b
	default:
		return fmt.Errorf("%w: %s", ErrUnknownField, field)
	}

	d.changed[field] = true
	return nil
}

// Confirm hands the draft to s and closes the dialog once the write has
// landed. On failure the dialog stays open with the draft intact so the
// user can retry.
func (d *Dialog) Confirm(ctx context.Context, s Saver) error {
	var err error
	switch d.mode {
	case OpenForCreate:
		err = s.Create(ctx, d.draft)
	case OpenForEdit:
		err = s.Update(ctx, d.source.EmployeeID, d.draft)
	default:
		return ErrClosed
	}
	if err != nil && !errors.Is(err, employee.ErrResync) {
		return err
	}

	d.Cancel()
	return err
}

// Cancel closes the dialog and discards the draft
func (d *Dialog) Cancel() {
	d.mode = Closed
	d.source = employee.Employee{}
	d.draft = employee.Employee{}
	d.changed = nil
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off":
		return false, nil
	}
	b, err := strconv.ParseBool(strings.TrimSpace(s))
	if err != nil {
		return false, fmt.Errorf("expected a boolean, got %q", s)
	}
	return b, nil
}
