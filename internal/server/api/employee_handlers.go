package api

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/umardevX/ems-console/internal/employee"
	"github.com/umardevX/ems-console/internal/server/auth"
	"github.com/umardevX/ems-console/internal/server/database"
	"github.com/umardevX/ems-console/internal/server/middleware"
)

// EmployeeStore is the persistence the employee handlers need
type EmployeeStore interface {
	ListEmployees(ctx context.Context) ([]employee.Employee, error)
	CreateEmployee(ctx context.Context, e employee.Employee) (employee.Employee, error)
	UpdateEmployee(ctx context.Context, id int64, e employee.Employee) (employee.Employee, error)
	DeleteEmployee(ctx context.Context, id int64) error
}

// EmployeeHandlers serves the /employees collection
type EmployeeHandlers struct {
	store EmployeeStore
	audit auth.AuditLogger
}

// NewEmployeeHandlers creates the employee handlers. auditLogger may be nil.
func NewEmployeeHandlers(store EmployeeStore, auditLogger auth.AuditLogger) *EmployeeHandlers {
	return &EmployeeHandlers{store: store, audit: auditLogger}
}

// ValidateEmployee returns the field problems of a submitted record
func ValidateEmployee(e employee.Employee) map[string]string {
	fields := map[string]string{}
	if strings.TrimSpace(e.FirstName) == "" {
		fields["firstName"] = "First name is required"
	}
	if strings.TrimSpace(e.LastName) == "" {
		fields["lastName"] = "Last name is required"
	}
	if !employee.ValidDate(e.DateOfBirth) {
		fields["dateOfBirth"] = "Date of birth must be a date (YYYY-MM-DD)"
	}
	if !employee.ValidDate(e.HireDate) {
		fields["hireDate"] = "Hire date must be a date (YYYY-MM-DD)"
	}
	return fields
}

// List answers the full collection
func (h *EmployeeHandlers) List(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.ListEmployees(r.Context())
	if err != nil {
		h.internal(w, r, err, "failed to list employees")
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// Create stores a new record and answers it with its assigned identity
func (h *EmployeeHandlers) Create(w http.ResponseWriter, r *http.Request) {
	e, ok := h.decode(w, r)
	if !ok {
		return
	}

	created, err := h.store.CreateEmployee(r.Context(), e)
	if err != nil {
		h.internal(w, r, err, "failed to create employee")
		return
	}

	h.record(r, auth.AuditEmployeeCreated, created.EmployeeID)
	writeJSON(w, http.StatusCreated, created)
}

// Update replaces the record named in the path
func (h *EmployeeHandlers) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	e, ok := h.decode(w, r)
	if !ok {
		return
	}

	updated, err := h.store.UpdateEmployee(r.Context(), id, e)
	if errors.Is(err, database.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Employee not found"})
		return
	}
	if err != nil {
		h.internal(w, r, err, "failed to update employee")
		return
	}

	h.record(r, auth.AuditEmployeeUpdated, id)
	writeJSON(w, http.StatusOK, updated)
}

// Delete removes the record named in the path
func (h *EmployeeHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	err := h.store.DeleteEmployee(r.Context(), id)
	if errors.Is(err, database.ErrNotFound) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Employee not found"})
		return
	}
	if err != nil {
		h.internal(w, r, err, "failed to delete employee")
		return
	}

	h.record(r, auth.AuditEmployeeDeleted, id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *EmployeeHandlers) decode(w http.ResponseWriter, r *http.Request) (employee.Employee, bool) {
	var e employee.Employee
	if !decodeBody(w, r, &e) {
		return e, false
	}
	if fields := ValidateEmployee(e); len(fields) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]interface{}{
			"error":  "Validation failed",
			"fields": fields,
		})
		return e, false
	}
	return e, true
}

func (h *EmployeeHandlers) record(r *http.Request, event auth.AuditEvent, id int64) {
	if h.audit == nil {
		return
	}
	entry := auth.CreateEmployeeAuditLog(event, nil, id, middleware.GetClientIP(r))
	if u, ok := middleware.UserFromContext(r.Context()); ok {
		entry.ActorID = &u.ID
	}
	_ = h.audit.Log(entry)
}

func (h *EmployeeHandlers) internal(w http.ResponseWriter, r *http.Request, err error, msg string) {
	zerolog.Ctx(r.Context()).Error().Err(err).Msg(msg)
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid employee id"})
		return 0, false
	}
	return id, true
}
