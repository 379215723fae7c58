// Package employee holds the employee record and the console's in-memory
// copy of the collection.
package employee

import "time"

// DateLayout is the wire format of date fields
const DateLayout = "2006-01-02"

// Employee is one record as exchanged with the backend. EmployeeID is zero
// only for a draft that has not been saved yet.
type Employee struct {
	EmployeeID  int64  `json:"employeeId"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	DateOfBirth string `json:"dateOfBirth"`
	HireDate    string `json:"hireDate"`
	Position    string `json:"position,omitempty"`
	Department  string `json:"department,omitempty"`
	IsActive    bool   `json:"isActive"`
}

// FullName joins first and last name
func (e Employee) FullName() string {
	switch {
	case e.FirstName == "":
		return e.LastName
	case e.LastName == "":
		return e.FirstName
	default:
		return e.FirstName + " " + e.LastName
	}
}

// ValidDate reports whether s is a calendar date in DateLayout
func ValidDate(s string) bool {
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
