package grid

import (
	"fmt"
	"io"
	"strings"

	"github.com/umardevX/ems-console/internal/employee"
)

// Column is one grid column
type Column struct {
	Header string
	Width  int
	Value  func(e employee.Employee) string
}

// Columns are the employee grid columns, in display order
var Columns = []Column{
	{"First Name", 12, func(e employee.Employee) string { return e.FirstName }},
	{"Last Name", 12, func(e employee.Employee) string { return e.LastName }},
	{"Email", 24, func(e employee.Employee) string { return e.Email }},
	{"Phone Number", 14, func(e employee.Employee) string { return e.PhoneNumber }},
	{"Date of Birth", 13, func(e employee.Employee) string { return e.DateOfBirth }},
	{"Hire Date", 10, func(e employee.Employee) string { return e.HireDate }},
	{"Position", 14, func(e employee.Employee) string { return e.Position }},
	{"Department", 12, func(e employee.Employee) string { return e.Department }},
	{"Active", 6, func(e employee.Employee) string { return YesNo(e.IsActive) }},
}

// YesNo renders the active flag
func YesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

// Render writes the current page of list as a fixed-width table followed by
// a footer with the page position
func Render(w io.Writer, c *Cursor, list []employee.Employee) {
	fmt.Fprintf(w, "%-5s", "ID")
	for _, col := range Columns {
		fmt.Fprintf(w, " %-*s", col.Width, col.Header)
	}
	fmt.Fprintln(w)

	fmt.Fprint(w, strings.Repeat("-", 5))
	for _, col := range Columns {
		fmt.Fprint(w, " "+strings.Repeat("-", col.Width))
	}
	fmt.Fprintln(w)

	rows := Page(c, list)
	if len(rows) == 0 {
		fmt.Fprintln(w, "No employees found.")
	}
	for _, e := range rows {
		fmt.Fprintf(w, "%-5d", e.EmployeeID)
		for _, col := range Columns {
			fmt.Fprintf(w, " %-*s", col.Width, truncate(col.Value(e), col.Width))
		}
		fmt.Fprintln(w)
	}

	start, end := c.Bounds(len(list))
	if len(list) > 0 {
		start++
	}
	fmt.Fprintf(w, "\n%d-%d of %d  (page %d of %d, %d per page)\n",
		start, end, len(list), c.PageIndex+1, PageCount(len(list), c.PageSize), c.PageSize)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
