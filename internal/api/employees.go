package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/umardevX/ems-console/internal/employee"
)

var _ employee.Backend = (*Client)(nil)

// ListEmployees fetches the full employee collection
func (c *Client) ListEmployees(ctx context.Context) ([]employee.Employee, error) {
	var list []employee.Employee
	if _, err := c.do(ctx, http.MethodGet, "/employees", nil, &list); err != nil {
		return nil, err
	}
	if list == nil {
		list = []employee.Employee{}
	}
	return list, nil
}

// CreateEmployee posts a new record. The caller re-fetches to learn the
// assigned identity.
func (c *Client) CreateEmployee(ctx context.Context, e employee.Employee) error {
	_, err := c.do(ctx, http.MethodPost, "/employees", e, nil)
	return err
}

// UpdateEmployee replaces the record identified by id
func (c *Client) UpdateEmployee(ctx context.Context, id int64, e employee.Employee) error {
	_, err := c.do(ctx, http.MethodPut, fmt.Sprintf("/employees/%d", id), e, nil)
	return err
}

// DeleteEmployee removes the record identified by id
func (c *Client) DeleteEmployee(ctx context.Context, id int64) error {
	_, err := c.do(ctx, http.MethodDelete, fmt.Sprintf("/employees/%d", id), nil, nil)
	return err
}
