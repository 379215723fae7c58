// Package grid pages and renders the employee list.
package grid

import "fmt"

// DefaultPageSize is the page size of a fresh cursor
const DefaultPageSize = 10

// PageSizes are the page sizes the grid offers
var PageSizes = []int{5, 10, 25, 50}

// Cursor is the grid's page position. It is independent of the list it
// pages over; Clamp keeps it in range when the list shrinks.
type Cursor struct {
	PageIndex int
	PageSize  int
}

// NewCursor returns a cursor on the first page with the default size
func NewCursor() *Cursor {
	return &Cursor{PageSize: DefaultPageSize}
}

// ValidPageSize reports whether n is one of PageSizes
func ValidPageSize(n int) bool {
	for _, s := range PageSizes {
		if s == n {
			return true
		}
	}
	return false
}

// SetPageSize changes the page size and returns to the first page
func (c *Cursor) SetPageSize(n int) error {
	if !ValidPageSize(n) {
		return fmt.Errorf("page size must be one of %v, got %d", PageSizes, n)
	}
	c.PageSize = n
	c.PageIndex = 0
	return nil
}

// SetPage moves to page i of a list of length total
func (c *Cursor) SetPage(i, total int) error {
	if i < 0 || i >= PageCount(total, c.PageSize) {
		return fmt.Errorf("page %d out of range (%d pages)", i+1, PageCount(total, c.PageSize))
	}
	c.PageIndex = i
	return nil
}

// Clamp pulls the page index back to the last page of a list of length n
func (c *Cursor) Clamp(n int) {
	last := PageCount(n, c.PageSize) - 1
	if c.PageIndex > last {
		c.PageIndex = last
	}
	if c.PageIndex < 0 {
		c.PageIndex = 0
	}
}

// Bounds returns the half-open slice range of the current page for a list
// of length n
func (c *Cursor) Bounds(n int) (start, end int) {
	size := c.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	start = max(c.PageIndex, 0) * size
	if start > n {
		start = n
	}
	end = start + size
	if end > n {
		end = n
	}
	return start, end
}

// Page returns the visible slice of list
func Page[T any](c *Cursor, list []T) []T {
	start, end := c.Bounds(len(list))
	return list[start:end]
}

// PageCount is the number of pages needed for n rows. An empty list still
// has one (empty) page.
func PageCount(n, size int) int {
	if size <= 0 {
		size = DefaultPageSize
	}
	if n <= 0 {
		return 1
	}
	return (n + size - 1) / size
}
