package aggregate

import (
	"fmt"
	"strings"
)

// ResourceNotFoundError indicates the input path does not reference an
// existing file. It is raised before any read is attempted.
type ResourceNotFoundError struct {
	Path string
}

// Error implements the error interface
func (e *ResourceNotFoundError) Error() string {
	return fmt.Sprintf("resource not found: %s", e.Path)
}

// ColumnNotFoundError indicates a requested column name is absent from
// the header row. Header carries the full set of available columns for
// diagnostics.
type ColumnNotFoundError struct {
	Column string
	Header []string
}

// Error implements the error interface
func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("column %q not found in header (available: %s)",
		e.Column, strings.Join(e.Header, ", "))
}
