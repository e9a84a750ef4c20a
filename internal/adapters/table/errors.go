package table

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingColumn is returned when a required column is absent.
	ErrMissingColumn = errors.New("missing required column")
	// ErrMalformed is returned when the input is not a readable table.
	ErrMalformed = errors.New("malformed table")
	// ErrInvalidValue is returned when a required cell cannot be parsed.
	ErrInvalidValue = errors.New("invalid cell value")
)

// ColumnError names the missing column and the table it was expected in.
type ColumnError struct {
	Table  string
	Column string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf("%s table: %s %q", e.Table, ErrMissingColumn, e.Column)
}

// Unwrap lets errors.Is match ErrMissingColumn.
func (e *ColumnError) Unwrap() error {
	return ErrMissingColumn
}
