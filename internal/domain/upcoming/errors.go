package upcoming

import "errors"

var (
	// ErrNoQualifiers is returned when the qualifying sheet is empty.
	ErrNoQualifiers = errors.New("no qualifiers")
	// ErrDuplicateQualifier is returned when a driver appears twice on the sheet.
	ErrDuplicateQualifier = errors.New("driver listed twice on qualifying sheet")
)
