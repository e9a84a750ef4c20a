package split

import "errors"

var (
	// ErrInvalidSplit is returned for negative or reversed row boundaries.
	ErrInvalidSplit = errors.New("invalid split boundaries")
	// ErrUnordered is returned when a record has no usable season or round.
	ErrUnordered = errors.New("record cannot be ordered chronologically")
)
