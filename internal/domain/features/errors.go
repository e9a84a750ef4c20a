package features

import "errors"

// Sentinel kinds for feature engineering errors.
var (
	ErrInvalidRow    = errors.New("invalid result row")
	ErrDuplicateKey  = errors.New("duplicate (driver_id, race_id)")
	ErrInvalidWindow = errors.New("invalid window size")
)
