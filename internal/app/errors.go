package service

import "errors"

var (
	// ErrNotStarted is returned when an operation runs before Start.
	ErrNotStarted = errors.New("service not started")
	// ErrWriteOutput is returned when an output file cannot be written.
	ErrWriteOutput = errors.New("write output failed")
)
