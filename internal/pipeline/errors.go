package pipeline

import "errors"

var (
	// ErrUnknownStage is returned when a stage depends on a stage that does not exist.
	ErrUnknownStage = errors.New("stage depends on unknown stage")
	// ErrInvalidGraph is returned when stages cannot be arranged into a graph.
	ErrInvalidGraph = errors.New("invalid stage graph")
)
