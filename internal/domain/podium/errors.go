package podium

import "errors"

var (
	// ErrNoEntries is returned when there is nothing to select or evaluate.
	ErrNoEntries = errors.New("no prediction entries")
	// ErrUnlabelled is returned when evaluation meets an entry without an outcome.
	ErrUnlabelled = errors.New("entry has no podium outcome")
	// ErrSingleClass is returned when AUC is undefined because every entry has the same outcome.
	ErrSingleClass = errors.New("outcomes contain a single class")
)
