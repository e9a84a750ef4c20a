// Package telemetry acquires race and qualifying results from an external
// provider and merges them into result rows.
package telemetry

import (
	"context"

	"github.com/okian/podium/internal/domain/model"
)

// Session types.
const (
	SessionSchedule   = "schedule"
	SessionRace       = "race"
	SessionQualifying = "qualifying"
)

// Event is one race weekend on the calendar.
type Event struct {
	Key  model.RaceKey
	Name string
}

// RaceEntry is one driver's race classification.
type RaceEntry struct {
	DriverNumber    int
	DriverCode      string
	ConstructorID   string
	ConstructorName string
	Grid            int
	// Position is the classified finish, zero when not classified.
	Position int
	Status   string
	// FastestLap is the driver's fastest lap as provider text.
	FastestLap string
}

// QualifyingEntry is one driver's qualifying result. Times are provider text.
type QualifyingEntry struct {
	DriverNumber  int
	DriverCode    string
	ConstructorID string
	Position      int
	Q1, Q2, Q3    string
}

// Provider loads sessions. An event without published results returns an
// empty slice and no error.
type Provider interface {
	Schedule(ctx context.Context, season int) ([]Event, error)
	RaceResults(ctx context.Context, ev Event) ([]RaceEntry, error)
	QualifyingResults(ctx context.Context, ev Event) ([]QualifyingEntry, error)
}
