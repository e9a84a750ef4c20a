// Package model contains domain models passed between layers.
package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FinishedStatus is the only status label that counts as a finish.
const FinishedStatus = "Finished"

// RaceKey orders races chronologically.
type RaceKey struct {
	Season int
	Round  int
}

// Less reports whether k happens strictly before o.
func (k RaceKey) Less(o RaceKey) bool {
	if k.Season != o.Season {
		return k.Season < o.Season
	}
	return k.Round < o.Round
}

// ID renders the composite race id, e.g. "2024_7".
func (k RaceKey) ID() string {
	return strconv.Itoa(k.Season) + "_" + strconv.Itoa(k.Round)
}

// ParseRaceID splits a "season_round" id.
func ParseRaceID(id string) (RaceKey, error) {
	season, round, ok := strings.Cut(strings.TrimSpace(id), "_")
	if !ok {
		return RaceKey{}, fmt.Errorf("race id %q: want season_round", id)
	}
	s, err := strconv.Atoi(season)
	if err != nil {
		return RaceKey{}, fmt.Errorf("race id %q: season: %w", id, err)
	}
	r, err := strconv.Atoi(round)
	if err != nil {
		return RaceKey{}, fmt.Errorf("race id %q: round: %w", id, err)
	}
	if r < 1 {
		return RaceKey{}, fmt.Errorf("race id %q: round must be >= 1", id)
	}
	return RaceKey{Season: s, Round: r}, nil
}

// Result is one driver's outcome in one race.
//
// Positions are 1-based; zero means unknown (grid) or not classified (finish).
// Duration fields hold seconds, NaN when missing.
type Result struct {
	DriverID        int
	DriverCode      string
	ConstructorID   string
	ConstructorName string
	Season          int
	Round           int
	RaceID          string
	CircuitName     string
	GridPosition    int
	FinishPosition  int
	Status          string

	FastestLapSeconds float64
	QualifyingSeconds float64

	// Extra carries input columns the pipeline does not interpret, in header order.
	Extra []string
}

// Key returns the chronological key of the race.
func (r *Result) Key() RaceKey {
	return RaceKey{Season: r.Season, Round: r.Round}
}

// Finished reports whether the status counts as a finish.
func (r *Result) Finished() bool {
	return r.Status == FinishedStatus
}

// Classified reports whether a finish position is known.
func (r *Result) Classified() bool {
	return r.FinishPosition > 0
}

// Racecraft is grid minus finish (positive = places gained), NaN when either is unknown.
func (r *Result) Racecraft() float64 {
	if r.GridPosition <= 0 || r.FinishPosition <= 0 {
		return math.NaN()
	}
	return float64(r.GridPosition - r.FinishPosition)
}

// IsPodium reports a top-three classified finish.
func (r *Result) IsPodium() bool {
	return r.FinishPosition >= 1 && r.FinishPosition <= 3
}
