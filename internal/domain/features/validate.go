package features

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/okian/podium/internal/domain/dedupe"
	"github.com/okian/podium/internal/domain/model"
)

// Validate enforces the structural invariants the windows depend on.
// It fills an empty RaceID from (season, round) and an empty constructor id
// from the constructor name, and fails on:
//   - a round below 1 or a non-positive season
//   - a race id that disagrees with its season or round
//   - an empty constructor id with no constructor name
//   - a repeated (driver_id, race_id) pair
//   - raw duration columns not aligned with the rows
func Validate(f *Frame) error {
	n := len(f.Rows)
	if f.Raw.FastestLap != nil && len(f.Raw.FastestLap) != n {
		return fmt.Errorf("%w: %d fastest lap cells for %d rows", ErrInvalidRow, len(f.Raw.FastestLap), n)
	}
	if f.Raw.Qualifying != nil && len(f.Raw.Qualifying) != n {
		return fmt.Errorf("%w: %d qualifying cells for %d rows", ErrInvalidRow, len(f.Raw.Qualifying), n)
	}

	model.FillConstructorIDs(f.Rows)

	seen := dedupe.New(dedupe.WithCapacity(n))
	for i := range f.Rows {
		r := &f.Rows[i]
		if r.Season <= 0 {
			return fmt.Errorf("%w: row %d: season %d", ErrInvalidRow, i, r.Season)
		}
		if r.Round < 1 {
			return fmt.Errorf("%w: row %d: round %d", ErrInvalidRow, i, r.Round)
		}

		if strings.TrimSpace(r.RaceID) == "" {
			r.RaceID = r.Key().ID()
		} else {
			key, err := model.ParseRaceID(r.RaceID)
			if err != nil {
				return fmt.Errorf("%w: row %d: %w", ErrInvalidRow, i, err)
			}
			if key != r.Key() {
				return fmt.Errorf("%w: row %d: race id %q does not match season %d round %d",
					ErrInvalidRow, i, r.RaceID, r.Season, r.Round)
			}
		}

		if strings.TrimSpace(r.ConstructorID) == "" {
			return fmt.Errorf("%w: row %d: empty constructor id", ErrInvalidRow, i)
		}

		k := dedupe.Key(strconv.Itoa(r.DriverID), r.Key().ID())
		if first, dup := seen.SeenAndRecord(k, i); dup {
			return fmt.Errorf("%w: driver %d race %s at rows %d and %d",
				ErrDuplicateKey, r.DriverID, r.RaceID, first, i)
		}
	}
	return nil
}
