// Package upcoming builds model input rows for a race that has not run yet.
//
// One placeholder row per qualifier is appended to the history and the normal
// feature pipeline runs over the combined table. Placeholders carry no
// outcome, and windows never read the current race, so their features are
// exactly what the history implies. Remaining gaps are filled with the column
// median across qualifiers.
package upcoming

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/podium/internal/domain/dedupe"
	"github.com/okian/podium/internal/domain/duration"
	"github.com/okian/podium/internal/domain/encoding"
	"github.com/okian/podium/internal/domain/features"
	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/split"
)

// Qualifier is one line of the qualifying sheet.
type Qualifier struct {
	DriverID      int
	DriverCode    string
	ConstructorID string
	GridPosition  int
	// Qualifying is the raw best qualifying time, any form the duration
	// normalizer accepts.
	Qualifying string
}

// Race identifies the upcoming race.
type Race struct {
	Key     model.RaceKey
	Circuit string
}

// Runner runs the feature pipeline.
type Runner interface {
	Features(ctx context.Context, rows []model.Result, raw features.RawDurations) ([]model.FeatureRecord, error)
}

// Input is the prediction table for the race.
type Input struct {
	Columns []string
	Records []model.FeatureRecord
	X       [][]float64
	// Imputed counts median-filled cells per column.
	Imputed map[string]int
	// UnknownCircuit is set when the circuit is outside the encoder vocabulary.
	UnknownCircuit bool
	// UnknownConstructors lists qualifiers with no constructor on the sheet
	// or in history. Each runs under its own placeholder constructor, so its
	// team features come from the median.
	UnknownConstructors []int
}

// Build assembles the prediction rows for race in qualifying sheet order.
// history holds prior results with durations already in seconds; it is not
// modified.
func Build(ctx context.Context, run Runner, history []model.Result, qualifiers []Qualifier, race Race, enc *encoding.OneHot) (*Input, error) {
	if len(qualifiers) == 0 {
		return nil, ErrNoQualifiers
	}

	latest := latestConstructors(history)
	rows := make([]model.Result, 0, len(history)+len(qualifiers))
	rows = append(rows, history...)

	var unknown []int
	seen := dedupe.New(dedupe.WithCapacity(len(qualifiers)))
	for i, q := range qualifiers {
		if first, dup := seen.SeenAndRecord(strconv.Itoa(q.DriverID), i); dup {
			return nil, fmt.Errorf("%w: driver %d at lines %d and %d", ErrDuplicateQualifier, q.DriverID, first, i)
		}

		constructor := strings.TrimSpace(q.ConstructorID)
		if constructor == "" {
			constructor = latest[q.DriverID].ConstructorID
		}
		if constructor == "" {
			constructor = placeholderConstructor(q.DriverID)
			unknown = append(unknown, q.DriverID)
		}

		code := q.DriverCode
		if code == "" {
			code = latest[q.DriverID].DriverCode
		}

		// unparseable times stay missing and are imputed below
		qualifying, _ := duration.Seconds(q.Qualifying)
		rows = append(rows, model.Result{
			DriverID:          q.DriverID,
			DriverCode:        code,
			ConstructorID:     constructor,
			ConstructorName:   latest[q.DriverID].ConstructorName,
			Season:            race.Key.Season,
			Round:             race.Key.Round,
			RaceID:            race.Key.ID(),
			CircuitName:       race.Circuit,
			GridPosition:      q.GridPosition,
			FastestLapSeconds: math.NaN(),
			QualifyingSeconds: qualifying,
		})
	}

	out, err := run.Features(ctx, rows, features.RawDurations{})
	if err != nil {
		return nil, err
	}

	in := &Input{
		Columns:             split.Columns(enc),
		Records:             out[len(history):],
		UnknownConstructors: unknown,
	}
	_, known := enc.Index(race.Circuit)
	in.UnknownCircuit = !known

	in.X = make([][]float64, len(in.Records))
	for i := range in.Records {
		in.X[i] = split.Vector(&in.Records[i], enc)
	}
	in.Imputed = imputeMedians(in.X, in.Columns)
	return in, nil
}

// placeholderConstructor is unique per driver within a sheet, so it never
// shares team windows with a real constructor or another rookie.
func placeholderConstructor(driverID int) string {
	return "unknown-" + strconv.Itoa(driverID)
}

// latestConstructors returns each driver's most recent history row.
func latestConstructors(history []model.Result) map[int]model.Result {
	out := make(map[int]model.Result)
	for _, r := range history {
		prev, ok := out[r.DriverID]
		if !ok || prev.Key().Less(r.Key()) {
			out[r.DriverID] = r
		}
	}
	return out
}

// imputeMedians replaces NaN cells with their column median. A column with no
// values at all is left missing.
func imputeMedians(x [][]float64, columns []string) map[string]int {
	imputed := make(map[string]int)
	col := make([]float64, 0, len(x))
	for j := range columns {
		col = col[:0]
		for i := range x {
			if !math.IsNaN(x[i][j]) {
				col = append(col, x[i][j])
			}
		}
		if len(col) == len(x) || len(col) == 0 {
			continue
		}
		m := median(col)
		for i := range x {
			if math.IsNaN(x[i][j]) {
				x[i][j] = m
				imputed[columns[j]]++
			}
		}
	}
	return imputed
}

// median averages the two middle values for even lengths. values is sorted in place.
func median(values []float64) float64 {
	sort.Float64s(values)
	n := len(values)
	if n%2 == 1 {
		return values[n/2]
	}
	return stat.Mean(values[n/2-1:n/2+1], nil)
}
