package table

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/okian/podium/internal/domain/duration"
	"github.com/okian/podium/internal/domain/features"
	"github.com/okian/podium/internal/domain/model"
)

// Table names used in errors.
const (
	TableResults     = "results"
	TableFeatures    = "features"
	TablePredictions = "predictions"
	TableQualifying  = "qualifying"
	TableVocabulary  = "vocabulary"
)

// Results is a parsed result table.
type Results struct {
	Rows []model.Result
	// Raw holds the duration cells as text for the normalizer; a nil column
	// was absent from the input.
	Raw features.RawDurations
	// ExtraColumns are the headers of passthrough columns, in input order.
	ExtraColumns []string
}

func knownColumns(sets ...[]string) map[string]bool {
	out := make(map[string]bool)
	for _, set := range sets {
		for _, c := range set {
			out[c] = true
		}
	}
	return out
}

// ReadResults parses a raw result table.
//
// Required: driver_id, season, grid_position, finish_position, status,
// constructor_id (or constructor_name, numbered densely) and round (or
// race_id to recover it from). Duration columns stay text in Raw.
func ReadResults(r io.Reader) (*Results, error) {
	f, err := readFrame(r, TableResults)
	if err != nil {
		return nil, err
	}
	if len(f.header) == 0 {
		return &Results{}, nil
	}
	return parseResults(f, knownColumns(model.ResultColumns))
}

func parseResults(f *frame, known map[string]bool) (*Results, error) {
	if err := f.require(model.ColDriverID, model.ColSeason); err != nil {
		return nil, err
	}
	if !f.has(model.ColRound) && !f.has(model.ColRaceID) {
		return nil, &ColumnError{Table: f.table, Column: model.ColRound}
	}
	if !f.has(model.ColConstructorID) && !f.has(model.ColConstructorName) {
		return nil, &ColumnError{Table: f.table, Column: model.ColConstructorID}
	}
	if err := f.require(model.ColGridPosition, model.ColFinishPosition, model.ColStatus); err != nil {
		return nil, err
	}

	constructors := f.cells(model.ColConstructorID)
	if constructors == nil {
		constructors = model.DenseIDs(f.cells(model.ColConstructorName))
	}

	out := &Results{
		Rows:         make([]model.Result, f.rows),
		ExtraColumns: f.extras(known),
	}
	if f.has(model.ColFastestLap) {
		out.Raw.FastestLap = f.cells(model.ColFastestLap)
	}
	if f.has(model.ColQualifying) {
		out.Raw.Qualifying = f.cells(model.ColQualifying)
	}

	for i := range out.Rows {
		row, err := parseResult(f, i)
		if err != nil {
			return nil, err
		}
		row.ConstructorID = strings.TrimSpace(constructors[i])
		if duration.IsBlank(row.ConstructorID) {
			row.ConstructorID = ""
		}
		row.Extra = f.extraValues(out.ExtraColumns, i)
		out.Rows[i] = row
	}
	return out, nil
}

func parseResult(f *frame, i int) (model.Result, error) {
	r := model.Result{
		DriverCode:        f.text(model.ColDriverCode, i),
		ConstructorName:   f.text(model.ColConstructorName, i),
		RaceID:            f.text(model.ColRaceID, i),
		CircuitName:       f.text(model.ColCircuitName, i),
		Status:            f.text(model.ColStatus, i),
		FastestLapSeconds: math.NaN(),
		QualifyingSeconds: math.NaN(),
	}

	var ok bool
	if r.DriverID, ok = parseInt(f.cell(model.ColDriverID, i)); !ok {
		return r, fmt.Errorf("%w: %s row %d: driver_id %q", features.ErrInvalidRow, f.table, i, f.cell(model.ColDriverID, i))
	}
	if r.Season, ok = parseInt(f.cell(model.ColSeason, i)); !ok {
		return r, fmt.Errorf("%w: %s row %d: season %q", features.ErrInvalidRow, f.table, i, f.cell(model.ColSeason, i))
	}
	if r.Round, ok = parseInt(f.cell(model.ColRound, i)); !ok {
		key, err := model.ParseRaceID(r.RaceID)
		if err != nil {
			return r, fmt.Errorf("%w: %s row %d: no round: %w", features.ErrInvalidRow, f.table, i, err)
		}
		r.Round = key.Round
	}

	r.GridPosition, _ = parseInt(f.cell(model.ColGridPosition, i))
	r.FinishPosition, _ = parseInt(f.cell(model.ColFinishPosition, i))
	return r, nil
}

// WriteResults writes a raw result table with durations in seconds.
func WriteResults(w io.Writer, rows []model.Result, extra []string) error {
	header := append(append([]string{}, model.ResultColumns...), extra...)
	out := make([][]string, len(rows))
	for i := range rows {
		out[i] = append(resultCells(&rows[i]), padExtra(rows[i].Extra, len(extra))...)
	}
	return writeTable(w, header, out)
}

// WriteRawResults writes res keeping the duration text from res.Raw where
// a column was read, so the output can be fed back through the normalizer.
func WriteRawResults(w io.Writer, res *Results) error {
	header := append(append([]string{}, model.ResultColumns...), res.ExtraColumns...)
	out := make([][]string, len(res.Rows))
	for i := range res.Rows {
		cells := resultCells(&res.Rows[i])
		if res.Raw.FastestLap != nil {
			cells[len(cells)-2] = res.Raw.FastestLap[i]
		}
		if res.Raw.Qualifying != nil {
			cells[len(cells)-1] = res.Raw.Qualifying[i]
		}
		out[i] = append(cells, padExtra(res.Rows[i].Extra, len(res.ExtraColumns))...)
	}
	return writeTable(w, header, out)
}

func resultCells(r *model.Result) []string {
	return []string{
		formatInt(r.DriverID),
		r.DriverCode,
		r.ConstructorID,
		r.ConstructorName,
		formatInt(r.Season),
		r.RaceID,
		formatInt(r.Round),
		r.CircuitName,
		formatPosition(r.GridPosition),
		formatPosition(r.FinishPosition),
		r.Status,
		duration.Format(r.FastestLapSeconds),
		duration.Format(r.QualifyingSeconds),
	}
}

func padExtra(values []string, n int) []string {
	out := make([]string, n)
	copy(out, values)
	return out
}
