package table

import (
	"fmt"
	"io"
	"strconv"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/podium"
)

// ReadPredictions parses scored rows: driver_id, race_id and
// podium_probability, with optional driver_code and an outcome taken from
// is_podium or, failing that, finish_position.
func ReadPredictions(r io.Reader) ([]podium.Entry, error) {
	f, err := readFrame(r, TablePredictions)
	if err != nil {
		return nil, err
	}
	if len(f.header) == 0 {
		return nil, nil
	}
	if err := f.require(model.ColDriverID, model.ColRaceID, model.ColProbability); err != nil {
		return nil, err
	}

	out := make([]podium.Entry, f.rows)
	for i := range out {
		e := podium.Entry{
			DriverCode: f.text(model.ColDriverCode, i),
			RaceID:     f.text(model.ColRaceID, i),
			Actual:     podium.Unknown,
		}

		var ok bool
		if e.DriverID, ok = parseInt(f.cell(model.ColDriverID, i)); !ok {
			return nil, fmt.Errorf("%w: %s row %d: driver_id %q", ErrInvalidValue, f.table, i, f.cell(model.ColDriverID, i))
		}
		p, err := strconv.ParseFloat(f.cell(model.ColProbability, i), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %s row %d: %s: %w", ErrInvalidValue, f.table, i, model.ColProbability, err)
		}
		e.Probability = p

		switch {
		case f.has(model.ColIsPodium):
			if v, ok := parseInt(f.cell(model.ColIsPodium, i)); ok {
				e.Actual = v
			}
		case f.has(model.ColFinishPosition):
			if pos, ok := parseInt(f.cell(model.ColFinishPosition, i)); ok {
				e.Actual = 0
				if pos >= 1 && pos <= 3 {
					e.Actual = 1
				}
			} else {
				e.Actual = 0
			}
		}
		out[i] = e
	}
	return out, nil
}

// SelectionHeader is the header written by WriteSelection.
var SelectionHeader = []string{"rank", model.ColDriverID, model.ColDriverCode, model.ColRaceID, model.ColProbability} //nolint:gochecknoglobals // fixed schema

// WriteSelection writes picked entries with their 1-based rank.
func WriteSelection(w io.Writer, picked []podium.Entry) error {
	rows := make([][]string, len(picked))
	for i, e := range picked {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			strconv.Itoa(e.DriverID),
			e.DriverCode,
			e.RaceID,
			strconv.FormatFloat(e.Probability, 'f', -1, 64),
		}
	}
	return writeTable(w, SelectionHeader, rows)
}
