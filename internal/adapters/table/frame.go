// Package table reads and writes the pipeline's CSV tables.
//
// Headers are matched case-insensitively and common spellings are accepted
// (Driver_ID, DriverNumber, Constructor, Fastest_Lap_Time, Qualifying_Time...).
// Columns the pipeline does not know are carried through unchanged.
package table

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"

	"github.com/okian/podium/internal/domain/duration"
	"github.com/okian/podium/internal/domain/model"
)

// aliases maps normalized header spellings to canonical column names.
var aliases = map[string]string{ //nolint:gochecknoglobals // read-only lookup
	"driver_id":                    model.ColDriverID,
	"drivernumber":                 model.ColDriverID,
	"driver_number":                model.ColDriverID,
	"driver_code":                  model.ColDriverCode,
	"driver":                       model.ColDriverCode,
	"abbreviation":                 model.ColDriverCode,
	"constructor_id":               model.ColConstructorID,
	"teamid":                       model.ColConstructorID,
	"team_id":                      model.ColConstructorID,
	"constructor_name":             model.ColConstructorName,
	"constructor":                  model.ColConstructorName,
	"teamname":                     model.ColConstructorName,
	"team_name":                    model.ColConstructorName,
	"season":                       model.ColSeason,
	"year":                         model.ColSeason,
	"race_id":                      model.ColRaceID,
	"round":                        model.ColRound,
	"circuit_name":                 model.ColCircuitName,
	"circuit":                      model.ColCircuitName,
	"grid_position":                model.ColGridPosition,
	"grid":                         model.ColGridPosition,
	"finish_position":              model.ColFinishPosition,
	"position":                     model.ColFinishPosition,
	"status":                       model.ColStatus,
	"fastest_lap_duration_seconds": model.ColFastestLap,
	"fastest_lap_time":             model.ColFastestLap,
	"fastest_lap":                  model.ColFastestLap,
	"qualifying_duration_seconds":  model.ColQualifying,
	"qualifying_time":              model.ColQualifying,
	"is_podium":                    model.ColIsPodium,
	"podium_probability":           model.ColProbability,
	"win_probability":              model.ColProbability,
	"predicted_podium_prob":        model.ColProbability,
}

func canonical(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	h = strings.NewReplacer(" ", "_", "-", "_").Replace(h)
	if c, ok := aliases[h]; ok {
		return c
	}
	for _, c := range model.FeatureColumns {
		if strings.EqualFold(c, h) {
			return c
		}
	}
	return h
}

// frame is a string-typed view of a CSV table keyed by canonical column.
type frame struct {
	table  string
	header []string
	names  []string
	cols   map[string][]string
	rows   int
}

// readFrame loads a CSV table. Input without a header is an empty table.
func readFrame(r io.Reader, table string) (*frame, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, table, err)
	}
	f := &frame{table: table, cols: map[string][]string{}}

	cr := csv.NewReader(bytes.NewReader(data))
	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, table, err)
	}
	f.setHeader(header)
	if _, err := cr.Read(); errors.Is(err, io.EOF) {
		for _, n := range f.names {
			f.cols[n] = nil
		}
		return f, nil
	}

	df := dataframe.ReadCSV(bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrMalformed, table, df.Err)
	}

	records := df.Records()
	f.rows = len(records) - 1
	for i, name := range f.names {
		if _, dup := f.cols[name]; dup {
			continue
		}
		values := make([]string, f.rows)
		for r := range values {
			values[r] = records[r+1][i]
		}
		f.cols[name] = values
	}
	return f, nil
}

// setHeader maps header cells to canonical names. A repeated canonical name
// is kept under its original header so it passes through as an extra column.
func (f *frame) setHeader(header []string) {
	f.header = header
	f.names = make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		n := canonical(h)
		if seen[n] {
			n = h
		}
		seen[n] = true
		f.names[i] = n
	}
}

// extras returns the original headers of columns outside known.
func (f *frame) extras(known map[string]bool) []string {
	var out []string
	for i, n := range f.names {
		if !known[n] {
			out = append(out, f.header[i])
		}
	}
	return out
}

// extraValues returns row's cells for the extra columns.
func (f *frame) extraValues(extras []string, row int) []string {
	if len(extras) == 0 {
		return nil
	}
	out := make([]string, len(extras))
	for i, h := range extras {
		out[i] = f.cells(h)[row]
	}
	return out
}

// cells returns a column by canonical name, or by original header for extras.
func (f *frame) cells(col string) []string {
	if v, ok := f.cols[col]; ok {
		return v
	}
	for i, h := range f.header {
		if h == col {
			return f.cols[f.names[i]]
		}
	}
	return nil
}

func (f *frame) has(col string) bool {
	_, ok := f.cols[col]
	return ok
}

// require fails with a ColumnError for the first absent column.
func (f *frame) require(cols ...string) error {
	for _, c := range cols {
		if !f.has(c) {
			return &ColumnError{Table: f.table, Column: c}
		}
	}
	return nil
}

// cell returns the trimmed value or "" when the column is absent.
func (f *frame) cell(col string, row int) string {
	v, ok := f.cols[col]
	if !ok {
		return ""
	}
	return strings.TrimSpace(v[row])
}

// text is cell with missing-value spellings mapped to "".
func (f *frame) text(col string, row int) string {
	v := f.cell(col, row)
	if duration.IsBlank(v) {
		return ""
	}
	return v
}

// parseInt accepts "7" and integral floats such as "7.0". Blank is not ok.
func parseInt(s string) (int, bool) {
	if duration.IsBlank(s) {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != math.Trunc(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return int(v), true
}

// parseFloat returns NaN for blank cells.
func parseFloat(s string) (float64, error) {
	if duration.IsBlank(s) {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

func formatInt(n int) string {
	return strconv.Itoa(n)
}

// formatPosition renders unknown positions as blank.
func formatPosition(n int) string {
	if n <= 0 {
		return ""
	}
	return strconv.Itoa(n)
}

// writeTable writes header and rows as CSV.
func writeTable(w io.Writer, header []string, rows [][]string) error {
	if len(rows) == 0 {
		cw := csv.NewWriter(w)
		if err := cw.Write(header); err != nil {
			return err
		}
		cw.Flush()
		return cw.Error()
	}

	records := make([][]string, 0, len(rows)+1)
	records = append(records, header)
	records = append(records, rows...)
	df := dataframe.LoadRecords(records,
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.NaNValues(nil),
	)
	if df.Err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, df.Err)
	}
	return df.WriteCSV(w)
}
