package table

import (
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/okian/podium/internal/domain/duration"
	"github.com/okian/podium/internal/domain/features"
	"github.com/okian/podium/internal/domain/model"
)

// FeatureHeader is the output header for a feature table with extra columns.
func FeatureHeader(extra []string) []string {
	header := make([]string, 0, len(model.ResultColumns)+len(extra)+len(model.FeatureColumns))
	header = append(header, model.ResultColumns...)
	header = append(header, extra...)
	return append(header, model.FeatureColumns...)
}

// WriteFeatures writes records in order: result columns, passthrough columns,
// then the engineered columns. Missing values are blank.
func WriteFeatures(w io.Writer, records []model.FeatureRecord, extra []string) error {
	rows := make([][]string, len(records))
	for i := range records {
		rec := &records[i]
		row := resultCells(&rec.Result)
		row = append(row, padExtra(rec.Extra, len(extra))...)
		rows[i] = append(row, featureCells(&rec.Features)...)
	}
	return writeTable(w, FeatureHeader(extra), rows)
}

func featureCells(f *model.Features) []string {
	values := f.Values()
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = duration.Format(v)
	}
	out[1] = strconv.Itoa(f.RecentDNFCountL5)
	return out
}

// ReadFeatures parses a feature table written by WriteFeatures. Every
// engineered column is required.
func ReadFeatures(r io.Reader) ([]model.FeatureRecord, []string, error) {
	f, err := readFrame(r, TableFeatures)
	if err != nil {
		return nil, nil, err
	}
	if len(f.header) == 0 {
		return nil, nil, nil
	}
	if err := f.require(model.FeatureColumns...); err != nil {
		return nil, nil, err
	}

	res, err := parseResults(f, knownColumns(model.ResultColumns, model.FeatureColumns))
	if err != nil {
		return nil, nil, err
	}
	fr := features.NewFrame(res.Rows, res.Raw)
	features.Normalize(fr)

	out := make([]model.FeatureRecord, len(res.Rows))
	for i := range res.Rows {
		values := make([]float64, len(model.FeatureColumns))
		for j, col := range model.FeatureColumns {
			v, err := parseFloat(f.cell(col, i))
			if err != nil {
				return nil, nil, fmt.Errorf("%w: %s row %d: %s: %w", ErrInvalidValue, f.table, i, col, err)
			}
			values[j] = v
		}
		if math.IsNaN(values[1]) {
			values[1] = 0
		}
		out[i].Result = res.Rows[i]
		out[i].SetValues(values)
	}
	return out, res.ExtraColumns, nil
}
