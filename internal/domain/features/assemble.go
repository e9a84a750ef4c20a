package features

import (
	"math"

	"github.com/okian/podium/internal/domain/model"
)

// Assemble emits one record per input row, in input order. Working columns
// are not part of the output.
func Assemble(f *Frame) []model.FeatureRecord {
	out := make([]model.FeatureRecord, len(f.Rows))
	for i := range f.Rows {
		out[i] = model.FeatureRecord{Result: f.Rows[i], Features: f.feats[i]}
	}
	return out
}

// MissingCounts returns, per feature column, how many records have no value.
// Counts are never missing.
func MissingCounts(records []model.FeatureRecord) map[string]int {
	out := make(map[string]int, len(model.FeatureColumns))
	for i := range records {
		for j, v := range records[i].Values() {
			if math.IsNaN(v) {
				out[model.FeatureColumns[j]]++
			}
		}
	}
	return out
}

// Build runs every stage in order on rows. It is the sequential form of the
// stage graph.
func Build(rows []model.Result, raw RawDurations, w Windows) ([]model.FeatureRecord, NormalizeReport, error) {
	f := NewFrame(rows, raw)
	if err := Validate(f); err != nil {
		return nil, NormalizeReport{}, err
	}
	report := Normalize(f)
	if err := DriverForm(f, w); err != nil {
		return nil, report, err
	}
	if err := TeamPace(f, w); err != nil {
		return nil, report, err
	}
	RaceContext(f)
	return Assemble(f), report, nil
}
