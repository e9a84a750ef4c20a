package features

import (
	"github.com/okian/podium/internal/domain/duration"
	"github.com/okian/podium/internal/domain/model"
)

// NormalizeReport counts unparseable duration cells per column.
// Blank cells are missing but not failures.
type NormalizeReport struct {
	Failures map[string]int
}

// Total sums failures across columns.
func (r NormalizeReport) Total() int {
	var n int
	for _, v := range r.Failures {
		n += v
	}
	return n
}

// Normalize converts the raw duration text into seconds on Rows.
// It never fails; bad values become NaN and are counted.
func Normalize(f *Frame) NormalizeReport {
	report := NormalizeReport{Failures: map[string]int{}}

	if f.Raw.FastestLap != nil {
		secs, failed := duration.Column(f.Raw.FastestLap)
		for i := range f.Rows {
			f.Rows[i].FastestLapSeconds = secs[i]
		}
		report.Failures[model.ColFastestLap] = failed
	}
	if f.Raw.Qualifying != nil {
		secs, failed := duration.Column(f.Raw.Qualifying)
		for i := range f.Rows {
			f.Rows[i].QualifyingSeconds = secs[i]
		}
		report.Failures[model.ColQualifying] = failed
	}
	return report
}
