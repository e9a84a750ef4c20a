package features

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/okian/podium/internal/domain/model"
)

// RaceContext fills qualifying_gap_to_pole: the row's qualifying time minus
// the fastest qualifying time of its race. Rows without a time stay NaN; a
// race where nobody has a time has no pole.
func RaceContext(f *Frame) {
	times := make(map[model.RaceKey][]float64)
	for i := range f.Rows {
		r := &f.Rows[i]
		if !math.IsNaN(r.QualifyingSeconds) {
			times[r.Key()] = append(times[r.Key()], r.QualifyingSeconds)
		}
	}

	pole := make(map[model.RaceKey]float64, len(times))
	for k, ts := range times {
		pole[k] = floats.Min(ts)
	}

	for i := range f.Rows {
		r := &f.Rows[i]
		p, ok := pole[r.Key()]
		if !ok {
			f.feats[i].QualifyingGapToPole = math.NaN()
			continue
		}
		f.feats[i].QualifyingGapToPole = r.QualifyingSeconds - p
	}
}
