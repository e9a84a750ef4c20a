package features

import (
	"math"

	"github.com/okian/podium/internal/domain/dedupe"
	"github.com/okian/podium/internal/domain/model"
)

// TeamPace fills the per-constructor features and the team working columns.
//
// The team mean lap is taken over the constructor's drivers in the same race.
// The constructor windows advance one race at a time: every row of a race
// reads the window before any of that race's rows are folded in, so a
// teammate's result in the same race never leaks.
func TeamPace(f *Frame, w Windows) error {
	if err := w.Validate(); err != nil {
		return err
	}

	teamLaps := make(map[string]bucket)
	for i := range f.Rows {
		r := &f.Rows[i]
		k := dedupe.Key(r.Key().ID(), r.ConstructorID)
		b := teamLaps[k]
		if !math.IsNaN(r.FastestLapSeconds) {
			b.sum += r.FastestLapSeconds
			b.n++
		}
		teamLaps[k] = b
	}

	for i := range f.Rows {
		r := &f.Rows[i]
		if b := teamLaps[dedupe.Key(r.Key().ID(), r.ConstructorID)]; b.n > 0 {
			f.teamMeanLap[i] = b.sum / float64(b.n)
		}
		f.carPaceDelta[i] = r.FastestLapSeconds - f.teamMeanLap[i]
		f.reliability[i] = 0
		if r.Finished() {
			f.reliability[i] = 1
		}
	}

	order := orderBy(f.Rows, byConstructor)
	var (
		short, long, reliable *rolling
		constructor           string
	)
	for start := 0; start < len(order); {
		first := &f.Rows[order[start]]
		if start == 0 || first.ConstructorID != constructor {
			short = newRolling(w.Short)
			long = newRolling(w.Long)
			reliable = newRolling(w.Long)
			constructor = first.ConstructorID
		}

		end := raceBlockEnd(f.Rows, order, start)
		recent, avg, rate := short.mean(), long.mean(), reliable.mean()

		var pace, fin bucket
		for _, i := range order[start:end] {
			feat := &f.feats[i]
			feat.RecentCarPaceDeltaL5 = recent
			feat.TeamAvgPaceDeltaL22 = avg
			feat.OverallReliabilityRateL22 = rate

			if d := f.carPaceDelta[i]; !math.IsNaN(d) {
				pace.sum += d
				pace.n++
			}
			fin.sum += f.reliability[i]
			fin.n++
		}
		short.push(pace)
		long.push(pace)
		reliable.push(fin)
		start = end
	}
	return nil
}

// raceBlockEnd returns the end of the run of rows starting at start that
// share a constructor and race.
func raceBlockEnd(rows []model.Result, order []int, start int) int {
	head := &rows[order[start]]
	end := start + 1
	for end < len(order) {
		r := &rows[order[end]]
		if r.ConstructorID != head.ConstructorID || r.Key() != head.Key() {
			break
		}
		end++
	}
	return end
}
