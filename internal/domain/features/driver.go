package features

import (
	"math"
	"strings"
)

// driverState is the history of one driver while walking their races.
type driverState struct {
	finish    *rolling
	dnf       *rolling
	racecraft *rolling
	circuits  map[string]*rolling

	// expanding mean of classified finishes over all prior races
	finishSum float64
	finishN   int
}

func newDriverState(w Windows) *driverState {
	return &driverState{
		finish:    newRolling(w.Short),
		dnf:       newRolling(w.Short),
		racecraft: newRolling(w.Long),
		circuits:  make(map[string]*rolling),
	}
}

// DriverForm fills the per-driver features and the racecraft working column.
//
// track_specialization_index_L22 is the mean of the driver's classified
// finishes over their last Long prior visits to the circuit, minus their
// expanding mean finish over every prior race. NaN without a prior classified
// visit or with a blank circuit name.
func DriverForm(f *Frame, w Windows) error {
	if err := w.Validate(); err != nil {
		return err
	}

	var (
		state   *driverState
		current int
	)
	for n, i := range orderBy(f.Rows, byDriver) {
		r := &f.Rows[i]
		if n == 0 || r.DriverID != current {
			state = newDriverState(w)
			current = r.DriverID
		}

		finish := math.NaN()
		if r.Classified() {
			finish = float64(r.FinishPosition)
		}
		f.racecraft[i] = r.Racecraft()
		circuit := strings.TrimSpace(r.CircuitName)

		feat := &f.feats[i]
		feat.AvgFinishPositionL5 = state.finish.mean()
		feat.RecentDNFCountL5 = int(state.dnf.total())
		feat.AvgRacecraftScoreL22 = state.racecraft.mean()
		feat.TrackSpecializationIndexL22 = state.trackIndex(circuit)

		state.finish.push(single(finish))
		state.dnf.push(indicator(!r.Finished()))
		state.racecraft.push(single(f.racecraft[i]))
		if !math.IsNaN(finish) {
			state.finishSum += finish
			state.finishN++
		}
		if circuit != "" {
			cw, ok := state.circuits[circuit]
			if !ok {
				cw = newRolling(w.Long)
				state.circuits[circuit] = cw
			}
			cw.push(single(finish))
		}
	}
	return nil
}

func (s *driverState) trackIndex(circuit string) float64 {
	if circuit == "" || s.finishN == 0 {
		return math.NaN()
	}
	cw, ok := s.circuits[circuit]
	if !ok {
		return math.NaN()
	}
	// mean is NaN when every visit was unclassified
	return cw.mean() - s.finishSum/float64(s.finishN)
}
