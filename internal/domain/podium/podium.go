// Package podium turns model probabilities into podium picks and scores them.
package podium

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"
)

// Unknown marks an entry whose race outcome is not known yet.
const Unknown = -1

// Entry is one driver's predicted podium probability for a race.
type Entry struct {
	DriverID    int
	DriverCode  string
	RaceID      string
	Probability float64
	// Actual is 1 for a podium, 0 otherwise, Unknown before the race.
	Actual int
}

// Policy controls Select.
type Policy struct {
	Threshold float64
	Size      int
}

// DefaultPolicy selects at 0.5 and falls back to the top three.
func DefaultPolicy() Policy {
	return Policy{Threshold: 0.5, Size: 3}
}

// rank orders by probability, highest first; ties by driver id.
func rank(entries []Entry) []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Probability != out[j].Probability {
			return out[i].Probability > out[j].Probability
		}
		return out[i].DriverID < out[j].DriverID
	})
	return out
}

// Select picks every entry at or above the threshold, most likely first.
// When nobody clears it, the Size most likely entries are picked instead.
func Select(entries []Entry, p Policy) ([]Entry, error) {
	if len(entries) == 0 {
		return nil, ErrNoEntries
	}
	ranked := rank(entries)

	var picked []Entry
	for _, e := range ranked {
		if e.Probability >= p.Threshold {
			picked = append(picked, e)
		}
	}
	if len(picked) > 0 {
		return picked, nil
	}
	return ranked[:min(p.Size, len(ranked))], nil
}

// Report summarizes how well probabilities predicted podiums.
type Report struct {
	Entries int
	Races   int
	ROCAUC  float64

	// PodiumHitRate is the share of actual podium finishers that were in
	// their race's top three by probability.
	PodiumHitRate float64
	PodiumHits    int
	Podiums       int

	// Classification at the threshold.
	TruePositives  int
	FalsePositives int
	TrueNegatives  int
	FalseNegatives int
}

// Precision is TP / (TP + FP), zero when nothing was predicted.
func (r Report) Precision() float64 {
	if r.TruePositives+r.FalsePositives == 0 {
		return 0
	}
	return float64(r.TruePositives) / float64(r.TruePositives+r.FalsePositives)
}

// Recall is TP / (TP + FN), zero when there were no podiums.
func (r Report) Recall() float64 {
	if r.TruePositives+r.FalseNegatives == 0 {
		return 0
	}
	return float64(r.TruePositives) / float64(r.TruePositives+r.FalseNegatives)
}

// Evaluate scores labelled entries. Races are grouped by RaceID.
func Evaluate(entries []Entry, p Policy) (Report, error) {
	if len(entries) == 0 {
		return Report{}, ErrNoEntries
	}

	rep := Report{Entries: len(entries)}
	races := make(map[string][]Entry)
	for _, e := range entries {
		if e.Actual != 0 && e.Actual != 1 {
			return Report{}, fmt.Errorf("%w: driver %d race %s", ErrUnlabelled, e.DriverID, e.RaceID)
		}
		races[e.RaceID] = append(races[e.RaceID], e)

		predicted := e.Probability >= p.Threshold
		switch {
		case predicted && e.Actual == 1:
			rep.TruePositives++
		case predicted:
			rep.FalsePositives++
		case e.Actual == 1:
			rep.FalseNegatives++
		default:
			rep.TrueNegatives++
		}
	}
	rep.Races = len(races)

	for _, group := range races {
		ranked := rank(group)
		for i, e := range ranked {
			if e.Actual != 1 {
				continue
			}
			rep.Podiums++
			if i < p.Size {
				rep.PodiumHits++
			}
		}
	}
	if rep.Podiums > 0 {
		rep.PodiumHitRate = float64(rep.PodiumHits) / float64(rep.Podiums)
	}

	auc, err := rocAUC(entries)
	if err != nil {
		return Report{}, err
	}
	rep.ROCAUC = auc
	return rep, nil
}

func rocAUC(entries []Entry) (float64, error) {
	scores := make([]float64, len(entries))
	classes := make([]bool, len(entries))
	var positives int
	for i, e := range entries {
		scores[i] = e.Probability
		classes[i] = e.Actual == 1
		if classes[i] {
			positives++
		}
	}
	if positives == 0 || positives == len(entries) {
		return 0, ErrSingleClass
	}

	stat.SortWeightedLabeled(scores, classes, nil)
	tpr, fpr, _ := stat.ROC(nil, scores, classes, nil)
	return integrate.Trapezoidal(fpr, tpr), nil
}
