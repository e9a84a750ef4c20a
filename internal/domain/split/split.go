// Package split turns a feature table into chronological model datasets.
package split

import (
	"fmt"
	"math"
	"sort"

	"github.com/okian/podium/internal/domain/encoding"
	"github.com/okian/podium/internal/domain/model"
)

// CircuitPrefix prefixes the one-hot circuit columns.
const CircuitPrefix = model.ColCircuitName

// Boundaries are row offsets into the chronologically sorted table:
// [0, Train) trains, [Train, Validation) validates, the rest tests.
type Boundaries struct {
	Train      int
	Validation int
}

// Validate rejects negative or reversed boundaries.
func (b Boundaries) Validate() error {
	if b.Train < 0 || b.Validation < b.Train {
		return fmt.Errorf("%w: train=%d validation=%d", ErrInvalidSplit, b.Train, b.Validation)
	}
	return nil
}

// Part is one slice of the dataset.
type Part struct {
	Records []model.FeatureRecord
	X       [][]float64
	Y       []int
}

// Len returns the number of rows in the part.
func (p *Part) Len() int {
	return len(p.Records)
}

// Dataset is the encoded train/validation/test split.
type Dataset struct {
	Columns    []string
	Encoder    *encoding.OneHot
	Train      Part
	Validation Part
	Test       Part
}

// Columns lists the model input columns for an encoder: the engineered
// features, grid position, then one column per known circuit.
func Columns(enc *encoding.OneHot) []string {
	cols := make([]string, 0, len(model.FeatureColumns)+1+enc.Len())
	cols = append(cols, model.FeatureColumns...)
	cols = append(cols, model.ColGridPosition)
	return append(cols, enc.Names(CircuitPrefix)...)
}

// Vector encodes one record in Columns order. A zero grid position is missing.
func Vector(rec *model.FeatureRecord, enc *encoding.OneHot) []float64 {
	v := rec.Values()
	grid := math.NaN()
	if rec.GridPosition > 0 {
		grid = float64(rec.GridPosition)
	}
	v = append(v, grid)
	return append(v, enc.Transform(rec.CircuitName)...)
}

// Target is 1 for a podium finish.
func Target(rec *model.FeatureRecord) int {
	if rec.IsPodium() {
		return 1
	}
	return 0
}

// Prepare sorts records by (season, round), cuts them at b, fits the circuit
// encoder on the train part only and encodes every part with it.
// Boundaries past the end of the table are clamped.
func Prepare(records []model.FeatureRecord, b Boundaries) (*Dataset, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].Season <= 0 || records[i].Round < 1 {
			return nil, fmt.Errorf("%w: row %d: season %d round %d",
				ErrUnordered, i, records[i].Season, records[i].Round)
		}
	}

	sorted := make([]model.FeatureRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Key().Less(sorted[j].Key())
	})

	n := len(sorted)
	trainEnd := min(b.Train, n)
	valEnd := min(b.Validation, n)

	circuits := make([]string, 0, trainEnd)
	for i := range sorted[:trainEnd] {
		circuits = append(circuits, sorted[i].CircuitName)
	}
	enc := encoding.Fit(circuits)

	return &Dataset{
		Columns:    Columns(enc),
		Encoder:    enc,
		Train:      encode(sorted[:trainEnd], enc),
		Validation: encode(sorted[trainEnd:valEnd], enc),
		Test:       encode(sorted[valEnd:], enc),
	}, nil
}

func encode(records []model.FeatureRecord, enc *encoding.OneHot) Part {
	p := Part{
		Records: records,
		X:       make([][]float64, len(records)),
		Y:       make([]int, len(records)),
	}
	for i := range records {
		p.X[i] = Vector(&records[i], enc)
		p.Y[i] = Target(&records[i])
	}
	return p
}
