// Package features derives leakage-free rolling features from race results.
//
// Every trailing window follows one policy: rows are sorted by group and
// (season, round), the feature value is read from the window before the
// current race is folded in, so a race never contributes to its own features.
// Empty history yields NaN for means and rates and zero for counts.
package features

import (
	"math"

	"github.com/okian/podium/internal/domain/model"
)

// RawDurations carries duration columns as read from text, aligned with Rows.
// A nil slice means the matching seconds field in Rows is already numeric.
type RawDurations struct {
	FastestLap []string
	Qualifying []string
}

// Frame is the working table shared by the stages. Working columns are
// indexed like Rows and dropped by Assemble.
type Frame struct {
	Rows []model.Result
	Raw  RawDurations

	feats        []model.Features
	racecraft    []float64
	teamMeanLap  []float64
	carPaceDelta []float64
	reliability  []float64
}

// NewFrame wraps rows without copying them.
func NewFrame(rows []model.Result, raw RawDurations) *Frame {
	n := len(rows)
	f := &Frame{
		Rows:         rows,
		Raw:          raw,
		feats:        make([]model.Features, n),
		racecraft:    nanSlice(n),
		teamMeanLap:  nanSlice(n),
		carPaceDelta: nanSlice(n),
		reliability:  nanSlice(n),
	}
	for i := range f.feats {
		f.feats[i] = model.MissingFeatures()
	}
	return f
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	return len(f.Rows)
}

// Features returns the features computed so far for row i.
func (f *Frame) Features(i int) model.Features {
	return f.feats[i]
}

// TeamMeanLap returns the per-race team mean fastest lap for row i.
func (f *Frame) TeamMeanLap(i int) float64 {
	return f.teamMeanLap[i]
}

// CarPaceDelta returns row i's fastest lap minus its team mean.
func (f *Frame) CarPaceDelta(i int) float64 {
	return f.carPaceDelta[i]
}

func nanSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.NaN()
	}
	return out
}
