package features

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Windows holds the trailing window sizes, in races.
type Windows struct {
	Short int
	Long  int
}

// DefaultWindows returns the 5/22 race windows.
func DefaultWindows() Windows {
	return Windows{Short: 5, Long: 22}
}

// Validate rejects windows smaller than one race.
func (w Windows) Validate() error {
	if w.Short < 1 || w.Long < 1 {
		return fmt.Errorf("%w: short=%d long=%d", ErrInvalidWindow, w.Short, w.Long)
	}
	return nil
}

// bucket aggregates the observations of one race: the sum of the present
// values and how many there were. An empty bucket still occupies a race slot.
type bucket struct {
	sum float64
	n   int
}

func single(v float64) bucket {
	if math.IsNaN(v) {
		return bucket{}
	}
	return bucket{sum: v, n: 1}
}

func indicator(b bool) bucket {
	if b {
		return bucket{sum: 1, n: 1}
	}
	return bucket{sum: 0, n: 1}
}

// rolling is a fixed-size ring of per-race buckets. Callers read it before
// pushing the current race, so a value never sees its own race.
type rolling struct {
	buf    []bucket
	next   int
	filled int

	// scratch slices reused by mean
	xs []float64
	ws []float64
}

func newRolling(size int) *rolling {
	return &rolling{
		buf: make([]bucket, size),
		xs:  make([]float64, 0, size),
		ws:  make([]float64, 0, size),
	}
}

func (r *rolling) push(b bucket) {
	r.buf[r.next] = b
	r.next = (r.next + 1) % len(r.buf)
	if r.filled < len(r.buf) {
		r.filled++
	}
}

// mean is the observation-weighted mean over the window, NaN when empty.
func (r *rolling) mean() float64 {
	r.xs, r.ws = r.xs[:0], r.ws[:0]
	for _, b := range r.buf[:r.filled] {
		if b.n == 0 {
			continue
		}
		r.xs = append(r.xs, b.sum/float64(b.n))
		r.ws = append(r.ws, float64(b.n))
	}
	if len(r.xs) == 0 {
		return math.NaN()
	}
	return stat.Mean(r.xs, r.ws)
}

// total is the plain sum over the window; zero when empty.
func (r *rolling) total() float64 {
	var s float64
	for _, b := range r.buf[:r.filled] {
		s += b.sum
	}
	return s
}
