// Package encoding maps categorical values to indicator vectors.
package encoding

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrDuplicateCategory is returned when a vocabulary lists a value twice.
var ErrDuplicateCategory = errors.New("duplicate category")

// OneHot is a frozen category -> position mapping. Values outside the
// vocabulary encode to the zero vector.
type OneHot struct {
	categories []string
	index      map[string]int
}

// Fit builds the vocabulary from values: sorted, unique, blanks ignored.
func Fit(values []string) *OneHot {
	uniq := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v != "" {
			uniq[v] = struct{}{}
		}
	}
	cats := make([]string, 0, len(uniq))
	for v := range uniq {
		cats = append(cats, v)
	}
	sort.Strings(cats)
	return newOneHot(cats)
}

// FromVocabulary restores an encoder from a persisted vocabulary, keeping its order.
func FromVocabulary(categories []string) (*OneHot, error) {
	seen := make(map[string]struct{}, len(categories))
	cats := make([]string, 0, len(categories))
	for _, c := range categories {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateCategory, c)
		}
		seen[c] = struct{}{}
		cats = append(cats, c)
	}
	return newOneHot(cats), nil
}

func newOneHot(cats []string) *OneHot {
	idx := make(map[string]int, len(cats))
	for i, c := range cats {
		idx[c] = i
	}
	return &OneHot{categories: cats, index: idx}
}

// Len returns the vector width.
func (o *OneHot) Len() int {
	return len(o.categories)
}

// Index returns the position of value, if known.
func (o *OneHot) Index(value string) (int, bool) {
	i, ok := o.index[strings.TrimSpace(value)]
	return i, ok
}

// Transform returns the indicator vector for value.
func (o *OneHot) Transform(value string) []float64 {
	out := make([]float64, len(o.categories))
	if i, ok := o.Index(value); ok {
		out[i] = 1
	}
	return out
}

// Names returns one column name per category, "<prefix>_<category>".
func (o *OneHot) Names(prefix string) []string {
	out := make([]string, len(o.categories))
	for i, c := range o.categories {
		out[i] = prefix + "_" + c
	}
	return out
}

// Vocabulary returns a copy of the categories in vector order.
func (o *OneHot) Vocabulary() []string {
	out := make([]string, len(o.categories))
	copy(out, o.categories)
	return out
}
