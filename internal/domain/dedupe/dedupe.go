// Package dedupe guards composite-key uniqueness across a table.
package dedupe

import "strings"

// keySeparator cannot appear in ids read from text tables.
const keySeparator = "\x1f"

// Key joins key parts into one lookup key.
func Key(parts ...string) string {
	return strings.Join(parts, keySeparator)
}

// Set records keys together with the row that first used them.
type Set struct {
	seen map[string]int
}

// New creates an empty Set.
func New(opts ...Option) *Set {
	s := &Set{}
	for _, opt := range opts {
		opt(s)
	}
	if s.seen == nil {
		s.seen = make(map[string]int)
	}
	return s
}

// SeenAndRecord records key for row unless it was seen before.
// When seen is true, first is the row that recorded key originally.
func (s *Set) SeenAndRecord(key string, row int) (first int, seen bool) {
	if prev, ok := s.seen[key]; ok {
		return prev, true
	}
	s.seen[key] = row
	return row, false
}
