package dedupe

// Option applies a configuration option to the Set.
type Option func(*Set)

// WithCapacity pre-sizes the set for an expected number of keys.
func WithCapacity(n int) Option {
	return func(s *Set) {
		if n > 0 {
			s.seen = make(map[string]int, n)
		}
	}
}
