package dedupe

// Option applies a configuration option to the Set.
type Option func(*Set)

// WithMaxSize bounds the number of remembered ids. When full, the oldest
// id is forgotten first. A value <= 0 means unbounded.
func WithMaxSize(maxSize int) Option {
	return func(s *Set) {
		s.maxSize = maxSize
	}
}
