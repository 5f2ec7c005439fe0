package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithMaxLimit caps TopN's n. Larger requests fail with ErrInvalidLimit.
func WithMaxLimit(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.maxLimit = n
		}
	}
}
