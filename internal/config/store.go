package config

import "sync/atomic"

// Store holds the live configuration. Readers get an immutable snapshot;
// updates install a modified copy, so a tick always sees one consistent
// config.
type Store struct {
	current atomic.Pointer[Config]
}

// NewStore creates a store seeded with cfg.
func NewStore(cfg *Config) *Store {
	s := &Store{}
	copied := *cfg
	s.current.Store(&copied)
	return s
}

// Get returns the current snapshot. Callers must not mutate it.
func (s *Store) Get() *Config {
	return s.current.Load()
}

// Update applies fn to a copy of the current config and installs the result.
func (s *Store) Update(fn func(*Config)) {
	for {
		old := s.current.Load()
		copied := *old
		fn(&copied)
		if s.current.CompareAndSwap(old, &copied) {
			return
		}
	}
}
