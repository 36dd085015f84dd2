package config

import (
	"sync/atomic"
)

// Store publishes the live configuration. Readers take the current pointer
// once per frame and must treat it as read-only.
type Store struct {
	cur     atomic.Pointer[Config]
	version atomic.Uint64
}

// NewStore starts with cfg, which must already be valid.
func NewStore(cfg Config) *Store {
	s := &Store{}
	s.cur.Store(&cfg)
	return s
}

// Get returns the current configuration.
func (s *Store) Get() *Config {
	return s.cur.Load()
}

// Version increments on every successful Set.
func (s *Store) Version() uint64 {
	return s.version.Load()
}

// Set validates cfg and swaps it in.
func (s *Store) Set(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.cur.Store(&cfg)
	s.version.Add(1)
	return nil
}

// Update applies fn to a copy of the current configuration and stores the result.
func (s *Store) Update(fn func(*Config)) error {
	next := *s.Get()
	fn(&next)
	return s.Set(next)
}
