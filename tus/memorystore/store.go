// Package memorystore provides the default, in-process implementation of
// tus.Cache: a mutex-guarded map. It carries no durability beyond the
// lifetime of the process; callers who need resume to survive a restart
// provide their own tus.Cache backed by a file or a KV service.
package memorystore

import (
	"sync"

	"github.com/tusclient/go-tus/tus"
)

// Store is a mutex-guarded, map-backed tus.Cache.
type Store struct {
	mu      sync.Mutex
	records map[string]tus.Record
}

// New creates an empty Store.
func New() *Store {
	return &Store{records: make(map[string]tus.Record)}
}

// Get returns the record for key, if any.
func (s *Store) Get(key string) (tus.Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[key]
	return rec, ok
}

// Put stores record under key, replacing any prior record.
func (s *Store) Put(key string, record tus.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[key] = record
}

// Delete removes the record for key, if present.
func (s *Store) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, key)
}
