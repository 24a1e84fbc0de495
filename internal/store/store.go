// Package store keeps the most recent successful snapshot per location so
// callers can keep serving last-known-good data when a poll fails.
package store

import (
	"sync"
	"time"

	"github.com/zanaca/ha-inmet-weather/internal/models"
)

type entry struct {
	snapshot  models.Snapshot
	updatedAt time.Time
}

// Store is an in-memory latest-snapshot store. Snapshots are overwritten, not
// merged; a failed poll leaves the previous snapshot untouched.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// New creates an empty store.
func New() *Store {
	return &Store{
		entries: make(map[string]entry),
	}
}

// Update replaces the stored snapshot for a location.
func (s *Store) Update(location string, snap models.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[location] = entry{snapshot: snap, updatedAt: time.Now()}
}

// Latest returns the last stored snapshot for a location, the time it was
// stored, and whether one exists.
func (s *Store) Latest(location string) (models.Snapshot, time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[location]
	return e.snapshot, e.updatedAt, ok
}

// Locations returns the locations with a stored snapshot.
func (s *Store) Locations() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.entries))
	for loc := range s.entries {
		out = append(out, loc)
	}
	return out
}
