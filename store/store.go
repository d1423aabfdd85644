package store

import (
	"github.com/krisalay/artifact-cache/types"
)

/*
This file defines how entries are actually held in memory.

The store is the authoritative key → entry mapping. It is NOT synchronized:
the cache serializes every mutation under its own lock so that eviction,
sweeping, and lazy expiry all see one consistent mapping.
*/

// Store is the interface used by the cache to hold entries.
type Store interface {

	// Get retrieves an entry by key.
	Get(string) (*types.ArtifactEntry, bool)

	// Put inserts or replaces an entry.
	Put(*types.ArtifactEntry)

	// Delete removes an entry and returns it, if present.
	Delete(string) (*types.ArtifactEntry, bool)

	// Len returns how many entries are stored.
	Len() int

	// Bytes returns the sum of all resident payload sizes.
	Bytes() int64

	// Range calls fn for every entry until fn returns false.
	// fn must not mutate the store.
	Range(fn func(*types.ArtifactEntry) bool)

	// Reset drops every entry.
	Reset()
}

// mapStore is a plain map with running byte accounting.
type mapStore struct {
	data map[string]*types.ArtifactEntry

	// bytes tracks the payload total so MemoryUsage does not walk the map.
	bytes int64
}

// New returns an empty map-backed Store.
func New() Store {
	return &mapStore{data: make(map[string]*types.ArtifactEntry)}
}

func (s *mapStore) Get(key string) (*types.ArtifactEntry, bool) {
	ent, ok := s.data[key]
	return ent, ok
}

// Put replaces any previous entry for the same key and keeps the byte total exact.
func (s *mapStore) Put(ent *types.ArtifactEntry) {
	if old, ok := s.data[ent.Key]; ok {
		s.bytes -= old.Size()
	}
	s.data[ent.Key] = ent
	s.bytes += ent.Size()
}

func (s *mapStore) Delete(key string) (*types.ArtifactEntry, bool) {
	ent, ok := s.data[key]
	if !ok {
		return nil, false
	}
	delete(s.data, key)
	s.bytes -= ent.Size()
	return ent, true
}

func (s *mapStore) Len() int {
	return len(s.data)
}

func (s *mapStore) Bytes() int64 {
	return s.bytes
}

func (s *mapStore) Range(fn func(*types.ArtifactEntry) bool) {
	for _, ent := range s.data {
		if !fn(ent) {
			return
		}
	}
}

func (s *mapStore) Reset() {
	clear(s.data)
	s.bytes = 0
}
