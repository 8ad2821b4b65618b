// Package index provides the in-memory key directory for the kvs store:
// a concurrent map from key to the Locator describing where its latest
// record lives on disk. It embodies the Bitcask principle of keeping every
// key in memory while leaving the value itself on disk.
//
// Get is lock-free with respect to itself (RLock only) and never observes a
// torn Locator — Locator is a small value type, copied whole under the lock.
// A single RWMutex serializes Insert/Remove against each other and against
// Get; this is deliberately simpler than sharding, since the writer already
// serializes all mutations through its own mutex before they ever reach the
// index.
package index

import (
	"sync"

	"github.com/iamNilotpal/kvs/internal/segio"
)

// Entry pairs a key with its locator, returned by Snapshot for compaction.
type Entry struct {
	Key     string
	Locator segio.Locator
}

// Index is the concurrent key -> Locator map.
type Index struct {
	mu sync.RWMutex
	m  map[string]segio.Locator
}

// New creates an empty Index, pre-sized for a moderate key count to cut
// down on early map growth.
func New() *Index {
	return &Index{m: make(map[string]segio.Locator, 1024)}
}

// Get returns the locator for key, if any.
func (idx *Index) Get(key string) (segio.Locator, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	loc, ok := idx.m[key]
	return loc, ok
}

// Insert sets key's locator to loc, returning whatever locator it displaced
// so the caller can account its length as newly stale.
func (idx *Index) Insert(key string, loc segio.Locator) (prev segio.Locator, hadPrev bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	prev, hadPrev = idx.m[key]
	idx.m[key] = loc
	return prev, hadPrev
}

// Remove deletes key's entry, if present, returning the locator it removed.
func (idx *Index) Remove(key string) (prev segio.Locator, hadPrev bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	prev, hadPrev = idx.m[key]
	if hadPrev {
		delete(idx.m, key)
	}
	return prev, hadPrev
}

// Contains reports whether key has a live entry.
func (idx *Index) Contains(key string) bool {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.m[key]
	return ok
}

// Len returns the number of live keys.
func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.m)
}

// Snapshot copies every live entry under a single read lock and returns it.
// Compaction iterates this copy rather than the live map, so it never holds
// the index lock while doing disk I/O — matching the protocol's requirement
// that "get" never blocks on compaction's progress.
func (idx *Index) Snapshot() []Entry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	entries := make([]Entry, 0, len(idx.m))
	for key, loc := range idx.m {
		entries = append(entries, Entry{Key: key, Locator: loc})
	}
	return entries
}
