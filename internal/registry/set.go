// Package registry provides the concurrent collections backing the fleet
// manager: a multiset supporting removal of individual entries while another
// goroutine iterates a snapshot, and an append-only index.
package registry

import (
	"sync"
	"sync/atomic"
)

// Key identifies one entry of a Set. Adding the same value twice yields two
// distinct keys.
type Key uint64

// Entry is a value stored in a Set together with its key.
type Entry[T any] struct {
	Key   Key
	Value T
}

// Set is a thread-safe multiset. The zero value is not usable; call NewSet.
type Set[T any] struct {
	mu      sync.RWMutex
	entries map[Key]T
	next    atomic.Uint64
}

// NewSet returns an empty Set.
func NewSet[T any]() *Set[T] {
	return &Set[T]{entries: make(map[Key]T)}
}

// Add inserts v and returns the key of the new entry.
func (s *Set[T]) Add(v T) Key {
	k := Key(s.next.Add(1))
	s.mu.Lock()
	s.entries[k] = v
	s.mu.Unlock()
	return k
}

// Remove deletes the entry identified by k. It reports whether the entry was
// present; removing an entry twice is a no-op.
func (s *Set[T]) Remove(k Key) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.entries[k]; !ok {
		return false
	}
	delete(s.entries, k)
	return true
}

// Contains reports whether the entry identified by k is present.
func (s *Set[T]) Contains(k Key) bool {
	s.mu.RLock()
	_, ok := s.entries[k]
	s.mu.RUnlock()
	return ok
}

// Snapshot copies the current entries. The returned slice is owned by the
// caller and is unaffected by later Add or Remove calls.
func (s *Set[T]) Snapshot() []Entry[T] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Entry[T], 0, len(s.entries))
	for k, v := range s.entries {
		out = append(out, Entry[T]{Key: k, Value: v})
	}
	return out
}

// Values copies the current values.
func (s *Set[T]) Values() []T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]T, 0, len(s.entries))
	for _, v := range s.entries {
		out = append(out, v)
	}
	return out
}

// Len returns the number of entries.
func (s *Set[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
