package registry

import "sync"

// Index is a thread-safe append-only map. Existing keys are never
// overwritten.
type Index[K comparable, V any] struct {
	mu   sync.RWMutex
	data map[K]V
}

// NewIndex returns an empty Index.
func NewIndex[K comparable, V any]() *Index[K, V] {
	return &Index[K, V]{data: make(map[K]V)}
}

// Put stores v under k. It returns false and leaves the index unchanged if
// k is already present.
func (i *Index[K, V]) Put(k K, v V) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	if _, ok := i.data[k]; ok {
		return false
	}
	i.data[k] = v
	return true
}

// Get returns the value stored under k.
func (i *Index[K, V]) Get(k K) (V, bool) {
	i.mu.RLock()
	v, ok := i.data[k]
	i.mu.RUnlock()
	return v, ok
}

// Keys copies the current keys.
func (i *Index[K, V]) Keys() []K {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]K, 0, len(i.data))
	for k := range i.data {
		out = append(out, k)
	}
	return out
}

// Values copies the current values.
func (i *Index[K, V]) Values() []V {
	i.mu.RLock()
	defer i.mu.RUnlock()
	out := make([]V, 0, len(i.data))
	for _, v := range i.data {
		out = append(out, v)
	}
	return out
}

// Len returns the number of entries.
func (i *Index[K, V]) Len() int {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return len(i.data)
}
