package csync

import (
	"cmp"
	"slices"
	"sync"
)

// Map is a thread-safe map.
type Map[K cmp.Ordered, V any] struct {
	data map[K]V
	mu   sync.RWMutex
}

// NewMap creates an empty map.
func NewMap[K cmp.Ordered, V any]() *Map[K, V] {
	return &Map[K, V]{data: make(map[K]V)}
}

// Set stores value under key.
func (m *Map[K, V]) Set(key K, value V) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
}

// Get returns the value under key and whether it exists.
func (m *Map[K, V]) Get(key K) (V, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.data[key]
	return value, ok
}

// Delete removes key.
func (m *Map[K, V]) Delete(key K) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
}

// Len returns the number of entries.
func (m *Map[K, V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}

// Update replaces the value under key with the result of fn, atomically.
// fn receives the current value and whether it exists; it returns the new
// value and whether to store it. Update reports whether a value was stored.
func (m *Map[K, V]) Update(key K, fn func(current V, exists bool) (V, bool)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	current, exists := m.data[key]
	next, store := fn(current, exists)
	if store {
		m.data[key] = next
	}
	return store
}

// Sorted returns the values ordered by key.
func (m *Map[K, V]) Sorted() []V {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]K, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	slices.Sort(keys)

	values := make([]V, len(keys))
	for i, k := range keys {
		values[i] = m.data[k]
	}
	return values
}
