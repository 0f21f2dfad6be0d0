package csync

import "sync"

// Log is an append-only, thread-safe sequence.
type Log[T any] struct {
	items []T
	mu    sync.RWMutex
}

// NewLog creates an empty log.
func NewLog[T any]() *Log[T] {
	return &Log[T]{}
}

// Append adds items to the end of the log.
func (l *Log[T]) Append(items ...T) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = append(l.items, items...)
}

// Len returns the number of items.
func (l *Log[T]) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.items)
}

// Items returns a copy of the log.
func (l *Log[T]) Items() []T {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]T, len(l.items))
	copy(out, l.items)
	return out
}
