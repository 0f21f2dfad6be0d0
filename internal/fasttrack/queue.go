package fasttrack

import (
	"slices"
	"sync"

	"github.com/billie-coop/fasttrack/internal/exeat"
)

// DefaultCapacity is the largest batch the gate accepts at once.
const DefaultCapacity = 10

// AddResult is the outcome of Queue.Add. Rejections are outcomes, not errors.
type AddResult int

const (
	Added AddResult = iota
	Duplicate
	Full
	// WrongMode is returned by Session.Enqueue for a request whose action
	// type belongs to the other mode.
	WrongMode
)

func (r AddResult) String() string {
	switch r {
	case Added:
		return "added"
	case Duplicate:
		return "duplicate"
	case Full:
		return "full"
	case WrongMode:
		return "wrong mode"
	default:
		return "unknown"
	}
}

// Entry is a queued request with its 1-based display rank.
type Entry struct {
	Rank    int
	Request exeat.Request
}

// Queue is the ordered, de-duplicated, size-bounded pending batch.
// It is the single source of truth for what Commit submits.
type Queue struct {
	items    []exeat.Request
	capacity int
	mu       sync.RWMutex
}

// NewQueue creates a queue holding at most capacity entries.
// A capacity below 1 falls back to DefaultCapacity.
func NewQueue(capacity int) *Queue {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &Queue{capacity: capacity}
}

// Add appends r unless its id is already queued or the queue is full.
// The duplicate check comes first, so re-adding a queued request to a full
// queue reports Duplicate.
func (q *Queue) Add(r exeat.Request) AddResult {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.indexLocked(r.ID) >= 0 {
		return Duplicate
	}
	if len(q.items) >= q.capacity {
		return Full
	}
	q.items = append(q.items, r)
	return Added
}

// Remove drops the entry with id and reports whether it was present.
func (q *Queue) Remove(id int64) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	i := q.indexLocked(id)
	if i < 0 {
		return false
	}
	q.items = slices.Delete(q.items, i, i+1)
	return true
}

// Clear empties the queue.
func (q *Queue) Clear() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = nil
}

// Retain keeps only entries whose id is in ids, preserving queue order.
// It returns the number of entries dropped.
func (q *Queue) Retain(ids []int64) int {
	keep := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		keep[id] = struct{}{}
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	before := len(q.items)
	q.items = slices.DeleteFunc(q.items, func(r exeat.Request) bool {
		_, ok := keep[r.ID]
		return !ok
	})
	return before - len(q.items)
}

// RemoveIDs drops every entry whose id is in ids and returns how many went.
func (q *Queue) RemoveIDs(ids []int64) int {
	drop := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	before := len(q.items)
	q.items = slices.DeleteFunc(q.items, func(r exeat.Request) bool {
		_, ok := drop[r.ID]
		return ok
	})
	return before - len(q.items)
}

// Snapshot returns an ordered copy of the queue with ranks filled in.
func (q *Queue) Snapshot() []Entry {
	q.mu.RLock()
	defer q.mu.RUnlock()

	entries := make([]Entry, len(q.items))
	for i, r := range q.items {
		entries[i] = Entry{Rank: i + 1, Request: r}
	}
	return entries
}

// IDs returns the queued ids in order. This is the commit payload.
func (q *Queue) IDs() []int64 {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return exeat.IDs(q.items)
}

func (q *Queue) Contains(id int64) bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return q.indexLocked(id) >= 0
}

func (q *Queue) Len() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.items)
}

func (q *Queue) IsFull() bool {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.items) >= q.capacity
}

func (q *Queue) Capacity() int {
	return q.capacity
}

func (q *Queue) indexLocked(id int64) int {
	return slices.IndexFunc(q.items, func(r exeat.Request) bool { return r.ID == id })
}
