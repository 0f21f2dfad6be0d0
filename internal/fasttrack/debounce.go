package fasttrack

import (
	"strings"
	"sync"
	"time"

	"github.com/rivo/uniseg"
)

const (
	DefaultDebounce       = 300 * time.Millisecond
	DefaultMinQueryLength = 2
)

// Debouncer turns raw query updates into rate-limited searches.
//
// Queries shorter than the minimum length (counted in grapheme clusters)
// never reach the server: they clear results synchronously and cancel any
// pending timer. Longer queries restart a settling timer and only the value
// that survives a quiet window is dispatched.
//
// Every dispatch carries a generation number. Reset and every new dispatch
// advance the generation, and Accept rejects responses from older ones, so a
// slow response can never overwrite a newer one. In-flight requests are not
// cancelled; their results are just ignored.
type Debouncer struct {
	clock  Clock
	delay  time.Duration
	minLen int

	dispatch func(query string, generation uint64)
	clear    func()

	mu            sync.Mutex
	timer         Timer
	seq           uint64 // bumped by every Input; stale timer callbacks compare against it
	generation    uint64
	last          string
	hasDispatched bool
}

// NewDebouncer creates a debouncer. dispatch runs on the timer goroutine
// with the settled query; clear runs synchronously from Input when the query
// becomes too short. Either may be nil.
func NewDebouncer(clock Clock, delay time.Duration, minLen int, dispatch func(string, uint64), clear func()) *Debouncer {
	if clock == nil {
		clock = SystemClock()
	}
	if delay <= 0 {
		delay = DefaultDebounce
	}
	if minLen < 1 {
		minLen = DefaultMinQueryLength
	}
	return &Debouncer{
		clock:    clock,
		delay:    delay,
		minLen:   minLen,
		dispatch: dispatch,
		clear:    clear,
	}
}

// Input records a new value of the search box.
func (d *Debouncer) Input(query string) {
	query = strings.TrimSpace(query)

	d.mu.Lock()
	d.seq++
	seq := d.seq
	d.stopLocked()

	if !d.longEnough(query) {
		// Results are gone, so the next identical query must be sent again.
		d.hasDispatched = false
		d.last = ""
		d.generation++
		d.mu.Unlock()
		if d.clear != nil {
			d.clear()
		}
		return
	}

	d.timer = d.clock.AfterFunc(d.delay, func() { d.fire(seq, query) })
	d.mu.Unlock()
}

// Reset cancels any pending search, invalidates in-flight ones and forgets
// the last dispatched query.
func (d *Debouncer) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	d.stopLocked()
	d.generation++
	d.hasDispatched = false
	d.last = ""
}

// Accept reports whether a response for generation is still current.
func (d *Debouncer) Accept(generation uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return generation == d.generation
}

// Forget drops the memory of the last dispatched query if generation is
// still the newest, so settling on the same query again dispatches it. Used
// after a failed search.
func (d *Debouncer) Forget(generation uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if generation == d.generation {
		d.hasDispatched = false
		d.last = ""
	}
}

// Generation returns the newest generation.
func (d *Debouncer) Generation() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.generation
}

// Pending reports whether a timer is waiting to fire.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Stop cancels the pending timer without touching generations.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	d.stopLocked()
}

func (d *Debouncer) fire(seq uint64, query string) {
	d.mu.Lock()
	if seq != d.seq {
		// Superseded after the timer had already started firing.
		d.mu.Unlock()
		return
	}
	d.timer = nil
	if d.hasDispatched && d.last == query {
		d.mu.Unlock()
		return
	}
	d.generation++
	generation := d.generation
	d.last = query
	d.hasDispatched = true
	d.mu.Unlock()

	if d.dispatch != nil {
		d.dispatch(query, generation)
	}
}

func (d *Debouncer) stopLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) longEnough(query string) bool {
	return uniseg.GraphemeClusterCount(query) >= d.minLen
}
