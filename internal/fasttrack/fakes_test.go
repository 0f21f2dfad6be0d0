package fasttrack

import (
	"context"
	"errors"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/billie-coop/fasttrack/internal/events"
	"github.com/billie-coop/fasttrack/internal/exeat"
)

// fakeClock fires timers synchronously from Advance.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	f       func()
	stopped bool
	fired   bool
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), f: f}
	c.timers = append(c.timers, t)
	return t
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

// Advance moves time forward and runs every timer that came due, in order.
func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired && !t.at.After(c.now) {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()

	sort.Slice(due, func(i, j int) bool { return due[i].at.Before(due[j].at) })
	for _, t := range due {
		t.f()
	}
}

// Active returns the number of timers that can still fire.
func (c *fakeClock) Active() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

type listCall struct {
	Mode exeat.Mode
	Page int
	Date string
}

type searchCall struct {
	Mode  exeat.Mode
	Query string
}

// fakeBackend records calls and serves canned responses.
type fakeBackend struct {
	mu sync.Mutex

	searchResults map[string][]exeat.Request
	searchErr     error
	listPages     map[int]exeat.Page
	listErr       error
	processed     func(ids []int64) []int64
	executeErr    error

	// executeGate, when set, blocks ExecuteBatch until it is closed.
	executeGate chan struct{}
	executing   chan struct{}

	SearchCalls  []searchCall
	ListCalls    []listCall
	ExecuteCalls [][]int64
	LastSearch   searchCall
	LastList     listCall
	LastExecute  []int64
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		searchResults: map[string][]exeat.Request{},
		listPages:     map[int]exeat.Page{},
	}
}

func (f *fakeBackend) ListEligible(_ context.Context, mode exeat.Mode, page int, date string) (exeat.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := listCall{Mode: mode, Page: page, Date: date}
	f.ListCalls = append(f.ListCalls, call)
	f.LastList = call
	if f.listErr != nil {
		return exeat.Page{}, f.listErr
	}
	p, ok := f.listPages[page]
	if !ok {
		return exeat.Page{Meta: exeat.PaginationMeta{CurrentPage: page, LastPage: 1, PerPage: 10}}, nil
	}
	return p, nil
}

func (f *fakeBackend) SearchEligible(_ context.Context, mode exeat.Mode, query string) ([]exeat.Request, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	call := searchCall{Mode: mode, Query: query}
	f.SearchCalls = append(f.SearchCalls, call)
	f.LastSearch = call
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return slices.Clone(f.searchResults[query]), nil
}

func (f *fakeBackend) ExecuteBatch(_ context.Context, ids []int64) ([]int64, error) {
	f.mu.Lock()
	f.ExecuteCalls = append(f.ExecuteCalls, slices.Clone(ids))
	f.LastExecute = slices.Clone(ids)
	gate, executing := f.executeGate, f.executing
	err, processed := f.executeErr, f.processed
	f.mu.Unlock()

	if executing != nil {
		close(executing)
	}
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	if processed == nil {
		return slices.Clone(ids), nil
	}
	return processed(ids), nil
}

func (f *fakeBackend) searchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.SearchCalls)
}

func (f *fakeBackend) listCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.ListCalls)
}

// fakeUserError mimics a backend error carrying a server message.
type fakeUserError struct{ msg string }

func (e fakeUserError) Error() string       { return "server error" }
func (e fakeUserError) UserMessage() string { return e.msg }

var errTransport = errors.New("dial tcp: connection refused")

func req(id int64, mode exeat.Mode) exeat.Request {
	return exeat.Request{
		ID:         id,
		Student:    exeat.Student{ID: id * 100, FName: "Student", LName: string(rune('A' + id%26)), MatricNo: "VUG/CSC/" + string(rune('0'+id%10))},
		Status:     "approved",
		ActionType: mode,
	}
}

// drain collects every event currently buffered on ch.
func drain(ch <-chan events.Event) []events.Event {
	var out []events.Event
	for {
		select {
		case ev := <-ch:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func types(evs []events.Event) []events.EventType {
	out := make([]events.EventType, len(evs))
	for i, ev := range evs {
		out[i] = ev.Type
	}
	return out
}

func findEvent(evs []events.Event, t events.EventType) (events.Event, bool) {
	for _, ev := range evs {
		if ev.Type == t {
			return ev, true
		}
	}
	return events.Event{}, false
}
