package fasttrack

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billie-coop/fasttrack/internal/events"
	"github.com/billie-coop/fasttrack/internal/exeat"
)

type sessionHarness struct {
	s       *Session
	backend *fakeBackend
	clock   *fakeClock
	events  <-chan events.Event
}

func newHarness(t *testing.T, opts ...Option) *sessionHarness {
	t.Helper()
	backend := newFakeBackend()
	clock := newFakeClock()
	broker := events.NewBrokerWithBuffer(256)
	sub := broker.Subscribe()

	opts = append([]Option{WithClock(clock)}, opts...)
	s := NewSession(backend, broker, opts...)
	t.Cleanup(s.Close)
	return &sessionHarness{s: s, backend: backend, clock: clock, events: sub}
}

func (h *sessionHarness) search(q string) {
	h.s.Input(q)
	h.clock.Advance(DefaultDebounce)
}

func TestSession_SearchFiltersQueued(t *testing.T) {
	h := newHarness(t)
	h.backend.searchResults["ada"] = []exeat.Request{req(1, exeat.SignOut), req(2, exeat.SignOut)}

	h.search("ada")
	assert.Equal(t, searchCall{Mode: exeat.SignOut, Query: "ada"}, h.backend.LastSearch)
	assert.Equal(t, []int64{1, 2}, exeat.IDs(h.s.Results()))

	ev, ok := findEvent(drain(h.events), events.SearchResultsEvent)
	require.True(t, ok)
	assert.Equal(t, "ada", ev.Payload.(events.SearchPayload).Query)

	// Removing a queued entry makes it reappear in the current results.
	h.s.queue.Add(req(1, exeat.SignOut))
	assert.Equal(t, []int64{2}, exeat.IDs(h.s.Results()))
	assert.True(t, h.s.Remove(1))
	assert.Equal(t, []int64{1, 2}, exeat.IDs(h.s.Results()))
}

func TestSession_ShortQueryClearsResultsWithoutRequest(t *testing.T) {
	h := newHarness(t)
	h.backend.searchResults["ada"] = []exeat.Request{req(1, exeat.SignOut)}
	h.search("ada")
	drain(h.events)

	h.s.Input("a")

	assert.Empty(t, h.s.Results())
	assert.Equal(t, 1, h.backend.searchCount())
	assert.Contains(t, types(drain(h.events)), events.SearchClearedEvent)
}

func TestSession_StaleSearchResponseDiscarded(t *testing.T) {
	h := newHarness(t)
	h.backend.searchResults["ab"] = []exeat.Request{req(1, exeat.SignOut)}
	h.backend.searchResults["abc"] = []exeat.Request{req(2, exeat.SignOut)}

	h.search("ab")
	staleGeneration := h.s.debouncer.Generation()
	h.search("abc")

	// The "ab" response arriving late must not replace "abc" results.
	h.s.runSearch("ab", staleGeneration)
	assert.Equal(t, []int64{2}, exeat.IDs(h.s.Results()))
}

func TestSession_SearchFailureYieldsEmptyResults(t *testing.T) {
	h := newHarness(t)
	h.backend.searchResults["ada"] = []exeat.Request{req(1, exeat.SignOut)}
	h.search("ada")

	h.backend.searchErr = errTransport
	h.search("adam")

	assert.Empty(t, h.s.Results())
	assert.False(t, h.s.Searching())
}

func TestSession_FailedSearchRetriedOnSameQuery(t *testing.T) {
	h := newHarness(t)
	h.backend.searchResults["ada"] = []exeat.Request{req(1, exeat.SignOut)}
	h.backend.searchErr = errTransport
	h.search("ada")
	require.Equal(t, 1, h.backend.searchCount())
	require.Empty(t, h.s.Results())

	h.backend.mu.Lock()
	h.backend.searchErr = nil
	h.backend.mu.Unlock()

	h.s.Input("adam")
	h.search("ada")

	assert.Equal(t, 2, h.backend.searchCount())
	assert.Equal(t, []int64{1}, exeat.IDs(h.s.Results()))
}

func TestSession_SuccessfulSearchNotRepeated(t *testing.T) {
	h := newHarness(t)
	h.backend.searchResults["ada"] = []exeat.Request{req(1, exeat.SignOut)}
	h.search("ada")

	h.s.Input("adam")
	h.search("ada")

	assert.Equal(t, 1, h.backend.searchCount())
	assert.Equal(t, []int64{1}, exeat.IDs(h.s.Results()))
}

func TestSession_EnqueueResetsSearch(t *testing.T) {
	h := newHarness(t)
	h.backend.searchResults["ada"] = []exeat.Request{req(1, exeat.SignOut), req(2, exeat.SignOut)}
	h.search("ada")
	drain(h.events)

	assert.Equal(t, Added, h.s.Enqueue(h.s.Results()[0]))

	assert.Empty(t, h.s.Query())
	assert.Empty(t, h.s.Results())
	got := types(drain(h.events))
	assert.Contains(t, got, events.QueueChangedEvent)
	assert.Contains(t, got, events.FocusSearchEvent)

	// Same query again is a fresh search after the reset.
	h.search("ada")
	assert.Equal(t, 2, h.backend.searchCount())
	assert.Equal(t, []int64{2}, exeat.IDs(h.s.Results()))
}

func TestSession_DoubleAdd(t *testing.T) {
	h := newHarness(t)
	r := req(7, exeat.SignOut)

	assert.Equal(t, Added, h.s.Enqueue(r))
	drain(h.events)
	assert.Equal(t, Duplicate, h.s.Enqueue(r))

	assert.Equal(t, 1, h.s.QueueLen())
	evs := drain(h.events)
	assert.NotContains(t, types(evs), events.QueueChangedEvent)
	ev, ok := findEvent(evs, events.StatusMessageEvent)
	require.True(t, ok)
	assert.Equal(t, events.StatusInfo, ev.Payload.(events.StatusMessagePayload).Level)
}

func TestSession_EnqueueFullAndWrongMode(t *testing.T) {
	h := newHarness(t, WithCapacity(1))

	assert.Equal(t, WrongMode, h.s.Enqueue(req(1, exeat.SignIn)))
	assert.Equal(t, Added, h.s.Enqueue(exeat.Request{ID: 2}), "missing action type is accepted")
	assert.Equal(t, Full, h.s.Enqueue(req(3, exeat.SignOut)))
	assert.Equal(t, []int64{2}, exeat.IDs(entriesRequests(h.s.Queue())))
}

func entriesRequests(entries []Entry) []exeat.Request {
	out := make([]exeat.Request, len(entries))
	for i, e := range entries {
		out[i] = e.Request
	}
	return out
}

func TestSession_ClearQueue(t *testing.T) {
	h := newHarness(t)
	h.s.Enqueue(req(1, exeat.SignOut))
	h.s.Enqueue(req(2, exeat.SignOut))

	h.s.ClearQueue()
	assert.Equal(t, 0, h.s.QueueLen())
}

func TestSession_ModeSwitchWithEmptyQueueApplies(t *testing.T) {
	h := newHarness(t)

	outcome, err := h.s.RequestModeSwitch(context.Background(), exeat.SignIn)
	require.NoError(t, err)

	assert.Equal(t, SwitchApplied, outcome)
	assert.Equal(t, exeat.SignIn, h.s.Mode())
	assert.Equal(t, listCall{Mode: exeat.SignIn, Page: 1}, h.backend.LastList)
	assert.Contains(t, types(drain(h.events)), events.ModeChangedEvent)
}

func TestSession_ModeSwitchSameModeIsNoop(t *testing.T) {
	h := newHarness(t)
	outcome, err := h.s.RequestModeSwitch(context.Background(), exeat.SignOut)
	require.NoError(t, err)
	assert.Equal(t, SwitchNoop, outcome)
	assert.Equal(t, 0, h.backend.listCount())
}

func TestSession_ModeSwitchDeclined(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	h.backend.searchResults["ada"] = []exeat.Request{req(2, exeat.SignOut)}
	h.s.Enqueue(req(1, exeat.SignOut))
	h.search("ada")
	require.NoError(t, h.s.SetDate(ctx, "2025-03-14"))
	drain(h.events)

	outcome, err := h.s.ToggleMode(ctx)
	require.NoError(t, err)
	assert.Equal(t, SwitchPending, outcome)

	ev, ok := findEvent(drain(h.events), events.ModeSwitchRequestedEvent)
	require.True(t, ok)
	assert.Equal(t, events.ModeSwitchPayload{From: exeat.SignOut, To: exeat.SignIn}, ev.Payload)

	h.s.DeclineModeSwitch()

	assert.Equal(t, exeat.SignOut, h.s.Mode())
	assert.Equal(t, []int64{1}, h.s.queue.IDs())
	assert.Equal(t, "ada", h.s.Query())
	assert.Equal(t, []int64{2}, exeat.IDs(h.s.Results()))
	assert.Equal(t, "2025-03-14", h.s.Date())
	_, pending := h.s.PendingMode()
	assert.False(t, pending)
}

func TestSession_ModeSwitchConfirmed(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	threePages(h.backend)
	h.backend.searchResults["ada"] = []exeat.Request{req(2, exeat.SignOut)}
	h.s.Enqueue(req(1, exeat.SignOut))
	h.search("ada")
	require.NoError(t, h.s.LoadList(ctx))
	require.NoError(t, h.s.SetPage(ctx, 2))
	require.NoError(t, h.s.SetDate(ctx, "2025-03-14"))
	drain(h.events)

	_, err := h.s.RequestModeSwitch(ctx, exeat.SignIn)
	require.NoError(t, err)
	require.NoError(t, h.s.ConfirmModeSwitch(ctx))

	assert.Equal(t, exeat.SignIn, h.s.Mode())
	assert.Equal(t, 0, h.s.QueueLen())
	assert.Empty(t, h.s.Query())
	assert.Empty(t, h.s.Results())
	assert.Equal(t, 1, h.s.Page())
	assert.Empty(t, h.s.Date())
	assert.Equal(t, listCall{Mode: exeat.SignIn, Page: 1}, h.backend.LastList)

	got := types(drain(h.events))
	assert.Contains(t, got, events.ModeChangedEvent)
	assert.Contains(t, got, events.FocusSearchEvent)
	assert.Contains(t, got, events.ListLoadedEvent)
}

func TestSession_CommitEmptyQueue(t *testing.T) {
	h := newHarness(t)
	_, err := h.s.Commit(context.Background())
	assert.ErrorIs(t, err, ErrEmptyQueue)
	assert.Empty(t, h.backend.ExecuteCalls)
}

func TestSession_CommitPartialSuccess(t *testing.T) {
	h := newHarness(t)
	h.backend.processed = func([]int64) []int64 { return []int64{1} }
	h.s.Enqueue(req(1, exeat.SignOut))
	h.s.Enqueue(req(2, exeat.SignOut))
	drain(h.events)

	res, err := h.s.Commit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, h.backend.LastExecute)
	assert.Equal(t, []int64{2}, res.Rejected)
	assert.Equal(t, []int64{2}, h.s.queue.IDs())
	assert.Equal(t, 1, h.backend.listCount(), "list refreshed after commit")

	evs := drain(h.events)
	completed, ok := findEvent(evs, events.BatchCompletedEvent)
	require.True(t, ok)
	notice := completed.Payload.(events.BatchPayload).Message
	assert.Contains(t, notice, "Successfully processed 1 student.")
	assert.Contains(t, notice, "#2")

	ts := types(evs)
	assert.Less(t, slices.Index(ts, events.BatchCompletedEvent), slices.Index(ts, events.ListLoadedEvent))
	status, ok := findEvent(evs, events.StatusMessageEvent)
	require.True(t, ok)
	assert.Equal(t, events.StatusWarning, status.Payload.(events.StatusMessagePayload).Level)
}

func TestSession_CommitSuccessDropsProcessedFromResults(t *testing.T) {
	h := newHarness(t)
	h.backend.searchResults["ada"] = []exeat.Request{req(1, exeat.SignOut), req(2, exeat.SignOut)}
	h.s.Enqueue(req(1, exeat.SignOut))
	h.search("ada")

	_, err := h.s.Commit(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, h.s.QueueLen())
	assert.Equal(t, []int64{2}, exeat.IDs(h.s.Results()))
}

func TestSession_CommitFailureKeepsQueue(t *testing.T) {
	h := newHarness(t)
	h.backend.executeErr = fakeUserError{msg: "Gate is closed."}
	h.s.Enqueue(req(1, exeat.SignOut))
	drain(h.events)

	_, err := h.s.Commit(context.Background())

	var batchErr *BatchError
	require.True(t, errors.As(err, &batchErr))
	assert.Equal(t, "Gate is closed.", batchErr.Reason)
	assert.Equal(t, []int64{1}, h.s.queue.IDs())
	assert.Equal(t, 0, h.backend.listCount(), "no refresh after a failed commit")

	evs := drain(h.events)
	failed, ok := findEvent(evs, events.BatchFailedEvent)
	require.True(t, ok)
	assert.Equal(t, "Gate is closed.", failed.Payload.(events.BatchPayload).Message)
}

func TestSession_ModeSwitchRefusedWhileCommitting(t *testing.T) {
	h := newHarness(t)
	h.backend.executeGate = make(chan struct{})
	h.backend.executing = make(chan struct{})
	h.s.Enqueue(req(1, exeat.SignOut))

	done := make(chan error, 1)
	go func() {
		_, err := h.s.Commit(context.Background())
		done <- err
	}()
	<-h.backend.executing

	_, err := h.s.ToggleMode(context.Background())
	assert.ErrorIs(t, err, ErrBatchInFlight)
	_, err = h.s.Commit(context.Background())
	assert.ErrorIs(t, err, ErrBatchInFlight)

	close(h.backend.executeGate)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("commit did not finish")
	}
}

func TestSession_ConcurrentCommitAnnouncesOneBatch(t *testing.T) {
	h := newHarness(t)
	h.backend.executeGate = make(chan struct{})
	h.backend.executing = make(chan struct{})
	h.s.Enqueue(req(1, exeat.SignOut))
	drain(h.events)

	done := make(chan error, 1)
	go func() {
		_, err := h.s.Commit(context.Background())
		done <- err
	}()
	<-h.backend.executing

	// The guard is already taken, so a second executor run must not announce.
	_, err := h.s.executor.Execute(context.Background())
	assert.ErrorIs(t, err, ErrBatchInFlight)

	close(h.backend.executeGate)
	require.NoError(t, <-done)

	started := 0
	for _, ev := range drain(h.events) {
		if ev.Type == events.BatchStartedEvent {
			started++
			assert.Equal(t, []int64{1}, ev.Payload.(events.BatchPayload).Submitted)
		}
	}
	assert.Equal(t, 1, started)
}

func TestSession_DateFilter(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	assert.ErrorIs(t, h.s.SetDate(ctx, "March 14"), ErrInvalidDate)
	assert.Equal(t, 0, h.backend.listCount())

	require.NoError(t, h.s.SetDate(ctx, " 2025-03-14 "))
	assert.Equal(t, listCall{Mode: exeat.SignOut, Page: 1, Date: "2025-03-14"}, h.backend.LastList)

	require.NoError(t, h.s.SetDate(ctx, ""))
	assert.Equal(t, listCall{Mode: exeat.SignOut, Page: 1}, h.backend.LastList)
	assert.Empty(t, h.s.Date())
}

func TestSession_ListFailurePublished(t *testing.T) {
	h := newHarness(t)
	h.backend.listErr = errTransport

	err := h.s.LoadList(context.Background())
	assert.ErrorIs(t, err, errTransport)

	ev, ok := findEvent(drain(h.events), events.ListLoadedEvent)
	require.True(t, ok)
	assert.ErrorIs(t, ev.Payload.(events.ListPayload).Err, errTransport)
	assert.Empty(t, h.s.Rows())
}
