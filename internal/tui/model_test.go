package tui

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/billie-coop/fasttrack/internal/events"
	"github.com/billie-coop/fasttrack/internal/exeat"
	"github.com/billie-coop/fasttrack/internal/fasttrack"
	"github.com/billie-coop/fasttrack/internal/tui/components/dialog"
	"github.com/billie-coop/fasttrack/internal/tui/components/status"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// manualClock keeps debounce timers until fire is called.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	f       func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (c *manualClock) Now() time.Time { return time.Date(2025, 3, 1, 8, 0, 0, 0, time.UTC) }

func (c *manualClock) AfterFunc(_ time.Duration, f func()) fasttrack.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{f: f}
	c.timers = append(c.timers, t)
	return t
}

// fire runs every live timer.
func (c *manualClock) fire() {
	c.mu.Lock()
	var due []*manualTimer
	for _, t := range c.timers {
		if !t.stopped {
			t.stopped = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

type fakeBackend struct {
	mu        sync.Mutex
	eligible  []exeat.Request
	reject    map[int64]bool
	LastQuery string
	LastDate  string
	LastIDs   []int64
}

func (b *fakeBackend) ListEligible(_ context.Context, mode exeat.Mode, page int, date string) (exeat.Page, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.LastDate = date
	var items []exeat.Request
	for _, r := range b.eligible {
		if r.ActionType == mode {
			items = append(items, r)
		}
	}
	return exeat.Page{
		Items: items,
		Meta:  exeat.PaginationMeta{CurrentPage: 1, LastPage: 1, Total: len(items), PerPage: 10},
	}, nil
}

func (b *fakeBackend) SearchEligible(_ context.Context, mode exeat.Mode, query string) ([]exeat.Request, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.LastQuery = query
	var out []exeat.Request
	for _, r := range b.eligible {
		if r.ActionType == mode {
			out = append(out, r)
		}
	}
	return out, nil
}

func (b *fakeBackend) ExecuteBatch(_ context.Context, ids []int64) ([]int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.LastIDs = ids
	var processed []int64
	for _, id := range ids {
		if !b.reject[id] {
			processed = append(processed, id)
		}
	}
	return processed, nil
}

func request(id int64, fname, lname string, mode exeat.Mode) exeat.Request {
	return exeat.Request{
		ID:            id,
		Student:       exeat.Student{ID: id + 100, FName: fname, LName: lname, MatricNo: "VUG/CSC/21/00" + string(rune('0'+id))},
		Category:      exeat.Category{ID: 1, Name: "Weekend"},
		Destination:   "Lagos",
		DepartureDate: "2025-03-01",
		ReturnDate:    "2025-03-03",
		Status:        "approved",
		ActionType:    mode,
	}
}

type harness struct {
	m       *Model
	backend *fakeBackend
	clock   *manualClock
	session *fasttrack.Session
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	backend := &fakeBackend{
		eligible: []exeat.Request{
			request(1, "Ada", "Obi", exeat.SignOut),
			request(2, "Tunde", "Bello", exeat.SignOut),
			request(3, "Chi", "Eze", exeat.SignIn),
		},
		reject: map[int64]bool{},
	}
	clock := &manualClock{}
	broker := events.NewBrokerWithBuffer(256)
	session := fasttrack.NewSession(backend, broker, fasttrack.WithClock(clock))
	t.Cleanup(session.Close)

	m := New(session, broker, WithOperator("Gate 1"))
	m.Init()
	m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	h := &harness{m: m, backend: backend, clock: clock, session: session}
	h.run(m.listCmd("load", session.LoadList))
	return h
}

// run executes cmd and feeds every message it produces within a short wait
// back into the model, following the commands those updates return, then
// applies any events the session published.
func (h *harness) run(cmd tea.Cmd) {
	h.runDepth(cmd, 3)
	h.pump()
}

func (h *harness) runDepth(cmd tea.Cmd, depth int) {
	if cmd == nil || depth == 0 {
		return
	}
	for _, msg := range quickMsgs(cmd) {
		_, next := h.m.Update(msg)
		h.runDepth(next, depth-1)
	}
}

// pump applies the events waiting on the model's subscription.
func (h *harness) pump() {
	for {
		select {
		case event := <-h.m.eventSub:
			h.m.handleEvent(event)
		default:
			return
		}
	}
}

func (h *harness) press(keys ...tea.KeyPressMsg) tea.Cmd {
	var last tea.Cmd
	for _, k := range keys {
		_, last = h.m.Update(k)
	}
	h.pump()
	return last
}

func (h *harness) typeText(s string) {
	for _, r := range s {
		h.press(tea.KeyPressMsg{Code: r, Text: string(r)})
	}
}

// quickMsgs runs the leaves of cmd concurrently and returns the messages
// that arrive within 100ms. Timers and the event listener never finish in
// time and are dropped.
func quickMsgs(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}

	out := make(chan tea.Msg, 64)
	var expand func(c tea.Cmd)
	expand = func(c tea.Cmd) {
		msg := c()
		if batch, ok := msg.(tea.BatchMsg); ok {
			for _, inner := range batch {
				if inner != nil {
					go expand(inner)
				}
			}
			return
		}
		if msg != nil {
			out <- msg
		}
	}
	go expand(cmd)

	var msgs []tea.Msg
	deadline := time.After(100 * time.Millisecond)
	for {
		select {
		case msg := <-out:
			msgs = append(msgs, msg)
		case <-deadline:
			return msgs
		}
	}
}

var (
	enterKey = tea.KeyPressMsg{Code: tea.KeyEnter}
	tabKey   = tea.KeyPressMsg{Code: tea.KeyTab}
	downKey  = tea.KeyPressMsg{Code: tea.KeyDown}
	escKey   = tea.KeyPressMsg{Code: tea.KeyEscape}
)

func ctrl(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Mod: tea.ModCtrl}
}

func TestInitialListLoad(t *testing.T) {
	h := newHarness(t)

	require.Len(t, h.m.rows, 2)
	assert.Equal(t, "Ada Obi", h.m.rows[0].Request.Student.Name())
	assert.True(t, h.m.rows[0].CanAdd)

	view := h.m.View()
	assert.Contains(t, view, "Eligible to Sign Out")
	assert.Contains(t, view, "Showing 1 to 2 of 2")
	assert.Contains(t, view, "Tunde Bello")
}

func TestTypingSearchesAfterDebounce(t *testing.T) {
	h := newHarness(t)

	h.typeText("ad")
	assert.Equal(t, "ad", h.m.search.Value())
	assert.Equal(t, "ad", h.session.Query())
	assert.Empty(t, h.backend.LastQuery, "nothing is sent before the timer fires")

	h.clock.fire()
	h.pump()
	assert.Equal(t, "ad", h.backend.LastQuery)
	assert.Len(t, h.m.results, 2)
}

func TestEnterQueuesResultAndResetsSearch(t *testing.T) {
	h := newHarness(t)
	h.typeText("tu")
	h.clock.fire()
	h.pump()

	h.press(downKey, enterKey)

	require.Len(t, h.m.queue, 1)
	assert.Equal(t, int64(2), h.m.queue[0].Request.ID)
	assert.Empty(t, h.m.search.Value())
	assert.Empty(t, h.m.results)
	assert.Equal(t, searchPane, h.m.focus)
	assert.True(t, h.m.rows[1].InQueue)
}

func TestListEnterAddsAndMarksRow(t *testing.T) {
	h := newHarness(t)
	h.press(tabKey, tabKey)
	require.Equal(t, listPane, h.m.focus)

	h.press(enterKey)
	require.Len(t, h.m.queue, 1)
	assert.Equal(t, int64(1), h.m.queue[0].Request.ID)

	// Adding the same row again is a duplicate.
	h.press(tabKey, tabKey, enterKey)
	assert.Len(t, h.m.queue, 1)
	msg, ok := h.m.statusBar.Message()
	require.True(t, ok)
	assert.Contains(t, msg.Content, "already in the queue")
}

func TestRemoveFromQueuePane(t *testing.T) {
	h := newHarness(t)
	h.session.Enqueue(h.backend.eligible[0])
	h.session.Enqueue(h.backend.eligible[1])
	h.pump()

	h.press(tabKey)
	require.Equal(t, queuePane, h.m.focus)
	h.press(downKey, tea.KeyPressMsg{Code: 'x', Text: "x"})

	require.Len(t, h.m.queue, 1)
	assert.Equal(t, int64(1), h.m.queue[0].Request.ID)
	assert.Empty(t, h.m.search.Value(), "x is not typed into the search box")
}

func TestCommitKeepsRejected(t *testing.T) {
	h := newHarness(t)
	h.backend.reject[2] = true
	h.session.Enqueue(h.backend.eligible[0])
	h.session.Enqueue(h.backend.eligible[1])
	h.pump()

	h.run(h.press(ctrl('e')))

	assert.Equal(t, []int64{1, 2}, h.backend.LastIDs)
	require.Len(t, h.m.queue, 1)
	assert.Equal(t, int64(2), h.m.queue[0].Request.ID)

	msg, ok := h.m.statusBar.Message()
	require.True(t, ok)
	assert.Equal(t, status.Warning, msg.Type)
	assert.Contains(t, msg.Content, "#2")
}

func TestCommitEmptyQueue(t *testing.T) {
	h := newHarness(t)
	h.press(ctrl('e'))

	msg, ok := h.m.statusBar.Message()
	require.True(t, ok)
	assert.Contains(t, msg.Content, "Queue is empty")
	assert.Nil(t, h.backend.LastIDs)
}

func TestModeSwitchDeclineThenAccept(t *testing.T) {
	h := newHarness(t)
	h.session.Enqueue(h.backend.eligible[0])
	h.pump()

	h.run(h.press(ctrl('s')))
	require.Equal(t, dialog.ModeSwitchDialogType, h.m.dialogManager.GetActiveDialog())
	assert.Contains(t, h.m.View(), "Switch to Sign In?")

	h.run(h.press(tea.KeyPressMsg{Code: 'n', Text: "n"}))
	assert.False(t, h.m.dialogManager.IsDialogOpen())
	assert.Equal(t, exeat.SignOut, h.session.Mode())
	assert.Len(t, h.m.queue, 1)
	_, pending := h.session.PendingMode()
	assert.False(t, pending)

	h.run(h.press(ctrl('s')))
	require.True(t, h.m.dialogManager.IsDialogOpen())
	h.run(h.press(tea.KeyPressMsg{Code: 'y', Text: "y"}))

	assert.Equal(t, exeat.SignIn, h.session.Mode())
	assert.Empty(t, h.m.queue)
	require.Len(t, h.m.rows, 1)
	assert.Equal(t, "Chi Eze", h.m.rows[0].Request.Student.Name())
	assert.Contains(t, h.m.search.Placeholder, "Sign In")
}

func TestModeSwitchWithEmptyQueueIsImmediate(t *testing.T) {
	h := newHarness(t)
	h.run(h.press(ctrl('s')))

	assert.False(t, h.m.dialogManager.IsDialogOpen())
	assert.Equal(t, exeat.SignIn, h.session.Mode())
}

func TestDateFilterDialog(t *testing.T) {
	h := newHarness(t)

	h.press(ctrl('d'))
	require.Equal(t, dialog.DateDialogType, h.m.dialogManager.GetActiveDialog())

	h.typeText("2025-03-01")
	assert.Empty(t, h.m.search.Value(), "dialog keys do not reach the search box")

	h.run(h.press(enterKey))
	assert.False(t, h.m.dialogManager.IsDialogOpen())
	assert.Equal(t, "2025-03-01", h.backend.LastDate)
	assert.Equal(t, "2025-03-01", h.session.Date())
	assert.Contains(t, h.m.listTitle(), "2025-03-01")
}

func TestInvalidDateShowsError(t *testing.T) {
	h := newHarness(t)
	h.press(ctrl('d'))
	h.typeText("March")
	h.run(h.press(enterKey))

	msg, ok := h.m.statusBar.Message()
	require.True(t, ok)
	assert.Equal(t, status.Error, msg.Type)
	assert.Empty(t, h.session.Date())
}

func TestQuestionMarkTypesWhileSearching(t *testing.T) {
	h := newHarness(t)
	h.typeText("a?")
	assert.Equal(t, "a?", h.m.search.Value())
	assert.False(t, h.m.dialogManager.IsDialogOpen())

	h.press(escKey)
	assert.Empty(t, h.m.search.Value())

	h.typeText("?")
	assert.Equal(t, dialog.HelpDialogType, h.m.dialogManager.GetActiveDialog())
}

func TestQuitAsksFirst(t *testing.T) {
	h := newHarness(t)
	cmd := h.press(ctrl('c'))
	assert.Equal(t, dialog.QuitDialogType, h.m.dialogManager.GetActiveDialog())
	assert.NotContains(t, quickMsgs(cmd), tea.QuitMsg{})

	cmd = h.press(ctrl('c'))
	assert.Contains(t, quickMsgs(cmd), tea.QuitMsg{})
}

func TestClearQueue(t *testing.T) {
	h := newHarness(t)
	h.press(ctrl('x'))
	msg, _ := h.m.statusBar.Message()
	assert.Contains(t, msg.Content, "already empty")

	h.session.Enqueue(h.backend.eligible[0])
	h.pump()
	h.press(ctrl('x'))
	assert.Empty(t, h.m.queue)
}

func TestWindow(t *testing.T) {
	assert.Equal(t, 0, window(0, 3, 5))
	assert.Equal(t, 0, window(4, 10, 5))
	assert.Equal(t, 1, window(5, 10, 5))
	assert.Equal(t, 5, window(9, 10, 5))
	assert.Equal(t, 0, window(3, 10, 0))
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 0, clamp(3, 0))
	assert.Equal(t, 0, clamp(-1, 4))
	assert.Equal(t, 3, clamp(7, 4))
	assert.Equal(t, 2, clamp(2, 4))
}
