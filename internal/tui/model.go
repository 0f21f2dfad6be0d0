// Package tui is the operator console: a Bubble Tea program that drives a
// fasttrack.Session and re-renders whenever the session announces a change.
package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/billie-coop/fasttrack/internal/events"
	"github.com/billie-coop/fasttrack/internal/exeat"
	"github.com/billie-coop/fasttrack/internal/fasttrack"
	"github.com/billie-coop/fasttrack/internal/gateapi"
	"github.com/billie-coop/fasttrack/internal/logging"
	"github.com/billie-coop/fasttrack/internal/tui/components/dialog"
	"github.com/billie-coop/fasttrack/internal/tui/components/status"
	"github.com/charmbracelet/bubbles/v2/help"
	"github.com/charmbracelet/bubbles/v2/key"
	"github.com/charmbracelet/bubbles/v2/spinner"
	"github.com/charmbracelet/bubbles/v2/textinput"
	tea "github.com/charmbracelet/bubbletea/v2"
)

type pane int

const (
	searchPane pane = iota
	queuePane
	listPane
	paneCount
)

func (p pane) String() string {
	switch p {
	case queuePane:
		return "queue"
	case listPane:
		return "list"
	default:
		return "search"
	}
}

// Option configures a Model.
type Option func(*Model)

// WithOperator sets the name shown in the status bar.
func WithOperator(name string) Option {
	return func(m *Model) { m.operator = name }
}

func WithLogger(log logging.Logger) Option {
	return func(m *Model) {
		if log != nil {
			m.log = log
		}
	}
}

// WithContext sets the context passed to every backend call.
func WithContext(ctx context.Context) Option {
	return func(m *Model) { m.ctx = ctx }
}

// Model is the console's root Bubble Tea model.
type Model struct {
	width  int
	height int

	// Components
	search        textinput.Model
	spinner       spinner.Model
	help          help.Model
	statusBar     *status.Component
	dialogManager *dialog.Manager
	keys          KeyMap

	// Event system
	eventBroker *events.Broker
	eventSub    <-chan events.Event

	session  *fasttrack.Session
	ctx      context.Context
	log      logging.Logger
	operator string

	// UI state, refreshed from the session on every event
	focus        pane
	results      []exeat.Request
	queue        []fasttrack.Entry
	rows         []fasttrack.Row
	resultCursor int
	queueCursor  int
	listCursor   int
}

// New creates the console for session. The model subscribes to every event
// on eventBroker.
func New(session *fasttrack.Session, eventBroker *events.Broker, opts ...Option) *Model {
	search := textinput.New()
	search.Placeholder = placeholder(session.Mode())
	search.Prompt = "Search: "
	search.CharLimit = 64

	m := &Model{
		search:        search,
		spinner:       spinner.New(spinner.WithSpinner(spinner.Dot)),
		help:          help.New(),
		statusBar:     status.New(),
		dialogManager: dialog.NewManager(),
		keys:          DefaultKeyMap(),
		eventBroker:   eventBroker,
		session:       session,
		ctx:           context.Background(),
		log:           logging.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}

	m.dialogManager.SetHelp(m.keys.helpSections())
	m.eventSub = eventBroker.Subscribe()
	return m
}

func placeholder(mode exeat.Mode) string {
	return fmt.Sprintf("name or matric no. to %s", mode.Label())
}

// Messages produced by commands

// opDoneMsg reports the end of a blocking session call.
type opDoneMsg struct {
	op  string
	err error
}

type modeSwitchDeclinedMsg struct{}

// Init focuses the search box and loads the first page of the eligible list.
func (m *Model) Init() tea.Cmd {
	welcome := fmt.Sprintf("Ready to %s. Type a name to search.", m.session.Mode().Label())
	return tea.Batch(
		m.dialogManager.Init(),
		m.search.Focus(),
		m.spinner.Tick,
		m.listenForEvents(),
		m.statusBar.ShowInfo(welcome),
		m.listCmd("load", m.session.LoadList),
	)
}

// Update handles all TUI updates and routes to components
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	if event, ok := msg.(events.Event); ok {
		cmd := m.handleEvent(event)
		return m, tea.Batch(cmd, m.listenForEvents())
	}

	if m.dialogManager.IsDialogOpen() {
		_, cmd := m.dialogManager.Update(msg)
		cmds = append(cmds, cmd)

		if _, ok := msg.(tea.KeyPressMsg); ok {
			return m, tea.Batch(cmds...)
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		cmds = append(cmds, m.statusBar.SetSize(m.width, 1))
		cmds = append(cmds, m.dialogManager.SetSize(m.width, m.height))

	case tea.KeyPressMsg:
		return m, m.handleKey(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case opDoneMsg:
		cmds = append(cmds, m.handleOpDone(msg))

	case dialog.DateChosenMsg:
		date := msg.Date
		cmds = append(cmds, m.listCmd("date", func(ctx context.Context) error {
			return m.session.SetDate(ctx, date)
		}))

	case modeSwitchDeclinedMsg:
		m.session.DeclineModeSwitch()
	}

	_, cmd := m.statusBar.Update(msg)
	cmds = append(cmds, cmd)

	if m.focus == searchPane {
		m.search, cmd = m.search.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func (m *Model) handleKey(msg tea.KeyPressMsg) tea.Cmd {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m.dialogManager.OpenDialog(dialog.QuitDialogType)

	case key.Matches(msg, m.keys.Help) && (m.focus != searchPane || m.search.Value() == ""):
		return m.dialogManager.OpenDialog(dialog.HelpDialogType)

	case key.Matches(msg, m.keys.NextPane):
		return m.setFocus((m.focus + 1) % paneCount)

	case key.Matches(msg, m.keys.PrevPane):
		return m.setFocus((m.focus + paneCount - 1) % paneCount)

	case key.Matches(msg, m.keys.Commit):
		return m.commit()

	case key.Matches(msg, m.keys.ToggleMode):
		return m.toggleMode()

	case key.Matches(msg, m.keys.DateFilter):
		m.dialogManager.SetDate(m.session.Date())
		return m.dialogManager.OpenDialog(dialog.DateDialogType)

	case key.Matches(msg, m.keys.Reload):
		return m.listCmd("load", m.session.LoadList)

	case key.Matches(msg, m.keys.Clear):
		if m.session.QueueLen() == 0 {
			return m.statusBar.ShowInfo("Queue is already empty.")
		}
		m.session.ClearQueue()
		return nil

	case msg.String() == "pgup", msg.String() == "pgdown":
		return m.page(msg.String() == "pgdown")

	case key.Matches(msg, m.keys.PageUp, m.keys.PageDown) && m.focus != searchPane:
		return m.page(key.Matches(msg, m.keys.PageDown))

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return nil

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return nil

	case key.Matches(msg, m.keys.Add):
		return m.addSelected()

	case key.Matches(msg, m.keys.Remove) && m.focus == queuePane:
		return m.removeSelected()

	case key.Matches(msg, m.keys.ClearInput) && m.focus == searchPane:
		if m.search.Value() != "" {
			m.search.SetValue("")
			m.session.Input("")
		}
		return nil
	}

	if m.focus != searchPane {
		return nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		m.session.Input(after)
	}
	return cmd
}

func (m *Model) setFocus(p pane) tea.Cmd {
	if m.focus == p {
		return nil
	}
	m.focus = p
	if p == searchPane {
		return m.search.Focus()
	}
	m.search.Blur()
	return nil
}

func (m *Model) moveCursor(delta int) {
	switch m.focus {
	case searchPane:
		m.resultCursor = clamp(m.resultCursor+delta, len(m.results))
	case queuePane:
		m.queueCursor = clamp(m.queueCursor+delta, len(m.queue))
	case listPane:
		m.listCursor = clamp(m.listCursor+delta, len(m.rows))
	}
}

func (m *Model) addSelected() tea.Cmd {
	var r exeat.Request
	switch m.focus {
	case searchPane:
		if len(m.results) == 0 {
			return nil
		}
		r = m.results[m.resultCursor]
	case listPane:
		if len(m.rows) == 0 {
			return nil
		}
		r = m.rows[m.listCursor].Request
	default:
		return nil
	}

	if m.session.Enqueue(r) == fasttrack.Added {
		m.log.Debug(m.ctx, "queued", "request_id", r.ID, "from", m.focus.String())
		m.search.SetValue("")
	}
	m.refresh()
	return nil
}

func (m *Model) removeSelected() tea.Cmd {
	if len(m.queue) == 0 {
		return nil
	}
	m.session.Remove(m.queue[m.queueCursor].Request.ID)
	m.refresh()
	return nil
}

// Blocking session calls run as commands so the update loop never waits on
// the network.

func (m *Model) commit() tea.Cmd {
	if m.session.QueueLen() == 0 {
		return m.statusBar.ShowInfo("Queue is empty. Add students first.")
	}
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		_, err := session.Commit(ctx)
		return opDoneMsg{op: "commit", err: err}
	}
}

func (m *Model) toggleMode() tea.Cmd {
	ctx, session := m.ctx, m.session
	return func() tea.Msg {
		_, err := session.ToggleMode(ctx)
		return opDoneMsg{op: "mode", err: err}
	}
}

func (m *Model) confirmModeSwitch() tea.Msg {
	return opDoneMsg{op: "mode", err: m.session.ConfirmModeSwitch(m.ctx)}
}

func (m *Model) page(next bool) tea.Cmd {
	if next {
		return m.listCmd("page", m.session.NextPage)
	}
	return m.listCmd("page", m.session.PrevPage)
}

func (m *Model) listCmd(op string, fn func(context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return opDoneMsg{op: op, err: fn(ctx)}
	}
}

func (m *Model) handleOpDone(msg opDoneMsg) tea.Cmd {
	m.refresh()
	err := msg.err
	if err == nil {
		return nil
	}

	var batchErr *fasttrack.BatchError
	switch {
	case errors.Is(err, context.Canceled):
		return nil
	case errors.As(err, &batchErr):
		// Already announced by the session.
		return nil
	case errors.Is(err, fasttrack.ErrEmptyQueue):
		return m.statusBar.ShowInfo("Queue is empty. Add students first.")
	case errors.Is(err, fasttrack.ErrBatchInFlight):
		return m.statusBar.ShowWarning("Wait for the current batch to finish.")
	case errors.Is(err, fasttrack.ErrInvalidDate):
		return m.statusBar.ShowError("Date must look like 2025-03-01.")
	}

	// List failures arrive as ListLoadedEvent; only log here.
	m.log.Warn(m.ctx, "console operation failed", "op", msg.op, "error", err)
	return nil
}

// listenForEvents creates a command that waits for events
func (m *Model) listenForEvents() tea.Cmd {
	sub := m.eventSub
	return func() tea.Msg {
		event, ok := <-sub
		if !ok {
			return nil
		}
		return event
	}
}

func (m *Model) handleEvent(event events.Event) tea.Cmd {
	var cmds []tea.Cmd

	switch event.Type {
	case events.SearchClearedEvent:
		// The session emptied the box (after an add or a mode change).
		if m.session.Query() == "" && m.search.Value() != "" {
			m.search.SetValue("")
		}

	case events.ModeSwitchRequestedEvent:
		if payload, ok := event.Payload.(events.ModeSwitchPayload); ok {
			n := m.session.QueueLen()
			m.dialogManager.SetModeSwitch(
				fmt.Sprintf("Switch to %s?", payload.To.Label()),
				fmt.Sprintf("The queue has %d %s waiting to %s. Switching empties it.",
					n, students(n), payload.From.Label()),
				m.confirmModeSwitch,
				func() tea.Msg { return modeSwitchDeclinedMsg{} },
			)
			cmds = append(cmds, m.dialogManager.OpenDialog(dialog.ModeSwitchDialogType))
		}

	case events.ModeSwitchDeclinedEvent:
		cmds = append(cmds, m.statusBar.ShowInfo(fmt.Sprintf("Still in %s mode.", m.session.Mode().Label())))

	case events.ModeChangedEvent:
		if payload, ok := event.Payload.(events.ModeSwitchPayload); ok {
			m.search.Placeholder = placeholder(payload.To)
			m.resultCursor, m.queueCursor, m.listCursor = 0, 0, 0
			cmds = append(cmds, m.statusBar.ShowInfo(fmt.Sprintf("Switched to %s.", payload.To.Label())))
		}

	case events.ListLoadedEvent:
		if payload, ok := event.Payload.(events.ListPayload); ok && payload.Err != nil {
			msg := "Could not load the eligible list."
			if gateapi.IsUnauthorized(payload.Err) {
				msg = "The server rejected the token. Check FASTTRACK_TOKEN."
			}
			cmds = append(cmds, m.statusBar.ShowError(msg))
		}

	case events.BatchStartedEvent:
		if payload, ok := event.Payload.(events.BatchPayload); ok {
			n := len(payload.Submitted)
			cmds = append(cmds, m.statusBar.ShowInfo(fmt.Sprintf("Processing %d %s...", n, students(n))))
		}

	case events.StatusMessageEvent:
		if payload, ok := event.Payload.(events.StatusMessagePayload); ok {
			cmds = append(cmds, m.statusBar.SetMessage(payload.Message, status.ParseType(string(payload.Level))))
		}

	case events.FocusSearchEvent:
		cmds = append(cmds, m.setFocus(searchPane))
	}

	m.refresh()
	return tea.Batch(cmds...)
}

// refresh snapshots the session and keeps cursors in range.
func (m *Model) refresh() {
	m.results = m.session.Results()
	m.queue = m.session.Queue()
	m.rows = m.session.Rows()
	m.resultCursor = clamp(m.resultCursor, len(m.results))
	m.queueCursor = clamp(m.queueCursor, len(m.queue))
	m.listCursor = clamp(m.listCursor, len(m.rows))
}

func (m *Model) busy() bool {
	return m.session.InFlight() || m.session.ListLoading() || m.session.Searching()
}

func clamp(i, n int) int {
	if n == 0 || i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

func students(n int) string {
	if n == 1 {
		return "student"
	}
	return "students"
}
