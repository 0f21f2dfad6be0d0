package fasttrack

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/billie-coop/fasttrack/internal/events"
	"github.com/billie-coop/fasttrack/internal/exeat"
	"github.com/billie-coop/fasttrack/internal/logging"
)

// Option configures a Session.
type Option func(*Session)

// WithMode sets the starting mode (sign-out by default).
func WithMode(mode exeat.Mode) Option {
	return func(s *Session) { s.startMode = mode }
}

func WithLogger(log logging.Logger) Option {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

// WithClock replaces the clock used by the search debouncer.
func WithClock(clock Clock) Option {
	return func(s *Session) { s.clock = clock }
}

func WithDebounce(d time.Duration) Option {
	return func(s *Session) { s.debounce = d }
}

func WithMinQueryLength(n int) Option {
	return func(s *Session) { s.minQueryLen = n }
}

func WithCapacity(n int) Option {
	return func(s *Session) { s.capacity = n }
}

func WithPageSize(n int) Option {
	return func(s *Session) { s.pageSize = n }
}

// WithContext sets the context used for searches started by the debounce
// timer. Cancelling it abandons those searches.
func WithContext(ctx context.Context) Option {
	return func(s *Session) { s.ctx = ctx }
}

// Session is one operator's fast-track workspace. It owns the queue, the
// mode, the search pipeline and the eligible list, and announces every
// change on the broker.
type Session struct {
	backend Backend
	broker  *events.Broker
	log     logging.Logger
	ctx     context.Context

	startMode   exeat.Mode
	clock       Clock
	debounce    time.Duration
	minQueryLen int
	capacity    int
	pageSize    int

	queue     *Queue
	modes     *ModeSwitch
	debouncer *Debouncer
	executor  *Executor
	paginator *Paginator

	mu        sync.Mutex
	query     string
	results   []exeat.Request
	searching bool
}

// NewSession wires a session to backend. broker may be nil when nobody
// listens.
func NewSession(backend Backend, broker *events.Broker, opts ...Option) *Session {
	s := &Session{
		backend:     backend,
		broker:      broker,
		log:         logging.Discard(),
		ctx:         context.Background(),
		startMode:   exeat.SignOut,
		clock:       SystemClock(),
		debounce:    DefaultDebounce,
		minQueryLen: DefaultMinQueryLength,
		capacity:    DefaultCapacity,
		pageSize:    DefaultPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.queue = NewQueue(s.capacity)
	s.modes = NewModeSwitch(s.startMode)
	s.debouncer = NewDebouncer(s.clock, s.debounce, s.minQueryLen, s.runSearch, s.clearResults)
	s.executor = NewExecutor(backend, s.queue)
	s.executor.OnStart = func(submitted []int64) {
		s.publish(events.BatchStartedEvent, events.BatchPayload{Mode: s.modes.Mode(), Submitted: submitted})
	}
	s.paginator = NewPaginator(backend, s.queue, s.modes.Mode(), s.pageSize, s.log)
	return s
}

// Close stops the pending search timer.
func (s *Session) Close() {
	s.debouncer.Stop()
}

// Mode returns the active mode.
func (s *Session) Mode() exeat.Mode {
	return s.modes.Mode()
}

// PendingMode returns the mode waiting for confirmation, if any.
func (s *Session) PendingMode() (exeat.Mode, bool) {
	return s.modes.Pending()
}

// Search

// Input feeds the current search box value to the debouncer.
func (s *Session) Input(query string) {
	s.mu.Lock()
	s.query = query
	s.mu.Unlock()

	// Not under s.mu: the debouncer may call clearResults synchronously.
	s.debouncer.Input(query)
}

// Query returns the search box value.
func (s *Session) Query() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.query
}

// Results returns the latest search results minus anything queued.
func (s *Session) Results() []exeat.Request {
	s.mu.Lock()
	results := s.results
	s.mu.Unlock()
	return Filter(results, s.queue)
}

// Searching reports whether a dispatched search has not answered yet.
func (s *Session) Searching() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searching
}

func (s *Session) runSearch(query string, generation uint64) {
	mode := s.modes.Mode()

	s.mu.Lock()
	s.searching = true
	s.mu.Unlock()
	s.publish(events.SearchDispatchedEvent, events.SearchPayload{Query: query, Mode: mode, Generation: generation})
	s.log.Debug(s.ctx, "search dispatched", "query", query, "mode", mode, "generation", generation)

	results, err := s.backend.SearchEligible(s.ctx, mode, query)
	if err != nil {
		s.log.Error(s.ctx, "search failed", "query", query, "mode", mode, "error", err)
		results = nil
	}

	s.mu.Lock()
	if !s.debouncer.Accept(generation) {
		s.mu.Unlock()
		s.log.Debug(s.ctx, "discarding stale search response", "query", query, "generation", generation)
		return
	}
	if err != nil {
		// The next keystrokes may settle on the same query; it must be retried.
		s.debouncer.Forget(generation)
	}
	s.results = results
	s.searching = false
	s.mu.Unlock()

	s.publish(events.SearchResultsEvent, events.SearchPayload{
		Query:      query,
		Mode:       mode,
		Generation: generation,
		Results:    Filter(results, s.queue),
	})
}

func (s *Session) clearResults() {
	s.mu.Lock()
	had := len(s.results) > 0 || s.searching
	s.results = nil
	s.searching = false
	s.mu.Unlock()
	if had {
		s.publish(events.SearchClearedEvent, nil)
	}
}

// resetSearch empties the search box and results and invalidates any
// in-flight search.
func (s *Session) resetSearch() {
	s.mu.Lock()
	s.query = ""
	s.results = nil
	s.searching = false
	s.debouncer.Reset()
	s.mu.Unlock()
	s.publish(events.SearchClearedEvent, nil)
}

// Queue

// Enqueue adds r to the batch. On success the search is reset so the
// operator can type the next name straight away.
func (s *Session) Enqueue(r exeat.Request) AddResult {
	mode := s.modes.Mode()
	if r.ActionType != "" && r.ActionType != mode {
		s.status(events.StatusWarning, fmt.Sprintf("%s is eligible for %s, not %s.", describe(r), r.ActionType.Label(), mode.Label()))
		return WrongMode
	}

	result := s.queue.Add(r)
	switch result {
	case Added:
		s.resetSearch()
		s.publishQueue("added")
		s.publish(events.FocusSearchEvent, nil)
	case Duplicate:
		s.status(events.StatusInfo, fmt.Sprintf("%s is already in the queue.", describe(r)))
	case Full:
		s.status(events.StatusWarning, fmt.Sprintf("Queue is full (%d max). Process it first.", s.queue.Capacity()))
	}
	return result
}

// Remove drops id from the batch. It reappears in current search results.
func (s *Session) Remove(id int64) bool {
	if !s.queue.Remove(id) {
		return false
	}
	s.publishQueue("removed")
	return true
}

// ClearQueue empties the batch.
func (s *Session) ClearQueue() {
	if s.queue.Len() == 0 {
		return
	}
	s.queue.Clear()
	s.publishQueue("cleared")
}

// Queue returns the ranked batch.
func (s *Session) Queue() []Entry {
	return s.queue.Snapshot()
}

func (s *Session) QueueLen() int {
	return s.queue.Len()
}

func (s *Session) Capacity() int {
	return s.queue.Capacity()
}

func (s *Session) IsFull() bool {
	return s.queue.IsFull()
}

// Mode switching

// RequestModeSwitch asks to move to target. With an empty queue the switch
// happens now and the list is refetched. Otherwise a
// ModeSwitchRequestedEvent is published and the switch waits for
// ConfirmModeSwitch or DeclineModeSwitch.
func (s *Session) RequestModeSwitch(ctx context.Context, target exeat.Mode) (SwitchOutcome, error) {
	if s.executor.InFlight() {
		return SwitchNoop, ErrBatchInFlight
	}
	from := s.modes.Mode()
	outcome := s.modes.Request(target, s.queue.Len() == 0)
	switch outcome {
	case SwitchApplied:
		return outcome, s.applyMode(ctx, from, target)
	case SwitchPending:
		s.publish(events.ModeSwitchRequestedEvent, events.ModeSwitchPayload{From: from, To: target})
	}
	return outcome, nil
}

// ToggleMode requests the mode that is not active.
func (s *Session) ToggleMode(ctx context.Context) (SwitchOutcome, error) {
	return s.RequestModeSwitch(ctx, s.modes.Mode().Other())
}

// ConfirmModeSwitch applies the pending switch: the queue, search and list
// filters are reset and the list is refetched for the new mode.
func (s *Session) ConfirmModeSwitch(ctx context.Context) error {
	if s.executor.InFlight() {
		return ErrBatchInFlight
	}
	from := s.modes.Mode()
	to, ok := s.modes.Confirm()
	if !ok {
		return nil
	}
	return s.applyMode(ctx, from, to)
}

// DeclineModeSwitch drops the pending switch. Nothing else changes.
func (s *Session) DeclineModeSwitch() {
	pending, _ := s.modes.Pending()
	if s.modes.Decline() {
		s.publish(events.ModeSwitchDeclinedEvent, events.ModeSwitchPayload{From: s.modes.Mode(), To: pending})
	}
}

func (s *Session) applyMode(ctx context.Context, from, to exeat.Mode) error {
	hadQueue := s.queue.Len() > 0
	s.queue.Clear()
	s.resetSearch()
	s.paginator.Reset(to)

	if hadQueue {
		s.publishQueue("mode")
	}
	s.publish(events.ModeChangedEvent, events.ModeSwitchPayload{From: from, To: to})
	s.publish(events.FocusSearchEvent, nil)
	s.log.Info(ctx, "mode changed", "from", from, "to", to, "cleared_queue", hadQueue)

	return s.LoadList(ctx)
}

// Commit

// Commit submits the batch. Processed ids leave the queue; rejected ids stay
// and are named in a warning. The eligible list is refreshed after the
// response has been applied.
func (s *Session) Commit(ctx context.Context) (BatchResult, error) {
	mode := s.modes.Mode()
	if s.queue.Len() == 0 {
		return BatchResult{}, ErrEmptyQueue
	}
	if s.executor.InFlight() {
		return BatchResult{}, ErrBatchInFlight
	}

	result, err := s.executor.Execute(ctx)
	if err != nil {
		var batchErr *BatchError
		if errors.As(err, &batchErr) {
			s.log.Error(ctx, "batch failed", "mode", mode, "submitted", len(result.Submitted), "error", batchErr.Err)
			s.publish(events.BatchFailedEvent, events.BatchPayload{Mode: mode, Submitted: result.Submitted, Message: batchErr.Reason})
			s.status(events.StatusError, batchErr.Reason)
		}
		return result, err
	}

	s.dropProcessedResults(result.Processed)
	s.publishQueue("reconciled")

	notice := BatchNotice(result)
	s.log.Info(ctx, "batch executed", "mode", mode,
		"submitted", len(result.Submitted), "processed", len(result.Processed), "rejected", result.Rejected)
	s.publish(events.BatchCompletedEvent, events.BatchPayload{
		Mode:      mode,
		Submitted: result.Submitted,
		Processed: result.Processed,
		Rejected:  result.Rejected,
		Message:   notice,
	})
	if result.Partial() {
		s.status(events.StatusWarning, notice)
	} else {
		s.status(events.StatusSuccess, notice)
	}

	// List failures are logged and published by LoadList; the batch itself
	// succeeded.
	_ = s.LoadList(ctx)
	return result, nil
}

// InFlight reports whether a commit is running.
func (s *Session) InFlight() bool {
	return s.executor.InFlight()
}

// BatchNotice renders the operator message for a committed batch.
func BatchNotice(r BatchResult) string {
	msg := fmt.Sprintf("Successfully processed %d %s.", len(r.Processed), plural(len(r.Processed), "student", "students"))
	if !r.Partial() {
		return msg
	}
	ids := make([]string, len(r.Rejected))
	for i, id := range r.Rejected {
		ids[i] = fmt.Sprintf("#%d", id)
	}
	return fmt.Sprintf("%s %d not processed and kept in the queue: %s.", msg, len(r.Rejected), strings.Join(ids, ", "))
}

func (s *Session) dropProcessedResults(processed []int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = slices.DeleteFunc(slices.Clone(s.results), func(r exeat.Request) bool {
		return slices.Contains(processed, r.ID)
	})
}

// Eligible list

// LoadList fetches the current page of the eligible list.
func (s *Session) LoadList(ctx context.Context) error {
	return s.listOp(ctx, s.paginator.Load)
}

func (s *Session) NextPage(ctx context.Context) error {
	return s.listOp(ctx, s.paginator.NextPage)
}

func (s *Session) PrevPage(ctx context.Context) error {
	return s.listOp(ctx, s.paginator.PrevPage)
}

func (s *Session) SetPage(ctx context.Context, n int) error {
	return s.listOp(ctx, func(ctx context.Context) error { return s.paginator.SetPage(ctx, n) })
}

// SetDate filters the eligible list by date (YYYY-MM-DD). Empty clears it.
func (s *Session) SetDate(ctx context.Context, date string) error {
	date = strings.TrimSpace(date)
	if date != "" {
		if _, err := time.Parse(DateLayout, date); err != nil {
			return fmt.Errorf("%w: %q", ErrInvalidDate, date)
		}
	}
	return s.listOp(ctx, func(ctx context.Context) error { return s.paginator.SetDate(ctx, date) })
}

func (s *Session) ClearDate(ctx context.Context) error {
	return s.listOp(ctx, s.paginator.ClearDate)
}

// Rows returns the eligible list annotated with queue state.
func (s *Session) Rows() []Row {
	return s.paginator.Rows()
}

// Range returns the "Showing X to Y of Z" numbers.
func (s *Session) Range() (from, to, total int) {
	return s.paginator.Range()
}

func (s *Session) ListMeta() *exeat.PaginationMeta {
	return s.paginator.Meta()
}

func (s *Session) Page() int {
	return s.paginator.Page()
}

func (s *Session) Date() string {
	return s.paginator.Date()
}

func (s *Session) ListLoading() bool {
	return s.paginator.Loading()
}

func (s *Session) listOp(ctx context.Context, op func(context.Context) error) error {
	mode := s.modes.Mode()
	s.publish(events.ListLoadingEvent, events.ListPayload{Mode: mode, Page: s.paginator.Page(), Date: s.paginator.Date()})

	err := op(ctx)

	_, _, total := s.paginator.Range()
	s.publish(events.ListLoadedEvent, events.ListPayload{
		Mode:  mode,
		Page:  s.paginator.Page(),
		Date:  s.paginator.Date(),
		Total: total,
		Err:   err,
	})
	return err
}

// helpers

func (s *Session) publish(t events.EventType, payload any) {
	if s.broker == nil {
		return
	}
	s.broker.Publish(events.Event{Type: t, Payload: payload})
}

func (s *Session) publishQueue(reason string) {
	s.publish(events.QueueChangedEvent, events.QueuePayload{
		IDs:      s.queue.IDs(),
		Capacity: s.queue.Capacity(),
		Reason:   reason,
	})
}

func (s *Session) status(level events.StatusLevel, msg string) {
	s.publish(events.StatusMessageEvent, events.StatusMessagePayload{Message: msg, Level: level})
}

func describe(r exeat.Request) string {
	if name := r.Student.Name(); name != "" {
		return name
	}
	return fmt.Sprintf("Request #%d", r.ID)
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
