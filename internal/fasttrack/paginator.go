package fasttrack

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/billie-coop/fasttrack/internal/exeat"
	"github.com/billie-coop/fasttrack/internal/logging"
)

// DefaultPageSize is the server's fast-track page size.
const DefaultPageSize = 10

// DateLayout is the accepted date filter format.
const DateLayout = "2006-01-02"

// Row is an eligible-list item annotated with its queue state.
type Row struct {
	Request exeat.Request
	InQueue bool
	CanAdd  bool
}

// Paginator is the paged, date-filterable list of currently eligible
// requests. Rows are cross-checked against the queue on every read.
type Paginator struct {
	backend  Backend
	queue    *Queue
	log      logging.Logger
	pageSize int

	mu         sync.Mutex
	mode       exeat.Mode
	page       int
	date       string
	items      []exeat.Request
	meta       *exeat.PaginationMeta
	loading    bool
	generation uint64
}

func NewPaginator(backend Backend, queue *Queue, mode exeat.Mode, pageSize int, log logging.Logger) *Paginator {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Paginator{
		backend:  backend,
		queue:    queue,
		log:      log,
		pageSize: pageSize,
		mode:     mode,
		page:     1,
	}
}

// Load fetches the current page. A response that arrives after a newer Load
// started is dropped. On failure the rows and meta are cleared and the
// error is returned.
func (p *Paginator) Load(ctx context.Context) error {
	p.mu.Lock()
	p.generation++
	generation := p.generation
	mode, page, date := p.mode, p.page, p.date
	p.loading = true
	p.mu.Unlock()

	result, err := p.backend.ListEligible(ctx, mode, page, date)

	p.mu.Lock()
	defer p.mu.Unlock()
	if generation != p.generation {
		p.log.Debug(ctx, "discarding stale list response", "page", page, "generation", generation)
		return nil
	}
	p.loading = false
	if err != nil {
		p.items = nil
		p.meta = nil
		p.log.Error(ctx, "failed to fetch eligible list", "mode", mode, "page", page, "date", date, "error", err)
		return fmt.Errorf("fetch eligible list: %w", err)
	}
	p.items = result.Items
	meta := result.Meta
	p.meta = &meta
	if meta.CurrentPage > 0 {
		p.page = meta.CurrentPage
	}
	return nil
}

// SetPage moves to page n and refetches. Pages outside 1..last_page and the
// current page are no-ops.
func (p *Paginator) SetPage(ctx context.Context, n int) error {
	p.mu.Lock()
	if n < 1 || n > p.lastPageLocked() || n == p.page {
		p.mu.Unlock()
		return nil
	}
	p.page = n
	p.mu.Unlock()
	return p.Load(ctx)
}

func (p *Paginator) NextPage(ctx context.Context) error {
	return p.SetPage(ctx, p.Page()+1)
}

func (p *Paginator) PrevPage(ctx context.Context) error {
	return p.SetPage(ctx, p.Page()-1)
}

// SetDate filters the list to one departure/return date and refetches from
// page 1. An empty date clears the filter.
func (p *Paginator) SetDate(ctx context.Context, date string) error {
	if date == "" {
		return p.ClearDate(ctx)
	}
	if _, err := time.Parse(DateLayout, date); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidDate, date)
	}
	p.mu.Lock()
	p.date = date
	p.page = 1
	p.mu.Unlock()
	return p.Load(ctx)
}

// ClearDate drops the date filter and refetches from page 1.
func (p *Paginator) ClearDate(ctx context.Context) error {
	p.mu.Lock()
	p.date = ""
	p.page = 1
	p.mu.Unlock()
	return p.Load(ctx)
}

// Reset returns to page 1 with no date filter for mode, without fetching.
// In-flight loads are invalidated.
func (p *Paginator) Reset(mode exeat.Mode) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = mode
	p.page = 1
	p.date = ""
	p.items = nil
	p.meta = nil
	p.loading = false
	p.generation++
}

// Rows returns the current page annotated against the queue.
func (p *Paginator) Rows() []Row {
	p.mu.Lock()
	items := p.items
	p.mu.Unlock()

	full := p.queue.IsFull()
	rows := make([]Row, len(items))
	for i, r := range items {
		in := p.queue.Contains(r.ID)
		rows[i] = Row{Request: r, InQueue: in, CanAdd: !in && !full}
	}
	return rows
}

// Range returns the 1-based first and last row numbers of the current page
// and the total, as in "Showing 11 to 20 of 43". All zero when empty.
func (p *Paginator) Range() (from, to, total int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.meta == nil || p.meta.Total == 0 {
		return 0, 0, 0
	}
	size := p.meta.PerPage
	if size < 1 {
		size = p.pageSize
	}
	total = p.meta.Total
	from = (p.page-1)*size + 1
	to = min(p.page*size, total)
	if from > total {
		from = total
	}
	return from, to, total
}

// Meta returns a copy of the last pagination meta, or nil.
func (p *Paginator) Meta() *exeat.PaginationMeta {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.meta == nil {
		return nil
	}
	meta := *p.meta
	return &meta
}

func (p *Paginator) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

func (p *Paginator) Date() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.date
}

func (p *Paginator) Mode() exeat.Mode {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

func (p *Paginator) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

func (p *Paginator) lastPageLocked() int {
	if p.meta == nil || p.meta.LastPage < 1 {
		return 1
	}
	return p.meta.LastPage
}
