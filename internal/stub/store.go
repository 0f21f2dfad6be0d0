package stub

import (
	"cmp"
	"slices"
	"strings"
	"time"

	"github.com/billie-coop/fasttrack/internal/csync"
	"github.com/billie-coop/fasttrack/internal/exeat"
)

const timeLayout = time.RFC3339

// BatchRecord is one execute call as the store saw it.
type BatchRecord struct {
	At        time.Time
	Submitted []int64
	Processed []int64
}

// Store holds exeat requests and gate events in memory.
//
// A request moves sign_out -> sign_in -> done (empty action type). Signing
// out opens a gate event for the request; signing in closes it.
type Store struct {
	requests *csync.Map[int64, exeat.Request]
	events   *csync.Map[int64, exeat.GateEvent]
	batches  *csync.Log[BatchRecord]
}

func NewStore() *Store {
	return &Store{
		requests: csync.NewMap[int64, exeat.Request](),
		events:   csync.NewMap[int64, exeat.GateEvent](),
		batches:  csync.NewLog[BatchRecord](),
	}
}

// Put adds or replaces a request.
func (s *Store) Put(r exeat.Request) {
	s.requests.Set(r.ID, r)
}

// Get returns a request by id.
func (s *Store) Get(id int64) (exeat.Request, bool) {
	return s.requests.Get(id)
}

// Eligible returns approved requests awaiting mode, oldest id first. A
// non-empty date matches the departure date for sign-out and the return
// date for sign-in.
func (s *Store) Eligible(mode exeat.Mode, date string) []exeat.Request {
	var out []exeat.Request
	for _, r := range s.requests.Sorted() {
		if !eligible(r, mode) {
			continue
		}
		if date != "" && !sameDay(dateFor(r, mode), date) {
			continue
		}
		out = append(out, r)
	}
	return out
}

// Search matches query against names and matric numbers, case-insensitively.
func (s *Store) Search(mode exeat.Mode, query string, limit int) []exeat.Request {
	q := strings.ToLower(strings.TrimSpace(query))
	var out []exeat.Request
	for _, r := range s.Eligible(mode, "") {
		hay := strings.ToLower(r.Student.Name() + " " + r.Student.MatricNo)
		if strings.Contains(hay, q) {
			out = append(out, r)
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out
}

// Execute applies each request's pending action. Ids that are unknown or no
// longer eligible are skipped. It returns the processed ids in input order.
func (s *Store) Execute(ids []int64, now time.Time) []int64 {
	stamp := now.UTC().Format(timeLayout)
	processed := []int64{}
	seen := map[int64]bool{}

	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		var applied exeat.Mode
		s.requests.Update(id, func(r exeat.Request, ok bool) (exeat.Request, bool) {
			if !ok || r.Status != "approved" || !r.ActionType.Valid() {
				return r, false
			}
			applied = r.ActionType
			if r.ActionType == exeat.SignOut {
				r.ActionType = exeat.SignIn
			} else {
				r.ActionType = ""
			}
			r.UpdatedAt = stamp
			return r, true
		})
		if applied == "" {
			continue
		}

		r, _ := s.requests.Get(id)
		s.recordEvent(r, applied, stamp)
		processed = append(processed, id)
	}

	s.batches.Append(BatchRecord{At: now, Submitted: slices.Clone(ids), Processed: slices.Clone(processed)})
	return processed
}

func (s *Store) recordEvent(r exeat.Request, applied exeat.Mode, stamp string) {
	s.events.Update(r.ID, func(ev exeat.GateEvent, ok bool) (exeat.GateEvent, bool) {
		if !ok {
			ev = exeat.GateEvent{
				ID:            r.ID,
				MatricNo:      r.Student.MatricNo,
				FName:         r.Student.FName,
				LName:         r.Student.LName,
				DepartureDate: optional(r.DepartureDate),
				ReturnDate:    optional(r.ReturnDate),
			}
		}
		t := stamp
		if applied == exeat.SignOut {
			ev.SignoutTime = &t
		} else {
			ev.SigninTime = &t
		}
		return ev, true
	})
}

// PutEvent adds or replaces a gate event.
func (s *Store) PutEvent(ev exeat.GateEvent) {
	s.events.Set(ev.ID, ev)
}

// EventFilter selects gate events.
type EventFilter struct {
	// Checked is "in" (signed back in), "out" (still out) or "all".
	Checked string
	Search  string
	SortBy  string
	Order   string
}

// Sortable gate event columns, keyed by the names the backend accepts.
var eventSorts = map[string]func(exeat.GateEvent) string{
	"exeat_requests.matric_no":       func(e exeat.GateEvent) string { return e.MatricNo },
	"students.fname":                 func(e exeat.GateEvent) string { return strings.ToLower(e.FName) },
	"security_signouts.signin_time":  func(e exeat.GateEvent) string { return deref(e.SigninTime) },
	"security_signouts.signout_time": func(e exeat.GateEvent) string { return deref(e.SignoutTime) },
	"exeat_requests.departure_date":  func(e exeat.GateEvent) string { return deref(e.DepartureDate) },
	"exeat_requests.return_date":     func(e exeat.GateEvent) string { return deref(e.ReturnDate) },
}

const defaultEventSort = "security_signouts.signout_time"

// GateEvents returns the events matching f, sorted. Empty sort values go
// last regardless of order.
func (s *Store) GateEvents(f EventFilter) []exeat.GateEvent {
	q := strings.ToLower(strings.TrimSpace(f.Search))
	var out []exeat.GateEvent
	for _, ev := range s.events.Sorted() {
		switch f.Checked {
		case "in":
			if ev.SigninTime == nil {
				continue
			}
		case "out":
			if ev.SigninTime != nil {
				continue
			}
		}
		if q != "" {
			hay := strings.ToLower(ev.FName + " " + ev.LName + " " + ev.MatricNo)
			if !strings.Contains(hay, q) {
				continue
			}
		}
		out = append(out, ev)
	}

	key, ok := eventSorts[f.SortBy]
	if !ok {
		key = eventSorts[defaultEventSort]
	}
	desc := strings.EqualFold(f.Order, "desc")
	slices.SortStableFunc(out, func(a, b exeat.GateEvent) int {
		ka, kb := key(a), key(b)
		switch {
		case ka == "" && kb == "":
			return 0
		case ka == "":
			return 1
		case kb == "":
			return -1
		}
		if desc {
			return cmp.Compare(kb, ka)
		}
		return cmp.Compare(ka, kb)
	})
	return out
}

// Batches returns every execute call so far.
func (s *Store) Batches() []BatchRecord {
	return s.batches.Items()
}

func eligible(r exeat.Request, mode exeat.Mode) bool {
	return r.Status == "approved" && r.ActionType == mode
}

func dateFor(r exeat.Request, mode exeat.Mode) string {
	if mode == exeat.SignIn {
		return r.ReturnDate
	}
	return r.DepartureDate
}

// sameDay compares the date part of a stored date or timestamp to day.
func sameDay(value, day string) bool {
	return len(value) >= len(day) && value[:len(day)] == day
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
