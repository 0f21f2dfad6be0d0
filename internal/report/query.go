// Package report builds the gate events report: which students are out,
// which came back, and when.
package report

import (
	"fmt"
	"strings"

	"github.com/billie-coop/fasttrack/internal/gateapi"
)

const (
	DefaultPerPage = 20
	MinPerPage     = 5
	MaxPerPage     = 50
)

// Column is a report column.
type Column struct {
	Key   string
	Label string
	// Sortable columns map to a backend sort key.
	SortKey string
}

// Columns in display order.
var Columns = []Column{
	{Key: "matric_no", Label: "Matriculation Number", SortKey: "exeat_requests.matric_no"},
	{Key: "student_name", Label: "Name of Student", SortKey: "students.fname"},
	{Key: "signin_time", Label: "Checked In", SortKey: "security_signouts.signin_time"},
	{Key: "signout_time", Label: "Checked Out", SortKey: "security_signouts.signout_time"},
	{Key: "departure_date", Label: "Departure Date", SortKey: "exeat_requests.departure_date"},
	{Key: "return_date", Label: "Returning Date", SortKey: "exeat_requests.return_date"},
	{Key: "actual_returned_date", Label: "Actual Returned Date"},
}

// DefaultSort is used for unknown or unsortable columns.
const DefaultSort = "security_signouts.signout_time"

// SortKey maps a column key to the backend sort key.
func SortKey(column string) string {
	for _, c := range Columns {
		if c.Key == column && c.SortKey != "" {
			return c.SortKey
		}
	}
	return DefaultSort
}

// Query is the report's filter, sort and paging state.
type Query struct {
	Page    int
	PerPage int
	Checked string
	Search  string
	SortBy  string
	Order   string
}

// NewQuery returns the report's initial state: newest sign-outs first.
func NewQuery() Query {
	return Query{
		Page:    1,
		PerPage: DefaultPerPage,
		Checked: "all",
		SortBy:  DefaultSort,
		Order:   "desc",
	}
}

// ToggleSort sorts by column. Choosing the current sort again flips the
// order; choosing another one sorts it ascending.
func (q *Query) ToggleSort(column string) {
	key := SortKey(column)
	if q.SortBy == key {
		if q.Order == "asc" {
			q.Order = "desc"
		} else {
			q.Order = "asc"
		}
		return
	}
	q.SortBy = key
	q.Order = "asc"
}

// SetChecked validates and applies the checked filter.
func (q *Query) SetChecked(value string) error {
	v := strings.ToLower(strings.TrimSpace(value))
	switch v {
	case "", "all":
		q.Checked = "all"
	case "in", "out":
		q.Checked = v
	default:
		return fmt.Errorf("checked must be all, in or out, got %q", value)
	}
	return nil
}

// SetOrder validates and applies the sort order.
func (q *Query) SetOrder(value string) error {
	v := strings.ToLower(strings.TrimSpace(value))
	if v != "asc" && v != "desc" {
		return fmt.Errorf("order must be asc or desc, got %q", value)
	}
	q.Order = v
	return nil
}

// ClampPerPage keeps n within MinPerPage..MaxPerPage; zero means default.
func ClampPerPage(n int) int {
	if n == 0 {
		return DefaultPerPage
	}
	return min(max(n, MinPerPage), MaxPerPage)
}

// API converts q into the client query.
func (q Query) API() gateapi.GateEventsQuery {
	return gateapi.GateEventsQuery{
		Page:    max(q.Page, 1),
		PerPage: ClampPerPage(q.PerPage),
		Checked: q.Checked,
		Search:  strings.TrimSpace(q.Search),
		SortBy:  q.SortBy,
		Order:   q.Order,
	}
}
