package report

import (
	"strings"
	"time"

	"github.com/billie-coop/fasttrack/internal/exeat"
)

const missing = "-"

var timestampLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02T15:04:05"}

// Row is a formatted report line, one field per Column.
type Row struct {
	MatricNo           string
	StudentName        string
	SigninTime         string
	SignoutTime        string
	DepartureDate      string
	ReturnDate         string
	ActualReturnedDate string
}

// Cells returns the row in column order.
func (r Row) Cells() []string {
	return []string{r.MatricNo, r.StudentName, r.SigninTime, r.SignoutTime, r.DepartureDate, r.ReturnDate, r.ActualReturnedDate}
}

// Rows formats events in loc. Missing values render as "-". The actual
// returned date is the sign-in date.
func Rows(events []exeat.GateEvent, loc *time.Location) []Row {
	if loc == nil {
		loc = time.Local
	}
	rows := make([]Row, len(events))
	for i, ev := range events {
		rows[i] = Row{
			MatricNo:           orMissing(ev.MatricNo),
			StudentName:        orMissing(strings.TrimSpace(ev.FName + " " + ev.LName)),
			SigninTime:         formatTimestamp(ev.SigninTime, loc),
			SignoutTime:        formatTimestamp(ev.SignoutTime, loc),
			DepartureDate:      formatDate(ev.DepartureDate, loc),
			ReturnDate:         formatDate(ev.ReturnDate, loc),
			ActualReturnedDate: formatDate(ev.SigninTime, loc),
		}
	}
	return rows
}

func formatTimestamp(v *string, loc *time.Location) string {
	t, ok := parse(v)
	if !ok {
		if v != nil && *v != "" {
			return *v
		}
		return missing
	}
	return t.In(loc).Format("2006-01-02 15:04")
}

func formatDate(v *string, loc *time.Location) string {
	if v == nil || *v == "" {
		return missing
	}
	if t, ok := parse(v); ok {
		return t.In(loc).Format("2006-01-02")
	}
	if len(*v) >= 10 {
		if _, err := time.Parse("2006-01-02", (*v)[:10]); err == nil {
			return (*v)[:10]
		}
	}
	return *v
}

func parse(v *string) (time.Time, bool) {
	if v == nil || *v == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, *v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func orMissing(s string) string {
	if s == "" {
		return missing
	}
	return s
}
