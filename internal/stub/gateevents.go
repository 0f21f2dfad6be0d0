package stub

import (
	"encoding/csv"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/billie-coop/fasttrack/internal/exeat"
)

type eventsQuery struct {
	Page    int    `form:"page" binding:"omitempty,gte=1"`
	PerPage int    `form:"per_page" binding:"omitempty,gte=1"`
	Checked string `form:"checked" binding:"omitempty,oneof=all in out"`
	Search  string `form:"search"`
	SortBy  string `form:"sort_by"`
	Order   string `form:"order" binding:"omitempty,oneof=asc desc"`
}

func (q eventsQuery) filter() EventFilter {
	return EventFilter{Checked: q.Checked, Search: q.Search, SortBy: q.SortBy, Order: q.Order}
}

func (s *Server) handleGateEvents(c *gin.Context) {
	q := eventsQuery{Order: "desc"}
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}
	page := max(q.Page, 1)
	perPage := q.PerPage
	if perPage == 0 {
		perPage = defaultEventsPage
	}
	perPage = min(max(perPage, minEventsPerPage), maxEventsPerPage)

	all := s.store.GateEvents(q.filter())
	start := min((page-1)*perPage, len(all))
	end := min(start+perPage, len(all))

	c.JSON(http.StatusOK, gin.H{
		"items": nonNil(all[start:end]),
		"pagination": exeat.PaginationMeta{
			CurrentPage: page,
			LastPage:    max((len(all)+perPage-1)/perPage, 1),
			Total:       len(all),
			PerPage:     perPage,
		},
	})
}

func (s *Server) handleExport(c *gin.Context) {
	var q eventsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}
	// Exports ignore the sort parameters.
	all := s.store.GateEvents(EventFilter{Checked: q.Checked, Search: q.Search, Order: "desc"})

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", `attachment; filename="gate-events.csv"`)
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	_ = w.Write([]string{"Matric No", "Name", "Checked Out", "Checked In", "Departure Date", "Return Date"})
	for _, ev := range all {
		_ = w.Write([]string{
			ev.MatricNo,
			ev.FName + " " + ev.LName,
			deref(ev.SignoutTime),
			deref(ev.SigninTime),
			deref(ev.DepartureDate),
			deref(ev.ReturnDate),
		})
	}
	w.Flush()
}
