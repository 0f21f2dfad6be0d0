package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/billie-coop/fasttrack/internal/gateapi"
)

// Source is the part of the gate client the report needs.
type Source interface {
	GateEvents(ctx context.Context, q gateapi.GateEventsQuery) (gateapi.GateEventsPage, error)
	ExportURL(checked, search string) string
}

// Run fetches one page for q and writes the rendered table to w. With
// export set it writes the CSV export link instead.
func Run(ctx context.Context, src Source, q Query, export bool, w io.Writer) error {
	apiQuery := q.API()
	if export {
		_, err := fmt.Fprintln(w, src.ExportURL(apiQuery.Checked, apiQuery.Search))
		return err
	}

	page, err := src.GateEvents(ctx, apiQuery)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, Render(Rows(page.Items, time.Local), page.Pagination, q))
	return err
}
