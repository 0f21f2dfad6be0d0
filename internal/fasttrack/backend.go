package fasttrack

import (
	"context"

	"github.com/billie-coop/fasttrack/internal/exeat"
)

// Backend is the server side of the fast-track flow. gateapi.Client is the
// production implementation.
type Backend interface {
	// ListEligible returns one page of requests eligible for mode.
	// An empty date means no date filter.
	ListEligible(ctx context.Context, mode exeat.Mode, page int, date string) (exeat.Page, error)

	// SearchEligible returns eligible requests matching query.
	SearchEligible(ctx context.Context, mode exeat.Mode, query string) ([]exeat.Request, error)

	// ExecuteBatch applies the current action to ids and returns the ids the
	// server actually processed.
	ExecuteBatch(ctx context.Context, ids []int64) ([]int64, error)
}
