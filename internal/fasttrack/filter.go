package fasttrack

import "github.com/billie-coop/fasttrack/internal/exeat"

// Membership answers whether a request id is already queued.
type Membership interface {
	Contains(id int64) bool
}

// Filter returns results minus any request whose id is in queued, keeping
// server order. It does not modify results.
func Filter(results []exeat.Request, queued Membership) []exeat.Request {
	out := make([]exeat.Request, 0, len(results))
	for _, r := range results {
		if queued != nil && queued.Contains(r.ID) {
			continue
		}
		out = append(out, r)
	}
	return out
}
