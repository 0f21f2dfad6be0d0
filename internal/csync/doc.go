// Package csync provides small generic collections guarded by a RWMutex.
//
// The development backend keeps its requests and gate events in these so
// that gin handlers can read and write them from concurrent goroutines:
//
//	requests := csync.NewMap[int64, exeat.Request]()
//	requests.Set(r.ID, r)
//	requests.Update(r.ID, func(r exeat.Request, ok bool) (exeat.Request, bool) {
//		r.ActionType = exeat.SignIn
//		return r, ok
//	})
//
//	log := csync.NewLog[Batch]()
//	log.Append(batch)
package csync
