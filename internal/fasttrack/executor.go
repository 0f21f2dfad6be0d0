package fasttrack

import (
	"context"
	"slices"
	"sync/atomic"
)

// BatchResult describes one committed batch.
type BatchResult struct {
	// Submitted is the queue as it was sent, in order.
	Submitted []int64
	// Processed are the submitted ids the server applied.
	Processed []int64
	// Rejected are the submitted ids the server did not apply. They stay
	// queued.
	Rejected []int64
}

// Partial reports whether some submitted ids were not processed.
func (r BatchResult) Partial() bool {
	return len(r.Rejected) > 0
}

// Executor submits the queue as one request and reconciles the queue with
// the server's answer. Only one submission runs at a time.
type Executor struct {
	backend  Backend
	queue    *Queue
	inFlight atomic.Bool

	// OnStart, when set, runs with the submitted ids once the submission
	// holds the in-flight guard and before the request is sent.
	OnStart func(submitted []int64)
}

func NewExecutor(backend Backend, queue *Queue) *Executor {
	return &Executor{backend: backend, queue: queue}
}

// InFlight reports whether a submission is running.
func (e *Executor) InFlight() bool {
	return e.inFlight.Load()
}

// Execute submits the queued ids.
//
// On success, processed ids leave the queue and the rest stay. Entries
// added while the request was in flight are never touched because only
// submitted ids are considered. On failure the queue is unchanged and the
// error is a *BatchError.
func (e *Executor) Execute(ctx context.Context) (BatchResult, error) {
	if !e.inFlight.CompareAndSwap(false, true) {
		return BatchResult{}, ErrBatchInFlight
	}
	defer e.inFlight.Store(false)

	submitted := e.queue.IDs()
	if len(submitted) == 0 {
		return BatchResult{}, ErrEmptyQueue
	}
	if e.OnStart != nil {
		e.OnStart(submitted)
	}

	processed, err := e.backend.ExecuteBatch(ctx, submitted)
	if err != nil {
		return BatchResult{Submitted: submitted}, &BatchError{Reason: failureReason(err), Err: err}
	}

	result := reconcile(submitted, processed)
	e.queue.RemoveIDs(result.Processed)
	return result, nil
}

// reconcile splits submitted into processed and rejected, in submission
// order. Ids the server reports that were never submitted are ignored.
func reconcile(submitted, processed []int64) BatchResult {
	done := make(map[int64]struct{}, len(processed))
	for _, id := range processed {
		done[id] = struct{}{}
	}

	result := BatchResult{
		Submitted: slices.Clone(submitted),
		Processed: []int64{},
		Rejected:  []int64{},
	}
	for _, id := range submitted {
		if _, ok := done[id]; ok {
			result.Processed = append(result.Processed, id)
		} else {
			result.Rejected = append(result.Rejected, id)
		}
	}
	return result
}
