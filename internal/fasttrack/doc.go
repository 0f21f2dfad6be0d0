// Package fasttrack is the headless engine behind the gate console.
//
// An operator at the gate batches sign-out (or sign-in) actions: they type a
// few characters of a name or matric number, pick the student from the
// results, and repeat until the batch is ready, then commit it in one call.
// The engine turns that noisy input into a de-duplicated, ordered, bounded
// batch and reconciles it with what the backend actually processed.
//
// Components, leaf to root:
//
//	Debouncer   keystrokes -> rate-limited, generation-tagged searches
//	Filter      search results minus what is already queued
//	Queue       ordered, unique, size-bounded pending batch
//	ModeSwitch  sign_out/sign_in with confirm-before-clear transitions
//	Executor    one commit at a time, reconciled against "processed"
//	Paginator   paged, date-filterable eligible list linked to the queue
//
// Session owns one of each plus an events.Broker and exposes the operator
// level operations. It is safe to call from the UI goroutine while timer
// callbacks and network completions arrive on other goroutines. No lock is
// held across a backend call.
//
// Typical use:
//
//	s := fasttrack.NewSession(client, broker,
//		fasttrack.WithMode(exeat.SignOut),
//		fasttrack.WithLogger(log),
//	)
//	defer s.Close()
//
//	s.Input("ada")          // search fires 300ms after the last keystroke
//	s.Enqueue(s.Results()[0])
//	res, err := s.Commit(ctx)
package fasttrack
