// Package events carries state-change notifications from the fast-track
// engine to whoever renders it.
package events

import (
	"github.com/billie-coop/fasttrack/internal/exeat"
)

// EventType identifies the type of event
type EventType string

const (
	// Search events
	SearchDispatchedEvent EventType = "search.dispatched"
	SearchResultsEvent    EventType = "search.results"
	SearchClearedEvent    EventType = "search.cleared"

	// Queue events
	QueueChangedEvent EventType = "queue.changed"

	// Mode events
	ModeSwitchRequestedEvent EventType = "mode.switch.requested"
	ModeSwitchDeclinedEvent  EventType = "mode.switch.declined"
	ModeChangedEvent         EventType = "mode.changed"

	// Eligible list events
	ListLoadingEvent EventType = "list.loading"
	ListLoadedEvent  EventType = "list.loaded"

	// Batch events
	BatchStartedEvent   EventType = "batch.started"
	BatchCompletedEvent EventType = "batch.completed"
	BatchFailedEvent    EventType = "batch.failed"

	// UI events
	StatusMessageEvent EventType = "ui.status"
	FocusSearchEvent   EventType = "ui.focus.search"
)

// Event represents an event in the system
type Event struct {
	Type    EventType
	Payload any
}

// Event payload types

type SearchPayload struct {
	Query      string
	Mode       exeat.Mode
	Generation uint64
	Results    []exeat.Request
}

// QueuePayload describes the queue after a change. Reason is one of
// "added", "removed", "cleared", "reconciled" or "mode".
type QueuePayload struct {
	IDs      []int64
	Capacity int
	Reason   string
}

type ModeSwitchPayload struct {
	From exeat.Mode
	To   exeat.Mode
}

type ListPayload struct {
	Mode  exeat.Mode
	Page  int
	Date  string
	Total int
	Err   error
}

type BatchPayload struct {
	Mode      exeat.Mode
	Submitted []int64
	Processed []int64
	Rejected  []int64
	Message   string
}

// StatusLevel is the severity of a status message.
type StatusLevel string

const (
	StatusInfo    StatusLevel = "info"
	StatusWarning StatusLevel = "warning"
	StatusError   StatusLevel = "error"
	StatusSuccess StatusLevel = "success"
)

type StatusMessagePayload struct {
	Message string
	Level   StatusLevel
}
