package fasttrack

import (
	"errors"
)

var (
	// ErrEmptyQueue is returned by Commit when there is nothing to submit.
	ErrEmptyQueue = errors.New("queue is empty")

	// ErrBatchInFlight is returned by Commit while another commit is running.
	ErrBatchInFlight = errors.New("a batch is already being processed")

	// ErrInvalidDate is returned by SetDate for anything but YYYY-MM-DD.
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")
)

// DefaultFailureMessage is shown when a failed commit carries no reason.
const DefaultFailureMessage = "Failed to process."

// BatchError is returned by Commit when the backend refused or could not be
// reached. The queue is left as it was.
type BatchError struct {
	// Reason is the operator-facing explanation.
	Reason string
	Err    error
}

func (e *BatchError) Error() string {
	return e.Reason
}

func (e *BatchError) Unwrap() error {
	return e.Err
}

// userMessager is implemented by backend errors that carry a message meant
// for the operator.
type userMessager interface {
	UserMessage() string
}

// failureReason picks the operator-facing reason for a failed commit: the
// server's message, else the transport error, else DefaultFailureMessage.
func failureReason(err error) string {
	if err == nil {
		return DefaultFailureMessage
	}
	var um userMessager
	if errors.As(err, &um) {
		if msg := um.UserMessage(); msg != "" {
			return msg
		}
		return DefaultFailureMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return DefaultFailureMessage
}
