package gateapi

import (
	"errors"
	"fmt"
)

var (
	// ErrUnauthorized wraps 401 and 403 responses.
	ErrUnauthorized = errors.New("not authorized")

	// ErrUnexpectedStatus wraps every other non-2xx response.
	ErrUnexpectedStatus = errors.New("unexpected status")
)

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("status %d", e.Status)
	}
	return fmt.Sprintf("status %d: %s", e.Status, e.Message)
}

// UserMessage returns the server's message for display to the operator.
func (e *APIError) UserMessage() string {
	return e.Message
}
