// Package exeat defines the records the gate console reads from the backend:
// students, approved exeat (leave) requests and gate events.
//
// All of these are read-only on the client. The console never edits a
// request; it only queues request ids and asks the backend to apply the
// current mode's action to them.
package exeat

import (
	"fmt"
	"strings"
)

// Mode is the gate action the console is currently performing.
type Mode string

const (
	SignOut Mode = "sign_out"
	SignIn  Mode = "sign_in"
)

// Valid reports whether m is one of the two known modes.
func (m Mode) Valid() bool {
	return m == SignOut || m == SignIn
}

// Other returns the opposite mode.
func (m Mode) Other() Mode {
	if m == SignIn {
		return SignOut
	}
	return SignIn
}

// Label returns the operator-facing name of the mode.
func (m Mode) Label() string {
	switch m {
	case SignOut:
		return "Sign Out"
	case SignIn:
		return "Sign In"
	default:
		return string(m)
	}
}

// ParseMode converts a user supplied string into a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "sign_out", "signout", "out":
		return SignOut, nil
	case "sign_in", "signin", "in":
		return SignIn, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}

// Student is the identity attached to an exeat request.
type Student struct {
	ID       int64   `json:"id"`
	FName    string  `json:"fname"`
	LName    string  `json:"lname"`
	Passport *string `json:"passport"`
	MatricNo string  `json:"matric_no"`
}

// Name returns "first last" with missing parts dropped.
func (s Student) Name() string {
	return strings.TrimSpace(s.FName + " " + s.LName)
}

// Category is the leave category of a request.
type Category struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Request is an approved exeat request. It is the unit of queueing.
type Request struct {
	ID            int64    `json:"id"`
	Student       Student  `json:"student"`
	Category      Category `json:"category"`
	Destination   string   `json:"destination"`
	DepartureDate string   `json:"departure_date"`
	ReturnDate    string   `json:"return_date"`
	UpdatedAt     string   `json:"updated_at"`
	Status        string   `json:"status"`
	ActionType    Mode     `json:"action_type"`
}

// PaginationMeta describes one page of a server-paged listing.
type PaginationMeta struct {
	CurrentPage int `json:"current_page"`
	LastPage    int `json:"last_page"`
	Total       int `json:"total"`
	PerPage     int `json:"per_page"`
}

// GateEvent is one row of the gate sign-out/sign-in report.
type GateEvent struct {
	ID            int64   `json:"id"`
	MatricNo      string  `json:"matric_no"`
	FName         string  `json:"fname"`
	LName         string  `json:"lname"`
	SignoutTime   *string `json:"signout_time"`
	SigninTime    *string `json:"signin_time"`
	DepartureDate *string `json:"departure_date"`
	ReturnDate    *string `json:"return_date"`
}

// IDs returns the ids of requests in order.
func IDs(requests []Request) []int64 {
	ids := make([]int64, len(requests))
	for i, r := range requests {
		ids[i] = r.ID
	}
	return ids
}

// Page is one page of eligible requests.
type Page struct {
	Items []Request
	Meta  PaginationMeta
}
