// Package gateapi is the HTTP client for the staff gate endpoints.
//
// Endpoints, relative to the configured base URL:
//
//	GET  /staff/exeat-requests/fast-track/list?type=&page=[&date=]
//	GET  /staff/exeat-requests/fast-track/search?search=&type=
//	POST /staff/exeat-requests/fast-track/execute   {"request_ids": [...]}
//	GET  /staff/gate-events?page=&per_page=&checked=&search=&sort_by=&order=
//	GET  /staff/gate-events/export?checked=[&search=]   (link only)
//
// Every request carries the bearer token, Accept: application/json and a
// fresh X-Request-ID so a console log line can be matched to a server one.
//
// Non-2xx responses become an *APIError holding the server's "message",
// wrapped in ErrUnauthorized for 401/403 and ErrUnexpectedStatus otherwise.
// Client implements fasttrack.Backend.
package gateapi
