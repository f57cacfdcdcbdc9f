package transport

import (
	"errors"
	"fmt"
)

// ErrQueryInURI rejects a uri carrying its own query string. Its values
// would go on the wire without being signed; pass them as query instead.
var ErrQueryInURI = errors.New("uri must not contain a query string")

// Error is a connection or I/O failure while performing a request.
type Error struct {
	Method string
	URI    string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.URI, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// MalformedResponseError reports a response that lacks an expected field.
type MalformedResponseError struct {
	Field string
	Body  string
}

func (e *MalformedResponseError) Error() string {
	return fmt.Sprintf("malformed response: missing %q in %s", e.Field, truncate(e.Body, 200))
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
