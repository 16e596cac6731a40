package portal

import (
	"errors"
	"fmt"
)

// Common portal client errors
var (
	// ErrAuthenticationFailed is returned when the login call reached the
	// portal but the portal rejected the credentials (no userid field in
	// the response). It is the only error the client propagates to callers;
	// every other operational failure degrades to an empty result.
	ErrAuthenticationFailed = errors.New("portal authentication failed")
)

// TransportError is a network or HTTP-level failure talking to the portal.
// The response body, when present, is carried for diagnostics: the portal
// reports most protocol errors in the body of a non-2xx response.
type TransportError struct {
	// Endpoint is the portal endpoint path that failed.
	Endpoint string

	// StatusCode is the HTTP status, or 0 when the request never
	// completed.
	StatusCode int

	// Body is the raw response body, if one was received.
	Body string

	// Err is the underlying error, if any.
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("portal: request to %s failed with status %d", e.Endpoint, e.StatusCode)
	}
	return fmt.Sprintf("portal: request to %s failed: %v", e.Endpoint, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// AuthError wraps ErrAuthenticationFailed with the portal's own error text.
type AuthError struct {
	// Reason is the portal-supplied error message, or a generic message
	// when the portal returned none.
	Reason string
}

// Error implements the error interface.
func (e *AuthError) Error() string {
	return fmt.Sprintf("portal: authentication failed: %s", e.Reason)
}

// Is reports that an AuthError matches ErrAuthenticationFailed.
func (e *AuthError) Is(target error) bool {
	return target == ErrAuthenticationFailed
}
