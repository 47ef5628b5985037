package wix

import "fmt"

// AuthError reports bad or missing credentials. It is fatal to the
// whole migration run.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("wix authentication failed: %s", e.Reason)
}

// NetworkError reports a transport-level failure (timeout, connection).
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("wix %s request failed: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError reports a non-200 response from the Wix API.
type APIError struct {
	Op     string
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("wix %s returned error: %d - %s", e.Op, e.Status, e.Body)
}

// DecodeError reports a malformed JSON payload.
type DecodeError struct {
	Op  string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid JSON response from wix %s: %v", e.Op, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
