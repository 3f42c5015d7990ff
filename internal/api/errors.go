package api

import (
	"errors"
	"fmt"
)

// Error kinds. Compare with errors.Is.
var (
	ErrFetch    = errors.New("fetch failed")
	ErrNotFound = errors.New("not found")
	ErrSave     = errors.New("save failed")
	ErrDelete   = errors.New("delete failed")
	ErrAuth     = errors.New("authentication failed")
	ErrProfile  = errors.New("profile update failed")
	ErrNetwork  = errors.New("network error")
)

// Error is returned when the API answered with a non-2xx status.
// Message is the fixed, user-facing text for the operation.
type Error struct {
	Kind       error
	Message    string
	StatusCode int
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

// NetworkError is returned when no usable response was received: the
// request failed in transport or the body could not be decoded.
type NetworkError struct {
	Resource string
	Op       string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: network error: %v", e.Resource, e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

func (e *NetworkError) Is(target error) bool { return target == ErrNetwork }

// IsNetworkError reports whether err came from the transport rather than
// from an API status code.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
