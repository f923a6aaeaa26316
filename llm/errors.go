package llm

import (
	"errors"
	"fmt"
)

var (
	// ErrRequestFailed matches any RequestFailedError.
	ErrRequestFailed = errors.New("completion request failed")
	// ErrTransport matches any TransportError.
	ErrTransport = errors.New("completion transport error")
)

// RequestFailedError means the endpoint answered, but not with a reply:
// either a non-success status or a body carrying a provider error.
type RequestFailedError struct {
	StatusCode int
	Status     string
	Detail     string
}

func (e *RequestFailedError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("completion request failed: %s", e.Status)
	}
	return fmt.Sprintf("completion request failed: %s: %s", e.Status, e.Detail)
}

func (e *RequestFailedError) Is(target error) bool {
	return target == ErrRequestFailed
}

// TransportError means no usable response was received.
type TransportError struct {
	Endpoint string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("completion transport error [%s]: %v", e.Endpoint, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func (e *TransportError) Is(target error) bool {
	return target == ErrTransport
}
