package display

import (
	"errors"
	"fmt"
)

// ErrRetriesExhausted is matched by RetriesExhaustedError.
var ErrRetriesExhausted = errors.New("retries exhausted")

// TransportError indicates that the underlying transport failed.
// Transport errors end the operation immediately and are never retried.
type TransportError struct {
	// Op is the transport step that failed: "write", "flush" or "read"
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// RetriesExhaustedError indicates that every attempt of a read failed.
// It unwraps to the error of the last attempt.
type RetriesExhaustedError struct {
	Op       string
	Attempts int
	Last     error
}

func (e *RetriesExhaustedError) Error() string {
	return fmt.Sprintf("%s: no valid response after %d attempts: %v", e.Op, e.Attempts, e.Last)
}

// Is reports whether target is ErrRetriesExhausted.
func (e *RetriesExhaustedError) Is(target error) bool {
	return target == ErrRetriesExhausted
}

func (e *RetriesExhaustedError) Unwrap() error {
	return e.Last
}

// errNoResponse fails an attempt that saw no reply byte in time.
var errNoResponse = errors.New("no response from device")
