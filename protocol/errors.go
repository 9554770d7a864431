package protocol

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks. The typed errors below match them.
var (
	ErrChecksumMismatch   = errors.New("checksum mismatch")
	ErrMalformed          = errors.New("malformed frame")
	ErrUnexpectedResponse = errors.New("unexpected response")
	ErrPayloadTooLarge    = errors.New("payload too large")
)

// ChecksumError indicates that the CRC computed over a received frame does
// not match the CRC the frame carries.
type ChecksumError struct {
	Computed uint16
	Received uint16
}

func (e *ChecksumError) Error() string {
	return fmt.Sprintf("checksum mismatch: computed 0x%04X, frame carries 0x%04X", e.Computed, e.Received)
}

// Is reports whether target is ErrChecksumMismatch.
func (e *ChecksumError) Is(target error) bool {
	return target == ErrChecksumMismatch
}

// MalformedError indicates a receive buffer that cannot hold the frame its
// header declares.
type MalformedError struct {
	// Declared is the payload length from the length byte (-1 if missing)
	Declared int

	// Received is the number of bytes in the buffer
	Received int
}

func (e *MalformedError) Error() string {
	if e.Declared < 0 {
		return fmt.Sprintf("malformed frame: got %d bytes, need at least %d for the header", e.Received, HeaderSize)
	}
	if e.Declared > MaxDataSize {
		return fmt.Sprintf("malformed frame: declared length %d exceeds maximum %d", e.Declared, MaxDataSize)
	}
	return fmt.Sprintf("malformed frame: declared length %d needs %d bytes, got %d",
		e.Declared, e.Declared+MinFrameSize, e.Received)
}

// Is reports whether target is ErrMalformed.
func (e *MalformedError) Is(target error) bool {
	return target == ErrMalformed
}

// UnexpectedResponseError indicates a valid frame that is not the reply the
// issued command expects.
type UnexpectedResponseError struct {
	Want Signature
	Got  Signature
}

func (e *UnexpectedResponseError) Error() string {
	if e.Got.Code&ErrorFlag == ErrorFlag {
		return fmt.Sprintf("device rejected command: got error response %s, want %s", e.Got, e.Want)
	}
	return fmt.Sprintf("unexpected response: got %s, want %s", e.Got, e.Want)
}

// Is reports whether target is ErrUnexpectedResponse.
func (e *UnexpectedResponseError) Is(target error) bool {
	return target == ErrUnexpectedResponse
}

// PayloadTooLargeError indicates an attempt to encode more than MaxDataSize bytes.
type PayloadTooLargeError struct {
	Size int
	Max  int
}

func (e *PayloadTooLargeError) Error() string {
	return fmt.Sprintf("payload length %d exceeds maximum %d bytes", e.Size, e.Max)
}

// Is reports whether target is ErrPayloadTooLarge.
func (e *PayloadTooLargeError) Is(target error) bool {
	return target == ErrPayloadTooLarge
}

// ValueRangeError indicates a command argument outside the range the
// device accepts.
type ValueRangeError struct {
	Field string
	Value int
	Min   int
	Max   int
}

func (e *ValueRangeError) Error() string {
	return fmt.Sprintf("%s %d is out of range: valid range is %d-%d", e.Field, e.Value, e.Min, e.Max)
}

// IsFrameError reports whether err is one of the receive-side failures that
// a retry can recover from: checksum mismatch, malformed frame or
// unexpected response.
func IsFrameError(err error) bool {
	return errors.Is(err, ErrChecksumMismatch) ||
		errors.Is(err, ErrMalformed) ||
		errors.Is(err, ErrUnexpectedResponse)
}

func checkRange(field string, value, min, max int) error {
	if value < min || value > max {
		return &ValueRangeError{Field: field, Value: value, Min: min, Max: max}
	}
	return nil
}
