// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types and error handling utilities for hioload-enc library.

package api

import "fmt"

// Common errors used across the library.
var (
	// ErrEndOfStream is the distinguished terminal condition: the producer
	// has submitted its end-of-stream marker and no further bitstream
	// output will be delivered. Not a failure.
	ErrEndOfStream = fmt.Errorf("end of stream")

	// ErrCapacityViolation indicates more in-flight slot indices than the
	// ring capacity. Broken internal invariant, never retried.
	ErrCapacityViolation = fmt.Errorf("dispatch ring capacity violation")

	ErrRingClosed        = fmt.Errorf("dispatch ring is closed")
	ErrSlotPoisoned      = fmt.Errorf("slot is poisoned after a failed completion wait")
	ErrSignalWait        = fmt.Errorf("completion signal wait failed")
	ErrSignalTimeout     = fmt.Errorf("completion signal wait timed out")
	ErrCodecNotSet       = fmt.Errorf("codec needs to be set first")
	ErrPresetNotSet      = fmt.Errorf("encode preset is needed to build the encoder")
	ErrUnsupportedCodec  = fmt.Errorf("the driver does not support the codec")
	ErrUnsupportedPreset = fmt.Errorf("the driver does not support the encode preset for the codec")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeSubmit
	ErrCodeLock
	ErrCodeUnlock
	ErrCodeMap
	ErrCodeUnmap
	ErrCodeRegister
	ErrCodeSignal
	ErrCodeInternal
)

// Error represents a structured error with code and context, used to wrap
// failures propagated verbatim from the driver collaborator.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

// Unwrap exposes the underlying driver failure for errors.Is/As.
func (e *Error) Unwrap() error { return e.Cause }

// NewError creates a new structured error wrapping a driver failure.
func NewError(code ErrorCode, message string, cause error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}
