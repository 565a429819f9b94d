// File: api/signal.go
// Package api defines the completion-signal contract.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import "time"

// CompletionSignal is the one-shot waitable primitive attached to each
// dispatch-ring slot. The driver sets it when the hardware finishes the
// slot's work; the consumer waits on it exactly once per submission.
//
// The signal is auto-reset: a successful wait consumes the signaled state,
// arming the signal for the slot's next submission.
type CompletionSignal interface {
	// Wait blocks until the driver sets the signal. Indefinite wait is the
	// documented default for the consumer side.
	Wait() error

	// WaitTimeout blocks at most d. Expiry returns ErrSignalTimeout; the
	// signal stays armed and the same slot must be waited again.
	WaitTimeout(d time.Duration) error

	// Raw returns the OS-level handle placed into the hardware submission
	// record so the driver can set the signal.
	Raw() uintptr

	// Close releases the underlying OS object.
	Close() error
}
