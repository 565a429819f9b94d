// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake implementations for testing and development.
// Provides predictable, controllable behavior for the driver, device and
// completion-signal collaborators.

package fake

import (
	"sync/atomic"
	"time"

	"github.com/momentics/hioload-enc/api"
)

var nextSignalRaw atomic.Uintptr

// Signal is a fake completion signal settable from tests. Auto-reset: a
// successful wait consumes the signaled state.
type Signal struct {
	raw uintptr
	ch  chan struct{}
}

// NewSignal creates a fake signal with a unique raw handle.
func NewSignal() *Signal {
	return &Signal{
		raw: nextSignalRaw.Add(1),
		ch:  make(chan struct{}, 1),
	}
}

// Wait blocks until Set.
func (s *Signal) Wait() error {
	<-s.ch
	return nil
}

// WaitTimeout blocks at most d; expiry leaves the signal armed.
func (s *Signal) WaitTimeout(d time.Duration) error {
	select {
	case <-s.ch:
		return nil
	case <-time.After(d):
		return api.ErrSignalTimeout
	}
}

// Set signals the object. Idempotent until the signal is consumed.
func (s *Signal) Set() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}

// Raw returns the fake handle identifying the signal to the fake driver.
func (s *Signal) Raw() uintptr { return s.raw }

// Close is a no-op.
func (s *Signal) Close() error { return nil }
