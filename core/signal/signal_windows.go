// File: core/signal/signal_windows.go
//go:build windows

//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Windows completion signal backed by an auto-reset kernel event object,
// the same primitive the hardware encoder driver signals natively.

package signal

import (
	"fmt"
	"time"

	"golang.org/x/sys/windows"

	"github.com/momentics/hioload-enc/api"
)

type eventSignal struct {
	handle windows.Handle
}

func newSignal() (api.CompletionSignal, error) {
	// Auto-reset, initially non-signaled.
	h, err := windows.CreateEvent(nil, 0, 0, nil)
	if err != nil {
		return nil, fmt.Errorf("create event: %w", err)
	}
	return &eventSignal{handle: h}, nil
}

func (s *eventSignal) Wait() error {
	return s.waitMillis(windows.INFINITE)
}

func (s *eventSignal) WaitTimeout(d time.Duration) error {
	ms := d.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	return s.waitMillis(uint32(ms))
}

func (s *eventSignal) waitMillis(ms uint32) error {
	ev, err := windows.WaitForSingleObject(s.handle, ms)
	if err != nil {
		return fmt.Errorf("wait for event: %w", err)
	}
	switch ev {
	case windows.WAIT_OBJECT_0:
		return nil
	case uint32(windows.WAIT_TIMEOUT):
		return api.ErrSignalTimeout
	default:
		return fmt.Errorf("wait for event: unexpected status %#x", ev)
	}
}

// Set signals the event object. Exposed for software driver
// implementations; hardware drivers signal the raw handle.
func (s *eventSignal) Set() error {
	return windows.SetEvent(s.handle)
}

// Raw returns the event handle placed into the submission record.
func (s *eventSignal) Raw() uintptr { return uintptr(s.handle) }

func (s *eventSignal) Close() error {
	return windows.CloseHandle(s.handle)
}
