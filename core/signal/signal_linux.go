// File: core/signal/signal_linux.go
//go:build linux

//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Linux completion signal backed by an eventfd. A read consumes the
// counter, giving the auto-reset semantics the dispatch ring relies on.

package signal

import (
	"encoding/binary"
	"fmt"
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-enc/api"
)

type eventSignal struct {
	fd int
}

func newSignal() (api.CompletionSignal, error) {
	fd, err := unix.Eventfd(0, unix.EFD_CLOEXEC)
	if err != nil {
		return nil, fmt.Errorf("eventfd create: %w", err)
	}
	return &eventSignal{fd: fd}, nil
}

// Wait blocks until the driver writes the eventfd counter.
func (s *eventSignal) Wait() error {
	var buf [8]byte
	for {
		_, err := unix.Read(s.fd, buf[:])
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return fmt.Errorf("eventfd read: %w", err)
		}
		return nil
	}
}

// WaitTimeout polls the eventfd for readability, then consumes the
// counter. Expiry leaves the signal untouched.
func (s *eventSignal) WaitTimeout(d time.Duration) error {
	deadline := time.Now().Add(d)
	for {
		remaining := time.Until(deadline)
		if remaining < 0 {
			remaining = 0
		}
		fds := []unix.PollFd{{Fd: int32(s.fd), Events: unix.POLLIN}}
		n, err := unix.Poll(fds, int(remaining.Milliseconds()))
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return fmt.Errorf("eventfd poll: %w", err)
		}
		if n == 0 {
			return api.ErrSignalTimeout
		}
		return s.Wait()
	}
}

// Set increments the eventfd counter, waking the waiter. Exposed for
// software driver implementations; hardware drivers write the raw fd.
func (s *eventSignal) Set() error {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], 1)
	for {
		_, err := unix.Write(s.fd, buf[:])
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return fmt.Errorf("eventfd write: %w", err)
		}
		return nil
	}
}

// Raw returns the file descriptor placed into the submission record.
func (s *eventSignal) Raw() uintptr { return uintptr(s.fd) }

func (s *eventSignal) Close() error {
	return unix.Close(s.fd)
}
