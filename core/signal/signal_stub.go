// File: core/signal/signal_stub.go
//go:build !linux && !windows

//
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Portable completion signal for platforms without a native waitable
// object. No raw handle exists, so it only serves software drivers.

package signal

import (
	"time"

	"github.com/momentics/hioload-enc/api"
)

type condSignal struct {
	ch chan struct{}
}

func newSignal() (api.CompletionSignal, error) {
	return &condSignal{ch: make(chan struct{}, 1)}, nil
}

func (s *condSignal) Wait() error {
	<-s.ch
	return nil
}

func (s *condSignal) WaitTimeout(d time.Duration) error {
	select {
	case <-s.ch:
		return nil
	case <-time.After(d):
		return api.ErrSignalTimeout
	}
}

func (s *condSignal) Set() error {
	select {
	case s.ch <- struct{}{}:
	default:
		// Already signaled; setting is idempotent until consumed.
	}
	return nil
}

func (s *condSignal) Raw() uintptr { return 0 }

func (s *condSignal) Close() error { return nil }
