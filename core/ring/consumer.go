// File: core/ring/consumer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package ring

import (
	"errors"
	"time"

	"github.com/momentics/hioload-enc/api"
)

// Consumer is the single-reader view of the ring. Receive must not be
// called concurrently.
type Consumer struct {
	ring *Ring

	// pending carries a slot whose completion wait timed out. Ordering
	// demands the next receive waits that exact slot again, never
	// whichever completed first.
	pending    api.SlotIndex
	hasPending bool
	eos        bool
}

// Receive pops the next slot index, waits indefinitely on that slot's
// completion signal, and runs consume with the slot locked for reading.
// The slot is released on every exit path once consume returns, including
// when consume fails.
//
// The end-of-stream submission surfaces as api.ErrEndOfStream; no output
// is locked for that slot and every later call returns the same condition.
func (c *Consumer) Receive(consume func(*Slot) error) error {
	return c.receive(consume, -1)
}

// ReceiveTimeout bounds only the completion wait. On expiry the popped
// index is retained and the next call waits the same slot again, so the
// retrieval order is preserved.
func (c *Consumer) ReceiveTimeout(consume func(*Slot) error, d time.Duration) error {
	return c.receive(consume, d)
}

func (c *Consumer) receive(consume func(*Slot) error, d time.Duration) error {
	if c.eos {
		return api.ErrEndOfStream
	}

	var idx api.SlotIndex
	if c.hasPending {
		idx = c.pending
		c.hasPending = false
	} else {
		var err error
		idx, err = c.ring.TakeForRead()
		if err != nil {
			return err
		}
	}

	s := c.ring.Slot(idx)
	if err := c.wait(s, d); err != nil {
		if errors.Is(err, api.ErrSignalTimeout) {
			c.pending = idx
			c.hasPending = true
			return err
		}
		// Signal failure leaves the slot indeterminate: permanent
		// pipeline stall, teardown required.
		c.ring.Poison(idx)
		return api.NewError(api.ErrCodeSignal, "completion wait failed", err)
	}

	if s.EndOfStream {
		c.eos = true
		c.ring.Release(idx)
		return api.ErrEndOfStream
	}

	c.ring.LockForRead(idx)
	err := consume(s)
	c.ring.Release(idx)
	return err
}

func (c *Consumer) wait(s *Slot, d time.Duration) error {
	if s.Signal == nil {
		// Slot without a signal counts as immediately complete.
		return nil
	}
	if d < 0 {
		return s.Signal.Wait()
	}
	return s.Signal.WaitTimeout(d)
}
