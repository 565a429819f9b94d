// File: encoder/output.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package encoder

import (
	"time"

	"github.com/google/uuid"

	"github.com/momentics/hioload-enc/api"
	"github.com/momentics/hioload-enc/control"
	"github.com/momentics/hioload-enc/core/ring"
)

// Output is the consumer half of an encode session. Single-owner: exactly
// one goroutine drains it. Frames come out in exactly the order they were
// submitted, whatever order the hardware finished them in.
type Output struct {
	consumer *ring.Consumer
	ring     *ring.Ring
	driver   api.Driver
	session  uuid.UUID
	metrics  *control.MetricsRegistry
}

// SessionID identifies the encode session in stats and logs.
func (o *Output) SessionID() uuid.UUID { return o.session }

// WaitForOutput blocks for the next frame in submission order, locks its
// bitstream and invokes consume with the read-only view. Unlock and unmap
// run on every exit path, including when consume fails, and the slot is
// released only after both complete.
//
// The end-of-stream submission surfaces as api.ErrEndOfStream with no
// bitstream locked.
func (o *Output) WaitForOutput(consume func(*api.Bitstream) error) error {
	err := o.consumer.Receive(o.scoped(consume))
	o.publishStats()
	return err
}

// WaitForOutputTimeout bounds the completion wait. Expiry returns
// api.ErrSignalTimeout; the next call waits the same slot again, so
// ordering is preserved.
func (o *Output) WaitForOutputTimeout(consume func(*api.Bitstream) error, d time.Duration) error {
	err := o.consumer.ReceiveTimeout(o.scoped(consume), d)
	o.publishStats()
	return err
}

// scoped wraps consume with the lock/unlock and unmap discipline.
func (o *Output) scoped(consume func(*api.Bitstream) error) func(*ring.Slot) error {
	return func(s *ring.Slot) error {
		bs, lerr := o.driver.LockBitstream(s.Output)
		if lerr != nil {
			// The lock never happened but the input mapping still must
			// not leak.
			o.unmap(s)
			return api.NewError(api.ErrCodeLock, "lock bitstream", lerr)
		}
		cerr := consume(bs)
		uerr := o.driver.UnlockBitstream(s.Output)
		merr := o.unmap(s)

		if cerr != nil {
			return cerr
		}
		if uerr != nil {
			return api.NewError(api.ErrCodeUnlock, "unlock bitstream", uerr)
		}
		if merr != nil {
			return api.NewError(api.ErrCodeUnmap, "unmap input resource", merr)
		}
		return nil
	}
}

func (o *Output) unmap(s *ring.Slot) error {
	if s.Mapped == 0 {
		return nil
	}
	err := o.driver.UnmapInput(s.Mapped)
	s.Mapped = 0
	return err
}

// Stats returns a snapshot of pipeline counters.
func (o *Output) Stats() api.PipelineStats { return o.ring.Stats() }

// Shutdown tears the session down: the ring is closed and every slot's
// driver resources are released. Cleanup runs to completion even when a
// step fails; the first error is returned.
//
// Call Shutdown after draining to api.ErrEndOfStream. Shutting down while
// slots are still SUBMITTED leaves their input mappings un-released: the
// hardware may still be reading them, and the library deliberately does
// not force-unmap behind the driver's back.
func (o *Output) Shutdown() error {
	_ = o.ring.Close()
	var first error
	keep := func(err error) {
		if err != nil && first == nil {
			first = err
		}
	}
	for i := 0; i < o.ring.Capacity(); i++ {
		s := o.ring.Slot(api.SlotIndex(i))
		if s.Registered != 0 {
			keep(o.driver.UnregisterResource(s.Registered))
			s.Registered = 0
		}
		if s.Output != 0 {
			keep(o.driver.DestroyBitstreamBuffer(s.Output))
			s.Output = 0
		}
		if s.Signal != nil {
			keep(s.Signal.Close())
			s.Signal = nil
		}
	}
	return first
}

func (o *Output) publishStats() {
	if o.metrics != nil {
		o.metrics.Set("pipeline", o.ring.Stats())
	}
}
