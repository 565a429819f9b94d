// File: core/ring/producer.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package ring

import (
	"sync"

	"github.com/momentics/hioload-enc/api"
)

// Producer is the exclusive-writer view of the ring. At most one frame is
// in preparation at a time; Submit must not be called concurrently.
type Producer struct {
	ring   *Ring
	driver api.Driver

	mu     sync.Mutex
	closed bool
}

// Submit acquires the next slot, lets populate bind the input resource and
// submission parameters under exclusive access, hands the work to the
// driver and publishes the slot index.
//
// A populate or driver failure rolls the slot back to FREE and publishes
// nothing; the caller may retry with the same or a different input.
func (p *Producer) Submit(populate func(api.SlotIndex, *Slot) error) error {
	if p.isClosed() {
		return api.ErrRingClosed
	}
	idx, err := p.ring.AcquireForWrite()
	if err != nil {
		return err
	}
	s := p.ring.Slot(idx)
	s.EndOfStream = false
	s.Mapped = 0
	s.Timestamp = 0
	s.Flags = 0

	if err := populate(idx, s); err != nil {
		p.ring.Abort(idx)
		return err
	}
	if err := p.driver.Submit(s.submission()); err != nil {
		p.ring.Abort(idx)
		return api.NewError(api.ErrCodeSubmit, "hardware submission failed", err)
	}
	return p.ring.Publish(idx)
}

// SubmitEndOfStream issues the terminal submission: the end-of-stream flag
// is set and no input or output handles are attached.
func (p *Producer) SubmitEndOfStream() error {
	idx, err := p.ring.AcquireForWrite()
	if err != nil {
		return err
	}
	s := p.ring.Slot(idx)
	s.EndOfStream = true
	s.Mapped = 0
	s.Timestamp = 0
	s.Flags = api.PicFlagEndOfStream

	if err := p.driver.Submit(s.submission()); err != nil {
		p.ring.Abort(idx)
		return api.NewError(api.ErrCodeSubmit, "end-of-stream submission failed", err)
	}
	return p.ring.Publish(idx)
}

// Close issues one final end-of-stream submission so the consumer, once it
// drains the remaining in-flight slots, observes a terminal signal instead
// of hanging forever. Idempotent.
func (p *Producer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()
	return p.SubmitEndOfStream()
}

func (p *Producer) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}
