// File: core/ring/ring.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package ring

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/momentics/hioload-enc/api"
)

// DefaultCapacity is the pipeline depth used when the caller does not pick
// one. Eight in-flight frames match the hardware's own queue depth.
const DefaultCapacity = 8

// Ring owns the slot array and the ordering queue. Slots are created once
// and reused for the ring's whole lifetime.
type Ring struct {
	mu       sync.Mutex
	freed    *sync.Cond
	slots    []Slot
	ordering *indexQueue

	// submissions counts published frames; the next write target is always
	// slot (submissions mod capacity).
	submissions uint64
	closed      bool
	split       bool

	published atomic.Uint64
	delivered atomic.Uint64
}

// New allocates a ring of fixed capacity. Capacity must be positive.
func New(capacity int) *Ring {
	if capacity <= 0 {
		panic("ring capacity must be positive")
	}
	r := &Ring{
		slots:    make([]Slot, capacity),
		ordering: newIndexQueue(capacity),
	}
	r.freed = sync.NewCond(&r.mu)
	for i := range r.slots {
		r.slots[i].index = api.SlotIndex(i)
	}
	return r
}

// Capacity returns the fixed pipeline depth.
func (r *Ring) Capacity() int { return len(r.slots) }

// Slot returns the slot at idx. The caller must hold the slot through the
// producer/consumer protocol; the ring never checks external aliasing.
func (r *Ring) Slot(idx api.SlotIndex) *Slot {
	return &r.slots[idx]
}

// Split hands out the single producer/consumer handle pair. Handle
// uniqueness is what makes the slot protocol lock-free, so a second split
// is a programming error.
func (r *Ring) Split(drv api.Driver) (*Producer, *Consumer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.split {
		panic("dispatch ring already split")
	}
	r.split = true
	return &Producer{ring: r, driver: drv}, &Consumer{ring: r}
}

// AcquireForWrite blocks until the round-robin target slot is FREE and
// reserves it for the producer. This is the backpressure point: with
// capacity submissions outstanding the target slot is still SUBMITTED or
// LOCKED and the producer waits here.
func (r *Ring) AcquireForWrite() (api.SlotIndex, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx := api.SlotIndex(r.submissions % uint64(len(r.slots)))
	s := &r.slots[idx]
	for s.state != api.SlotFree && s.state != api.SlotPoisoned && !r.closed {
		r.freed.Wait()
	}
	if r.closed {
		return 0, api.ErrRingClosed
	}
	if s.state == api.SlotPoisoned {
		return 0, api.ErrSlotPoisoned
	}
	s.state = api.SlotSubmitted
	return idx, nil
}

// Publish pushes the slot index into the ordering queue, making it visible
// to the consumer. Overflow here means Release/Abort accounting is broken.
func (r *Ring) Publish(idx api.SlotIndex) error {
	if err := r.ordering.push(idx); err != nil {
		return err
	}
	r.mu.Lock()
	r.submissions++
	r.mu.Unlock()
	r.published.Add(1)
	return nil
}

// TakeForRead blocks until the ordering queue yields the next index.
// Delivery order is exactly publish order.
func (r *Ring) TakeForRead() (api.SlotIndex, error) {
	return r.ordering.pop()
}

// LockForRead transitions the slot to LOCKED once its completion signal
// has fired and the consumer holds the output for caller inspection.
func (r *Ring) LockForRead(idx api.SlotIndex) {
	r.transition(idx, api.SlotSubmitted, api.SlotLocked)
	r.delivered.Add(1)
}

// Release returns the slot to FREE and wakes a producer blocked on it.
// Called only after unlock and unmap have both completed.
func (r *Ring) Release(idx api.SlotIndex) {
	r.mu.Lock()
	s := &r.slots[idx]
	if s.state != api.SlotLocked && s.state != api.SlotSubmitted {
		r.mu.Unlock()
		panic(fmt.Sprintf("release of slot %d in state %s", idx, s.state))
	}
	s.state = api.SlotFree
	r.freed.Broadcast()
	r.mu.Unlock()
}

// Abort rolls a reserved slot back to FREE after a failed submission. No
// index was published, so the consumer never sees the slot.
func (r *Ring) Abort(idx api.SlotIndex) {
	r.transitionBroadcast(idx, api.SlotSubmitted, api.SlotFree)
}

// Poison marks a slot permanently unusable after a completion-wait
// failure. The slot's resources are in an indeterminate state; the
// pipeline is stalled and must be torn down.
func (r *Ring) Poison(idx api.SlotIndex) {
	r.mu.Lock()
	r.slots[idx].state = api.SlotPoisoned
	r.freed.Broadcast()
	r.mu.Unlock()
}

// Close wakes all blocked handles. Indices already published remain
// drainable so the consumer can finish in-flight work.
func (r *Ring) Close() error {
	r.mu.Lock()
	r.closed = true
	r.freed.Broadcast()
	r.mu.Unlock()
	r.ordering.close()
	return nil
}

// Stats returns a snapshot of pipeline counters.
func (r *Ring) Stats() api.PipelineStats {
	r.mu.Lock()
	inFlight := 0
	for i := range r.slots {
		if st := r.slots[i].state; st == api.SlotSubmitted || st == api.SlotLocked {
			inFlight++
		}
	}
	r.mu.Unlock()
	return api.PipelineStats{
		Submitted: r.published.Load(),
		Delivered: r.delivered.Load(),
		InFlight:  inFlight,
		Capacity:  len(r.slots),
	}
}

// State reports the slot's lifecycle state. Diagnostic only.
func (r *Ring) State(idx api.SlotIndex) api.SlotState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slots[idx].state
}

func (r *Ring) transition(idx api.SlotIndex, from, to api.SlotState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &r.slots[idx]
	if s.state != from {
		panic(fmt.Sprintf("slot %d: bad transition %s -> %s", idx, s.state, to))
	}
	s.state = to
}

func (r *Ring) transitionBroadcast(idx api.SlotIndex, from, to api.SlotState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := &r.slots[idx]
	if s.state != from {
		panic(fmt.Sprintf("slot %d: bad transition %s -> %s", idx, s.state, to))
	}
	s.state = to
	r.freed.Broadcast()
}
