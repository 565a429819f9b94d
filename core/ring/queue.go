// File: core/ring/queue.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Bounded blocking FIFO of slot indices. This is the ordering channel:
// indices come out in exactly the order they were pushed, and a push past
// capacity is a broken invariant, not a condition to wait out.

package ring

import (
	"sync"

	"github.com/eapache/queue"

	"github.com/momentics/hioload-enc/api"
)

type indexQueue struct {
	mu       sync.Mutex
	nonEmpty *sync.Cond
	fifo     *queue.Queue
	capacity int
	closed   bool
}

func newIndexQueue(capacity int) *indexQueue {
	iq := &indexQueue{
		fifo:     queue.New(),
		capacity: capacity,
	}
	iq.nonEmpty = sync.NewCond(&iq.mu)
	return iq
}

// push appends an index. More queued indices than ring capacity means the
// slot protocol has been violated, so the error is fatal and never retried.
func (iq *indexQueue) push(idx api.SlotIndex) error {
	iq.mu.Lock()
	defer iq.mu.Unlock()
	if iq.closed {
		return api.ErrRingClosed
	}
	if iq.fifo.Length() >= iq.capacity {
		return api.ErrCapacityViolation
	}
	iq.fifo.Add(idx)
	iq.nonEmpty.Signal()
	return nil
}

// pop blocks until an index is available. After close, remaining indices
// are still drained in order; only an empty closed queue errors.
func (iq *indexQueue) pop() (api.SlotIndex, error) {
	iq.mu.Lock()
	defer iq.mu.Unlock()
	for iq.fifo.Length() == 0 && !iq.closed {
		iq.nonEmpty.Wait()
	}
	if iq.fifo.Length() == 0 {
		return 0, api.ErrRingClosed
	}
	return iq.fifo.Remove().(api.SlotIndex), nil
}

func (iq *indexQueue) close() {
	iq.mu.Lock()
	iq.closed = true
	iq.nonEmpty.Broadcast()
	iq.mu.Unlock()
}
