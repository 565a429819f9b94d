// Package ring_test exercises the full producer/consumer pipeline.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package ring_test

import (
	"errors"
	"testing"
	"time"

	"github.com/momentics/hioload-enc/api"
	"github.com/momentics/hioload-enc/core/ring"
	"github.com/momentics/hioload-enc/fake"
)

// brokenSignal fails every wait, simulating a lost kernel event object.
type brokenSignal struct{}

func (brokenSignal) Wait() error                     { return errors.New("wait on invalid handle") }
func (brokenSignal) WaitTimeout(time.Duration) error { return errors.New("wait on invalid handle") }
func (brokenSignal) Raw() uintptr                    { return 0 }
func (brokenSignal) Close() error                    { return nil }

// TestPipeline_WaitFailurePoisonsSlot verifies a completion-wait failure
// (not a timeout) leaves the slot unusable and stalls the pipeline.
func TestPipeline_WaitFailurePoisonsSlot(t *testing.T) {
	drv := fake.NewDriver()
	r := ring.New(2)
	r.Slot(0).Signal = brokenSignal{}
	sig, _ := drv.NewSignal()
	r.Slot(1).Signal = sig
	p, c := r.Split(drv)

	submitFrame(t, p, 0)

	err := c.Receive(func(*ring.Slot) error {
		t.Error("consume invoked for a slot whose wait failed")
		return nil
	})
	if err == nil || errors.Is(err, api.ErrSignalTimeout) {
		t.Fatalf("Receive = %v, want wait failure", err)
	}
	if got := r.State(0); got != api.SlotPoisoned {
		t.Errorf("slot 0 state = %s, want poisoned", got)
	}

	// The producer reaching the poisoned slot observes the stall.
	submitFrame(t, p, 1)
	perr := p.Submit(func(api.SlotIndex, *ring.Slot) error { return nil })
	if !errors.Is(perr, api.ErrSlotPoisoned) {
		t.Fatalf("Submit on poisoned slot = %v, want ErrSlotPoisoned", perr)
	}
}

// TestPipeline_ConcurrentOrdering runs producer and consumer on separate
// goroutines with the driver completing frames in reverse batches, and
// checks every frame arrives in submission order.
func TestPipeline_ConcurrentOrdering(t *testing.T) {
	const frames = 64

	drv := fake.NewDriver()
	r := ring.New(ring.DefaultCapacity)
	for i := 0; i < r.Capacity(); i++ {
		sig, err := drv.NewSignal()
		if err != nil {
			t.Fatalf("NewSignal: %v", err)
		}
		r.Slot(api.SlotIndex(i)).Signal = sig
	}
	p, c := r.Split(drv)

	// Completion runs on its own goroutine, newest-first within each
	// pending batch to simulate hardware reordering.
	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
			}
			if n := drv.Pending(); n > 0 {
				drv.Complete(n - 1)
			} else {
				time.Sleep(time.Millisecond)
			}
		}
	}()
	defer close(stop)

	prodErr := make(chan error, 1)
	go func() {
		for n := uint64(0); n < frames; n++ {
			err := p.Submit(func(idx api.SlotIndex, s *ring.Slot) error {
				s.Timestamp = n
				return nil
			})
			if err != nil {
				prodErr <- err
				return
			}
		}
		prodErr <- p.Close()
	}()

	var got []uint64
	for {
		err := c.Receive(func(s *ring.Slot) error {
			got = append(got, s.Timestamp)
			return nil
		})
		if errors.Is(err, api.ErrEndOfStream) {
			break
		}
		if err != nil {
			t.Fatalf("Receive: %v", err)
		}
	}

	if err := <-prodErr; err != nil {
		t.Fatalf("producer: %v", err)
	}
	if len(got) != frames {
		t.Fatalf("received %d frames, want %d", len(got), frames)
	}
	for n := uint64(0); n < frames; n++ {
		if got[n] != n {
			t.Fatalf("frame %d delivered out of order: got %d", n, got[n])
		}
	}
}

// BenchmarkPipeline measures submit-to-receive round trips at full depth.
func BenchmarkPipeline(b *testing.B) {
	drv := fake.NewDriver()
	drv.AutoComplete = true
	r := ring.New(ring.DefaultCapacity)
	for i := 0; i < r.Capacity(); i++ {
		sig, _ := drv.NewSignal()
		r.Slot(api.SlotIndex(i)).Signal = sig
	}
	p, c := r.Split(drv)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		err := p.Submit(func(idx api.SlotIndex, s *ring.Slot) error {
			s.Timestamp = uint64(i)
			return nil
		})
		if err != nil {
			b.Fatal(err)
		}
		if err := c.Receive(func(*ring.Slot) error { return nil }); err != nil {
			b.Fatal(err)
		}
	}
}
