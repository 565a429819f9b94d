// Package ring_test tests the dispatch-ring mechanics.
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

// newPipeline builds a ring of the given capacity with fake signals bound
// to every slot and returns the split handles plus the driver.
func newPipeline(t *testing.T, capacity int) (*ring.Ring, *ring.Producer, *ring.Consumer, *fake.Driver) {
	t.Helper()
	drv := fake.NewDriver()
	r := ring.New(capacity)
	for i := 0; i < capacity; i++ {
		sig, err := drv.NewSignal()
		if err != nil {
			t.Fatalf("NewSignal: %v", err)
		}
		r.Slot(api.SlotIndex(i)).Signal = sig
	}
	p, c := r.Split(drv)
	return r, p, c, drv
}

func submitFrame(t *testing.T, p *ring.Producer, n uint64) {
	t.Helper()
	err := p.Submit(func(idx api.SlotIndex, s *ring.Slot) error {
		s.Timestamp = n
		return nil
	})
	if err != nil {
		t.Fatalf("Submit(%d): %v", n, err)
	}
}

// TestRing_RoundRobinAcquire checks the write target is always
// (submissions mod capacity).
func TestRing_RoundRobinAcquire(t *testing.T) {
	r, p, c, drv := newPipeline(t, 4)
	drv.AutoComplete = true

	for round := 0; round < 3; round++ {
		for want := 0; want < 4; want++ {
			err := p.Submit(func(idx api.SlotIndex, s *ring.Slot) error {
				if int(idx) != want {
					t.Errorf("acquired slot %d, want %d", idx, want)
				}
				return nil
			})
			if err != nil {
				t.Fatalf("Submit: %v", err)
			}
			if err := c.Receive(func(s *ring.Slot) error { return nil }); err != nil {
				t.Fatalf("Receive: %v", err)
			}
		}
	}
	if got := r.Stats().Submitted; got != 12 {
		t.Errorf("Submitted = %d, want 12", got)
	}
}

// TestRing_OrderingUnderAdversarialCompletion is the capacity-2 scenario:
// frames A and B submitted, B's signal set first, retrieval must still be
// A then B because the consumer waits the exact slot named by the next
// queued index.
func TestRing_OrderingUnderAdversarialCompletion(t *testing.T) {
	_, p, c, drv := newPipeline(t, 2)

	submitFrame(t, p, 'A')
	submitFrame(t, p, 'B')

	// Complete B first.
	if !drv.Complete(1) {
		t.Fatal("Complete(1) found no pending submission")
	}

	// A is still incomplete: the receive must time out rather than hand
	// over B.
	err := c.ReceiveTimeout(func(s *ring.Slot) error {
		t.Errorf("received frame %c before its completion", rune(s.Timestamp))
		return nil
	}, 20*time.Millisecond)
	if !errors.Is(err, api.ErrSignalTimeout) {
		t.Fatalf("ReceiveTimeout = %v, want ErrSignalTimeout", err)
	}

	if !drv.Complete(0) {
		t.Fatal("Complete(0) found no pending submission")
	}

	var got []uint64
	for i := 0; i < 2; i++ {
		if err := c.Receive(func(s *ring.Slot) error {
			got = append(got, s.Timestamp)
			return nil
		}); err != nil {
			t.Fatalf("Receive: %v", err)
		}
	}
	if len(got) != 2 || got[0] != 'A' || got[1] != 'B' {
		t.Errorf("delivery order = %v, want [A B]", got)
	}
}

// TestRing_Backpressure verifies the (C+1)-th submission blocks until a
// retrieval completes, without dropping or overwriting in-flight state.
func TestRing_Backpressure(t *testing.T) {
	_, p, c, drv := newPipeline(t, 2)
	drv.AutoComplete = true

	submitFrame(t, p, 0)
	submitFrame(t, p, 1)

	third := make(chan error, 1)
	go func() {
		third <- p.Submit(func(idx api.SlotIndex, s *ring.Slot) error {
			s.Timestamp = 2
			return nil
		})
	}()

	select {
	case err := <-third:
		t.Fatalf("third submission completed while ring full: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	if err := c.Receive(func(s *ring.Slot) error {
		if s.Timestamp != 0 {
			t.Errorf("first delivery = %d, want 0", s.Timestamp)
		}
		return nil
	}); err != nil {
		t.Fatalf("Receive: %v", err)
	}

	select {
	case err := <-third:
		if err != nil {
			t.Fatalf("third submission failed: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("third submission still blocked after a slot was released")
	}
}

// TestRing_SlotReuseSafety tracks slot state across reuse: a slot must be
// FREE again before it is reacquired for writing.
func TestRing_SlotReuseSafety(t *testing.T) {
	r, p, c, drv := newPipeline(t, 2)
	drv.AutoComplete = true

	for n := uint64(0); n < 6; n++ {
		target := api.SlotIndex(n % 2)
		if got := r.State(target); got != api.SlotFree {
			t.Fatalf("slot %d state before acquire = %s, want free", target, got)
		}
		submitFrame(t, p, n)
		if got := r.State(target); got != api.SlotSubmitted {
			t.Fatalf("slot %d state after submit = %s, want submitted", target, got)
		}
		if err := c.Receive(func(s *ring.Slot) error {
			if got := r.State(target); got != api.SlotLocked {
				t.Errorf("slot %d state during consume = %s, want locked", target, got)
			}
			return nil
		}); err != nil {
			t.Fatalf("Receive: %v", err)
		}
		if got := r.State(target); got != api.SlotFree {
			t.Fatalf("slot %d state after release = %s, want free", target, got)
		}
	}
}

// TestRing_EndOfStream verifies the terminal submission is reported as the
// distinguished condition exactly once per close, with no consume call.
func TestRing_EndOfStream(t *testing.T) {
	_, p, c, drv := newPipeline(t, 2)
	drv.AutoComplete = true

	submitFrame(t, p, 7)
	if err := p.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if err := c.Receive(func(s *ring.Slot) error {
		if s.Timestamp != 7 {
			t.Errorf("delivery = %d, want 7", s.Timestamp)
		}
		return nil
	}); err != nil {
		t.Fatalf("Receive: %v", err)
	}

	err := c.Receive(func(s *ring.Slot) error {
		t.Error("consume invoked for end-of-stream slot")
		return nil
	})
	if !errors.Is(err, api.ErrEndOfStream) {
		t.Fatalf("Receive = %v, want ErrEndOfStream", err)
	}

	// The condition is sticky on later calls.
	if err := c.Receive(func(*ring.Slot) error { return nil }); !errors.Is(err, api.ErrEndOfStream) {
		t.Fatalf("second Receive = %v, want ErrEndOfStream", err)
	}

	// Close is idempotent: no second end-of-stream submission.
	if err := p.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

// TestRing_SubmitFailureRollsBack verifies a failed driver submission
// returns the slot to FREE and publishes nothing.
func TestRing_SubmitFailureRollsBack(t *testing.T) {
	r, p, c, drv := newPipeline(t, 2)

	drv.SubmitErr = errors.New("hardware rejected the frame")
	err := p.Submit(func(idx api.SlotIndex, s *ring.Slot) error {
		s.Timestamp = 1
		return nil
	})
	if err == nil {
		t.Fatal("Submit succeeded despite driver failure")
	}
	if got := r.State(0); got != api.SlotFree {
		t.Errorf("slot 0 state after failed submit = %s, want free", got)
	}
	if got := r.Stats().Submitted; got != 0 {
		t.Errorf("Submitted = %d, want 0", got)
	}

	// Retry with the driver recovered reuses the same slot.
	drv.SubmitErr = nil
	drv.AutoComplete = true
	err = p.Submit(func(idx api.SlotIndex, s *ring.Slot) error {
		if idx != 0 {
			t.Errorf("retry acquired slot %d, want 0", idx)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("retry Submit: %v", err)
	}
	if err := c.Receive(func(*ring.Slot) error { return nil }); err != nil {
		t.Fatalf("Receive: %v", err)
	}
}

// TestRing_ConsumeErrorStillReleases verifies the slot returns to FREE
// even when the consume callback fails.
func TestRing_ConsumeErrorStillReleases(t *testing.T) {
	r, p, c, drv := newPipeline(t, 2)
	drv.AutoComplete = true

	submitFrame(t, p, 3)
	wantErr := errors.New("caller rejected the output")
	if err := c.Receive(func(*ring.Slot) error { return wantErr }); !errors.Is(err, wantErr) {
		t.Fatalf("Receive = %v, want consume error", err)
	}
	if got := r.State(0); got != api.SlotFree {
		t.Errorf("slot 0 state after failed consume = %s, want free", got)
	}
}

// TestRing_CloseUnblocksConsumer verifies a consumer blocked on an empty
// ordering queue errors out on Close instead of hanging.
func TestRing_CloseUnblocksConsumer(t *testing.T) {
	r, _, c, _ := newPipeline(t, 2)

	done := make(chan error, 1)
	go func() {
		done <- c.Receive(func(*ring.Slot) error { return nil })
	}()

	time.Sleep(20 * time.Millisecond)
	if err := r.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	select {
	case err := <-done:
		if !errors.Is(err, api.ErrRingClosed) {
			t.Fatalf("Receive = %v, want ErrRingClosed", err)
		}
	case <-time.After(time.Second):
		t.Fatal("consumer still blocked after Close")
	}
}

// TestRing_Stats checks the counter snapshot.
func TestRing_Stats(t *testing.T) {
	r, p, c, drv := newPipeline(t, 4)
	drv.AutoComplete = true

	for n := uint64(0); n < 3; n++ {
		submitFrame(t, p, n)
	}
	st := r.Stats()
	if st.Submitted != 3 || st.InFlight != 3 || st.Capacity != 4 {
		t.Errorf("stats after submits = %+v", st)
	}

	if err := c.Receive(func(*ring.Slot) error { return nil }); err != nil {
		t.Fatalf("Receive: %v", err)
	}
	st = r.Stats()
	if st.Delivered != 1 || st.InFlight != 2 {
		t.Errorf("stats after one receive = %+v", st)
	}
}
