// File: core/ring/slot.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package ring

import (
	"github.com/momentics/hioload-enc/api"
)

// Slot is one reusable unit of in-flight state: a registered input handle,
// the mapped input of the current submission, the hardware output buffer,
// the completion signal and the end-of-stream flag.
//
// The exported fields are populated by the producer under exclusive access
// during Submit and read by the consumer after the completion wait. The
// ordering queue is the handoff point, so no field needs its own lock.
type Slot struct {
	index api.SlotIndex
	state api.SlotState // guarded by the ring mutex

	// Registered is the driver handle for this slot's input resource.
	// Bound once at build time, rebound only if the caller swaps the
	// backing texture between submissions.
	Registered api.RegisteredResource

	// Mapped is valid from the producer's map call until the consumer's
	// unmap, for exactly one submission.
	Mapped api.MappedInput

	// Output is the hardware bitstream buffer. Owned by the ring for its
	// entire lifetime.
	Output api.OutputBuffer

	// Signal is reset before each submission and waited on exactly once
	// per submission by the consumer.
	Signal api.CompletionSignal

	Timestamp   uint64
	Flags       api.PicFlags
	EndOfStream bool
}

// Index returns the slot's fixed position in the ring.
func (s *Slot) Index() api.SlotIndex { return s.index }

// submission builds the driver record for the slot's current contents.
// The end-of-stream marker carries no input or output handles.
func (s *Slot) submission() *api.Submission {
	sub := &api.Submission{
		Signal:      s.signalRaw(),
		Timestamp:   s.Timestamp,
		Flags:       s.Flags,
		EndOfStream: s.EndOfStream,
	}
	if !s.EndOfStream {
		sub.Input = s.Mapped
		sub.Output = s.Output
	}
	return sub
}

func (s *Slot) signalRaw() uintptr {
	if s.Signal == nil {
		return 0
	}
	return s.Signal.Raw()
}
