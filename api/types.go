// File: api/types.go
// Author: momentics <momentics@gmail.com>
//
// Shared API-level type declarations, DTOs, and constants.

package api

// SlotIndex identifies one slot of the dispatch ring. Indices are fixed for
// the ring's lifetime; slots are reused, never reallocated.
type SlotIndex int

// SlotState enumerates the lifecycle state of a dispatch-ring slot.
// A slot cycles FREE -> SUBMITTED -> LOCKED -> FREE. SlotPoisoned is a
// terminal state entered after a failed completion wait; a poisoned slot
// is never reused and the pipeline must be torn down.
type SlotState int32

const (
	SlotFree SlotState = iota
	SlotSubmitted
	SlotLocked
	SlotPoisoned
)

func (s SlotState) String() string {
	switch s {
	case SlotFree:
		return "free"
	case SlotSubmitted:
		return "submitted"
	case SlotLocked:
		return "locked"
	case SlotPoisoned:
		return "poisoned"
	default:
		return "unknown"
	}
}

// RegisteredResource is an opaque driver handle for an input resource
// registered with the hardware encoder. Owned by the driver.
type RegisteredResource uintptr

// MappedInput is an opaque driver handle for a registered resource mapped
// into the hardware's internal addressing for exactly one submission.
type MappedInput uintptr

// OutputBuffer is an opaque driver handle for a hardware-allocated
// bitstream buffer. Owned by the ring for its entire lifetime.
type OutputBuffer uintptr

// PicFlags carries per-submission picture flags. The flags are only good
// for one frame.
type PicFlags uint32

const (
	// PicFlagForceIDR forces the frame to be encoded as an IDR picture.
	PicFlagForceIDR PicFlags = 1 << iota
	// PicFlagOutputCodecData emits codec parameters inline in the bitstream.
	PicFlagOutputCodecData
	// PicFlagEndOfStream marks the terminal submission. No input or output
	// handles are attached to it.
	PicFlagEndOfStream
)

// PictureType describes the picture kind the driver reports for a locked
// bitstream chunk.
type PictureType int

const (
	PictureUnknown PictureType = iota
	PictureI
	PictureP
	PictureB
	PictureIDR
)

func (p PictureType) String() string {
	switch p {
	case PictureI:
		return "I"
	case PictureP:
		return "P"
	case PictureB:
		return "B"
	case PictureIDR:
		return "IDR"
	default:
		return "unknown"
	}
}

// Bitstream is the locked, read-only view of one compressed output chunk.
// It is valid only for the duration of the consume callback that received
// it; callers that need the payload longer must copy it out.
type Bitstream struct {
	Data       []byte
	Timestamp  uint64
	FrameIndex uint64
	Picture    PictureType
}

// Submission is the record handed to the driver for one frame. The slot's
// completion signal raw handle rides along so the driver can flip it when
// the hardware finishes the frame.
type Submission struct {
	Input       MappedInput
	Output      OutputBuffer
	Signal      uintptr
	Timestamp   uint64
	Flags       PicFlags
	EndOfStream bool
}

// PipelineStats is a snapshot of dispatch-ring counters.
type PipelineStats struct {
	Submitted uint64 // frames accepted by the driver and published
	Delivered uint64 // frames handed to the consumer callback
	InFlight  int    // submitted but not yet released
	Capacity  int
}
