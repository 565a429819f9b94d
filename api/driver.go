// File: api/driver.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// External collaborator contracts. The dispatch ring consumes these as
// opaque capabilities: submission, lock/unlock of output, map/unmap of
// input, resource registration, and completion-signal creation. Vendor
// config records, GUID lookups, and library loading all live behind the
// Driver implementation and are out of scope for this library.

package api

// Texture is an opaque reference to a device texture. Its concrete type is
// defined by the Device implementation.
type Texture any

// Driver is the thin boundary to the hardware encoder. Submit is
// synchronous and returns once the work is accepted, not completed;
// completion is observable only through the slot's CompletionSignal.
type Driver interface {
	// RegisterResource registers one subresource of a texture buffer for
	// hardware access. Called once per slot at build time.
	RegisterResource(tex Texture, subresource uint32) (RegisteredResource, error)
	UnregisterResource(res RegisteredResource) error

	// MapInput associates a registered resource with the hardware's
	// internal addressing for exactly one submission.
	MapInput(res RegisteredResource) (MappedInput, error)
	UnmapInput(in MappedInput) error

	// CreateBitstreamBuffer allocates a hardware output buffer. Owned by
	// the ring for its lifetime and destroyed at teardown.
	CreateBitstreamBuffer() (OutputBuffer, error)
	DestroyBitstreamBuffer(out OutputBuffer) error

	// Submit hands one frame (or the end-of-stream marker) to hardware.
	Submit(sub *Submission) error

	// LockBitstream exposes the compressed bytes of a completed slot. The
	// returned view is valid until UnlockBitstream.
	LockBitstream(out OutputBuffer) (*Bitstream, error)
	UnlockBitstream(out OutputBuffer) error

	// NewSignal creates a completion signal registered with the driver.
	NewSignal() (CompletionSignal, error)

	// SupportedCodecs and SupportedPresets enumerate driver capabilities
	// consulted by the session builder.
	SupportedCodecs() ([]Codec, error)
	SupportedPresets(c Codec) ([]EncodePreset, error)

	// UpdateAverageBitrate reconfigures rate control mid-stream.
	UpdateAverageBitrate(bitrate uint32, vbvBufferSize uint32) error

	// SequenceParams returns the codec-specific data (SPS/PPS or
	// VPS/SPS/PPS) for the current encoder configuration.
	SequenceParams() ([]byte, error)
}

// Device is the texture-backend collaborator.
type Device interface {
	// CreateTextureBuffer allocates an array texture with count
	// subresources, one per dispatch-ring slot.
	CreateTextureBuffer(width, height uint32, format BufferFormat, count uint32) (Texture, error)

	// CopyTexture copies a caller frame into subresource index of the
	// slot-backed texture buffer.
	CopyTexture(dst Texture, src Texture, index SlotIndex) error
}

// GracefulShutdown unifies teardown across pipeline components.
type GracefulShutdown interface {
	// Shutdown stops internal services and releases driver resources.
	Shutdown() error
}
