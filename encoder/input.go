// File: encoder/input.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package encoder

import (
	"github.com/google/uuid"

	"github.com/momentics/hioload-enc/api"
	"github.com/momentics/hioload-enc/control"
	"github.com/momentics/hioload-enc/core/ring"
)

// Input is the producer half of an encode session. It is single-owner:
// exactly one goroutine submits frames through it.
type Input struct {
	producer *ring.Producer
	ring     *ring.Ring
	device   api.Device
	driver   api.Driver
	textures api.Texture
	session  uuid.UUID
	metrics  *control.MetricsRegistry

	// pendingFlags apply to the next frame only; repeatCodecData applies
	// to every frame.
	pendingFlags    api.PicFlags
	repeatCodecData bool
	closed          bool
}

// SessionID identifies the encode session in stats and logs.
func (in *Input) SessionID() uuid.UUID { return in.session }

// EncodeFrame copies the caller's texture into the next slot, maps the
// slot's registered input, and submits the frame to hardware. Blocks under
// backpressure once capacity frames are in flight.
//
// The texture is borrowed only for the duration of this call; the copy
// into the slot-backed buffer is what the hardware reads.
func (in *Input) EncodeFrame(frame api.Texture, timestamp uint64) error {
	if in.closed {
		return api.ErrRingClosed
	}
	flags := in.pendingFlags
	if in.repeatCodecData {
		flags |= api.PicFlagOutputCodecData
	}

	var mapped api.MappedInput
	err := in.producer.Submit(func(idx api.SlotIndex, s *ring.Slot) error {
		if err := in.device.CopyTexture(in.textures, frame, idx); err != nil {
			return api.NewError(api.ErrCodeInternal, "copy texture", err)
		}
		m, err := in.driver.MapInput(s.Registered)
		if err != nil {
			return api.NewError(api.ErrCodeMap, "map input resource", err)
		}
		mapped = m
		s.Mapped = m
		s.Timestamp = timestamp
		s.Flags = flags
		return nil
	})
	if err != nil {
		// The slot was rolled back; if the mapping was already made, it
		// must not outlive the failed submission.
		if mapped != 0 {
			_ = in.driver.UnmapInput(mapped)
		}
		return err
	}

	// Flags are only good for one frame.
	in.pendingFlags = 0
	in.publishStats()
	return nil
}

// ForceIDROnNext forces the next frame to be encoded as an IDR picture and
// emits codec parameters inline in the bitstream.
func (in *Input) ForceIDROnNext() {
	in.pendingFlags = api.PicFlagForceIDR | api.PicFlagOutputCodecData
}

// UpdateAverageBitrate reconfigures rate control mid-stream.
func (in *Input) UpdateAverageBitrate(bitrate, vbvBufferSize uint32) error {
	return in.driver.UpdateAverageBitrate(bitrate, vbvBufferSize)
}

// CodecData returns the codec-specific data (SPS/PPS or VPS/SPS/PPS) for
// the session configuration, for callers that mux out-of-band.
func (in *Input) CodecData() ([]byte, error) {
	return in.driver.SequenceParams()
}

// Stats returns a snapshot of pipeline counters.
func (in *Input) Stats() api.PipelineStats { return in.ring.Stats() }

// EndStream submits the terminal end-of-stream marker so the consumer
// drains and observes api.ErrEndOfStream instead of hanging. Idempotent;
// later EncodeFrame calls fail with api.ErrRingClosed.
func (in *Input) EndStream() error {
	if in.closed {
		return nil
	}
	in.closed = true
	err := in.producer.Close()
	in.publishStats()
	return err
}

// Close ends the stream if the caller has not done so explicitly.
func (in *Input) Close() error { return in.EndStream() }

func (in *Input) publishStats() {
	if in.metrics != nil {
		in.metrics.Set("pipeline", in.ring.Stats())
	}
}
