// File: encoder/builder.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Session builder: validates codec/preset against driver capabilities,
// allocates the per-slot driver resources and splits the dispatch ring
// into its two accessor halves.

package encoder

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/momentics/hioload-enc/api"
	"github.com/momentics/hioload-enc/control"
	"github.com/momentics/hioload-enc/core/ring"
)

// Builder assembles an encode session over a device and driver pair.
type Builder struct {
	device api.Device
	driver api.Driver

	codec     api.Codec
	codecSet  bool
	profile   api.CodecProfile
	preset    api.EncodePreset
	presetSet bool
	tuning    api.TuningInfo
	capacity  int
	repeatCSD bool
	metrics   *control.MetricsRegistry
}

// NewBuilder creates a builder with the default pipeline depth.
func NewBuilder(device api.Device, driver api.Driver) *Builder {
	return &Builder{
		device:   device,
		driver:   driver,
		profile:  api.ProfileAutoselect,
		capacity: ring.DefaultCapacity,
	}
}

// WithCodec selects the compression standard. Required.
func (b *Builder) WithCodec(c api.Codec) *Builder {
	b.codec = c
	b.codecSet = true
	return b
}

// WithCodecProfile selects a profile within the codec. Defaults to
// autoselect.
func (b *Builder) WithCodecProfile(p api.CodecProfile) *Builder {
	b.profile = p
	return b
}

// WithEncodePreset selects the speed/quality preset. Required.
func (b *Builder) WithEncodePreset(p api.EncodePreset) *Builder {
	b.preset = p
	b.presetSet = true
	return b
}

// WithTuningInfo biases the preset toward a usage scenario.
func (b *Builder) WithTuningInfo(t api.TuningInfo) *Builder {
	b.tuning = t
	return b
}

// WithCapacity overrides the pipeline depth. Must be positive.
func (b *Builder) WithCapacity(n int) *Builder {
	b.capacity = n
	return b
}

// WithRepeatCodecData emits codec parameters inline with every frame, for
// streams whose receivers can join mid-stream.
func (b *Builder) WithRepeatCodecData() *Builder {
	b.repeatCSD = true
	return b
}

// WithMetrics attaches a registry that receives pipeline counters.
func (b *Builder) WithMetrics(reg *control.MetricsRegistry) *Builder {
	b.metrics = reg
	return b
}

// Build creates the session and returns its producer and consumer halves.
// The input half is handed to the submitting goroutine, the output half to
// the draining goroutine; neither half may be shared.
func (b *Builder) Build(width, height uint32, format api.BufferFormat) (*Input, *Output, error) {
	if !b.codecSet {
		return nil, nil, api.ErrCodecNotSet
	}
	if !b.presetSet {
		return nil, nil, api.ErrPresetNotSet
	}
	if b.capacity <= 0 {
		return nil, nil, fmt.Errorf("pipeline capacity must be positive, got %d", b.capacity)
	}
	if err := b.checkSupport(); err != nil {
		return nil, nil, err
	}

	textures, err := b.device.CreateTextureBuffer(width, height, format, uint32(b.capacity))
	if err != nil {
		return nil, nil, fmt.Errorf("create texture buffer: %w", err)
	}

	r := ring.New(b.capacity)
	if err := b.bindSlots(r, textures); err != nil {
		b.unwindSlots(r)
		return nil, nil, err
	}

	producer, consumer := r.Split(b.driver)
	session := uuid.New()
	if b.metrics != nil {
		b.metrics.Set("session_id", session.String())
		b.metrics.Set("codec", b.codec.String())
		b.metrics.Set("pipeline", r.Stats())
	}

	in := &Input{
		producer:        producer,
		ring:            r,
		device:          b.device,
		driver:          b.driver,
		textures:        textures,
		session:         session,
		metrics:         b.metrics,
		repeatCodecData: b.repeatCSD,
	}
	out := &Output{
		consumer: consumer,
		ring:     r,
		driver:   b.driver,
		session:  session,
		metrics:  b.metrics,
	}
	return in, out, nil
}

func (b *Builder) checkSupport() error {
	codecs, err := b.driver.SupportedCodecs()
	if err != nil {
		return api.NewError(api.ErrCodeInternal, "enumerate codecs", err)
	}
	if !containsCodec(codecs, b.codec) {
		return api.ErrUnsupportedCodec
	}
	presets, err := b.driver.SupportedPresets(b.codec)
	if err != nil {
		return api.NewError(api.ErrCodeInternal, "enumerate presets", err)
	}
	if !containsPreset(presets, b.preset) {
		return api.ErrUnsupportedPreset
	}
	return nil
}

// bindSlots attaches the registered input, output buffer and completion
// signal each slot owns for the ring's lifetime.
func (b *Builder) bindSlots(r *ring.Ring, tex api.Texture) error {
	for i := 0; i < r.Capacity(); i++ {
		s := r.Slot(api.SlotIndex(i))
		res, err := b.driver.RegisterResource(tex, uint32(i))
		if err != nil {
			return api.NewError(api.ErrCodeRegister, "register input resource", err)
		}
		s.Registered = res
		out, err := b.driver.CreateBitstreamBuffer()
		if err != nil {
			return api.NewError(api.ErrCodeInternal, "create bitstream buffer", err)
		}
		s.Output = out
		sig, err := b.driver.NewSignal()
		if err != nil {
			return api.NewError(api.ErrCodeSignal, "create completion signal", err)
		}
		s.Signal = sig
	}
	return nil
}

// unwindSlots releases whatever bindSlots managed to allocate.
func (b *Builder) unwindSlots(r *ring.Ring) {
	for i := 0; i < r.Capacity(); i++ {
		s := r.Slot(api.SlotIndex(i))
		if s.Registered != 0 {
			_ = b.driver.UnregisterResource(s.Registered)
			s.Registered = 0
		}
		if s.Output != 0 {
			_ = b.driver.DestroyBitstreamBuffer(s.Output)
			s.Output = 0
		}
		if s.Signal != nil {
			_ = s.Signal.Close()
			s.Signal = nil
		}
	}
}

func containsCodec(list []api.Codec, c api.Codec) bool {
	for _, v := range list {
		if v == c {
			return true
		}
	}
	return false
}

func containsPreset(list []api.EncodePreset, p api.EncodePreset) bool {
	for _, v := range list {
		if v == p {
			return true
		}
	}
	return false
}
