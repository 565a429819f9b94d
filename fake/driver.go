// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake hardware encoder driver. Accepted submissions complete only when
// the test says so, which makes completion order, backpressure and error
// paths fully scriptable.

package fake

import (
	"fmt"
	"sync"

	"github.com/momentics/hioload-enc/api"
)

type submission struct {
	record api.Submission
	signal *Signal
	frame  uint64
	done   bool
}

// Driver implements api.Driver in software. The zero value is not usable;
// use NewDriver.
type Driver struct {
	mu         sync.Mutex
	nextHandle uintptr
	signals    map[uintptr]*Signal
	registered map[api.RegisteredResource]bool
	mapped     map[api.MappedInput]api.RegisteredResource
	buffers    map[api.OutputBuffer]bool
	byOutput   map[api.OutputBuffer]*submission
	pending    []*submission
	flags      []api.PicFlags
	frames     uint64
	bitrate    uint32

	// AutoComplete completes every submission the moment it is accepted.
	AutoComplete bool

	// Payload produces the compressed bytes for frame n. Defaults to a
	// short tagged payload.
	Payload func(frame uint64) []byte

	// Injectable failures, returned verbatim by the matching call.
	SubmitErr   error
	LockErr     error
	UnlockErr   error
	MapErr      error
	UnmapErr    error
	RegisterErr error

	// Call counters for release-on-error assertions.
	MapCalls    int
	UnmapCalls  int
	LockCalls   int
	UnlockCalls int
}

// NewDriver creates an empty fake driver.
func NewDriver() *Driver {
	return &Driver{
		signals:    make(map[uintptr]*Signal),
		registered: make(map[api.RegisteredResource]bool),
		mapped:     make(map[api.MappedInput]api.RegisteredResource),
		buffers:    make(map[api.OutputBuffer]bool),
		byOutput:   make(map[api.OutputBuffer]*submission),
	}
}

func (d *Driver) handle() uintptr {
	d.nextHandle++
	return d.nextHandle
}

// RegisterResource hands out an opaque handle for a texture subresource.
func (d *Driver) RegisterResource(tex api.Texture, subresource uint32) (api.RegisteredResource, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.RegisterErr != nil {
		return 0, d.RegisterErr
	}
	res := api.RegisteredResource(d.handle())
	d.registered[res] = true
	return res, nil
}

// UnregisterResource drops a registered handle.
func (d *Driver) UnregisterResource(res api.RegisteredResource) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.registered[res] {
		return fmt.Errorf("unregister of unknown resource %#x", uintptr(res))
	}
	delete(d.registered, res)
	return nil
}

// MapInput maps a registered resource for one submission.
func (d *Driver) MapInput(res api.RegisteredResource) (api.MappedInput, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.MapErr != nil {
		return 0, d.MapErr
	}
	if !d.registered[res] {
		return 0, fmt.Errorf("map of unregistered resource %#x", uintptr(res))
	}
	d.MapCalls++
	in := api.MappedInput(d.handle())
	d.mapped[in] = res
	return in, nil
}

// UnmapInput releases a mapping.
func (d *Driver) UnmapInput(in api.MappedInput) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.UnmapCalls++
	if d.UnmapErr != nil {
		return d.UnmapErr
	}
	if _, ok := d.mapped[in]; !ok {
		return fmt.Errorf("unmap of unmapped input %#x", uintptr(in))
	}
	delete(d.mapped, in)
	return nil
}

// CreateBitstreamBuffer allocates a fake output buffer handle.
func (d *Driver) CreateBitstreamBuffer() (api.OutputBuffer, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := api.OutputBuffer(d.handle())
	d.buffers[out] = true
	return out, nil
}

// DestroyBitstreamBuffer drops an output buffer handle.
func (d *Driver) DestroyBitstreamBuffer(out api.OutputBuffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.buffers[out] {
		return fmt.Errorf("destroy of unknown bitstream buffer %#x", uintptr(out))
	}
	delete(d.buffers, out)
	return nil
}

// Submit accepts one frame (or the end-of-stream marker). Success means
// accepted, not completed: the submission sits in the pending queue until
// a Complete call sets its signal.
func (d *Driver) Submit(sub *api.Submission) error {
	d.mu.Lock()
	if d.SubmitErr != nil {
		err := d.SubmitErr
		d.mu.Unlock()
		return err
	}
	rec := &submission{
		record: *sub,
		signal: d.signals[sub.Signal],
		frame:  d.frames,
	}
	if !sub.EndOfStream {
		d.frames++
		d.byOutput[sub.Output] = rec
		d.flags = append(d.flags, sub.Flags)
	}
	d.pending = append(d.pending, rec)
	auto := d.AutoComplete
	d.mu.Unlock()

	if auto {
		d.CompleteNext()
	}
	return nil
}

// CompleteNext completes the oldest pending submission.
func (d *Driver) CompleteNext() bool {
	return d.complete(0)
}

// Complete completes the i-th pending submission, allowing simulated
// out-of-order hardware completion.
func (d *Driver) Complete(i int) bool {
	return d.complete(i)
}

// CompleteAll completes every pending submission.
func (d *Driver) CompleteAll() {
	for d.CompleteNext() {
	}
}

func (d *Driver) complete(i int) bool {
	d.mu.Lock()
	if i < 0 || i >= len(d.pending) {
		d.mu.Unlock()
		return false
	}
	rec := d.pending[i]
	d.pending = append(d.pending[:i], d.pending[i+1:]...)
	rec.done = true
	sig := rec.signal
	d.mu.Unlock()

	if sig != nil {
		sig.Set()
	}
	return true
}

// SubmitFlags returns the picture flags of every accepted frame, in
// submission order.
func (d *Driver) SubmitFlags() []api.PicFlags {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]api.PicFlags, len(d.flags))
	copy(out, d.flags)
	return out
}

// Pending reports how many accepted submissions are not yet completed.
func (d *Driver) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// LockBitstream exposes the completed frame's payload for an output buffer.
func (d *Driver) LockBitstream(out api.OutputBuffer) (*api.Bitstream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.LockCalls++
	if d.LockErr != nil {
		return nil, d.LockErr
	}
	rec, ok := d.byOutput[out]
	if !ok {
		return nil, fmt.Errorf("lock of bitstream buffer %#x with no submission", uintptr(out))
	}
	pic := api.PictureP
	if rec.frame == 0 || rec.record.Flags&api.PicFlagForceIDR != 0 {
		pic = api.PictureIDR
	}
	return &api.Bitstream{
		Data:       d.payload(rec.frame),
		Timestamp:  rec.record.Timestamp,
		FrameIndex: rec.frame,
		Picture:    pic,
	}, nil
}

// UnlockBitstream releases a locked output buffer.
func (d *Driver) UnlockBitstream(out api.OutputBuffer) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.UnlockCalls++
	if d.UnlockErr != nil {
		return d.UnlockErr
	}
	if _, ok := d.byOutput[out]; !ok {
		return fmt.Errorf("unlock of unknown bitstream buffer %#x", uintptr(out))
	}
	return nil
}

// NewSignal creates a fake completion signal registered with the driver.
func (d *Driver) NewSignal() (api.CompletionSignal, error) {
	s := NewSignal()
	d.mu.Lock()
	d.signals[s.Raw()] = s
	d.mu.Unlock()
	return s, nil
}

// SupportedCodecs lists both fake codecs.
func (d *Driver) SupportedCodecs() ([]api.Codec, error) {
	return []api.Codec{api.CodecH264, api.CodecHevc}, nil
}

// SupportedPresets lists the performance presets.
func (d *Driver) SupportedPresets(c api.Codec) ([]api.EncodePreset, error) {
	return []api.EncodePreset{
		api.PresetP1, api.PresetP2, api.PresetP3, api.PresetP4,
		api.PresetP5, api.PresetP6, api.PresetP7,
	}, nil
}

// UpdateAverageBitrate records the reconfigured rate.
func (d *Driver) UpdateAverageBitrate(bitrate, vbvBufferSize uint32) error {
	d.mu.Lock()
	d.bitrate = bitrate
	d.mu.Unlock()
	return nil
}

// Bitrate returns the last reconfigured average bitrate.
func (d *Driver) Bitrate() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.bitrate
}

// SequenceParams returns canned codec-specific data.
func (d *Driver) SequenceParams() ([]byte, error) {
	return []byte{0x00, 0x00, 0x00, 0x01, 0x67}, nil
}

// MappedCount reports live mappings, for leak assertions.
func (d *Driver) MappedCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.mapped)
}

func (d *Driver) payload(frame uint64) []byte {
	if d.Payload != nil {
		return d.Payload(frame)
	}
	return []byte(fmt.Sprintf("frame-%d", frame))
}
