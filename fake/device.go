// Package fake
// Author: momentics <momentics@gmail.com>
//
// Fake texture-backend device recording copies for assertions.

package fake

import (
	"sync"

	"github.com/momentics/hioload-enc/api"
)

// TextureBuffer is the fake array texture handed out by Device.
type TextureBuffer struct {
	Width  uint32
	Height uint32
	Format api.BufferFormat
	Count  uint32
}

// Device implements api.Device.
type Device struct {
	mu     sync.Mutex
	copies []api.SlotIndex

	// CopyErr is returned verbatim by CopyTexture when set.
	CopyErr error
}

// NewDevice creates an empty fake device.
func NewDevice() *Device { return &Device{} }

// CreateTextureBuffer allocates a fake array texture.
func (d *Device) CreateTextureBuffer(width, height uint32, format api.BufferFormat, count uint32) (api.Texture, error) {
	return &TextureBuffer{Width: width, Height: height, Format: format, Count: count}, nil
}

// CopyTexture records the destination subresource index.
func (d *Device) CopyTexture(dst api.Texture, src api.Texture, index api.SlotIndex) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.CopyErr != nil {
		return d.CopyErr
	}
	d.copies = append(d.copies, index)
	return nil
}

// Copies returns the slot indices copied into, in order.
func (d *Device) Copies() []api.SlotIndex {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]api.SlotIndex, len(d.copies))
	copy(out, d.copies)
	return out
}
