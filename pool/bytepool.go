// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>

package pool

import "sync"

// BytePool recycles byte buffers for callers that copy compressed output
// out of the scoped lock window. Buffers grow to fit and are reused.
type BytePool struct {
	size int
	p    sync.Pool
}

// NewBytePool creates a pool of buffers with the given initial capacity.
func NewBytePool(size int) *BytePool {
	b := &BytePool{size: size}
	b.p.New = func() any {
		buf := make([]byte, 0, size)
		return &buf
	}
	return b
}

// GetBuffer returns an empty buffer from the pool.
func (b *BytePool) GetBuffer() []byte {
	return (*b.p.Get().(*[]byte))[:0]
}

// PutBuffer returns a buffer to the pool.
func (b *BytePool) PutBuffer(buf []byte) {
	buf = buf[:0]
	b.p.Put(&buf)
}

// CopyInto appends src to a pooled buffer and returns it. The caller owns
// the result until PutBuffer.
func (b *BytePool) CopyInto(src []byte) []byte {
	return append(b.GetBuffer(), src...)
}
