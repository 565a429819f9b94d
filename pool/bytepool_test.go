package pool_test

import (
	"bytes"
	"testing"

	"github.com/momentics/hioload-enc/pool"
)

func TestBytePoolCopyInto(t *testing.T) {
	bp := pool.NewBytePool(256)
	src := []byte("compressed chunk")
	got := bp.CopyInto(src)
	if !bytes.Equal(got, src) {
		t.Errorf("CopyInto = %q, want %q", got, src)
	}
	// Mutating the source must not affect the copy.
	src[0] = 'X'
	if got[0] == 'X' {
		t.Error("CopyInto aliased the source buffer")
	}
	bp.PutBuffer(got)
}

func TestBytePoolReuse(t *testing.T) {
	bp := pool.NewBytePool(128)
	b1 := bp.GetBuffer()
	if cap(b1) < 128 {
		t.Errorf("buffer capacity = %d, want >= 128", cap(b1))
	}
	bp.PutBuffer(append(b1, 1, 2, 3))
	b2 := bp.GetBuffer()
	if len(b2) != 0 {
		t.Errorf("reused buffer length = %d, want 0", len(b2))
	}
}
