// File: pool/bytepool.go
// Author: momentics <momentics@gmail.com>
//
// Size-classed BytePool backed by sync.Pool. Buffers are bucketed by
// power-of-two capacity so a released slice can serve any later request of
// the same class or smaller.

package pool

import (
	"sync"

	"github.com/momentics/aiosock/api"
)

const (
	minClassBits = 6  // 64 B
	maxClassBits = 22 // 4 MiB
)

// BytePool implements api.BytePool with power-of-two size classes.
type BytePool struct {
	classes [maxClassBits - minClassBits + 1]sync.Pool
}

// NewBytePool creates an empty pool.
func NewBytePool() *BytePool {
	return &BytePool{}
}

var _ api.BytePool = (*BytePool)(nil)

// Acquire returns a slice of exactly n bytes, reusing pooled storage of the
// matching size class when available. Requests above the largest class fall
// back to plain allocation.
func (p *BytePool) Acquire(n int) []byte {
	c, ok := classFor(n)
	if !ok {
		return make([]byte, n)
	}
	if v := p.classes[c].Get(); v != nil {
		return v.([]byte)[:n]
	}
	return make([]byte, n, 1<<(c+minClassBits))
}

// Release returns buf to its size class. Slices whose capacity is not an
// exact class size are dropped and left to the GC.
func (p *BytePool) Release(buf []byte) {
	c, ok := classFor(cap(buf))
	if !ok || cap(buf) != 1<<(c+minClassBits) {
		return
	}
	p.classes[c].Put(buf[:cap(buf)]) //nolint:staticcheck // slices are pooled by value on purpose
}

// classFor maps a byte count to the smallest class that can hold it.
func classFor(n int) (int, bool) {
	if n <= 0 {
		return 0, true
	}
	for c := 0; c <= maxClassBits-minClassBits; c++ {
		if n <= 1<<(c+minClassBits) {
			return c, true
		}
	}
	return 0, false
}
