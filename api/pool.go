// File: api/pool.go
// Author: momentics <momentics@gmail.com>
//
// Defines abstract pooling APIs: reusable []byte allocators for read buffers
// and coalesced write buffers.

package api

// BytePool provides reusable []byte buffers for all high-intensity operations.
type BytePool interface {
	// Acquire returns a slice of exactly n usable bytes.
	Acquire(n int) []byte

	// Release returns a buffer to the pool.
	Release(buf []byte)
}
