// File: buffer/buffer.go
// Package buffer implements a position/limit byte buffer for async channel IO.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// A Buffer alternates between two modes over the same backing slice:
// write mode, where the window [pos, lim) is the free space a channel fills,
// and read mode (after Flip), where the window is the unconsumed payload.
// Channels always operate on the current window and advance the position by
// the number of bytes transferred.

package buffer

// Recycler returns a backing slice to its pool. Satisfied by api.BytePool.
type Recycler interface {
	Release(buf []byte)
}

// Buffer is a resliceable byte region with explicit position and limit.
// It is not safe for concurrent use; the session engine guarantees at most
// one in-flight operation per buffer.
type Buffer struct {
	b        []byte
	pos      int
	lim      int
	recycler Recycler
}

// New allocates a fresh buffer of the given capacity in write mode.
func New(capacity int) *Buffer {
	return &Buffer{b: make([]byte, capacity), lim: capacity}
}

// NewFromSlice wraps a pool-acquired slice in write mode. If recycler is
// non-nil, Free returns the slice to it.
func NewFromSlice(p []byte, recycler Recycler) *Buffer {
	return &Buffer{b: p, lim: len(p), recycler: recycler}
}

// Wrap adopts p as an already-filled buffer in read mode: the window spans
// the whole slice.
func Wrap(p []byte) *Buffer {
	return &Buffer{b: p, lim: len(p)}
}

// Cap returns the total capacity of the backing slice.
func (b *Buffer) Cap() int { return len(b.b) }

// Position returns the current position.
func (b *Buffer) Position() int { return b.pos }

// Limit returns the current limit.
func (b *Buffer) Limit() int { return b.lim }

// Remaining returns the size of the current window.
func (b *Buffer) Remaining() int { return b.lim - b.pos }

// HasRemaining reports whether the window is non-empty.
func (b *Buffer) HasRemaining() bool { return b.pos < b.lim }

// Window exposes the active region [pos, lim). In write mode this is the
// free space to fill; in read mode the unconsumed payload.
func (b *Buffer) Window() []byte { return b.b[b.pos:b.lim] }

// Advance moves the position forward by n transferred bytes.
func (b *Buffer) Advance(n int) {
	b.pos += n
	if b.pos > b.lim {
		b.pos = b.lim
	}
}

// Flip switches from write mode to read mode: the bytes written so far
// become the readable window.
func (b *Buffer) Flip() {
	b.lim = b.pos
	b.pos = 0
}

// Clear resets to an empty write-mode buffer over the full capacity.
// The contents are not zeroed.
func (b *Buffer) Clear() {
	b.pos = 0
	b.lim = len(b.b)
}

// Compact moves the unconsumed window to the start of the backing slice and
// leaves the buffer in write mode positioned after the retained bytes.
func (b *Buffer) Compact() {
	n := copy(b.b, b.b[b.pos:b.lim])
	b.pos = n
	b.lim = len(b.b)
}

// MarkAppend switches a read-mode buffer to write mode without disturbing
// its contents: position jumps to the data end, limit opens to capacity.
// Used when a partial frame could not be decoded and must not be overwritten.
func (b *Buffer) MarkAppend() {
	b.pos = b.lim
	b.lim = len(b.b)
}

// Put copies src into the window and advances the position. Returns the
// number of bytes copied, which is less than len(src) if the window is full.
func (b *Buffer) Put(src []byte) int {
	n := copy(b.b[b.pos:b.lim], src)
	b.pos += n
	return n
}

// Free returns the backing slice to its recycler, if any. The buffer must
// not be used afterwards.
func (b *Buffer) Free() {
	if b.recycler != nil {
		b.recycler.Release(b.b)
		b.recycler = nil
	}
	b.b = nil
	b.pos = 0
	b.lim = 0
}
