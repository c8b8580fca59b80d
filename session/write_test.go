// File: session/write_test.go
// Author: momentics <momentics@gmail.com>
//
// Write path: coalescing, single-flight serialization, ordering, and the
// partial-write leftover handling.

package session

import (
	"bytes"
	"errors"
	"runtime"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/momentics/aiosock/api"
	"github.com/momentics/aiosock/buffer"
)

func patternBuf(marker byte, n int) *buffer.Buffer {
	p := make([]byte, n)
	for i := range p {
		p[i] = marker
	}
	return buffer.Wrap(p)
}

// Buffers of 10, 20 and 5 bytes enqueued behind an in-flight write come out
// as a single 35-byte submission.
func TestCoalesceSmallBuffers(t *testing.T) {
	ch := newFakeChannel()
	reg := NewRegistry()
	s := mustOpen(t, reg, ch, testConfig(&recProcessor{}))

	require.NoError(t, s.Write(patternBuf(0xF0, 1))) // primer, held in flight
	require.NoError(t, s.Write(patternBuf(0xAA, 10)))
	require.NoError(t, s.Write(patternBuf(0xBB, 20)))
	require.NoError(t, s.Write(patternBuf(0xCC, 5)))

	ch.completeWrite(-1)
	require.Len(t, ch.submissions, 2)
	merged := ch.submissions[1]
	require.Len(t, merged, 35)
	require.Equal(t, bytes.Repeat([]byte{0xAA}, 10), merged[:10])
	require.Equal(t, bytes.Repeat([]byte{0xBB}, 20), merged[10:30])
	require.Equal(t, bytes.Repeat([]byte{0xCC}, 5), merged[30:])

	ch.completeWrite(-1)
	require.Equal(t, 0, ch.pendingWrites())
	require.Equal(t, 1, ch.maxInflight)
}

// A freshly coalesced buffer stays within the 32 KiB threshold; a single
// larger buffer passes through whole.
func TestCoalesceThreshold(t *testing.T) {
	ch := newFakeChannel()
	reg := NewRegistry()
	cfg := testConfig(&recProcessor{})
	cfg.WriteQueueCapacity = 64
	s := mustOpen(t, reg, ch, cfg)

	require.NoError(t, s.Write(patternBuf(0x01, 1))) // primer
	for i := 0; i < 40; i++ {
		require.NoError(t, s.Write(patternBuf(byte(i), 1000)))
	}
	ch.completeWrite(-1)
	// 32 x 1000 fit under the threshold; the 33rd would cross it.
	require.Len(t, ch.submissions[1], 32000)

	oversize := patternBuf(0x7F, 40*1024)
	big := mustOpen(t, reg, newFakeChannel(), cfg)
	require.NoError(t, big.Write(oversize))
	bigCh := big.channel.(*fakeChannel)
	require.Len(t, bigCh.submissions, 1)
	require.Len(t, bigCh.submissions[0], 40*1024)
}

// A partial completion leaves the unsent suffix pending; a fitting queued
// buffer is compacted in behind it.
func TestPartialWriteCompaction(t *testing.T) {
	ch := newFakeChannel()
	reg := NewRegistry()
	s := mustOpen(t, reg, ch, testConfig(&recProcessor{}))

	require.NoError(t, s.Write(patternBuf(0x01, 1))) // primer
	require.NoError(t, s.Write(patternBuf(0xAA, 8)))
	require.NoError(t, s.Write(patternBuf(0xBB, 4)))
	ch.completeWrite(-1) // primer done; 12-byte merged submission follows
	require.Len(t, ch.submissions[1], 12)

	require.NoError(t, s.Write(patternBuf(0xCC, 3))) // queued behind the merge
	ch.completeWrite(6)                              // half the merged buffer leaves

	// leftover 6 + appended 3
	require.Len(t, ch.submissions, 3)
	require.Len(t, ch.submissions[2], 9)
	for ch.pendingWrites() > 0 {
		ch.completeWrite(-1)
	}

	want := append(bytes.Repeat([]byte{0x01}, 1), bytes.Repeat([]byte{0xAA}, 8)...)
	want = append(want, bytes.Repeat([]byte{0xBB}, 4)...)
	want = append(want, bytes.Repeat([]byte{0xCC}, 3)...)
	require.Equal(t, want, ch.sentBytes())
}

// Concurrent producers never lose bytes, each producer's frames stay in
// order, and at most one write is in flight throughout.
func TestConcurrentWriteOrdering(t *testing.T) {
	const producers = 8
	const frames = 50

	ch := newFakeChannel()
	reg := NewRegistry()
	cfg := testConfig(&recProcessor{})
	cfg.WriteQueueCapacity = 4
	s := mustOpen(t, reg, ch, cfg)

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(id byte) {
			defer wg.Done()
			for i := 0; i < frames; i++ {
				if err := s.Write(buffer.Wrap([]byte{id, byte(i)})); err != nil {
					t.Errorf("write failed: %v", err)
					return
				}
			}
		}(byte(p))
	}

	total := producers * frames * 2
	for len(ch.sentBytes()) < total {
		if ch.pendingWrites() == 0 {
			runtime.Gosched()
			continue
		}
		ch.completeWrite(-1)
	}
	wg.Wait()

	stream := ch.sentBytes()
	require.Len(t, stream, total)
	next := make([]int, producers)
	for i := 0; i < len(stream); i += 2 {
		id, seq := int(stream[i]), int(stream[i+1])
		require.Equal(t, next[id], seq, "producer %d out of order", id)
		next[id]++
	}
	require.Equal(t, 1, ch.maxInflight)
}

// A failed write completion force-closes the session and later writes are
// rejected.
func TestWriteFailureClosesSession(t *testing.T) {
	ch := newFakeChannel()
	reg := NewRegistry()
	s := mustOpen(t, reg, ch, testConfig(&recProcessor{}))

	require.NoError(t, s.Write(patternBuf(0x01, 4)))
	ch.failWrite(errors.New("broken pipe"))

	require.Equal(t, api.StatusClosed, s.Status())
	require.ErrorIs(t, s.Write(patternBuf(0x02, 4)), api.ErrSessionClosed)
}

// A producer blocked on a full queue is released by the draining side, not
// deadlocked by it.
func TestBlockedProducerReleasedByDrain(t *testing.T) {
	ch := newFakeChannel()
	reg := NewRegistry()
	cfg := testConfig(&recProcessor{})
	cfg.WriteQueueCapacity = 2
	s := mustOpen(t, reg, ch, cfg)

	require.NoError(t, s.Write(patternBuf(0x01, 1))) // in flight
	require.NoError(t, s.Write(patternBuf(0x02, 1)))
	require.NoError(t, s.Write(patternBuf(0x03, 1))) // queue now full

	blocked := make(chan error, 1)
	go func() { blocked <- s.Write(patternBuf(0x04, 1)) }()

	ch.completeWrite(-1) // drains the queue, freeing the producer
	require.NoError(t, <-blocked)
	for ch.pendingWrites() > 0 {
		ch.completeWrite(-1)
	}
	require.Len(t, ch.sentBytes(), 4)
}

// A producer blocked on a full queue gets an error, not a silent drop, when
// the session closes underneath it.
func TestBlockedProducerFailsOnClose(t *testing.T) {
	ch := newFakeChannel()
	reg := NewRegistry()
	cfg := testConfig(&recProcessor{})
	cfg.WriteQueueCapacity = 1
	s := mustOpen(t, reg, ch, cfg)

	require.NoError(t, s.Write(patternBuf(0x01, 1))) // in flight
	require.NoError(t, s.Write(patternBuf(0x02, 1))) // fills the queue

	blocked := make(chan error, 1)
	go func() { blocked <- s.Write(patternBuf(0x03, 1)) }()

	s.Close()
	require.ErrorIs(t, <-blocked, api.ErrSessionClosed)
}
