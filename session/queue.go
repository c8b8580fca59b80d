// File: session/queue.go
// Author: momentics <momentics@gmail.com>
//
// Bounded outbound FIFO shared by many producers and the single flush
// consumer. Producers block while the queue is full; the consumer never
// blocks here, so a stalled producer can never stall the drain that would
// free its slot. Closing the queue wakes every waiter with an error instead
// of silently dropping their buffers.

package session

import (
	"sync"

	"github.com/eapache/queue"
	"go.uber.org/atomic"

	"github.com/momentics/aiosock/api"
	"github.com/momentics/aiosock/buffer"
)

// writeQueue is a blocking, byte-accounted FIFO of read-ready buffers.
type writeQueue struct {
	mu       sync.Mutex
	notFull  *sync.Cond
	fifo     *queue.Queue
	capacity int
	closed   bool

	// queuedBytes tracks the payload bytes currently enqueued; read lock-free
	// by the flow controller.
	queuedBytes atomic.Int64
}

func newWriteQueue(capacity int) *writeQueue {
	q := &writeQueue{
		fifo:     queue.New(),
		capacity: capacity,
	}
	q.notFull = sync.NewCond(&q.mu)
	return q
}

// put appends b, blocking while the queue is at capacity. Returns
// api.ErrSessionClosed if the queue is closed before space frees.
func (q *writeQueue) put(b *buffer.Buffer) error {
	q.mu.Lock()
	for q.fifo.Length() >= q.capacity && !q.closed {
		q.notFull.Wait()
	}
	if q.closed {
		q.mu.Unlock()
		return api.ErrSessionClosed
	}
	q.fifo.Add(b)
	q.queuedBytes.Add(int64(b.Remaining()))
	q.mu.Unlock()
	return nil
}

// peek returns the head without removing it, or nil when empty.
func (q *writeQueue) peek() *buffer.Buffer {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.fifo.Length() == 0 {
		return nil
	}
	return q.fifo.Peek().(*buffer.Buffer)
}

// poll removes and returns the head, or nil when empty. Frees one producer.
func (q *writeQueue) poll() *buffer.Buffer {
	q.mu.Lock()
	if q.fifo.Length() == 0 {
		q.mu.Unlock()
		return nil
	}
	b := q.fifo.Remove().(*buffer.Buffer)
	q.queuedBytes.Sub(int64(b.Remaining()))
	q.notFull.Signal()
	q.mu.Unlock()
	return b
}

// length returns the number of queued buffers.
func (q *writeQueue) length() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.fifo.Length()
}

// bytes returns the queued payload byte count.
func (q *writeQueue) bytes() int64 {
	return q.queuedBytes.Load()
}

// close marks the queue dead and wakes every blocked producer.
func (q *writeQueue) close() {
	q.mu.Lock()
	q.closed = true
	q.notFull.Broadcast()
	q.mu.Unlock()
}
