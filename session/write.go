// File: session/write.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Outbound path: bounded FIFO enqueue, small-buffer coalescing, and the
// single-flight flush loop re-entered on every write completion.

package session

import (
	"go.uber.org/zap"

	"github.com/momentics/aiosock/api"
	"github.com/momentics/aiosock/buffer"
)

// coalesceThreshold bounds the size of a freshly merged submission. A single
// queued buffer that is already larger passes through untouched.
const coalesceThreshold = 32 * 1024

// Write enqueues an outbound buffer whose window spans the payload and
// kicks the flush loop if no write is in flight. It blocks while the queue
// is full and fails with api.ErrSessionClosed instead of dropping data when
// the session dies underneath it.
func (s *Session) Write(buf *buffer.Buffer) error {
	if s.IsInvalid() {
		return api.ErrSessionClosed
	}
	if err := s.queue.put(buf); err != nil {
		return err
	}
	if s.permit.CompareAndSwap(false, true) {
		s.flush()
	}
	return nil
}

// WriteMessage encodes msg through the session protocol and enqueues it.
func (s *Session) WriteMessage(msg any) error {
	buf, err := s.cfg.Protocol.Encode(msg, s)
	if err != nil {
		return err
	}
	return s.Write(buf)
}

// flush runs while holding the write permit. It submits at most one async
// write and returns; the completion handler re-enters it. Every exit path
// either keeps the permit for the outstanding submission or releases it.
func (s *Session) flush() {
	for {
		if s.Status() == api.StatusClosed {
			s.permit.Store(false)
			return
		}
		pending := s.pending
		next := s.queue.peek()

		if pending == nil && next == nil {
			// A Closing session with a drained queue performs the real
			// close deferred by CloseWhenDrained.
			if s.Status() == api.StatusClosing {
				s.Close()
				s.permit.Store(false)
				return
			}
			s.permit.Store(false)
			// An enqueue may have slipped in after the emptiness check
			// above; retake the permit and retry rather than strand it.
			if s.queue.length() > 0 && s.permit.CompareAndSwap(false, true) {
				continue
			}
			return
		}

		if pending == nil {
			pending = s.coalesce()
		} else if next != nil && next.Remaining() <= pending.Cap()-pending.Remaining() {
			// Leftover bytes plus a head that fits the free space: compact
			// away the already-sent prefix and pack queued buffers in.
			pending.Compact()
			for {
				nb := s.queue.peek()
				if nb == nil || nb.Remaining() > pending.Remaining() {
					break
				}
				nb = s.queue.poll()
				pending.Put(nb.Window())
				nb.Free()
			}
			pending.Flip()
		}

		s.pending = pending
		s.channel.Write(pending, s.onWriteComplete)
		return
	}
}

// coalesce merges queued buffers into one submission. The head is always
// taken; further buffers join only while the running total stays within
// coalesceThreshold.
func (s *Session) coalesce() *buffer.Buffer {
	first := s.queue.poll()
	total := first.Remaining()
	parts := []*buffer.Buffer{first}
	for {
		nb := s.queue.peek()
		if nb == nil || total+nb.Remaining() > coalesceThreshold {
			break
		}
		nb = s.queue.poll()
		total += nb.Remaining()
		parts = append(parts, nb)
	}
	if len(parts) == 1 {
		return first
	}
	out := buffer.NewFromSlice(s.cfg.Pool.Acquire(total), s.cfg.Pool)
	for _, p := range parts {
		out.Put(p.Window())
		p.Free()
	}
	out.Flip()
	sharedMetrics().coalescedWrites.Inc()
	return out
}

// onWriteComplete resumes the flush loop after an async write.
func (s *Session) onWriteComplete(n int, err error) {
	if err != nil {
		s.log.Warn("channel write failed", zap.Error(err))
		s.Close()
		s.permit.Store(false)
		return
	}
	sharedMetrics().bytesOut.Add(float64(n))
	if s.pending != nil && !s.pending.HasRemaining() {
		s.pending.Free()
		s.pending = nil
	}
	s.tryReleaseFlowLimit()
	s.flush()
}
