// File: session/session.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Session state, lifecycle transitions, and the lazily allocated attribute
// store. The write and read paths live in write.go and read.go.

package session

import (
	cmap "github.com/orcaman/concurrent-map/v2"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/momentics/aiosock/api"
	"github.com/momentics/aiosock/buffer"
)

// Session is the per-connection engine. Create instances through a Registry.
type Session struct {
	id      int64
	cfg     Config
	channel api.Channel
	log     *zap.Logger

	status atomic.Int32

	// permit is the single-flight write token: held iff a write submission
	// is outstanding or about to be made.
	permit atomic.Bool

	// flowLimited is meaningful only for server sessions.
	flowLimited atomic.Bool

	queue *writeQueue

	// pending is the leftover outbound buffer between write completions.
	// Only the permit holder touches it.
	pending *buffer.Buffer

	// readBuf is the single reusable inbound buffer. Only the read path
	// touches it, and at most one read is outstanding.
	readBuf *buffer.Buffer

	// attrs is allocated on first SetAttr.
	attrs   atomic.Pointer[cmap.ConcurrentMap[string, any]]
	removal func(*Session)
}

var _ api.Session = (*Session)(nil)

func newSession(id int64, channel api.Channel, cfg Config, removal func(*Session)) *Session {
	s := &Session{
		id:      id,
		cfg:     cfg,
		channel: channel,
		log:     cfg.Logger.With(zap.Int64("session_id", id)),
		queue:   newWriteQueue(cfg.WriteQueueCapacity),
		readBuf: buffer.NewFromSlice(cfg.Pool.Acquire(cfg.ReadBufferSize), nil),
		removal: removal,
	}
	s.status.Store(int32(api.StatusEnabled))
	return s
}

// start registers the session with its watcher and enters the read loop.
func (s *Session) start() {
	sharedMetrics().sessionsOpened.Inc()
	if w, ok := s.cfg.Processor.(api.SessionWatcher); ok {
		w.SessionOpened(s)
	}
	s.readFromChannel()
}

// ID returns the process-unique session id.
func (s *Session) ID() int64 { return s.id }

// Status returns the current lifecycle state.
func (s *Session) Status() api.Status {
	return api.Status(s.status.Load())
}

// IsInvalid reports whether the session stopped accepting IO.
func (s *Session) IsInvalid() bool {
	return s.Status() != api.StatusEnabled
}

// Close closes the channel immediately and transitions to Closed.
// Safe to call repeatedly and from any goroutine.
func (s *Session) Close() {
	for {
		st := s.status.Load()
		if st == int32(api.StatusClosed) {
			return
		}
		if s.status.CompareAndSwap(st, int32(api.StatusClosed)) {
			break
		}
	}
	if err := s.channel.Close(); err != nil {
		s.log.Debug("channel close failed", zap.Error(err))
	}
	// Wake producers blocked on a full queue; their Write returns an error.
	s.queue.close()
	if s.removal != nil {
		s.removal(s)
	}
	if w, ok := s.cfg.Processor.(api.SessionWatcher); ok {
		w.SessionClosed(s)
	}
	sharedMetrics().sessionsClosed.Inc()
	s.log.Debug("session closed")
}

// CloseWhenDrained transitions to Closing. If the write queue is already
// empty and the write permit is free, the close happens now; otherwise the
// flush routine performs it once the queue drains.
func (s *Session) CloseWhenDrained() {
	if !s.status.CompareAndSwap(int32(api.StatusEnabled), int32(api.StatusClosing)) {
		return
	}
	if s.queue.length() == 0 && s.permit.CompareAndSwap(false, true) {
		// Nothing queued and nothing in flight: promote to immediate close.
		s.Close()
		s.permit.Store(false)
	}
}

// Attr returns the value stored under key.
func (s *Session) Attr(key string) (any, bool) {
	m := s.attrs.Load()
	if m == nil {
		return nil, false
	}
	return m.Get(key)
}

// SetAttr stores a value, allocating the store on first use.
func (s *Session) SetAttr(key string, value any) {
	m := s.attrs.Load()
	if m == nil {
		fresh := cmap.New[any]()
		if !s.attrs.CompareAndSwap(nil, &fresh) {
			m = s.attrs.Load()
		} else {
			m = &fresh
		}
	}
	m.Set(key, value)
}

// RemoveAttr deletes key from the store.
func (s *Session) RemoveAttr(key string) {
	if m := s.attrs.Load(); m != nil {
		m.Remove(key)
	}
}
