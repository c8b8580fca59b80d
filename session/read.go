// File: session/read.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Inbound path: the flow-controlled read/decode loop. At most one read is
// outstanding; it is re-armed after each completion unless the server-side
// flow limit is engaged, in which case the release path re-arms it.

package session

import (
	"go.uber.org/zap"

	"github.com/momentics/aiosock/api"
)

// readFromChannel decodes whatever the read buffer holds, dispatches every
// complete unit, repositions the buffer for the next fill, and arms the next
// read unless flow-limited.
func (s *Session) readFromChannel() {
	if s.IsInvalid() {
		return
	}
	buf := s.readBuf
	buf.Flip()
	for buf.HasRemaining() {
		before := buf.Remaining()
		unit, err := s.cfg.Protocol.Decode(buf, s)
		if err != nil {
			s.log.Warn("protocol decode failed", zap.Error(err))
			s.Close()
			return
		}
		if unit == nil {
			break
		}
		s.dispatch(unit, before-buf.Remaining())
	}

	switch {
	case !buf.HasRemaining():
		// Everything decoded: reuse the full capacity.
		buf.Clear()
	case buf.Position() > 0:
		// Partial frame left behind a consumed prefix: move it to the front.
		buf.Compact()
	default:
		// Nothing consumed, frame still incomplete: append after it.
		buf.MarkAppend()
	}

	if s.cfg.Role == api.RoleServer && s.queue.bytes() > int64(s.cfg.FlowLimitLine) {
		s.flowLimited.Store(true)
		sharedMetrics().flowLimitEngaged.Inc()
		return
	}
	s.armRead()
}

// tryReleaseFlowLimit re-arms the suspended read once queued outbound bytes
// fall below the release line. Runs on the write completion path.
func (s *Session) tryReleaseFlowLimit() {
	if s.cfg.Role != api.RoleServer {
		return
	}
	if s.queue.bytes() < int64(s.cfg.ReleaseLine) && s.flowLimited.CompareAndSwap(true, false) {
		sharedMetrics().flowLimitReleased.Inc()
		s.armRead()
	}
}

// armRead submits the next single-shot read over the repositioned buffer.
func (s *Session) armRead() {
	if s.IsInvalid() {
		return
	}
	s.channel.Read(s.readBuf, s.onReadComplete)
}

// onReadComplete resumes the decode loop after an async read.
func (s *Session) onReadComplete(n int, err error) {
	if err != nil {
		s.log.Debug("channel read finished", zap.Error(err))
		s.Close()
		return
	}
	sharedMetrics().bytesIn.Add(float64(n))
	s.readFromChannel()
}
