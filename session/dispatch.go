// File: session/dispatch.go
// Author: momentics <momentics@gmail.com>
//
// Ordered filter dispatch for decoded units. Failures are contained here:
// nothing thrown by a filter or the processor unwinds past the session
// boundary, and the connection stays open.

package session

import (
	"fmt"

	"go.uber.org/zap"
)

// dispatch routes one decoded unit through the filter chain and processor.
// consumed is the number of read-buffer bytes the unit occupied on the wire.
func (s *Session) dispatch(unit any, consumed int) {
	filters := s.cfg.Filters
	if len(filters) == 0 {
		if err := s.safeProcess(unit); err != nil {
			s.log.Error("processor failed", zap.Error(err))
		}
		return
	}

	for _, f := range filters {
		f.ReadFilter(s, unit, consumed)
	}
	if err := s.runProcessChain(unit); err != nil {
		s.log.Error("unit processing failed", zap.Error(err))
		for _, f := range filters {
			f.ProcessFail(s, unit, err)
		}
	}
}

// runProcessChain runs every ProcessFilter in registration order, then the
// processor. Panics are recovered once and surfaced as the chain error.
func (s *Session) runProcessChain(unit any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in process chain: %v", r)
		}
	}()
	for _, f := range s.cfg.Filters {
		if err := f.ProcessFilter(s, unit); err != nil {
			return err
		}
	}
	return s.cfg.Processor.Process(s, unit)
}

// safeProcess invokes the processor directly with the same panic containment.
func (s *Session) safeProcess(unit any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in processor: %v", r)
		}
	}()
	return s.cfg.Processor.Process(s, unit)
}
