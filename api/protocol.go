// File: api/protocol.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Protocol codec, processor, and filter capability sets consumed by the
// session engine. All are injected at construction; the engine owns none
// of their state and is protocol-agnostic.

package api

import "github.com/momentics/aiosock/buffer"

// Protocol converts between wire bytes and decoded units.
type Protocol interface {
	// Decode attempts to extract one complete unit from the read buffer
	// window. It returns (nil, nil) when the buffered bytes do not yet form
	// a complete unit, leaving the position untouched, and consumes exactly
	// the unit's bytes otherwise. A non-nil error marks the inbound stream
	// as unrecoverable and closes the session.
	Decode(buf *buffer.Buffer, s Session) (any, error)

	// Encode serializes a unit into a read-ready buffer.
	Encode(msg any, s Session) (*buffer.Buffer, error)
}

// Processor handles each decoded unit. Errors are routed to the filter
// failure hooks and never close the session.
type Processor interface {
	Process(s Session, unit any) error
}

// SessionWatcher is optionally implemented by a Processor to observe
// session lifecycle edges.
type SessionWatcher interface {
	SessionOpened(s Session)
	SessionClosed(s Session)
}

// Filter is a pre-process/process/failure hook applied to every decoded
// unit, in registration order.
type Filter interface {
	// ReadFilter runs unconditionally for each decoded unit with the
	// number of buffer bytes the unit consumed.
	ReadFilter(s Session, unit any, consumed int)

	// ProcessFilter runs before the processor. A non-nil error short-
	// circuits the chain and triggers the failure hooks.
	ProcessFilter(s Session, unit any) error

	// ProcessFail is invoked on every filter, in registration order, when
	// a ProcessFilter or the processor failed.
	ProcessFail(s Session, unit any, err error)
}
