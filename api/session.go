// File: api/session.go
// Package api defines the capability surfaces of the aiosock session engine.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package api

import "github.com/momentics/aiosock/buffer"

// Status is the lifecycle state of a session. Transitions are monotonic:
// Enabled -> Closing -> Closed, or Enabled -> Closed directly.
type Status int32

const (
	StatusEnabled Status = iota
	StatusClosing
	StatusClosed
)

// String returns the status name for logging.
func (s Status) String() string {
	switch s {
	case StatusEnabled:
		return "enabled"
	case StatusClosing:
		return "closing"
	case StatusClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// Role distinguishes server-side sessions, which apply inbound flow control,
// from client-side sessions, which never do.
type Role int

const (
	RoleServer Role = iota
	RoleClient
)

// Session is one connection's state machine as seen by protocols, filters,
// and processors.
type Session interface {
	// ID returns the process-unique, monotonically assigned session id.
	ID() int64

	// Status returns the current lifecycle state.
	Status() Status

	// IsInvalid reports whether the session no longer accepts IO.
	IsInvalid() bool

	// Write enqueues an outbound buffer whose window spans the payload.
	// It blocks while the write queue is full and returns ErrSessionClosed
	// if the session is or becomes invalid. The buffer is owned by the
	// session after a nil return.
	Write(buf *buffer.Buffer) error

	// WriteMessage encodes msg through the session protocol and enqueues
	// the result.
	WriteMessage(msg any) error

	// Close closes the underlying channel immediately. Idempotent.
	Close()

	// CloseWhenDrained marks the session Closing; the channel is closed
	// once the write queue has fully drained.
	CloseWhenDrained()

	// Attr returns the value stored under key, if any.
	Attr(key string) (any, bool)

	// SetAttr stores a value under key. The store is allocated on first use.
	SetAttr(key string, value any)

	// RemoveAttr deletes key from the store.
	RemoveAttr(key string)
}
