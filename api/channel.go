// File: api/channel.go
// Author: momentics <momentics@gmail.com>
//
// Defines the completion-based duplex channel abstraction the session engine
// drives. Implementations may wrap net.Conn, in-memory pipes, or any other
// byte stream capable of single-shot asynchronous transfers.

package api

import "github.com/momentics/aiosock/buffer"

// CompletionHandler resumes session logic after a single-shot async transfer.
// n is the number of bytes moved through the buffer window; err is non-nil
// when the transfer failed or the peer went away.
type CompletionHandler func(n int, err error)

// Channel is an exclusively owned full-duplex transport handle.
//
// Read and Write operate on the buffer's current window, advance its
// position by the transferred count, and then invoke done exactly once.
// The engine guarantees at most one outstanding operation per direction,
// so implementations need no internal queuing.
type Channel interface {
	// Read fills the buffer window with inbound bytes.
	Read(buf *buffer.Buffer, done CompletionHandler)

	// Write drains the buffer window to the peer. Partial writes are
	// permitted; the engine resubmits the remainder.
	Write(buf *buffer.Buffer, done CompletionHandler)

	// Close tears the transport down. Closing is terminal and aborts any
	// in-flight operation at the runtime level.
	Close() error
}
