// File: session/doc.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

// Package session implements the per-connection engine of the aiosock
// transport: a full-duplex byte-stream state machine that coalesces and
// serializes outbound writes, drives the protocol codec over a reusable
// inbound buffer, applies ordered filters to each decoded unit, and throttles
// a fast producer with hysteresis-based flow control.
//
// IO is completion-based. Every read or write is a single-shot asynchronous
// submission against an api.Channel; the completion handler re-enters the
// engine on whatever goroutine the channel chooses. A binary write permit
// keeps exactly one write in flight per session, and the read loop arms at
// most one read, so no additional locking protects the buffers themselves.
package session
