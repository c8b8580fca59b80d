// Author: momentics <momentics@gmail.com>
// SPDX-License-Identifier: Apache-2.0

// Package transport adapts blocking net.Conn streams to the completion-based
// api.Channel contract: each submission runs as a single-shot goroutine that
// performs one blocking transfer and invokes the continuation.
package transport

import (
	"net"

	"go.uber.org/atomic"

	"github.com/momentics/aiosock/api"
	"github.com/momentics/aiosock/buffer"
)

// NetChannel implements api.Channel over a net.Conn.
type NetChannel struct {
	conn   net.Conn
	closed atomic.Bool
}

// NewNetChannel wraps conn. The channel takes ownership; Close closes conn.
func NewNetChannel(conn net.Conn) *NetChannel {
	return &NetChannel{conn: conn}
}

var _ api.Channel = (*NetChannel)(nil)

// Read fills the buffer window with one blocking read on a fresh goroutine.
func (c *NetChannel) Read(buf *buffer.Buffer, done api.CompletionHandler) {
	go func() {
		n, err := c.conn.Read(buf.Window())
		if n > 0 {
			buf.Advance(n)
		}
		done(n, err)
	}()
}

// Write drains the buffer window with one blocking write on a fresh
// goroutine. net.Conn.Write only short-writes on error, so the session
// rarely sees a partial completion from this adapter.
func (c *NetChannel) Write(buf *buffer.Buffer, done api.CompletionHandler) {
	go func() {
		n, err := c.conn.Write(buf.Window())
		if n > 0 {
			buf.Advance(n)
		}
		done(n, err)
	}()
}

// Close closes the underlying connection once.
func (c *NetChannel) Close() error {
	if !c.closed.CompareAndSwap(false, true) {
		return api.ErrChannelClosed
	}
	return c.conn.Close()
}

// RemoteAddr exposes the peer address for session attributes and logging.
func (c *NetChannel) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}
