//go:build !unix

// File: transport/tcp/sockopt_stub.go
// Author: momentics <momentics@gmail.com>
//
// No-op socket tuning for platforms without x/sys/unix support.

package tcp

import (
	"net"
	"syscall"
)

func reuseAddrControl(network, address string, c syscall.RawConn) error {
	return nil
}

func tuneConn(conn net.Conn) error {
	if tc, ok := conn.(*net.TCPConn); ok {
		return tc.SetNoDelay(true)
	}
	return nil
}
