// Copyright (c) 2025
// Author: momentics <momentics@gmail.com>

// Package tcp provides the TCP acceptor and dialer that bootstrap aiosock
// sessions over real network connections. Socket-level options are applied
// in platform-specific files.
package tcp

import (
	"context"
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/momentics/aiosock/session"
	"github.com/momentics/aiosock/transport"
)

// ListenerConfig holds configuration for the TCP acceptor.
type ListenerConfig struct {
	Addr     string         // TCP address to bind (e.g., ":9001")
	Session  session.Config // Per-connection engine configuration
	Registry *session.Registry
	Logger   *zap.Logger
}

// Acceptor owns a bound listening socket and opens one session per
// accepted connection.
type Acceptor struct {
	ln  net.Listener
	cfg *ListenerConfig
	log *zap.Logger
}

// Listen binds the listening socket with SO_REUSEADDR applied.
func Listen(cfg *ListenerConfig) (*Acceptor, error) {
	if cfg.Registry == nil {
		return nil, fmt.Errorf("tcp: registry is required")
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	lc := net.ListenConfig{Control: reuseAddrControl}
	ln, err := lc.Listen(context.Background(), "tcp", cfg.Addr)
	if err != nil {
		return nil, fmt.Errorf("tcp listen failed: %w", err)
	}
	return &Acceptor{ln: ln, cfg: cfg, log: log}, nil
}

// Addr returns the bound address.
func (a *Acceptor) Addr() net.Addr {
	return a.ln.Addr()
}

// Serve runs the accept loop until ctx is canceled or the listener fails.
func (a *Acceptor) Serve(ctx context.Context) error {
	defer a.ln.Close()
	a.log.Info("tcp listening", zap.String("addr", a.ln.Addr().String()))

	go func() {
		<-ctx.Done()
		a.ln.Close()
	}()

	for {
		conn, err := a.ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			a.log.Warn("accept failed", zap.Error(err))
			continue
		}
		if err := tuneConn(conn); err != nil {
			a.log.Debug("socket tuning failed", zap.Error(err))
		}
		ch := transport.NewNetChannel(conn)
		if _, err := a.cfg.Registry.Open(ch, a.cfg.Session); err != nil {
			a.log.Warn("session open failed", zap.Error(err))
			_ = ch.Close()
		}
	}
}

// Serve binds and runs an acceptor in one call.
func Serve(ctx context.Context, cfg *ListenerConfig) error {
	a, err := Listen(cfg)
	if err != nil {
		return err
	}
	return a.Serve(ctx)
}

// Dial connects to addr and opens a client session over the connection.
func Dial(addr string, reg *session.Registry, cfg session.Config) (*session.Session, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("tcp dial failed: %w", err)
	}
	// tuning is best-effort on clients
	_ = tuneConn(conn)
	ch := transport.NewNetChannel(conn)
	s, err := reg.Open(ch, cfg)
	if err != nil {
		_ = ch.Close()
		return nil, err
	}
	return s, nil
}
