// File: session/helpers_test.go
// Author: momentics <momentics@gmail.com>
//
// Scriptable fakes for driving the engine without a network: a channel whose
// completions are stepped manually, an identity protocol, and recording
// processor/filter implementations.

package session

import (
	"sync"

	"github.com/momentics/aiosock/api"
	"github.com/momentics/aiosock/buffer"
)

type fakeOp struct {
	buf  *buffer.Buffer
	done api.CompletionHandler
}

// fakeChannel records submissions and lets tests complete them one by one.
type fakeChannel struct {
	mu          sync.Mutex
	reads       []fakeOp
	writes      []fakeOp
	submissions [][]byte // window snapshot at each write submission
	sent        [][]byte // bytes actually transferred per completion
	inflight    int
	maxInflight int
	closes      int
}

func newFakeChannel() *fakeChannel { return &fakeChannel{} }

func (c *fakeChannel) Read(buf *buffer.Buffer, done api.CompletionHandler) {
	c.mu.Lock()
	c.reads = append(c.reads, fakeOp{buf, done})
	c.mu.Unlock()
}

func (c *fakeChannel) Write(buf *buffer.Buffer, done api.CompletionHandler) {
	c.mu.Lock()
	c.submissions = append(c.submissions, append([]byte(nil), buf.Window()...))
	c.writes = append(c.writes, fakeOp{buf, done})
	c.inflight++
	if c.inflight > c.maxInflight {
		c.maxInflight = c.inflight
	}
	c.mu.Unlock()
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	c.closes++
	c.mu.Unlock()
	return nil
}

// completeWrite finishes the oldest outstanding write. n < 0 means the whole
// window. The continuation runs on the caller's goroutine.
func (c *fakeChannel) completeWrite(n int) {
	c.mu.Lock()
	op := c.writes[0]
	c.writes = c.writes[1:]
	c.inflight--
	if n < 0 {
		n = op.buf.Remaining()
	}
	c.sent = append(c.sent, append([]byte(nil), op.buf.Window()[:n]...))
	c.mu.Unlock()
	op.buf.Advance(n)
	op.done(n, nil)
}

// failWrite finishes the oldest outstanding write with an error.
func (c *fakeChannel) failWrite(err error) {
	c.mu.Lock()
	op := c.writes[0]
	c.writes = c.writes[1:]
	c.inflight--
	c.mu.Unlock()
	op.done(0, err)
}

// deliver completes the pending read with the given inbound bytes.
func (c *fakeChannel) deliver(data []byte) {
	c.mu.Lock()
	op := c.reads[0]
	c.reads = c.reads[1:]
	c.mu.Unlock()
	n := copy(op.buf.Window(), data)
	op.buf.Advance(n)
	op.done(n, nil)
}

// failRead completes the pending read with an error.
func (c *fakeChannel) failRead(err error) {
	c.mu.Lock()
	op := c.reads[0]
	c.reads = c.reads[1:]
	c.mu.Unlock()
	op.done(0, err)
}

func (c *fakeChannel) pendingReads() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.reads)
}

func (c *fakeChannel) pendingWrites() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.writes)
}

func (c *fakeChannel) sentBytes() []byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []byte
	for _, s := range c.sent {
		out = append(out, s...)
	}
	return out
}

// identityProtocol encodes []byte units verbatim and never decodes a unit.
type identityProtocol struct{}

func (identityProtocol) Decode(buf *buffer.Buffer, s api.Session) (any, error) {
	return nil, nil
}

func (identityProtocol) Encode(msg any, s api.Session) (*buffer.Buffer, error) {
	return buffer.Wrap(msg.([]byte)), nil
}

// recProcessor records every processed unit.
type recProcessor struct {
	mu    sync.Mutex
	units []any
	err   error
}

func (p *recProcessor) Process(s api.Session, unit any) error {
	p.mu.Lock()
	p.units = append(p.units, unit)
	p.mu.Unlock()
	return p.err
}

func (p *recProcessor) processed() []any {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]any(nil), p.units...)
}

// recFilter records hook invocations in order.
type recFilter struct {
	name       string
	log        *[]string
	consumed   []int
	processErr error
	failErrs   []error
}

func (f *recFilter) ReadFilter(s api.Session, unit any, consumed int) {
	*f.log = append(*f.log, f.name+":read")
	f.consumed = append(f.consumed, consumed)
}

func (f *recFilter) ProcessFilter(s api.Session, unit any) error {
	*f.log = append(*f.log, f.name+":process")
	return f.processErr
}

func (f *recFilter) ProcessFail(s api.Session, unit any, err error) {
	*f.log = append(*f.log, f.name+":fail")
	f.failErrs = append(f.failErrs, err)
}

// testConfig returns a client-side config small enough to exercise queue and
// buffer edges.
func testConfig(p api.Processor) Config {
	return Config{
		WriteQueueCapacity: 16,
		ReadBufferSize:     64,
		FlowLimitLine:      1 << 20,
		ReleaseLine:        1 << 19,
		Role:               api.RoleClient,
		Protocol:           identityProtocol{},
		Processor:          p,
	}
}

func mustOpen(t interface{ Fatalf(string, ...any) }, reg *Registry, ch api.Channel, cfg Config) *Session {
	s, err := reg.Open(ch, cfg)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	return s
}
