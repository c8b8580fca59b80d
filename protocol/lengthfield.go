// File: protocol/lengthfield.go
// Package protocol implements a length-prefixed frame codec with frame size
// enforcement.
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// Wire format: a big-endian uint32 payload length followed by the payload.
// The size limit protects against frames that could exhaust memory or that
// could never fit the session read buffer.

package protocol

import (
	"encoding/binary"

	"github.com/momentics/aiosock/api"
	"github.com/momentics/aiosock/buffer"
)

// headerLen is the fixed length-field size.
const headerLen = 4

// DefaultMaxFrame bounds the payload of a single frame.
const DefaultMaxFrame = 1 << 20 // 1 MiB

// LengthField is a stateless api.Protocol. Decoded units are []byte payload
// copies; Encode accepts []byte or string.
type LengthField struct {
	// MaxFrame overrides DefaultMaxFrame when positive.
	MaxFrame int
}

var _ api.Protocol = (*LengthField)(nil)

func (p *LengthField) maxFrame() int {
	if p.MaxFrame > 0 {
		return p.MaxFrame
	}
	return DefaultMaxFrame
}

// Decode extracts one frame from the buffer window, or returns (nil, nil)
// while the header or payload is still incomplete.
func (p *LengthField) Decode(buf *buffer.Buffer, s api.Session) (any, error) {
	if buf.Remaining() < headerLen {
		return nil, nil
	}
	win := buf.Window()
	length := int(binary.BigEndian.Uint32(win[:headerLen]))
	if length > p.maxFrame() {
		return nil, api.NewError(api.ErrCodeProtocol, "frame payload exceeds maximum allowed size").
			WithContext("length", length)
	}
	if headerLen+length > buf.Cap() {
		// The frame can never fit the read buffer; waiting for more bytes
		// would stall the session forever.
		return nil, api.NewError(api.ErrCodeProtocol, "frame larger than read buffer").
			WithContext("length", length).
			WithContext("capacity", buf.Cap())
	}
	if buf.Remaining() < headerLen+length {
		return nil, nil
	}
	payload := make([]byte, length)
	copy(payload, win[headerLen:headerLen+length])
	buf.Advance(headerLen + length)
	return payload, nil
}

// Encode frames a []byte or string payload into a read-ready buffer.
func (p *LengthField) Encode(msg any, s api.Session) (*buffer.Buffer, error) {
	var payload []byte
	switch m := msg.(type) {
	case []byte:
		payload = m
	case string:
		payload = []byte(m)
	default:
		return nil, api.ErrUnitUnsupported
	}
	if len(payload) > p.maxFrame() {
		return nil, api.ErrFrameTooLarge
	}
	out := make([]byte, headerLen+len(payload))
	binary.BigEndian.PutUint32(out, uint32(len(payload)))
	copy(out[headerLen:], payload)
	return buffer.Wrap(out), nil
}
