// Package api
// Author: momentics <momentics@gmail.com>
//
// Common error types for the aiosock library.

package api

import "fmt"

// Common errors used across the library.
var (
	ErrSessionClosed   = fmt.Errorf("session is closed")
	ErrChannelClosed   = fmt.Errorf("channel is closed")
	ErrFrameTooLarge   = fmt.Errorf("frame exceeds maximum size")
	ErrUnitUnsupported = fmt.Errorf("unit type not supported by protocol")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeSessionClosed
	ErrCodeInvalidConfig
	ErrCodeProtocol
	ErrCodeResourceExhausted
	ErrCodeInternal
)

// Error represents a structured error with code and context.
type Error struct {
	Code    ErrorCode
	Message string
	Context map[string]any
}

// Error implements the error interface.
func (e *Error) Error() string {
	if len(e.Context) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s (context: %+v)", e.Message, e.Context)
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WithContext adds context information to the error.
func (e *Error) WithContext(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}
