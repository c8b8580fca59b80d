// File: session/config.go
// Author: momentics <momentics@gmail.com>
//
// Session configuration with environment-backed tunables and validation.

package session

import (
	"github.com/caarlos0/env/v11"
	"go.uber.org/zap"

	"github.com/momentics/aiosock/api"
	"github.com/momentics/aiosock/pool"
)

// defaultPool backs sessions whose config does not inject a BytePool.
var defaultPool api.BytePool = pool.NewBytePool()

// Config carries the capacities, watermarks, and collaborators of a session.
// The zero value is not usable; fill it by hand or start from ConfigFromEnv.
type Config struct {
	// WriteQueueCapacity bounds the outbound FIFO, in buffers.
	WriteQueueCapacity int `env:"AIOSOCK_WRITE_QUEUE_CAPACITY" envDefault:"256"`

	// ReadBufferSize is the capacity of the single reusable inbound buffer.
	ReadBufferSize int `env:"AIOSOCK_READ_BUFFER_SIZE" envDefault:"4096"`

	// FlowLimitLine is the queued-outbound byte count above which a server
	// session stops scheduling reads.
	FlowLimitLine int `env:"AIOSOCK_FLOW_LIMIT_LINE" envDefault:"262144"`

	// ReleaseLine is the queued-outbound byte count below which a throttled
	// read is re-armed. Must not exceed FlowLimitLine.
	ReleaseLine int `env:"AIOSOCK_RELEASE_LINE" envDefault:"65536"`

	// Role selects server or client behavior; only servers flow-limit.
	Role api.Role

	// Protocol decodes inbound bytes and encodes typed writes. Required.
	Protocol api.Protocol

	// Processor consumes decoded units. Required.
	Processor api.Processor

	// Filters run in registration order around the processor.
	Filters []api.Filter

	// Logger receives the engine's swallowed errors. Defaults to a nop.
	Logger *zap.Logger

	// Pool supplies read and coalescing buffers. Defaults to a shared pool.
	Pool api.BytePool
}

// ConfigFromEnv loads the numeric tunables from AIOSOCK_* environment
// variables, leaving the collaborator fields to the caller.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// validate normalizes defaults and rejects impossible settings.
func (c *Config) validate() error {
	if c.WriteQueueCapacity <= 0 || c.ReadBufferSize <= 0 {
		return api.NewError(api.ErrCodeInvalidConfig, "queue capacity and read buffer size must be positive")
	}
	if c.ReleaseLine > c.FlowLimitLine {
		return api.NewError(api.ErrCodeInvalidConfig, "release line above flow limit line").
			WithContext("release_line", c.ReleaseLine).
			WithContext("flow_limit_line", c.FlowLimitLine)
	}
	if c.Protocol == nil || c.Processor == nil {
		return api.NewError(api.ErrCodeInvalidConfig, "protocol and processor are required")
	}
	if c.Logger == nil {
		c.Logger = zap.NewNop()
	}
	if c.Pool == nil {
		c.Pool = defaultPool
	}
	return nil
}
