// File: session/metrics.go
// Author: momentics <momentics@gmail.com>
//
// Prometheus counters for the session engine. All metrics use the
// "aiosock_" prefix and register once against the default registerer.

package session

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type engineMetrics struct {
	sessionsOpened    prometheus.Counter
	sessionsClosed    prometheus.Counter
	bytesIn           prometheus.Counter
	bytesOut          prometheus.Counter
	coalescedWrites   prometheus.Counter
	flowLimitEngaged  prometheus.Counter
	flowLimitReleased prometheus.Counter
}

var (
	metricsOnce sync.Once
	metrics     *engineMetrics
)

// sharedMetrics lazily builds and registers the engine counters.
func sharedMetrics() *engineMetrics {
	metricsOnce.Do(func() {
		metrics = &engineMetrics{
			sessionsOpened: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "aiosock_sessions_opened_total",
				Help: "Sessions created.",
			}),
			sessionsClosed: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "aiosock_sessions_closed_total",
				Help: "Sessions closed.",
			}),
			bytesIn: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "aiosock_bytes_in_total",
				Help: "Bytes received from channels.",
			}),
			bytesOut: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "aiosock_bytes_out_total",
				Help: "Bytes submitted to channels.",
			}),
			coalescedWrites: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "aiosock_coalesced_writes_total",
				Help: "Write submissions merged from multiple queued buffers.",
			}),
			flowLimitEngaged: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "aiosock_flow_limit_engaged_total",
				Help: "Times inbound reads were suspended for backpressure.",
			}),
			flowLimitReleased: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "aiosock_flow_limit_released_total",
				Help: "Times a suspended read was re-armed.",
			}),
		}
		prometheus.MustRegister(
			metrics.sessionsOpened,
			metrics.sessionsClosed,
			metrics.bytesIn,
			metrics.bytesOut,
			metrics.coalescedWrites,
			metrics.flowLimitEngaged,
			metrics.flowLimitReleased,
		)
	})
	return metrics
}
