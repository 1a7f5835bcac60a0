// Package stats maintains process-wide request counters.
package stats

import (
	"sync/atomic"
	"time"
)

// Collector aggregates process-wide counters for the lifetime of the process.
// It is injected into each relay pipeline instance rather than accessed as
// ambient global state. All counters are monotonically increasing; there is
// no reset operation.
type Collector struct {
	startTime         time.Time
	totalRequests     atomic.Int64
	streamingRequests atomic.Int64
	thinkingDetected  atomic.Int64
	errors            atomic.Int64
}

// Snapshot is the JSON representation served by the stats endpoint.
type Snapshot struct {
	TotalRequests     int64  `json:"total_requests"`
	StreamingRequests int64  `json:"streaming_requests"`
	ThinkingDetected  int64  `json:"thinking_detected"`
	Errors            int64  `json:"errors"`
	Uptime            string `json:"uptime"`
}

// NewCollector creates a collector anchored at the current time.
func NewCollector() *Collector {
	return &Collector{startTime: time.Now()}
}

// RecordRequest counts one inbound chat completion request.
func (c *Collector) RecordRequest(stream bool) {
	c.totalRequests.Add(1)
	if stream {
		c.streamingRequests.Add(1)
	}
}

// RecordThinkingDetected counts one request whose response carried a
// reasoning side channel. Callers must invoke this at most once per request.
func (c *Collector) RecordThinkingDetected() {
	c.thinkingDetected.Add(1)
}

// RecordError counts one failed request. Callers must invoke this at most
// once per request.
func (c *Collector) RecordError() {
	c.errors.Add(1)
}

// StartTime returns the process start time used for uptime reporting.
func (c *Collector) StartTime() time.Time {
	return c.startTime
}

// Snapshot returns a point-in-time copy of all counters.
func (c *Collector) Snapshot() Snapshot {
	return Snapshot{
		TotalRequests:     c.totalRequests.Load(),
		StreamingRequests: c.streamingRequests.Load(),
		ThinkingDetected:  c.thinkingDetected.Load(),
		Errors:            c.errors.Load(),
		Uptime:            time.Since(c.startTime).Round(time.Second).String(),
	}
}
