package netmux

import "sync/atomic"

// Metrics tracks socket-lifecycle and throughput statistics. Multiplexer
// calls Increment* as the state machine runs; collectors read back via
// Get*.
type Metrics interface {
	IncrementSocketsAllocated()
	IncrementSocketsReleased()
	IncrementBytesSent(n int64)
	IncrementBytesReceived(n int64)
	IncrementResets()
	IncrementPoolExhausted()

	GetSocketsAllocated() int64
	GetSocketsReleased() int64
	GetBytesSent() int64
	GetBytesReceived() int64
	GetResets() int64
	GetPoolExhausted() int64
}

// DefaultMetrics implements Metrics with atomic counters.
type DefaultMetrics struct {
	socketsAllocated int64
	socketsReleased  int64
	bytesSent        int64
	bytesReceived    int64
	resets           int64
	poolExhausted    int64
}

// NewDefaultMetrics creates a new DefaultMetrics instance.
func NewDefaultMetrics() *DefaultMetrics { return &DefaultMetrics{} }

func (m *DefaultMetrics) IncrementSocketsAllocated() { atomic.AddInt64(&m.socketsAllocated, 1) }
func (m *DefaultMetrics) IncrementSocketsReleased()  { atomic.AddInt64(&m.socketsReleased, 1) }
func (m *DefaultMetrics) IncrementBytesSent(n int64) { atomic.AddInt64(&m.bytesSent, n) }
func (m *DefaultMetrics) IncrementBytesReceived(n int64) {
	atomic.AddInt64(&m.bytesReceived, n)
}
func (m *DefaultMetrics) IncrementResets()        { atomic.AddInt64(&m.resets, 1) }
func (m *DefaultMetrics) IncrementPoolExhausted() { atomic.AddInt64(&m.poolExhausted, 1) }

func (m *DefaultMetrics) GetSocketsAllocated() int64 { return atomic.LoadInt64(&m.socketsAllocated) }
func (m *DefaultMetrics) GetSocketsReleased() int64  { return atomic.LoadInt64(&m.socketsReleased) }
func (m *DefaultMetrics) GetBytesSent() int64        { return atomic.LoadInt64(&m.bytesSent) }
func (m *DefaultMetrics) GetBytesReceived() int64    { return atomic.LoadInt64(&m.bytesReceived) }
func (m *DefaultMetrics) GetResets() int64           { return atomic.LoadInt64(&m.resets) }
func (m *DefaultMetrics) GetPoolExhausted() int64    { return atomic.LoadInt64(&m.poolExhausted) }
