package netmux

import (
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// PrometheusMetrics implements Metrics backed by Prometheus counters, for
// hosts that want socket statistics on a scrape endpoint rather than (or
// alongside) DefaultMetrics.
type PrometheusMetrics struct {
	socketsAllocated prometheus.Counter
	socketsReleased  prometheus.Counter
	bytesSent        prometheus.Counter
	bytesReceived    prometheus.Counter
	resets           prometheus.Counter
	poolExhausted    prometheus.Counter
}

// NewPrometheusMetrics creates and registers the counters against reg. If
// reg is nil, prometheus.DefaultRegisterer is used.
func NewPrometheusMetrics(reg prometheus.Registerer) *PrometheusMetrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &PrometheusMetrics{
		socketsAllocated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netmux", Name: "sockets_allocated_total", Help: "Total socket slots allocated.",
		}),
		socketsReleased: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netmux", Name: "sockets_released_total", Help: "Total socket slots released back to the pool.",
		}),
		bytesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netmux", Name: "bytes_sent_total", Help: "Total bytes confirmed sent.",
		}),
		bytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netmux", Name: "bytes_received_total", Help: "Total bytes received from the transport.",
		}),
		resets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netmux", Name: "resets_total", Help: "Total abnormal teardowns (connect failures, send failures, peer resets).",
		}),
		poolExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "netmux", Name: "pool_exhausted_total", Help: "Total socket allocations refused because the table was full.",
		}),
	}
	reg.MustRegister(m.socketsAllocated, m.socketsReleased, m.bytesSent, m.bytesReceived, m.resets, m.poolExhausted)
	return m
}

func (m *PrometheusMetrics) IncrementSocketsAllocated() { m.socketsAllocated.Inc() }
func (m *PrometheusMetrics) IncrementSocketsReleased()  { m.socketsReleased.Inc() }
func (m *PrometheusMetrics) IncrementBytesSent(n int64) { m.bytesSent.Add(float64(n)) }
func (m *PrometheusMetrics) IncrementBytesReceived(n int64) {
	m.bytesReceived.Add(float64(n))
}
func (m *PrometheusMetrics) IncrementResets()        { m.resets.Inc() }
func (m *PrometheusMetrics) IncrementPoolExhausted() { m.poolExhausted.Inc() }

func (m *PrometheusMetrics) GetSocketsAllocated() int64 { return int64(readCounter(m.socketsAllocated)) }
func (m *PrometheusMetrics) GetSocketsReleased() int64  { return int64(readCounter(m.socketsReleased)) }
func (m *PrometheusMetrics) GetBytesSent() int64        { return int64(readCounter(m.bytesSent)) }
func (m *PrometheusMetrics) GetBytesReceived() int64    { return int64(readCounter(m.bytesReceived)) }
func (m *PrometheusMetrics) GetResets() int64           { return int64(readCounter(m.resets)) }
func (m *PrometheusMetrics) GetPoolExhausted() int64    { return int64(readCounter(m.poolExhausted)) }

func readCounter(c prometheus.Counter) float64 {
	var out dto.Metric
	if err := c.Write(&out); err != nil {
		return 0
	}
	return out.GetCounter().GetValue()
}
