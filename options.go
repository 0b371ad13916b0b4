package netmux

import "github.com/sirupsen/logrus"

const (
	// DefaultCapacity is the socket table size used when WithCapacity is
	// not given, matching the original driver's fixed MAX_SOCKETS pool.
	DefaultCapacity = 10

	// DefaultMaxRxBuffer is the per-socket receive buffer ceiling used
	// when WithMaxRxBuffer is not given. See rxbuffer.go for why this
	// module needs a ceiling at all.
	DefaultMaxRxBuffer = 1 << 20 // 1 MiB
)

// Option defines a functional option for New.
type Option func(*Config)

// Config holds the runtime settings for a Multiplexer. Zero value is
// never used directly; New always starts from defaultConfig() and applies
// options on top.
type Config struct {
	capacity    int
	maxRxBuffer int
	transport   Transport
	metrics     Metrics
	logger      *logrus.Logger
}

// defaultConfig returns a Config with library defaults.
func defaultConfig() *Config {
	return &Config{
		capacity:    DefaultCapacity,
		maxRxBuffer: DefaultMaxRxBuffer,
		metrics:     NewDefaultMetrics(),
		logger:      defaultLogger(),
	}
}

// applyConfig builds a runtime config by applying the given options on
// top of defaults.
func applyConfig(opts []Option) *Config {
	cfg := defaultConfig()
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}

// WithCapacity sets the socket table size. Values <= 0 are ignored.
func WithCapacity(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithMaxRxBuffer sets the per-socket receive buffer ceiling. A socket
// whose peer outruns this limit is moved to StateError, mirroring the
// original driver's allocation-failure path (rxbuffer.go). Zero or
// negative disables the ceiling entirely.
func WithMaxRxBuffer(n int) Option {
	return func(c *Config) {
		c.maxRxBuffer = n
	}
}

// WithTransport sets the Transport implementation a Multiplexer adapts.
// If not provided, New constructs a TCPTransport.
func WithTransport(t Transport) Option {
	return func(c *Config) {
		if t != nil {
			c.transport = t
		}
	}
}

// WithMetrics sets a custom metrics implementation for tracking socket
// statistics. If not provided, a default implementation with atomic
// counters is used.
func WithMetrics(metrics Metrics) Option {
	return func(c *Config) {
		if metrics != nil {
			c.metrics = metrics
		}
	}
}

// WithLogger sets the logrus.Logger a Multiplexer logs through. If not
// provided, a logger at InfoLevel writing to stderr is used.
func WithLogger(l *logrus.Logger) Option {
	return func(c *Config) {
		if l != nil {
			c.logger = l
		}
	}
}
