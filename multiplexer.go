package netmux

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Multiplexer adapts a Transport's asynchronous, callback-driven
// connections into the synchronous, integer-handle socket API described
// in spec.md §6. A Multiplexer is not safe for concurrent use: every
// upper-API call and every call to Poll must happen on the same logical
// thread (spec.md §5).
type Multiplexer struct {
	cfg       *Config
	table     *table
	transport Transport
	metrics   Metrics
	log       *logrus.Entry

	instanceID uuid.UUID

	// savedHostname is the single-cell mailbox GetHostByName writes and
	// the next CreateSocket(DNSPending, ...) call consumes. See
	// DESIGN.md's Open Question decision.
	savedHostname string
}

// New builds a Multiplexer. With no options, it allocates a 10-socket
// table and drives a real TCPTransport.
func New(opts ...Option) *Multiplexer {
	cfg := applyConfig(opts)

	transport := cfg.transport
	if transport == nil {
		transport = NewTCPTransport()
	}

	id := uuid.New()
	m := &Multiplexer{
		cfg:        cfg,
		table:      newTable(cfg.capacity),
		transport:  transport,
		metrics:    cfg.metrics,
		log:        cfg.logger.WithField("instance", id.String()),
		instanceID: id,
	}
	m.log.WithField("capacity", cfg.capacity).Info("multiplexer ready")
	return m
}

// Idle is a no-op. It exists purely for interface symmetry with the
// upper API this module adapts; applying queued transport events happens
// in Poll, not here (spec.md §6 pins Idle to "nothing" explicitly).
func (m *Multiplexer) Idle() {}

// CheckError always returns true. This layer keeps no global error
// latch; errors are surfaced per-socket through Send, Recv, and
// CloseSocket (spec.md §6).
func (m *Multiplexer) CheckError() bool { return true }

// Poll drains and applies every Transport event queued since the last
// call, one at a time, synchronously. A host's event loop calls this
// alongside the seven upper-API methods to bridge the Transport's
// goroutines into this module's lock-free model (SPEC_FULL.md §4.2).
func (m *Multiplexer) Poll() {
	events := m.transport.Events()
	for {
		select {
		case ev := <-events:
			m.dispatch(ev)
		default:
			return
		}
	}
}

// SocketSnapshot is a read-only point-in-time view of one socket slot,
// for diagnostics tooling (SPEC_FULL.md §11).
type SocketSnapshot struct {
	ID        SocketID
	State     State
	Origin    Origin
	LocalPort uint16
	RxLen     int
	TxLen     int
	HasConn   bool
	Err       error
}

// DebugSnapshot returns a snapshot of every non-UNUSED socket slot,
// grounded on the original driver's diagnostic socket-table dump.
func (m *Multiplexer) DebugSnapshot() []SocketSnapshot {
	var out []SocketSnapshot
	for i := range m.table.slots {
		s := &m.table.slots[i]
		if s.state == StateUnused {
			continue
		}
		snap := SocketSnapshot{
			ID:        s.id,
			State:     s.state,
			Origin:    s.origin,
			LocalPort: s.localPort,
			RxLen:     len(s.rx),
			TxLen:     len(s.tx),
			HasConn:   s.conn != nil,
		}
		if s.err != nil {
			snap.Err = s.err.err
		}
		out = append(out, snap)
	}
	return out
}
