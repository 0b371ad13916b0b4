package netmux

import (
	"errors"
	"fmt"
)

// dispatch applies one Transport event to the state machine. Every
// handler but handleInboundConnect begins by re-resolving the target slot
// via the event's id; a miss means the slot was already released (a stray
// callback racing a prior close) and is silently dropped, per spec.md
// §9's stray-callback policy.
func (m *Multiplexer) dispatch(ev Event) {
	if ev.Kind == EventInboundConnect {
		m.handleInboundConnect(ev)
		return
	}
	s := m.table.find(ev.ID)
	if s == nil {
		m.log.WithField("socket_id", ev.ID).WithField("event", ev.Kind.String()).Debug("stray callback dropped")
		return
	}
	switch ev.Kind {
	case EventConnected:
		m.handleConnected(s)
	case EventDisconnected:
		m.handleDisconnected(s)
	case EventSent:
		m.handleSent(s)
	case EventReceived:
		m.handleReceived(s, ev.Data)
	case EventReset:
		m.handleReset(s, ev.Err)
	case EventResolved:
		m.handleResolved(s, ev.IP, ev.Err)
	}
}

// handleInboundConnect allocates a fresh slot for a connection arriving
// on a listening socket and leaves it in StateUnaccepted for Accept to
// pick up later. Pool exhaustion rejects the connection outright, the
// same policy CreateSocket applies to an exhausted table. A connection
// that raced a CloseSocket on its listener (the listener already
// released its slot by the time this event is dispatched) is rejected
// too, rather than left as a slot nobody will ever Accept.
func (m *Multiplexer) handleInboundConnect(ev Event) {
	if m.table.findServerOnPort(ev.Port) == nil {
		m.log.WithField("port", ev.Port).Debug("inbound connection on a port with no live listener")
		m.transport.Adopt(ev.Token, -1, false)
		return
	}
	s := m.table.allocate()
	if s == nil {
		m.metrics.IncrementPoolExhausted()
		m.log.WithField("port", ev.Port).WithError(ErrPoolExhausted).Warn("inbound connection refused: pool exhausted")
		m.transport.Adopt(ev.Token, -1, false)
		return
	}
	s.origin = OriginInbound
	s.localPort = ev.Port
	s.state = StateUnaccepted
	s.conn = &connHandle{owned: false}
	m.transport.Adopt(ev.Token, s.id, true)
	m.metrics.IncrementSocketsAllocated()
	m.log.WithField("socket_id", s.id).WithField("port", ev.Port).Info("inbound connection")
}

func (m *Multiplexer) handleConnected(s *slot) {
	if s.state != StateConnecting {
		return
	}
	s.state = StateIdle
	m.log.WithField("socket_id", s.id).Debug("connected")
}

// handleDisconnected implements the teardown half of the half-closed
// protocol: a locally-initiated close (StateDisconnecting) completes by
// releasing the slot; a peer-initiated close on a still-live socket moves
// it to StateClosed and waits for CloseSocket. spec.md §4.5 pins the
// disconnect-callback transition to "any non-DISCONNECTING/CLOSED/ERROR
// -> CLOSED": a disconnect confirmation racing in after the slot already
// landed in CLOSED or ERROR by some other path (a DNS failure, a reset)
// must not overwrite it.
func (m *Multiplexer) handleDisconnected(s *slot) {
	s.conn = nil
	switch s.state {
	case StateDisconnecting:
		s.rx = nil
		m.releaseSlot(s)
	case StateClosed, StateError:
	default:
		s.tx = nil
		s.state = StateClosed
		m.log.WithField("socket_id", s.id).Debug("closed by peer")
	}
}

// handleSent releases the in-flight send buffer and, unless a close raced
// it, returns the socket to StateIdle.
func (m *Multiplexer) handleSent(s *slot) {
	debugAssert(s.state == StateTransmitting || s.state == StateDisconnecting, "sent event in state %s", s.state)
	if s.state != StateTransmitting && s.state != StateDisconnecting {
		m.log.WithField("socket_id", s.id).WithField("state", s.state).WithError(ErrInvalidState).Warn("sent event in unexpected state")
		return
	}
	m.metrics.IncrementBytesSent(int64(len(s.tx)))
	s.finishSend()
	if s.state == StateTransmitting {
		s.state = StateIdle
	}
}

func (m *Multiplexer) handleReceived(s *slot, data []byte) {
	m.metrics.IncrementBytesReceived(int64(len(data)))
	s.appendRx(data, m.cfg.maxRxBuffer, func(err error, code int) {
		m.setError(s, err, code)
	})
}

// handleReset applies the same teardown composition as handleDisconnected
// (the transport side is gone either way) and additionally marks the
// socket StateError, unless it was already mid-close, in which case the
// close already wins (spec.md §4.5).
func (m *Multiplexer) handleReset(s *slot, cause error) {
	wasDisconnecting := s.state == StateDisconnecting
	m.handleDisconnected(s)
	if !wasDisconnecting {
		if cause == nil {
			cause = errors.New("connection reset")
		}
		m.setError(s, cause, 0)
	}
}

// handleResolved consumes a DNS result for a socket waiting in
// StateHostResolving. A stray result for any other state (the socket was
// closed while DNS was still in flight) is dropped. A failed resolution
// is a documented carve-out from the general error policy: the transport
// side is released immediately, same as the original's dnsFoundCallback
// calling releaseEspconn before setSocketInError, rather than waiting for
// a later CloseSocket to do it.
func (m *Multiplexer) handleResolved(s *slot, ip uint32, err error) {
	if s.state != StateHostResolving {
		return
	}
	if err != nil {
		_ = m.transport.Disconnect(s.id)
		s.conn = nil
		m.setError(s, fmt.Errorf("%w: %v", ErrResolveFailed, err), 0)
		return
	}
	port := s.pendingPort
	s.pendingPort = 0
	s.state = StateConnecting
	if cerr := m.transport.Connect(s.id, ip, port); cerr != nil {
		m.setError(s, fmt.Errorf("%w: %v", ErrConnectFailed, cerr), 0)
	}
	m.log.WithField("socket_id", s.id).Debug("resolved")
}
