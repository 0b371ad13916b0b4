package netmux

import "fmt"

// DNSPending is the sentinel ip value CreateSocket treats as "connect to
// whatever GetHostByName last resolved", mirroring the original driver's
// -1-as-uint32 convention.
const DNSPending uint32 = 0xFFFFFFFF

// GetHostByName implements spec.md §6's gethostbyname. It records name in
// the Multiplexer's single-cell mailbox; resolution itself happens lazily,
// the next time CreateSocket is called with ip == DNSPending.
func (m *Multiplexer) GetHostByName(name string) uint32 {
	m.savedHostname = name
	return DNSPending
}

// CreateSocket implements spec.md §6's createsocket. ip == 0 creates a
// listening (server) socket bound to port. ip == DNSPending begins DNS
// resolution of the name most recently passed to GetHostByName, then
// connects to the resolved address on port once resolution completes.
// Any other ip connects directly. Returns -1 if the socket table is full.
func (m *Multiplexer) CreateSocket(ip uint32, port uint16) SocketID {
	s := m.table.allocate()
	if s == nil {
		m.metrics.IncrementPoolExhausted()
		m.log.WithError(ErrPoolExhausted).Warn("createsocket: pool exhausted")
		return -1
	}
	s.conn = &connHandle{owned: true}
	m.metrics.IncrementSocketsAllocated()

	switch ip {
	case 0:
		return m.startListen(s, port)
	case DNSPending:
		return m.startResolve(s, port)
	default:
		return m.startConnect(s, ip, port)
	}
}

func (m *Multiplexer) startListen(s *slot, port uint16) SocketID {
	s.origin = OriginServer
	s.localPort = port
	s.state = StateIdle
	if err := m.transport.Listen(s.id, port); err != nil {
		m.setError(s, fmt.Errorf("%w: %v", ErrListenFailed, err), 0)
		return s.id
	}
	m.log.WithField("socket_id", s.id).WithField("port", port).Info("listening")
	return s.id
}

func (m *Multiplexer) startConnect(s *slot, ip uint32, port uint16) SocketID {
	s.origin = OriginOutbound
	s.state = StateConnecting
	if err := m.transport.Connect(s.id, ip, port); err != nil {
		m.setError(s, fmt.Errorf("%w: %v", ErrConnectFailed, err), 0)
	}
	m.log.WithField("socket_id", s.id).Debug("connecting")
	return s.id
}

func (m *Multiplexer) startResolve(s *slot, port uint16) SocketID {
	s.origin = OriginOutbound
	s.state = StateHostResolving
	s.pendingPort = port
	hostname := m.savedHostname
	m.transport.Resolve(s.id, hostname)
	m.log.WithField("socket_id", s.id).WithField("hostname", hostname).Debug("resolving")
	return s.id
}

// Accept implements spec.md §6's accept. It returns the id of a child
// slot sitting in StateUnaccepted on serverID's port, atomically moving
// it to StateIdle (DESIGN.md's adopted accept-semantics decision), or -1
// if none is pending.
func (m *Multiplexer) Accept(serverID SocketID) SocketID {
	server := m.table.find(serverID)
	debugAssert(server != nil, "accept on unknown socket %d", serverID)
	if server == nil {
		m.log.WithField("socket_id", serverID).WithError(ErrNotFound).Debug("accept on unknown socket")
		return -1
	}
	for i := range m.table.slots {
		cand := &m.table.slots[i]
		if cand.state == StateUnaccepted && cand.localPort == server.localPort {
			cand.state = StateIdle
			m.log.WithField("socket_id", cand.id).Info("accepted")
			return cand.id
		}
	}
	return -1
}

// Send implements spec.md §4.4/§6. It returns the number of bytes
// accepted (always all of buf, or none); -1 if the socket is unknown,
// closed, or errored, if buf exceeds the transport's MaxSegmentSize, or if
// the transport rejects the send (the socket then moves to StateError);
// or 0 in any other non-idle state (a send already in flight, or not yet
// connected).
func (m *Multiplexer) Send(id SocketID, buf []byte) int {
	s := m.table.find(id)
	debugAssert(s != nil, "send on unknown socket %d", id)
	if s == nil {
		m.log.WithField("socket_id", id).WithError(ErrNotFound).Debug("send on unknown socket")
		return -1
	}
	switch s.state {
	case StateIdle:
		if max := m.transport.MaxSegmentSize(); max > 0 && len(buf) > max {
			m.log.WithField("socket_id", id).WithField("len", len(buf)).Warn("send exceeds transport segment limit")
			return -1
		}
		s.startSend(buf)
		if err := m.transport.Send(id, s.tx); err != nil {
			s.finishSend()
			m.setError(s, fmt.Errorf("%w: %v", ErrSendFailed, err), 0)
			return -1
		}
		s.state = StateTransmitting
		return len(buf)
	case StateError, StateClosed:
		return -1
	default:
		return 0
	}
}

// Recv implements spec.md §4.3/§6. It returns the number of bytes copied
// into buf, 0 if nothing is pending, or -1 once the receive buffer is
// drained on a socket that has already closed or errored.
func (m *Multiplexer) Recv(id SocketID, buf []byte) int {
	s := m.table.find(id)
	debugAssert(s != nil, "recv on unknown socket %d", id)
	if s == nil {
		m.log.WithField("socket_id", id).WithError(ErrNotFound).Debug("recv on unknown socket")
		return -1
	}
	if len(s.rx) == 0 {
		if s.state == StateClosed || s.state == StateError {
			return -1
		}
		return 0
	}
	return s.drainRx(buf)
}

// LastError returns the error that moved id to StateError, or nil if the
// socket is unknown or has never errored. SPEC_FULL.md §7 names the error
// kinds; this is how a host reads one back for a specific socket.
func (m *Multiplexer) LastError(id SocketID) error {
	s := m.table.find(id)
	if s == nil || s.err == nil {
		return nil
	}
	return s.err.err
}

// CloseSocket implements spec.md §4.5/§6 and the half-closed teardown
// protocol: a socket already torn down on the transport side (StateClosed
// or StateError) is released immediately; any other state asks the
// transport to disconnect and waits for confirmation in StateDisconnecting.
func (m *Multiplexer) CloseSocket(id SocketID) {
	s := m.table.find(id)
	debugAssert(s != nil, "closesocket on unknown socket %d", id)
	if s == nil {
		m.log.WithField("socket_id", id).WithError(ErrNotFound).Debug("closesocket on unknown socket")
		return
	}
	debugAssert(s.state != StateDisconnecting, "closesocket on already-disconnecting socket %d", id)
	if s.state == StateDisconnecting {
		m.log.WithField("socket_id", id).WithError(ErrInvalidState).Warn("closesocket on already-disconnecting socket")
		return
	}

	if s.state == StateClosed || s.state == StateError {
		if s.conn != nil {
			// A synchronous failure (e.g. Listen rejecting a bound port)
			// can land a slot in StateError without the transport ever
			// confirming teardown. Best-effort clean up any resource it
			// did manage to register.
			_ = m.transport.Disconnect(s.id)
		}
		s.conn = nil
		s.rx = nil
		m.releaseSlot(s)
		return
	}
	m.doClose(s)
}

// doClose asks the transport to tear down s's resource and unconditionally
// moves it to StateDisconnecting, per spec.md §4.5's "any non-terminal
// state closes" transition and the original's doClose(), which always
// lands in SOCKET_STATE_DISCONNECTING after calling espconn_disconnect
// regardless of its return code. A Disconnect error is logged, not
// branched on: the transport still owes an eventual EventDisconnected
// (tcp_transport.go posts it unconditionally), and that is what completes
// the teardown.
func (m *Multiplexer) doClose(s *slot) {
	if err := m.transport.Disconnect(s.id); err != nil {
		m.log.WithField("socket_id", s.id).WithError(err).Warn("disconnect returned an error")
	}
	s.state = StateDisconnecting
	m.log.WithField("socket_id", s.id).Debug("disconnecting")
}

// releaseSlot returns s to StateUnused, recording metrics. conn and rx
// must already be cleared by the caller.
func (m *Multiplexer) releaseSlot(s *slot) {
	debugAssert(s.conn == nil, "release with conn still present on socket %d", s.id)
	debugAssert(s.rx == nil, "release with rx still present on socket %d", s.id)
	id := s.id
	s.reset()
	m.metrics.IncrementSocketsReleased()
	m.log.WithField("socket_id", id).Debug("released")
}

// setError transitions s to StateError, recording the error/code and a
// metric, per spec.md §4.5's error policy. It never touches the
// transport-side resource: a reset or a DNS failure has already released
// it (see events.go); after any other failure it stays until CloseSocket
// disconnects it.
func (m *Multiplexer) setError(s *slot, err error, code int) {
	s.state = StateError
	s.err = &socketError{err: err, code: code}
	m.metrics.IncrementResets()
	m.log.WithField("socket_id", s.id).WithField("code", code).Warn(err)
}
