package netmux

// EventKind identifies the kind of asynchronous occurrence a Transport
// reports back to a Multiplexer through its Events channel.
type EventKind int

const (
	// EventInboundConnect reports a new connection arriving on a listening
	// socket, before it has been bound to any SocketID (spec.md §4.2's
	// "connect (inbound)" callback).
	EventInboundConnect EventKind = iota
	// EventConnected reports an outbound Connect completing successfully.
	EventConnected
	// EventDisconnected reports a graceful teardown, whether initiated by
	// the peer or by this module's own Disconnect call.
	EventDisconnected
	// EventSent reports a previously issued Send completing.
	EventSent
	// EventReceived reports bytes arriving on an established connection.
	EventReceived
	// EventReset reports an abnormal teardown (connect failure, a send
	// failure, or a peer RST).
	EventReset
	// EventResolved reports a Resolve call completing, successfully or not.
	EventResolved
)

func (k EventKind) String() string {
	switch k {
	case EventInboundConnect:
		return "inbound-connect"
	case EventConnected:
		return "connected"
	case EventDisconnected:
		return "disconnected"
	case EventSent:
		return "sent"
	case EventReceived:
		return "received"
	case EventReset:
		return "reset"
	case EventResolved:
		return "resolved"
	default:
		return "unknown"
	}
}

// Event is the Go realization of the original driver's named callbacks
// (spec.md §4.2/§6), unified into one channel-carried value so Poll can
// drain and apply them in arrival order.
type Event struct {
	Kind EventKind

	// ID is the target slot id. Ignored for EventInboundConnect, which has
	// no slot yet.
	ID SocketID

	// Token identifies a pending inbound connection, valid only on
	// EventInboundConnect, to be passed back to Adopt.
	Token uint64
	// Port is the local port an inbound connection arrived on, valid only
	// on EventInboundConnect.
	Port uint16

	// IP is the resolved address on a successful EventResolved, in
	// big-endian (network) byte order.
	IP uint32

	// Data is the received payload on EventReceived. Ownership passes to
	// the Multiplexer; the transport must not reuse the backing array.
	Data []byte

	// Err carries the failure reason for EventReset and a failed
	// EventResolved.
	Err error
}

// Transport is the low-level, callback-driven TCP/IP stack this module
// adapts into a synchronous handle-based API. It is intentionally the
// seam spec.md §1 puts out of scope: everything on the far side of this
// interface is someone else's stack (the real network for TCPTransport,
// a scripted double in tests).
//
// Every method here must return without blocking on network I/O; results
// arrive later as Events on the channel returned by Events.
type Transport interface {
	// Connect begins an outbound connection to ip:port for socket id.
	// Completion arrives later as EventConnected or EventReset.
	Connect(id SocketID, ip uint32, port uint16) error
	// Listen begins accepting inbound connections on port for the
	// listening socket id. Each accepted connection arrives later as
	// EventInboundConnect.
	Listen(id SocketID, port uint16) error
	// Disconnect tears down whatever transport-side resource id owns
	// (an established connection, a listener, or an in-flight resolve or
	// connect). Completion arrives later as EventDisconnected.
	Disconnect(id SocketID) error
	// Send transmits data for id. Completion arrives later as EventSent,
	// or EventReset on failure.
	Send(id SocketID, data []byte) error
	// Resolve begins asynchronous hostname resolution for id. The result
	// arrives later as EventResolved.
	Resolve(id SocketID, hostname string)
	// Adopt binds (accept=true) or rejects (accept=false) the pending
	// inbound connection identified by token to socket id. Rejection
	// closes the pending connection without any further event.
	Adopt(token uint64, id SocketID, accept bool)
	// MaxSegmentSize returns the largest chunk Send can transmit in a
	// single call, or 0 if unbounded.
	MaxSegmentSize() int
	// Events returns the channel this Transport posts Events to. The
	// channel is owned by the Transport and must remain valid for its
	// lifetime.
	Events() <-chan Event
}
