package netmux

// SocketID uniquely and monotonically identifies a socket slot for the
// lifetime of a Multiplexer. Ids are never reused even when the slot
// position they occupied is (spec.md §3); this is what makes re-resolving
// a slot by id, rather than following a stored pointer, safe against
// stray callbacks that arrive after a slot has been reused.
type SocketID int

// socketError pairs the underlying error with a transport error code.
// Present only when a slot's state is StateError. err normally wraps one
// of the sentinels in errors.go.
type socketError struct {
	err  error
	code int
}

// connHandle marks that a slot has a transport-side resource associated
// with it. It intentionally carries no reference back to the slot — see
// DESIGN.md's back-pointer decision. Its presence distinguishes "a
// transport resource exists" from "it doesn't" for the release-time
// assertion in Multiplexer.releaseSlot, and owned records who created that
// resource.
type connHandle struct {
	// owned is false for inbound connections, whose underlying resource
	// was created by the transport's accept path rather than by a
	// CreateSocket call on this slot.
	owned bool
}

// slot is one socket-table entry, the unit of ownership for a socket's
// state, buffers, and transport resource (spec.md §3).
type slot struct {
	id     SocketID
	state  State
	origin Origin

	// localPort is the bound port for a server (OriginServer) socket, or
	// the arrival port for an inbound (OriginInbound) one.
	localPort uint16
	// pendingPort holds the destination port for an outbound connect that
	// is waiting on DNS resolution (StateHostResolving), until the
	// resolved address lets the real Connect be issued.
	pendingPort uint16

	conn *connHandle
	tx   []byte
	rx   []byte
	err  *socketError
}

// reset zero-values the slot, returning it to StateUnused. Unlike the
// original's resetSocketByData (which zero-filled only sizeof a pointer,
// not the struct it pointed to — see DESIGN.md), this always clears the
// entire entry.
func (s *slot) reset() {
	*s = slot{}
}

// table is the fixed-capacity pool of socket slots (spec.md §3). It is a
// plain linear-scan structure, matching the original's fixed MAX_SOCKETS
// array and its allocateNewSocket/getSocketData/getServerSocketByLocalPort
// functions.
type table struct {
	slots  []slot
	nextID SocketID
}

func newTable(capacity int) *table {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &table{slots: make([]slot, capacity)}
}

// allocate finds the first StateUnused slot, assigns it the next
// never-reused id, and returns a pointer to it. The caller is responsible
// for setting state, origin, and any other fields before any other
// operation can observe the slot. Returns nil if the table is full
// (spec.md §4.1's pool-exhaustion case).
func (t *table) allocate() *slot {
	for i := range t.slots {
		if t.slots[i].state == StateUnused {
			t.slots[i].id = t.nextID
			t.nextID++
			return &t.slots[i]
		}
	}
	return nil
}

// find resolves a socket id to its slot, or nil if no non-unused slot
// currently holds that id. This is the sole way event handlers touch slot
// state — see DESIGN.md's back-pointer decision.
func (t *table) find(id SocketID) *slot {
	for i := range t.slots {
		if t.slots[i].state != StateUnused && t.slots[i].id == id {
			return &t.slots[i]
		}
	}
	return nil
}

// findServerOnPort returns the listening (OriginServer) slot bound to
// port, or nil. Used to confirm a listener is still live before adopting
// an inbound connection event for its port.
func (t *table) findServerOnPort(port uint16) *slot {
	for i := range t.slots {
		if t.slots[i].state != StateUnused && t.slots[i].origin == OriginServer && t.slots[i].localPort == port {
			return &t.slots[i]
		}
	}
	return nil
}
