package netmux

// scriptedTransport is a deterministic Transport double for tests: every
// method just records the call and/or returns a canned error. Tests drive
// the state machine by pushing Events directly onto the channel and
// calling Multiplexer.Poll, the same integration point a real host uses.
type scriptedTransport struct {
	events chan Event

	connects    []connectCall
	listens     []listenCall
	sends       [][]byte
	disconnects []SocketID
	resolves    []resolveCall
	adopts      []adoptCall

	connectErr    error
	listenErr     error
	sendErr       error
	disconnectErr error
}

type connectCall struct {
	ID   SocketID
	IP   uint32
	Port uint16
}

type listenCall struct {
	ID   SocketID
	Port uint16
}

type resolveCall struct {
	ID       SocketID
	Hostname string
}

type adoptCall struct {
	Token  uint64
	ID     SocketID
	Accept bool
}

func newScriptedTransport() *scriptedTransport {
	return &scriptedTransport{events: make(chan Event, 64)}
}

func (t *scriptedTransport) Events() <-chan Event { return t.events }

func (t *scriptedTransport) Connect(id SocketID, ip uint32, port uint16) error {
	t.connects = append(t.connects, connectCall{id, ip, port})
	return t.connectErr
}

func (t *scriptedTransport) Listen(id SocketID, port uint16) error {
	t.listens = append(t.listens, listenCall{id, port})
	return t.listenErr
}

func (t *scriptedTransport) Disconnect(id SocketID) error {
	t.disconnects = append(t.disconnects, id)
	return t.disconnectErr
}

func (t *scriptedTransport) Send(id SocketID, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)
	t.sends = append(t.sends, cp)
	return t.sendErr
}

func (t *scriptedTransport) Resolve(id SocketID, hostname string) {
	t.resolves = append(t.resolves, resolveCall{id, hostname})
}

func (t *scriptedTransport) Adopt(token uint64, id SocketID, accept bool) {
	t.adopts = append(t.adopts, adoptCall{token, id, accept})
}

func (t *scriptedTransport) MaxSegmentSize() int { return 0 }

// push enqueues an event on the buffered channel without applying it; the
// test applies queued events by calling Multiplexer.Poll.
func (t *scriptedTransport) push(ev Event) {
	t.events <- ev
}
