package netmux

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"net"
	"strconv"
	"sync"
	"time"
)

const dnsTimeout = 10 * time.Second

// tcpResource is the transport-side bookkeeping for one socket id: an
// established connection, a listener, or an in-flight connect/resolve
// that Disconnect can still cancel.
type tcpResource struct {
	conn   net.Conn
	ln     net.Listener
	cancel context.CancelFunc
}

// TCPTransport is the production Transport: it adapts Go's real net
// package, which is itself goroutine-based, into the Event-channel
// contract Multiplexer.Poll expects. Every goroutine here only ever posts
// to events; none of them touch socket-table state directly, keeping the
// Multiplexer itself lock-free (SPEC_FULL.md §5).
type TCPTransport struct {
	events chan Event

	dialer   net.Dialer
	resolver *net.Resolver

	mu      sync.Mutex
	conns   map[SocketID]*tcpResource
	pending map[uint64]net.Conn
	token   uint64
}

// NewTCPTransport builds a TCPTransport with a buffered (256-event) event
// queue for a single Multiplexer to drain via Poll.
func NewTCPTransport() *TCPTransport {
	return &TCPTransport{
		events:   make(chan Event, 256),
		resolver: net.DefaultResolver,
		conns:    make(map[SocketID]*tcpResource),
		pending:  make(map[uint64]net.Conn),
	}
}

func (t *TCPTransport) Events() <-chan Event { return t.events }

// MaxSegmentSize returns 0: TCP imposes no application-level message
// bound, unlike the original driver's fixed espconn buffer.
func (t *TCPTransport) MaxSegmentSize() int { return 0 }

func (t *TCPTransport) Connect(id SocketID, ip uint32, port uint16) error {
	ctx, cancel := context.WithCancel(context.Background())
	t.mu.Lock()
	t.conns[id] = &tcpResource{cancel: cancel}
	t.mu.Unlock()

	addr := net.JoinHostPort(uint32ToIP(ip).String(), strconv.Itoa(int(port)))
	go func() {
		conn, err := t.dialer.DialContext(ctx, "tcp4", addr)
		if err != nil {
			t.post(Event{Kind: EventReset, ID: id, Err: err})
			return
		}
		setNoDelay(conn)
		t.mu.Lock()
		res, ok := t.conns[id]
		if !ok {
			t.mu.Unlock()
			conn.Close()
			return
		}
		res.conn = conn
		t.mu.Unlock()
		t.post(Event{Kind: EventConnected, ID: id})
		t.readLoop(id, conn)
	}()
	return nil
}

func (t *TCPTransport) Listen(id SocketID, port uint16) error {
	ln, err := net.Listen("tcp4", ":"+strconv.Itoa(int(port)))
	if err != nil {
		return err
	}
	t.mu.Lock()
	t.conns[id] = &tcpResource{ln: ln}
	t.mu.Unlock()
	go t.acceptLoop(id, ln)
	return nil
}

func (t *TCPTransport) acceptLoop(id SocketID, ln net.Listener) {
	backoff := NewAdaptivePoll(DefaultAcceptBackoffFast, DefaultAcceptBackoffSteady)
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				backoff.Sleep()
				continue
			}
			return
		}
		backoff.Reset()
		setNoDelay(conn)

		_, localPortStr, splitErr := net.SplitHostPort(ln.Addr().String())
		var localPort int
		if splitErr == nil {
			localPort, _ = strconv.Atoi(localPortStr)
		}

		t.mu.Lock()
		token := t.token
		t.token++
		t.pending[token] = conn
		t.mu.Unlock()

		t.post(Event{Kind: EventInboundConnect, Token: token, Port: uint16(localPort)})
	}
}

func (t *TCPTransport) Adopt(token uint64, id SocketID, accept bool) {
	t.mu.Lock()
	conn, ok := t.pending[token]
	delete(t.pending, token)
	if ok && accept {
		t.conns[id] = &tcpResource{conn: conn}
	}
	t.mu.Unlock()

	if !ok {
		return
	}
	if !accept {
		conn.Close()
		return
	}
	go t.readLoop(id, conn)
}

func (t *TCPTransport) readLoop(id SocketID, conn net.Conn) {
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			t.post(Event{Kind: EventReceived, ID: id, Data: data})
		}
		if err != nil {
			t.mu.Lock()
			_, stillOwned := t.conns[id]
			t.mu.Unlock()
			if !stillOwned {
				// Disconnect already removed us and will post its own
				// EventDisconnected; nothing further to report.
				return
			}
			if err == io.EOF {
				t.post(Event{Kind: EventDisconnected, ID: id})
			} else {
				t.post(Event{Kind: EventReset, ID: id, Err: err})
			}
			return
		}
	}
}

func (t *TCPTransport) Send(id SocketID, data []byte) error {
	t.mu.Lock()
	res, ok := t.conns[id]
	t.mu.Unlock()
	if !ok || res.conn == nil {
		return fmt.Errorf("netmux: send on socket %d with no open connection", id)
	}
	conn := res.conn
	go func() {
		if _, err := conn.Write(data); err != nil {
			t.post(Event{Kind: EventReset, ID: id, Err: err})
			return
		}
		t.post(Event{Kind: EventSent, ID: id})
	}()
	return nil
}

func (t *TCPTransport) Resolve(id SocketID, hostname string) {
	ctx, cancel := context.WithTimeout(context.Background(), dnsTimeout)
	t.mu.Lock()
	t.conns[id] = &tcpResource{cancel: cancel}
	t.mu.Unlock()
	go func() {
		defer cancel()
		ips, err := t.resolver.LookupIP(ctx, "ip4", hostname)
		if err == nil && len(ips) == 0 {
			err = fmt.Errorf("netmux: no addresses found for %q", hostname)
		}
		if err != nil {
			t.post(Event{Kind: EventResolved, ID: id, Err: err})
			return
		}
		t.post(Event{Kind: EventResolved, ID: id, IP: ipToUint32(ips[0])})
	}()
}

// Disconnect tears down whatever resource id owns, then reports a
// disconnect event even if closing it returned an error, matching the
// original driver's SDK behavior of firing the disconnect callback even for
// locally-initiated teardown. An id with no registered resource returns nil
// and reports no event.
func (t *TCPTransport) Disconnect(id SocketID) error {
	t.mu.Lock()
	res, ok := t.conns[id]
	delete(t.conns, id)
	t.mu.Unlock()
	if !ok {
		return nil
	}

	var err error
	if res.cancel != nil {
		res.cancel()
	}
	if res.ln != nil {
		err = res.ln.Close()
	}
	if res.conn != nil {
		err = res.conn.Close()
	}
	go t.post(Event{Kind: EventDisconnected, ID: id})
	return err
}

func (t *TCPTransport) post(ev Event) { t.events <- ev }

func setNoDelay(conn net.Conn) {
	if tc, ok := conn.(*net.TCPConn); ok {
		_ = tc.SetNoDelay(true)
	}
}

func ipToUint32(ip net.IP) uint32 {
	ip4 := ip.To4()
	if ip4 == nil {
		return 0
	}
	return binary.BigEndian.Uint32(ip4)
}

func uint32ToIP(ip uint32) net.IP {
	b := make(net.IP, 4)
	binary.BigEndian.PutUint32(b, ip)
	return b
}
