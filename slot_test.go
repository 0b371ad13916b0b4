package netmux

import "testing"

func TestTableAllocateExhaustion(t *testing.T) {
	tb := newTable(2)
	a := tb.allocate()
	b := tb.allocate()
	if a == nil || b == nil {
		t.Fatalf("expected two allocations to succeed")
	}
	if a.id == b.id {
		t.Fatalf("expected distinct ids, got %d twice", a.id)
	}
	if tb.allocate() != nil {
		t.Fatalf("expected allocate to fail once the table is full")
	}
}

func TestTableIDsNeverReused(t *testing.T) {
	tb := newTable(1)
	a := tb.allocate()
	a.state = StateIdle
	firstID := a.id

	a.reset()
	b := tb.allocate()
	b.state = StateIdle

	if b.id == firstID {
		t.Fatalf("expected a fresh id after release, got the same id %d twice", firstID)
	}
	if b.id <= firstID {
		t.Fatalf("expected ids to increase monotonically, got %d after %d", b.id, firstID)
	}
}

func TestTableFindIgnoresUnusedSlots(t *testing.T) {
	tb := newTable(1)
	s := tb.allocate()
	id := s.id
	// state is still StateUnused until the caller sets it.
	if tb.find(id) != nil {
		t.Fatalf("find should not resolve a slot still in StateUnused")
	}
	s.state = StateIdle
	if tb.find(id) != s {
		t.Fatalf("find should resolve an allocated, non-unused slot")
	}
}

func TestTableFindServerOnPort(t *testing.T) {
	tb := newTable(2)
	srv := tb.allocate()
	srv.state = StateIdle
	srv.origin = OriginServer
	srv.localPort = 8080

	other := tb.allocate()
	other.state = StateIdle
	other.origin = OriginOutbound
	other.localPort = 8080

	if got := tb.findServerOnPort(8080); got != srv {
		t.Fatalf("expected to find the server slot, not the outbound one")
	}
	if tb.findServerOnPort(9999) != nil {
		t.Fatalf("expected no match for an unbound port")
	}
}

func TestSlotResetZeroesEverything(t *testing.T) {
	s := &slot{
		id: 7, state: StateIdle, origin: OriginOutbound, localPort: 1,
		conn: &connHandle{}, tx: []byte("x"), rx: []byte("y"),
		err: &socketError{err: errTest("boom")},
	}
	s.reset()
	if s.state != StateUnused || s.conn != nil || s.tx != nil || s.rx != nil || s.err != nil {
		t.Fatalf("reset left stale fields: %+v", s)
	}
}
