package netmux

import (
	"bytes"
	"testing"
)

func TestAppendRxAccumulates(t *testing.T) {
	s := &slot{}
	var errored bool
	report := func(error, int) { errored = true }

	s.appendRx([]byte("hello"), 0, report)
	s.appendRx([]byte(" world"), 0, report)

	if errored {
		t.Fatalf("did not expect an allocation error")
	}
	if !bytes.Equal(s.rx, []byte("hello world")) {
		t.Fatalf("got rx %q", s.rx)
	}
}

func TestAppendRxOverLimitReportsError(t *testing.T) {
	s := &slot{rx: []byte("1234")}
	var reported error
	report := func(err error, code int) { reported = err }

	s.appendRx([]byte("5678"), 6, report)

	if reported == nil {
		t.Fatalf("expected an allocation-failure report")
	}
	if !bytes.Equal(s.rx, []byte("1234")) {
		t.Fatalf("overflowing data must not be appended, got %q", s.rx)
	}
}

func TestDrainRxPartial(t *testing.T) {
	s := &slot{rx: []byte("hello world")}
	out := make([]byte, 5)

	n := s.drainRx(out)
	if n != 5 || string(out) != "hello" {
		t.Fatalf("got n=%d out=%q", n, out)
	}
	if string(s.rx) != " world" {
		t.Fatalf("expected remainder ' world', got %q", s.rx)
	}
}

func TestDrainRxFullyEmpties(t *testing.T) {
	s := &slot{rx: []byte("hi")}
	out := make([]byte, 16)

	n := s.drainRx(out)
	if n != 2 || string(out[:n]) != "hi" {
		t.Fatalf("got n=%d out=%q", n, out[:n])
	}
	if s.rx != nil {
		t.Fatalf("expected rx to be fully drained, got %q", s.rx)
	}
}

func TestDrainRxEmptyIsNoop(t *testing.T) {
	s := &slot{}
	if n := s.drainRx(make([]byte, 4)); n != 0 {
		t.Fatalf("expected 0 from an empty buffer, got %d", n)
	}
}
