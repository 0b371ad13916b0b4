package netmux

// appendRx appends incoming bytes to the slot's receive buffer
// (spec.md §4.3). Go's allocator gives no recoverable signal on
// out-of-memory the way the original driver's malloc/realloc did, so this
// module simulates that failure path with a configurable ceiling
// (Config.maxRxBuffer): growing past it is treated exactly like the
// original's allocation failure — the incoming bytes are dropped and
// reportErr is invoked to move the slot to StateError (DESIGN.md's Open
// Question resolution).
func (s *slot) appendRx(data []byte, limit int, reportErr func(err error, code int)) {
	if len(data) == 0 {
		return
	}
	if limit > 0 && len(s.rx)+len(data) > limit {
		reportErr(ErrAllocFailed, 0)
		return
	}
	buf := make([]byte, len(s.rx)+len(data))
	copy(buf, s.rx)
	copy(buf[len(s.rx):], data)
	s.rx = buf
}

// drainRx copies as much of the receive buffer into out as fits,
// returning the count copied and leaving any remainder in place
// (spec.md §4.3/§6's recv semantics).
func (s *slot) drainRx(out []byte) int {
	if len(s.rx) == 0 || len(out) == 0 {
		return 0
	}
	if len(s.rx) <= len(out) {
		n := copy(out, s.rx)
		s.rx = nil
		return n
	}
	n := copy(out, s.rx[:len(out)])
	remaining := make([]byte, len(s.rx)-len(out))
	copy(remaining, s.rx[len(out):])
	s.rx = remaining
	return n
}
