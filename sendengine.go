package netmux

// startSend copies buf into a freshly allocated, independently-owned tx
// buffer (spec.md §4.4): the caller may reuse or mutate buf immediately
// after Send returns.
func (s *slot) startSend(buf []byte) {
	tx := make([]byte, len(buf))
	copy(tx, buf)
	s.tx = tx
}

// finishSend releases the in-flight tx buffer once the transport confirms
// the send, whether by a sent event or by tearing the socket down while a
// send was outstanding.
func (s *slot) finishSend() {
	s.tx = nil
}
