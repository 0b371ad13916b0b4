package netmux

import "errors"

// Sentinel errors used by Multiplexer. Socket-lifecycle failures wrap one
// of these and are read back per socket through LastError; the rest are
// attached to log entries. Transport implementations return their own
// errors. See SPEC_FULL.md §7.
var (
	ErrPoolExhausted = errors.New("netmux: socket pool exhausted")
	ErrAllocFailed   = errors.New("netmux: buffer allocation failed")
	ErrNotFound      = errors.New("netmux: socket not found")
	ErrInvalidState  = errors.New("netmux: invalid socket state for operation")
	ErrResolveFailed = errors.New("netmux: hostname resolution failed")
	ErrConnectFailed = errors.New("netmux: connect failed")
	ErrListenFailed  = errors.New("netmux: listen failed")
	ErrSendFailed    = errors.New("netmux: send failed")
)
