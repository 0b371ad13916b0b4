//go:build !netmux_debug

package netmux

// debugAssert is a no-op in normal builds. Build with -tags netmux_debug
// to turn upper-API misuse (double-close, send on an unknown socket, and
// similar programmer errors per SPEC_FULL.md §7) into panics during
// development and testing.
func debugAssert(cond bool, format string, args ...interface{}) {}
