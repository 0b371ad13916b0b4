//go:build netmux_debug

package netmux

import "fmt"

// debugAssert panics on a violated invariant when the netmux_debug build
// tag is set. See debug.go for the normal-build no-op.
func debugAssert(cond bool, format string, args ...interface{}) {
	if !cond {
		panic(fmt.Sprintf("netmux: assertion failed: "+format, args...))
	}
}
