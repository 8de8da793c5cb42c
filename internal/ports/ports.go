// Package ports probes local TCP port availability with bind attempts.
package ports

import (
	"fmt"
	"net"
)

// Checker reports whether local TCP ports are already bound.
type Checker interface {
	InUse(port int) bool
}

// BindChecker probes availability by attempting to bind the port.
type BindChecker struct{}

// NewBindChecker creates a new BindChecker.
func NewBindChecker() *BindChecker {
	return &BindChecker{}
}

// InUse returns true when the port cannot be bound, meaning another listener
// holds it. A successful probe listener is closed immediately.
func (c *BindChecker) InUse(port int) bool {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", port))
	if err != nil {
		return true
	}
	_ = ln.Close()
	return false
}

// Busy returns the subset of ports that are already bound.
func Busy(c Checker, ports ...int) []int {
	var busy []int
	for _, p := range ports {
		if c.InUse(p) {
			busy = append(busy, p)
		}
	}
	return busy
}

// StaticChecker is a test double with a fixed set of bound ports.
type StaticChecker struct {
	Bound map[int]bool
}

// InUse reports whether the port is in the configured bound set.
func (c *StaticChecker) InUse(port int) bool {
	return c.Bound[port]
}
