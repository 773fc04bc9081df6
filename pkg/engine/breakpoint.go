package engine

import (
	"slices"

	"github.com/sirupsen/logrus"
)

// AddBreakpoint arranges for execution to trap before the instruction at
// addr. Translations are flushed so the trap takes effect at once.
func (e *Engine) AddBreakpoint(addr uint16) {
	if _, ok := e.bps[addr]; ok {
		return
	}
	e.bps[addr] = struct{}{}
	e.cache.Flush()
	e.log.WithFields(logrus.Fields{"addr": hex16(addr)}).Debug("breakpoint added")
}

// RemoveBreakpoint clears the breakpoint at addr and reports whether
// one was set.
func (e *Engine) RemoveBreakpoint(addr uint16) bool {
	if _, ok := e.bps[addr]; !ok {
		return false
	}
	delete(e.bps, addr)
	e.cache.Flush()
	e.log.WithFields(logrus.Fields{"addr": hex16(addr)}).Debug("breakpoint removed")
	return true
}

// HasBreakpoint implements translate.Breakpoints.
func (e *Engine) HasBreakpoint(addr uint16) bool {
	_, ok := e.bps[addr]
	return ok
}

// Breakpoints returns the breakpoint addresses in ascending order.
func (e *Engine) Breakpoints() []uint16 {
	addrs := make([]uint16, 0, len(e.bps))
	for a := range e.bps {
		addrs = append(addrs, a)
	}
	slices.Sort(addrs)
	return addrs
}
