package engine

import "github.com/oisee/i8080/pkg/cpu"

// codeBus sits between translated code and the guest bus. Stores that land
// on translated code invalidate the affected blocks.
type codeBus struct {
	cpu.Bus
	e *Engine
}

func (b *codeBus) Write(addr uint16, v uint8) {
	b.Bus.Write(addr, v)
	if b.e.cache.HasCode(addr) {
		b.e.codeWritten(addr)
	}
}

func (b *codeBus) In(port uint8) uint8 {
	return cpu.In(b.Bus, port)
}

func (b *codeBus) Out(port uint8, v uint8) {
	cpu.Out(b.Bus, port, v)
}

func (b *codeBus) Fault() error {
	if f, ok := b.Bus.(cpu.Faulter); ok {
		return f.Fault()
	}
	return nil
}
