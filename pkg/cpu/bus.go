package cpu

// Bus is the guest address space seen by the CPU. Addresses wrap at 64 KiB.
type Bus interface {
	Read(addr uint16) uint8
	Write(addr uint16, v uint8)
}

// Ports is implemented by buses that also decode the 8-bit I/O space.
// When a bus has no ports, in reads 0xff and out is dropped.
type Ports interface {
	In(port uint8) uint8
	Out(port uint8, v uint8)
}

// Faulter is implemented by buses that can refuse an access. Fault returns
// and clears the first fault raised since the previous call.
type Faulter interface {
	Fault() error
}

// ReadWord reads a little-endian word.
func ReadWord(b Bus, addr uint16) uint16 {
	return uint16(b.Read(addr)) | uint16(b.Read(addr+1))<<8
}

// WriteWord writes a little-endian word.
func WriteWord(b Bus, addr uint16, v uint16) {
	b.Write(addr, uint8(v))
	b.Write(addr+1, uint8(v>>8))
}

// Push decrements SP by two and stores v at the new SP.
func (s *State) Push(b Bus, v uint16) {
	s.SP -= 2
	WriteWord(b, s.SP, v)
}

// Pop loads the word at SP and increments SP by two.
func (s *State) Pop(b Bus) uint16 {
	v := ReadWord(b, s.SP)
	s.SP += 2
	return v
}

// In reads a port through b, or returns 0xff if b has no I/O space.
func In(b Bus, port uint8) uint8 {
	if p, ok := b.(Ports); ok {
		return p.In(port)
	}
	return 0xff
}

// Out writes a port through b if it has an I/O space.
func Out(b Bus, port uint8, v uint8) {
	if p, ok := b.(Ports); ok {
		p.Out(port, v)
	}
}
