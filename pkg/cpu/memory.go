package cpu

// Memory is a flat 64 KiB RAM implementing Bus.
type Memory [0x10000]uint8

func (m *Memory) Read(addr uint16) uint8     { return m[addr] }
func (m *Memory) Write(addr uint16, v uint8) { m[addr] = v }

// Load copies data to addr, wrapping at the top of the address space.
func (m *Memory) Load(addr uint16, data []byte) {
	for i, b := range data {
		m[addr+uint16(i)] = b
	}
}
