package check

// fill is what unwritten memory outside the code reads as: halt, so that
// any stray jump stops at once.
const fill = 0x76

// Scratch is a sparse bus for short runs. Only written bytes are stored,
// which keeps reloading it cheap.
type Scratch struct {
	org    uint16
	code   []byte
	writes map[uint16]uint8
}

// NewScratch returns an empty scratch bus.
func NewScratch() *Scratch {
	return &Scratch{writes: make(map[uint16]uint8)}
}

// Load forgets all writes and maps code at org.
func (m *Scratch) Load(org uint16, code []byte) {
	m.org = org
	m.code = code
	clear(m.writes)
}

func (m *Scratch) Read(addr uint16) uint8 {
	if v, ok := m.writes[addr]; ok {
		return v
	}
	if off := int(addr - m.org); off < len(m.code) {
		return m.code[off]
	}
	return fill
}

func (m *Scratch) Write(addr uint16, v uint8) {
	m.writes[addr] = v
}

// Writes returns the bytes stored since the last Load.
func (m *Scratch) Writes() map[uint16]uint8 {
	return m.writes
}
