package cpu

import "github.com/oisee/i8080/pkg/inst"

// State is the 8080 register file.
//
// The 8-bit halves are stored individually; the register pairs BC, DE and
// HL are views over them. Go's uint8/uint16 arithmetic provides the
// architectural wraparound.
type State struct {
	A, F, B, C, D, E, H, L uint8
	SP, PC                 uint16

	IFF    bool // interrupts enabled (ei/di)
	Halted bool // stopped by halt until an interrupt arrives
}

// Reset puts the register file into its power-on state: PC at the boot
// vector, every other register zero and the flags at their fixed pattern.
func (s *State) Reset(boot uint16) {
	*s = State{F: FlagsDefault, PC: boot}
}

// Equal returns true if two states are identical.
func (s State) Equal(o State) bool {
	return s == o
}

func (s *State) BC() uint16 { return uint16(s.B)<<8 | uint16(s.C) }
func (s *State) DE() uint16 { return uint16(s.D)<<8 | uint16(s.E) }
func (s *State) HL() uint16 { return uint16(s.H)<<8 | uint16(s.L) }

// PSW returns A in the high byte and the flags in the low byte.
func (s *State) PSW() uint16 { return uint16(s.A)<<8 | uint16(s.F) }

func (s *State) SetBC(v uint16) { s.B, s.C = uint8(v>>8), uint8(v) }
func (s *State) SetDE(v uint16) { s.D, s.E = uint8(v>>8), uint8(v) }
func (s *State) SetHL(v uint16) { s.H, s.L = uint8(v>>8), uint8(v) }

// SetPSW loads A and the flags. Flag bits with a fixed value are forced.
func (s *State) SetPSW(v uint16) {
	s.A = uint8(v >> 8)
	s.F = SanitizeFlags(uint8(v))
}

// Pair returns a register pair by its opcode encoding (SP for index 3).
func (s *State) Pair(p inst.Pair) uint16 {
	switch p & 3 {
	case inst.PairBC:
		return s.BC()
	case inst.PairDE:
		return s.DE()
	case inst.PairHL:
		return s.HL()
	}
	return s.SP
}

// SetPair stores a register pair by its opcode encoding (SP for index 3).
func (s *State) SetPair(p inst.Pair, v uint16) {
	switch p & 3 {
	case inst.PairBC:
		s.SetBC(v)
	case inst.PairDE:
		s.SetDE(v)
	case inst.PairHL:
		s.SetHL(v)
	default:
		s.SP = v
	}
}

// Reg reads an 8-bit register by its opcode encoding. RegM reads the byte
// addressed by HL.
func (s *State) Reg(r inst.Reg, bus Bus) uint8 {
	switch r & 7 {
	case inst.RegB:
		return s.B
	case inst.RegC:
		return s.C
	case inst.RegD:
		return s.D
	case inst.RegE:
		return s.E
	case inst.RegH:
		return s.H
	case inst.RegL:
		return s.L
	case inst.RegM:
		return bus.Read(s.HL())
	}
	return s.A
}

// SetReg writes an 8-bit register by its opcode encoding. RegM writes the
// byte addressed by HL.
func (s *State) SetReg(r inst.Reg, v uint8, bus Bus) {
	switch r & 7 {
	case inst.RegB:
		s.B = v
	case inst.RegC:
		s.C = v
	case inst.RegD:
		s.D = v
	case inst.RegE:
		s.E = v
	case inst.RegH:
		s.H = v
	case inst.RegL:
		s.L = v
	case inst.RegM:
		bus.Write(s.HL(), v)
	default:
		s.A = v
	}
}
