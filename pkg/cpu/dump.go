package cpu

import (
	"fmt"
	"io"
	"strings"
)

// Dump writes the register file in a fixed two-line layout: the program
// counter, accumulator and register pairs, then each flag bit.
func (s *State) Dump(w io.Writer) error {
	_, err := fmt.Fprintf(w, "PC=%04x A=%02x BC=%04x DE=%04x HL=%04x SP=%04x\nS=%d Z=%d A=%d P=%d C=%d\n",
		s.PC, s.A, s.BC(), s.DE(), s.HL(), s.SP,
		s.Flag(FlagS), s.Flag(FlagZ), s.Flag(FlagA), s.Flag(FlagP), s.Flag(FlagC))
	return err
}

func (s State) String() string {
	var sb strings.Builder
	s.Dump(&sb)
	return sb.String()
}

// NumRegisters is the size of the debugger register frame.
const NumRegisters = 6

// ReadRegister returns register n of the debugger frame: 0 is A:F, 1-4 are
// BC, DE, HL and SP, 5 is PC. Other indices read as zero.
func (s *State) ReadRegister(n int) uint16 {
	switch n {
	case 0:
		return s.PSW()
	case 1:
		return s.BC()
	case 2:
		return s.DE()
	case 3:
		return s.HL()
	case 4:
		return s.SP
	case 5:
		return s.PC
	}
	return 0
}

// WriteRegister stores register n of the debugger frame and reports
// whether n named a register.
func (s *State) WriteRegister(n int, v uint16) bool {
	switch n {
	case 0:
		s.SetPSW(v)
	case 1:
		s.SetBC(v)
	case 2:
		s.SetDE(v)
	case 3:
		s.SetHL(v)
	case 4:
		s.SP = v
	case 5:
		s.PC = v
	default:
		return false
	}
	return true
}
