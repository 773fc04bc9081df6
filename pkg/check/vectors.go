package check

import "github.com/oisee/i8080/pkg/cpu"

// Org is where sequences under test are loaded.
const Org = 0x1000

// Vectors are the fixed input states every sequence is run from. The last
// one points HL and DE into the code itself so stores exercise
// self-modifying code handling.
var Vectors = []cpu.State{
	{A: 0x00, F: 0x02, B: 0x00, C: 0x00, D: 0x00, E: 0x00, H: 0x00, L: 0x00, SP: 0x0000},
	{A: 0xFF, F: 0xD7, B: 0xFF, C: 0xFF, D: 0xFF, E: 0xFF, H: 0xFF, L: 0xFF, SP: 0xFFFF},
	{A: 0x01, F: 0x02, B: 0x02, C: 0x03, D: 0x04, E: 0x05, H: 0x06, L: 0x07, SP: 0x1234},
	{A: 0x80, F: 0x03, B: 0x40, C: 0x20, D: 0x10, E: 0x08, H: 0x04, L: 0x02, SP: 0x8000},
	{A: 0x55, F: 0x16, B: 0xAA, C: 0x55, D: 0xAA, E: 0x55, H: 0xAA, L: 0x55, SP: 0x5555},
	{A: 0xAA, F: 0x43, B: 0x55, C: 0xAA, D: 0x55, E: 0xAA, H: 0x55, L: 0xAA, SP: 0xAAAA},
	{A: 0x0F, F: 0x12, B: 0xF0, C: 0x0F, D: 0xF0, E: 0x0F, H: 0xF0, L: 0x0F, SP: 0xFFFE},
	{A: 0x7F, F: 0x87, B: 0x80, C: 0x7F, D: 0x80, E: 0x7F, H: 0x80, L: 0x7F, SP: 0x7FFF},
	{A: 0x3C, F: 0x02, B: 0x00, C: 0x04, D: 0x10, E: 0x02, H: 0x10, L: 0x01, SP: 0x1008},
}

// vector returns input i ready to run at Org.
func vector(i int) cpu.State {
	s := Vectors[i]
	s.PC = Org
	s.F = cpu.SanitizeFlags(s.F)
	return s
}
