package check

import (
	"strings"

	"github.com/oisee/i8080/pkg/inst"
)

// Instr is one instruction of a sequence under test.
type Instr struct {
	Op  uint8
	Imm uint16
}

// Immediate values tried for instructions with operands. 0x1001 lands in
// the code under test.
var (
	Imm8Values  = []uint16{0x00, 0x5a, 0xff}
	Imm16Values = []uint16{0x2040, 0x1001}
)

// Ops returns the opcodes sequences are built from: every defined
// instruction that does not transfer control.
func Ops() []uint8 {
	var ops []uint8
	for op := 0; op < 256; op++ {
		info := inst.Lookup(uint8(op))
		if !info.Defined() || info.Category.IsControl() {
			continue
		}
		ops = append(ops, uint8(op))
	}
	return ops
}

// EnumerateSequences generates all sequences of exactly length n.
// The slice passed to fn is reused between calls; fn returns false to stop.
func EnumerateSequences(n int, fn func(seq []Instr) bool) {
	seq := make([]Instr, n)
	enumerateRec(seq, 0, Ops(), fn)
}

func enumerateRec(seq []Instr, pos int, ops []uint8, fn func([]Instr) bool) bool {
	if pos == len(seq) {
		return fn(seq)
	}
	for _, op := range ops {
		var imms []uint16
		switch inst.Lookup(op).Operand {
		case inst.OperandImm8:
			imms = Imm8Values
		case inst.OperandImm16:
			imms = Imm16Values
		default:
			imms = []uint16{0}
		}
		for _, imm := range imms {
			seq[pos] = Instr{Op: op, Imm: imm}
			if !enumerateRec(seq, pos+1, ops, fn) {
				return false
			}
		}
	}
	return true
}

// Encode assembles a sequence followed by halt.
func Encode(seq []Instr) []byte {
	var code []byte
	for _, in := range seq {
		code = append(code, in.Op)
		switch inst.Lookup(in.Op).Size {
		case 2:
			code = append(code, uint8(in.Imm))
		case 3:
			code = append(code, uint8(in.Imm), uint8(in.Imm>>8))
		}
	}
	return append(code, 0x76)
}

// Disassemble renders code as "insn : insn".
func Disassemble(code []byte) string {
	lines, err := inst.Disassemble(code, Org)
	parts := make([]string, 0, len(lines)+1)
	for _, l := range lines {
		parts = append(parts, l.Text)
	}
	if err != nil {
		parts = append(parts, err.Error())
	}
	return strings.Join(parts, " : ")
}

// ShouldPrune returns true if the sequence adds nothing over a shorter one:
// it contains a nop or a register moved onto itself.
func ShouldPrune(seq []Instr) bool {
	for _, in := range seq {
		d := inst.Decode(in.Op)
		if d.Category == inst.Nop {
			return true
		}
		if d.Category == inst.Move && d.Dst() == d.Src() {
			return true
		}
	}
	return false
}
