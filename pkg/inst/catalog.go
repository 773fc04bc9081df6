package inst

import "fmt"

// Info holds static metadata for an opcode byte.
type Info struct {
	Mnemonic string   // Printf template, e.g. "ld bc,0x%04x"
	Size     uint8    // Instruction length including operands (0 when undefined)
	Operand  Operand  // How the operand bytes are printed
	Category Category // How the translator realizes the opcode
}

// Defined returns true if the opcode is part of the documented instruction set.
func (i Info) Defined() bool {
	return i.Category != Undefined
}

// catalog is indexed by the raw opcode byte. It is filled once by init and
// only handed out by value afterwards.
var catalog [256]Info

// Lookup returns the table entry for an opcode byte.
func Lookup(op uint8) Info {
	return catalog[op]
}

// DefinedCount returns how many opcode bytes are mapped.
func DefinedCount() int {
	n := 0
	for i := range catalog {
		if catalog[i].Defined() {
			n++
		}
	}
	return n
}

func set(op uint8, mnemonic string, operand Operand, cat Category) {
	if catalog[op].Defined() {
		panic(fmt.Sprintf("inst: opcode 0x%02x defined twice", op))
	}
	catalog[op] = Info{
		Mnemonic: mnemonic,
		Size:     1 + operandBytes(operand),
		Operand:  operand,
		Category: cat,
	}
}

func operandBytes(o Operand) uint8 {
	switch o {
	case OperandImm8:
		return 1
	case OperandImm16:
		return 2
	}
	return 0
}

func init() {
	set(0x00, "nop", OperandNone, Nop)

	// Register pair group: 00pp xxxx
	for p := Pair(0); p < 4; p++ {
		base := uint8(p) << 4
		set(0x01|base, "ld "+p.String()+",0x%04x", OperandImm16, LoadImm16)
		set(0x03|base, "inc "+p.String(), OperandNone, Inc16)
		set(0x09|base, "add hl,"+p.String(), OperandNone, AddHL)
		set(0x0b|base, "dec "+p.String(), OperandNone, Dec16)
	}

	indirect := []struct {
		op       uint8
		mnemonic string
		operand  Operand
		cat      Category
	}{
		{0x02, "st (bc),a", OperandNone, StoreIndirect},
		{0x12, "st (de),a", OperandNone, StoreIndirect},
		{0x0a, "ld a,(bc)", OperandNone, LoadIndirect},
		{0x1a, "ld a,(de)", OperandNone, LoadIndirect},
		{0x22, "st (0x%04x),hl", OperandImm16, StoreHLAbs},
		{0x2a, "ld hl,(0x%04x)", OperandImm16, LoadHLAbs},
		{0x32, "st (0x%04x),a", OperandImm16, StoreAbs},
		{0x3a, "ld a,(0x%04x)", OperandImm16, LoadAbs},
	}
	for _, in := range indirect {
		set(in.op, in.mnemonic, in.operand, in.cat)
	}

	// Single register group: 00rr r1xx
	for r := Reg(0); r < 8; r++ {
		base := uint8(r) << 3
		set(0x04|base, "inc "+r.String(), OperandNone, Inc8)
		set(0x05|base, "dec "+r.String(), OperandNone, Dec8)
		set(0x06|base, "ld "+r.String()+",0x%02x", OperandImm8, LoadImm8)
	}

	// Accumulator group: 00kk k111
	for k := AccOpKind(0); k < 8; k++ {
		cat := AccOp
		if k <= AccRrc {
			cat = Rotate
		}
		set(0x07|uint8(k)<<3, k.String(), OperandNone, cat)
	}

	// Moves: 01dd dsss, with (hl),(hl) taken by halt
	for op := 0x40; op <= 0x7f; op++ {
		if op == 0x76 {
			set(0x76, "halt", OperandNone, Halt)
			continue
		}
		set(uint8(op), "ld "+DstReg(uint8(op)).String()+","+SrcReg(uint8(op)).String(), OperandNone, Move)
	}

	// ALU with register: 10oo osss
	for op := 0x80; op <= 0xbf; op++ {
		set(uint8(op), ALUOpOf(uint8(op)).String()+" "+SrcReg(uint8(op)).String(), OperandNone, ALU)
	}

	// Conditional and restart group: 11cc cxxx
	for c := Cond(0); c < 8; c++ {
		base := uint8(c) << 3
		set(0xc0|base, "r"+c.String(), OperandNone, ReturnCond)
		set(0xc2|base, "j"+c.String()+" 0x%04x", OperandImm16, JumpCond)
		set(0xc4|base, "c"+c.String()+" 0x%04x", OperandImm16, CallCond)
		set(0xc6|base, ALUOp(c).String()+" 0x%02x", OperandImm8, ALUImm)
		set(0xc7|base, fmt.Sprintf("rst %d", int(c)), OperandNone, Restart)
	}

	// Stack group: 11pp 0x01
	for p := Pair(0); p < 4; p++ {
		name := p.String()
		if p == PairPSW {
			name = "af"
		}
		set(0xc1|uint8(p)<<4, "pop "+name, OperandNone, Pop)
		set(0xc5|uint8(p)<<4, "push "+name, OperandNone, Push)
	}

	singles := []struct {
		op       uint8
		mnemonic string
		operand  Operand
		cat      Category
	}{
		{0xc3, "jmp 0x%04x", OperandImm16, Jump},
		{0xc9, "ret", OperandNone, Return},
		{0xcd, "call 0x%04x", OperandImm16, Call},
		{0xd3, "out 0x%02x", OperandImm8, Out},
		{0xdb, "in 0x%02x", OperandImm8, In},
		{0xe3, "ex (sp),hl", OperandNone, ExchangeSPHL},
		{0xe9, "jmp (hl)", OperandNone, JumpHL},
		{0xeb, "ex de,hl", OperandNone, ExchangeDEHL},
		{0xf3, "di", OperandNone, DisableInt},
		{0xf9, "ld sp,hl", OperandNone, LoadSPHL},
		{0xfb, "ei", OperandNone, EnableInt},
	}
	for _, s := range singles {
		set(s.op, s.mnemonic, s.operand, s.cat)
	}
}
