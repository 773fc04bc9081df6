package inst

import (
	"testing"
)

// TestCatalogCompleteness verifies every defined opcode has a usable entry.
func TestCatalogCompleteness(t *testing.T) {
	if n := DefinedCount(); n != 244 {
		t.Errorf("DefinedCount() = %d, want 244", n)
	}
	for op := 0; op < 256; op++ {
		info := Lookup(uint8(op))
		if !info.Defined() {
			if info.Size != 0 || info.Mnemonic != "" {
				t.Errorf("undefined opcode 0x%02X has size %d mnemonic %q", op, info.Size, info.Mnemonic)
			}
			continue
		}
		if info.Mnemonic == "" {
			t.Errorf("opcode 0x%02X has no mnemonic", op)
		}
		if want := 1 + operandBytes(info.Operand); info.Size != want {
			t.Errorf("opcode 0x%02X (%s): size %d, want %d", op, info.Mnemonic, info.Size, want)
		}
	}
}

// TestUndefinedOpcodes verifies the undocumented aliases stay unmapped.
func TestUndefinedOpcodes(t *testing.T) {
	for _, op := range []uint8{0x08, 0x10, 0x18, 0x20, 0x28, 0x30, 0x38, 0xcb, 0xd9, 0xdd, 0xed, 0xfd} {
		if d := Decode(op); d.Category != Undefined {
			t.Errorf("opcode 0x%02X decoded as %v, want undefined", op, d.Category)
		}
	}
}

// TestEncodingSpotChecks pins a handful of well-known encodings.
func TestEncodingSpotChecks(t *testing.T) {
	tests := []struct {
		op       uint8
		mnemonic string
		size     uint8
		cat      Category
	}{
		{0x00, "nop", 1, Nop},
		{0x01, "ld bc,0x%04x", 3, LoadImm16},
		{0x06, "ld b,0x%02x", 2, LoadImm8},
		{0x07, "rol", 1, Rotate},
		{0x0f, "ror", 1, Rotate},
		{0x17, "rlc", 1, Rotate},
		{0x1f, "rrc", 1, Rotate},
		{0x27, "daa", 1, AccOp},
		{0x32, "st (0x%04x),a", 3, StoreAbs},
		{0x36, "ld (hl),0x%02x", 2, LoadImm8},
		{0x3e, "ld a,0x%02x", 2, LoadImm8},
		{0x46, "ld b,(hl)", 1, Move},
		{0x70, "ld (hl),b", 1, Move},
		{0x76, "halt", 1, Halt},
		{0x7f, "ld a,a", 1, Move},
		{0x86, "add (hl)", 1, ALU},
		{0xbf, "cmp a", 1, ALU},
		{0xc2, "jnz 0x%04x", 3, JumpCond},
		{0xc3, "jmp 0x%04x", 3, Jump},
		{0xc9, "ret", 1, Return},
		{0xcd, "call 0x%04x", 3, Call},
		{0xd8, "rc", 1, ReturnCond},
		{0xe9, "jmp (hl)", 1, JumpHL},
		{0xf5, "push af", 1, Push},
		{0xfe, "cmp 0x%02x", 2, ALUImm},
		{0xff, "rst 7", 1, Restart},
	}
	for _, tc := range tests {
		info := Lookup(tc.op)
		if info.Mnemonic != tc.mnemonic || info.Size != tc.size || info.Category != tc.cat {
			t.Errorf("0x%02X: got {%q %d %v}, want {%q %d %v}",
				tc.op, info.Mnemonic, info.Size, info.Category, tc.mnemonic, tc.size, tc.cat)
		}
	}
}

// TestFieldExtraction verifies the bit-field helpers against the encoding rules.
func TestFieldExtraction(t *testing.T) {
	for op := 0; op < 256; op++ {
		b := uint8(op)
		if got, want := RegPair(b), Pair((b>>4)&3); got != want {
			t.Errorf("RegPair(0x%02X) = %v, want %v", b, got, want)
		}
		if got, want := DstReg(b), Reg((b>>3)&7); got != want {
			t.Errorf("DstReg(0x%02X) = %v, want %v", b, got, want)
		}
		if got, want := SrcReg(b), Reg(b&7); got != want {
			t.Errorf("SrcReg(0x%02X) = %v, want %v", b, got, want)
		}
	}

	d := Decode(0x78) // ld a,b
	if d.Dst() != RegA || d.Src() != RegB {
		t.Errorf("0x78: dst=%v src=%v, want a,b", d.Dst(), d.Src())
	}
	d = Decode(0x31) // ld sp,nn
	if d.Pair() != PairSP {
		t.Errorf("0x31: pair=%v, want sp", d.Pair())
	}
	d = Decode(0xfa) // jm nn
	if d.Cond() != CondM || !d.Cond().Positive() {
		t.Errorf("0xFA: cond=%v positive=%v, want m/true", d.Cond(), d.Cond().Positive())
	}
	d = Decode(0xef) // rst 5
	if d.Vector() != 0x28 {
		t.Errorf("0xEF: vector=0x%04X, want 0x0028", d.Vector())
	}
}

// TestControlCategories verifies which categories end a block.
func TestControlCategories(t *testing.T) {
	for op := 0; op < 256; op++ {
		d := Decode(uint8(op))
		switch d.Category {
		case Jump, JumpCond, JumpHL, Call, CallCond, Return, ReturnCond, Restart, Halt:
			if !d.Category.IsControl() {
				t.Errorf("0x%02X (%s) should be control", op, d.Mnemonic)
			}
		default:
			if d.Category.IsControl() {
				t.Errorf("0x%02X (%s) should not be control", op, d.Mnemonic)
			}
		}
	}
}
