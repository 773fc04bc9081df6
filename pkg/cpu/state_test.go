package cpu

import (
	"strings"
	"testing"

	"github.com/oisee/i8080/pkg/inst"
)

func TestReset(t *testing.T) {
	s := State{A: 1, B: 2, SP: 3, F: 0xff, IFF: true, Halted: true}
	s.Reset(0xc000)
	want := State{PC: 0xc000, F: FlagsDefault}
	if !s.Equal(want) {
		t.Errorf("reset: got %+v", s)
	}
}

func TestPairs(t *testing.T) {
	var s State
	var mem Memory
	for p := inst.PairBC; p <= inst.PairSP; p++ {
		s.SetPair(p, 0x1234+uint16(p))
		if got := s.Pair(p); got != 0x1234+uint16(p) {
			t.Errorf("pair %s: got 0x%04x", p, got)
		}
	}
	if s.B != 0x12 || s.C != 0x34 {
		t.Errorf("BC halves: B=0x%02x C=0x%02x", s.B, s.C)
	}
	s.SetHL(0x4000)
	s.SetReg(inst.RegM, 0x99, &mem)
	if mem[0x4000] != 0x99 || s.Reg(inst.RegM, &mem) != 0x99 {
		t.Error("(hl) should address memory at HL")
	}
	for r := inst.RegB; r <= inst.RegA; r++ {
		if r == inst.RegM {
			continue
		}
		s.SetReg(r, uint8(r)+0x10, &mem)
		if s.Reg(r, &mem) != uint8(r)+0x10 {
			t.Errorf("reg %s round trip", r)
		}
	}
}

func TestPSWSanitize(t *testing.T) {
	var s State
	s.SetPSW(0x12ff)
	if s.A != 0x12 || s.F != 0xd7 {
		t.Errorf("SetPSW(0x12ff): A=0x%02x F=0x%02x", s.A, s.F)
	}
	s.SetPSW(0x0000)
	if s.F != Flag1 {
		t.Errorf("SetPSW(0): F=0x%02x", s.F)
	}
}

func TestPushPop(t *testing.T) {
	var mem Memory
	s := State{SP: 0x0000}
	s.Push(&mem, 0xbeef)
	if s.SP != 0xfffe {
		t.Errorf("SP after push: 0x%04x", s.SP)
	}
	if mem[0xfffe] != 0xef || mem[0xffff] != 0xbe {
		t.Error("push should store little-endian")
	}
	if v := s.Pop(&mem); v != 0xbeef || s.SP != 0 {
		t.Errorf("pop: 0x%04x SP=0x%04x", v, s.SP)
	}
}

func TestWordWrap(t *testing.T) {
	var mem Memory
	WriteWord(&mem, 0xffff, 0x1234)
	if mem[0xffff] != 0x34 || mem[0x0000] != 0x12 {
		t.Error("word access should wrap at 64K")
	}
	mem.Load(0xfffe, []byte{1, 2, 3})
	if mem[0x0000] != 3 {
		t.Error("Load should wrap at 64K")
	}
}

func TestPortsAbsent(t *testing.T) {
	var mem Memory
	if In(&mem, 0x10) != 0xff {
		t.Error("in without ports should read 0xff")
	}
	Out(&mem, 0x10, 1)
}

func TestDump(t *testing.T) {
	s := State{A: 0x12, B: 0x34, C: 0x56, SP: 0xfff0, PC: 0xc003, F: FlagsDefault | FlagZ | FlagC}
	want := "PC=c003 A=12 BC=3456 DE=0000 HL=0000 SP=fff0\nS=0 Z=1 A=0 P=0 C=1\n"
	var sb strings.Builder
	if err := s.Dump(&sb); err != nil {
		t.Fatal(err)
	}
	if sb.String() != want {
		t.Errorf("dump:\n%s\nwant:\n%s", sb.String(), want)
	}
	if s.String() != want {
		t.Error("String should match Dump")
	}
}

func TestRegisterFrame(t *testing.T) {
	s := State{A: 0xab, F: 0x03, B: 1, C: 2, D: 3, E: 4, H: 5, L: 6, SP: 0x7788, PC: 0x99aa}
	want := []uint16{0xab03, 0x0102, 0x0304, 0x0506, 0x7788, 0x99aa, 0, 0}
	for n, w := range want {
		if got := s.ReadRegister(n); got != w {
			t.Errorf("register %d: got 0x%04x, want 0x%04x", n, got, w)
		}
	}
	if s.WriteRegister(7, 1) {
		t.Error("register 7 should not be writable")
	}
	if !s.WriteRegister(5, 0x1000) || s.PC != 0x1000 {
		t.Error("register 5 should write PC")
	}
}
