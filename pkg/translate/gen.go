package translate

import (
	"github.com/oisee/i8080/pkg/cpu"
	"github.com/oisee/i8080/pkg/inst"
)

// generator builds the Op for one decoded instruction. Operand fields are
// extracted here, once, rather than on every execution.
type generator func(d inst.Decoded, imm uint16) Op

var generators = [inst.CategoryCount]generator{
	inst.Nop:           genNop,
	inst.LoadImm8:      genLoadImm8,
	inst.LoadImm16:     genLoadImm16,
	inst.Move:          genMove,
	inst.LoadIndirect:  genLoadIndirect,
	inst.StoreIndirect: genStoreIndirect,
	inst.LoadAbs:       genLoadAbs,
	inst.StoreAbs:      genStoreAbs,
	inst.LoadHLAbs:     genLoadHLAbs,
	inst.StoreHLAbs:    genStoreHLAbs,
	inst.ExchangeDEHL:  genExchangeDEHL,
	inst.ExchangeSPHL:  genExchangeSPHL,
	inst.LoadSPHL:      genLoadSPHL,
	inst.ALU:           genALU,
	inst.ALUImm:        genALUImm,
	inst.Inc8:          genInc8,
	inst.Dec8:          genDec8,
	inst.Inc16:         genInc16,
	inst.Dec16:         genDec16,
	inst.AddHL:         genAddHL,
	inst.Rotate:        genAcc,
	inst.AccOp:         genAcc,
	inst.Jump:          genJump,
	inst.JumpCond:      genJumpCond,
	inst.JumpHL:        genJumpHL,
	inst.Call:          genCall,
	inst.CallCond:      genCallCond,
	inst.Return:        genReturn,
	inst.ReturnCond:    genReturnCond,
	inst.Restart:       genRestart,
	inst.Push:          genPush,
	inst.Pop:           genPop,
	inst.Halt:          genHalt,
	inst.In:            genIn,
	inst.Out:           genOut,
	inst.EnableInt:     genEnableInt,
	inst.DisableInt:    genDisableInt,
}

func generate(d inst.Decoded, imm uint16) Op {
	g := generators[d.Category]
	if g == nil {
		return trapOp(0)
	}
	return g(d, imm)
}

// trapOp leaves PC on the instruction at addr without executing it.
func trapOp(addr uint16) Op {
	return func(s *cpu.State, _ cpu.Bus) { s.PC = addr }
}

func genNop(inst.Decoded, uint16) Op {
	return func(*cpu.State, cpu.Bus) {}
}

// Data movement

func genLoadImm8(d inst.Decoded, imm uint16) Op {
	r, v := d.Dst(), uint8(imm)
	if r == inst.RegA {
		return func(s *cpu.State, _ cpu.Bus) { s.A = v }
	}
	return func(s *cpu.State, bus cpu.Bus) { s.SetReg(r, v, bus) }
}

func genLoadImm16(d inst.Decoded, imm uint16) Op {
	p := d.Pair()
	return func(s *cpu.State, _ cpu.Bus) { s.SetPair(p, imm) }
}

func genMove(d inst.Decoded, _ uint16) Op {
	dst, src := d.Dst(), d.Src()
	if dst == src {
		return genNop(d, 0)
	}
	return func(s *cpu.State, bus cpu.Bus) { s.SetReg(dst, s.Reg(src, bus), bus) }
}

func genLoadIndirect(d inst.Decoded, _ uint16) Op {
	p := d.Pair()
	return func(s *cpu.State, bus cpu.Bus) { s.A = bus.Read(s.Pair(p)) }
}

func genStoreIndirect(d inst.Decoded, _ uint16) Op {
	p := d.Pair()
	return func(s *cpu.State, bus cpu.Bus) { bus.Write(s.Pair(p), s.A) }
}

func genLoadAbs(_ inst.Decoded, addr uint16) Op {
	return func(s *cpu.State, bus cpu.Bus) { s.A = bus.Read(addr) }
}

func genStoreAbs(_ inst.Decoded, addr uint16) Op {
	return func(s *cpu.State, bus cpu.Bus) { bus.Write(addr, s.A) }
}

func genLoadHLAbs(_ inst.Decoded, addr uint16) Op {
	return func(s *cpu.State, bus cpu.Bus) { s.SetHL(cpu.ReadWord(bus, addr)) }
}

func genStoreHLAbs(_ inst.Decoded, addr uint16) Op {
	return func(s *cpu.State, bus cpu.Bus) { cpu.WriteWord(bus, addr, s.HL()) }
}

func genExchangeDEHL(inst.Decoded, uint16) Op {
	return func(s *cpu.State, _ cpu.Bus) {
		s.D, s.E, s.H, s.L = s.H, s.L, s.D, s.E
	}
}

func genExchangeSPHL(inst.Decoded, uint16) Op {
	return func(s *cpu.State, bus cpu.Bus) {
		v := cpu.ReadWord(bus, s.SP)
		cpu.WriteWord(bus, s.SP, s.HL())
		s.SetHL(v)
	}
}

func genLoadSPHL(inst.Decoded, uint16) Op {
	return func(s *cpu.State, _ cpu.Bus) { s.SP = s.HL() }
}

// Arithmetic and logic

func genALU(d inst.Decoded, _ uint16) Op {
	op, src := d.ALU(), d.Src()
	return func(s *cpu.State, bus cpu.Bus) { s.ALU(op, s.Reg(src, bus)) }
}

func genALUImm(d inst.Decoded, imm uint16) Op {
	op, v := d.ALU(), uint8(imm)
	return func(s *cpu.State, _ cpu.Bus) { s.ALU(op, v) }
}

func genInc8(d inst.Decoded, _ uint16) Op {
	r := d.Dst()
	return func(s *cpu.State, bus cpu.Bus) { s.SetReg(r, s.Inc(s.Reg(r, bus)), bus) }
}

func genDec8(d inst.Decoded, _ uint16) Op {
	r := d.Dst()
	return func(s *cpu.State, bus cpu.Bus) { s.SetReg(r, s.Dec(s.Reg(r, bus)), bus) }
}

func genInc16(d inst.Decoded, _ uint16) Op {
	p := d.Pair()
	return func(s *cpu.State, _ cpu.Bus) { s.SetPair(p, s.Pair(p)+1) }
}

func genDec16(d inst.Decoded, _ uint16) Op {
	p := d.Pair()
	return func(s *cpu.State, _ cpu.Bus) { s.SetPair(p, s.Pair(p)-1) }
}

func genAddHL(d inst.Decoded, _ uint16) Op {
	p := d.Pair()
	return func(s *cpu.State, _ cpu.Bus) { s.Dad(s.Pair(p)) }
}

func genAcc(d inst.Decoded, _ uint16) Op {
	k := d.Acc()
	return func(s *cpu.State, _ cpu.Bus) { s.Acc(k) }
}

// Control transfer

func genJump(_ inst.Decoded, target uint16) Op {
	return func(s *cpu.State, _ cpu.Bus) { s.PC = target }
}

func genJumpCond(d inst.Decoded, target uint16) Op {
	c := d.Cond()
	return func(s *cpu.State, _ cpu.Bus) {
		if s.Cond(c) {
			s.PC = target
		}
	}
}

func genJumpHL(inst.Decoded, uint16) Op {
	return func(s *cpu.State, _ cpu.Bus) { s.PC = s.HL() }
}

func genCall(_ inst.Decoded, target uint16) Op {
	return func(s *cpu.State, bus cpu.Bus) {
		s.Push(bus, s.PC)
		s.PC = target
	}
}

func genCallCond(d inst.Decoded, target uint16) Op {
	c := d.Cond()
	return func(s *cpu.State, bus cpu.Bus) {
		if s.Cond(c) {
			s.Push(bus, s.PC)
			s.PC = target
		}
	}
}

func genReturn(inst.Decoded, uint16) Op {
	return func(s *cpu.State, bus cpu.Bus) { s.PC = s.Pop(bus) }
}

func genReturnCond(d inst.Decoded, _ uint16) Op {
	c := d.Cond()
	return func(s *cpu.State, bus cpu.Bus) {
		if s.Cond(c) {
			s.PC = s.Pop(bus)
		}
	}
}

func genRestart(d inst.Decoded, _ uint16) Op {
	return genCall(d, d.Vector())
}

// Stack

func genPush(d inst.Decoded, _ uint16) Op {
	p := d.Pair()
	if p == inst.PairPSW {
		return func(s *cpu.State, bus cpu.Bus) { s.Push(bus, s.PSW()) }
	}
	return func(s *cpu.State, bus cpu.Bus) { s.Push(bus, s.Pair(p)) }
}

func genPop(d inst.Decoded, _ uint16) Op {
	p := d.Pair()
	if p == inst.PairPSW {
		return func(s *cpu.State, bus cpu.Bus) { s.SetPSW(s.Pop(bus)) }
	}
	return func(s *cpu.State, bus cpu.Bus) { s.SetPair(p, s.Pop(bus)) }
}

// Machine control

func genHalt(inst.Decoded, uint16) Op {
	return func(s *cpu.State, _ cpu.Bus) { s.Halted = true }
}

func genIn(_ inst.Decoded, imm uint16) Op {
	port := uint8(imm)
	return func(s *cpu.State, bus cpu.Bus) { s.A = cpu.In(bus, port) }
}

func genOut(_ inst.Decoded, imm uint16) Op {
	port := uint8(imm)
	return func(s *cpu.State, bus cpu.Bus) { cpu.Out(bus, port, s.A) }
}

func genEnableInt(inst.Decoded, uint16) Op {
	return func(s *cpu.State, _ cpu.Bus) { s.IFF = true }
}

func genDisableInt(inst.Decoded, uint16) Op {
	return func(s *cpu.State, _ cpu.Bus) { s.IFF = false }
}
