package translate

import (
	"github.com/oisee/i8080/pkg/cpu"
	"github.com/oisee/i8080/pkg/inst"
)

// DefaultMaxInsns bounds the length of a block when Translator.MaxInsns is zero.
const DefaultMaxInsns = 512

// Fetcher supplies guest code bytes at translation time.
type Fetcher interface {
	Read(addr uint16) uint8
}

// Breakpoints is consulted before each instruction is translated.
type Breakpoints interface {
	HasBreakpoint(addr uint16) bool
}

// Options adjusts a single translation.
type Options struct {
	// IgnoreBreakpoint translates the instruction at the block's start
	// address even if a breakpoint is set there. Used to resume after a trap.
	IgnoreBreakpoint bool
	// Single stops the block after one instruction.
	Single bool
}

// Translator turns guest code into basic blocks.
type Translator struct {
	MaxInsns int
}

// Translate builds the block starting at pc. It never fails: undefined
// opcodes, breakpoints and code fetches refused by a cpu.Faulter become
// block exits. A fetch fault ends the block before the instruction whose
// bytes could not be read; the block's Fault holds the error.
func (t *Translator) Translate(code Fetcher, pc uint16, bp Breakpoints, opts Options) *Block {
	limit := t.MaxInsns
	if limit <= 0 {
		limit = DefaultMaxInsns
	}
	if opts.Single {
		limit = 1
	}

	faulter, _ := code.(cpu.Faulter)
	b := &Block{PC: pc, Exit: ExitNext}
	page := Page(pc)
	addr := pc
	for {
		if bp != nil && bp.HasBreakpoint(addr) && !(opts.IgnoreBreakpoint && addr == pc) {
			b.Insns = append(b.Insns, Insn{Addr: addr, op: trapOp(addr)})
			b.Exit = ExitTrap
			b.Next = addr
			b.End = addr + 1
			return b
		}

		d := inst.Decode(code.Read(addr))
		var imm uint16
		switch d.Size {
		case 2:
			imm = uint16(code.Read(addr + 1))
		case 3:
			imm = uint16(code.Read(addr+1)) | uint16(code.Read(addr+2))<<8
		}
		if faulter != nil {
			if err := faulter.Fault(); err != nil {
				b.Insns = append(b.Insns, Insn{Addr: addr, op: trapOp(addr)})
				b.Exit = ExitFault
				b.Fault = err
				b.Next = addr
				b.End = addr + 1
				return b
			}
		}

		if !d.Defined() {
			b.Insns = append(b.Insns, Insn{Addr: addr, Decoded: d, op: trapOp(addr)})
			b.Exit = ExitIllegal
			b.Next = addr
			b.End = addr + 1
			return b
		}

		b.Insns = append(b.Insns, Insn{Addr: addr, Decoded: d, Imm: imm, op: generate(d, imm)})
		addr += uint16(d.Size)
		b.Next = addr
		b.End = addr

		if exit, target, ok := exitOf(d, imm); ok {
			b.Exit = exit
			b.Target = target
			return b
		}
		if len(b.Insns) >= limit || Page(addr) != page {
			return b
		}
	}
}

// exitOf returns the block exit an instruction forces, if any.
func exitOf(d inst.Decoded, imm uint16) (ExitKind, uint16, bool) {
	switch d.Category {
	case inst.Jump:
		return ExitJump, imm, true
	case inst.JumpCond:
		return ExitBranch, imm, true
	case inst.JumpHL:
		return ExitIndirect, 0, true
	case inst.Call:
		return ExitCall, imm, true
	case inst.CallCond:
		return ExitCallCond, imm, true
	case inst.Restart:
		return ExitCall, d.Vector(), true
	case inst.Return:
		return ExitReturn, 0, true
	case inst.ReturnCond:
		return ExitReturnCond, 0, true
	case inst.Halt:
		return ExitHalt, 0, true
	case inst.EnableInt, inst.DisableInt:
		// The scheduler must see the new interrupt state before going on.
		return ExitNext, 0, true
	}
	return 0, 0, false
}
