package translate

import (
	"fmt"
	"strings"

	"github.com/oisee/i8080/pkg/cpu"
	"github.com/oisee/i8080/pkg/inst"
)

// Guest code is grouped into 4 KiB pages. A block never starts an
// instruction on a page other than its first one.
const (
	PageBits = 12
	PageSize = 1 << PageBits
)

// Page returns the page number of a guest address.
func Page(addr uint16) uint16 {
	return addr >> PageBits
}

// ExitKind is the way control leaves a block.
type ExitKind uint8

const (
	ExitNext       ExitKind = iota // straight-line end: page boundary, length limit, ei/di
	ExitJump                       // jmp
	ExitBranch                     // conditional jump, taken or not
	ExitCall                       // call, rst
	ExitCallCond                   // conditional call
	ExitReturn                     // ret
	ExitReturnCond                 // conditional return
	ExitIndirect                   // jmp (hl)
	ExitHalt                       // halt
	ExitTrap                       // breakpoint hit, the instruction was not executed
	ExitIllegal                    // undefined opcode, the instruction was not executed
	ExitFault                      // the bus refused an access, at translation or run time

	// Only produced at run time by Exec.
	ExitInvalidated // the running block was overwritten

	exitKindCount
)

var exitNames = [exitKindCount]string{
	"next", "jump", "branch", "call", "call-cond", "return", "return-cond",
	"indirect", "halt", "trap", "illegal", "fault", "invalidated",
}

func (k ExitKind) String() string {
	if k < exitKindCount {
		return exitNames[k]
	}
	return "exit?"
}

// Op is the run-time semantics of one translated instruction. PC already
// points at the following instruction when an Op is called.
type Op func(s *cpu.State, bus cpu.Bus)

// Insn is one translated guest instruction.
type Insn struct {
	Addr uint16
	inst.Decoded
	Imm uint16 // immediate operand read at translation time

	op Op
}

// Next returns the address of the following instruction.
func (in *Insn) Next() uint16 {
	return in.Addr + uint16(in.Size)
}

func (in *Insn) String() string {
	if !in.Defined() {
		return fmt.Sprintf("illegal 0x%02x", in.Op)
	}
	return inst.Format(in.Info, []uint8{uint8(in.Imm), uint8(in.Imm >> 8)})
}

// Block is a translated basic block.
type Block struct {
	PC     uint16 // address of the first instruction
	End    uint16 // one past the last guest byte the block was built from
	Next   uint16 // fallthrough address
	Target uint16 // static destination of jump, branch and call exits
	Exit   ExitKind
	Insns  []Insn
	Fault  error // code fetch error of an ExitFault block
}

// Pages returns the first and last page holding bytes of the block.
func (b *Block) Pages() (first, last uint16) {
	return Page(b.PC), Page(b.End - 1)
}

// Covers reports whether addr is one of the bytes the block was built from.
func (b *Block) Covers(addr uint16) bool {
	return addr-b.PC < b.End-b.PC
}

// Successor reports which static exit of the block leads to pc: slot 0 is
// the fallthrough, slot 1 the target. Only same-page successors qualify.
func (b *Block) Successor(pc uint16) (slot int, ok bool) {
	if Page(pc) != Page(b.PC) {
		return 0, false
	}
	switch b.Exit {
	case ExitJump, ExitCall:
		if pc == b.Target {
			return 1, true
		}
	case ExitBranch, ExitCallCond:
		if pc == b.Target {
			return 1, true
		}
		if pc == b.Next {
			return 0, true
		}
	case ExitNext, ExitReturnCond:
		if pc == b.Next {
			return 0, true
		}
	}
	return 0, false
}

// Result reports how a block execution ended.
type Result struct {
	Exit     ExitKind
	Executed int   // guest instructions retired
	Err      error // set for ExitFault
}

// Exec runs the block. PC is advanced before each instruction.
//
// If the bus implements cpu.Faulter and reports a fault, the faulting
// instruction's register changes are rolled back, PC is left on it and the
// block stops. If stop is not nil it is polled after every instruction but
// the last; a true result ends the block with ExitInvalidated.
func (b *Block) Exec(s *cpu.State, bus cpu.Bus, stop func() bool) Result {
	faulter, _ := bus.(cpu.Faulter)
	last := len(b.Insns) - 1
	for i := range b.Insns {
		in := &b.Insns[i]
		prev := *s
		s.PC = in.Next()
		in.op(s, bus)
		if faulter != nil {
			if err := faulter.Fault(); err != nil {
				*s = prev
				return Result{Exit: ExitFault, Executed: i, Err: err}
			}
		}
		if i < last && stop != nil && stop() {
			return Result{Exit: ExitInvalidated, Executed: i + 1}
		}
	}
	n := len(b.Insns)
	switch b.Exit {
	case ExitTrap, ExitIllegal, ExitFault:
		n--
	}
	return Result{Exit: b.Exit, Executed: n, Err: b.Fault}
}

// String lists the block one instruction per line.
func (b *Block) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "block 0x%04x-0x%04x exit=%s\n", b.PC, b.End, b.Exit)
	for i := range b.Insns {
		in := &b.Insns[i]
		if i == len(b.Insns)-1 {
			switch b.Exit {
			case ExitTrap, ExitFault:
				fmt.Fprintf(&sb, "0x%04x:  %s\n", in.Addr, b.Exit)
				continue
			}
		}
		fmt.Fprintf(&sb, "0x%04x:  %s\n", in.Addr, in.String())
	}
	return sb.String()
}
