package check

import (
	"math/rand/v2"

	"github.com/oisee/i8080/pkg/inst"
)

// Mutator applies random mutations to instruction sequences.
type Mutator struct {
	rng    *rand.Rand
	ops    []uint8
	maxLen int
}

// NewMutator creates a Mutator drawing from Ops.
func NewMutator(rng *rand.Rand, maxLen int) *Mutator {
	if maxLen < 1 {
		maxLen = 1
	}
	return &Mutator{rng: rng, ops: Ops(), maxLen: maxLen}
}

// Random returns a fresh sequence of n random instructions.
func (m *Mutator) Random(n int) []Instr {
	seq := make([]Instr, n)
	for i := range seq {
		seq[i] = m.randomInstr()
	}
	return seq
}

// move is one kind of mutation and its relative weight.
type move struct {
	weight int
	apply  func(m *Mutator, seq []Instr) []Instr
}

// Stores into the code under test exercise block invalidation, so
// AimAtCode gets a large share.
var moves = []move{
	{30, (*Mutator).Replace},
	{15, (*Mutator).Swap},
	{15, (*Mutator).Delete},
	{10, (*Mutator).Insert},
	{10, (*Mutator).ChangeImmediate},
	{20, (*Mutator).AimAtCode},
}

var totalWeight = func() int {
	n := 0
	for _, mv := range moves {
		n += mv.weight
	}
	return n
}()

// Mutate returns a mutated copy of seq. seq is not modified.
func (m *Mutator) Mutate(seq []Instr) []Instr {
	r := m.rng.IntN(totalWeight)
	for _, mv := range moves {
		if r < mv.weight {
			return mv.apply(m, seq)
		}
		r -= mv.weight
	}
	return m.Replace(seq)
}

// Replace swaps one instruction for a random one.
func (m *Mutator) Replace(seq []Instr) []Instr {
	out := clone(seq)
	out[m.rng.IntN(len(out))] = m.randomInstr()
	return out
}

// Swap exchanges two adjacent instructions.
func (m *Mutator) Swap(seq []Instr) []Instr {
	out := clone(seq)
	if len(out) < 2 {
		return out
	}
	pos := m.rng.IntN(len(out) - 1)
	out[pos], out[pos+1] = out[pos+1], out[pos]
	return out
}

// Delete removes one instruction unless only one is left.
func (m *Mutator) Delete(seq []Instr) []Instr {
	if len(seq) <= 1 {
		return clone(seq)
	}
	pos := m.rng.IntN(len(seq))
	out := make([]Instr, 0, len(seq)-1)
	out = append(out, seq[:pos]...)
	return append(out, seq[pos+1:]...)
}

// Insert adds a random instruction. At the length limit it replaces instead.
func (m *Mutator) Insert(seq []Instr) []Instr {
	if len(seq) >= m.maxLen {
		return m.Replace(seq)
	}
	pos := m.rng.IntN(len(seq) + 1)
	out := make([]Instr, 0, len(seq)+1)
	out = append(out, seq[:pos]...)
	out = append(out, m.randomInstr())
	return append(out, seq[pos:]...)
}

// ChangeImmediate randomizes the operand of one instruction that has one.
func (m *Mutator) ChangeImmediate(seq []Instr) []Instr {
	var pos []int
	for i, in := range seq {
		if inst.Lookup(in.Op).Operand != inst.OperandNone {
			pos = append(pos, i)
		}
	}
	if len(pos) == 0 {
		return m.Replace(seq)
	}
	out := clone(seq)
	p := pos[m.rng.IntN(len(pos))]
	out[p].Imm = m.randomImm(out[p].Op)
	return out
}

// Store opcodes AimAtCode can plant: ld (0x%04x),a and ld (0x%04x),hl.
var codeStores = []uint8{0x32, 0x22}

// AimAtCode points a 16-bit operand (an address, a stack pointer or a
// pointer pair) at a byte of the encoded sequence. Without one, it plants
// a store to such a byte in place of a random instruction.
func (m *Mutator) AimAtCode(seq []Instr) []Instr {
	out := clone(seq)
	var pos []int
	for i, in := range out {
		if inst.Lookup(in.Op).Operand == inst.OperandImm16 {
			pos = append(pos, i)
		}
	}
	if len(pos) == 0 {
		pos = []int{m.rng.IntN(len(out))}
		out[pos[0]].Op = codeStores[m.rng.IntN(len(codeStores))]
	}
	p := pos[m.rng.IntN(len(pos))]
	out[p].Imm = Org + uint16(m.rng.IntN(len(Encode(out))))
	return out
}

func (m *Mutator) randomInstr() Instr {
	op := m.ops[m.rng.IntN(len(m.ops))]
	return Instr{Op: op, Imm: m.randomImm(op)}
}

func (m *Mutator) randomImm(op uint8) uint16 {
	switch inst.Lookup(op).Operand {
	case inst.OperandImm8:
		return uint16(m.rng.IntN(256))
	case inst.OperandImm16:
		return uint16(m.rng.IntN(65536))
	}
	return 0
}

func clone(seq []Instr) []Instr {
	out := make([]Instr, len(seq))
	copy(out, seq)
	return out
}
