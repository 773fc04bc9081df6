package inst

// Category groups opcodes by how the translator realizes them.
// Every opcode byte maps to exactly one category; bytes the 8080 does not
// document map to Undefined.
type Category uint8

const (
	Undefined Category = iota
	Nop

	// Data movement
	LoadImm8      // mvi r,n
	LoadImm16     // lxi rp,nn
	Move          // mov r,r'
	LoadIndirect  // ldax b/d
	StoreIndirect // stax b/d
	LoadAbs       // lda nn
	StoreAbs      // sta nn
	LoadHLAbs     // lhld nn
	StoreHLAbs    // shld nn
	ExchangeDEHL  // xchg
	ExchangeSPHL  // xthl
	LoadSPHL      // sphl

	// Arithmetic and logic
	ALU    // add..cmp r
	ALUImm // adi..cpi n
	Inc8
	Dec8
	Inc16
	Dec16
	AddHL  // dad rp
	Rotate // rlc, rrc, ral, rar
	AccOp  // daa, cma, stc, cmc

	// Control transfer
	Jump
	JumpCond
	JumpHL
	Call
	CallCond
	Return
	ReturnCond
	Restart

	// Stack
	Push
	Pop

	// Machine control
	Halt
	In
	Out
	EnableInt
	DisableInt

	CategoryCount
)

var categoryNames = [CategoryCount]string{
	Undefined:     "undefined",
	Nop:           "nop",
	LoadImm8:      "load-imm8",
	LoadImm16:     "load-imm16",
	Move:          "move",
	LoadIndirect:  "load-indirect",
	StoreIndirect: "store-indirect",
	LoadAbs:       "load-abs",
	StoreAbs:      "store-abs",
	LoadHLAbs:     "load-hl-abs",
	StoreHLAbs:    "store-hl-abs",
	ExchangeDEHL:  "xchg",
	ExchangeSPHL:  "xthl",
	LoadSPHL:      "sphl",
	ALU:           "alu",
	ALUImm:        "alu-imm",
	Inc8:          "inc8",
	Dec8:          "dec8",
	Inc16:         "inc16",
	Dec16:         "dec16",
	AddHL:         "add-hl",
	Rotate:        "rotate",
	AccOp:         "acc-op",
	Jump:          "jump",
	JumpCond:      "jump-cond",
	JumpHL:        "jump-hl",
	Call:          "call",
	CallCond:      "call-cond",
	Return:        "return",
	ReturnCond:    "return-cond",
	Restart:       "restart",
	Push:          "push",
	Pop:           "pop",
	Halt:          "halt",
	In:            "in",
	Out:           "out",
	EnableInt:     "ei",
	DisableInt:    "di",
}

func (c Category) String() string {
	if c < CategoryCount {
		return categoryNames[c]
	}
	return "category?"
}

// IsControl returns true for categories that always end a basic block.
func (c Category) IsControl() bool {
	switch c {
	case Jump, JumpCond, JumpHL, Call, CallCond, Return, ReturnCond, Restart, Halt:
		return true
	}
	return false
}

// Operand is the operand-print strategy of an opcode.
type Operand uint8

const (
	OperandNone  Operand = iota // no operand bytes
	OperandImm8                 // one byte, printed 0x%02x
	OperandImm16                // little-endian word, printed 0x%04x
)

// Reg is the 3-bit 8-bit register encoding used in opcode fields.
type Reg uint8

const (
	RegB Reg = iota
	RegC
	RegD
	RegE
	RegH
	RegL
	RegM // memory via HL
	RegA
)

var regNames = [8]string{"b", "c", "d", "e", "h", "l", "(hl)", "a"}

func (r Reg) String() string {
	return regNames[r&7]
}

// Pair is the 2-bit register pair encoding (bits 4-5).
// Index 3 means SP, except for push/pop where it means A+flags.
type Pair uint8

const (
	PairBC Pair = iota
	PairDE
	PairHL
	PairSP
)

// PairPSW aliases PairSP for push/pop.
const PairPSW = PairSP

var pairNames = [4]string{"bc", "de", "hl", "sp"}

func (p Pair) String() string {
	return pairNames[p&3]
}

// Cond is the 3-bit condition code of conditional jump/call/return.
// Even codes test for a clear flag, odd codes for a set flag.
type Cond uint8

const (
	CondNZ Cond = iota
	CondZ
	CondNC
	CondC
	CondPO
	CondPE
	CondP
	CondM
)

var condNames = [8]string{"nz", "z", "nc", "c", "po", "pe", "p", "m"}

func (c Cond) String() string {
	return condNames[c&7]
}

// Positive returns true if the condition is taken when its flag is set.
func (c Cond) Positive() bool {
	return c&1 != 0
}

// ALUOp is the operation field (bits 3-5) of the 8-bit ALU group.
type ALUOp uint8

const (
	OpAdd ALUOp = iota
	OpAdc
	OpSub
	OpSbc
	OpAnd
	OpXor
	OpOr
	OpCmp
)

var aluNames = [8]string{"add", "adc", "sub", "sbc", "and", "xor", "or", "cmp"}

func (o ALUOp) String() string {
	return aluNames[o&7]
}

// AccOpKind is the operation field (bits 3-5) of the 00xxx111 accumulator group.
type AccOpKind uint8

const (
	AccRol AccOpKind = iota // rotate left, bit 7 into bit 0 and carry
	AccRor                  // rotate right, bit 0 into bit 7 and carry
	AccRlc                  // rotate left through carry
	AccRrc                  // rotate right through carry
	AccDaa
	AccCpl
	AccScf
	AccCcf
)

var accNames = [8]string{"rol", "ror", "rlc", "rrc", "daa", "cpl", "scf", "ccf"}

func (k AccOpKind) String() string {
	return accNames[k&7]
}
