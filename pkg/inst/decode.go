package inst

// Decoded is the result of decoding one opcode byte.
type Decoded struct {
	Op uint8
	Info
}

// Decode maps an opcode byte to its category, size and operand fields.
// Unmapped bytes decode with Category Undefined and Size 0.
func Decode(op uint8) Decoded {
	return Decoded{Op: op, Info: catalog[op]}
}

// Dst returns the destination register field (bits 3-5).
func (d Decoded) Dst() Reg { return DstReg(d.Op) }

// Src returns the source register field (bits 0-2).
func (d Decoded) Src() Reg { return SrcReg(d.Op) }

// Pair returns the register pair field (bits 4-5).
func (d Decoded) Pair() Pair { return RegPair(d.Op) }

// Cond returns the condition code field (bits 3-5).
func (d Decoded) Cond() Cond { return CondCode(d.Op) }

// ALU returns the ALU operation field (bits 3-5).
func (d Decoded) ALU() ALUOp { return ALUOpOf(d.Op) }

// Acc returns the accumulator operation field (bits 3-5).
func (d Decoded) Acc() AccOpKind { return AccOpKind((d.Op >> 3) & 7) }

// Vector returns the restart target address of an rst opcode.
func (d Decoded) Vector() uint16 { return uint16(d.Op & 0x38) }

// DstReg extracts bits 3-5.
func DstReg(op uint8) Reg { return Reg((op >> 3) & 7) }

// SrcReg extracts bits 0-2.
func SrcReg(op uint8) Reg { return Reg(op & 7) }

// RegPair extracts bits 4-5.
func RegPair(op uint8) Pair { return Pair((op >> 4) & 3) }

// CondCode extracts bits 3-5.
func CondCode(op uint8) Cond { return Cond((op >> 3) & 7) }

// ALUOpOf extracts bits 3-5 as an ALU operation.
func ALUOpOf(op uint8) ALUOp { return ALUOp((op >> 3) & 7) }
