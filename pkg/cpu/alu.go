package cpu

import "github.com/oisee/i8080/pkg/inst"

// Carry and aux-carry are taken from the widened result before it is
// truncated back to 8 or 16 bits.

// ALU applies one of the eight accumulator operations of the 10xxxsss and
// 11xxx110 groups.
func (s *State) ALU(op inst.ALUOp, v uint8) {
	switch op & 7 {
	case inst.OpAdd:
		s.Add(v)
	case inst.OpAdc:
		s.Adc(v)
	case inst.OpSub:
		s.Sub(v)
	case inst.OpSbc:
		s.Sbc(v)
	case inst.OpAnd:
		s.And(v)
	case inst.OpXor:
		s.Xor(v)
	case inst.OpOr:
		s.Or(v)
	default:
		s.Cmp(v)
	}
}

// Acc applies one of the 00xxx111 accumulator/flag operations.
func (s *State) Acc(k inst.AccOpKind) {
	switch k & 7 {
	case inst.AccRol:
		s.Rol()
	case inst.AccRor:
		s.Ror()
	case inst.AccRlc:
		s.Rlc()
	case inst.AccRrc:
		s.Rrc()
	case inst.AccDaa:
		s.Daa()
	case inst.AccCpl:
		s.Cpl()
	case inst.AccScf:
		s.Stc()
	default:
		s.Cmc()
	}
}

// Cpl complements A. No flags change.
func (s *State) Cpl() { s.A = ^s.A }

func (s *State) Stc() { s.F |= FlagC }
func (s *State) Cmc() { s.F ^= FlagC }

func (s *State) Add(v uint8) { s.add(v, 0) }
func (s *State) Adc(v uint8) { s.add(v, s.F&FlagC) }

func (s *State) add(v, cin uint8) {
	sum := uint16(s.A) + uint16(v) + uint16(cin)
	aux := s.A&0x0f+v&0x0f+cin > 0x0f
	s.A = uint8(sum)
	s.F = SZPTable[s.A] | Flag1 | bsel(sum > 0xff, FlagC, 0) | bsel(aux, FlagA, 0)
}

func (s *State) Sub(v uint8) { s.A = s.sub(v, 0) }
func (s *State) Sbc(v uint8) { s.A = s.sub(v, s.F&FlagC) }

// Cmp sets the flags of A-v and discards the difference.
func (s *State) Cmp(v uint8) { s.sub(v, 0) }

// sub computes A-v-borrow. Carry is the borrow; aux-carry is the carry out
// of bit 3 of the equivalent A + ^v + (1-borrow).
func (s *State) sub(v, borrow uint8) uint8 {
	diff := uint16(s.A) - uint16(v) - uint16(borrow)
	aux := s.A&0x0f+^v&0x0f+(1-borrow) > 0x0f
	r := uint8(diff)
	s.F = SZPTable[r] | Flag1 | bsel(diff > 0xff, FlagC, 0) | bsel(aux, FlagA, 0)
	return r
}

// And clears carry. Aux-carry is the OR of bit 3 of both operands.
func (s *State) And(v uint8) {
	aux := (s.A|v)&0x08 != 0
	s.A &= v
	s.F = SZPTable[s.A] | Flag1 | bsel(aux, FlagA, 0)
}

func (s *State) Xor(v uint8) {
	s.A ^= v
	s.F = SZPTable[s.A] | Flag1
}

func (s *State) Or(v uint8) {
	s.A |= v
	s.F = SZPTable[s.A] | Flag1
}

// Inc returns v+1 and updates every flag except carry.
func (s *State) Inc(v uint8) uint8 {
	v++
	s.F = s.F&FlagC | SZPTable[v] | Flag1 | bsel(v&0x0f == 0, FlagA, 0)
	return v
}

// Dec returns v-1 and updates every flag except carry.
func (s *State) Dec(v uint8) uint8 {
	v--
	s.F = s.F&FlagC | SZPTable[v] | Flag1 | bsel(v&0x0f != 0x0f, FlagA, 0)
	return v
}

// Dad adds v to HL. Only carry is affected.
func (s *State) Dad(v uint16) {
	sum := uint32(s.HL()) + uint32(v)
	s.SetHL(uint16(sum))
	s.F = s.F&^FlagC | bsel(sum > 0xffff, FlagC, 0)
}

// Rol rotates A left; bit 7 goes to bit 0 and carry.
func (s *State) Rol() {
	out := s.A >> 7
	s.A = s.A<<1 | out
	s.F = s.F&^FlagC | out
}

// Ror rotates A right; bit 0 goes to bit 7 and carry.
func (s *State) Ror() {
	out := s.A & 1
	s.A = s.A>>1 | out<<7
	s.F = s.F&^FlagC | out
}

// Rlc rotates A left through carry.
func (s *State) Rlc() {
	out := s.A >> 7
	s.A = s.A<<1 | s.F&FlagC
	s.F = s.F&^FlagC | out
}

// Rrc rotates A right through carry.
func (s *State) Rrc() {
	out := s.A & 1
	s.A = s.A>>1 | (s.F&FlagC)<<7
	s.F = s.F&^FlagC | out
}

// Daa adjusts A to packed BCD after an addition.
func (s *State) Daa() {
	var adj uint8
	carry := s.F & FlagC
	if s.A&0x0f > 9 || s.F&FlagA != 0 {
		adj = 0x06
	}
	if s.A > 0x99 || carry != 0 {
		adj |= 0x60
		carry = FlagC
	}
	aux := s.A&0x0f+adj&0x0f > 0x0f
	s.A += adj
	s.F = SZPTable[s.A] | Flag1 | carry | bsel(aux, FlagA, 0)
}
