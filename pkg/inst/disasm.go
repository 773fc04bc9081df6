package inst

import (
	"fmt"
	"strings"
)

// Line is one disassembled instruction.
type Line struct {
	Addr  uint16
	Bytes []uint8
	Text  string
}

// String formats the line as "0xaaaa:  mnemonic".
func (l Line) String() string {
	return fmt.Sprintf("0x%04x:  %s", l.Addr, l.Text)
}

// HexBytes returns the raw encoding as space separated hex pairs.
func (l Line) HexBytes() string {
	parts := make([]string, len(l.Bytes))
	for i, b := range l.Bytes {
		parts[i] = fmt.Sprintf("%02x", b)
	}
	return strings.Join(parts, " ")
}

// Format renders an instruction from its table entry and operand bytes.
// operands must hold at least Size-1 bytes.
func Format(info Info, operands []uint8) string {
	switch info.Operand {
	case OperandImm8:
		return fmt.Sprintf(info.Mnemonic, operands[0])
	case OperandImm16:
		return fmt.Sprintf(info.Mnemonic, uint16(operands[0])|uint16(operands[1])<<8)
	}
	return info.Mnemonic
}

// DisassembleOne decodes the instruction at the start of buf.
// It returns the formatted text and the number of bytes consumed.
func DisassembleOne(buf []uint8, addr uint16) (text string, size int, err error) {
	if len(buf) == 0 {
		err = &TruncatedError{Addr: addr, Need: 1}
		return
	}

	op := buf[0]
	info := catalog[op]
	if !info.Defined() {
		err = &DecodeError{Addr: addr, Opcode: op}
		return
	}

	size = int(info.Size)
	if len(buf) < size {
		err = &TruncatedError{Addr: addr, Opcode: op, Need: size, Have: len(buf)}
		size = 0
		return
	}

	text = Format(info, buf[1:size])
	return
}

// Disassemble walks buf, which is loaded at addr, one instruction at a time.
// On a decode failure it returns the lines decoded so far and the error;
// it never advances past a byte it could not decode.
func Disassemble(buf []uint8, addr uint16) ([]Line, error) {
	var lines []Line
	for len(buf) > 0 {
		text, size, err := DisassembleOne(buf, addr)
		if err != nil {
			return lines, err
		}
		lines = append(lines, Line{
			Addr:  addr,
			Bytes: append([]uint8(nil), buf[:size]...),
			Text:  text,
		})
		buf = buf[size:]
		addr += uint16(size)
	}
	return lines, nil
}
