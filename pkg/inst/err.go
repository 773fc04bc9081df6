package inst

import (
	"errors"

	"github.com/oisee/i8080/internal/msg"
)

var f = msg.From

var (
	// ErrUndefined is matched by every DecodeError.
	ErrUndefined = errors.New(f("undefined opcode"))
	// ErrTruncated reports an instruction whose operand bytes run past the buffer.
	ErrTruncated = errors.New(f("truncated instruction"))
)

// DecodeError reports an opcode byte with no table entry.
type DecodeError struct {
	Addr   uint16
	Opcode uint8
}

func (err *DecodeError) Error() string {
	return f("0x%04x: undefined opcode 0x%02x", err.Addr, err.Opcode)
}

func (err *DecodeError) Is(target error) bool {
	return target == ErrUndefined
}

// TruncatedError reports how many bytes an instruction needed.
type TruncatedError struct {
	Addr   uint16
	Opcode uint8
	Need   int
	Have   int
}

func (err *TruncatedError) Error() string {
	return f("0x%04x: opcode 0x%02x needs %v bytes, %v left", err.Addr, err.Opcode, err.Need, err.Have)
}

func (err *TruncatedError) Unwrap() error {
	return ErrTruncated
}
