package engine

import (
	"errors"

	"github.com/oisee/i8080/internal/msg"
)

var f = msg.From

var (
	// ErrIllegalInstruction is wrapped by every IllegalInstructionError.
	ErrIllegalInstruction = errors.New(f("illegal instruction"))
	// ErrHalted is returned by Step when the CPU is halted and no
	// interrupt can wake it.
	ErrHalted = errors.New(f("cpu halted"))
	// ErrSnapshot reports a snapshot that does not fit the engine.
	ErrSnapshot = errors.New(f("invalid snapshot"))
)

// IllegalInstructionError reports an undefined opcode reached by execution.
// The registers reflect every instruction before it; PC points at it.
type IllegalInstructionError struct {
	PC     uint16
	Opcode uint8
}

func (err *IllegalInstructionError) Error() string {
	return f("illegal instruction 0x%02x at 0x%04x", err.Opcode, err.PC)
}

func (err *IllegalInstructionError) Unwrap() error {
	return ErrIllegalInstruction
}

// FaultError forwards a fault raised by the bus. PC points at the
// instruction whose access faulted.
type FaultError struct {
	PC  uint16
	Err error
}

func (err *FaultError) Error() string {
	return f("bus fault at 0x%04x: %v", err.PC, err.Err)
}

func (err *FaultError) Unwrap() error {
	return err.Err
}
