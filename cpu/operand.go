package cpu

import (
	"fmt"
)

// OperandKind tells how an operand is resolved.
type OperandKind int

const (
	OPERAND_LITERAL  = OperandKind(0) // Value is used as-is.
	OPERAND_REGISTER = OperandKind(1) // Value is a register index.
)

// Operand is a decoded instruction argument.
type Operand struct {
	Kind  OperandKind
	Value uint16
}

// Literal makes a literal operand.
func Literal(value uint16) Operand {
	return Operand{Kind: OPERAND_LITERAL, Value: value}
}

// Register makes a register operand for r0-r7.
func Register(index int) Operand {
	return Operand{Kind: OPERAND_REGISTER, Value: uint16(index)}
}

// ParseOperand classifies an operand word: 0..WORD_MASK are literals,
// the next REGISTER_COUNT values are r0-r7, anything above is invalid.
func ParseOperand(word uint16) (arg Operand, err error) {
	switch {
	case word <= WORD_MASK:
		arg = Literal(word)
	case word < REGISTER_BASE+REGISTER_COUNT:
		arg = Register(int(word - REGISTER_BASE))
	default:
		err = ErrOperandEncoding
	}

	return
}

// IsRegister returns true for register operands.
func (arg Operand) IsRegister() bool {
	return arg.Kind == OPERAND_REGISTER
}

// Encode returns the operand word for arg.
func (arg Operand) Encode() uint16 {
	if arg.IsRegister() {
		return REGISTER_BASE + arg.Value
	}
	return arg.Value
}

// String returns the assembly language form of the operand.
func (arg Operand) String() string {
	if arg.IsRegister() {
		return fmt.Sprintf("r%d", arg.Value)
	}
	return fmt.Sprintf("%d", arg.Value)
}
