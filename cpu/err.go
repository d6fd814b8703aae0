package cpu

import (
	"errors"

	"github.com/ezrec/synvm/translate"
)

var f = translate.From

var (
	// Error classes, joined with the specific error.
	ErrLoad    = errors.New(f("load"))
	ErrDecode  = errors.New(f("decode"))
	ErrExecute = errors.New(f("execute"))
	ErrInput   = errors.New(f("input"))

	// ErrHalt signals normal termination of the program.
	ErrHalt = errors.New(f("halt"))

	// Load errors
	ErrImageOdd = errors.New(f("image has an unpaired trailing byte"))

	// Instruction decode errors
	ErrOpcodeUnknown   = errors.New(f("opcode unknown"))
	ErrOperandEncoding = errors.New(f("operand encoding invalid"))
	ErrDecodeAddress   = errors.New(f("instruction past end of memory"))

	// Execute errors
	ErrStackEmpty   = errors.New(f("stack empty"))
	ErrDivideByZero = errors.New(f("division by zero"))
	ErrNonCharacter = errors.New(f("value is not a character"))
	ErrDestination  = errors.New(f("destination is not a register"))
	ErrAddress      = errors.New(f("address out of range"))
	ErrConsole      = errors.New(f("console missing"))

	// Assembler errors
	ErrEquateSyntax    = errors.New(f(".equ syntax"))
	ErrEquateDuplicate = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate  = errors.New(f("label duplicated"))
	ErrLabelInvalid    = errors.New(f("label invalid"))
	ErrStringSyntax    = errors.New(f(".string syntax"))
	ErrOpcodeInvalid   = errors.New(f("opcode invalid"))
	ErrOpcodeArgs      = errors.New(f("wrong number of arguments"))
	ErrValueRange      = errors.New(f("value out of range"))
)

// ErrWord locates an undecodable word.
type ErrWord struct {
	Ip   int
	Word uint16
}

func (err ErrWord) Error() string {
	return f("word 0x%04x at address 0x%04x", err.Word, err.Ip)
}

// ErrOpcode is the instruction that failed to execute.
type ErrOpcode Instruction

func (eo ErrOpcode) Error() string {
	return f("bad instruction at 0x%04x '%v'", eo.Ip, Instruction(eo).String())
}

func (eo ErrOpcode) Is(err error) (ok bool) {
	_, ok = err.(ErrOpcode)
	return
}

type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

type ErrParseValue string

func (err ErrParseValue) Error() string {
	return f("'%v' is not a value, register or label", string(err))
}

type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}
