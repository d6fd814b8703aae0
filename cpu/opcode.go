package cpu

// Opcode is the operation selector, the first word of every instruction.
type Opcode int

//go:generate go tool stringer -linecomment -type=Opcode
const (
	OP_HALT = Opcode(0)  // halt
	OP_SET  = Opcode(1)  // set
	OP_PUSH = Opcode(2)  // push
	OP_POP  = Opcode(3)  // pop
	OP_EQ   = Opcode(4)  // eq
	OP_GT   = Opcode(5)  // gt
	OP_JMP  = Opcode(6)  // jmp
	OP_JT   = Opcode(7)  // jt
	OP_JF   = Opcode(8)  // jf
	OP_ADD  = Opcode(9)  // add
	OP_MULT = Opcode(10) // mult
	OP_MOD  = Opcode(11) // mod
	OP_AND  = Opcode(12) // and
	OP_OR   = Opcode(13) // or
	OP_NOT  = Opcode(14) // not
	OP_RMEM = Opcode(15) // rmem
	OP_WMEM = Opcode(16) // wmem
	OP_CALL = Opcode(17) // call
	OP_RET  = Opcode(18) // ret
	OP_OUT  = Opcode(19) // out
	OP_IN   = Opcode(20) // in
	OP_NOOP = Opcode(21) // noop
)

// Operand count of each opcode.
var opcodeArity = [...]int{
	OP_HALT: 0, OP_NOOP: 0, OP_RET: 0,
	OP_OUT: 1, OP_JMP: 1, OP_PUSH: 1, OP_POP: 1, OP_CALL: 1, OP_IN: 1,
	OP_JT: 2, OP_JF: 2, OP_SET: 2, OP_NOT: 2, OP_RMEM: 2, OP_WMEM: 2,
	OP_ADD: 3, OP_EQ: 3, OP_GT: 3, OP_AND: 3, OP_OR: 3, OP_MULT: 3, OP_MOD: 3,
}

// ParseOpcode maps an opcode word to its Opcode.
func ParseOpcode(word uint16) (op Opcode, err error) {
	op = Opcode(word)
	if !op.Valid() {
		err = ErrOpcodeUnknown
	}
	return
}

// Valid returns true for defined opcodes.
func (op Opcode) Valid() bool {
	return op >= OP_HALT && op <= OP_NOOP
}

// Arity returns the number of operand words following the opcode.
func (op Opcode) Arity() int {
	if !op.Valid() {
		return 0
	}
	return opcodeArity[op]
}

// Writes returns true if the first operand names a destination register.
func (op Opcode) Writes() bool {
	switch op {
	case OP_SET, OP_POP, OP_EQ, OP_GT, OP_ADD, OP_MULT, OP_MOD,
		OP_AND, OP_OR, OP_NOT, OP_RMEM, OP_IN:
		return true
	}
	return false
}
