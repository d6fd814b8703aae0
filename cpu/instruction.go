package cpu

import (
	"errors"
	"strings"
)

// Instruction is a decoded opcode and its operands.
type Instruction struct {
	Ip   int        // Address of the opcode word.
	Op   Opcode     // Operation.
	Args [3]Operand // Operands; only the first Op.Arity() are used.
}

// MakeInstruction creates an instruction from an opcode and its operands.
func MakeInstruction(op Opcode, args ...Operand) (inst Instruction) {
	inst.Op = op
	copy(inst.Args[:], args)
	return
}

// Operands returns the operands used by the opcode.
func (inst Instruction) Operands() []Operand {
	return inst.Args[:inst.Op.Arity()]
}

// Size returns the number of words the instruction occupies.
func (inst Instruction) Size() int {
	return 1 + inst.Op.Arity()
}

// Words returns the encoded instruction.
func (inst Instruction) Words() (words []uint16) {
	words = append(words, uint16(inst.Op))
	for _, arg := range inst.Operands() {
		words = append(words, arg.Encode())
	}
	return
}

// String returns the assembly language form of the instruction.
func (inst Instruction) String() string {
	words := []string{inst.Op.String()}
	for _, arg := range inst.Operands() {
		words = append(words, arg.String())
	}
	return strings.Join(words, " ")
}

// Decode decodes the instruction at ip. On success, next is the address
// just past the opcode and its operands.
func (mem *Memory) Decode(ip int) (inst Instruction, next int, err error) {
	next = ip
	read := func() (word uint16, err error) {
		if next < 0 || next >= len(mem) {
			err = errors.Join(ErrDecode, ErrDecodeAddress, ErrWord{Ip: next})
			return
		}
		word = mem[next]
		next++
		return
	}

	word, err := read()
	if err != nil {
		return
	}

	inst.Ip = ip
	inst.Op, err = ParseOpcode(word)
	if err != nil {
		err = errors.Join(ErrDecode, err, ErrWord{Ip: ip, Word: word})
		return
	}

	for n := range inst.Op.Arity() {
		word, err = read()
		if err != nil {
			return
		}
		inst.Args[n], err = ParseOperand(word)
		if err != nil {
			err = errors.Join(ErrDecode, err, ErrWord{Ip: next - 1, Word: word})
			return
		}
	}

	return
}
