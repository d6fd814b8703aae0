// Package cpu implements the processor and assembler for the synvm system.
//
// The processor is a 16-bit word machine with eight registers (r0-r7), an
// unbounded stack, and a flat memory of MEMORY_SIZE words that holds both
// code and data. Values are 15 bits wide; arithmetic wraps modulo
// WORD_MODULUS. Each instruction is an opcode word followed by a fixed
// number of operand words, each either a literal value or a register
// reference.
//
// The assembler provides a small assembly language for the instruction set,
// supporting labels, equates, character and string literals, and
// compile-time expression evaluation.
package cpu
