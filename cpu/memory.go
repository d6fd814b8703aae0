package cpu

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	WORD_BITS      = 15                    // Significant bits in a word.
	WORD_MODULUS   = 1 << WORD_BITS        // Arithmetic is modulo this value.
	WORD_MASK      = WORD_MODULUS - 1      // Largest literal value.
	REGISTER_BASE  = WORD_MODULUS          // Operand encoding of r0.
	REGISTER_COUNT = 8                     // Number of general registers.
	MEMORY_SIZE    = 0b0111_1111_1111_1111 // Words of addressable memory.
)

var _cpu_defines = map[string]string{
	"WORD_MASK":      fmt.Sprintf("%d", WORD_MASK),
	"WORD_MODULUS":   fmt.Sprintf("%d", WORD_MODULUS),
	"REGISTER_BASE":  fmt.Sprintf("%d", REGISTER_BASE),
	"REGISTER_COUNT": fmt.Sprintf("%d", REGISTER_COUNT),
	"MEMORY_SIZE":    fmt.Sprintf("%d", MEMORY_SIZE),
}

// Memory holds program code and data.
type Memory [MEMORY_SIZE]uint16

// Load writes an image of little-endian word pairs into memory, starting at
// address 0. Words past the end of memory are dropped; loaded is the number
// of words written. An image with an unpaired trailing byte is rejected
// before anything is written.
func (mem *Memory) Load(image []byte) (loaded int, err error) {
	if len(image)%2 != 0 {
		err = errors.Join(ErrLoad, ErrImageOdd)
		return
	}

	loaded = min(len(image)/2, len(mem))
	for addr := range loaded {
		mem[addr] = binary.LittleEndian.Uint16(image[addr*2:])
	}

	return
}

// Read returns the word at addr.
func (mem *Memory) Read(addr uint16) (value uint16, err error) {
	if int(addr) >= len(mem) {
		err = ErrAddress
		return
	}

	value = mem[addr]
	return
}

// Write stores value at addr.
func (mem *Memory) Write(addr uint16, value uint16) (err error) {
	if int(addr) >= len(mem) {
		err = ErrAddress
		return
	}

	mem[addr] = value
	return
}
