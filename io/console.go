// Package io provides the character and image devices attached to the
// synvm processor: a line-buffered Terminal for the in/out opcodes and a
// Rom holding the little-endian program image.
package io

// Console is the character device behind the in and out opcodes.
type Console interface {
	// ReadChar returns the next input character. When input has ended,
	// ok is false and err is nil.
	ReadChar() (ch byte, ok bool, err error)
	// WriteChar writes a single output character.
	WriteChar(ch byte) error
}
