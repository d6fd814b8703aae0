package io

import (
	"encoding/binary"
	"io"
	"io/fs"
	"iter"
)

// Rom is a program image: consecutive little-endian 16-bit words, no header.
type Rom struct {
	Data []byte
}

var _ io.ReaderFrom = (*Rom)(nil)

// ReadFrom replaces the image with everything read from r.
func (rom *Rom) ReadFrom(r io.Reader) (n int64, err error) {
	data, err := io.ReadAll(r)
	n = int64(len(data))
	if err != nil {
		return
	}

	rom.Data = data

	return
}

// Unmarshal loads the image from the named file of filesys.
func (rom *Rom) Unmarshal(filesys fs.FS, name string) (err error) {
	data, err := fs.ReadFile(filesys, name)
	if err != nil {
		return
	}

	rom.Data = data

	return
}

// Marshal writes the image to w.
func (rom *Rom) Marshal(w io.Writer) (err error) {
	_, err = w.Write(rom.Data)
	return
}

// SetWords replaces the image with the little-endian encoding of words.
func (rom *Rom) SetWords(words iter.Seq[uint16]) {
	rom.Data = nil
	for word := range words {
		rom.Data = binary.LittleEndian.AppendUint16(rom.Data, word)
	}
}
