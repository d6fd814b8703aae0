package io

import (
	"bufio"
	"io"
	"iter"
	"maps"
)

// Terminal is an interactive Console. Input is consumed a line at a time
// and handed out one byte per ReadChar, line terminator included. Output
// is written through, one byte per WriteChar, without buffering.
type Terminal struct {
	Input  io.Reader
	Output io.Writer

	reader *bufio.Reader
	line   []byte
}

var _ Console = (*Terminal)(nil)

// Defines returns an iter of defines for the terminal.
func (term *Terminal) Defines() iter.Seq2[string, string] {
	return maps.All(map[string]string{
		"EOL": "10",
	})
}

// Rewind drops any buffered input. Call after replacing Input.
func (term *Terminal) Rewind() {
	term.reader = nil
	term.line = nil
}

// Pending returns the number of characters left in the current line.
func (term *Terminal) Pending() int {
	return len(term.line)
}

// ReadChar returns the next character of the current line, reading a new
// line from Input once the current one is used up. A missing Input, or a
// read that returns no data at end of input, reports ok == false.
func (term *Terminal) ReadChar() (ch byte, ok bool, err error) {
	if len(term.line) == 0 {
		if term.Input == nil {
			return
		}
		if term.reader == nil {
			term.reader = bufio.NewReader(term.Input)
		}

		var text string
		text, err = term.reader.ReadString('\n')
		if err == io.EOF {
			// The last line may lack a terminator.
			err = nil
		}
		if err != nil {
			return
		}
		if len(text) == 0 {
			return
		}
		term.line = []byte(text)
	}

	ch = term.line[0]
	term.line = term.line[1:]
	ok = true

	return
}

// WriteChar writes a byte to Output.
func (term *Terminal) WriteChar(ch byte) (err error) {
	if term.Output == nil {
		err = ErrOutputMissing
		return
	}

	if bw, is := term.Output.(io.ByteWriter); is {
		err = bw.WriteByte(ch)
	} else {
		_, err = term.Output.Write([]byte{ch})
	}

	return
}
