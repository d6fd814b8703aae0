package cpu

import (
	"iter"
)

// Link is a label reference to be patched into an assembled word.
type Link struct {
	Index int    // Index into Statement.Codes.
	Label string // Label whose address is patched in.
}

// Statement is a line of assembled source and the words it generated.
type Statement struct {
	LineNo int
	Ip     int
	Words  []string
	Codes  []uint16
	Links  []Link
}

type Program struct {
	Statements []Statement
}

type Debug struct {
	*Statement
	Index int
}

// Debug finds the statement that generated the word at ip.
func (prog *Program) Debug(ip int) (dbg Debug) {
	for n, st := range prog.Statements {
		if ip >= st.Ip && ip < st.Ip+len(st.Codes) {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Index:     ip - st.Ip,
			}
			break
		}
	}

	return
}

// Codes returns an iterator of address and word for the whole program.
func (prog *Program) Codes() iter.Seq2[int, uint16] {
	return func(yield func(ip int, code uint16) bool) {
		for _, st := range prog.Statements {
			for n, code := range st.Codes {
				if !yield(st.Ip+n, code) {
					return
				}
			}
		}
	}
}

// Words returns an iterator of the program's words in address order.
func (prog *Program) Words() iter.Seq[uint16] {
	return func(yield func(code uint16) bool) {
		for _, code := range prog.Codes() {
			if !yield(code) {
				return
			}
		}
	}
}
