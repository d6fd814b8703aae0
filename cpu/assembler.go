// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package cpu

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Predefined system equates
var sysEquate = func() (equ map[string]string) {
	equ = maps.Clone(_cpu_defines)
	equ["LINENO"] = "0"
	return
}()

// Assembler is a single pass assembler for the synvm instruction set.
type Assembler struct {
	Verbose   bool        // If set, verbosely logs the assembler actions.
	Statement []Statement // List of generated statements.

	predefine map[string]string // Predefines
	Label     map[string]int    // Map of labels to addresses.
	Equate    map[string]string // Map of equates.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

// registerMap is a map of register names to register indexes.
var registerMap = map[string]int{
	"r0": 0,
	"r1": 1,
	"r2": 2,
	"r3": 3,
	"r4": 4,
	"r5": 5,
	"r6": 6,
	"r7": 7,
}

// opcodeMap maps mnemonics to opcodes.
var opcodeMap = func() (ops map[string]Opcode) {
	ops = make(map[string]Opcode)
	for op := OP_HALT; op <= OP_NOOP; op++ {
		ops[op.String()] = op
	}
	return
}()

var (
	reIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)
	reChar  = regexp.MustCompile(`'(\\.|[^'\\])'`)
	reParen = regexp.MustCompile(`\$\([^\$]*\)`)
)

// stripComment removes a trailing ';' comment, ignoring quoted text.
func stripComment(text string) string {
	var quote rune
	escaped := false
	for n, r := range text {
		switch {
		case escaped:
			escaped = false
		case quote != 0 && r == '\\':
			escaped = true
		case quote != 0 && r == quote:
			quote = 0
		case quote != 0:
			// quoted
		case r == '"' || r == '\'':
			quote = r
		case r == ';':
			return text[:n]
		}
	}

	return text
}

// valueOf returns the value of a numeric word.
func (asm *Assembler) valueOf(word string) (value uint16, err error) {
	v64, err := strconv.ParseInt(word, 0, 32)
	if err != nil {
		err = ErrParseValue(word)
		return
	}

	if v64 < 0 || v64 > 0xffff {
		err = ErrValueRange
		return
	}

	value = uint16(v64)
	return
}

// operand determines the operand for a word. Labels are returned
// unresolved, for linking once the whole program is known.
func (asm *Assembler) operand(word string) (arg Operand, label string, err error) {
	reg, ok := registerMap[word]
	if ok {
		arg = Register(reg)
		return
	}

	if reIdent.MatchString(word) {
		label = word
		return
	}

	value, err := asm.valueOf(word)
	if err != nil {
		return
	}
	if value > WORD_MASK {
		err = ErrValueRange
		return
	}

	arg = Literal(value)
	return
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value uint16, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		var v uint16
		v, err = asm.valueOf(str)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			err = nil
			continue
		}
		pred[key] = starlark.MakeInt(int(v))
	}
	for key, ip := range asm.Label {
		pred[key] = starlark.MakeInt(ip)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		err = ErrParseExpression(expr)
		return
	}
	st_int, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	st_int64, ok := st_int.Int64()
	if !ok || st_int64 < 0 || st_int64 > 0xffff {
		err = ErrValueRange
		return
	}
	value = uint16(st_int64)
	return
}

// parseLine parses a single line into words, defining labels and equates.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Leading labels.
	for {
		fields := strings.Fields(line)
		if len(fields) == 0 || !strings.HasSuffix(fields[0], ":") {
			break
		}
		label := strings.TrimSuffix(fields[0], ":")
		if !reIdent.MatchString(label) {
			err = ErrLabelInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}
		if asm.Label == nil {
			asm.Label = make(map[string]int, 16)
		}
		asm.Label[label] = asm.currentIp()
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), fields[0]))
	}

	// .string "TEXT" is taken verbatim.
	if fields := strings.Fields(line); len(fields) > 0 && fields[0] == ".string" {
		text, uerr := strconv.Unquote(strings.TrimSpace(strings.TrimPrefix(line, ".string")))
		if uerr != nil {
			err = ErrStringSyntax
			return
		}
		words = []string{".string", text}
		return
	}

	// Do 'x' evaluations
	line = reChar.ReplaceAllStringFunc(line, func(word string) string {
		str, _err := strconv.Unquote(word)
		if _err != nil {
			err = ErrParseValue(word)
			return word
		}
		return fmt.Sprintf("%d", []rune(str)[0])
	})
	if err != nil {
		return
	}

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = strings.Fields(strings.ReplaceAll(line, ",", " "))

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 || !reIdent.MatchString(words[1]) {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = words[:0]
		return
	}

	for n, word := range words[1:] {
		equate, ok := asm.Equate[word]
		if ok {
			words[1+n] = equate
		}
	}

	return
}

// currentIp gets the current Ip
func (asm *Assembler) currentIp() int {
	if len(asm.Statement) == 0 {
		return 0
	}

	last := asm.Statement[len(asm.Statement)-1]

	return last.Ip + len(last.Codes)
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	clear(asm.Label)
	asm.Statement = asm.Statement[:0]
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		line = strings.TrimSpace(stripComment(text))

		var words []string
		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	// Final linking of labels.
	for n := range asm.Statement {
		st := &asm.Statement[n]

		for _, link := range st.Links {
			ip, ok := asm.Label[link.Label]
			if !ok {
				lineno, line = st.LineNo, strings.Join(st.Words, " ")
				err = ErrLabelMissing(link.Label)
				return
			}
			st.Codes[link.Index] = uint16(ip)
		}
	}

	if asm.currentIp() > MEMORY_SIZE {
		err = ErrValueRange
		return
	}

	prog = &Program{
		Statements: slices.Clone(asm.Statement),
	}

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var codes []uint16
	var links []Link

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if len(codes) == 0 {
			return
		}
		st := Statement{LineNo: lineno, Ip: asm.currentIp(), Words: initial_words, Codes: codes, Links: links}
		asm.Statement = append(asm.Statement, st)
	}()

	switch words[0] {
	case ".string":
		if len(words) != 2 {
			err = ErrStringSyntax
			return
		}
		for _, ch := range []byte(words[1]) {
			codes = append(codes, uint16(ch))
		}
	case ".word":
		if len(words) < 2 {
			err = ErrOpcodeArgs
			return
		}
		for _, word := range words[1:] {
			reg, ok := registerMap[word]
			switch {
			case ok:
				codes = append(codes, Register(reg).Encode())
			case reIdent.MatchString(word):
				links = append(links, Link{Index: len(codes), Label: word})
				codes = append(codes, 0)
			default:
				var value uint16
				value, err = asm.valueOf(word)
				if err != nil {
					codes = nil
					return
				}
				codes = append(codes, value)
			}
		}
	default:
		op, ok := opcodeMap[words[0]]
		if !ok {
			err = ErrOpcodeInvalid
			return
		}
		if len(words)-1 != op.Arity() {
			err = ErrOpcodeArgs
			return
		}

		inst := MakeInstruction(op)
		for n, word := range words[1:] {
			var label string
			inst.Args[n], label, err = asm.operand(word)
			if err != nil {
				return
			}
			if n == 0 && op.Writes() && !inst.Args[n].IsRegister() {
				err = ErrDestination
				return
			}
			if len(label) != 0 {
				links = append(links, Link{Index: 1 + n, Label: label})
			}
		}
		codes = inst.Words()
	}

	return
}
