package cpu

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ezrec/synvm/io"
)

const (
	r0 = REGISTER_BASE + iota
	r1
	r2
	r3
	r4
	r5
	r6
	r7
)

var errBroken = errors.New("broken")

type brokenReader struct{}

func (brokenReader) Read([]byte) (int, error) {
	return 0, errBroken
}

func imageOf(words ...uint16) (image []byte) {
	for _, word := range words {
		image = binary.LittleEndian.AppendUint16(image, word)
	}
	return
}

func newTestCpu(t *testing.T, input string, words ...uint16) (cpu *Cpu, output *bytes.Buffer) {
	output = &bytes.Buffer{}
	cpu = NewCpu(&io.Terminal{
		Input:  strings.NewReader(input),
		Output: output,
	})

	err := cpu.Load(imageOf(words...))
	assert.NoError(t, err)

	return
}

func TestCpu_Add(t *testing.T) {
	assert := assert.New(t)

	cpu, output := newTestCpu(t, "",
		1, r0, 4,
		1, r1, 7,
		9, r0, r0, r1,
		19, r0,
		0,
	)

	err := cpu.Run()
	assert.NoError(err)
	assert.Equal(uint16(11), cpu.Register[0])
	assert.Equal(uint16(7), cpu.Register[1])
	assert.Equal([]byte{11}, output.Bytes())
	assert.Equal(4, cpu.Ticks)
	assert.Equal(12, cpu.Ip)
}

func TestCpu_Echo(t *testing.T) {
	assert := assert.New(t)

	cpu, output := newTestCpu(t, "A\n",
		20, r0,
		19, r0,
		20, r0,
		19, r0,
		0,
	)

	err := cpu.Run()
	assert.NoError(err)
	assert.Equal("A\n", output.String())
	assert.Equal(uint16('\n'), cpu.Register[0])
}

func TestCpu_EndOfInput(t *testing.T) {
	assert := assert.New(t)

	cpu, output := newTestCpu(t, "hi",
		20, r0,
		19, r0,
		6, 0,
	)

	err := cpu.Run()
	assert.NoError(err)
	assert.Equal("hi", output.String())
	assert.Equal(uint16('i'), cpu.Register[0])
}

func TestCpu_InputError(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(&io.Terminal{Input: brokenReader{}})
	assert.NoError(cpu.Load(imageOf(20, r0)))

	err := cpu.Run()
	assert.ErrorIs(err, ErrInput)
	assert.ErrorIs(err, errBroken)
	assert.ErrorIs(err, ErrOpcode{})
}

func TestCpu_NoConsole(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(nil)

	assert.NoError(cpu.Load(imageOf(19, 'A')))
	assert.ErrorIs(cpu.Run(), ErrConsole)

	assert.NoError(cpu.Load(imageOf(20, r0)))
	assert.ErrorIs(cpu.Run(), ErrConsole)
}

func TestCpu_LoadOdd(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(nil)
	err := cpu.Load([]byte{19, 0, 65})
	assert.ErrorIs(err, ErrLoad)
	assert.ErrorIs(err, ErrImageOdd)
}

func TestCpu_Load_Resets(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t, "", 2, 5, 1, r0, 3, 0)
	assert.NoError(cpu.Run())
	assert.Equal(1, cpu.Stack.Depth())
	assert.Equal(uint16(3), cpu.Register[0])

	assert.NoError(cpu.Load(imageOf(21)))
	assert.Equal(0, cpu.Stack.Depth())
	assert.Equal(uint16(0), cpu.Register[0])
	assert.Equal(0, cpu.Ip)
	assert.Equal(0, cpu.Ticks)
	assert.Equal(uint16(0), cpu.Memory[2])
}

func TestCpu_Stack(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t, "",
		2, 1234,
		1, r1, 99,
		2, r1,
		3, r0,
		3, r2,
		0,
	)

	assert.NoError(cpu.Run())
	assert.Equal(uint16(99), cpu.Register[0])
	assert.Equal(uint16(1234), cpu.Register[2])
	assert.True(cpu.Stack.Empty())
}

func TestCpu_PopEmpty(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t, "", 3, r0)

	err := cpu.Run()
	assert.ErrorIs(err, ErrExecute)
	assert.ErrorIs(err, ErrStackEmpty)
	assert.ErrorIs(err, ErrOpcode{})
	assert.Equal(0, cpu.Ip)
}

func TestCpu_CallRet(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t, "",
		17, 3,    // 0: call 3
		0,        // 2: halt
		1, r0, 9, // 3: set r0 9
		18,       // 6: ret
	)

	assert.NoError(cpu.Run())
	assert.Equal(uint16(9), cpu.Register[0])
	assert.Equal(3, cpu.Ticks)
	assert.Equal(2, cpu.Ip)
	assert.True(cpu.Stack.Empty())
}

func TestCpu_RetEmpty(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t, "", 21, 18, 19, 'x')

	assert.NoError(cpu.Run())
	assert.Equal(1, cpu.Ticks)
}

func TestCpu_RunOffEnd(t *testing.T) {
	assert := assert.New(t)

	cpu := NewCpu(nil)
	for n := range cpu.Memory {
		cpu.Memory[n] = uint16(OP_NOOP)
	}

	assert.NoError(cpu.Run())
	assert.Equal(MEMORY_SIZE, cpu.Ticks)
	assert.Equal(MEMORY_SIZE, cpu.Ip)
}

func TestCpu_Branch(t *testing.T) {
	program := []uint16{
		7, r0, 6, // 0: jt r0 6
		19, 'n',  // 3: out 'n'
		0,        // 5: halt
		19, 'y',  // 6: out 'y'
		8, r1, 3, // 8: jf r1 3
		0,        // 11: halt
	}

	table := [](struct {
		r0, r1 uint16
		output string
	}){
		{0, 0, "n"},
		{1, 1, "y"},
		{32767, 1, "y"},
		{1, 0, "yn"},
	}

	for _, entry := range table {
		assert := assert.New(t)

		cpu, output := newTestCpu(t, "", program...)
		cpu.Register[0] = entry.r0
		cpu.Register[1] = entry.r1

		assert.NoError(cpu.Run())
		assert.Equal(entry.output, output.String(), entry)
	}
}

func TestCpu_Alu(t *testing.T) {
	table := [](struct {
		name   string
		words  []uint16
		result uint16
	}){
		{"eq-true", []uint16{4, r0, 3, 3}, 1},
		{"eq-false", []uint16{4, r0, 3, 4}, 0},
		{"gt-true", []uint16{5, r0, 4, 3}, 1},
		{"gt-false", []uint16{5, r0, 3, 4}, 0},
		{"gt-equal", []uint16{5, r0, 3, 3}, 0},
		{"add", []uint16{9, r0, 2, 3}, 5},
		{"add-wrap", []uint16{9, r0, 32758, 15}, 5},
		{"mult", []uint16{10, r0, 6, 7}, 42},
		{"mult-wrap", []uint16{10, r0, 200, 200}, 7232},
		{"mod", []uint16{11, r0, 17, 5}, 2},
		{"and", []uint16{12, r0, 12, 10}, 8},
		{"or", []uint16{13, r0, 12, 10}, 14},
		{"not-zero", []uint16{14, r0, 0}, 32767},
		{"not", []uint16{14, r0, 0x5555}, 0x2aaa},
		{"set", []uint16{1, r0, 1234}, 1234},
	}

	for _, entry := range table {
		assert := assert.New(t)

		cpu, _ := newTestCpu(t, "", entry.words...)
		cpu.Register[0] = 0xdead & WORD_MASK

		assert.NoError(cpu.Tick(), entry.name)
		assert.Equal(entry.result, cpu.Register[0], entry.name)
		assert.Equal(len(entry.words), cpu.Ip, entry.name)
	}
}

func TestCpu_RegisterOperands(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t, "", 9, r3, r1, r2, 0)
	cpu.Register[1] = 30000
	cpu.Register[2] = 3000

	assert.NoError(cpu.Run())
	assert.Equal(uint16(232), cpu.Register[3])
}

func TestCpu_Memory(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t, "",
		16, 100, 42,
		15, r0, 100,
		1, r1, 0,
		15, r2, r1,
		16, r1, 21,
		0,
	)

	assert.NoError(cpu.Run())
	assert.Equal(uint16(42), cpu.Memory[100])
	assert.Equal(uint16(42), cpu.Register[0])
	assert.Equal(uint16(16), cpu.Register[2])
	assert.Equal(uint16(21), cpu.Memory[0])
}

func TestCpu_SelfModify(t *testing.T) {
	assert := assert.New(t)

	// Patch the halt at address 6 into an out of r0.
	cpu, output := newTestCpu(t, "",
		1, r0, 'Z',
		16, 6, 19,
		0, r0,
		0,
	)

	assert.NoError(cpu.Run())
	assert.Equal("Z", output.String())
}

func TestCpu_Errors(t *testing.T) {
	table := [](struct {
		name  string
		words []uint16
		err   error
	}){
		{"mod-zero", []uint16{11, r0, 5, 0}, ErrDivideByZero},
		{"out-range", []uint16{19, 256}, ErrNonCharacter},
		{"set-literal", []uint16{1, 5, 5}, ErrDestination},
		{"add-literal", []uint16{9, 1, 2, 3}, ErrDestination},
		{"jmp-range", []uint16{6, 32767}, ErrAddress},
		{"call-range", []uint16{17, 32767}, ErrAddress},
		{"rmem-range", []uint16{15, r0, 32767}, ErrAddress},
		{"wmem-range", []uint16{16, 32767, 1}, ErrAddress},
	}

	for _, entry := range table {
		assert := assert.New(t)

		cpu, _ := newTestCpu(t, "", entry.words...)

		err := cpu.Run()
		assert.ErrorIs(err, ErrExecute, entry.name)
		assert.ErrorIs(err, entry.err, entry.name)
		assert.ErrorIs(err, ErrOpcode{}, entry.name)
		assert.Equal(0, cpu.Ip, entry.name)
		assert.Equal(0, cpu.Ticks, entry.name)
	}
}

func TestCpu_DecodeError(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t, "", 21, 22)

	err := cpu.Run()
	assert.ErrorIs(err, ErrDecode)
	assert.ErrorIs(err, ErrOpcodeUnknown)
	assert.Equal(1, cpu.Ip)
	assert.Equal(1, cpu.Ticks)
}

func TestCpu_String(t *testing.T) {
	assert := assert.New(t)

	cpu, _ := newTestCpu(t, "", 2, 0x1234, 1, r7, 0x7ff, 0)
	assert.NoError(cpu.Run())

	text := cpu.String()
	assert.Contains(text, "ip: 0005")
	assert.Contains(text, "r7: 07FF")
	assert.Contains(text, "stack: 1234 (1)")
}
