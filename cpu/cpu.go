package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/synvm/io"
)

// Console is the character device attached to the in and out opcodes.
type Console io.Console

// Cpu is the simulation context for the word machine.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	Memory   Memory                 // Code and data.
	Register [REGISTER_COUNT]uint16 // Register bank.
	Stack    Stack                  // Stack simulation.
	Ip       int                    // Address of the next instruction.

	Ticks int // Executed instruction counter.

	Console Console // Character I/O for in and out.
}

// NewCpu creates a new CPU attached to a console.
func NewCpu(console Console) (cpu *Cpu) {
	cpu = &Cpu{
		Console: console,
	}

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	text += fmt.Sprintf("% 5s: %04X\n", "ip", cpu.Ip)
	for n, val := range cpu.Register {
		text += fmt.Sprintf("% 5s: %04X\n", fmt.Sprintf("r%d", n), val)
	}

	strval := "----"
	val, ok := cpu.Stack.Peek()
	if ok {
		strval = fmt.Sprintf("%04X", val)
	}
	text += fmt.Sprintf("% 5s: %v (%d)\n", "stack", strval, cpu.Stack.Depth())

	return
}

// Reset the CPU state.
// - Clears memory, registers, and the stack.
// - Zeros the tick counter.
// - Sets the instruction pointer to address 0.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	clear(cpu.Memory[:])
	clear(cpu.Register[:])
	cpu.Stack.Reset()
	cpu.Ip = 0
	cpu.Ticks = 0
}

// Load resets the CPU, then loads an image into memory.
func (cpu *Cpu) Load(image []byte) (err error) {
	cpu.Reset()

	loaded, err := cpu.Memory.Load(image)
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("cpu: loaded %d words", loaded)
		if loaded < len(image)/2 {
			log.Printf("cpu: dropped %d words past end of memory", len(image)/2-loaded)
		}
	}

	return
}

// Fetch decodes the instruction at the instruction pointer.
// Running off the end of memory halts the CPU.
func (cpu *Cpu) Fetch() (inst Instruction, err error) {
	if cpu.Ip >= len(cpu.Memory) {
		err = ErrHalt
		return
	}

	inst, _, err = cpu.Memory.Decode(cpu.Ip)
	return
}

// Tick executes a single CPU instruction cycle.
func (cpu *Cpu) Tick() (err error) {
	inst, err := cpu.Fetch()
	if err != nil {
		return
	}

	err = cpu.Execute(inst)
	if err != nil {
		return
	}

	cpu.Ticks += 1

	return
}

// Run ticks the CPU until the program halts or fails.
func (cpu *Cpu) Run() (err error) {
	for {
		err = cpu.Tick()
		if errors.Is(err, ErrHalt) {
			err = nil
			return
		}
		if err != nil {
			return
		}
	}
}

// Execute executes a single decoded instruction.
// Returns ErrHalt when the instruction ends the program normally.
func (cpu *Cpu) Execute(inst Instruction) (err error) {
	defer func() {
		if err != nil && err != ErrHalt {
			err = errors.Join(ErrOpcode(inst), err)
		}
	}()
	if cpu.Verbose {
		log.Printf("%04x: %v", inst.Ip, inst)
	}

	next_ip := inst.Ip + inst.Size()

	a := inst.Args[0]

	if inst.Op.Writes() && !a.IsRegister() {
		err = errors.Join(ErrExecute, ErrDestination)
		return
	}

	// Resolved operand values.
	var vals [3]uint16
	for n, arg := range inst.Operands() {
		vals[n], err = cpu.getValue(arg)
		if err != nil {
			err = errors.Join(ErrExecute, err)
			return
		}
	}
	vb, vc := uint32(vals[1]), uint32(vals[2])

	var result uint16
	var set_target bool

	switch inst.Op {
	case OP_HALT:
		err = ErrHalt
		return
	case OP_NOOP:
		// pass
	case OP_SET:
		result, set_target = vals[1], true
	case OP_PUSH:
		cpu.Stack.Push(vals[0])
	case OP_POP:
		var ok bool
		result, ok = cpu.Stack.Pop()
		if !ok {
			err = errors.Join(ErrExecute, ErrStackEmpty)
			return
		}
		set_target = true
	case OP_EQ:
		result, set_target = boolWord(vb == vc), true
	case OP_GT:
		result, set_target = boolWord(vb > vc), true
	case OP_JMP:
		next_ip, err = cpu.jumpTarget(vals[0])
	case OP_JT:
		if vals[0] != 0 {
			next_ip, err = cpu.jumpTarget(vals[1])
		}
	case OP_JF:
		if vals[0] == 0 {
			next_ip, err = cpu.jumpTarget(vals[1])
		}
	case OP_ADD:
		result, set_target = uint16((vb+vc)%WORD_MODULUS), true
	case OP_MULT:
		result, set_target = uint16((vb*vc)%WORD_MODULUS), true
	case OP_MOD:
		if vc == 0 {
			err = errors.Join(ErrExecute, ErrDivideByZero)
			return
		}
		result, set_target = uint16(vb%vc), true
	case OP_AND:
		result, set_target = uint16(vb&vc)&WORD_MASK, true
	case OP_OR:
		result, set_target = uint16(vb|vc)&WORD_MASK, true
	case OP_NOT:
		result, set_target = ^vals[1]&WORD_MASK, true
	case OP_RMEM:
		result, err = cpu.Memory.Read(vals[1])
		if err != nil {
			err = errors.Join(ErrExecute, err)
			return
		}
		set_target = true
	case OP_WMEM:
		err = cpu.Memory.Write(vals[0], vals[1])
		if err != nil {
			err = errors.Join(ErrExecute, err)
			return
		}
	case OP_CALL:
		var target int
		target, err = cpu.jumpTarget(vals[0])
		if err != nil {
			break
		}
		cpu.Stack.Push(uint16(next_ip))
		next_ip = target
	case OP_RET:
		addr, ok := cpu.Stack.Pop()
		if !ok {
			// Returning from the outermost routine ends the program.
			err = ErrHalt
			return
		}
		next_ip, err = cpu.jumpTarget(addr)
	case OP_OUT:
		if vals[0] > 0xff {
			err = errors.Join(ErrExecute, ErrNonCharacter)
			return
		}
		if cpu.Console == nil {
			err = errors.Join(ErrExecute, ErrConsole)
			return
		}
		err = cpu.Console.WriteChar(byte(vals[0]))
		if err != nil {
			err = errors.Join(ErrExecute, err)
			return
		}
	case OP_IN:
		if cpu.Console == nil {
			err = errors.Join(ErrExecute, ErrConsole)
			return
		}
		var ch byte
		var ok bool
		ch, ok, err = cpu.Console.ReadChar()
		if err != nil {
			err = errors.Join(ErrInput, err)
			return
		}
		if !ok {
			// End of input ends the program.
			err = ErrHalt
			return
		}
		result, set_target = uint16(ch), true
	default:
		err = errors.Join(ErrDecode, ErrOpcodeUnknown)
		return
	}

	if err != nil {
		return
	}

	if set_target {
		cpu.Register[a.Value] = result
	}

	cpu.Ip = next_ip

	return
}

// getValue resolves an operand to its value.
func (cpu *Cpu) getValue(arg Operand) (value uint16, err error) {
	switch arg.Kind {
	case OPERAND_LITERAL:
		value = arg.Value
	case OPERAND_REGISTER:
		if int(arg.Value) >= len(cpu.Register) {
			err = ErrOperandEncoding
			return
		}
		value = cpu.Register[arg.Value]
	default:
		err = ErrOperandEncoding
	}

	return
}

// jumpTarget validates a control transfer address.
func (cpu *Cpu) jumpTarget(addr uint16) (ip int, err error) {
	if int(addr) >= len(cpu.Memory) {
		err = errors.Join(ErrExecute, ErrAddress)
		return
	}

	ip = int(addr)
	return
}

// boolWord returns 1 for true, 0 for false.
func boolWord(cond bool) uint16 {
	if cond {
		return 1
	}
	return 0
}
