package vm

import (
	"fmt"

	"github.com/lookbusy1344/script-vm/bytecode"
	"github.com/lookbusy1344/script-vm/value"
)

// StackSize is the fixed operand stack capacity
const StackSize = 256

// DefaultMaxSteps bounds a single interpretation as a safety net
const DefaultMaxSteps = 1_000_000

// ExecutionState represents the current state of execution
type ExecutionState int

const (
	StateReady   ExecutionState = iota // chunk loaded, nothing executed
	StateRunning                       // inside Run
	StateHalted                        // RETURN executed, result available
	StateError                         // runtime error, see LastError
)

var stateNames = map[ExecutionState]string{
	StateReady:   "ready",
	StateRunning: "running",
	StateHalted:  "halted",
	StateError:   "error",
}

func (s ExecutionState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ExecutionState(%d)", int(s))
}

// VM is a stack-based interpreter over a bytecode chunk. It owns an
// operand stack of fixed capacity; strings created at runtime are
// routed through the shared pool so equal strings stay canonical.
type VM struct {
	chunk *bytecode.Chunk
	ip    int
	stack [StackSize]value.Value
	sp    int

	pool *value.StringPool

	state     ExecutionState
	lastError error
	result    value.Value

	// MaxSteps limits how many instructions Run will execute;
	// zero means DefaultMaxSteps
	MaxSteps uint64
	steps    uint64

	trace *Trace
}

// New creates a VM interning runtime strings through pool
func New(pool *value.StringPool) *VM {
	return &VM{
		pool:  pool,
		state: StateHalted,
	}
}

// SetTrace installs an execution trace; nil disables tracing
func (vm *VM) SetTrace(t *Trace) {
	vm.trace = t
}

// Reset loads a chunk, rewinds the instruction pointer to its bytecode
// base, and empties the operand stack
func (vm *VM) Reset(chunk *bytecode.Chunk) {
	vm.chunk = chunk
	vm.ip = 0
	vm.sp = 0
	vm.state = StateReady
	vm.lastError = nil
	vm.result = value.NilValue()
	vm.steps = 0
}

// State returns the current execution state
func (vm *VM) State() ExecutionState {
	return vm.state
}

// LastError returns the error that put the VM into StateError
func (vm *VM) LastError() error {
	return vm.lastError
}

// Result returns the value produced by RETURN; only meaningful in
// StateHalted
func (vm *VM) Result() value.Value {
	return vm.result
}

// IP returns the current instruction pointer, for the debugger
func (vm *VM) IP() int {
	return vm.ip
}

// StackDepth returns the number of values on the operand stack
func (vm *VM) StackDepth() int {
	return vm.sp
}

// StackAt returns the stack slot at index i, 0 being the bottom
func (vm *VM) StackAt(i int) value.Value {
	return vm.stack[i]
}

func (vm *VM) push(v value.Value) error {
	if vm.sp >= StackSize {
		return vm.fail(vm.ip-1, "Stack overflow.")
	}
	vm.stack[vm.sp] = v
	vm.sp++
	return nil
}

func (vm *VM) pop() value.Value {
	vm.sp--
	return vm.stack[vm.sp]
}

// peek returns a value distance slots down from the top without
// popping it
func (vm *VM) peek(distance int) value.Value {
	return vm.stack[vm.sp-1-distance]
}

// fail records a runtime error for the instruction at opOffset and
// moves the VM into the error state
func (vm *VM) fail(opOffset int, format string, args ...interface{}) error {
	line := 0
	if opOffset >= 0 && opOffset < len(vm.chunk.Lines) {
		line = vm.chunk.Lines[opOffset]
	}
	err := &RuntimeError{Message: fmt.Sprintf(format, args...), Line: line}
	vm.state = StateError
	vm.lastError = err
	return err
}

// Step decodes and executes a single instruction
func (vm *VM) Step() error {
	switch vm.state {
	case StateHalted:
		return fmt.Errorf("vm is halted")
	case StateError:
		return fmt.Errorf("vm is in error state: %w", vm.lastError)
	}

	if vm.ip >= len(vm.chunk.Code) {
		return vm.fail(vm.ip-1, "Instruction pointer ran past end of chunk.")
	}

	if vm.trace != nil {
		vm.trace.writeStep(vm)
	}

	opOffset := vm.ip
	op := bytecode.OpCode(vm.chunk.Code[vm.ip])
	vm.ip++
	vm.steps++

	switch op {
	case bytecode.OpConstant:
		if vm.ip >= len(vm.chunk.Code) {
			return vm.fail(opOffset, "Truncated constant instruction.")
		}
		index := vm.chunk.Code[vm.ip]
		vm.ip++
		if int(index) >= len(vm.chunk.Constants) {
			return vm.fail(opOffset, "Constant index %d out of range.", index)
		}
		return vm.push(vm.chunk.Constants[index])

	case bytecode.OpNil:
		return vm.push(value.NilValue())

	case bytecode.OpTrue:
		return vm.push(value.BoolValue(true))

	case bytecode.OpFalse:
		return vm.push(value.BoolValue(false))

	case bytecode.OpNot:
		v := vm.pop()
		return vm.push(value.BoolValue(v.IsFalsey()))

	case bytecode.OpNegate:
		if !vm.peek(0).IsNumber() {
			return vm.fail(opOffset, "Operand must be a number.")
		}
		n := vm.pop().AsNumber()
		return vm.push(value.NumberValue(-n))

	case bytecode.OpEqual:
		b := vm.pop()
		a := vm.pop()
		return vm.push(value.BoolValue(a.Equal(b)))

	case bytecode.OpAdd:
		if vm.peek(0).IsString() && vm.peek(1).IsString() {
			b := vm.pop().AsString()
			a := vm.pop().AsString()
			return vm.push(value.ObjectValue(vm.pool.Concat(a, b)))
		}
		if vm.peek(0).IsNumber() && vm.peek(1).IsNumber() {
			b := vm.pop().AsNumber()
			a := vm.pop().AsNumber()
			return vm.push(value.NumberValue(a + b))
		}
		return vm.fail(opOffset, "Operands must be two numbers or two strings.")

	case bytecode.OpSubtract, bytecode.OpMultiply, bytecode.OpDivide:
		if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
			return vm.fail(opOffset, "Operands must be numbers.")
		}
		b := vm.pop().AsNumber()
		a := vm.pop().AsNumber()
		switch op {
		case bytecode.OpSubtract:
			return vm.push(value.NumberValue(a - b))
		case bytecode.OpMultiply:
			return vm.push(value.NumberValue(a * b))
		default:
			return vm.push(value.NumberValue(a / b))
		}

	case bytecode.OpGreater, bytecode.OpLess:
		if !vm.peek(0).IsNumber() || !vm.peek(1).IsNumber() {
			return vm.fail(opOffset, "Operands must be numbers.")
		}
		b := vm.pop().AsNumber()
		a := vm.pop().AsNumber()
		if op == bytecode.OpGreater {
			return vm.push(value.BoolValue(a > b))
		}
		return vm.push(value.BoolValue(a < b))

	case bytecode.OpReturn:
		vm.result = vm.pop()
		vm.state = StateHalted
		return nil

	default:
		return vm.fail(opOffset, "Unknown opcode %d.", byte(op))
	}
}

// Run executes instructions until RETURN halts the VM or an error
// occurs
func (vm *VM) Run() error {
	maxSteps := vm.MaxSteps
	if maxSteps == 0 {
		maxSteps = DefaultMaxSteps
	}

	vm.state = StateRunning
	for vm.state == StateRunning {
		if vm.steps >= maxSteps {
			return vm.fail(vm.ip, "Step limit exceeded (%d instructions).", maxSteps)
		}
		if err := vm.Step(); err != nil {
			return err
		}
	}
	return nil
}

// Interpret resets the VM with the chunk, runs it to completion, and
// returns the value left by RETURN
func (vm *VM) Interpret(chunk *bytecode.Chunk) (value.Value, error) {
	vm.Reset(chunk)
	if err := vm.Run(); err != nil {
		return value.NilValue(), err
	}
	return vm.result, nil
}
