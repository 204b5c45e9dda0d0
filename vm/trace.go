package vm

import (
	"fmt"
	"io"
)

// Trace writes a per-instruction execution trace: the operand stack
// contents followed by the disassembled instruction about to execute.
type Trace struct {
	w io.Writer
}

// NewTrace creates a trace writing to w
func NewTrace(w io.Writer) *Trace {
	return &Trace{w: w}
}

func (t *Trace) writeStep(vm *VM) {
	fmt.Fprintf(t.w, "          ")
	for i := 0; i < vm.sp; i++ {
		fmt.Fprintf(t.w, "[ %s ]", vm.stack[i])
	}
	fmt.Fprintf(t.w, "\n")

	vm.chunk.DisassembleInstruction(t.w, vm.ip)
}
