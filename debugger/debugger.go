package debugger

import (
	"fmt"

	"github.com/lookbusy1344/script-vm/bytecode"
	"github.com/lookbusy1344/script-vm/vm"
)

// Debugger drives single-step execution of a chunk with breakpoint
// support. The TUI sits on top of it.
type Debugger struct {
	VM          *vm.VM
	Chunk       *bytecode.Chunk
	Source      string
	Breakpoints *BreakpointManager
	History     *CommandHistory
}

// New creates a debugger for the given machine and chunk. The VM is
// reset so execution starts at the beginning of the chunk.
func New(machine *vm.VM, chunk *bytecode.Chunk, source string) *Debugger {
	machine.Reset(chunk)
	return &Debugger{
		VM:          machine,
		Chunk:       chunk,
		Source:      source,
		Breakpoints: NewBreakpointManager(),
		History:     NewCommandHistory(1000),
	}
}

// Step executes one instruction
func (d *Debugger) Step() error {
	if d.Finished() {
		return fmt.Errorf("execution has finished")
	}
	return d.VM.Step()
}

// Continue executes instructions until a breakpoint, halt, or error.
// The instruction at the current offset is always executed, so
// resuming from a breakpoint makes progress.
func (d *Debugger) Continue() (*Breakpoint, error) {
	for !d.Finished() {
		if err := d.VM.Step(); err != nil {
			return nil, err
		}
		if d.Finished() {
			break
		}
		if bp, hit := d.Breakpoints.Check(d.VM.IP()); hit {
			return bp, nil
		}
	}
	return nil, nil
}

// Reset rewinds execution to the start of the chunk, keeping
// breakpoints
func (d *Debugger) Reset() {
	d.VM.Reset(d.Chunk)
}

// Finished returns true once the VM has halted or errored
func (d *Debugger) Finished() bool {
	return d.VM.State() == vm.StateHalted || d.VM.State() == vm.StateError
}
