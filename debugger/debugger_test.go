package debugger_test

import (
	"testing"

	"github.com/lookbusy1344/script-vm/bytecode"
	"github.com/lookbusy1344/script-vm/compiler"
	"github.com/lookbusy1344/script-vm/debugger"
	"github.com/lookbusy1344/script-vm/value"
	"github.com/lookbusy1344/script-vm/vm"
)

func newDebugger(t *testing.T, source string) *debugger.Debugger {
	t.Helper()

	pool := value.NewStringPool()
	chunk := bytecode.NewChunk()
	if err := compiler.Compile(source, chunk, pool); err != nil {
		t.Fatalf("compile %q failed: %v", source, err)
	}
	return debugger.New(vm.New(pool), chunk, source)
}

func TestDebugger_StepToCompletion(t *testing.T) {
	d := newDebugger(t, "1 + 2 * 3")

	steps := 0
	for !d.Finished() {
		if err := d.Step(); err != nil {
			t.Fatalf("step %d failed: %v", steps, err)
		}
		steps++
	}

	// CONSTANT x3, MULTIPLY, ADD, RETURN
	if steps != 6 {
		t.Errorf("expected 6 steps, got %d", steps)
	}
	if d.VM.Result().AsNumber() != 7 {
		t.Errorf("expected result 7, got %s", d.VM.Result())
	}
}

func TestDebugger_StepAfterFinish(t *testing.T) {
	d := newDebugger(t, "nil")
	for !d.Finished() {
		if err := d.Step(); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if err := d.Step(); err == nil {
		t.Error("stepping past the end should fail")
	}
}

func TestDebugger_ContinueRunsToEnd(t *testing.T) {
	d := newDebugger(t, "2 * 21")

	bp, err := d.Continue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bp != nil {
		t.Errorf("no breakpoints set, but stopped at %v", bp)
	}
	if !d.Finished() {
		t.Error("continue should run to completion")
	}
	if d.VM.Result().AsNumber() != 42 {
		t.Errorf("expected 42, got %s", d.VM.Result())
	}
}

func TestDebugger_ContinueStopsAtBreakpoint(t *testing.T) {
	// 1 + 2 * 3 compiles to: CONSTANT(0-1) CONSTANT(2-3) CONSTANT(4-5)
	// MULTIPLY(6) ADD(7) RETURN(8)
	d := newDebugger(t, "1 + 2 * 3")
	d.Breakpoints.Add(6)

	bp, err := d.Continue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bp == nil {
		t.Fatal("expected to stop at breakpoint")
	}
	if bp.Offset != 6 {
		t.Errorf("expected offset 6, got %d", bp.Offset)
	}
	if d.VM.IP() != 6 {
		t.Errorf("VM should be stopped at offset 6, ip=%d", d.VM.IP())
	}
	if bp.HitCount != 1 {
		t.Errorf("expected hit count 1, got %d", bp.HitCount)
	}

	// Resuming executes the rest
	bp, err = d.Continue()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bp != nil {
		t.Error("second continue should run to completion")
	}
	if d.VM.Result().AsNumber() != 7 {
		t.Errorf("expected 7, got %s", d.VM.Result())
	}
}

func TestDebugger_ResetKeepsBreakpoints(t *testing.T) {
	d := newDebugger(t, "1 + 2")
	d.Breakpoints.Add(2)

	if _, err := d.Continue(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	d.Reset()

	if d.Finished() {
		t.Error("reset should rewind execution")
	}
	if len(d.Breakpoints.All()) != 1 {
		t.Error("reset should keep breakpoints")
	}
}

func TestDebugger_RuntimeErrorSurfaces(t *testing.T) {
	d := newDebugger(t, "-false")

	_, err := d.Continue()
	if err == nil {
		t.Fatal("expected runtime error")
	}
	if !d.Finished() {
		t.Error("errored VM counts as finished")
	}
}

func TestBreakpointManager(t *testing.T) {
	m := debugger.NewBreakpointManager()

	bp1 := m.Add(0)
	bp2 := m.Add(4)
	if bp1.ID == bp2.ID {
		t.Error("breakpoints should get distinct IDs")
	}

	if _, hit := m.Check(4); !hit {
		t.Error("expected hit at offset 4")
	}
	if _, hit := m.Check(2); hit {
		t.Error("no breakpoint at offset 2")
	}

	all := m.All()
	if len(all) != 2 || all[0].Offset != 0 || all[1].Offset != 4 {
		t.Errorf("All should return breakpoints ordered by offset: %v", all)
	}

	if !m.Remove(bp1.ID) {
		t.Error("remove by ID failed")
	}
	if m.Remove(99) {
		t.Error("removing unknown ID should fail")
	}

	m.Clear()
	if len(m.All()) != 0 {
		t.Error("clear should remove all breakpoints")
	}
}

func TestBreakpointManager_ReAddReEnables(t *testing.T) {
	m := debugger.NewBreakpointManager()
	bp := m.Add(3)
	bp.Enabled = false

	if _, hit := m.Check(3); hit {
		t.Error("disabled breakpoint should not hit")
	}

	again := m.Add(3)
	if again != bp {
		t.Error("re-adding should return the existing breakpoint")
	}
	if !again.Enabled {
		t.Error("re-adding should re-enable")
	}
}

func TestCommandHistory(t *testing.T) {
	h := debugger.NewCommandHistory(3)

	h.Add("step")
	h.Add("step") // duplicate, skipped
	h.Add("continue")
	h.Add("") // empty, skipped
	if h.Size() != 2 {
		t.Errorf("expected 2 commands, got %d", h.Size())
	}

	if got := h.Previous(); got != "continue" {
		t.Errorf("expected 'continue', got %q", got)
	}
	if got := h.Previous(); got != "step" {
		t.Errorf("expected 'step', got %q", got)
	}
	if got := h.Previous(); got != "" {
		t.Errorf("expected empty at oldest, got %q", got)
	}
	if got := h.Next(); got != "continue" {
		t.Errorf("expected 'continue', got %q", got)
	}
}

func TestCommandHistory_Bounded(t *testing.T) {
	h := debugger.NewCommandHistory(2)
	h.Add("a")
	h.Add("b")
	h.Add("c")

	if h.Size() != 2 {
		t.Errorf("expected history capped at 2, got %d", h.Size())
	}
	if got := h.Previous(); got != "c" {
		t.Errorf("expected newest entry 'c', got %q", got)
	}
}
