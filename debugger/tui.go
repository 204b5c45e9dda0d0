package debugger

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/lookbusy1344/script-vm/vm"
)

// TUI represents the text user interface for the debugger
type TUI struct {
	Debugger *Debugger
	App      *tview.Application

	// Layout containers
	MainLayout *tview.Flex
	LeftPanel  *tview.Flex
	RightPanel *tview.Flex

	// View panels
	SourceView      *tview.TextView
	DisassemblyView *tview.TextView
	StackView       *tview.TextView
	ConstantsView   *tview.TextView
	OutputView      *tview.TextView
	CommandInput    *tview.InputField
}

// NewTUI creates a new text user interface
func NewTUI(debugger *Debugger) *TUI {
	tui := &TUI{
		Debugger: debugger,
		App:      tview.NewApplication(),
	}

	tui.initializeViews()
	tui.buildLayout()
	tui.setupKeyBindings()
	tui.updateViews()

	return tui
}

// initializeViews creates all the view panels
func (t *TUI) initializeViews() {
	t.SourceView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	t.SourceView.SetBorder(true).SetTitle(" Source ")

	t.DisassemblyView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.DisassemblyView.SetBorder(true).SetTitle(" Disassembly ")

	t.StackView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.StackView.SetBorder(true).SetTitle(" Stack ")

	t.ConstantsView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(false)
	t.ConstantsView.SetBorder(true).SetTitle(" Constants ")

	t.OutputView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWrap(true)
	t.OutputView.SetBorder(true).SetTitle(" Output ")

	t.CommandInput = tview.NewInputField().
		SetLabel("> ").
		SetFieldWidth(0)
	t.CommandInput.SetBorder(true).SetTitle(" Command ")
	t.CommandInput.SetDoneFunc(t.handleCommand)
}

// buildLayout arranges the panels
func (t *TUI) buildLayout() {
	t.LeftPanel = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.SourceView, 4, 0, false).
		AddItem(t.DisassemblyView, 0, 2, false).
		AddItem(t.OutputView, 0, 1, false)

	t.RightPanel = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(t.StackView, 0, 1, false).
		AddItem(t.ConstantsView, 0, 1, false)

	body := tview.NewFlex().
		AddItem(t.LeftPanel, 0, 2, false).
		AddItem(t.RightPanel, 0, 1, false)

	t.MainLayout = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(body, 0, 1, false).
		AddItem(t.CommandInput, 3, 0, true)
}

// setupKeyBindings wires function keys and history navigation
func (t *TUI) setupKeyBindings() {
	t.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyF10:
			t.doStep()
			return nil
		case tcell.KeyF5:
			t.doContinue()
			return nil
		}
		return event
	})

	t.CommandInput.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyUp:
			if cmd := t.Debugger.History.Previous(); cmd != "" {
				t.CommandInput.SetText(cmd)
			}
			return nil
		case tcell.KeyDown:
			t.CommandInput.SetText(t.Debugger.History.Next())
			return nil
		}
		return event
	})
}

// handleCommand executes a debugger command entered in the input field
func (t *TUI) handleCommand(key tcell.Key) {
	if key != tcell.KeyEnter {
		return
	}

	line := strings.TrimSpace(t.CommandInput.GetText())
	t.CommandInput.SetText("")
	if line == "" {
		return
	}
	t.Debugger.History.Add(line)

	fields := strings.Fields(line)
	cmd := fields[0]
	args := fields[1:]

	switch cmd {
	case "step", "s":
		t.doStep()
	case "continue", "c", "run":
		t.doContinue()
	case "reset", "r":
		t.Debugger.Reset()
		t.writeOutput("Execution reset to start of chunk")
	case "break", "b":
		t.cmdBreak(args)
	case "delete", "d":
		t.cmdDelete(args)
	case "breakpoints", "info":
		t.cmdListBreakpoints()
	case "help", "h":
		t.writeOutput("Commands: step(s) continue(c) reset(r) break(b) <offset> delete(d) <id> breakpoints quit(q)  Keys: F10=step F5=continue")
	case "quit", "q", "exit":
		t.App.Stop()
	default:
		t.writeOutput(fmt.Sprintf("Unknown command: %s (try 'help')", cmd))
	}

	t.updateViews()
}

func (t *TUI) cmdBreak(args []string) {
	if len(args) != 1 {
		t.writeOutput("Usage: break <bytecode offset>")
		return
	}
	offset, err := strconv.Atoi(args[0])
	if err != nil || offset < 0 || offset >= t.Debugger.Chunk.Len() {
		t.writeOutput(fmt.Sprintf("Invalid offset: %s", args[0]))
		return
	}
	bp := t.Debugger.Breakpoints.Add(offset)
	t.writeOutput(fmt.Sprintf("Breakpoint %s", bp))
}

func (t *TUI) cmdDelete(args []string) {
	if len(args) != 1 {
		t.writeOutput("Usage: delete <breakpoint id>")
		return
	}
	id, err := strconv.Atoi(args[0])
	if err != nil || !t.Debugger.Breakpoints.Remove(id) {
		t.writeOutput(fmt.Sprintf("No breakpoint with ID %s", args[0]))
		return
	}
	t.writeOutput(fmt.Sprintf("Deleted breakpoint #%d", id))
}

func (t *TUI) cmdListBreakpoints() {
	bps := t.Debugger.Breakpoints.All()
	if len(bps) == 0 {
		t.writeOutput("No breakpoints set")
		return
	}
	for _, bp := range bps {
		t.writeOutput(bp.String())
	}
}

func (t *TUI) doStep() {
	if t.Debugger.Finished() {
		t.reportFinished()
		t.updateViews()
		return
	}
	if err := t.Debugger.Step(); err != nil {
		t.writeOutput(fmt.Sprintf("[red]%v[-]", err))
	}
	if t.Debugger.Finished() {
		t.reportFinished()
	}
	t.updateViews()
}

func (t *TUI) doContinue() {
	if t.Debugger.Finished() {
		t.reportFinished()
		t.updateViews()
		return
	}
	bp, err := t.Debugger.Continue()
	switch {
	case err != nil:
		t.writeOutput(fmt.Sprintf("[red]%v[-]", err))
	case bp != nil:
		t.writeOutput(fmt.Sprintf("Stopped at breakpoint %s", bp))
	default:
		t.reportFinished()
	}
	t.updateViews()
}

func (t *TUI) reportFinished() {
	if t.Debugger.VM.State() == vm.StateHalted {
		t.writeOutput(fmt.Sprintf("[green]Result: %s[-]", t.Debugger.VM.Result()))
	}
}

func (t *TUI) writeOutput(text string) {
	fmt.Fprintf(t.OutputView, "%s\n", text)
}

// updateViews refreshes every panel from the current VM state
func (t *TUI) updateViews() {
	t.updateSourceView()
	t.updateDisassemblyView()
	t.updateStackView()
	t.updateConstantsView()
}

func (t *TUI) updateSourceView() {
	t.SourceView.SetText(t.Debugger.Source)
}

func (t *TUI) updateDisassemblyView() {
	chunk := t.Debugger.Chunk
	ip := t.Debugger.VM.IP()

	var sb strings.Builder
	for offset := 0; offset < chunk.Len(); {
		var line strings.Builder
		next := chunk.DisassembleInstruction(&line, offset)

		marker := "  "
		if offset == ip && !t.Debugger.Finished() {
			marker = "[yellow]=>"
		}
		if bp, exists := t.breakpointAt(offset); exists && bp.Enabled {
			marker = "[red] *"
		}
		sb.WriteString(marker)
		sb.WriteString(" ")
		sb.WriteString(strings.TrimRight(line.String(), "\n"))
		sb.WriteString("[-]\n")

		offset = next
	}
	t.DisassemblyView.SetText(sb.String())
}

func (t *TUI) breakpointAt(offset int) (*Breakpoint, bool) {
	for _, bp := range t.Debugger.Breakpoints.All() {
		if bp.Offset == offset {
			return bp, true
		}
	}
	return nil, false
}

func (t *TUI) updateStackView() {
	machine := t.Debugger.VM

	var sb strings.Builder
	depth := machine.StackDepth()
	if depth == 0 {
		sb.WriteString("[gray](empty)[-]\n")
	}
	for i := depth - 1; i >= 0; i-- {
		marker := "   "
		if i == depth-1 {
			marker = "top"
		}
		fmt.Fprintf(&sb, "[yellow]%s[-] %3d: %s\n", marker, i, machine.StackAt(i))
	}
	t.StackView.SetText(sb.String())
}

func (t *TUI) updateConstantsView() {
	var sb strings.Builder
	for i, c := range t.Debugger.Chunk.Constants {
		fmt.Fprintf(&sb, "%3d: %s\n", i, c)
	}
	t.ConstantsView.SetText(sb.String())
}

// Run starts the TUI event loop and blocks until the user quits
func (t *TUI) Run() error {
	return t.App.SetRoot(t.MainLayout, true).SetFocus(t.CommandInput).Run()
}
