package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"

	"github.com/lookbusy1344/script-vm/bytecode"
	"github.com/lookbusy1344/script-vm/compiler"
	"github.com/lookbusy1344/script-vm/config"
	"github.com/lookbusy1344/script-vm/debugger"
	"github.com/lookbusy1344/script-vm/value"
	"github.com/lookbusy1344/script-vm/vm"
)

// Version information - can be overridden at build time with:
// go build -ldflags "-X main.Version=v1.2.3"
var (
	Version = "dev"     // Version number (set by git tag at build time)
	Commit  = "unknown" // Git commit hash
	Date    = "unknown" // Build date
)

// Process exit codes, following the BSD sysexits convention
const (
	exitOK      = 0
	exitUsage   = 64 // command line usage error
	exitCompile = 65 // input could not be compiled
	exitRuntime = 70 // runtime error during interpretation
	exitIOErr   = 74 // input file could not be read
)

func main() {
	var (
		showVersion = flag.Bool("version", false, "Show version information")
		showHelp    = flag.Bool("help", false, "Show help information")
		debugMode   = flag.Bool("debug", false, "Open the TUI debugger instead of running directly")
		showDisasm  = flag.Bool("disasm", false, "Print chunk disassembly before running")
		enableTrace = flag.Bool("trace", false, "Trace execution instruction by instruction")
		maxSteps    = flag.Uint64("max-steps", 0, "Maximum instructions before halt (0 = config default)")
		configFile  = flag.String("config", "", "Config file path (default: platform config dir)")
	)

	flag.Parse()

	if *showVersion {
		fmt.Printf("script-vm %s\n", Version)
		if Commit != "unknown" {
			fmt.Printf("Commit: %s\n", Commit)
		}
		if Date != "unknown" {
			fmt.Printf("Built: %s\n", Date)
		}
		os.Exit(exitOK)
	}

	if *showHelp {
		printHelp()
		os.Exit(exitOK)
	}

	cfg := loadConfig(*configFile)
	if *maxSteps > 0 {
		cfg.Execution.MaxSteps = *maxSteps
	}
	if *enableTrace {
		cfg.Execution.EnableTrace = true
	}
	if *showDisasm {
		cfg.Display.ShowBytecode = true
	}

	switch flag.NArg() {
	case 0:
		runREPL(cfg)
		os.Exit(exitOK)
	case 1:
		os.Exit(runFile(flag.Arg(0), cfg, *debugMode))
	default:
		fmt.Fprintln(os.Stderr, "Usage: script-vm [options] [script]")
		os.Exit(exitUsage)
	}
}

// loadConfig reads the config file, falling back to defaults when the
// file is missing or malformed
func loadConfig(path string) *config.Config {
	var cfg *config.Config
	var err error
	if path != "" {
		cfg, err = config.LoadFrom(path)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		return config.DefaultConfig()
	}
	return cfg
}

// newVM builds a VM from the configuration
func newVM(cfg *config.Config, pool *value.StringPool) *vm.VM {
	machine := vm.New(pool)
	machine.MaxSteps = cfg.Execution.MaxSteps
	if cfg.Execution.EnableTrace {
		machine.SetTrace(vm.NewTrace(os.Stderr))
	}
	return machine
}

// runFile compiles and interprets one source file, returning the
// process exit code
func runFile(path string, cfg *config.Config, debugMode bool) int {
	source, err := os.ReadFile(path) // #nosec G304 -- script path comes from the command line
	if err != nil {
		fmt.Fprintf(os.Stderr, "Could not read file %q: %v\n", path, err)
		return exitIOErr
	}

	pool := value.NewStringPool()
	chunk := bytecode.NewChunk()
	if err := compiler.Compile(string(source), chunk, pool); err != nil {
		fmt.Fprint(os.Stderr, err.Error())
		return exitCompile
	}

	if cfg.Display.ShowBytecode {
		chunk.Disassemble(os.Stdout, path)
	}

	machine := newVM(cfg, pool)

	if debugMode {
		dbg := debugger.New(machine, chunk, string(source))
		tui := debugger.NewTUI(dbg)
		if err := tui.Run(); err != nil {
			fmt.Fprintf(os.Stderr, "Debugger error: %v\n", err)
			return exitRuntime
		}
		return exitOK
	}

	result, err := machine.Interpret(chunk)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		return exitRuntime
	}

	fmt.Println(result)
	return exitOK
}

// runREPL reads expressions from stdin one line at a time, compiling
// and interpreting each independently. EOF terminates the loop.
func runREPL(cfg *config.Config) {
	pool := value.NewStringPool()
	machine := newVM(cfg, pool)
	input := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(cfg.REPL.Prompt)
		if !input.Scan() {
			fmt.Println()
			return
		}
		line := input.Text()

		chunk := bytecode.NewChunk()
		if err := compiler.Compile(line, chunk, pool); err != nil {
			fmt.Fprint(os.Stderr, err.Error())
			continue
		}

		if cfg.Display.ShowBytecode {
			chunk.Disassemble(os.Stdout, "repl")
		}

		result, err := machine.Interpret(chunk)
		if err != nil {
			fmt.Fprintln(os.Stderr, err.Error())
			continue
		}
		fmt.Println(result)
	}
}

func printHelp() {
	fmt.Println("script-vm - bytecode compiler and VM for a small expression language")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  script-vm [options]           Start an interactive session")
	fmt.Println("  script-vm [options] <script>  Compile and run a script file")
	fmt.Println()
	fmt.Println("Options:")
	flag.PrintDefaults()
	fmt.Println()
	fmt.Println("Exit codes:")
	fmt.Println("  0   success")
	fmt.Println("  64  usage error")
	fmt.Println("  65  compile error")
	fmt.Println("  70  runtime error")
	fmt.Println("  74  input file unreadable")
}
