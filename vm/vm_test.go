package vm_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lookbusy1344/script-vm/bytecode"
	"github.com/lookbusy1344/script-vm/compiler"
	"github.com/lookbusy1344/script-vm/value"
	"github.com/lookbusy1344/script-vm/vm"
)

// interpret compiles and runs one expression
func interpret(t *testing.T, source string) (value.Value, error) {
	t.Helper()

	pool := value.NewStringPool()
	chunk := bytecode.NewChunk()
	if err := compiler.Compile(source, chunk, pool); err != nil {
		t.Fatalf("compile %q failed: %v", source, err)
	}

	machine := vm.New(pool)
	return machine.Interpret(chunk)
}

func TestInterpret_NumberResults(t *testing.T) {
	tests := []struct {
		source   string
		expected float64
	}{
		{"1 + 2 * 3", 7},
		{"(-1 + 2) * 3 - -4", 7},
		{"1 + 2 * (3 + 4)", 15},
		{"10 / 4", 2.5},
		{"-0.5 + 1", 0.5},
		{"2 * 3 - 4 / 2", 4},
	}

	for _, tt := range tests {
		result, err := interpret(t, tt.source)
		require.NoError(t, err, "source %q", tt.source)
		require.True(t, result.IsNumber(), "source %q should yield a number", tt.source)
		assert.Equal(t, tt.expected, result.AsNumber(), "source %q", tt.source)
	}
}

func TestInterpret_BooleanResults(t *testing.T) {
	tests := []struct {
		source   string
		expected bool
	}{
		{"!(5 - 4 >= 3 * 2 == !nil)", true},
		{"nil == nil", true},
		{"true == false", false},
		{"1 < 2", true},
		{"2 <= 2", true},
		{"3 > 4", false},
		{"3 >= 4", false},
		{"1 != 2", true},
		{"1 == 1", true},
		{"!nil", true},
		{"!0", false},
		{`!""`, false},
		{`"hello" == "hello"`, true},
		{`"hello" == "world"`, false},
		{`1 == "1"`, false},
		{"nil == false", false},
	}

	for _, tt := range tests {
		result, err := interpret(t, tt.source)
		require.NoError(t, err, "source %q", tt.source)
		require.True(t, result.IsBool(), "source %q should yield a boolean", tt.source)
		assert.Equal(t, tt.expected, result.AsBool(), "source %q", tt.source)
	}
}

func TestInterpret_StringConcatenation(t *testing.T) {
	result, err := interpret(t, `"hello" + " " + "world"`)
	require.NoError(t, err)
	require.True(t, result.IsString())
	assert.Equal(t, "hello world", result.String())
}

func TestInterpret_ConcatenationInternsResult(t *testing.T) {
	pool := value.NewStringPool()
	chunk := bytecode.NewChunk()
	require.NoError(t, compiler.Compile(`"he" + "llo"`, chunk, pool))

	machine := vm.New(pool)
	result, err := machine.Interpret(chunk)
	require.NoError(t, err)

	direct := pool.InternString("hello")
	assert.Same(t, direct, result.AsString(),
		"runtime concatenation should produce the canonical interned string")
}

func TestInterpret_NilLiteral(t *testing.T) {
	result, err := interpret(t, "nil")
	require.NoError(t, err)
	assert.True(t, result.IsNil())
}

func TestInterpret_RuntimeErrors(t *testing.T) {
	tests := []struct {
		source   string
		expected string
	}{
		{"true + 1", "Operands must be two numbers or two strings."},
		{`"a" + 1`, "Operands must be two numbers or two strings."},
		{`1 + "a"`, "Operands must be two numbers or two strings."},
		{"-false", "Operand must be a number."},
		{"-nil", "Operand must be a number."},
		{`-"abc"`, "Operand must be a number."},
		{"true - 1", "Operands must be numbers."},
		{`"a" * "b"`, "Operands must be numbers."},
		{"nil / 2", "Operands must be numbers."},
		{"true > false", "Operands must be numbers."},
		{`"a" < "b"`, "Operands must be numbers."},
	}

	for _, tt := range tests {
		_, err := interpret(t, tt.source)
		require.Error(t, err, "source %q", tt.source)

		var rte *vm.RuntimeError
		require.ErrorAs(t, err, &rte, "source %q", tt.source)
		assert.Equal(t, tt.expected, rte.Message, "source %q", tt.source)
	}
}

func TestRuntimeError_Format(t *testing.T) {
	_, err := interpret(t, "-false")
	require.Error(t, err)
	assert.Equal(t, "Operand must be a number.\n[line 1] in script", err.Error())
}

func TestRuntimeError_LineNumber(t *testing.T) {
	_, err := interpret(t, "1 +\ntrue")
	require.Error(t, err)

	var rte *vm.RuntimeError
	require.ErrorAs(t, err, &rte)
	assert.Equal(t, 2, rte.Line, "error line should come from the failing instruction")
}

func TestInterpret_EqualNeverErrors(t *testing.T) {
	sources := []string{
		`1 == "1"`,
		"true == 1",
		`nil == "nil"`,
		"false == 0",
	}

	for _, source := range sources {
		result, err := interpret(t, source)
		require.NoError(t, err, "source %q", source)
		assert.False(t, result.AsBool(), "cross-type equality is false, not an error")
	}
}

func TestVM_StackNeutrality(t *testing.T) {
	sources := []string{
		"1 + 2 * 3",
		"!(5 - 4 >= 3 * 2 == !nil)",
		`"a" + "b" + "c"`,
		"nil",
		"-(-(-1))",
	}

	for _, source := range sources {
		pool := value.NewStringPool()
		chunk := bytecode.NewChunk()
		require.NoError(t, compiler.Compile(source, chunk, pool))

		machine := vm.New(pool)
		machine.Reset(chunk)

		for machine.State() == vm.StateReady || machine.State() == vm.StateRunning {
			if bytecode.OpCode(chunk.Code[machine.IP()]) == bytecode.OpReturn {
				assert.Equal(t, 1, machine.StackDepth(),
					"%q: exactly one value must remain at RETURN", source)
			}
			require.NoError(t, machine.Step())
			if machine.State() == vm.StateHalted {
				break
			}
		}

		assert.Equal(t, vm.StateHalted, machine.State())
		assert.Equal(t, 0, machine.StackDepth(), "%q: RETURN pops the result", source)
	}
}

func TestVM_StepStateMachine(t *testing.T) {
	pool := value.NewStringPool()
	chunk := bytecode.NewChunk()
	require.NoError(t, compiler.Compile("1 + 2", chunk, pool))

	machine := vm.New(pool)
	machine.Reset(chunk)
	assert.Equal(t, vm.StateReady, machine.State())

	// CONSTANT, CONSTANT, ADD, RETURN
	require.NoError(t, machine.Step())
	assert.Equal(t, 1, machine.StackDepth())
	require.NoError(t, machine.Step())
	assert.Equal(t, 2, machine.StackDepth())
	require.NoError(t, machine.Step())
	assert.Equal(t, 1, machine.StackDepth())
	require.NoError(t, machine.Step())

	assert.Equal(t, vm.StateHalted, machine.State())
	assert.Equal(t, 3.0, machine.Result().AsNumber())

	// Stepping a halted VM is an error
	assert.Error(t, machine.Step())
}

func TestVM_ErrorStateIsSticky(t *testing.T) {
	pool := value.NewStringPool()
	chunk := bytecode.NewChunk()
	require.NoError(t, compiler.Compile("-false", chunk, pool))

	machine := vm.New(pool)
	_, err := machine.Interpret(chunk)
	require.Error(t, err)
	assert.Equal(t, vm.StateError, machine.State())
	assert.Error(t, machine.Step(), "stepping after a runtime error must fail")
	assert.Equal(t, err, machine.LastError())
}

func TestVM_ReusableAcrossChunks(t *testing.T) {
	pool := value.NewStringPool()
	machine := vm.New(pool)

	first := bytecode.NewChunk()
	require.NoError(t, compiler.Compile("1 + 1", first, pool))
	result, err := machine.Interpret(first)
	require.NoError(t, err)
	assert.Equal(t, 2.0, result.AsNumber())

	second := bytecode.NewChunk()
	require.NoError(t, compiler.Compile("2 * 2", second, pool))
	result, err = machine.Interpret(second)
	require.NoError(t, err)
	assert.Equal(t, 4.0, result.AsNumber())
}

func TestVM_TraceOutput(t *testing.T) {
	pool := value.NewStringPool()
	chunk := bytecode.NewChunk()
	require.NoError(t, compiler.Compile("1 + 2", chunk, pool))

	var sb strings.Builder
	machine := vm.New(pool)
	machine.SetTrace(vm.NewTrace(&sb))

	_, err := machine.Interpret(chunk)
	require.NoError(t, err)

	out := sb.String()
	for _, want := range []string{"CONSTANT", "ADD", "RETURN", "[ 1 ]", "[ 1 ][ 2 ]"} {
		assert.Contains(t, out, want)
	}
}

func TestVM_StepLimit(t *testing.T) {
	pool := value.NewStringPool()
	chunk := bytecode.NewChunk()
	require.NoError(t, compiler.Compile("1 + 2 + 3 + 4", chunk, pool))

	machine := vm.New(pool)
	machine.MaxSteps = 2
	_, err := machine.Interpret(chunk)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Step limit exceeded")
}
