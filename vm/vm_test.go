package vm

import (
	"bytes"
	"errors"
	"math"
	"strconv"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/lox/bytecode"
	"github.com/deepnoodle-ai/lox/compiler"
	"github.com/deepnoodle-ai/lox/errz"
	"github.com/deepnoodle-ai/lox/op"
	"github.com/deepnoodle-ai/lox/value"
	"github.com/stretchr/testify/require"
)

func compile(t *testing.T, source string) *bytecode.Chunk {
	t.Helper()
	chunk, err := compiler.Compile(source)
	require.Nil(t, err)
	return chunk
}

// run compiles and runs the given source code in a new VM.
func run(t *testing.T, source string, options ...Option) (value.Value, error) {
	t.Helper()
	return New(options...).Run(compile(t, source))
}

func requireRuntimeError(t *testing.T, err error, kind errz.ErrorKind, message string, line int) {
	t.Helper()
	var runtimeErr *errz.RuntimeError
	require.True(t, errors.As(err, &runtimeErr), "expected a runtime error, got %v", err)
	require.Equal(t, kind, runtimeErr.Kind)
	require.Equal(t, message, runtimeErr.Message)
	require.Equal(t, line, runtimeErr.Line)
}

func TestArithmetic(t *testing.T) {
	result, err := run(t, "1 + 2 * 3")
	require.Nil(t, err)
	require.Equal(t, value.Number(7), result)
}

func TestNotExpression(t *testing.T) {
	result, err := run(t, "!(5 - 4 > 3 * 2 == !nil)")
	require.Nil(t, err)
	require.Equal(t, value.True, result)
}

func TestExpressions(t *testing.T) {
	tests := []struct {
		source   string
		expected value.Value
	}{
		{"", value.Nil},
		{"1", value.Number(1)},
		{"-3", value.Number(-3)},
		{"--3", value.Number(3)},
		{"10 - 4 - 3", value.Number(3)},
		{"2 * (3 + 4)", value.Number(14)},
		{"7 / 2", value.Number(3.5)},
		{"1 < 2", value.True},
		{"2 <= 2", value.True},
		{"1 > 2", value.False},
		{"2 >= 3", value.False},
		{"1 == 1", value.True},
		{"1 != 1", value.False},
		{"nil == nil", value.True},
		{"nil == false", value.False},
		{`"1" == 1`, value.False},
		{`"ab" == "a" + "b"`, value.True},
		{`"foo" + "bar"`, value.String("foobar")},
		{"!nil", value.True},
		{"!0", value.False},
		{`!""`, value.False},
		{"true and 2", value.Number(2)},
		{"nil and 2", value.Nil},
		{"false or 3", value.Number(3)},
		{"1 or 3", value.Number(1)},
		{"false and undefined", value.False},
		{"true or undefined", value.True},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			result, err := run(t, tt.source)
			require.Nil(t, err)
			require.True(t, tt.expected.Equals(result), "expected %s, got %s", tt.expected, result)
		})
	}
}

func TestDivisionByZero(t *testing.T) {
	result, err := run(t, "1 / 0")
	require.Nil(t, err)
	require.True(t, math.IsInf(result.AsNumber(), 1))

	result, err = run(t, "0 / 0")
	require.Nil(t, err)
	require.True(t, math.IsNaN(result.AsNumber()))

	result, err = run(t, "(0 / 0) == (0 / 0)")
	require.Nil(t, err)
	require.Equal(t, value.False, result)
}

func TestNumericLiteralRoundTrip(t *testing.T) {
	numbers := []float64{0, 1, 42, 2.5, 0.1, 123.456, 9007199254740993, 1e20, 3.141592653589793}
	for _, n := range numbers {
		literal := strconv.FormatFloat(n, 'f', -1, 64)
		t.Run(literal, func(t *testing.T) {
			result, err := run(t, literal)
			require.Nil(t, err)
			require.True(t, result.IsNumber())
			require.Equal(t, n, result.AsNumber())
		})
	}
}

func TestNegateRequiresNumber(t *testing.T) {
	tests := []struct {
		operand string
		ok      bool
	}{
		{"1.5", true},
		{"nil", false},
		{"true", false},
		{`"str"`, false},
	}
	for _, tt := range tests {
		t.Run(tt.operand, func(t *testing.T) {
			result, err := run(t, "-"+tt.operand)
			if tt.ok {
				require.Nil(t, err)
				require.Equal(t, value.Number(-1.5), result)
				return
			}
			requireRuntimeError(t, err, errz.ErrType, "Operand must be a number.", 1)
			require.Equal(t, value.Nil, result)
		})
	}
}

func TestTypeErrors(t *testing.T) {
	tests := []struct {
		source  string
		message string
	}{
		{`1 + "a"`, "Operands must be two numbers or two strings."},
		{`nil + nil`, "Operands must be two numbers or two strings."},
		{`"a" - "b"`, "Operands must be numbers."},
		{`true * 2`, "Operands must be numbers."},
		{`2 / nil`, "Operands must be numbers."},
		{`"a" < "b"`, "Operands must be numbers."},
		{`1 > false`, "Operands must be numbers."},
		{`1 <= "x"`, "Operands must be numbers."},
	}
	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			_, err := run(t, tt.source)
			requireRuntimeError(t, err, errz.ErrType, tt.message, 1)
		})
	}
}

func TestRuntimeErrorText(t *testing.T) {
	_, err := run(t, "var a = 1;\n\nprint -nil;")
	require.NotNil(t, err)
	require.Equal(t, "Operand must be a number.\n[line 3] in script", err.Error())
}

func TestUndefinedVariable(t *testing.T) {
	_, err := run(t, "print missing;")
	requireRuntimeError(t, err, errz.ErrName, "Undefined variable 'missing'.", 1)

	_, err = run(t, "\nmissing = 1;")
	requireRuntimeError(t, err, errz.ErrName, "Undefined variable 'missing'.", 2)
}

func TestStackOverflow(t *testing.T) {
	depth := DefaultStackSize + 44
	source := strings.Repeat("true == (", depth) + "true" + strings.Repeat(")", depth)
	chunk := compile(t, source)

	_, err := New().Run(chunk)
	requireRuntimeError(t, err, errz.ErrInternal, "Stack overflow.", 1)
	var runtimeErr *errz.RuntimeError
	require.True(t, errors.As(err, &runtimeErr))
	require.True(t, runtimeErr.IsInternal())

	result, err := New(WithStackSize(1024)).Run(chunk)
	require.Nil(t, err)
	require.Equal(t, value.True, result)
}

func TestStackUnderflow(t *testing.T) {
	chunk := bytecode.NewChunk("bad")
	chunk.WriteOp(op.Pop, 4)
	chunk.WriteOp(op.Return, 4)
	_, err := New().Run(chunk)
	requireRuntimeError(t, err, errz.ErrInternal, "Stack underflow.", 4)
}

func TestUnknownOpcode(t *testing.T) {
	chunk := bytecode.NewChunk("bad")
	chunk.WriteOp(op.Nil, 1)
	chunk.Write(200, 2)
	_, err := New().Run(chunk)
	requireRuntimeError(t, err, errz.ErrInternal, "Unknown opcode 200.", 2)
}

func TestRunningOffTheEnd(t *testing.T) {
	chunk := bytecode.NewChunk("bad")
	chunk.WriteOp(op.Nil, 1)
	_, err := New().Run(chunk)
	requireRuntimeError(t, err, errz.ErrInternal, "Instruction pointer 1 out of range.", 1)

	chunk = bytecode.NewChunk("truncated")
	chunk.WriteOp(op.Jump, 1)
	chunk.Write(0, 1)
	_, err = New().Run(chunk)
	requireRuntimeError(t, err, errz.ErrInternal, "Unexpected end of code.", 1)
}

func TestBadConstantIndex(t *testing.T) {
	chunk := bytecode.NewChunk("bad")
	chunk.WriteOp(op.Constant, 1)
	chunk.Write(3, 1)
	chunk.WriteOp(op.Return, 1)
	_, err := New().Run(chunk)
	requireRuntimeError(t, err, errz.ErrInternal, "Constant index 3 out of range.", 1)
}

func TestNilChunk(t *testing.T) {
	_, err := New().Run(nil)
	require.NotNil(t, err)
}

func TestPrint(t *testing.T) {
	var out bytes.Buffer
	result, err := run(t, `print 1; print "a"; print nil; print 2.5; print true; print -0;`,
		WithOutput(&out))
	require.Nil(t, err)
	require.Equal(t, value.Nil, result)
	require.Equal(t, "1\na\nnil\n2.5\ntrue\n-0\n", out.String())
}

func TestGlobals(t *testing.T) {
	result, err := run(t, "var a = 1; var b; a = a + 2; b = a * 2; a + b")
	require.Nil(t, err)
	require.Equal(t, value.Number(9), result)
}

func TestAssignmentIsAnExpression(t *testing.T) {
	result, err := run(t, "var a; var b; a = b = 3; a + b")
	require.Nil(t, err)
	require.Equal(t, value.Number(6), result)
}

func TestLocals(t *testing.T) {
	var out bytes.Buffer
	source := `
var a = "global";
{
	var a = "outer";
	{
		var a = "inner";
		print a;
	}
	print a;
	a = "changed";
	print a;
}
print a;
`
	_, err := run(t, source, WithOutput(&out))
	require.Nil(t, err)
	require.Equal(t, "inner\nouter\nchanged\nglobal\n", out.String())
}

func TestControlFlow(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected value.Value
	}{
		{"if", "var r = 0; if (1 < 2) r = 1; else r = 2; r", value.Number(1)},
		{"else", "var r = 0; if (nil) r = 1; else r = 2; r", value.Number(2)},
		{"if without else", "var r = 0; if (false) r = 1; r", value.Number(0)},
		{"while", "var i = 0; while (i < 10) i = i + 1; i", value.Number(10)},
		{"for", "var sum = 0; for (var i = 1; i <= 10; i = i + 1) sum = sum + i; sum", value.Number(55)},
		{"for without increment", "var n = 0; for (; n < 5;) n = n + 1; n", value.Number(5)},
		{"nested loops", `
var count = 0;
for (var i = 0; i < 3; i = i + 1) {
	for (var j = 0; j < 4; j = j + 1) {
		count = count + 1;
	}
}
count`, value.Number(12)},
		{"string building", `
var s = "";
var i = 0;
while (i < 3) { s = s + "ab"; i = i + 1; }
s`, value.String("ababab")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := run(t, tt.source)
			require.Nil(t, err)
			require.True(t, tt.expected.Equals(result), "expected %s, got %s", tt.expected, result)
		})
	}
}

func TestTopLevelReturn(t *testing.T) {
	var out bytes.Buffer
	result, err := run(t, "print 1; return 5; print 2;", WithOutput(&out))
	require.Nil(t, err)
	require.Equal(t, value.Number(5), result)
	require.Equal(t, "1\n", out.String())

	result, err = run(t, "{ var a = 1; return; }")
	require.Nil(t, err)
	require.Equal(t, value.Nil, result)
}

func TestRunIsRepeatable(t *testing.T) {
	var out bytes.Buffer
	chunk := compile(t, `var a = 10; print a; a * 2`)
	machine := New(WithOutput(&out))

	first, err := machine.Run(chunk)
	require.Nil(t, err)
	second, err := machine.Run(chunk)
	require.Nil(t, err)
	require.Equal(t, first, second)
	require.Equal(t, value.Number(20), second)
	require.Equal(t, "10\n10\n", out.String())
}

func TestGlobalsPersistAcrossRuns(t *testing.T) {
	machine := New()
	_, err := machine.Run(compile(t, "var a = 1;"))
	require.Nil(t, err)

	result, err := machine.Run(compile(t, "a = a + 1; a"))
	require.Nil(t, err)
	require.Equal(t, value.Number(2), result)

	globals := machine.Globals()
	require.Equal(t, map[string]value.Value{"a": value.Number(2)}, globals)
	globals["a"] = value.Nil
	require.Equal(t, value.Number(2), machine.Globals()["a"])

	require.Nil(t, machine.Reset())
	require.Empty(t, machine.Globals())
	_, err = machine.Run(compile(t, "a"))
	requireRuntimeError(t, err, errz.ErrName, "Undefined variable 'a'.", 1)
}

func TestRunAfterError(t *testing.T) {
	machine := New()
	_, err := machine.Run(compile(t, "1 + (2 + nil)"))
	require.NotNil(t, err)
	result, err := machine.Run(compile(t, "3"))
	require.Nil(t, err)
	require.Equal(t, value.Number(3), result)
}

func TestWithGlobals(t *testing.T) {
	result, err := run(t, `greeting + ", " + name`, WithGlobals(map[string]value.Value{
		"greeting": value.String("hello"),
		"name":     value.String("world"),
	}))
	require.Nil(t, err)
	require.Equal(t, value.String("hello, world"), result)
}

func TestStackSize(t *testing.T) {
	require.Equal(t, DefaultStackSize, New().StackSize())
	require.Equal(t, 16, New(WithStackSize(16)).StackSize())
	require.Equal(t, DefaultStackSize, New(WithStackSize(0)).StackSize())
}

func TestInterpret(t *testing.T) {
	machine := New()
	require.Equal(t, ResultOK, machine.Interpret(compile(t, "1 + 1")))
	require.Nil(t, machine.Err())

	require.Equal(t, ResultRuntimeError, machine.Interpret(compile(t, "-true")))
	requireRuntimeError(t, machine.Err(), errz.ErrType, "Operand must be a number.", 1)
}

func TestResultOf(t *testing.T) {
	require.Equal(t, ResultOK, ResultOf(nil))

	_, err := compiler.Compile("print ;")
	require.NotNil(t, err)
	require.Equal(t, ResultCompileError, ResultOf(err))

	_, err = run(t, "-nil")
	require.Equal(t, ResultRuntimeError, ResultOf(err))

	require.Equal(t, "ok", ResultOK.String())
	require.Equal(t, "compile error", ResultCompileError.String())
	require.Equal(t, "runtime error", ResultRuntimeError.String())
}

func TestRunWhileRunning(t *testing.T) {
	chunk := compile(t, "1")
	var machine *VirtualMachine
	var nestedErr error
	machine = New(WithObserver(ObserverFunc(func(event StepEvent) bool {
		_, nestedErr = machine.Run(chunk)
		return true
	})))
	_, err := machine.Run(chunk)
	require.Nil(t, err)
	require.True(t, errors.Is(nestedErr, ErrAlreadyRunning))

	machine = New(WithObserver(ObserverFunc(func(event StepEvent) bool {
		nestedErr = machine.Reset()
		return true
	})))
	_, err = machine.Run(chunk)
	require.Nil(t, err)
	require.True(t, errors.Is(nestedErr, ErrAlreadyRunning))
}

func TestPackageRun(t *testing.T) {
	result, err := Run(compile(t, `"a" + "b"`))
	require.Nil(t, err)
	require.Equal(t, value.String("ab"), result)
}
