package dis

import (
	"bytes"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/lox/bytecode"
	"github.com/deepnoodle-ai/lox/compiler"
	"github.com/deepnoodle-ai/lox/op"
	"github.com/deepnoodle-ai/lox/vm"
	"github.com/deepnoodle-ai/wonton/assert"
	"github.com/deepnoodle-ai/wonton/color"
)

func disableColor(t *testing.T) {
	t.Helper()
	oldEnabled := color.Enabled
	color.Enabled = false
	t.Cleanup(func() { color.Enabled = oldEnabled })
}

func TestDisassemble(t *testing.T) {
	disableColor(t)
	tests := []struct {
		name     string
		source   string
		expected string
	}{
		{
			name:   "test",
			source: "1 + 2;\nprint -3;",
			expected: `
== test ==
0000    1 OP_CONSTANT         0 '1'
0002    | OP_CONSTANT         1 '2'
0004    | OP_ADD
0005    | OP_POP
0006    2 OP_CONSTANT         2 '3'
0008    | OP_NEGATE
0009    | OP_PRINT
0010    | OP_RETURN
`,
		},
		{
			name:   "if",
			source: "if (true) print 1;",
			expected: `
== if ==
0000    1 OP_TRUE
0001    | OP_JUMP_IF_FALSE    1 -> 11
0004    | OP_POP
0005    | OP_CONSTANT         0 '1'
0007    | OP_PRINT
0008    | OP_JUMP             8 -> 12
0011    | OP_POP
0012    | OP_RETURN
`,
		},
		{
			name:   "loop",
			source: "while (false) {}",
			expected: `
== loop ==
0000    1 OP_FALSE
0001    | OP_JUMP_IF_FALSE    1 -> 8
0004    | OP_POP
0005    | OP_LOOP             5 -> 0
0008    | OP_POP
0009    | OP_RETURN
`,
		},
		{
			name:   "locals",
			source: "{ var a = 1; a = 2; }",
			expected: `
== locals ==
0000    1 OP_CONSTANT         0 '1'
0002    | OP_CONSTANT         1 '2'
0004    | OP_SET_LOCAL        0
0006    | OP_POP
0007    | OP_POP
0008    | OP_RETURN
`,
		},
		{
			name:   "globals",
			source: "var s = \"hi\";\ns",
			expected: `
== globals ==
0000    1 OP_CONSTANT         1 'hi'
0002    | OP_DEFINE_GLOBAL    0 's'
0004    2 OP_GET_GLOBAL       0 's'
0006    | OP_RETURN
`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chunk, err := compiler.Compile(tt.source)
			assert.Nil(t, err)
			var buf bytes.Buffer
			Disassemble(&buf, chunk, tt.name)
			assert.Equal(t, buf.String(), strings.TrimPrefix(tt.expected, "\n"))
		})
	}
}

func TestDisassembleInstructionReturnsNextOffset(t *testing.T) {
	disableColor(t)
	chunk, err := compiler.Compile("true and false")
	assert.Nil(t, err)
	var buf bytes.Buffer
	assert.Equal(t, DisassembleInstruction(&buf, chunk, 0), 1)
	assert.Equal(t, DisassembleInstruction(&buf, chunk, 1), 4)
	assert.Equal(t, DisassembleInstruction(&buf, chunk, 4), 5)
}

func TestDisassembleBadCode(t *testing.T) {
	disableColor(t)
	chunk := bytecode.NewChunk("bad")
	chunk.Write(200, 1)
	chunk.WriteOp(op.Constant, 1)
	var buf bytes.Buffer
	Disassemble(&buf, chunk, "bad")
	assert.Equal(t, buf.String(), "== bad ==\n"+
		"0000    1 Unknown opcode 200\n"+
		"0001    | OP_CONSTANT (truncated)\n")
}

func TestInstructions(t *testing.T) {
	chunk, err := compiler.Compile(`"a" and nil`)
	assert.Nil(t, err)
	instructions, err := Instructions(chunk)
	assert.Nil(t, err)
	assert.Len(t, instructions, 5)
	assert.Equal(t, instructions[0], Instruction{
		Offset: 0, Line: 1, Opcode: op.Constant, Name: "OP_CONSTANT",
		Operands: []int{0}, Info: `"a"`,
	})
	assert.Equal(t, instructions[1], Instruction{
		Offset: 2, Line: 1, Opcode: op.JumpIfFalse, Name: "OP_JUMP_IF_FALSE",
		Operands: []int{2}, Info: "-> 7",
	})
	assert.Equal(t, instructions[4].Name, "OP_RETURN")
	assert.Nil(t, instructions[4].Operands)
}

func TestInstructionsErrors(t *testing.T) {
	chunk := bytecode.NewChunk("bad")
	chunk.Write(200, 1)
	_, err := Instructions(chunk)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "unknown opcode 200 at offset 0")

	chunk = bytecode.NewChunk("truncated")
	chunk.WriteOp(op.Loop, 1)
	chunk.Write(0, 1)
	_, err = Instructions(chunk)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "truncated OP_LOOP at offset 0")
}

func TestPrint(t *testing.T) {
	chunk, err := compiler.Compile(`"a" and nil`)
	assert.Nil(t, err)
	instructions, err := Instructions(chunk)
	assert.Nil(t, err)

	var buf bytes.Buffer
	Print(instructions, &buf)
	expected := strings.TrimSpace(`
+--------+------+------------------+----------+------+
| OFFSET | LINE |      OPCODE      | OPERANDS | INFO |
+--------+------+------------------+----------+------+
|      0 |    1 | OP_CONSTANT      |        0 | "a"  |
|      2 |    1 | OP_JUMP_IF_FALSE |        2 | -> 7 |
|      5 |    1 | OP_POP           |          |      |
|      6 |    1 | OP_NIL           |          |      |
|      7 |    1 | OP_RETURN        |          |      |
+--------+------+------------------+----------+------+
`)
	assert.Equal(t, buf.String(), expected+"\n")
}

func TestTokens(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer
	Tokens(&buf, "print 1;\n\"x\"")
	assert.Equal(t, buf.String(), ""+
		"   1 31 'print'\n"+
		"   | 21 '1'\n"+
		"   |  8 ';'\n"+
		"   2 20 '\"x\"'\n"+
		"   | 39 ''\n")
}

func TestTokensArithmetic(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer
	Tokens(&buf, "1 + 2 * 3")
	assert.Equal(t, buf.String(), ""+
		"   1 21 '1'\n"+
		"   |  7 '+'\n"+
		"   | 21 '2'\n"+
		"   | 10 '*'\n"+
		"   | 21 '3'\n"+
		"   | 39 ''\n")
}

func TestTokensError(t *testing.T) {
	disableColor(t)
	var buf bytes.Buffer
	Tokens(&buf, "@")
	assert.Equal(t, buf.String(), ""+
		"   1 38 'Unexpected character.'\n"+
		"   | 39 ''\n")
}

func TestTracer(t *testing.T) {
	disableColor(t)
	chunk, err := compiler.Compile("1 + 2")
	assert.Nil(t, err)
	var buf bytes.Buffer
	machine := vm.New(vm.WithObserver(NewTracer(&buf)))
	_, err = machine.Run(chunk)
	assert.Nil(t, err)
	assert.Equal(t, buf.String(), ""+
		"          \n"+
		"0000    1 OP_CONSTANT         0 '1'\n"+
		"          [ 1 ]\n"+
		"0002    | OP_CONSTANT         1 '2'\n"+
		"          [ 1 ][ 2 ]\n"+
		"0004    | OP_ADD\n"+
		"          [ 3 ]\n"+
		"0005    | OP_RETURN\n")
}
