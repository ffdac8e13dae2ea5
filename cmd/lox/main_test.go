package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/deepnoodle-ai/lox"
	"github.com/deepnoodle-ai/wonton/assert"
	"github.com/deepnoodle-ai/wonton/color"
	"github.com/mitchellh/go-homedir"
)

// isolate points the home directory at an empty temp dir and disables colors.
func isolate(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("LOX_STACK_SIZE", "")
	t.Setenv("LOX_LOG_LEVEL", "")
	homedir.DisableCache = true
	homedir.Reset()

	oldEnabled := color.Enabled
	color.Enabled = false
	t.Cleanup(func() { color.Enabled = oldEnabled })
}

// executeCaptured runs the CLI with the given arguments and returns what it
// wrote to stdout.
func executeCaptured(t *testing.T, args ...string) (string, error) {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	assert.Nil(t, err)
	os.Stdout = w

	execErr := execute(args)

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(r)
	return buf.String(), execErr
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	assert.Nil(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestRunCode(t *testing.T) {
	isolate(t)
	output, err := executeCaptured(t, "-c", "1 + 2 * 3")
	assert.Nil(t, err)
	assert.Equal(t, output, "7\n")
}

func TestRunPrint(t *testing.T) {
	isolate(t)
	output, err := executeCaptured(t, "-c", `print "hello"; print 1 / 0;`)
	assert.Nil(t, err)
	assert.Equal(t, output, "hello\ninf\n")
}

func TestRunOutputFormats(t *testing.T) {
	isolate(t)
	output, err := executeCaptured(t, "-o", "text", "-c", `"a" + "b"`)
	assert.Nil(t, err)
	assert.Equal(t, output, "ab\n")

	output, err = executeCaptured(t, "-o", "json", "-c", `"a" + "b"`)
	assert.Nil(t, err)
	assert.Equal(t, output, "\"ab\"\n")
}

func TestRunFile(t *testing.T) {
	isolate(t)
	path := writeFile(t, "prog.lox", "var a = 20;\nprint a + 1;\na * 2")
	output, err := executeCaptured(t, path)
	assert.Nil(t, err)
	assert.Equal(t, output, "21\n40\n")
}

func TestRunPrintCode(t *testing.T) {
	isolate(t)
	output, err := executeCaptured(t, "--print-code", "-c", "1")
	assert.Nil(t, err)
	assert.Equal(t, output, "== script ==\n"+
		"0000    1 OP_CONSTANT         0 '1'\n"+
		"0002    | OP_RETURN\n"+
		"1\n")
}

func TestRunCompileError(t *testing.T) {
	isolate(t)
	_, err := executeCaptured(t, "-c", "print;")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "[line 1] Error at ';': Expect expression.")
}

func TestRunRuntimeError(t *testing.T) {
	isolate(t)
	_, err := executeCaptured(t, "-c", "-nil")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "Operand must be a number.\n[line 1] in script")
}

func TestRunMultipleInputs(t *testing.T) {
	isolate(t)
	path := writeFile(t, "prog.lox", "1")
	_, err := executeCaptured(t, "-c", "2", path)
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "multiple input sources specified")
}

func TestRunMissingFile(t *testing.T) {
	isolate(t)
	_, err := executeCaptured(t, filepath.Join(t.TempDir(), "missing.lox"))
	assert.NotNil(t, err)
}

func TestBuildAndRunCompiled(t *testing.T) {
	isolate(t)
	path := writeFile(t, "prog.lox", "var a = 20;\nprint a + 1;\na * 2")
	_, err := executeCaptured(t, "build", path)
	assert.Nil(t, err)

	compiled := strings.TrimSuffix(path, ".lox") + ".loxc"
	_, err = os.Stat(compiled)
	assert.Nil(t, err)

	output, err := executeCaptured(t, compiled)
	assert.Nil(t, err)
	assert.Equal(t, output, "21\n40\n")
}

func TestBuildOutputPath(t *testing.T) {
	isolate(t)
	path := writeFile(t, "prog.lox", "1")
	out := filepath.Join(t.TempDir(), "custom.loxc")
	_, err := executeCaptured(t, "build", "--out", out, path)
	assert.Nil(t, err)
	_, err = os.Stat(out)
	assert.Nil(t, err)
}

func TestBuildCompileError(t *testing.T) {
	isolate(t)
	path := writeFile(t, "bad.lox", "var;")
	_, err := executeCaptured(t, "build", path)
	assert.NotNil(t, err)
	_, statErr := os.Stat(strings.TrimSuffix(path, ".lox") + ".loxc")
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestEval(t *testing.T) {
	isolate(t)
	output, err := executeCaptured(t, "eval", "1 + 2")
	assert.Nil(t, err)
	assert.Equal(t, output, "3\n")

	output, err = executeCaptured(t, "eval", "-c", "10 * 5")
	assert.Nil(t, err)
	assert.Equal(t, output, "50\n")

	output, err = executeCaptured(t, "eval", "-q", "10 * 5")
	assert.Nil(t, err)
	assert.Equal(t, output, "")
}

func TestEvalJSON(t *testing.T) {
	isolate(t)
	output, err := executeCaptured(t, "eval", "-o", "json", "!nil")
	assert.Nil(t, err)
	assert.Equal(t, output, "{\n  \"type\": \"bool\",\n  \"value\": true\n}\n")

	output, err = executeCaptured(t, "eval", "-o", "json", "x")
	assert.NotNil(t, err)
	assert.Contains(t, output, "Undefined variable 'x'.")
	assert.Contains(t, output, "\"result\": \"runtime error\"")
}

func TestEvalNoExpression(t *testing.T) {
	isolate(t)
	_, err := executeCaptured(t, "eval")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "no expression provided")
}

func TestDis(t *testing.T) {
	isolate(t)
	output, err := executeCaptured(t, "dis", "-c", "print 1;")
	assert.Nil(t, err)
	assert.Equal(t, output, "== script ==\n"+
		"0000    1 OP_CONSTANT         0 '1'\n"+
		"0002    | OP_PRINT\n"+
		"0003    | OP_RETURN\n")
}

func TestDisFileName(t *testing.T) {
	isolate(t)
	path := writeFile(t, "named.lox", "nil")
	output, err := executeCaptured(t, "dis", path)
	assert.Nil(t, err)
	assert.Equal(t, output, fmt.Sprintf("== %s ==\n", path)+
		"0000    1 OP_NIL\n"+
		"0001    | OP_RETURN\n")
}

func TestDisTable(t *testing.T) {
	isolate(t)
	output, err := executeCaptured(t, "dis", "--table", "-c", "nil")
	assert.Nil(t, err)
	expected := `
+--------+------+-----------+----------+------+
| OFFSET | LINE |  OPCODE   | OPERANDS | INFO |
+--------+------+-----------+----------+------+
|      0 |    1 | OP_NIL    |          |      |
|      1 |    1 | OP_RETURN |          |      |
+--------+------+-----------+----------+------+
`
	assert.Equal(t, output, strings.TrimPrefix(expected, "\n"))
}

func TestDisNoInput(t *testing.T) {
	isolate(t)
	_, err := executeCaptured(t, "dis")
	assert.NotNil(t, err)
	assert.Contains(t, err.Error(), "no input provided")
}

func TestTokens(t *testing.T) {
	isolate(t)
	output, err := executeCaptured(t, "tokens", "-c", "1 + 2")
	assert.Nil(t, err)
	assert.Equal(t, output, ""+
		"   1 21 '1'\n"+
		"   |  7 '+'\n"+
		"   | 21 '2'\n"+
		"   | 39 ''\n")
}

func TestVersion(t *testing.T) {
	isolate(t)
	output, err := executeCaptured(t, "version")
	assert.Nil(t, err)
	assert.Equal(t, output, "dev\n")

	output, err = executeCaptured(t, "version", "-o", "json")
	assert.Nil(t, err)
	assert.Contains(t, output, "\"version\": \"dev\"")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, exitCode(withExitCode(exitCompile, errors.New("bad"))), 65)
	wrapped := fmt.Errorf("running: %w", withExitCode(exitRuntime, errors.New("bad")))
	assert.Equal(t, exitCode(wrapped), 70)
	assert.Nil(t, withExitCode(exitIO, nil))
}

func TestRunResultCode(t *testing.T) {
	_, err := lox.Eval("print")
	assert.Equal(t, runResultCode(err), exitCompile)
	_, err = lox.Eval("1 < nil")
	assert.Equal(t, runResultCode(err), exitRuntime)
	assert.Equal(t, runResultCode(nil), 0)
}

func TestTestCommand(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	assert.Nil(t, os.WriteFile(filepath.Join(dir, "ok.lox"), []byte("print 1; // expect: 1\n"), 0o644))

	output, err := executeCaptured(t, "test", dir)
	assert.Nil(t, err)
	assert.Equal(t, output, "\nPASS\n1 passed\n")

	assert.Nil(t, os.WriteFile(filepath.Join(dir, "bad.lox"), []byte("print 1; // expect: 2\n"), 0o644))
	output, err = executeCaptured(t, "test", dir)
	assert.NotNil(t, err)
	assert.Contains(t, output, "--- FAIL: "+filepath.Join(dir, "bad.lox"))
	assert.Contains(t, output, "1 passed, 1 failed")
}
