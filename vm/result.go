package vm

import "github.com/deepnoodle-ai/lox/errz"

// InterpretResult is the outcome of interpreting a program.
type InterpretResult int

const (
	ResultOK InterpretResult = iota
	ResultCompileError
	ResultRuntimeError
)

func (r InterpretResult) String() string {
	switch r {
	case ResultOK:
		return "ok"
	case ResultCompileError:
		return "compile error"
	case ResultRuntimeError:
		return "runtime error"
	default:
		return "unknown"
	}
}

// ResultOf classifies an error returned by compiling or running a program.
// Errors holding compile errors map to ResultCompileError and any other
// error maps to ResultRuntimeError.
func ResultOf(err error) InterpretResult {
	if err == nil {
		return ResultOK
	}
	if len(errz.CompileErrors(err)) > 0 {
		return ResultCompileError
	}
	return ResultRuntimeError
}
