// Package errz defines the errors produced while compiling and running Lox
// programs.
package errz

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

// ErrorKind represents the category of an error.
type ErrorKind int

const (
	// ErrSyntax indicates a syntax/parsing error.
	ErrSyntax ErrorKind = iota
	// ErrType indicates an operation applied to operands of the wrong type.
	ErrType
	// ErrName indicates an undefined variable.
	ErrName
	// ErrRuntime indicates a general runtime error.
	ErrRuntime
	// ErrInternal indicates a fault in the virtual machine itself, such as a
	// stack overflow or a malformed chunk.
	ErrInternal
)

// String returns the string representation of the error kind.
func (k ErrorKind) String() string {
	switch k {
	case ErrSyntax:
		return "syntax error"
	case ErrType:
		return "type error"
	case ErrName:
		return "name error"
	case ErrRuntime:
		return "runtime error"
	case ErrInternal:
		return "internal error"
	default:
		return "error"
	}
}

// CompileError is a single error reported by the compiler.
type CompileError struct {
	// Line is the source line of the offending token.
	Line int
	// Where describes the offending token: " at 'x'", " at end", or empty
	// when the lexer already described the problem.
	Where string
	// Message is the human readable description.
	Message string
}

// Error implements the error interface.
func (e *CompileError) Error() string {
	return fmt.Sprintf("[line %d] Error%s: %s", e.Line, e.Where, e.Message)
}

// Kind always returns ErrSyntax.
func (e *CompileError) Kind() ErrorKind {
	return ErrSyntax
}

// CompileErrors returns every CompileError contained in err. It understands
// both a single *CompileError and a *multierror.Error wrapping several.
func CompileErrors(err error) []*CompileError {
	if err == nil {
		return nil
	}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		var result []*CompileError
		for _, e := range merr.Errors {
			var ce *CompileError
			if errors.As(e, &ce) {
				result = append(result, ce)
			}
		}
		return result
	}
	var ce *CompileError
	if errors.As(err, &ce) {
		return []*CompileError{ce}
	}
	return nil
}

// ListFormat renders a group of errors one per line. It is installed as the
// ErrorFormat of compile error groups so the combined message reads the same
// as the individual reports.
func ListFormat(es []error) string {
	lines := make([]string, len(es))
	for i, e := range es {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}

// RuntimeError is raised when executing a chunk fails.
type RuntimeError struct {
	Kind    ErrorKind
	Message string
	// Line is the source line of the instruction that failed.
	Line int
	// Offset is the code offset of the instruction that failed.
	Offset int
}

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s\n[line %d] in script", e.Message, e.Line)
}

// IsInternal reports whether the error was caused by a virtual machine fault
// rather than by the program's own operations.
func (e *RuntimeError) IsInternal() bool {
	return e.Kind == ErrInternal
}

// NewRuntimeError creates a RuntimeError with a formatted message.
func NewRuntimeError(kind ErrorKind, line, offset int, format string, args ...any) *RuntimeError {
	return &RuntimeError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Line:    line,
		Offset:  offset,
	}
}
