// Package lox compiles and runs programs written in the Lox scripting
// language.
//
// Source code is scanned into tokens, compiled in a single pass into a
// bytecode.Chunk, and executed by a stack-based virtual machine:
//
//	result, err := lox.Eval(`var x = 2; x * 21`)
//	fmt.Println(result) // 42
//
// Compiled chunks are independent of the VM that runs them and may be
// serialized with bytecode.Chunk.MarshalBinary and run later.
package lox

import (
	"github.com/deepnoodle-ai/lox/bytecode"
	"github.com/deepnoodle-ai/lox/compiler"
	"github.com/deepnoodle-ai/lox/dis"
	"github.com/deepnoodle-ai/lox/value"
	"github.com/deepnoodle-ai/lox/vm"
)

// Compile compiles source code into a chunk. Compile errors are reported
// together; use errz.CompileErrors to inspect them.
func Compile(source string, opts ...Option) (*bytecode.Chunk, error) {
	o := collectOptions(opts...)
	return compileWith(o, source)
}

func compileWith(o *options, source string) (*bytecode.Chunk, error) {
	chunk, err := compiler.Compile(source, o.compilerOpts()...)
	if err != nil {
		return nil, err
	}
	if o.disassembly != nil {
		dis.Disassemble(o.disassembly, chunk, chunk.Name())
	}
	return chunk, nil
}

// Run executes a compiled chunk and returns the program's result.
func Run(chunk *bytecode.Chunk, opts ...Option) (value.Value, error) {
	o := collectOptions(opts...)
	return o.newMachine().Run(chunk)
}

// Eval compiles and runs source code and returns the program's result: the
// value of a final expression statement, the value given to a top-level
// return, or nil.
func Eval(source string, opts ...Option) (value.Value, error) {
	o := collectOptions(opts...)
	chunk, err := compileWith(o, source)
	if err != nil {
		return value.Nil, err
	}
	return o.newMachine().Run(chunk)
}

// Interpret compiles and runs source code, classifying the outcome.
func Interpret(source string, opts ...Option) (vm.InterpretResult, error) {
	_, err := Eval(source, opts...)
	return ResultOf(err), err
}

// ResultOf classifies an error returned by Compile, Run or Eval.
func ResultOf(err error) vm.InterpretResult {
	return vm.ResultOf(err)
}
