// Package vm provides a VirtualMachine that executes compiled Lox bytecode.
package vm

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"sync"

	"github.com/deepnoodle-ai/lox/bytecode"
	"github.com/deepnoodle-ai/lox/errz"
	"github.com/deepnoodle-ai/lox/op"
	"github.com/deepnoodle-ai/lox/value"
)

// DefaultStackSize is the default capacity of the operand stack.
const DefaultStackSize = 256

var (
	// ErrAlreadyRunning is returned when a VM is used while it is running.
	ErrAlreadyRunning = errors.New("vm is already running")

	// ErrHalted is returned when an observer stops execution.
	ErrHalted = errors.New("execution halted by observer")
)

// fault is raised with panic for errors in the machine itself, such as a
// stack overflow. Run recovers it and reports an internal runtime error.
type fault struct {
	message string
}

type VirtualMachine struct {
	chunk     *bytecode.Chunk
	ip        int // offset of the next byte to read
	opStart   int // offset of the instruction being executed
	sp        int // number of values on the stack
	stack     []value.Value
	globals   map[string]value.Value
	output    io.Writer
	observer  Observer
	stepMode  StepMode
	interval  int
	steps     int
	lastLine  int
	lastError error
	running   bool
	runMutex  sync.Mutex
}

// New creates a new Virtual Machine.
func New(options ...Option) *VirtualMachine {
	vm := &VirtualMachine{
		globals: map[string]value.Value{},
		output:  os.Stdout,
	}
	for _, opt := range options {
		opt(vm)
	}
	if vm.stack == nil {
		vm.stack = make([]value.Value, DefaultStackSize)
	}
	if vm.observer != nil {
		cfg := NormalizeConfig(vm.observer.Config())
		vm.stepMode = cfg.StepMode
		vm.interval = cfg.SampleInterval
	}
	return vm
}

func (vm *VirtualMachine) start() error {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	if vm.running {
		return ErrAlreadyRunning
	}
	vm.running = true
	return nil
}

func (vm *VirtualMachine) stop() {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	vm.running = false
}

// Run executes the chunk and returns the value yielded by its final Return.
// Globals defined by earlier runs on this VM remain visible. Runtime errors
// are returned as *errz.RuntimeError.
func (vm *VirtualMachine) Run(chunk *bytecode.Chunk) (result value.Value, err error) {
	// Set up some guarantees:
	// 1. It is an error to call Run on a VM that is already running
	// 2. The running flag will always be set to false when Run returns
	// 3. Any panics are translated to errors and the VM is stopped
	if err := vm.start(); err != nil {
		return value.Nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			result, err = value.Nil, vm.recovered(r)
			vm.resetStack()
		}
		vm.stop()
	}()
	if chunk == nil {
		return value.Nil, errors.New("no chunk to run")
	}
	vm.chunk = chunk
	vm.ip = 0
	vm.opStart = 0
	vm.steps = 0
	vm.lastLine = 0
	vm.resetStack()
	result, err = vm.eval()
	if err != nil {
		vm.resetStack()
	}
	return result, err
}

// Interpret runs the chunk and reports the outcome as an InterpretResult.
// The error behind a failed run is available from Err.
func (vm *VirtualMachine) Interpret(chunk *bytecode.Chunk) InterpretResult {
	_, err := vm.Run(chunk)
	vm.lastError = err
	return ResultOf(err)
}

// Err returns the error from the most recent call to Interpret.
func (vm *VirtualMachine) Err() error {
	return vm.lastError
}

// Globals returns a copy of the global variables.
func (vm *VirtualMachine) Globals() map[string]value.Value {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	return maps.Clone(vm.globals)
}

// Reset clears the stack and all global variables.
func (vm *VirtualMachine) Reset() error {
	vm.runMutex.Lock()
	defer vm.runMutex.Unlock()
	if vm.running {
		return ErrAlreadyRunning
	}
	vm.resetStack()
	vm.globals = map[string]value.Value{}
	vm.lastError = nil
	return nil
}

// StackSize returns the capacity of the operand stack.
func (vm *VirtualMachine) StackSize() int {
	return len(vm.stack)
}

func (vm *VirtualMachine) resetStack() {
	for i := 0; i < vm.sp; i++ {
		vm.stack[i] = value.Nil
	}
	vm.sp = 0
}

func (vm *VirtualMachine) eval() (value.Value, error) {
	for {
		if vm.ip < 0 || vm.ip >= vm.chunk.Len() {
			panic(fault{fmt.Sprintf("Instruction pointer %d out of range.", vm.ip)})
		}
		vm.opStart = vm.ip
		code := vm.chunk.OpAt(vm.ip)
		if vm.observer != nil && !vm.notify(code) {
			return value.Nil, ErrHalted
		}
		vm.ip++

		switch code {
		case op.Constant:
			vm.push(vm.readConstant())
		case op.Nil:
			vm.push(value.Nil)
		case op.True:
			vm.push(value.True)
		case op.False:
			vm.push(value.False)
		case op.Pop:
			vm.pop()
		case op.GetLocal:
			slot := vm.readSlot()
			vm.push(vm.stack[slot])
		case op.SetLocal:
			slot := vm.readSlot()
			vm.stack[slot] = vm.peek(0)
		case op.GetGlobal:
			name := vm.readName()
			v, ok := vm.globals[name]
			if !ok {
				return value.Nil, vm.runtimeError(errz.ErrName, "Undefined variable '%s'.", name)
			}
			vm.push(v)
		case op.DefineGlobal:
			name := vm.readName()
			vm.globals[name] = vm.peek(0)
			vm.pop()
		case op.SetGlobal:
			name := vm.readName()
			if _, ok := vm.globals[name]; !ok {
				return value.Nil, vm.runtimeError(errz.ErrName, "Undefined variable '%s'.", name)
			}
			vm.globals[name] = vm.peek(0)
		case op.Equal:
			b := vm.pop()
			a := vm.pop()
			vm.push(value.Bool(a.Equals(b)))
		case op.Greater, op.Less, op.Subtract, op.Multiply, op.Divide:
			if err := vm.binaryOp(code); err != nil {
				return value.Nil, err
			}
		case op.Add:
			b, a := vm.peek(0), vm.peek(1)
			switch {
			case a.IsString() && b.IsString():
				vm.pop()
				vm.pop()
				vm.push(value.String(a.AsString() + b.AsString()))
			case a.IsNumber() && b.IsNumber():
				vm.pop()
				vm.pop()
				vm.push(value.Number(a.AsNumber() + b.AsNumber()))
			default:
				return value.Nil, vm.runtimeError(errz.ErrType, "Operands must be two numbers or two strings.")
			}
		case op.Not:
			vm.push(value.Bool(!vm.pop().IsTruthy()))
		case op.Negate:
			if !vm.peek(0).IsNumber() {
				return value.Nil, vm.runtimeError(errz.ErrType, "Operand must be a number.")
			}
			vm.push(value.Number(-vm.pop().AsNumber()))
		case op.Print:
			if _, err := fmt.Fprintln(vm.output, vm.pop().Inspect()); err != nil {
				return value.Nil, fmt.Errorf("print: %w", err)
			}
		case op.Jump:
			offset := vm.readShort()
			vm.ip += offset
		case op.JumpIfFalse:
			offset := vm.readShort()
			if !vm.peek(0).IsTruthy() {
				vm.ip += offset
			}
		case op.Loop:
			offset := vm.readShort()
			vm.ip -= offset
		case op.Return:
			if vm.sp > 0 {
				return vm.stack[vm.sp-1], nil
			}
			return value.Nil, nil
		default:
			return value.Nil, vm.runtimeError(errz.ErrInternal, "Unknown opcode %d.", byte(code))
		}
	}
}

func (vm *VirtualMachine) binaryOp(code op.Code) error {
	b, a := vm.peek(0), vm.peek(1)
	if !a.IsNumber() || !b.IsNumber() {
		return vm.runtimeError(errz.ErrType, "Operands must be numbers.")
	}
	vm.pop()
	vm.pop()
	x, y := a.AsNumber(), b.AsNumber()
	switch code {
	case op.Greater:
		vm.push(value.Bool(x > y))
	case op.Less:
		vm.push(value.Bool(x < y))
	case op.Subtract:
		vm.push(value.Number(x - y))
	case op.Multiply:
		vm.push(value.Number(x * y))
	case op.Divide:
		vm.push(value.Number(x / y))
	}
	return nil
}

// notify reports the current instruction to the observer according to its
// step mode. It returns false if the observer asked to halt.
func (vm *VirtualMachine) notify(code op.Code) bool {
	line := vm.chunk.LineAt(vm.ip)
	switch vm.stepMode {
	case StepNone:
		return true
	case StepSampled:
		vm.steps++
		if vm.steps%vm.interval != 0 {
			return true
		}
	case StepOnLine:
		if line == vm.lastLine {
			return true
		}
	}
	vm.lastLine = line
	stack := make([]value.Value, vm.sp)
	copy(stack, vm.stack[:vm.sp])
	return vm.observer.OnStep(StepEvent{
		Chunk:      vm.chunk,
		Offset:     vm.ip,
		Opcode:     code,
		OpcodeName: op.GetInfo(code).Name,
		Line:       line,
		Stack:      stack,
	})
}

func (vm *VirtualMachine) push(v value.Value) {
	if vm.sp >= len(vm.stack) {
		panic(fault{"Stack overflow."})
	}
	vm.stack[vm.sp] = v
	vm.sp++
}

func (vm *VirtualMachine) pop() value.Value {
	if vm.sp <= 0 {
		panic(fault{"Stack underflow."})
	}
	vm.sp--
	v := vm.stack[vm.sp]
	vm.stack[vm.sp] = value.Nil
	return v
}

func (vm *VirtualMachine) peek(distance int) value.Value {
	if distance >= vm.sp {
		panic(fault{"Stack underflow."})
	}
	return vm.stack[vm.sp-1-distance]
}

func (vm *VirtualMachine) readByte() byte {
	if vm.ip >= vm.chunk.Len() {
		panic(fault{"Unexpected end of code."})
	}
	b := vm.chunk.ByteAt(vm.ip)
	vm.ip++
	return b
}

func (vm *VirtualMachine) readShort() int {
	hi := vm.readByte()
	lo := vm.readByte()
	return int(hi)<<8 | int(lo)
}

func (vm *VirtualMachine) readConstant() value.Value {
	index := int(vm.readByte())
	if index >= vm.chunk.ConstantCount() {
		panic(fault{fmt.Sprintf("Constant index %d out of range.", index)})
	}
	return vm.chunk.ConstantAt(index)
}

func (vm *VirtualMachine) readName() string {
	name := vm.readConstant()
	if !name.IsString() {
		panic(fault{fmt.Sprintf("Variable name must be a string, got %s.", name.Type())})
	}
	return name.AsString()
}

func (vm *VirtualMachine) readSlot() int {
	slot := int(vm.readByte())
	if slot >= vm.sp {
		panic(fault{fmt.Sprintf("Local slot %d out of range.", slot)})
	}
	return slot
}

func (vm *VirtualMachine) runtimeError(kind errz.ErrorKind, format string, args ...any) error {
	return errz.NewRuntimeError(kind, vm.chunk.LineAt(vm.opStart), vm.opStart, format, args...)
}

// recovered converts a recovered panic into an internal runtime error.
func (vm *VirtualMachine) recovered(r any) error {
	line := 0
	if vm.chunk != nil {
		line = vm.chunk.LineAt(vm.opStart)
	}
	if f, ok := r.(fault); ok {
		return errz.NewRuntimeError(errz.ErrInternal, line, vm.opStart, "%s", f.message)
	}
	return errz.NewRuntimeError(errz.ErrInternal, line, vm.opStart, "panic: %v", r)
}
