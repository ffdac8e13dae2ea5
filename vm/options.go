package vm

import (
	"io"

	"github.com/deepnoodle-ai/lox/value"
)

// Option is a configuration function for a Virtual Machine.
type Option func(*VirtualMachine)

// WithStackSize sets the capacity of the operand stack. Values below one are
// ignored and DefaultStackSize is used.
func WithStackSize(size int) Option {
	return func(vm *VirtualMachine) {
		if size > 0 {
			vm.stack = make([]value.Value, size)
		}
	}
}

// WithOutput sets the writer that print statements write to. The default is
// os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(vm *VirtualMachine) {
		vm.output = w
	}
}

// WithGlobals provides global variables with the given names.
func WithGlobals(globals map[string]value.Value) Option {
	return func(vm *VirtualMachine) {
		for name, v := range globals {
			vm.globals[name] = v
		}
	}
}

// WithObserver sets an observer for VM execution events.
// The observer receives a callback for instruction steps according to the
// step mode in its config. This enables tracers, profilers and coverage tools
// without modifying the interpreter loop.
//
// Observer methods are called synchronously during execution, so
// implementations should be fast to avoid impacting performance.
// Returning false from OnStep halts execution immediately.
func WithObserver(observer Observer) Option {
	return func(vm *VirtualMachine) {
		vm.observer = observer
	}
}
