package lox

import (
	"io"
	"maps"

	"github.com/deepnoodle-ai/lox/compiler"
	"github.com/deepnoodle-ai/lox/value"
	"github.com/deepnoodle-ai/lox/vm"
)

// Option configures a Lox compilation or execution.
type Option func(*options)

type options struct {
	filename    string
	output      io.Writer
	stackSize   int
	observer    vm.Observer
	globals     map[string]value.Value
	disassembly io.Writer
	machine     *vm.VirtualMachine
}

func collectOptions(opts ...Option) *options {
	o := &options{globals: map[string]value.Value{}}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) compilerOpts() []compiler.Option {
	var opts []compiler.Option
	if o.filename != "" {
		opts = append(opts, compiler.WithFilename(o.filename))
	}
	return opts
}

func (o *options) vmOpts() []vm.Option {
	var opts []vm.Option
	if o.output != nil {
		opts = append(opts, vm.WithOutput(o.output))
	}
	if o.stackSize > 0 {
		opts = append(opts, vm.WithStackSize(o.stackSize))
	}
	if o.observer != nil {
		opts = append(opts, vm.WithObserver(o.observer))
	}
	if len(o.globals) > 0 {
		opts = append(opts, vm.WithGlobals(o.globals))
	}
	return opts
}

// newMachine returns the VM supplied with WithVM, or a new one configured
// from the options.
func (o *options) newMachine() *vm.VirtualMachine {
	if o.machine != nil {
		return o.machine
	}
	return vm.New(o.vmOpts()...)
}

// WithFilename sets the filename for the source code being evaluated.
// It becomes the name of the compiled chunk.
func WithFilename(filename string) Option {
	return func(o *options) {
		o.filename = filename
	}
}

// WithOutput sets the writer that print statements write to. The default is
// os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(o *options) {
		o.output = w
	}
}

// WithStackSize sets the capacity of the VM's operand stack.
func WithStackSize(size int) Option {
	return func(o *options) {
		o.stackSize = size
	}
}

// WithObserver sets an observer for VM execution events. This enables
// tracers, profilers and code coverage tools.
func WithObserver(observer vm.Observer) Option {
	return func(o *options) {
		o.observer = observer
	}
}

// WithGlobals provides global variables that are made available to Lox
// programs. This option is additive, so multiple WithGlobals options may be
// supplied. If the same key is supplied multiple times, the last value wins.
func WithGlobals(globals map[string]value.Value) Option {
	return func(o *options) {
		maps.Copy(o.globals, globals)
	}
}

// WithDisassembly writes a disassembly of the compiled chunk to w before it
// is run.
func WithDisassembly(w io.Writer) Option {
	return func(o *options) {
		o.disassembly = w
	}
}

// WithVM runs code on an existing Virtual Machine, so that globals defined by
// earlier runs stay visible. The VM's own configuration is used: WithOutput,
// WithStackSize, WithObserver and WithGlobals are ignored.
func WithVM(machine *vm.VirtualMachine) Option {
	return func(o *options) {
		o.machine = machine
	}
}
